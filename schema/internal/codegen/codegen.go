// Package codegen renders the <type>_netabase.go artifacts described
// in spec §4.3 Emitted artifacts, given the schema descriptors
// schema/internal/astwalk extracts from a source file.
package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"text/template"

	"github.com/netabase/netabase/schema/internal/astwalk"
)

// Render produces the formatted Go source for one parsed file's
// schemas and registries. pkgName is the package clause to emit
// (matching the source file's own package).
func Render(pkgName string, f *astwalk.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "file", struct {
		Package    string
		Schemas    []astwalk.Schema
		Registries []astwalk.Registry
	}{pkgName, f.Schemas, f.Registries}); err != nil {
		return nil, fmt.Errorf("codegen: executing template: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("codegen: gofmt failed (generator bug): %w\n%s", err, buf.String())
	}
	return formatted, nil
}

var tmpl = template.Must(template.New("file").Funcs(template.FuncMap{
	"width": func(k astwalk.FieldKind) int { return k.Width() },
}).Parse(fileTemplate))

const fileTemplate = `// Code generated by cmd/netabase-gen. DO NOT EDIT.

package {{.Package}}

import (
	"github.com/netabase/netabase/codec"
	"github.com/netabase/netabase/schema"
	"github.com/netabase/netabase/store"
)

{{range .Schemas}}
{{template "schema" .}}
{{end}}
{{range .Registries}}
{{template "registry" .}}
{{end}}
`

const schemaTemplate = `{{define "schema"}}
{{$S := .Name}}
{{if .Attrs.Version}}const {{$S}}SchemaVersion = "{{.Attrs.Version}}"{{end}}

// {{$S}}Key is the generated key type for {{$S}}.
type {{$S}}Key struct{ b []byte }

func New{{$S}}Key(b []byte) {{$S}}Key { return {{$S}}Key{b: append([]byte(nil), b...)} }

// Generate{{$S}}Key produces a fresh opaque key for {{$S}}.
func Generate{{$S}}Key() {{$S}}Key {
	return {{$S}}Key{b: schema.JoinKeyParts("{{.Attrs.Prefix}}", "{{.Attrs.Separator}}", schema.GenerateKeyBytes())}
}

func (k {{$S}}Key) Bytes() []byte  { return k.b }
func (k {{$S}}Key) String() string { return string(k.b) }
func (k {{$S}}Key) Equal(other {{$S}}Key) bool {
	return string(k.b) == string(other.b)
}
func (k {{$S}}Key) Hash() uint64 { return schema.Hash(k.b) }

func (k {{$S}}Key) ToRecordKey() []byte { return k.b }

func {{$S}}KeyFromRecordKey(b []byte) {{$S}}Key { return New{{$S}}Key(b) }

{{if .KeyFields}}{{$kf := index .KeyFields 0}}
// Key returns v's schema key, derived from its {{$kf.Name}} field.
func (v {{$S}}) Key() {{$S}}Key {
	{{if $kf.Closure}}
	return {{$S}}Key{b: schema.JoinKeyParts("{{.Attrs.Prefix}}", "{{.Attrs.Separator}}", {{$kf.Closure}}(v.{{$kf.Name}}))}
	{{else if eq $kf.GoType "string"}}
	return {{$S}}Key{b: schema.JoinKeyParts("{{.Attrs.Prefix}}", "{{.Attrs.Separator}}", schema.EncodeString(v.{{$kf.Name}}))}
	{{else if eq $kf.GoType "bool"}}
	return {{$S}}Key{b: schema.JoinKeyParts("{{.Attrs.Prefix}}", "{{.Attrs.Separator}}", schema.EncodeBool(v.{{$kf.Name}}))}
	{{else}}
	return {{$S}}Key{b: schema.JoinKeyParts("{{.Attrs.Prefix}}", "{{.Attrs.Separator}}", schema.EncodeUint(uint64(v.{{$kf.Name}}), {{width $kf.Kind}}))}
	{{end}}
}
{{else if .Attrs.KeyClosure}}
// Key returns v's schema key via the configured item-level closure.
func (v {{$S}}) Key() {{$S}}Key {
	return {{$S}}Key{b: schema.JoinKeyParts("{{.Attrs.Prefix}}", "{{.Attrs.Separator}}", {{.Attrs.KeyClosure}}(v))}
}
{{end}}

// ToRecord serializes v into a store.Record using c.
func (v {{$S}}) ToRecord(c codec.Codec) (store.Record, error) {
	value, err := c.Encode(v)
	if err != nil {
		return store.Record{}, err
	}
	return store.Record{Key: v.Key().Bytes(), Value: value}, nil
}

// {{$S}}FromRecord deserializes r's value into a {{$S}} using c.
func {{$S}}FromRecord(r store.Record, c codec.Codec) ({{$S}}, error) {
	var v {{$S}}
	if err := c.Decode(r.Value, &v); err != nil {
		return v, err
	}
	return v, nil
}

func (v {{$S}}) SchemaName() string { return "{{$S}}" }

{{if .Attrs.RegistryFor}}
func (v {{$S}}) isRegistryMember() {}

// ToRegistry wraps v as a {{.Attrs.RegistryFor}}.
func (v {{$S}}) ToRegistry() {{.Attrs.RegistryFor}} { return v }

func (k {{$S}}Key) isRegistryKeyMember() {}

// ToRegistryKey wraps k as a {{.Attrs.RegistryFor}}Key.
func (k {{$S}}Key) ToRegistryKey() {{.Attrs.RegistryFor}}Key { return k }
{{end}}
{{end}}`

const registryTemplate = `{{define "registry"}}
{{$R := .Name}}
// {{$R}}Key is the key-registry counterpart of {{$R}}.
type {{$R}}Key interface {
	schema.RegistryKey
}
{{range .Variants}}
// {{$R}}As{{.TypeName}} extracts a {{.TypeName}} from r, reporting
// whether r actually held one.
func {{$R}}As{{.TypeName}}(r {{$R}}) ({{.TypeName}}, bool) {
	v, ok := r.({{.TypeName}})
	return v, ok
}

// {{$R}}KeyAs{{.TypeName}}Key extracts a {{.TypeName}}Key from k,
// reporting whether k actually held one.
func {{$R}}KeyAs{{.TypeName}}Key(k {{$R}}Key) ({{.TypeName}}Key, bool) {
	v, ok := k.({{.TypeName}}Key)
	return v, ok
}
{{end}}
{{end}}`

func init() {
	template.Must(tmpl.Parse(schemaTemplate))
	template.Must(tmpl.Parse(registryTemplate))
}
