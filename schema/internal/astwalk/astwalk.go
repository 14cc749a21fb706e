// Package astwalk parses a Go source file with go/parser and extracts
// the schema declarations cmd/netabase-gen needs to act on: structs
// and interfaces carrying a //netabase:schema or //netabase:registry
// directive comment, their key-tagged fields, and the item-level
// attributes in the directive itself.
package astwalk

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"reflect"
	"strconv"
	"strings"
)

// FieldKind enumerates the primitive key-field types the
// specification permits (§4.3 rule 6).
type FieldKind int

const (
	FieldUnsupported FieldKind = iota
	FieldInt8
	FieldInt16
	FieldInt32
	FieldInt64
	FieldUint8
	FieldUint16
	FieldUint32
	FieldUint64
	FieldBool
	FieldString
)

var fieldKindByGoType = map[string]FieldKind{
	"int8": FieldInt8, "int16": FieldInt16, "int32": FieldInt32, "int64": FieldInt64, "int": FieldInt64,
	"uint8": FieldUint8, "uint16": FieldUint16, "uint32": FieldUint32, "uint64": FieldUint64, "uint": FieldUint64,
	"bool": FieldBool, "string": FieldString,
}

// Width returns the encoded byte width for integer and bool kinds; it
// is meaningless for FieldString, which is length-prefixed instead.
func (k FieldKind) Width() int {
	switch k {
	case FieldInt8, FieldUint8, FieldBool:
		return 1
	case FieldInt16, FieldUint16:
		return 2
	case FieldInt32, FieldUint32:
		return 4
	case FieldInt64, FieldUint64:
		return 8
	}
	return 0
}

// KeyField describes a single field carrying a `netabase:"key"` tag.
type KeyField struct {
	Name    string
	GoType  string
	Kind    FieldKind
	Closure string // set when the tag is `netabase:"key,closure=FuncName"`
}

// Attrs holds the item-level attributes parsed out of a
// //netabase:schema(...) directive comment.
type Attrs struct {
	Prefix      string
	Separator   string
	Version     string
	KeyClosure  string // schema(key=FuncName) at item level
	IsRegistry  bool
	RegistryFor string // schema(of=RegistryName): the registry this schema joins
}

// Variant describes one arm of a sealed-interface enum declared via a
// comment-grouped set of structs implementing a marker method, or one
// member of a //netabase:registry set.
type Variant struct {
	TypeName string
	KeyField *KeyField // nil if the variant has no key field of its own
}

// Schema is one parsed //netabase:schema struct declaration.
type Schema struct {
	Name      string
	Attrs     Attrs
	KeyFields []KeyField // at most one element after validation
	Fields    []KeyField // informational: every netabase-tagged field, for diagnostics
}

// Registry is one parsed //netabase:registry sealed-interface group.
type Registry struct {
	Name     string
	Attrs    Attrs
	Variants []Variant
}

// File is the result of parsing one source file.
type File struct {
	Package    string
	Schemas    []Schema
	Registries []Registry
}

const schemaDirective = "netabase:schema"
const registryDirective = "netabase:registry"

// Parse reads and analyzes the Go source file at path.
func Parse(path string) (*File, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("astwalk: parsing %s: %w", path, err)
	}

	out := &File{Package: f.Name.Name}

	for _, decl := range f.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		directive, attrs, hasDirective := parseDoc(gd.Doc)
		if !hasDirective {
			continue
		}

		for _, spec := range gd.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}

			switch directive {
			case schemaDirective:
				st, ok := ts.Type.(*ast.StructType)
				if !ok {
					return nil, fmt.Errorf("astwalk: %s: //netabase:schema must annotate a struct", ts.Name.Name)
				}
				s, err := parseStruct(ts.Name.Name, attrs, st)
				if err != nil {
					return nil, err
				}
				out.Schemas = append(out.Schemas, s)

			case registryDirective:
				if _, ok := ts.Type.(*ast.InterfaceType); !ok {
					return nil, fmt.Errorf("astwalk: %s: //netabase:registry must annotate an interface", ts.Name.Name)
				}
				out.Registries = append(out.Registries, Registry{Name: ts.Name.Name, Attrs: attrs})
			}
		}
	}

	populateVariants(out)

	return out, nil
}

// populateVariants fills each registry's Variants by collecting every
// schema in the same file whose directive carried of="<registry name>"
// (§3 Registry, §5.3 generated conversions). A schema declares its own
// membership via that attribute; the registry interface's body carries
// no variant information of its own, so this is a pass over
// f.Schemas rather than anything read off the interface's AST.
func populateVariants(f *File) {
	for i := range f.Registries {
		r := &f.Registries[i]
		for _, s := range f.Schemas {
			if s.Attrs.RegistryFor != r.Name {
				continue
			}
			v := Variant{TypeName: s.Name}
			if len(s.KeyFields) > 0 {
				kf := s.KeyFields[0]
				v.KeyField = &kf
			}
			r.Variants = append(r.Variants, v)
		}
	}
}

func parseDoc(doc *ast.CommentGroup) (directive string, attrs Attrs, found bool) {
	attrs.Separator = "::"
	if doc == nil {
		return "", attrs, false
	}
	for _, c := range doc.List {
		text := strings.TrimPrefix(c.Text, "//")
		text = strings.TrimSpace(text)
		switch {
		case text == schemaDirective:
			directive, found = schemaDirective, true
		case text == registryDirective:
			directive, found = registryDirective, true
		case strings.HasPrefix(text, schemaDirective+"("):
			directive, found = schemaDirective, true
			parseAttrList(text, schemaDirective, &attrs)
		case strings.HasPrefix(text, registryDirective+"("):
			directive, found = registryDirective, true
			parseAttrList(text, registryDirective, &attrs)
		}
	}
	return directive, attrs, found
}

func parseAttrList(text, directive string, attrs *Attrs) {
	inner := strings.TrimSuffix(strings.TrimPrefix(text, directive+"("), ")")
	for _, part := range strings.Split(inner, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		key := strings.TrimSpace(kv[0])
		val := strings.Trim(strings.TrimSpace(kv[1]), `"`)
		switch key {
		case "prefix":
			attrs.Prefix = val
		case "separator":
			attrs.Separator = val
		case "version":
			attrs.Version = val
		case "key":
			attrs.KeyClosure = val
		case "of":
			attrs.RegistryFor = val
		}
	}
}

func parseStruct(name string, attrs Attrs, st *ast.StructType) (Schema, error) {
	s := Schema{Name: name, Attrs: attrs}

	for _, field := range st.Fields.List {
		if len(field.Names) == 0 {
			continue // embedded field; not a candidate key field
		}
		tagValue := ""
		if field.Tag != nil {
			unquoted, err := strconv.Unquote(field.Tag.Value)
			if err == nil {
				tagValue = reflect.StructTag(unquoted).Get("netabase")
			}
		}
		if tagValue == "" {
			continue
		}

		goType := exprString(field.Type)
		kind := fieldKindByGoType[goType]

		for _, fieldName := range field.Names {
			kf := KeyField{Name: fieldName.Name, GoType: goType, Kind: kind}
			parts := strings.Split(tagValue, ",")
			isKey := false
			for _, p := range parts {
				p = strings.TrimSpace(p)
				switch {
				case p == "key":
					isKey = true
				case strings.HasPrefix(p, "key="):
					isKey = true
				case strings.HasPrefix(p, "closure="):
					kf.Closure = strings.TrimPrefix(p, "closure=")
				}
			}
			s.Fields = append(s.Fields, kf)
			if isKey {
				s.KeyFields = append(s.KeyFields, kf)
			}
		}
	}

	return s, nil
}

func exprString(e ast.Expr) string {
	switch t := e.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return "*" + exprString(t.X)
	case *ast.ArrayType:
		return "[]" + exprString(t.Elt)
	case *ast.SelectorExpr:
		return exprString(t.X) + "." + t.Sel.Name
	default:
		return fmt.Sprintf("%T", e)
	}
}
