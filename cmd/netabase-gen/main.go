// Command netabase-gen is the build-time code generator for Netabase
// schemas (§4.3). Invoked via go:generate, it parses one Go source
// file for //netabase:schema and //netabase:registry declarations and
// emits a sibling <file>_netabase.go with the generated key types and
// Record conversions.
//
//	//go:generate go run github.com/netabase/netabase/cmd/netabase-gen -file user.go
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/netabase/netabase/schema/internal/astwalk"
	"github.com/netabase/netabase/schema/internal/codegen"
)

var (
	file   = flag.String("file", "", "path to the Go source file declaring schemas")
	output = flag.String("out", "", "output path (default: <file-without-ext>_netabase.go)")
)

func main() {
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "netabase-gen: -file is required")
		os.Exit(2)
	}

	if err := run(*file, *output); err != nil {
		fmt.Fprintln(os.Stderr, "netabase-gen:", err)
		os.Exit(1)
	}
}

func run(inputPath, outputPath string) error {
	parsed, err := astwalk.Parse(inputPath)
	if err != nil {
		return err
	}

	if len(parsed.Schemas) == 0 && len(parsed.Registries) == 0 {
		return fmt.Errorf("%s: no //netabase:schema or //netabase:registry declarations found", inputPath)
	}

	if err := validate(parsed); err != nil {
		return err
	}

	src, err := codegen.Render(parsed.Package, parsed)
	if err != nil {
		return err
	}

	if outputPath == "" {
		ext := filepath.Ext(inputPath)
		outputPath = strings.TrimSuffix(inputPath, ext) + "_netabase.go"
	}
	return os.WriteFile(outputPath, src, 0o644)
}

// validate checks each schema for: more than one key field, no key
// field and no item-level key closure, an unsupported key field type
// without a closure, and an of= naming a registry not declared in the
// file. It reports every violation it finds (rather than stopping at
// the first), each tagged with its kind so tooling can filter. The
// input and output types of key closures are not checked.
func validate(f *astwalk.File) error {
	var diags []string

	for _, s := range f.Schemas {
		if len(s.KeyFields) > 1 {
			diags = append(diags, fmt.Sprintf(
				"[field] %s: composite keys are not supported (found %d key fields) — use a manual key method or an item-level key closure instead",
				s.Name, len(s.KeyFields)))
			continue
		}
		if len(s.KeyFields) == 0 && s.Attrs.KeyClosure == "" {
			diags = append(diags, fmt.Sprintf(
				"[schema] %s: no `key` field and no item-level key closure — add `netabase:\"key\"` to a field or `schema(key=...)` to the directive",
				s.Name))
			continue
		}
		if len(s.KeyFields) == 1 {
			kf := s.KeyFields[0]
			if kf.Kind == astwalk.FieldUnsupported && kf.Closure == "" {
				diags = append(diags, fmt.Sprintf(
					"[type-validation] %s.%s: key field type %q is not a supported primitive (integer 8-64, bool, string) — attach a `closure=` to convert it",
					s.Name, kf.Name, kf.GoType))
			}
		}

		if s.Attrs.RegistryFor != "" && !hasRegistry(f.Registries, s.Attrs.RegistryFor) {
			diags = append(diags, fmt.Sprintf(
				"[registry] %s: of=%q names a registry with no matching //netabase:registry declaration in this file",
				s.Name, s.Attrs.RegistryFor))
		}
	}

	if len(diags) > 0 {
		return fmt.Errorf("validation failed:\n  %s", strings.Join(diags, "\n  "))
	}
	return nil
}

func hasRegistry(registries []astwalk.Registry, name string) bool {
	for _, r := range registries {
		if r.Name == name {
			return true
		}
	}
	return false
}
