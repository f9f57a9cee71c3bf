// Command check_arch_boundaries fails when a package under internal/ or cmd/
// imports a drive-gallery package outside its allowed set.
//
// Run it from the module root:
//
//	go run ./scripts/check_arch_boundaries.go
package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
)

const modulePath = "drive-gallery/"

// allowed maps a source unit ("internal/<pkg>" or "cmd/<binary>") to the
// internal packages it may import.
var allowed = map[string][]string{
	"cmd/drive-gallery":  {"cli", "version"},
	"internal/cli":       {"export", "gallery", "importapi", "logging", "model", "settings", "watch"},
	"internal/gallery":   {"model"},
	"internal/watch":     {"model"},
	"internal/export":    {"model", "store"},
	"internal/importapi": {"model"},
	"internal/settings":  {"store"},
	"internal/logging":   nil,
	"internal/model":     nil,
	"internal/store":     nil,
	"internal/version":   nil,
}

func main() {
	var violations []string
	for _, root := range []string{"cmd", "internal"} {
		found, err := check(root)
		if err != nil {
			fmt.Fprintf(os.Stderr, "boundary walk of %s failed: %v\n", root, err)
			os.Exit(1)
		}
		violations = append(violations, found...)
	}

	if len(violations) > 0 {
		sort.Strings(violations)
		fmt.Fprintln(os.Stderr, "import boundary violations:")
		for _, v := range violations {
			fmt.Fprintf(os.Stderr, "- %s\n", v)
		}
		os.Exit(1)
	}
	fmt.Println("import boundaries: OK")
}

func check(root string) ([]string, error) {
	var violations []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		unit := sourceUnit(path)
		allow, ok := allowed[unit]
		if !ok {
			violations = append(violations, fmt.Sprintf("%s: no rule for %q", path, unit))
			return nil
		}

		file, err := parser.ParseFile(token.NewFileSet(), path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, imp := range file.Imports {
			target, ok := internalTarget(strings.Trim(imp.Path.Value, `"`))
			if !ok || "internal/"+target == unit || slices.Contains(allow, target) {
				continue
			}
			violations = append(violations, fmt.Sprintf("%s: %s may not import internal/%s", path, unit, target))
		}
		return nil
	})
	return violations, err
}

// sourceUnit returns the first two path elements, e.g. internal/importapi
// for internal/importapi/importapitest/server.go.
func sourceUnit(path string) string {
	parts := strings.SplitN(filepath.ToSlash(path), "/", 3)
	if len(parts) < 3 {
		return filepath.ToSlash(path)
	}
	return parts[0] + "/" + parts[1]
}

func internalTarget(importPath string) (string, bool) {
	rest, ok := strings.CutPrefix(importPath, modulePath+"internal/")
	if !ok || rest == "" {
		return "", false
	}
	pkg, _, _ := strings.Cut(rest, "/")
	return pkg, true
}
