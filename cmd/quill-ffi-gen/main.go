// Quill-ffi-gen inspects a Go package for exported functions matching
// the native-built-in calling convention and emits a NativeModule that
// exposes them under their Go names, instead of hand-writing the
// symbol table spec §6's ABI expects for every new native module.
//
// This is a build-time code generator, never linked into the runtime
// core: it shells out to `go/packages` to type-check the target
// package, which is a source-analysis cost the interpreter itself
// never pays.
package main

import (
	"flag"
	"fmt"
	"go/types"
	"os"
	"sort"
	"text/template"

	"golang.org/x/tools/go/packages"
)

var (
	outFile    = flag.String("out", "", "output file (default: stdout)")
	outPkg     = flag.String("package", "", "package name for the generated file (defaults to the source package's own name)")
	moduleName = flag.String("module", "", "the NativeModule's Name() (defaults to the source package's own name)")
)

// callerSignature is the exact shape internal/builtin/ffi.go's
// funcCaller adapts: func(value.NativeContext, *value.Object) (*value.Object, error).
const (
	ctxTypeString    = "github.com/quillrt/quill/internal/value.NativeContext"
	objectTypeString = "*github.com/quillrt/quill/internal/value.Object"
)

type symbol struct {
	GoName string
	Symbol string
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "quill-ffi-gen - emit a NativeModule for a Go package's FFI-shaped functions\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n  quill-ffi-gen [options] <import-path>\n\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	importPath := flag.Arg(0)

	syms, pkgName, err := discover(importPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "quill-ffi-gen: %v\n", err)
		os.Exit(1)
	}
	if len(syms) == 0 {
		fmt.Fprintf(os.Stderr, "quill-ffi-gen: no exported func(value.NativeContext, *value.Object) (*value.Object, error) found in %s\n", importPath)
		os.Exit(1)
	}

	genPkg := *outPkg
	if genPkg == "" {
		genPkg = pkgName
	}
	modName := *moduleName
	if modName == "" {
		modName = pkgName
	}

	out := os.Stdout
	if *outFile != "" {
		f, createErr := os.Create(*outFile)
		if createErr != nil {
			fmt.Fprintf(os.Stderr, "quill-ffi-gen: %v\n", createErr)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	if genErr := moduleTmpl.Execute(out, struct {
		Package    string
		ModuleName string
		Symbols    []symbol
	}{genPkg, modName, syms}); genErr != nil {
		fmt.Fprintf(os.Stderr, "quill-ffi-gen: generating: %v\n", genErr)
		os.Exit(1)
	}
}

// discover loads importPath and returns every exported top-level
// function whose signature matches callerSignature, mirroring
// IntrospectPackage's load-then-walk-the-package-scope shape, narrowed
// from a full API model to exactly the one signature the ABI cares
// about.
func discover(importPath string) ([]symbol, string, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedTypes | packages.NeedSyntax,
	}
	pkgs, err := packages.Load(cfg, importPath)
	if err != nil {
		return nil, "", fmt.Errorf("loading %s: %w", importPath, err)
	}
	if len(pkgs) == 0 {
		return nil, "", fmt.Errorf("no packages found for %s", importPath)
	}
	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		return nil, "", fmt.Errorf("package errors: %v", pkg.Errors)
	}
	if pkg.Types == nil {
		return nil, "", fmt.Errorf("type information not available for %s", importPath)
	}

	scope := pkg.Types.Scope()
	var syms []symbol
	for _, name := range scope.Names() {
		obj := scope.Lookup(name)
		fn, ok := obj.(*types.Func)
		if !ok || !fn.Exported() {
			continue
		}
		sig, ok := fn.Type().(*types.Signature)
		if !ok || !matchesCallerSignature(sig) {
			continue
		}
		syms = append(syms, symbol{GoName: fn.Name(), Symbol: fn.Name()})
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i].GoName < syms[j].GoName })
	return syms, pkg.Name, nil
}

func matchesCallerSignature(sig *types.Signature) bool {
	params := sig.Params()
	results := sig.Results()
	if params.Len() != 2 || results.Len() != 2 {
		return false
	}
	if params.At(0).Type().String() != ctxTypeString {
		return false
	}
	if params.At(1).Type().String() != objectTypeString {
		return false
	}
	if results.At(0).Type().String() != objectTypeString {
		return false
	}
	return results.At(1).Type().String() == "error"
}

var moduleTmpl = template.Must(template.New("module").Parse(`// Code generated by quill-ffi-gen. DO NOT EDIT.

package {{.Package}}

import "github.com/quillrt/quill/internal/value"

// generatedModule exposes this package's native-shaped functions as a
// builtin.NativeModule without hand-writing the symbol table.
type generatedModule struct{}

// NewModule returns the NativeModule for this package's FFI surface.
func NewModule() generatedModule { return generatedModule{} }

func (generatedModule) Name() string  { return "{{.ModuleName}}" }
func (generatedModule) Entry() error  { return nil }
func (generatedModule) Destroy()      {}

func (generatedModule) Lookup(symbol string) (value.NativeCaller, bool) {
	switch symbol {
{{- range .Symbols}}
	case "{{.Symbol}}":
		return nativeCallerFunc({{.GoName}}), true
{{- end}}
	default:
		return nil, false
	}
}

type nativeCallerFunc func(value.NativeContext, *value.Object) (*value.Object, error)

func (f nativeCallerFunc) Call(ctx value.NativeContext, args *value.Object) (*value.Object, error) {
	return f(ctx, args)
}
`))
