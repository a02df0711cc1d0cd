// Package lessoxide compiles LESS source to CSS: parse, resolve
// @import, evaluate variables/mixins/functions, then serialize.
package lessoxide

import (
	"os"
	"path/filepath"

	"github.com/dellyoung/less-oxide/evaluator"
	"github.com/dellyoung/less-oxide/importer"
	"github.com/dellyoung/less-oxide/parser"
	"github.com/dellyoung/less-oxide/render"
)

// Options configures a compile.
type Options struct {
	// Minify selects minified output instead of pretty-printed CSS.
	Minify bool
	// CurrentDir resolves relative @import targets; empty disables
	// import expansion unless IncludePaths is also set.
	CurrentDir string
	// IncludePaths are additional directories searched, in order, for
	// @import targets not found relative to CurrentDir.
	IncludePaths []string
}

// Compile compiles LESS source text to CSS.
func Compile(source string, opts Options) (string, error) {
	p := parser.New()
	sheet, err := p.Parse(source)
	if err != nil {
		return "", err
	}

	if opts.CurrentDir != "" || len(opts.IncludePaths) > 0 {
		fs := importer.NewDiskFileSystem()
		expanded, err := importer.Expand(p, sheet, fs, opts.CurrentDir, opts.IncludePaths)
		if err != nil {
			return "", err
		}
		sheet = expanded
	}

	eval := evaluator.New()
	evaluated, err := eval.Evaluate(sheet)
	if err != nil {
		return "", err
	}

	return render.New(opts.Minify).ToCSS(evaluated), nil
}

// CompileFile reads path and compiles it, defaulting CurrentDir and
// appending to IncludePaths from the file's parent directory when the
// caller left them unset.
func CompileFile(path string, opts Options) (string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return "", WrapEvalError("failed to read file "+path, err)
	}

	dir := filepath.Dir(path)
	if opts.CurrentDir == "" {
		opts.CurrentDir = dir
	}
	if len(opts.IncludePaths) == 0 {
		opts.IncludePaths = []string{dir}
	}

	return Compile(string(source), opts)
}
