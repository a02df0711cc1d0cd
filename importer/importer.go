// Package importer resolves @import statements: it walks a Stylesheet
// looking for LESS imports (as opposed to passthrough CSS imports),
// reads and parses the target file, recursively expands its own
// imports, and splices the result in at the import site. Already-parsed
// files are cached by canonical path so a file imported from multiple
// places is only read and parsed once per compile.
package importer

import (
	"path/filepath"

	"github.com/dellyoung/less-oxide/ast"
	"github.com/dellyoung/less-oxide/lesserr"
)

// Parser is the subset of parser.Parser the resolver needs. Declared
// locally to avoid an import cycle between parser and importer.
type Parser interface {
	Parse(source string) (*ast.Stylesheet, error)
}

// Resolver expands @import statements against a FileSystem, starting
// from a given current directory and an ordered list of fallback
// include paths.
type Resolver struct {
	parser       Parser
	fs           FileSystem
	includePaths []string
	cache        map[string]*ast.Stylesheet
	stack        []string
}

// NewResolver constructs a Resolver. parser is used to parse each
// imported file's contents; fs resolves and reads files; includePaths
// is tried, in order, after the current directory when a relative
// import does not resolve there.
func NewResolver(p Parser, fs FileSystem, includePaths []string) *Resolver {
	return &Resolver{
		parser:       p,
		fs:           fs,
		includePaths: includePaths,
		cache:        make(map[string]*ast.Stylesheet),
	}
}

// Expand returns statements with every LESS @import replaced by the
// imported file's own (already-expanded) statements, in place. CSS
// imports and imports with no extracted path (`url(...)` targets) are
// passed through unchanged; a LESS import whose path cannot be found is
// an error.
func (r *Resolver) Expand(statements []ast.Statement, currentDir string) ([]ast.Statement, error) {
	var out []ast.Statement

	for _, stmt := range statements {
		imp, ok := stmt.(*ast.ImportStatement)
		if !ok || imp.IsCSS || imp.Path == nil {
			out = append(out, stmt)
			continue
		}

		resolved, err := r.resolvePath(*imp.Path, currentDir)
		if err != nil {
			return nil, err
		}

		if contains(r.stack, resolved) {
			return nil, lesserr.NewEvalError("cyclic import detected: " + resolved)
		}

		r.stack = append(r.stack, resolved)
		sheet, err := r.loadStylesheet(resolved)
		if err != nil {
			r.stack = r.stack[:len(r.stack)-1]
			return nil, err
		}

		inner, err := r.Expand(sheet.Statements, filepath.Dir(resolved))
		if err != nil {
			r.stack = r.stack[:len(r.stack)-1]
			return nil, err
		}
		r.stack = r.stack[:len(r.stack)-1]

		out = append(out, inner...)
	}

	return out, nil
}

func (r *Resolver) loadStylesheet(resolved string) (*ast.Stylesheet, error) {
	if cached, ok := r.cache[resolved]; ok {
		return cached, nil
	}

	content, err := r.fs.ReadFile(resolved)
	if err != nil {
		return nil, lesserr.WrapEvalError("failed to read import "+resolved, err)
	}

	sheet, err := r.parser.Parse(string(content))
	if err != nil {
		return nil, lesserr.WithFilePath(err, resolved)
	}

	r.cache[resolved] = sheet
	return sheet, nil
}

// resolvePath locates an import target relative to currentDir, falling
// back to each include path in order. An absolute raw path is used
// as-is (only extension inference and existence are applied to it).
func (r *Resolver) resolvePath(raw string, currentDir string) (string, error) {
	if filepath.IsAbs(raw) {
		if found, ok := r.findExisting(raw); ok {
			return found, nil
		}
		return "", lesserr.NewEvalError("import not found: " + raw)
	}

	candidates := []string{currentDir}
	candidates = append(candidates, r.includePaths...)

	for _, dir := range candidates {
		candidate := filepath.Join(dir, raw)
		if found, ok := r.findExisting(candidate); ok {
			return found, nil
		}
	}

	return "", lesserr.NewEvalError("import not found: " + raw)
}

// findExisting tries candidate as-is, then with a .less extension
// appended if candidate has no extension of its own.
func (r *Resolver) findExisting(candidate string) (string, bool) {
	if exists, isDir := r.fs.Stat(candidate); exists && !isDir {
		return r.canonicalize(candidate), true
	}
	if filepath.Ext(candidate) == "" {
		withExt := candidate + ".less"
		if exists, isDir := r.fs.Stat(withExt); exists && !isDir {
			return r.canonicalize(withExt), true
		}
	}
	return "", false
}

func (r *Resolver) canonicalize(p string) string {
	if abs, err := r.fs.Abs(p); err == nil {
		return abs
	}
	return p
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// Expand is a convenience wrapper that constructs a Resolver and
// expands a stylesheet's statements in one call.
func Expand(p Parser, sheet *ast.Stylesheet, fs FileSystem, currentDir string, includePaths []string) (*ast.Stylesheet, error) {
	r := NewResolver(p, fs, includePaths)
	statements, err := r.Expand(sheet.Statements, currentDir)
	if err != nil {
		return nil, err
	}
	return &ast.Stylesheet{Statements: statements}, nil
}
