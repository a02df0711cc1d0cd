package importer

import (
	"testing"

	"github.com/dellyoung/less-oxide/ast"
	"github.com/dellyoung/less-oxide/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memFS is a small in-memory FileSystem used by tests to avoid
// touching disk.
type memFS struct {
	files map[string]string
	dirs  map[string]bool
}

func newMemFS(files map[string]string) *memFS {
	return &memFS{files: files, dirs: map[string]bool{}}
}

func (m *memFS) ReadFile(path string) ([]byte, error) {
	if content, ok := m.files[path]; ok {
		return []byte(content), nil
	}
	return nil, &fsNotFoundError{path: path}
}

func (m *memFS) Stat(path string) (bool, bool) {
	if _, ok := m.files[path]; ok {
		return true, false
	}
	if m.dirs[path] {
		return true, true
	}
	return false, false
}

func (m *memFS) Abs(path string) (string, error) {
	return path, nil
}

type fsNotFoundError struct{ path string }

func (e *fsNotFoundError) Error() string { return "file not found: " + e.path }

type parserAdapter struct{ p *parser.Parser }

func (a parserAdapter) Parse(source string) (*ast.Stylesheet, error) {
	return a.p.Parse(source)
}

func TestResolverExpandsSimpleImport(t *testing.T) {
	fs := newMemFS(map[string]string{
		"/proj/vars.less": "@gap: 10px;",
	})
	sheet := &ast.Stylesheet{Statements: []ast.Statement{
		&ast.ImportStatement{Raw: `@import "vars.less";`, Path: strPtr("vars.less")},
	}}

	r := NewResolver(parserAdapter{parser.New()}, fs, nil)
	out, err := r.Expand(sheet.Statements, "/proj")
	require.NoError(t, err)
	require.Len(t, out, 1)
	v, ok := out[0].(*ast.VariableDeclaration)
	require.True(t, ok)
	assert.Equal(t, "gap", v.Name)
}

func TestResolverInfersLessExtension(t *testing.T) {
	fs := newMemFS(map[string]string{
		"/proj/vars.less": "@gap: 10px;",
	})
	sheet := &ast.Stylesheet{Statements: []ast.Statement{
		&ast.ImportStatement{Raw: `@import "vars";`, Path: strPtr("vars")},
	}}

	r := NewResolver(parserAdapter{parser.New()}, fs, nil)
	out, err := r.Expand(sheet.Statements, "/proj")
	require.NoError(t, err)
	require.Len(t, out, 1)
}

func TestResolverUsesIncludePathsFallback(t *testing.T) {
	fs := newMemFS(map[string]string{
		"/lib/vars.less": "@gap: 10px;",
	})
	sheet := &ast.Stylesheet{Statements: []ast.Statement{
		&ast.ImportStatement{Raw: `@import "vars.less";`, Path: strPtr("vars.less")},
	}}

	r := NewResolver(parserAdapter{parser.New()}, fs, []string{"/lib"})
	out, err := r.Expand(sheet.Statements, "/proj")
	require.NoError(t, err)
	require.Len(t, out, 1)
}

func TestResolverDetectsCyclicImport(t *testing.T) {
	fs := newMemFS(map[string]string{
		"/proj/a.less": `@import "b.less";`,
		"/proj/b.less": `@import "a.less";`,
	})
	sheet := &ast.Stylesheet{Statements: []ast.Statement{
		&ast.ImportStatement{Raw: `@import "a.less";`, Path: strPtr("a.less")},
	}}

	r := NewResolver(parserAdapter{parser.New()}, fs, nil)
	_, err := r.Expand(sheet.Statements, "/proj")
	assert.Error(t, err)
}

func TestResolverPassesThroughCSSImport(t *testing.T) {
	sheet := &ast.Stylesheet{Statements: []ast.Statement{
		&ast.ImportStatement{Raw: `@import (css) "https://cdn.example.com/reset.css";`, IsCSS: true, Path: strPtr("https://cdn.example.com/reset.css")},
	}}

	r := NewResolver(parserAdapter{parser.New()}, newMemFS(nil), nil)
	out, err := r.Expand(sheet.Statements, "/proj")
	require.NoError(t, err)
	require.Len(t, out, 1)
	imp, ok := out[0].(*ast.ImportStatement)
	require.True(t, ok)
	assert.True(t, imp.IsCSS)
}

func TestResolverErrorsOnMissingFile(t *testing.T) {
	sheet := &ast.Stylesheet{Statements: []ast.Statement{
		&ast.ImportStatement{Raw: `@import "missing.less";`, Path: strPtr("missing.less")},
	}}

	r := NewResolver(parserAdapter{parser.New()}, newMemFS(nil), nil)
	_, err := r.Expand(sheet.Statements, "/proj")
	assert.Error(t, err)
}

func TestResolverCachesRepeatedImport(t *testing.T) {
	reads := 0
	fs := &countingFS{memFS: newMemFS(map[string]string{
		"/proj/vars.less": "@gap: 10px;",
	}), reads: &reads}

	sheet := &ast.Stylesheet{Statements: []ast.Statement{
		&ast.ImportStatement{Raw: `@import "vars.less";`, Path: strPtr("vars.less")},
		&ast.ImportStatement{Raw: `@import "vars.less";`, Path: strPtr("vars.less")},
	}}

	r := NewResolver(parserAdapter{parser.New()}, fs, nil)
	_, err := r.Expand(sheet.Statements, "/proj")
	require.NoError(t, err)
	assert.Equal(t, 1, reads)
}

type countingFS struct {
	*memFS
	reads *int
}

func (c *countingFS) ReadFile(path string) ([]byte, error) {
	*c.reads++
	return c.memFS.ReadFile(path)
}

func strPtr(s string) *string { return &s }
