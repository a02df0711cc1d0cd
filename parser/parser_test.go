package parser

import (
	"testing"

	"github.com/dellyoung/less-oxide/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseOK(t *testing.T, src string) *ast.Stylesheet {
	t.Helper()
	sheet, err := New().Parse(src)
	require.NoError(t, err)
	return sheet
}

func TestParseVariableDeclaration(t *testing.T) {
	sheet := parseOK(t, "@gap: 12px;")
	require.Len(t, sheet.Statements, 1)
	v, ok := sheet.Statements[0].(*ast.VariableDeclaration)
	require.True(t, ok)
	assert.Equal(t, "gap", v.Name)
	require.Len(t, v.Value.Pieces, 1)
	assert.Equal(t, ast.Literal{Text: "12px"}, v.Value.Pieces[0])
}

func TestParseRulesetWithDeclaration(t *testing.T) {
	sheet := parseOK(t, ".demo { color: #333; font-weight: bold; }")
	require.Len(t, sheet.Statements, 1)
	rule, ok := sheet.Statements[0].(*ast.RuleSet)
	require.True(t, ok)
	require.Len(t, rule.Selectors, 1)
	assert.Equal(t, ".demo", rule.Selectors[0].Value)
	require.Len(t, rule.Body, 2)
}

func TestParseMultipleSelectorsCommaSeparated(t *testing.T) {
	sheet := parseOK(t, "h1, h2 ,h3{ margin: 0; }")
	rule := sheet.Statements[0].(*ast.RuleSet)
	require.Len(t, rule.Selectors, 3)
	assert.Equal(t, "h1", rule.Selectors[0].Value)
	assert.Equal(t, "h2", rule.Selectors[1].Value)
	assert.Equal(t, "h3", rule.Selectors[2].Value)
}

func TestParseNestedRuleset(t *testing.T) {
	sheet := parseOK(t, ".outer { .inner { color: red; } }")
	outer := sheet.Statements[0].(*ast.RuleSet)
	require.Len(t, outer.Body, 1)
	_, ok := outer.Body[0].(*ast.RuleSet)
	assert.True(t, ok)
}

func TestParseMixinDefinitionAndCall(t *testing.T) {
	sheet := parseOK(t, `
		.box(@w: 10px) {
			width: @w;
		}
		.usage {
			.box(20px);
		}
	`)
	require.Len(t, sheet.Statements, 2)
	mixin, ok := sheet.Statements[0].(*ast.MixinDefinition)
	require.True(t, ok)
	assert.Equal(t, ".box", mixin.Name)
	require.Len(t, mixin.Params, 1)
	assert.Equal(t, "w", mixin.Params[0].Name)
	require.NotNil(t, mixin.Params[0].Default)

	usage := sheet.Statements[1].(*ast.RuleSet)
	call, ok := usage.Body[0].(*ast.MixinCall)
	require.True(t, ok)
	assert.Equal(t, ".box", call.Name)
	require.Len(t, call.Args, 1)
}

func TestParseMixinGuardIsPreserved(t *testing.T) {
	sheet := parseOK(t, `
		.box(@w) when (@w > 0) {
			width: @w;
		}
	`)
	mixin := sheet.Statements[0].(*ast.MixinDefinition)
	require.NotNil(t, mixin.Guard)
	assert.Equal(t, "(@w > 0)", mixin.Guard.Raw)
}

func TestParseDetachedRulesetArgumentAndCall(t *testing.T) {
	sheet := parseOK(t, `
		@detached: { color: blue; };
		.usage {
			@detached();
		}
	`)
	v := sheet.Statements[0].(*ast.VariableDeclaration)
	assert.Equal(t, "detached", v.Name)

	usage := sheet.Statements[1].(*ast.RuleSet)
	call, ok := usage.Body[0].(*ast.DetachedCall)
	require.True(t, ok)
	assert.Equal(t, "detached", call.Name)
}

func TestParseMixinCallWithRulesetArgument(t *testing.T) {
	sheet := parseOK(t, `
		.usage {
			.apply({ color: green; });
		}
	`)
	usage := sheet.Statements[0].(*ast.RuleSet)
	call := usage.Body[0].(*ast.MixinCall)
	require.Len(t, call.Args, 1)
	_, ok := call.Args[0].(ast.RulesetArgument)
	assert.True(t, ok)
}

func TestParseAtRuleWithParams(t *testing.T) {
	sheet := parseOK(t, `
		@media (min-width: 768px) {
			.panel { color: red; }
		}
	`)
	ar := sheet.Statements[0].(*ast.AtRule)
	assert.Equal(t, "media", ar.Name)
	assert.Equal(t, "(min-width: 768px)", ar.Params)
	require.Len(t, ar.Body, 1)
}

func TestParseAtRuleWithoutParams(t *testing.T) {
	sheet := parseOK(t, `
		@font-face {
			font-family: "Example";
		}
	`)
	ar := sheet.Statements[0].(*ast.AtRule)
	assert.Equal(t, "font-face", ar.Name)
	assert.Equal(t, "", ar.Params)
}

func TestParseImportQuotedPath(t *testing.T) {
	sheet := parseOK(t, `@import "vars.less";`)
	imp := sheet.Statements[0].(*ast.ImportStatement)
	require.NotNil(t, imp.Path)
	assert.Equal(t, "vars.less", *imp.Path)
	assert.False(t, imp.IsCSS)
}

func TestParseImportCSSPassthrough(t *testing.T) {
	sheet := parseOK(t, `@import (css) "https://cdn.example.com/reset.css";`)
	imp := sheet.Statements[0].(*ast.ImportStatement)
	assert.True(t, imp.IsCSS)
	require.NotNil(t, imp.Path)
	assert.Equal(t, "https://cdn.example.com/reset.css", *imp.Path)
}

func TestParseImportURLHasNoPath(t *testing.T) {
	sheet := parseOK(t, `@import url(theme.css);`)
	imp := sheet.Statements[0].(*ast.ImportStatement)
	assert.Nil(t, imp.Path)
	assert.True(t, imp.IsCSS)
}

func TestParseDeclarationValueWithVariableReference(t *testing.T) {
	sheet := parseOK(t, ".a { width: @gap + 2px; }")
	rule := sheet.Statements[0].(*ast.RuleSet)
	decl := rule.Body[0].(*ast.Declaration)
	require.Len(t, decl.Value.Pieces, 2)
	assert.Equal(t, ast.VariableRef{Name: "gap"}, decl.Value.Pieces[0])
}

func TestParseHyphenatedIdentifierIsNotAmbiguousWithMixin(t *testing.T) {
	sheet := parseOK(t, ".a { display: inline-flex; }")
	rule := sheet.Statements[0].(*ast.RuleSet)
	decl, ok := rule.Body[0].(*ast.Declaration)
	require.True(t, ok)
	assert.Equal(t, "display", decl.Name)
}

func TestParseMissingClosingBraceIsError(t *testing.T) {
	_, err := New().Parse(".a { color: red;")
	assert.Error(t, err)
}

func TestParseEmptySelectorIsError(t *testing.T) {
	_, err := New().Parse(" , { color: red; }")
	assert.Error(t, err)
}

func TestParsePropertyInterpolation(t *testing.T) {
	sheet := parseOK(t, ".a { @{prop}: red; }")
	rule := sheet.Statements[0].(*ast.RuleSet)
	decl := rule.Body[0].(*ast.Declaration)
	assert.Equal(t, "@{prop}", decl.Name)
}
