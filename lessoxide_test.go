package lessoxide

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileOK(t *testing.T, src string, opts Options) string {
	t.Helper()
	css, err := Compile(src, opts)
	require.NoError(t, err)
	return css
}

func TestCompileBasicVariable(t *testing.T) {
	src := `@base: #111;
body {
  color: @base;
}`
	css := compileOK(t, src, Options{})
	assert.Contains(t, css, "color: #111")
}

func TestCompileNestedSelectors(t *testing.T) {
	src := `.btn {
  color: #fff;
  &:hover {
    color: #000;
  }
}`
	css := compileOK(t, src, Options{})
	assert.Contains(t, css, ".btn:hover")
	assert.Contains(t, css, "color: #000")
}

func TestCompileImportantFlag(t *testing.T) {
	src := `@base: 10px;
.box {
  margin: @base !important;
}`
	css := compileOK(t, src, Options{Minify: true})
	assert.Contains(t, css, "margin:10px!important")
	assert.NotContains(t, css, "!important!important")
}

func TestCompileMixinInvocation(t *testing.T) {
	src := `.rounded(@radius) {
  border-radius: @radius;
}

.card {
  .rounded(8px);
}`
	css := compileOK(t, src, Options{})
	assert.Contains(t, css, "border-radius: 8px")
}

func TestCompileArithmeticExpression(t *testing.T) {
	src := `@base: 10px;
.box {
  width: @base + 5px;
  padding: (@base * 2);
}`
	css := compileOK(t, src, Options{})
	assert.Contains(t, css, "width: 15px")
	assert.Contains(t, css, "padding: 20px")
}

func TestCompileMultipleArithmeticSegments(t *testing.T) {
	src := `@spacing: 12px;
.box {
  padding: (@spacing * 0.75) (@spacing * 1.5);
}`
	css := compileOK(t, src, Options{})
	assert.Contains(t, css, "padding: 9px 18px")
}

func TestCompileColorFunctions(t *testing.T) {
	src := `@brand: #336699;
.btn {
  background: lighten(@brand, 20%);
  border-color: darken(@brand, 10%);
  color: fade(#ffffff, 40%);
}`
	css := compileOK(t, src, Options{})
	assert.Contains(t, css, "background: #6699cc")
	assert.Contains(t, css, "border-color: #264c73")
	assert.Contains(t, css, "color: rgba(255, 255, 255, 0.4)")
}

func TestCompileMixinWithDefault(t *testing.T) {
	src := `.shadow(@blur: 4px) {
  box-shadow: 0 0 @blur rgba(0, 0, 0, 0.2);
}

.panel {
  .shadow();
}

.toast {
  .shadow(8px);
}`
	css := compileOK(t, src, Options{})
	assert.Contains(t, css, ".panel")
	assert.Contains(t, css, "box-shadow: 0 0 4px rgba(0, 0, 0, 0.2)")
	assert.Contains(t, css, "box-shadow: 0 0 8px rgba(0, 0, 0, 0.2)")
}

func TestCompileColorExtremes(t *testing.T) {
	src := `@white: #ffffff;
.banner {
  color: fade(@white, 100%);
  background: lighten(#000, 0%);
}`
	css := compileOK(t, src, Options{})
	assert.Contains(t, css, "color: rgba(255, 255, 255, 1)")
	assert.Contains(t, css, "background: #000000")
}

func TestCompileArithmeticDivisionAndNegative(t *testing.T) {
	src := `@gap: 12px;
.grid {
  margin: -(@gap / 2);
  width: (@gap * -2);
}`
	css := compileOK(t, src, Options{})
	assert.Contains(t, css, "margin: -6px")
	assert.Contains(t, css, "width: -24px")
}

func TestCompileInlineColorFunction(t *testing.T) {
	src := `.shadow {
  box-shadow: 0 0 5px fade(#336699, 30%);
}`
	css := compileOK(t, src, Options{})
	assert.Contains(t, css, "rgba(51, 102, 153, 0.3)")
	assert.NotContains(t, css, "fade(")
}

func TestCompileImportStatement(t *testing.T) {
	src := `@import "reset.css";
@color: #000;
body {
  color: @color;
}`
	pretty := compileOK(t, src, Options{})
	assert.Contains(t, pretty, `@import "reset.css";`)
	assert.Contains(t, pretty, "color: #000")
}

func TestCompileVariableAndNesting(t *testing.T) {
	src := `@spacing: 8px;
.container {
  padding: @spacing;
  .title {
    margin-bottom: @spacing;
  }
}`
	css := compileOK(t, src, Options{})
	assert.Contains(t, css, ".container")
	assert.Contains(t, css, ".container .title")
}

func TestCompileMinifyOutput(t *testing.T) {
	src := `.demo {
  color: #333;
  font-weight: bold;
}`
	css := compileOK(t, src, Options{Minify: true})
	assert.Equal(t, ".demo{color:#333;font-weight:bold}", css)
}

func TestCompileMixinAndColorFunctions(t *testing.T) {
	src := `.rounded(@radius) {
  border-radius: @radius;
}

.badge {
  .rounded(4px);
  background: lighten(#123456, 15%);
}`
	css := compileOK(t, src, Options{Minify: true})
	assert.Contains(t, css, ".badge{border-radius:4px")
	assert.Contains(t, css, "background:#1f5a95")
}

func TestCompileMixinDefaultAndOverride(t *testing.T) {
	src := `.shadow(@x: 0, @y: 2px, @blur: 4px) {
  box-shadow: @x @y @blur rgba(0, 0, 0, 0.4);
}

.dialog {
  .shadow();
}

.dialog-elevated {
  .shadow(0, 8px, 16px);
}`
	css := compileOK(t, src, Options{Minify: true})
	assert.Contains(t, css, ".dialog{box-shadow:0 2px 4px rgba(0, 0, 0, 0.4)}")
	assert.Contains(t, css, ".dialog-elevated{box-shadow:0 8px 16px rgba(0, 0, 0, 0.4)}")
}

func TestCompileArithmeticMultipleSegmentsMinified(t *testing.T) {
	src := `@base: 5px;
.layout {
  padding: (@base * 2) (@base * 4) (@base / 5);
}`
	css := compileOK(t, src, Options{Minify: true})
	assert.Contains(t, css, ".layout{padding:10px 20px 1px}")
}

func TestCompileImportStatementPassthrough(t *testing.T) {
	src := `@import (css) "https://cdn.example.com/reset.css";
body {
  color: #333;
}`
	css := compileOK(t, src, Options{Minify: true})
	assert.True(t, strings.HasPrefix(css, `@import "https://cdn.example.com/reset.css";`))
	assert.Contains(t, css, "body{color:#333}")
}

func TestCompileNestedMediaQueriesAndSupports(t *testing.T) {
	src := `.panel {
  color: #333;
  @media (min-width: 800px) {
    color: #000;
    .panel__title {
      font-size: 20px;
    }
  }
}

@media (max-width: 600px) {
  .panel {
    width: 100%;
  }
}`
	css := compileOK(t, src, Options{})
	assert.Contains(t, css, ".panel {\n  color: #333;")
	assert.Contains(t, css, "@media (min-width: 800px)")
	assert.Contains(t, css, ".panel__title")
	assert.Contains(t, css, "@media (max-width: 600px)")
	assert.Contains(t, css, ".panel {\n    width: 100%;")
}

func TestCompileFontFaceAndKeyframesBlocks(t *testing.T) {
	src := `@font-face {
  font-family: 'Open Sans';
  src: url('/fonts/open-sans.woff2') format('woff2');
}

@keyframes fade-in {
  from {
    opacity: 0;
  }
  to {
    opacity: 1;
  }
}`
	css := compileOK(t, src, Options{Minify: true})
	assert.Contains(t, css, "@font-face{font-family:'Open Sans';src:url('/fonts/open-sans.woff2') format('woff2')}")
	assert.Contains(t, css, "@keyframes fade-in{from{opacity:0}to{opacity:1}}")
}
