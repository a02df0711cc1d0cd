// Package render converts an evaluator.Stylesheet into final CSS text,
// either pretty-printed with two-space indentation or minified onto as
// few bytes as the grammar allows.
package render

import (
	"bytes"
	"strings"

	"github.com/dellyoung/less-oxide/evaluator"
)

// Renderer serializes an already-evaluated stylesheet to CSS text.
type Renderer struct {
	minify bool
}

// New returns a Renderer for either pretty or minified output.
func New(minify bool) *Renderer {
	return &Renderer{minify: minify}
}

// ToCSS renders the whole stylesheet.
func (r *Renderer) ToCSS(sheet *evaluator.Stylesheet) string {
	if r.minify {
		return r.renderMinified(sheet)
	}
	return r.renderPretty(sheet)
}

func (r *Renderer) renderPretty(sheet *evaluator.Stylesheet) string {
	var output bytes.Buffer
	for _, imp := range sheet.Imports {
		output.WriteString(strings.TrimSpace(imp))
		output.WriteByte('\n')
	}
	if len(sheet.Imports) > 0 && len(sheet.Nodes) > 0 {
		output.WriteByte('\n')
	}
	for idx, node := range sheet.Nodes {
		r.renderNodePretty(node, 0, &output)
		if idx+1 < len(sheet.Nodes) {
			output.WriteByte('\n')
		}
	}
	return strings.TrimSpace(output.String())
}

func (r *Renderer) renderMinified(sheet *evaluator.Stylesheet) string {
	var output bytes.Buffer
	for _, imp := range sheet.Imports {
		output.WriteString(strings.TrimSpace(imp))
		output.WriteByte('\n')
	}
	for _, node := range sheet.Nodes {
		r.renderNodeMinified(node, &output)
	}
	result := output.String()
	for strings.HasSuffix(result, "\n") {
		result = result[:len(result)-1]
	}
	return result
}

func (r *Renderer) formatDeclaration(decl evaluator.Declaration) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(decl.Name))
	b.WriteString(": ")
	b.WriteString(strings.TrimSpace(decl.Value))
	if decl.Important {
		b.WriteString(" !important")
	}
	b.WriteByte(';')
	return b.String()
}

func (r *Renderer) formatDeclarationMinified(decl evaluator.Declaration) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(decl.Name))
	b.WriteByte(':')
	b.WriteString(collapseWhitespace(decl.Value))
	if decl.Important {
		b.WriteString("!important")
	}
	return b.String()
}

func (r *Renderer) renderNodePretty(node evaluator.Node, level int, output *bytes.Buffer) {
	switch n := node.(type) {
	case evaluator.Rule:
		r.renderRulePretty(n, level, output)
	case evaluator.AtRule:
		r.renderAtRulePretty(n, level, output)
	}
}

func (r *Renderer) renderRulePretty(rule evaluator.Rule, level int, output *bytes.Buffer) {
	if len(rule.Declarations) == 0 {
		return
	}
	output.WriteString(indent(level))
	output.WriteString(strings.Join(rule.Selectors, ", "))
	output.WriteString(" {\n")
	for _, decl := range rule.Declarations {
		output.WriteString(indent(level + 1))
		output.WriteString(r.formatDeclaration(decl))
		output.WriteByte('\n')
	}
	output.WriteString(indent(level))
	output.WriteString("}\n")
}

func (r *Renderer) renderAtRulePretty(atRule evaluator.AtRule, level int, output *bytes.Buffer) {
	output.WriteString(indent(level))
	output.WriteByte('@')
	output.WriteString(atRule.Name)
	if strings.TrimSpace(atRule.Params) != "" {
		output.WriteByte(' ')
		output.WriteString(strings.TrimSpace(atRule.Params))
	}
	output.WriteString(" {\n")
	for _, decl := range atRule.Declarations {
		output.WriteString(indent(level + 1))
		output.WriteString(r.formatDeclaration(decl))
		output.WriteByte('\n')
	}
	for _, child := range atRule.Children {
		r.renderNodePretty(child, level+1, output)
		if !bytes.HasSuffix(output.Bytes(), []byte("\n")) {
			output.WriteByte('\n')
		}
	}
	output.WriteString(indent(level))
	output.WriteString("}\n")
}

func (r *Renderer) renderNodeMinified(node evaluator.Node, output *bytes.Buffer) {
	switch n := node.(type) {
	case evaluator.Rule:
		r.renderRuleMinified(n, output)
	case evaluator.AtRule:
		r.renderAtRuleMinified(n, output)
	}
}

func (r *Renderer) renderRuleMinified(rule evaluator.Rule, output *bytes.Buffer) {
	if len(rule.Declarations) == 0 {
		return
	}
	output.WriteString(strings.Join(rule.Selectors, ","))
	output.WriteByte('{')
	for idx, decl := range rule.Declarations {
		if idx > 0 {
			output.WriteByte(';')
		}
		output.WriteString(r.formatDeclarationMinified(decl))
	}
	output.WriteByte('}')
}

func (r *Renderer) renderAtRuleMinified(atRule evaluator.AtRule, output *bytes.Buffer) {
	output.WriteByte('@')
	output.WriteString(atRule.Name)
	if strings.TrimSpace(atRule.Params) != "" {
		output.WriteByte(' ')
		output.WriteString(collapseWhitespace(atRule.Params))
	}
	output.WriteByte('{')
	for idx, decl := range atRule.Declarations {
		if idx > 0 {
			output.WriteByte(';')
		}
		output.WriteString(r.formatDeclarationMinified(decl))
	}
	for _, child := range atRule.Children {
		r.renderNodeMinified(child, output)
	}
	output.WriteByte('}')
}

// collapseWhitespace reduces any run of whitespace to a single space
// and trims the result, used for minified declaration values and
// at-rule parameters where exact source spacing doesn't matter.
func collapseWhitespace(input string) string {
	var b strings.Builder
	lastWasSpace := false
	for _, r := range input {
		if isSpace(r) {
			if !lastWasSpace {
				b.WriteByte(' ')
				lastWasSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastWasSpace = false
	}
	return strings.TrimSpace(b.String())
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

const indentUnit = "  "

func indent(level int) string {
	return strings.Repeat(indentUnit, level)
}
