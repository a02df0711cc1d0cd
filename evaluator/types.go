package evaluator

import "github.com/dellyoung/less-oxide/ast"

// Stylesheet is the flattened result of evaluating an ast.Stylesheet:
// passthrough import lines plus an ordered tree of rules and at-rules
// with every variable, mixin, and arithmetic expression resolved.
type Stylesheet struct {
	Imports []string
	Nodes   []Node
}

// Node is either a Rule or an AtRule.
type Node interface {
	node()
}

// Rule is a selector list plus its resolved declarations.
type Rule struct {
	Selectors    []string
	Declarations []Declaration
}

func (Rule) node() {}

// AtRule is an evaluated at-rule. Declarations holds directly-owned
// declarations (only populated when the at-rule had no enclosing
// selector context); Children holds nested rules/at-rules, with any
// synthetic captured-declaration rule emitted first.
type AtRule struct {
	Name         string
	Params       string
	Declarations []Declaration
	Children     []Node
}

func (AtRule) node() {}

// Declaration is one resolved `property: value` pair.
type Declaration struct {
	Name      string
	Value     string
	Important bool
}

// variableValue is either resolved text or a detached ruleset body
// bound to a variable, as used by `{...}` mixin arguments and invoked
// via a DetachedCall (`@name();`).
type variableValue struct {
	text      string
	ruleset   []ast.RuleBody
	isRuleset bool
}
