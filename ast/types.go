// Package ast defines the syntax tree produced by the parser: a
// stylesheet is an ordered sequence of statements, each either a plain
// CSS construct or a LESS extension (variables, mixins, imports).
package ast

// Stylesheet is the root node: an ordered sequence of top-level statements.
// Insertion order defines emission order.
type Stylesheet struct {
	Statements []Statement
}

// Statement is a top-level construct inside a Stylesheet.
type Statement interface {
	stmt()
}

// RuleBody is an item inside a RuleSet's or AtRule's body. It shares most
// variants with Statement (all but ImportStatement) plus Declaration and
// DetachedCall, which never appear at the top level of a Stylesheet.
type RuleBody interface {
	ruleBody()
}

// ValuePiece is either literal text or a variable reference; a Value is
// the concatenation of these at evaluation time.
type ValuePiece interface {
	valuePiece()
}

// Literal is a verbatim text fragment of a Value.
type Literal struct {
	Text string
}

func (Literal) valuePiece() {}

// VariableRef is a `@name` reference inside a Value, resolved by lookup
// at evaluation time. The name excludes the leading `@`.
type VariableRef struct {
	Name string
}

func (VariableRef) valuePiece() {}

// Value is an ordered sequence of literal and variable-reference pieces.
type Value struct {
	Pieces []ValuePiece
}

// VariableDeclaration is `@name: value;`. Name excludes the leading `@`.
type VariableDeclaration struct {
	Name  string
	Value Value
}

func (*VariableDeclaration) stmt()     {}
func (*VariableDeclaration) ruleBody() {}

// Selector is one comma-separated, trimmed, non-empty selector string.
type Selector struct {
	Value string
}

// RuleSet is a selector list plus a body of declarations and nested items.
type RuleSet struct {
	Selectors []Selector
	Body      []RuleBody
}

func (*RuleSet) stmt()     {}
func (*RuleSet) ruleBody() {}

// Declaration is a `property: value[ !important];` pair. Name may contain
// `@{var}` interpolation tokens, resolved at evaluation.
type Declaration struct {
	Name      string
	Value     Value
	Important bool
}

func (*Declaration) ruleBody() {}

// Guard carries the raw, unparsed text of a `when (...)` condition
// attached to a mixin definition or at-rule. The parser preserves this
// text instead of discarding it; whether it is evaluated is up to the
// evaluator (see evaluator.GuardEvaluator).
type Guard struct {
	Raw string
}

// AtRule is `@name params { body }`. Name excludes the leading `@`.
// Params is the raw text between name and `{`, with inner parenthesised
// groups preserved verbatim.
type AtRule struct {
	Name   string
	Params string
	Body   []RuleBody
	Guard  *Guard
}

func (*AtRule) stmt()     {}
func (*AtRule) ruleBody() {}

// ImportStatement is `@import [(opts)] target;`. Path is nil when the
// target was expressed as `url(...)`. IsCSS is true when options contain
// `css`, when Path ends in `.css`, or when Path is absent.
type ImportStatement struct {
	Raw   string
	Path  *string
	IsCSS bool
}

func (*ImportStatement) stmt() {}

// MixinParam is one formal parameter of a MixinDefinition.
type MixinParam struct {
	Name    string
	Default *Value
}

// MixinDefinition is `.name(@p, ...) [when (...)] { body }`. Name retains
// its leading `.` or `#`.
type MixinDefinition struct {
	Name   string
	Params []MixinParam
	Body   []RuleBody
	Guard  *Guard
}

func (*MixinDefinition) stmt()     {}
func (*MixinDefinition) ruleBody() {}

// MixinArgument is one actual argument of a MixinCall: either a Value or
// a brace-enclosed detached ruleset.
type MixinArgument interface {
	mixinArgument()
}

// ValueArgument is a plain value argument of a mixin call.
type ValueArgument struct {
	Value Value
}

func (ValueArgument) mixinArgument() {}

// RulesetArgument is a `{ ... }` detached-ruleset argument of a mixin call.
type RulesetArgument struct {
	Body []RuleBody
}

func (RulesetArgument) mixinArgument() {}

// MixinCall is `.name(args);` or `#name(args);`.
type MixinCall struct {
	Name string
	Args []MixinArgument
}

func (*MixinCall) stmt()     {}
func (*MixinCall) ruleBody() {}

// DetachedCall is `@name();`, always zero-argument: it invokes a variable
// whose bound value is a detached ruleset.
type DetachedCall struct {
	Name string
}

func (*DetachedCall) ruleBody() {}
