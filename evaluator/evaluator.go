// Package evaluator walks a parsed ast.Stylesheet and produces a flat
// tree of resolved rules and at-rules: variables substituted, mixins
// expanded, selectors combined, arithmetic and color functions
// computed. It keeps a parallel stack of variable scopes and mixin
// scopes, pushing a new frame per ruleset/mixin/at-rule body and
// popping it on exit, mirroring a block-scoped interpreter.
package evaluator

import (
	"strings"

	"github.com/dellyoung/less-oxide/ast"
)

// Evaluator evaluates one ast.Stylesheet at a time. It is not safe for
// concurrent use; construct a new one per compile.
type Evaluator struct {
	scopes      []*variableScope
	mixinScopes []*mixinScope
	guard       GuardEvaluator
}

// New returns an Evaluator with a single, empty root scope.
func New() *Evaluator {
	return &Evaluator{
		scopes:      []*variableScope{newOrderedMap[variableValue]()},
		mixinScopes: []*mixinScope{newOrderedMap[*ast.MixinDefinition]()},
		guard:       exprGuardEvaluator{},
	}
}

// Evaluate walks the whole stylesheet, returning passthrough import
// lines and the flattened node tree.
func (e *Evaluator) Evaluate(sheet *ast.Stylesheet) (*Stylesheet, error) {
	var imports []string
	var nodes []Node

	for _, stmt := range sheet.Statements {
		switch s := stmt.(type) {
		case *ast.ImportStatement:
			imports = append(imports, s.Raw)
		case *ast.VariableDeclaration:
			value, err := e.evalValue(&s.Value)
			if err != nil {
				return nil, err
			}
			e.setVariableText(s.Name, value)
		case *ast.RuleSet:
			produced, err := e.evalRuleSet(s, nil)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, produced...)
		case *ast.AtRule:
			evaluated, err := e.evalAtRule(s, nil)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, evaluated)
		case *ast.MixinDefinition:
			e.setMixin(s)
		case *ast.MixinCall:
			var declarations []Declaration
			var produced []Node
			if err := e.expandMixin(s, nil, &declarations, &produced); err != nil {
				return nil, err
			}
			if len(declarations) > 0 {
				return nil, evalErrorf("top-level mixin call produced declarations with nowhere to attach")
			}
			nodes = append(nodes, produced...)
		}
	}

	return &Stylesheet{Imports: imports, Nodes: nodes}, nil
}

func (e *Evaluator) evalRuleSet(rule *ast.RuleSet, parentSelectors []string) ([]Node, error) {
	e.pushScope()
	e.pushMixinScope()
	defer e.popMixinScope()
	defer e.popScope()

	selectors := e.combineSelectors(parentSelectors, rule.Selectors)
	var declarations []Declaration
	var pending []Node

	for _, item := range rule.Body {
		if err := e.handleRuleBodyItem(item, selectors, &declarations, &pending); err != nil {
			return nil, err
		}
	}

	var output []Node
	if len(declarations) > 0 {
		output = append(output, Rule{Selectors: append([]string(nil), selectors...), Declarations: declarations})
	}
	output = append(output, pending...)

	return output, nil
}

func (e *Evaluator) handleRuleBodyItem(item ast.RuleBody, selectors []string, declarations *[]Declaration, pending *[]Node) error {
	switch v := item.(type) {
	case *ast.VariableDeclaration:
		value, err := e.evalValue(&v.Value)
		if err != nil {
			return err
		}
		e.setVariableText(v.Name, value)
	case *ast.Declaration:
		decl, err := e.evalDeclaration(v)
		if err != nil {
			return err
		}
		*declarations = append(*declarations, decl)
	case *ast.RuleSet:
		nested, err := e.evalRuleSet(v, selectors)
		if err != nil {
			return err
		}
		*pending = append(*pending, nested...)
	case *ast.MixinDefinition:
		e.setMixin(v)
	case *ast.MixinCall:
		return e.expandMixin(v, selectors, declarations, pending)
	case *ast.AtRule:
		evaluated, err := e.evalAtRule(v, selectors)
		if err != nil {
			return err
		}
		*pending = append(*pending, evaluated)
	case *ast.DetachedCall:
		return e.invokeDetachedRuleset(v.Name, selectors, declarations, pending)
	}
	return nil
}

func (e *Evaluator) expandMixin(call *ast.MixinCall, selectors []string, declarations *[]Declaration, pending *[]Node) error {
	definition, err := e.resolveMixin(call.Name)
	if err != nil {
		return err
	}
	if len(call.Args) > len(definition.Params) {
		return evalErrorf("mixin %s has too many arguments: expected %d, got %d", call.Name, len(definition.Params), len(call.Args))
	}
	if definition.Guard != nil {
		ok, err := e.guard.Evaluate(definition.Guard.Raw, e)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	e.pushScope()
	e.pushMixinScope()

	for i, arg := range call.Args {
		param := definition.Params[i]
		switch a := arg.(type) {
		case ast.ValueArgument:
			value, err := e.evalValue(&a.Value)
			if err != nil {
				e.popMixinScope()
				e.popScope()
				return err
			}
			e.setVariableText(param.Name, value)
		case ast.RulesetArgument:
			e.setVariableRuleset(param.Name, a.Body)
		}
	}

	if len(call.Args) < len(definition.Params) {
		for _, param := range definition.Params[len(call.Args):] {
			if param.Default != nil {
				value, err := e.evalValue(param.Default)
				if err != nil {
					e.popMixinScope()
					e.popScope()
					return err
				}
				e.setVariableText(param.Name, value)
			} else {
				e.popMixinScope()
				e.popScope()
				return evalErrorf("mixin %s is missing required argument @%s", definition.Name, param.Name)
			}
		}
	}

	for _, item := range definition.Body {
		if err := e.handleRuleBodyItem(item, selectors, declarations, pending); err != nil {
			e.popMixinScope()
			e.popScope()
			return err
		}
	}

	e.popMixinScope()
	e.popScope()
	return nil
}

func (e *Evaluator) invokeDetachedRuleset(name string, selectors []string, declarations *[]Declaration, pending *[]Node) error {
	body, err := e.resolveRulesetVariable(name)
	if err != nil {
		return err
	}
	for _, item := range body {
		if err := e.handleRuleBodyItem(item, selectors, declarations, pending); err != nil {
			return err
		}
	}
	return nil
}

func (e *Evaluator) evalAtRule(atRule *ast.AtRule, selectors []string) (AtRule, error) {
	if atRule.Guard != nil {
		ok, err := e.guard.Evaluate(atRule.Guard.Raw, e)
		if err != nil {
			return AtRule{}, err
		}
		if !ok {
			return AtRule{Name: atRule.Name, Params: atRule.Params}, nil
		}
	}

	e.pushScope()
	e.pushMixinScope()

	var scopedDeclarations []Declaration
	var atRuleDeclarations []Declaration
	var children []Node

	for _, item := range atRule.Body {
		switch v := item.(type) {
		case *ast.VariableDeclaration:
			value, err := e.evalValue(&v.Value)
			if err != nil {
				e.popMixinScope()
				e.popScope()
				return AtRule{}, err
			}
			e.setVariableText(v.Name, value)
		case *ast.Declaration:
			decl, err := e.evalDeclaration(v)
			if err != nil {
				e.popMixinScope()
				e.popScope()
				return AtRule{}, err
			}
			if len(selectors) == 0 {
				atRuleDeclarations = append(atRuleDeclarations, decl)
			} else {
				scopedDeclarations = append(scopedDeclarations, decl)
			}
		case *ast.RuleSet:
			nested, err := e.evalRuleSet(v, selectors)
			if err != nil {
				e.popMixinScope()
				e.popScope()
				return AtRule{}, err
			}
			children = append(children, nested...)
		case *ast.MixinDefinition:
			e.setMixin(v)
		case *ast.MixinCall:
			var err error
			if len(selectors) == 0 {
				err = e.expandMixin(v, selectors, &atRuleDeclarations, &children)
			} else {
				err = e.expandMixin(v, selectors, &scopedDeclarations, &children)
			}
			if err != nil {
				e.popMixinScope()
				e.popScope()
				return AtRule{}, err
			}
		case *ast.AtRule:
			evaluated, err := e.evalAtRule(v, selectors)
			if err != nil {
				e.popMixinScope()
				e.popScope()
				return AtRule{}, err
			}
			children = append(children, evaluated)
		case *ast.DetachedCall:
			var err error
			if len(selectors) == 0 {
				err = e.invokeDetachedRuleset(v.Name, selectors, &atRuleDeclarations, &children)
			} else {
				err = e.invokeDetachedRuleset(v.Name, selectors, &scopedDeclarations, &children)
			}
			if err != nil {
				e.popMixinScope()
				e.popScope()
				return AtRule{}, err
			}
		}
	}

	var scopedNodes []Node
	if len(selectors) > 0 && len(scopedDeclarations) > 0 {
		scopedNodes = append(scopedNodes, Rule{
			Selectors:    append([]string(nil), selectors...),
			Declarations: scopedDeclarations,
		})
	}
	scopedNodes = append(scopedNodes, children...)

	e.popMixinScope()
	e.popScope()

	result := AtRule{
		Name:     atRule.Name,
		Params:   atRule.Params,
		Children: scopedNodes,
	}
	if len(selectors) == 0 {
		result.Declarations = atRuleDeclarations
	}
	return result, nil
}

func (e *Evaluator) evalDeclaration(decl *ast.Declaration) (Declaration, error) {
	name, err := e.interpolatePropertyName(decl.Name)
	if err != nil {
		return Declaration{}, err
	}
	value, err := e.evalValue(&decl.Value)
	if err != nil {
		return Declaration{}, err
	}
	important := decl.Important
	if !important {
		if stripped, ok := stripImportant(value); ok {
			value = stripped
			important = true
		}
	}
	return Declaration{Name: name, Value: value, Important: important}, nil
}

func (e *Evaluator) interpolatePropertyName(raw string) (string, error) {
	if !strings.Contains(raw, "@{") {
		return trimSpace(raw), nil
	}
	var out strings.Builder
	i := 0
	for i < len(raw) {
		if raw[i] == '@' && i+1 < len(raw) && raw[i+1] == '{' {
			i += 2
			start := i
			for i < len(raw) && raw[i] != '}' {
				i++
			}
			name := raw[start:i]
			if i < len(raw) {
				i++ // consume '}'
			}
			if name == "" {
				return "", evalErrorf("property interpolation is missing a variable name")
			}
			value, err := e.resolveVariableText(name)
			if err != nil {
				return "", err
			}
			out.WriteString(trimSpace(value))
		} else {
			out.WriteByte(raw[i])
			i++
		}
	}
	return trimSpace(out.String()), nil
}

func (e *Evaluator) evalValue(value *ast.Value) (string, error) {
	var buffer strings.Builder
	for _, piece := range value.Pieces {
		switch p := piece.(type) {
		case ast.Literal:
			buffer.WriteString(p.Text)
		case ast.VariableRef:
			resolved, err := e.resolveVariableText(p.Name)
			if err != nil {
				return "", err
			}
			buffer.WriteString(resolved)
		}
	}
	return e.computeValue(trimSpace(buffer.String()))
}

func (e *Evaluator) resolveVariableText(name string) (string, error) {
	v, err := e.lookupVariable(name)
	if err != nil {
		return "", err
	}
	if v.isRuleset {
		return "", evalErrorf("variable @%s is not usable as text", name)
	}
	return v.text, nil
}

func (e *Evaluator) resolveRulesetVariable(name string) ([]ast.RuleBody, error) {
	v, err := e.lookupVariable(name)
	if err != nil {
		return nil, err
	}
	if !v.isRuleset {
		return nil, evalErrorf("variable @%s is not a callable ruleset", name)
	}
	return v.ruleset, nil
}

func (e *Evaluator) lookupVariable(name string) (variableValue, error) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if v, ok := e.scopes[i].get(name); ok {
			return v, nil
		}
	}
	return variableValue{}, evalErrorf("undefined variable @%s", name)
}

func (e *Evaluator) setVariableText(name, value string) {
	e.scopes[len(e.scopes)-1].insert(name, variableValue{text: value})
}

func (e *Evaluator) setVariableRuleset(name string, body []ast.RuleBody) {
	e.scopes[len(e.scopes)-1].insert(name, variableValue{ruleset: body, isRuleset: true})
}

func (e *Evaluator) setMixin(def *ast.MixinDefinition) {
	e.mixinScopes[len(e.mixinScopes)-1].insert(def.Name, def)
}

func (e *Evaluator) resolveMixin(name string) (*ast.MixinDefinition, error) {
	for i := len(e.mixinScopes) - 1; i >= 0; i-- {
		if def, ok := e.mixinScopes[i].get(name); ok {
			return def, nil
		}
	}
	return nil, evalErrorf("undefined mixin %s", name)
}

func (e *Evaluator) pushScope() {
	e.scopes = append(e.scopes, newOrderedMap[variableValue]())
}

func (e *Evaluator) popScope() {
	e.scopes = e.scopes[:len(e.scopes)-1]
}

func (e *Evaluator) pushMixinScope() {
	e.mixinScopes = append(e.mixinScopes, newOrderedMap[*ast.MixinDefinition]())
}

func (e *Evaluator) popMixinScope() {
	e.mixinScopes = e.mixinScopes[:len(e.mixinScopes)-1]
}

// combineSelectors produces the Cartesian product of parent and
// current selectors, substituting `&` with the parent selector where
// present and otherwise joining with a space.
func (e *Evaluator) combineSelectors(parents []string, current []ast.Selector) []string {
	if len(parents) == 0 {
		out := make([]string, len(current))
		for i, s := range current {
			out[i] = s.Value
		}
		return out
	}

	var result []string
	for _, parent := range parents {
		for _, child := range current {
			var selector string
			if strings.Contains(child.Value, "&") {
				selector = trimSpace(strings.ReplaceAll(child.Value, "&", parent))
			} else {
				selector = trimSpace(parent) + " " + trimSpace(child.Value)
			}
			result = append(result, selector)
		}
	}
	return result
}

// stripImportant detects and strips a trailing `!important` marker.
func stripImportant(value string) (string, bool) {
	trimmed := strings.TrimRight(value, " \t\r\n")
	if !strings.HasSuffix(trimmed, "!important") {
		return "", false
	}
	without := strings.TrimRight(trimmed[:len(trimmed)-len("!important")], " \t\r\n")
	return without, true
}

func trimSpace(s string) string {
	return strings.TrimSpace(s)
}
