package evaluator

import (
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
)

// GuardEvaluator decides whether a `when (...)` guard attached to a
// mixin definition or at-rule permits the body to run. The reference
// compiler this package is ported from discards guard text at parse
// time and always runs guarded bodies; exprGuardEvaluator is a
// deliberate enrichment that actually evaluates simple comparisons.
type GuardEvaluator interface {
	Evaluate(raw string, e *Evaluator) (bool, error)
}

// exprGuardEvaluator translates a restricted subset of LESS guard
// syntax - "and"/"or"/"not"-joined comparisons between a variable and
// a literal number, string, or keyword - into an expr-lang boolean
// expression. Guards outside that subset (unit-bearing comparisons,
// "ispixel(...)" and friends, anything we can't confidently translate)
// default to true rather than reject the rule, matching the
// always-true behavior of the compiler this evaluates against.
type exprGuardEvaluator struct{}

func (exprGuardEvaluator) Evaluate(raw string, e *Evaluator) (bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return true, nil
	}

	translated, env, ok := translateGuard(raw, e)
	if !ok {
		return true, nil
	}

	program, err := expr.Compile(translated, expr.Env(env), expr.AsBool())
	if err != nil {
		return true, nil
	}
	result, err := expr.Run(program, env)
	if err != nil {
		return true, nil
	}
	value, ok := result.(bool)
	if !ok {
		return true, nil
	}
	return value, nil
}

// translateGuard rewrites LESS comparison operators and @variables into
// expr-lang syntax, binding every referenced variable's current textual
// value into env. Returns ok=false when it encounters anything it does
// not recognize, signalling the caller to fall back to always-true.
func translateGuard(raw string, e *Evaluator) (string, map[string]any, bool) {
	body := strings.TrimSpace(raw)
	body = strings.TrimPrefix(body, "when")
	body = strings.TrimSpace(body)

	body = strings.ReplaceAll(body, " and ", " && ")
	body = strings.ReplaceAll(body, " or ", " || ")
	body = strings.ReplaceAll(body, " not ", " ! ")
	body = strings.ReplaceAll(body, "=<", "<=")
	body = strings.ReplaceAll(body, "=>", ">=")

	env := make(map[string]any)
	var out strings.Builder
	i := 0
	for i < len(body) {
		c := body[i]
		if c == '@' {
			j := i + 1
			for j < len(body) && isIdentByte(body[j]) {
				j++
			}
			name := body[i+1 : j]
			if name == "" {
				return "", nil, false
			}
			value, err := e.lookupVariable(name)
			if err != nil || value.isRuleset {
				return "", nil, false
			}
			varName := "v_" + name
			env[varName] = guardLiteral(value.text)
			out.WriteString(varName)
			i = j
			continue
		}
		out.WriteByte(c)
		i++
	}

	return out.String(), env, true
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// guardLiteral turns a resolved variable's raw text into a best-guess
// Go value (number, bool, or string) so expr-lang comparisons behave
// naturally against numeric and keyword guards.
func guardLiteral(text string) any {
	trimmed := strings.TrimSpace(text)
	if trimmed == "true" || trimmed == "false" {
		return trimmed == "true"
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f
	}
	return strings.Trim(trimmed, `"'`)
}
