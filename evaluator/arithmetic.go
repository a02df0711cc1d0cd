package evaluator

import (
	"strconv"
	"strings"
)

// quantity is a numeric value paired with an optional CSS unit (px, %,
// em, ...). An empty unit means the value is unitless.
type quantity struct {
	value float64
	unit  string
}

// token is either a quantity or a single-character operator.
type token struct {
	isOperator bool
	op         byte
	quantity   quantity
}

// evaluateArithmetic attempts to reduce input to one or more
// space-joined quantities, for values such as "(@a * 2) (@b * 3)" that
// hold several independent arithmetic segments. It returns ok=false
// (not an error) when the input contains no operator at all, meaning
// it was never intended as an arithmetic expression.
func (e *Evaluator) evaluateArithmetic(input string) (string, bool, error) {
	// Parens are stripped to spaces before the outer-paren check, so
	// stripOuterParentheses below can never actually find a balanced
	// pair to strip. Ported as-is from the reference implementation.
	cleaned := strings.NewReplacer("(", " ", ")", " ").Replace(input)
	expression := stripOuterParentheses(strings.TrimSpace(cleaned))
	if expression == "" || !containsOperator(expression) {
		return "", false, nil
	}

	tokens, err := tokenizeExpression(expression)
	if err != nil {
		return "", false, err
	}
	if len(tokens) == 0 {
		return "", false, nil
	}
	if tokens[0].isOperator {
		return "", false, evalErrorf("arithmetic expression is missing an initial value")
	}
	current := tokens[0].quantity

	var results []quantity
	i := 1
	for i < len(tokens) {
		t := tokens[i]
		if t.isOperator {
			i++
			if i >= len(tokens) || tokens[i].isOperator {
				return "", false, evalErrorf("arithmetic expression is missing a right-hand value")
			}
			rhs := tokens[i].quantity
			current, err = applyOperator(t.op, current, rhs)
			if err != nil {
				return "", false, err
			}
			i++
		} else {
			results = append(results, current)
			current = t.quantity
			i++
		}
	}
	results = append(results, current)

	parts := make([]string, len(results))
	for i, q := range results {
		parts[i] = formatQuantity(q)
	}
	return strings.Join(parts, " "), true, nil
}

// tokenizeExpression splits an already paren-stripped arithmetic
// expression into quantity/operator tokens. A '-' or '+' immediately
// following an operator (or expression start) is treated as a sign
// attached to the following number rather than a binary operator.
func tokenizeExpression(input string) ([]token, error) {
	var tokens []token
	var current strings.Builder
	prevWasOperator := true

	flush := func() error {
		text := current.String()
		current.Reset()
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		if trimmed == "-" || trimmed == "+" {
			return evalErrorf("arithmetic expression is missing numeric content")
		}
		if len(trimmed) == 1 && isOperatorByte(trimmed[0]) {
			tokens = append(tokens, token{isOperator: true, op: trimmed[0]})
			return nil
		}
		q, err := parseQuantity(trimmed)
		if err != nil {
			return err
		}
		tokens = append(tokens, token{quantity: q})
		return nil
	}

	for i := 0; i < len(input); i++ {
		c := input[i]
		switch {
		case isSpaceByte(c):
			trimmed := strings.TrimSpace(current.String())
			if trimmed == "-" || trimmed == "+" {
				// A lone sign absorbs the space and keeps accumulating
				// digits, rather than being flushed as its own token.
				continue
			}
			if current.Len() > 0 {
				if err := flush(); err != nil {
					return nil, err
				}
			}
		case isOperatorByte(c):
			if (c == '-' || c == '+') && prevWasOperator {
				current.WriteByte(c)
				continue
			}
			if current.Len() > 0 {
				if err := flush(); err != nil {
					return nil, err
				}
			}
			tokens = append(tokens, token{isOperator: true, op: c})
			prevWasOperator = true
			continue
		default:
			current.WriteByte(c)
			prevWasOperator = false
		}
	}
	if current.Len() > 0 {
		if err := flush(); err != nil {
			return nil, err
		}
	}

	return tokens, nil
}

func isSpaceByte(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

func isOperatorByte(c byte) bool {
	return c == '+' || c == '-' || c == '*' || c == '/'
}

// containsOperator reports whether input has a genuine arithmetic
// operator as opposed to a hyphen inside an identifier such as
// "inline-flex" or a leading "--" custom-property marker.
func containsOperator(input string) bool {
	runes := []rune(input)
	for i, c := range runes {
		if !isOperatorRune(c) {
			continue
		}
		if c == '-' && i+1 < len(runes) && runes[i+1] == '-' {
			continue
		}

		var prev, next rune
		hasPrev := i > 0
		hasNext := i+1 < len(runes)
		if hasPrev {
			prev = runes[i-1]
		}
		if hasNext {
			next = runes[i+1]
		}

		prevOK := !hasPrev || isSpaceRune(prev) || isDigitRune(prev) || isParenOrOpRune(prev)
		nextOK := !hasNext || isSpaceRune(next) || isDigitRune(next) || next == '@' || isParenOrOpRune(next)

		if prevOK && nextOK {
			return true
		}
	}
	return false
}

func isOperatorRune(c rune) bool { return c == '+' || c == '-' || c == '*' || c == '/' }
func isSpaceRune(c rune) bool    { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isDigitRune(c rune) bool    { return c >= '0' && c <= '9' }
func isParenOrOpRune(c rune) bool {
	return c == '(' || c == ')' || c == '+' || c == '-' || c == '*' || c == '/'
}

func parseQuantity(token string) (quantity, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return quantity{}, evalErrorf("missing numeric content")
	}

	var valuePart, unitPart strings.Builder
	for _, c := range trimmed {
		switch {
		case isDigitRune(c) || c == '.' || ((c == '-' || c == '+') && valuePart.Len() == 0):
			valuePart.WriteRune(c)
		case isLetterRune(c) || c == '%':
			unitPart.WriteRune(c)
		case isSpaceRune(c):
			continue
		default:
			return quantity{}, evalErrorf("cannot parse numeric segment: %s", token)
		}
	}

	if valuePart.Len() == 0 {
		return quantity{}, evalErrorf("missing numeric value in: %s", token)
	}
	value, err := strconv.ParseFloat(valuePart.String(), 64)
	if err != nil {
		return quantity{}, evalErrorf("cannot parse number: %s", valuePart.String())
	}
	return quantity{value: value, unit: unitPart.String()}, nil
}

func isLetterRune(c rune) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func applyOperator(op byte, lhs, rhs quantity) (quantity, error) {
	switch op {
	case '+', '-':
		if lhs.unit != rhs.unit {
			return quantity{}, evalErrorf("cannot %s mismatched units: %g%s and %g%s",
				operatorName(op), lhs.value, lhs.unit, rhs.value, rhs.unit)
		}
		if op == '+' {
			return quantity{value: lhs.value + rhs.value, unit: lhs.unit}, nil
		}
		return quantity{value: lhs.value - rhs.value, unit: lhs.unit}, nil
	case '*':
		if lhs.unit != "" && rhs.unit != "" {
			return quantity{}, evalErrorf("cannot multiply two unit-bearing values")
		}
		unit := lhs.unit
		if unit == "" {
			unit = rhs.unit
		}
		return quantity{value: lhs.value * rhs.value, unit: unit}, nil
	case '/':
		if rhs.value < 1e-9 && rhs.value > -1e-9 {
			return quantity{}, evalErrorf("division by zero")
		}
		if rhs.unit != "" {
			return quantity{}, evalErrorf("division requires a unitless divisor")
		}
		return quantity{value: lhs.value / rhs.value, unit: lhs.unit}, nil
	}
	return quantity{}, evalErrorf("unknown operator: %c", op)
}

func operatorName(op byte) string {
	if op == '+' {
		return "add"
	}
	return "subtract"
}

// formatQuantity renders a quantity with four decimal digits, trimming
// trailing zeros and the decimal point, and clamping vanishingly small
// magnitudes to zero to avoid float noise such as "-0.0000".
func formatQuantity(q quantity) string {
	v := q.value
	if v > -1e-9 && v < 1e-9 {
		v = 0
	}
	text := strconv.FormatFloat(v, 'f', 4, 64)
	if strings.Contains(text, ".") {
		text = strings.TrimRight(text, "0")
		text = strings.TrimRight(text, ".")
	}
	if text == "" || text == "-" {
		text = "0"
	}
	return text + q.unit
}

// stripOuterParentheses removes balanced enclosing parentheses, if
// present. Dead code in practice: evaluateArithmetic already replaces
// every '(' and ')' with spaces before calling this.
func stripOuterParentheses(input string) string {
	trimmed := strings.TrimSpace(input)
	for {
		if len(trimmed) <= 2 || trimmed[0] != '(' || trimmed[len(trimmed)-1] != ')' {
			return trimmed
		}
		depth := 0
		balanced := true
		for idx, c := range trimmed {
			switch c {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 && idx != len(trimmed)-1 {
					balanced = false
				}
			}
		}
		if !balanced || depth != 0 {
			return trimmed
		}
		trimmed = strings.TrimSpace(trimmed[1 : len(trimmed)-1])
	}
}
