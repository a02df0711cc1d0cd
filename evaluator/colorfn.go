package evaluator

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dellyoung/less-oxide/color"
)

// computeValue resolves a fully-concatenated value buffer: color
// function calls, arithmetic, or passthrough for anything containing a
// CSS function this compiler does not evaluate (var/url/unit/calc).
func (e *Evaluator) computeValue(input string) (string, error) {
	if input == "" {
		return "", nil
	}
	if result, ok, err := e.evaluateColorFunction(input); err != nil {
		return "", err
	} else if ok {
		return result, nil
	}
	if result, ok, err := e.replaceInlineColorFunctions(input); err != nil {
		return "", err
	} else if ok {
		return result, nil
	}
	if strings.Contains(input, "var(") || strings.Contains(input, "url(") ||
		strings.Contains(input, "unit(") || strings.Contains(input, "calc(") {
		return input, nil
	}
	if result, ok, err := e.evaluateArithmetic(input); err == nil && ok {
		return result, nil
	}
	return input, nil
}

var colorFnRe = regexp.MustCompile(`(?i)^(lighten|darken|fade)\s*\(\s*([^,]+)\s*,\s*([^)]+)\)$`)

// evaluateColorFunction matches the whole value against a single
// lighten/darken/fade/overlay call.
func (e *Evaluator) evaluateColorFunction(input string) (string, bool, error) {
	if result, ok, err := e.evaluateOverlayFunction(input); err != nil {
		return "", false, err
	} else if ok {
		return result, true, nil
	}

	m := colorFnRe.FindStringSubmatch(input)
	if m == nil {
		return "", false, nil
	}
	name := strings.ToLower(m[1])
	colorArg := strings.TrimSpace(m[2])
	amountArg := strings.TrimSpace(m[3])

	c, ok := color.Parse(colorArg)
	if !ok {
		return "", false, evalErrorf("cannot parse color argument: %s", colorArg)
	}
	amount, err := parsePercentage(amountArg)
	if err != nil {
		return "", false, err
	}

	var result color.RGBA
	switch name {
	case "lighten":
		result = color.Lighten(c, amount)
	case "darken":
		result = color.Darken(c, amount)
	case "fade":
		result = color.Fade(c, amount)
	default:
		return "", false, nil
	}

	if name == "fade" {
		return color.FormatRGBA(result), true, nil
	}
	return color.FormatHex(result), true, nil
}

func (e *Evaluator) evaluateOverlayFunction(input string) (string, bool, error) {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(strings.ToLower(trimmed), "overlay(") {
		return "", false, nil
	}
	start := strings.IndexByte(trimmed, '(')
	if start < 0 {
		return "", false, evalErrorf("overlay function is missing '('")
	}
	end := strings.LastIndexByte(trimmed, ')')
	if end < 0 {
		return "", false, evalErrorf("overlay function is missing ')'")
	}
	body := trimmed[start+1 : end]
	first, second, ok := splitOverlayArgs(body)
	if !ok {
		return "", false, evalErrorf("overlay function arguments are incomplete")
	}
	top, ok := color.Parse(strings.TrimSpace(first))
	if !ok {
		return "", false, evalErrorf("cannot parse color argument: %s", first)
	}
	bottom, ok := color.Parse(strings.TrimSpace(second))
	if !ok {
		return "", false, evalErrorf("cannot parse color argument: %s", second)
	}
	blended := color.Overlay(top, bottom)
	return color.FormatHex(blended), true, nil
}

// splitOverlayArgs splits on the first top-level comma, respecting
// nested parens.
func splitOverlayArgs(input string) (string, string, bool) {
	depth := 0
	for i := 0; i < len(input); i++ {
		switch input[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				return input[:i], input[i+1:], true
			}
		}
	}
	return "", "", false
}

var inlineColorFnRe = regexp.MustCompile(`(?i)(lighten|darken|fade)\s*\(\s*((?:[^()]+|\([^()]*\))+?)\s*,\s*([^)]+)\)`)

// replaceInlineColorFunctions replaces every lighten/darken/fade call
// embedded anywhere in the value (as opposed to being the whole value).
func (e *Evaluator) replaceInlineColorFunctions(input string) (string, bool, error) {
	matches := inlineColorFnRe.FindAllStringSubmatchIndex(input, -1)
	if len(matches) == 0 {
		return "", false, nil
	}

	var out strings.Builder
	last := 0
	for _, m := range matches {
		out.WriteString(input[last:m[0]])

		name := strings.ToLower(input[m[2]:m[3]])
		colorArg := strings.TrimSpace(input[m[4]:m[5]])
		amountArg := strings.TrimSpace(input[m[6]:m[7]])

		c, ok := color.Parse(colorArg)
		if !ok {
			return "", false, evalErrorf("cannot parse color argument: %s", colorArg)
		}
		amount, err := parsePercentage(amountArg)
		if err != nil {
			return "", false, err
		}

		var replacement string
		switch name {
		case "lighten":
			replacement = color.FormatHex(color.Lighten(c, amount))
		case "darken":
			replacement = color.FormatHex(color.Darken(c, amount))
		case "fade":
			replacement = color.FormatRGBA(color.Fade(c, amount))
		}

		out.WriteString(replacement)
		last = m[1]
	}
	out.WriteString(input[last:])
	return out.String(), true, nil
}

func parsePercentage(raw string) (float64, error) {
	cleaned := strings.TrimSpace(raw)
	if strings.HasSuffix(cleaned, "%") {
		number := strings.TrimSpace(cleaned[:len(cleaned)-1])
		value, err := strconv.ParseFloat(number, 64)
		if err != nil {
			return 0, evalErrorf("cannot parse percentage: %s", raw)
		}
		return clamp01(value / 100), nil
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, evalErrorf("cannot parse number: %s", raw)
	}
	return clamp01(value), nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
