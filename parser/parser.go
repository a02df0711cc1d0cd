// Package parser implements a hand-written, character-cursor
// recursive-descent parser for LESS source. It never tokenizes the
// input up front; instead it walks a cursor directly, using cheap
// cursor clones for the lookahead needed to tell a variable
// declaration, an import, a block at-rule, a mixin definition, a mixin
// call, and a plain ruleset apart before committing to parse one.
package parser

import (
	"strings"

	"github.com/dellyoung/less-oxide/ast"
)

// Parser parses LESS source into a Stylesheet.
type Parser struct{}

// New returns a ready-to-use Parser. Parser carries no state between
// calls to Parse.
func New() *Parser {
	return &Parser{}
}

// Parse parses a complete LESS source file into a Stylesheet.
func (p *Parser) Parse(input string) (*ast.Stylesheet, error) {
	c := newCursor(input)
	var statements []ast.Statement

	for !c.isEOF() {
		c.skipWhitespaceAndComments()
		if c.isEOF() {
			break
		}

		if c.startsWith('@') {
			isVar, err := c.lookaheadIsVariableDecl()
			if err != nil {
				return nil, err
			}
			if isVar {
				v, err := p.parseVariable(&c)
				if err != nil {
					return nil, err
				}
				statements = append(statements, v)
				continue
			}
		}

		if c.startsWith('@') {
			isImport, err := c.lookaheadIsImport()
			if err != nil {
				return nil, err
			}
			if isImport {
				imp, err := p.parseImport(&c)
				if err != nil {
					return nil, err
				}
				statements = append(statements, imp)
				continue
			}
		}

		if c.startsWith('@') {
			isAtRule, err := c.lookaheadIsBlockAtRule()
			if err != nil {
				return nil, err
			}
			if isAtRule {
				ar, err := p.parseAtRule(&c)
				if err != nil {
					return nil, err
				}
				statements = append(statements, ar)
				continue
			}
		}

		isMixinDef, err := c.lookaheadIsMixinDefinition()
		if err != nil {
			return nil, err
		}
		if isMixinDef {
			m, err := p.parseMixinDefinition(&c)
			if err != nil {
				return nil, err
			}
			statements = append(statements, m)
			continue
		}

		isMixinCall, err := c.lookaheadIsMixinCall()
		if err != nil {
			return nil, err
		}
		if isMixinCall {
			call, err := p.parseMixinCall(&c)
			if err != nil {
				return nil, err
			}
			statements = append(statements, call)
			continue
		}

		rule, err := p.parseRuleSet(&c)
		if err != nil {
			return nil, err
		}
		statements = append(statements, rule)
	}

	return &ast.Stylesheet{Statements: statements}, nil
}

func (p *Parser) parseVariable(c *cursor) (*ast.VariableDeclaration, error) {
	if err := c.expectChar('@'); err != nil {
		return nil, err
	}
	name := c.readIdentifier()
	c.skipWhitespaceAndComments()
	if err := c.expectChar(':'); err != nil {
		return nil, err
	}
	c.skipWhitespaceAndComments()

	value, err := p.readValue(c, ";")
	if err != nil {
		return nil, err
	}
	if ch, ok := c.peekChar(); ok && ch == ';' {
		c.advanceChar()
	}

	return &ast.VariableDeclaration{Name: name, Value: value}, nil
}

func (p *Parser) parseRuleSet(c *cursor) (*ast.RuleSet, error) {
	c.skipWhitespaceAndComments()
	selectorRaw, err := c.readUntil('{')
	if err != nil {
		return nil, err
	}

	var selectors []ast.Selector
	for _, s := range strings.Split(selectorRaw, ",") {
		v := trimASCIISpace(s)
		if v != "" {
			selectors = append(selectors, ast.Selector{Value: v})
		}
	}
	if len(selectors) == 0 {
		return nil, newParseErrorf(c.position(), "missing a valid selector")
	}

	if err := c.expectChar('{'); err != nil {
		return nil, err
	}

	var body []ast.RuleBody
	for {
		c.skipWhitespaceAndComments()
		if ch, ok := c.peekChar(); ok && ch == '}' {
			c.advanceChar()
			break
		}
		if c.isEOF() {
			return nil, newParseErrorf(c.position(), "missing matching '}'")
		}
		item, err := p.parseRuleBodyItem(c)
		if err != nil {
			return nil, err
		}
		body = append(body, item)
	}

	return &ast.RuleSet{Selectors: selectors, Body: body}, nil
}

func (p *Parser) parseAtRule(c *cursor) (*ast.AtRule, error) {
	if err := c.expectChar('@'); err != nil {
		return nil, err
	}
	name := c.readIdentifier()
	if name == "" {
		return nil, newParseErrorf(c.position(), "at-rule name must not be empty")
	}
	c.skipWhitespaceAndComments()

	var params strings.Builder
	parenDepth := 0
	for {
		ch, ok := c.peekChar()
		if !ok {
			break
		}
		if ch == '{' && parenDepth == 0 {
			break
		}
		switch ch {
		case '(':
			parenDepth++
		case ')':
			if parenDepth > 0 {
				parenDepth--
			}
		}
		params.WriteByte(ch)
		c.advanceChar()
	}
	c.skipWhitespaceAndComments()

	// A trailing `when (...)` guard is read as part of the params text
	// above; split it off into the Guard.
	paramText := trimASCIISpace(params.String())
	var guard *ast.Guard
	if idx := strings.LastIndex(paramText, "when"); idx >= 0 && (idx == 0 || isWhitespace(paramText[idx-1])) {
		if rest := trimASCIISpace(paramText[idx+len("when"):]); strings.HasPrefix(rest, "(") && strings.HasSuffix(rest, ")") {
			guard = &ast.Guard{Raw: rest}
			paramText = trimASCIISpace(paramText[:idx])
		}
	}

	if err := c.expectChar('{'); err != nil {
		return nil, err
	}
	body, err := p.parseAtRuleBody(c)
	if err != nil {
		return nil, err
	}

	return &ast.AtRule{
		Name:   name,
		Params: paramText,
		Body:   body,
		Guard:  guard,
	}, nil
}

func (p *Parser) parseAtRuleBody(c *cursor) ([]ast.RuleBody, error) {
	var body []ast.RuleBody
	for {
		c.skipWhitespaceAndComments()
		ch, ok := c.peekChar()
		switch {
		case ok && ch == '}':
			c.advanceChar()
			return body, nil
		case !ok:
			return nil, newParseErrorf(c.position(), "at-rule missing matching '}'")
		default:
			item, err := p.parseRuleBodyItem(c)
			if err != nil {
				return nil, err
			}
			body = append(body, item)
		}
	}
}

func (p *Parser) parseDeclaration(c *cursor) (*ast.Declaration, error) {
	name := c.readPropertyName()
	c.skipWhitespaceAndComments()
	if err := c.expectChar(':'); err != nil {
		return nil, err
	}
	c.skipWhitespaceAndComments()
	value, err := p.readValue(c, ";}")
	if err != nil {
		return nil, err
	}

	if ch, ok := c.peekChar(); ok && ch == ';' {
		c.advanceChar()
	}

	return &ast.Declaration{Name: name, Value: value}, nil
}

// readValue reads a Value up to (but not including) an unparenthesised
// terminator byte, handling quoted strings (with backslash escapes) and
// `@name` variable references, which split off any pending literal text.
func (p *Parser) readValue(c *cursor, terminators string) (ast.Value, error) {
	var pieces []ast.ValuePiece
	var current strings.Builder
	parenDepth := 0

	flush := func() {
		if current.Len() > 0 {
			pieces = append(pieces, ast.Literal{Text: current.String()})
			current.Reset()
		}
	}

	for {
		ch, ok := c.peekChar()
		if !ok {
			break
		}
		if parenDepth == 0 && strings.IndexByte(terminators, ch) >= 0 {
			break
		}

		switch ch {
		case '\'', '"':
			current.WriteByte(ch)
			c.advanceChar()
			quote := ch
			for {
				next, ok := c.peekChar()
				if !ok {
					break
				}
				current.WriteByte(next)
				c.advanceChar()
				if next == quote {
					break
				}
				if next == '\\' {
					if escaped, ok := c.peekChar(); ok {
						current.WriteByte(escaped)
						c.advanceChar()
					}
				}
			}
		case '@':
			flush()
			c.advanceChar()
			name := c.readIdentifier()
			if name == "" {
				return ast.Value{}, newParseErrorf(c.position(), "variable name must not be empty")
			}
			pieces = append(pieces, ast.VariableRef{Name: name})
		case '(':
			parenDepth++
			current.WriteByte(ch)
			c.advanceChar()
		case ')':
			if parenDepth > 0 {
				parenDepth--
			}
			current.WriteByte(ch)
			c.advanceChar()
		default:
			current.WriteByte(ch)
			c.advanceChar()
		}
	}

	flush()
	return ast.Value{Pieces: pieces}, nil
}

func (p *Parser) parseImport(c *cursor) (*ast.ImportStatement, error) {
	if err := c.expectChar('@'); err != nil {
		return nil, err
	}
	ident := c.readIdentifier()
	if !eqFold(ident, "import") {
		return nil, newParseErrorf(c.position(), "only @import statements are supported")
	}

	spec, err := c.readUntil(';')
	if err != nil {
		return nil, err
	}
	if err := c.expectChar(';'); err != nil {
		return nil, err
	}

	remainder := strings.TrimLeft(spec, " \t\r\n")
	var options []string
	if strings.HasPrefix(remainder, "(") {
		end := strings.IndexByte(remainder, ')')
		if end < 0 {
			return nil, newParseErrorf(c.position(), "incomplete @import options")
		}
		optStr := remainder[1:end]
		for _, tok := range strings.FieldsFunc(optStr, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
		}) {
			options = append(options, strings.ToLower(trimASCIISpace(tok)))
		}
		remainder = strings.TrimLeft(remainder[end+1:], " \t\r\n")
	}

	trimmed := trimASCIISpace(remainder)
	path := extractImportPath(trimmed)
	isCSS := false
	for _, opt := range options {
		if opt == "css" {
			isCSS = true
		}
	}
	if !isCSS {
		if path != nil {
			if strings.HasSuffix(*path, ".css") {
				isCSS = true
			}
		} else {
			isCSS = true
		}
	}

	raw := "@import " + trimmed + ";"

	return &ast.ImportStatement{Raw: raw, Path: path, IsCSS: isCSS}, nil
}

func extractImportPath(input string) *string {
	trimmed := trimASCIISpace(input)
	if trimmed == "" {
		return nil
	}
	first := trimmed[0]
	if first == '"' || first == '\'' {
		end := strings.IndexByte(trimmed[1:], first)
		if end < 0 {
			return nil
		}
		s := trimmed[1 : 1+end]
		return &s
	}
	if strings.HasPrefix(trimmed, "url(") {
		return nil
	}
	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return nil
	}
	tok := trimASCIISpace(fields[0])
	if tok == "" {
		return nil
	}
	return &tok
}

func (p *Parser) parseRuleBodyItem(c *cursor) (ast.RuleBody, error) {
	if c.startsWith('@') {
		isVar, err := c.lookaheadIsVariableDecl()
		if err != nil {
			return nil, err
		}
		if isVar {
			return p.parseVariable(c)
		}
	}

	isMixinDef, err := c.lookaheadIsMixinDefinition()
	if err != nil {
		return nil, err
	}
	if isMixinDef {
		return p.parseMixinDefinition(c)
	}

	isMixinCall, err := c.lookaheadIsMixinCall()
	if err != nil {
		return nil, err
	}
	if isMixinCall {
		return p.parseMixinCall(c)
	}

	if c.startsWith('@') {
		isAtRule, err := c.lookaheadIsBlockAtRule()
		if err != nil {
			return nil, err
		}
		if isAtRule {
			return p.parseAtRule(c)
		}
		isDetached, err := c.lookaheadIsDetachedCall()
		if err != nil {
			return nil, err
		}
		if isDetached {
			return p.parseDetachedCall(c)
		}
	}

	switch c.detectBodyKind() {
	case bodyKindDeclaration:
		return p.parseDeclaration(c)
	case bodyKindNestedRule:
		return p.parseRuleSet(c)
	default:
		return nil, newParseErrorf(c.position(), "cannot determine declaration or nested selector")
	}
}

func (p *Parser) parseMixinDefinition(c *cursor) (*ast.MixinDefinition, error) {
	name, err := c.readMixinName()
	if err != nil {
		return nil, err
	}
	c.skipWhitespaceAndComments()

	var params []ast.MixinParam
	if c.startsWith('(') {
		params, err = p.parseMixinParams(c)
		if err != nil {
			return nil, err
		}
	}
	c.skipWhitespaceAndComments()

	var guard *ast.Guard
	if c.startsWithKeyword("when") {
		c.consumeKeyword("when")
		c.skipWhitespaceAndComments()
		raw := c.skipGuardCondition()
		guard = &ast.Guard{Raw: trimASCIISpace(raw)}
		c.skipWhitespaceAndComments()
	}

	if err := c.expectChar('{'); err != nil {
		return nil, err
	}
	body, err := p.parseMixinBody(c)
	if err != nil {
		return nil, err
	}

	return &ast.MixinDefinition{Name: name, Params: params, Body: body, Guard: guard}, nil
}

func (p *Parser) parseMixinBody(c *cursor) ([]ast.RuleBody, error) {
	var body []ast.RuleBody
	for {
		c.skipWhitespaceAndComments()
		ch, ok := c.peekChar()
		switch {
		case ok && ch == '}':
			c.advanceChar()
			return body, nil
		case !ok:
			return nil, newParseErrorf(c.position(), "mixin missing matching '}'")
		default:
			item, err := p.parseRuleBodyItem(c)
			if err != nil {
				return nil, err
			}
			body = append(body, item)
		}
	}
}

func (p *Parser) parseMixinParams(c *cursor) ([]ast.MixinParam, error) {
	var params []ast.MixinParam
	if err := c.expectChar('('); err != nil {
		return nil, err
	}
	for {
		c.skipWhitespaceAndComments()
		if ch, ok := c.peekChar(); ok && ch == ')' {
			c.advanceChar()
			break
		}
		if err := c.expectChar('@'); err != nil {
			return nil, err
		}
		name := c.readIdentifier()
		if name == "" {
			return nil, newParseErrorf(c.position(), "mixin parameter name must not be empty")
		}
		c.skipWhitespaceAndComments()

		var def *ast.Value
		if ch, ok := c.peekChar(); ok && ch == ':' {
			c.advanceChar()
			c.skipWhitespaceAndComments()
			value, err := p.readValue(c, ",)")
			if err != nil {
				return nil, err
			}
			def = &value
		}
		params = append(params, ast.MixinParam{Name: name, Default: def})

		c.skipWhitespaceAndComments()
		ch, ok := c.peekChar()
		switch {
		case ok && ch == ',':
			c.advanceChar()
		case ok && ch == ')':
			c.advanceChar()
			return params, nil
		default:
			return nil, newParseErrorf(c.position(), "mixin parameter list missing separator")
		}
	}
	return params, nil
}

func (p *Parser) parseMixinCall(c *cursor) (*ast.MixinCall, error) {
	name, err := c.readMixinName()
	if err != nil {
		return nil, err
	}
	c.skipWhitespaceAndComments()

	var args []ast.MixinArgument
	if c.startsWith('(') {
		args, err = p.parseMixinArguments(c)
		if err != nil {
			return nil, err
		}
	}
	c.skipWhitespaceAndComments()
	if err := c.expectChar(';'); err != nil {
		return nil, err
	}

	return &ast.MixinCall{Name: name, Args: args}, nil
}

func (p *Parser) parseMixinArguments(c *cursor) ([]ast.MixinArgument, error) {
	var args []ast.MixinArgument
	if err := c.expectChar('('); err != nil {
		return nil, err
	}
	for {
		c.skipWhitespaceAndComments()
		if ch, ok := c.peekChar(); ok && ch == ')' {
			c.advanceChar()
			break
		}
		if ch, ok := c.peekChar(); ok && ch == '{' {
			if err := c.expectChar('{'); err != nil {
				return nil, err
			}
			body, err := p.parseMixinBody(c)
			if err != nil {
				return nil, err
			}
			args = append(args, ast.RulesetArgument{Body: body})
		} else {
			value, err := p.readValue(c, ",)")
			if err != nil {
				return nil, err
			}
			args = append(args, ast.ValueArgument{Value: value})
		}

		c.skipWhitespaceAndComments()
		ch, ok := c.peekChar()
		switch {
		case ok && ch == ',':
			c.advanceChar()
		case ok && ch == ')':
			c.advanceChar()
			return args, nil
		default:
			return nil, newParseErrorf(c.position(), "mixin call arguments missing separator")
		}
	}
	return args, nil
}

func (p *Parser) parseDetachedCall(c *cursor) (*ast.DetachedCall, error) {
	if err := c.expectChar('@'); err != nil {
		return nil, err
	}
	name := c.readIdentifier()
	if name == "" {
		return nil, newParseErrorf(c.position(), "expected a callable ruleset name")
	}
	c.skipWhitespaceAndComments()
	if err := c.expectChar('('); err != nil {
		return nil, err
	}
	c.skipWhitespaceAndComments()
	if ch, ok := c.peekChar(); !ok || ch != ')' {
		return nil, newParseErrorf(c.position(), "ruleset calls with arguments are not supported")
	}
	c.advanceChar()
	c.skipWhitespaceAndComments()
	if err := c.expectChar(';'); err != nil {
		return nil, err
	}
	return &ast.DetachedCall{Name: name}, nil
}
