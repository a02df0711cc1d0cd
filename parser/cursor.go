package parser

// cursor is a byte-position pointer into the source string. Cloning a
// cursor is a cheap value copy, which is how the parser implements 1-2
// token lookahead to disambiguate variable/import/at-rule/mixin forms
// without backtracking a shared position.
type cursor struct {
	source string
	pos    int
}

func newCursor(source string) cursor {
	return cursor{source: source, pos: 0}
}

func (c cursor) isEOF() bool {
	return c.pos >= len(c.source)
}

func (c cursor) position() int {
	return c.pos
}

func (c cursor) peekChar() (byte, bool) {
	if c.pos >= len(c.source) {
		return 0, false
	}
	return c.source[c.pos], true
}

func (c cursor) startsWith(ch byte) bool {
	b, ok := c.peekChar()
	return ok && b == ch
}

func (c *cursor) advanceChar() (byte, bool) {
	ch, ok := c.peekChar()
	if !ok {
		return 0, false
	}
	c.pos++
	return ch, true
}

func (c *cursor) expectChar(expect byte) error {
	ch, ok := c.advanceChar()
	if !ok {
		return newParseErrorf(c.pos, "expected character %q", string(expect))
	}
	if ch != expect {
		return newParseErrorf(c.pos, "expected character %q, got %q", string(expect), string(ch))
	}
	return nil
}

func (c *cursor) skipWhitespace() {
	for {
		ch, ok := c.peekChar()
		if !ok || !isWhitespace(ch) {
			return
		}
		c.pos++
	}
}

// skipWhitespaceAndComments skips runs of whitespace and comments (both
// `//` line comments and `/*...*/` block comments), in any interleaving.
func (c *cursor) skipWhitespaceAndComments() {
	for {
		c.skipWhitespace()
		if c.startsWith('/') && c.consumeComment() {
			continue
		}
		return
	}
}

func (c *cursor) consumeComment() bool {
	if c.matchStr("//") {
		for {
			ch, ok := c.advanceChar()
			if !ok || ch == '\n' {
				break
			}
		}
		return true
	}
	if c.matchStr("/*") {
		for !c.isEOF() {
			if c.matchStr("*/") {
				break
			}
			c.advanceChar()
		}
		return true
	}
	return false
}

func (c *cursor) matchStr(prefix string) bool {
	if len(c.source)-c.pos < len(prefix) {
		return false
	}
	if c.source[c.pos:c.pos+len(prefix)] != prefix {
		return false
	}
	c.pos += len(prefix)
	return true
}

func (c cursor) startsWithKeyword(keyword string) bool {
	if len(c.source)-c.pos < len(keyword) {
		return false
	}
	if c.source[c.pos:c.pos+len(keyword)] != keyword {
		return false
	}
	end := c.pos + len(keyword)
	if end >= len(c.source) {
		return true
	}
	next := c.source[end]
	return !isIdentChar(next)
}

func (c *cursor) consumeKeyword(keyword string) {
	c.pos += len(keyword)
}

// skipGuardCondition consumes a trailing `when (...)` guard's condition
// text (balanced parens, stops at the first top-level `{`) and returns
// the raw text consumed.
func (c *cursor) skipGuardCondition() string {
	start := c.pos
	depth := 0
	for {
		ch, ok := c.peekChar()
		if !ok {
			break
		}
		if ch == '{' && depth == 0 {
			break
		}
		switch ch {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		}
		c.advanceChar()
	}
	return c.source[start:c.pos]
}

func (c *cursor) readIdentifier() string {
	start := c.pos
	for {
		ch, ok := c.peekChar()
		if !ok || !isIdentChar(ch) {
			break
		}
		c.pos++
	}
	return c.source[start:c.pos]
}

// readPropertyName accepts identifier characters, dashes, and `@{...}`
// interpolation tokens (consumed as literal text, braces included) until
// `:`, `;`, `{` (outside interpolation), or a control character.
func (c *cursor) readPropertyName() string {
	start := c.pos
	pendingInterp := false
	for {
		ch, ok := c.peekChar()
		if !ok {
			break
		}
		if ch == ':' || ch == ';' {
			break
		}
		if ch == '{' && !pendingInterp {
			break
		}
		if isControl(ch) {
			break
		}
		c.advanceChar()
		if ch == '@' {
			pendingInterp = true
		} else if ch == '{' && pendingInterp {
			for {
				inner, ok := c.advanceChar()
				if !ok || inner == '}' {
					break
				}
			}
			pendingInterp = false
		} else if !isWhitespace(ch) {
			pendingInterp = false
		}
	}
	return trimASCIISpace(c.source[start:c.pos])
}

func (c *cursor) readUntil(end byte) (string, error) {
	start := c.pos
	for {
		ch, ok := c.peekChar()
		if !ok || ch == end {
			break
		}
		c.pos++
	}
	if ch, ok := c.peekChar(); !ok || ch != end {
		return "", newParseErrorf(c.pos, "expected character %q", string(end))
	}
	return c.source[start:c.pos], nil
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}

func isControl(ch byte) bool {
	return ch < 0x20 && ch != '\t'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch >= 0x80
}

func isIdentChar(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '-' || ch == '_'
}

type bodyKind int

const (
	bodyKindNone bodyKind = iota
	bodyKindDeclaration
	bodyKindNestedRule
)

func (c cursor) lookaheadIsVariableDecl() (bool, error) {
	la := c
	if err := la.expectChar('@'); err != nil {
		return false, err
	}
	la.readIdentifier()
	la.skipWhitespace()
	ch, ok := la.peekChar()
	return ok && ch == ':', nil
}

func (c cursor) lookaheadIsImport() (bool, error) {
	la := c
	if !la.startsWith('@') {
		return false, nil
	}
	if err := la.expectChar('@'); err != nil {
		return false, err
	}
	ident := la.readIdentifier()
	return eqFold(ident, "import"), nil
}

func (c cursor) lookaheadIsBlockAtRule() (bool, error) {
	la := c
	if !la.startsWith('@') {
		return false, nil
	}
	la.advanceChar()
	ident := la.readIdentifier()
	if ident == "" {
		return false, nil
	}
	la.skipWhitespaceAndComments()
	depth := 0
	for {
		ch, ok := la.peekChar()
		if !ok {
			return false, nil
		}
		switch {
		case ch == '{' && depth == 0:
			return true, nil
		case ch == '(':
			depth++
			la.advanceChar()
		case ch == ')':
			if depth > 0 {
				depth--
			}
			la.advanceChar()
		case ch == ';':
			return false, nil
		default:
			la.advanceChar()
		}
	}
}

// lookaheadConsumeBalancedParens advances past a balanced `(...)` group,
// assuming the cursor is positioned at the opening `(`. Returns false if
// the parens never balance before EOF.
func (c *cursor) lookaheadConsumeBalancedParens() bool {
	c.advanceChar()
	depth := 1
	for {
		ch, ok := c.peekChar()
		if !ok {
			return false
		}
		c.advanceChar()
		switch ch {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return true
			}
		}
	}
}

func (c cursor) lookaheadIsMixinDefinition() (bool, error) {
	la := c
	ch, ok := la.peekChar()
	if !ok || (ch != '.' && ch != '#') {
		return false, nil
	}
	la.advanceChar()
	ident := la.readIdentifier()
	if ident == "" {
		return false, nil
	}
	la.skipWhitespaceAndComments()
	if !la.startsWith('(') {
		return false, nil
	}
	if !la.lookaheadConsumeBalancedParens() {
		return false, nil
	}
	la.skipWhitespaceAndComments()
	if la.startsWithKeyword("when") {
		la.consumeKeyword("when")
		la.skipWhitespaceAndComments()
		la.skipGuardCondition()
		la.skipWhitespaceAndComments()
	}
	ch, ok = la.peekChar()
	return ok && ch == '{', nil
}

func (c cursor) lookaheadIsMixinCall() (bool, error) {
	la := c
	ch, ok := la.peekChar()
	if !ok || (ch != '.' && ch != '#') {
		return false, nil
	}
	la.advanceChar()
	ident := la.readIdentifier()
	if ident == "" {
		return false, nil
	}
	la.skipWhitespaceAndComments()
	if la.startsWith('(') {
		if !la.lookaheadConsumeBalancedParens() {
			return false, nil
		}
		la.skipWhitespaceAndComments()
	}
	ch, ok = la.peekChar()
	return ok && ch == ';', nil
}

func (c cursor) lookaheadIsDetachedCall() (bool, error) {
	la := c
	if !la.startsWith('@') {
		return false, nil
	}
	la.advanceChar()
	ident := la.readIdentifier()
	if ident == "" {
		return false, nil
	}
	la.skipWhitespaceAndComments()
	if !la.startsWith('(') {
		return false, nil
	}
	if !la.lookaheadConsumeBalancedParens() {
		return false, nil
	}
	la.skipWhitespaceAndComments()
	ch, ok := la.peekChar()
	return ok && ch == ';', nil
}

func (c *cursor) readMixinName() (string, error) {
	ch, ok := c.peekChar()
	if !ok || (ch != '.' && ch != '#') {
		return "", newParseErrorf(c.pos, "expected mixin name")
	}
	prefix, _ := c.advanceChar()
	ident := c.readIdentifier()
	if ident == "" {
		return "", newParseErrorf(c.pos, "invalid mixin name")
	}
	return string(prefix) + ident, nil
}

// detectBodyKind looks ahead, skipping over `@{...}` interpolation tokens,
// to decide whether the upcoming rule-body item is a declaration or a
// nested rule, without consuming anything.
func (c cursor) detectBodyKind() bodyKind {
	it := c
	it.skipWhitespaceAndComments()
	sawColon := false
	pendingInterp := false
	for {
		ch, ok := it.peekChar()
		if !ok {
			break
		}
		switch {
		case ch == '@':
			pendingInterp = true
			it.advanceChar()
			continue
		case ch == '{' && pendingInterp:
			it.advanceChar()
			for {
				inner, ok := it.peekChar()
				if !ok {
					break
				}
				it.advanceChar()
				if inner == '}' {
					break
				}
			}
			pendingInterp = false
			continue
		case ch == '{':
			return bodyKindNestedRule
		case ch == ';':
			return bodyKindDeclaration
		case ch == '}':
			if sawColon {
				return bodyKindDeclaration
			}
			return bodyKindNone
		case ch == ':':
			sawColon = true
		default:
			pendingInterp = false
		}
		it.advanceChar()
	}
	if sawColon {
		return bodyKindDeclaration
	}
	return bodyKindNone
}

func eqFold(s, t string) bool {
	if len(s) != len(t) {
		return false
	}
	for i := 0; i < len(s); i++ {
		a, b := s[i], t[i]
		if a >= 'A' && a <= 'Z' {
			a += 'a' - 'A'
		}
		if b >= 'A' && b <= 'Z' {
			b += 'a' - 'A'
		}
		if a != b {
			return false
		}
	}
	return true
}

func trimASCIISpace(s string) string {
	start, end := 0, len(s)
	for start < end && isWhitespace(s[start]) {
		start++
	}
	for end > start && isWhitespace(s[end-1]) {
		end--
	}
	return s[start:end]
}
