package component

import (
	"strconv"
	"strings"
	"time"

	"github.com/mr-tron/base58"

	"github.com/attestry/notary/pkg/types"
)

// Parse reads a value from its canonical text form. The grammar accepted is
// the one Format produces, except that whitespace between tokens is not
// significant and a comma may also separate catalog attributes.
func Parse(text string) (Value, error) {
	p := &parser{src: text}
	p.skipWhitespace()
	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()
	if p.pos != len(p.src) {
		return nil, p.fail("unexpected trailing input")
	}
	return value, nil
}

// ParseCatalog reads a catalog from its canonical text form.
func ParseCatalog(text string) (*Catalog, error) {
	value, err := Parse(text)
	if err != nil {
		return nil, err
	}
	catalog, ok := value.(*Catalog)
	if !ok {
		return nil, &types.Exception{
			Module:    "component",
			Procedure: "ParseCatalog",
			Kind:      types.InvalidParameter,
			Text:      "the text does not describe a catalog",
			Argument:  snippet(text),
		}
	}
	return catalog, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) fail(text string) error {
	return &types.Exception{
		Module:    "component",
		Procedure: "Parse",
		Kind:      types.InvalidParameter,
		Text:      text,
		Argument:  snippet(p.src[p.pos:]),
	}
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 32 {
		s = s[:32] + "..."
	}
	return s
}

func (p *parser) skipWhitespace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) expect(c byte) error {
	if p.peek() != c {
		return p.fail("expected " + strconv.QuoteRune(rune(c)))
	}
	p.pos++
	return nil
}

func (p *parser) parseValue() (Value, error) {
	switch c := p.peek(); {
	case c == '[':
		return p.parseCatalog()
	case c == '#':
		return p.parseTag()
	case c == '\'':
		return p.parseBinary()
	case c == '<':
		return p.parseMoment()
	case c == '/':
		return p.parseName()
	case c == '"':
		return p.parseText()
	case c == 'v' && p.pos+1 < len(p.src) && isDigit(p.src[p.pos+1]):
		return p.parseVersion()
	case isLetter(c):
		return p.parseKeyword()
	default:
		return nil, p.fail("unexpected character")
	}
}

func (p *parser) parseCatalog() (*Catalog, error) {
	if err := p.expect('['); err != nil {
		return nil, err
	}
	catalog := NewCatalog()
	p.skipWhitespace()
	if p.peek() == ':' {
		// The empty catalog is written [:].
		p.pos++
		p.skipWhitespace()
		if err := p.expect(']'); err != nil {
			return nil, err
		}
	} else {
		for {
			key, err := p.parseKey()
			if err != nil {
				return nil, err
			}
			p.skipWhitespace()
			if err := p.expect(':'); err != nil {
				return nil, err
			}
			p.skipWhitespace()
			value, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			if catalog.Has(key) {
				return nil, p.fail("duplicate attribute " + key)
			}
			catalog.Set(key, value)
			p.skipWhitespace()
			if p.peek() == ',' {
				p.pos++
				p.skipWhitespace()
			}
			if p.peek() == ']' {
				p.pos++
				break
			}
			if p.pos >= len(p.src) {
				return nil, p.fail("unterminated catalog")
			}
		}
	}
	p.skipWhitespace()
	if p.peek() != '(' {
		return catalog, nil
	}
	p.pos++
	for {
		p.skipWhitespace()
		key, err := p.parseKey()
		if err != nil {
			return nil, err
		}
		p.skipWhitespace()
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		p.skipWhitespace()
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if catalog.Parameter(key) != nil {
			return nil, p.fail("duplicate parameter " + key)
		}
		catalog.SetParameter(key, value)
		p.skipWhitespace()
		if p.peek() == ',' {
			p.pos++
			continue
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return catalog, nil
	}
}

func (p *parser) parseKey() (string, error) {
	if p.peek() != '$' {
		return "", p.fail("expected an attribute key")
	}
	start := p.pos
	p.pos++
	for p.pos < len(p.src) && isAlphanumeric(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start+1 {
		return "", p.fail("empty attribute key")
	}
	return p.src[start:p.pos], nil
}

func (p *parser) parseTag() (Value, error) {
	p.pos++
	start := p.pos
	for p.pos < len(p.src) && isBase58(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return nil, p.fail("empty tag")
	}
	return Tag(p.src[start:p.pos]), nil
}

func (p *parser) parseBinary() (Value, error) {
	p.pos++
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != '\'' {
		p.pos++
	}
	if p.pos >= len(p.src) {
		return nil, p.fail("unterminated binary")
	}
	encoded := p.src[start:p.pos]
	p.pos++
	bytes, err := base58.Decode(encoded)
	if err != nil {
		return nil, p.fail("malformed binary encoding")
	}
	return Binary(bytes), nil
}

func (p *parser) parseMoment() (Value, error) {
	p.pos++
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != '>' {
		p.pos++
	}
	if p.pos >= len(p.src) {
		return nil, p.fail("unterminated moment")
	}
	text := p.src[start:p.pos]
	p.pos++
	t, err := time.Parse(momentLayout, text)
	if err != nil {
		return nil, p.fail("malformed moment")
	}
	return Moment{t: t.UTC()}, nil
}

func (p *parser) parseName() (Value, error) {
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] == '/' {
		p.pos++
		segment := p.pos
		for p.pos < len(p.src) && isAlphanumeric(p.src[p.pos]) {
			p.pos++
		}
		if p.pos == segment {
			return nil, p.fail("empty name segment")
		}
	}
	return Name(p.src[start:p.pos]), nil
}

func (p *parser) parseText() (Value, error) {
	start := p.pos
	p.pos++
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '\\':
			p.pos += 2
		case '"':
			p.pos++
			unquoted, err := strconv.Unquote(p.src[start:p.pos])
			if err != nil {
				return nil, p.fail("malformed text")
			}
			return Text(unquoted), nil
		default:
			p.pos++
		}
	}
	return nil, p.fail("unterminated text")
}

func (p *parser) parseVersion() (Value, error) {
	start := p.pos
	p.pos++
	for p.pos < len(p.src) && (isDigit(p.src[p.pos]) || p.src[p.pos] == '.') {
		p.pos++
	}
	version := Version(p.src[start:p.pos])
	if _, ok := version.Ordinals(); !ok {
		return nil, p.fail("malformed version")
	}
	return version, nil
}

func (p *parser) parseKeyword() (Value, error) {
	start := p.pos
	for p.pos < len(p.src) && isLetter(p.src[p.pos]) {
		p.pos++
	}
	switch word := p.src[start:p.pos]; word {
	case "none":
		return None, nil
	case "any":
		return Any, nil
	default:
		return nil, p.fail("unknown keyword " + word)
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlphanumeric(c byte) bool {
	return isDigit(c) || isLetter(c)
}

// isBase58 accepts the Bitcoin base58 alphabet, which excludes 0, O, I and l.
func isBase58(c byte) bool {
	if !isAlphanumeric(c) {
		return false
	}
	switch c {
	case '0', 'O', 'I', 'l':
		return false
	}
	return true
}
