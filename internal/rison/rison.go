// Package rison implements a compact, URL-safe text encoding for nested
// object/array/primitive values. The grammar uses only punctuation that
// survives in a URL fragment unescaped: objects are `(key:value,...)`,
// arrays are `!(a,b,c)`, the literals `!t`, `!f` and `!n` stand for true,
// false and null, and strings are either bare identifiers or quoted with
// single quotes (`!` escapes `'` and itself).
//
// Values decode to the generic JSON-ish form: map[string]any, []any,
// string, float64, bool and nil.
package rison

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// notIDChar is the set of characters that terminate a bare identifier.
const notIDChar = " '!:(),*@$"

// Encode serializes v into the compact text form. Object keys are emitted
// in sorted order so the output is deterministic for a given value.
func Encode(v any) (string, error) {
	var b strings.Builder
	if err := encodeValue(&b, v); err != nil {
		return "", err
	}
	return b.String(), nil
}

func encodeValue(b *strings.Builder, v any) error {
	switch x := v.(type) {
	case nil:
		b.WriteString("!n")
	case bool:
		if x {
			b.WriteString("!t")
		} else {
			b.WriteString("!f")
		}
	case string:
		encodeString(b, x)
	case int:
		b.WriteString(strconv.Itoa(x))
	case int64:
		b.WriteString(strconv.FormatInt(x, 10))
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("rison: cannot encode %v", x)
		}
		// The grammar has no '+' in exponents.
		b.WriteString(strings.ReplaceAll(strconv.FormatFloat(x, 'g', -1, 64), "e+", "e"))
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('(')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			encodeString(b, k)
			b.WriteByte(':')
			if err := encodeValue(b, x[k]); err != nil {
				return err
			}
		}
		b.WriteByte(')')
	case []any:
		b.WriteString("!(")
		for i, item := range x {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := encodeValue(b, item); err != nil {
				return err
			}
		}
		b.WriteByte(')')
	default:
		return fmt.Errorf("rison: unsupported type %T", v)
	}
	return nil
}

func encodeString(b *strings.Builder, s string) {
	if isID(s) {
		b.WriteString(s)
		return
	}
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\'' || c == '!' {
			b.WriteByte('!')
		}
		b.WriteByte(c)
	}
	b.WriteByte('\'')
}

// isID reports whether s can be emitted without quotes: non-empty, does
// not start with a digit or '-' (those parse as numbers), and contains no
// structural characters.
func isID(s string) bool {
	if s == "" {
		return false
	}
	if c := s[0]; (c >= '0' && c <= '9') || c == '-' {
		return false
	}
	return !strings.ContainsAny(s, notIDChar)
}

// Decode parses the text form back into the generic value tree. Trailing
// text after a complete value is an error.
func Decode(s string) (any, error) {
	p := &parser{src: s}
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("rison: trailing text at offset %d", p.pos)
	}
	return v, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) parseValue() (any, error) {
	if p.pos >= len(p.src) {
		return nil, fmt.Errorf("rison: unexpected end of input")
	}
	switch c := p.src[p.pos]; {
	case c == '(':
		return p.parseObject()
	case c == '!':
		return p.parseBang()
	case c == '\'':
		return p.parseQuoted()
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	default:
		return p.parseID()
	}
}

func (p *parser) parseObject() (any, error) {
	p.pos++ // consume '('
	obj := map[string]any{}
	if p.pos < len(p.src) && p.src[p.pos] == ')' {
		p.pos++
		return obj, nil
	}
	for {
		key, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		k, ok := key.(string)
		if !ok {
			return nil, fmt.Errorf("rison: object key must be a string, got %T", key)
		}
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		obj[k] = val
		if p.pos >= len(p.src) {
			return nil, fmt.Errorf("rison: unterminated object")
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return obj, nil
		default:
			return nil, fmt.Errorf("rison: expected ',' or ')' at offset %d", p.pos)
		}
	}
}

func (p *parser) parseBang() (any, error) {
	p.pos++ // consume '!'
	if p.pos >= len(p.src) {
		return nil, fmt.Errorf("rison: dangling '!'")
	}
	c := p.src[p.pos]
	p.pos++
	switch c {
	case 't':
		return true, nil
	case 'f':
		return false, nil
	case 'n':
		return nil, nil
	case '(':
		return p.parseArray()
	default:
		return nil, fmt.Errorf("rison: unknown literal '!%c'", c)
	}
}

func (p *parser) parseArray() (any, error) {
	arr := []any{}
	if p.pos < len(p.src) && p.src[p.pos] == ')' {
		p.pos++
		return arr, nil
	}
	for {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
		if p.pos >= len(p.src) {
			return nil, fmt.Errorf("rison: unterminated array")
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return arr, nil
		default:
			return nil, fmt.Errorf("rison: expected ',' or ')' at offset %d", p.pos)
		}
	}
}

func (p *parser) parseQuoted() (any, error) {
	p.pos++ // consume opening quote
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		p.pos++
		switch c {
		case '\'':
			return b.String(), nil
		case '!':
			if p.pos >= len(p.src) {
				return nil, fmt.Errorf("rison: dangling escape in string")
			}
			e := p.src[p.pos]
			p.pos++
			if e != '\'' && e != '!' {
				return nil, fmt.Errorf("rison: invalid escape '!%c'", e)
			}
			b.WriteByte(e)
		default:
			b.WriteByte(c)
		}
	}
	return nil, fmt.Errorf("rison: unterminated string")
}

func (p *parser) parseNumber() (any, error) {
	start := p.pos
	// Greedy scan over the number alphabet; strconv rejects malformed
	// results.
	for p.pos < len(p.src) && strings.ContainsRune("0123456789-.e", rune(p.src[p.pos])) {
		p.pos++
	}
	f, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return nil, fmt.Errorf("rison: invalid number %q", p.src[start:p.pos])
	}
	return f, nil
}

func (p *parser) parseID() (any, error) {
	start := p.pos
	for p.pos < len(p.src) && !strings.ContainsRune(notIDChar, rune(p.src[p.pos])) {
		p.pos++
	}
	if p.pos == start {
		return nil, fmt.Errorf("rison: unexpected character %q at offset %d", p.src[p.pos], p.pos)
	}
	return p.src[start:p.pos], nil
}

func (p *parser) expect(c byte) error {
	if p.pos >= len(p.src) || p.src[p.pos] != c {
		return fmt.Errorf("rison: expected %q at offset %d", string(c), p.pos)
	}
	p.pos++
	return nil
}
