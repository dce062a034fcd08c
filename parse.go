// Copyright 2025 The luaq Authors
// SPDX-License-Identifier: MIT

package luaq

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"luaq.dev/pkg/lualex"
)

// Form selects the top-level shape of the input.
type Form int

const (
	// Expression is a bare Lua value, e.g. `{hello = "world"}`.
	Expression Form = iota
	// Return is a return statement, e.g. `return {hello = "world"}`.
	Return
	// Script is a sequence of identifier assignments, e.g. `hello = "world"`.
	// Parsing a script yields a table keyed by the assigned identifiers.
	Script
)

// String returns the name of the form.
func (f Form) String() string {
	switch f {
	case Expression:
		return "expression"
	case Return:
		return "return"
	case Script:
		return "script"
	default:
		return fmt.Sprintf("Form(%d)", int(f))
	}
}

// A ParseError describes a failure to parse Lua data.
type ParseError struct {
	// Position locates the error within the input;
	// Position.Offset is the byte offset.
	Position lualex.Position
	// Msg describes the failure.
	Msg string
	// Err is the underlying scanner error, if any.
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if !e.Position.IsValid() {
		return e.Msg
	}
	return fmt.Sprintf("%v (byte %d): %s", e.Position, e.Position.Offset, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse reads Lua data from data according to the given form.
//
// maxDepth bounds table nesting:
// the outermost table constructor is at depth 1,
// and opening a table beyond maxDepth fails with an error
// naming the byte offset of the offending '{'.
// A maxDepth of 0 rejects any table.
// The bound also caps parser recursion,
// so adversarial inputs cannot exhaust the goroutine stack.
//
// Parse never evaluates Lua:
// operators, function calls, variable references, and comments
// are all syntax errors.
func Parse(data []byte, form Form, maxDepth int) (Value, error) {
	p := &parser{
		s:        lualex.NewScanner(bytes.NewReader(data)),
		maxDepth: maxDepth,
	}
	if err := p.next(); err != nil {
		return Value{}, err
	}

	var v Value
	var err error
	switch form {
	case Expression:
		v, err = p.value()
	case Return:
		v, err = p.returnStatement()
	case Script:
		v, err = p.script()
	default:
		return Value{}, fmt.Errorf("parse lua data: unknown form %v", form)
	}
	if err != nil {
		return Value{}, err
	}
	if !p.eof {
		return Value{}, p.errorf(p.tok.Position, "unexpected %v after %v", p.tok, form)
	}
	return v, nil
}

type parser struct {
	s   *lualex.Scanner
	tok lualex.Token
	eof bool

	depth    int
	maxDepth int
}

func (p *parser) next() error {
	tok, err := p.s.Scan()
	if err == io.EOF {
		p.tok = lualex.Token{}
		p.eof = true
		return nil
	}
	if err != nil {
		return &ParseError{Position: tok.Position, Err: err}
	}
	p.tok = tok
	p.eof = false
	return nil
}

func (p *parser) errorf(pos lualex.Position, format string, args ...any) error {
	return &ParseError{Position: pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) unexpected(want string) error {
	if p.eof {
		return &ParseError{Msg: fmt.Sprintf("unexpected end of input (want %s)", want)}
	}
	return p.errorf(p.tok.Position, "unexpected %v (want %s)", p.tok, want)
}

func (p *parser) returnStatement() (Value, error) {
	if p.eof || p.tok.Kind != lualex.ReturnToken {
		return Value{}, p.unexpected("'return'")
	}
	if err := p.next(); err != nil {
		return Value{}, err
	}
	v, err := p.value()
	if err != nil {
		return Value{}, err
	}
	if !p.eof && p.tok.Kind == lualex.SemiToken {
		if err := p.next(); err != nil {
			return Value{}, err
		}
	}
	return v, nil
}

func (p *parser) script() (Value, error) {
	tab := new(Table)
	for !p.eof {
		if p.tok.Kind != lualex.IdentifierToken {
			return Value{}, p.unexpected("identifier")
		}
		name := p.tok.Value
		if err := p.next(); err != nil {
			return Value{}, err
		}
		if p.eof || p.tok.Kind != lualex.AssignToken {
			return Value{}, p.unexpected("'='")
		}
		if err := p.next(); err != nil {
			return Value{}, err
		}
		v, err := p.value()
		if err != nil {
			return Value{}, err
		}
		// Reassignment keeps the position of the last occurrence.
		tab.Set(StringValue(name), v)

		for !p.eof && p.tok.Kind == lualex.SemiToken {
			if err := p.next(); err != nil {
				return Value{}, err
			}
		}
	}
	return TableValue(tab), nil
}

func (p *parser) value() (Value, error) {
	if p.eof {
		return Value{}, p.unexpected("value")
	}
	switch p.tok.Kind {
	case lualex.NilToken:
		return Value{}, p.next()
	case lualex.TrueToken:
		return BoolValue(true), p.next()
	case lualex.FalseToken:
		return BoolValue(false), p.next()
	case lualex.StringToken:
		v := StringValue(p.tok.Value)
		return v, p.next()
	case lualex.NumeralToken:
		return p.numeral("")
	case lualex.SubToken, lualex.AddToken:
		sign := "-"
		if p.tok.Kind == lualex.AddToken {
			sign = "+"
		}
		signPos := p.tok.Position
		if err := p.next(); err != nil {
			return Value{}, err
		}
		if p.eof || p.tok.Kind != lualex.NumeralToken || p.tok.Position.Offset != signPos.Offset+1 {
			return Value{}, p.unexpected("numeral")
		}
		return p.numeral(sign)
	case lualex.LParenToken:
		return p.nan()
	case lualex.LBraceToken:
		return p.table()
	default:
		return Value{}, p.unexpected("value")
	}
}

// numeral converts the current numeral token, with an optional sign folded in.
// The sign is folded before conversion so that -0x8000000000000000
// and -9223372036854775808 parse as integers.
func (p *parser) numeral(sign string) (Value, error) {
	text := sign + p.tok.Value
	pos := p.tok.Position
	if err := p.next(); err != nil {
		return Value{}, err
	}
	if lualex.IsIntegerNumeral(text) {
		if i, err := lualex.ParseInt(text); err == nil {
			return IntegerValue(i), nil
		}
		// A decimal integer too large for int64 coerces to a float,
		// matching Lua 5.4. (Hex integers wrap instead; see lualex.ParseInt.)
	}
	f, err := lualex.ParseNumber(text)
	if err != nil {
		return Value{}, p.errorf(pos, "malformed number %q", text)
	}
	return FloatValue(f), nil
}

// nan recognizes the literal token (0/0), the only NaN spelling.
// The bytes must be adjacent: no whitespace is permitted inside.
func (p *parser) nan() (Value, error) {
	open := p.tok.Position
	want := []struct {
		kind  lualex.TokenKind
		value string
	}{
		{lualex.NumeralToken, "0"},
		{lualex.DivToken, ""},
		{lualex.NumeralToken, "0"},
		{lualex.RParenToken, ""},
	}
	for i, w := range want {
		if err := p.next(); err != nil {
			return Value{}, err
		}
		if p.eof || p.tok.Kind != w.kind || p.tok.Value != w.value ||
			p.tok.Position.Offset != open.Offset+1+i {
			return Value{}, p.errorf(open, "expected (0/0)")
		}
	}
	return FloatValue(math.NaN()), p.next()
}

func (p *parser) table() (Value, error) {
	open := p.tok.Position
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.maxDepth {
		return Value{}, p.errorf(open, "table nesting exceeds %d levels", p.maxDepth)
	}
	if err := p.next(); err != nil {
		return Value{}, err
	}

	tab := new(Table)
	nextImplicit := int64(1)
	for {
		if p.eof {
			return Value{}, p.unexpected("table field or '}'")
		}
		if p.tok.Kind == lualex.RBraceToken {
			return TableValue(tab), p.next()
		}

		var key, value Value
		implicit := false
		switch p.tok.Kind {
		case lualex.LBracketToken:
			// ["key"] = value
			keyPos := p.tok.Position
			if err := p.next(); err != nil {
				return Value{}, err
			}
			var err error
			key, err = p.value()
			if err != nil {
				return Value{}, err
			}
			if p.eof || p.tok.Kind != lualex.RBracketToken {
				return Value{}, p.unexpected("']'")
			}
			if err := p.next(); err != nil {
				return Value{}, err
			}
			if p.eof || p.tok.Kind != lualex.AssignToken {
				return Value{}, p.unexpected("'='")
			}
			if err := p.next(); err != nil {
				return Value{}, err
			}
			value, err = p.value()
			if err != nil {
				return Value{}, err
			}
			if key.IsNil() {
				return Value{}, p.errorf(keyPos, "table key is nil")
			}
			if key.IsNaN() {
				return Value{}, p.errorf(keyPos, "table key is NaN")
			}
		case lualex.IdentifierToken:
			// name = value
			key = StringValue(p.tok.Value)
			if err := p.next(); err != nil {
				return Value{}, err
			}
			if p.eof || p.tok.Kind != lualex.AssignToken {
				return Value{}, p.unexpected("'='")
			}
			if err := p.next(); err != nil {
				return Value{}, err
			}
			var err error
			value, err = p.value()
			if err != nil {
				return Value{}, err
			}
		default:
			// Positional field; takes the next implicit integer key.
			var err error
			value, err = p.value()
			if err != nil {
				return Value{}, err
			}
			key = IntegerValue(nextImplicit)
			implicit = true
		}

		if err := tab.Set(key, value); err != nil {
			return Value{}, p.errorf(open, "%v", err)
		}
		if implicit {
			nextImplicit++
		}

		if p.eof {
			return Value{}, p.unexpected("',' or '}'")
		}
		switch p.tok.Kind {
		case lualex.CommaToken, lualex.SemiToken:
			if err := p.next(); err != nil {
				return Value{}, err
			}
		case lualex.RBraceToken:
			// Closing brace handled at the top of the loop.
		default:
			return Value{}, p.unexpected("',' or '}'")
		}
	}
}
