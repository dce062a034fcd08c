// Copyright 2025 The luaq Authors
// SPDX-License-Identifier: MIT

package lualex

import (
	"errors"
	"strconv"
	"strings"
)

// ParseInt converts the given string to a 64-bit signed integer
// according to the [lexical rules of Lua].
// Surrounding whitespace is permitted,
// and any error returned will be of type [*strconv.NumError].
//
// [lexical rules of Lua]: https://lua.org/manual/5.4/manual.html#3.1
func ParseInt(s string) (int64, error) {
	trimmed := trimSpace(s)
	neg, withoutSign := cutSign(trimmed)
	if strings.Contains(withoutSign, "_") {
		return 0, numError("ParseInt", s)
	}

	if h, isHex := cutHexPrefix(withoutSign); isHex {
		// “Hexadecimal numerals with neither a radix point nor an exponent
		// always denote an integer value;
		// if the value overflows, it wraps around to fit into a valid integer.”
		// Accumulating into a uint64 wraps for free:
		// each shift discards the high-order bits.
		if h == "" {
			return 0, numError("ParseInt", s)
		}
		var x uint64
		for i := 0; i < len(h); i++ {
			d, err := hexDigit(h[i])
			if err != nil {
				return 0, numError("ParseInt", s)
			}
			x = x<<4 | uint64(d)
		}
		if neg {
			x = -x
		}
		return int64(x), nil
	}

	return strconv.ParseInt(trimmed, 10, 64)
}

// ParseNumber converts the given string to a 64-bit floating-point number
// according to the [lexical rules of Lua].
// Surrounding whitespace is permitted,
// and any error returned will be of type [*strconv.NumError].
//
// [lexical rules of Lua]: https://lua.org/manual/5.4/manual.html#3.1
func ParseNumber(s string) (float64, error) {
	trimmed := trimSpace(s)
	_, withoutSign := cutSign(trimmed)
	if strings.EqualFold(withoutSign, "Inf") ||
		strings.EqualFold(withoutSign, "Infinity") ||
		strings.EqualFold(withoutSign, "NaN") ||
		strings.Contains(withoutSign, "_") {
		return 0, numError("ParseNumber", s)
	}

	toParse := trimmed
	if h, isHex := cutHexPrefix(withoutSign); isHex {
		switch {
		case !strings.ContainsAny(h, ".pP"):
			// “Hexadecimal numerals with neither a radix point nor an exponent
			// always denote an integer value;
			// if the value overflows, it wraps around to fit into a valid integer.”
			i, err := ParseInt(trimmed)
			if err != nil {
				err.(*strconv.NumError).Func = "ParseNumber"
				err.(*strconv.NumError).Num = s
			}
			return float64(i), err
		case !strings.ContainsAny(h, "pP"):
			// Go hex float literals must have an exponent.
			toParse += "p0"
		}
	}
	f, err := strconv.ParseFloat(toParse, 64)
	if errors.Is(err, strconv.ErrRange) {
		// A decimal literal with a huge exponent denotes an infinity in Lua.
		err = nil
	} else if err != nil {
		err.(*strconv.NumError).Num = s
	}
	return f, err
}

// IsIntegerNumeral reports whether the numeral text s
// (as produced by [Scanner] in a [NumeralToken], optionally signed)
// denotes an integer under Lua's lexical rules:
// a hexadecimal numeral with neither radix point nor binary exponent,
// or a decimal numeral with neither radix point nor exponent.
// A decimal integer numeral may still overflow into a float;
// see [ParseInt].
func IsIntegerNumeral(s string) bool {
	_, withoutSign := cutSign(trimSpace(s))
	if h, isHex := cutHexPrefix(withoutSign); isHex {
		return !strings.ContainsAny(h, ".pP")
	}
	return !strings.ContainsAny(withoutSign, ".eE")
}

func numError(fn, num string) *strconv.NumError {
	return &strconv.NumError{
		Func: fn,
		Num:  num,
		Err:  strconv.ErrSyntax,
	}
}

func cutHexPrefix(s string) (rest string, hex bool) {
	if rest, ok := strings.CutPrefix(s, "0x"); ok {
		return rest, true
	}
	if rest, ok := strings.CutPrefix(s, "0X"); ok {
		return rest, true
	}
	return s, false
}

func cutSign(s string) (neg bool, rest string) {
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		return true, rest
	}
	rest = strings.TrimPrefix(s, "+")
	return false, rest
}

func trimSpace(s string) string {
	isLuaSpace := func(r rune) bool {
		return r < 0x80 && isSpace(byte(r))
	}
	return strings.TrimFunc(s, isLuaSpace)
}
