// Copyright 2025 The luaq Authors
// SPDX-License-Identifier: MIT

// Package luaq reads the data-only subset of Lua 5.4 source text —
// the dialect produced by Lua's %q format and common save/config dumps —
// and materializes it as in-memory values without evaluating any Lua.
//
// An input is a bare expression, a return statement, or a script of
// identifier assignments (see [Form]).
// [Parse] produces a [Value] tree,
// [Decode] and [Unmarshal] materialize values into Go types,
// and [ToJSON]/[FromJSON] bridge values to and from JSON.
//
// Table nesting depth is bounded by the caller,
// so untrusted inputs cannot exhaust the stack.
package luaq
