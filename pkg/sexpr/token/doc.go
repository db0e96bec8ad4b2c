// Package token defines the lexical tokens of the Callisto source language
// and the positions used for error reporting throughout the compiler.
//
// The source language has five token kinds: parentheses, numbers, strings,
// and names. Whitespace separates tokens and is never emitted. A token
// stream has no end-of-input sentinel; consumers detect the end by slice
// exhaustion.
package token
