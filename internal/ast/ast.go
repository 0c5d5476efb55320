// Package ast defines the input surface the core consumes: the handful of
// node kinds a tokenizer/parser would produce for a concatenative,
// stack-based program. The parser itself is out of scope for this module;
// these types are the contract between it and the type checker / SSA
// lowering pass.
package ast

import (
	"fmt"
	"strings"
)

// Pos marks a source location for diagnostics. The parser is expected to
// populate it; the core never interprets it beyond carrying it through to
// error messages.
type Pos struct {
	Line   int
	Column int
	File   string
}

func (p Pos) String() string {
	if p.File == "" && p.Line == 0 {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// BaseType enumerates the scalar literal tags the parser may attach to a
// Literal node. It mirrors types.BaseTag but lives here to keep ast free of
// a dependency on the types package.
type BaseType int

const (
	U8 BaseType = iota
	S8
	U16
)

func (b BaseType) String() string {
	switch b {
	case U8:
		return "U8"
	case S8:
		return "S8"
	case U16:
		return "U16"
	default:
		return "?BaseType"
	}
}

// Node is the base interface implemented by every AST entity the core
// accepts.
type Node interface {
	Position() Pos
	String() string
	node()
}

// Literal is a numeric literal. Per spec, bare integers are always typed
// U8 by the parser; S8/U16 literals are only ever produced by an explicit
// word (e.g. a future negation literal or the u16 cast), never inferred
// from context — see SPEC_FULL.md §9 Open Question decisions.
type Literal struct {
	Value int64
	Base  BaseType
	Pos   Pos
}

func (l *Literal) Position() Pos { return l.Pos }
func (l *Literal) String() string {
	return fmt.Sprintf("%d", l.Value)
}
func (*Literal) node() {}

// Boolean is a boolean literal.
type Boolean struct {
	Value bool
	Pos   Pos
}

func (b *Boolean) Position() Pos { return b.Pos }
func (b *Boolean) String() string {
	if b.Value {
		return "true"
	}
	return "false"
}
func (*Boolean) node() {}

// WordRef names a word to be resolved against the builtin or user scope.
// The core looks the name up; it never constructs a type for it itself.
type WordRef struct {
	Name string
	Pos  Pos
}

func (w *WordRef) Position() Pos  { return w.Pos }
func (w *WordRef) String() string { return w.Name }
func (*WordRef) node()            {}

// Quotation is a first-class deferred sub-program, invokable via eval.
type Quotation struct {
	Body *Sequence
	Pos  Pos
}

func (q *Quotation) Position() Pos { return q.Pos }
func (q *Quotation) String() string {
	return "[| " + q.Body.String() + " |]"
}
func (*Quotation) node() {}

// Sequence is an ordered list of word-like nodes: literals, booleans, word
// references, and quotations.
type Sequence struct {
	Items []Node
	Pos   Pos
}

func (s *Sequence) Position() Pos { return s.Pos }
func (s *Sequence) String() string {
	parts := make([]string, len(s.Items))
	for i, it := range s.Items {
		parts[i] = it.String()
	}
	return strings.Join(parts, " ")
}
func (*Sequence) node() {}

// Definition introduces a new, non-recursive user word: name plus body.
type Definition struct {
	Name string
	Body *Sequence
	Pos  Pos
}

func (d *Definition) Position() Pos { return d.Pos }
func (d *Definition) String() string {
	return fmt.Sprintf(": %s %s ;", d.Name, d.Body.String())
}
func (*Definition) node() {}
