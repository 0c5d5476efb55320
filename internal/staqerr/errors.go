// Package staqerr is the diagnostic-presentation layer sitting above the
// domain error types returned by internal/types and internal/ssa. It
// mirrors ailang's split between internal/types' own rich error structs
// (TypeCheckError) and its separate internal/errors package, which wraps
// any domain error into a stable, user-facing shape with a code and an
// optional fix suggestion (ailang's Encoded/ErrorInfo/GetErrorInfo).
package staqerr

import (
	"fmt"

	"github.com/staqlang/staq/internal/types"
)

// Code is a stable identifier for a class of failure, independent of the
// Go error type that produced it — useful for scripts and golden tests
// that assert on "which kind of error" without string-matching messages.
type Code string

const (
	CodeUnknownWord        Code = "E_UNKNOWN_WORD"
	CodeEmptySequence      Code = "E_EMPTY_SEQUENCE"
	CodeUnification        Code = "E_UNIFICATION"
	CodeOccursCheck        Code = "E_OCCURS_CHECK"
	CodeCyclicSubstitution Code = "E_CYCLIC_SUBSTITUTION"
	CodeRecursion          Code = "E_RECURSION"
	CodeUnsupportedNode    Code = "E_UNSUPPORTED_NODE"
	CodeSSAUnsupportedWord Code = "E_SSA_UNSUPPORTED_WORD"
	CodePhiMismatch        Code = "E_PHI_MISMATCH"
	CodeBadDefinitionShape Code = "E_BAD_DEFINITION_SHAPE"
	CodeUnknown            Code = "E_UNKNOWN"
)

// suggestions holds a one-line fix hint per code, the way ailang's
// NewUnsolvedConstraintError picks a per-class-name suggestion — terse and
// actionable, not a restatement of the error.
var suggestions = map[Code]string{
	CodeUnknownWord:        "check spelling, or define the word before use",
	CodeEmptySequence:      "a sequence must contain at least one item",
	CodeUnification:        "check the stack shapes the surrounding words expect",
	CodeOccursCheck:        "the inferred type would be infinite; simplify the word",
	CodeCyclicSubstitution: "two inferred types depend on each other; this is a checker bug, not a program error",
	CodeRecursion:          "recursive word definitions are not supported; rewrite with while or indexed-iter",
	CodeSSAUnsupportedWord: "this word has no SSA lowering rule",
	CodePhiMismatch:        "the two branches of an if leave different types on the stack",
	CodeBadDefinitionShape: "a definition needs a name and a non-empty body",
}

// Error is the stable, presentable wrapper around a domain error: a code,
// the underlying cause, an optional fix suggestion, the specific
// offending type pair/variable the cause names, and a snapshot of the
// substitution store at the moment the cause was raised — exactly what
// forfait's UnificationError(t1, t2, ctx) folds into its own message,
// rather than presenting just the two offending types in isolation.
type Error struct {
	Code       Code
	Cause      error
	Suggestion string
	Offending  string
	Store      types.Subst
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %v", e.Code, e.Cause)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (%s)", e.Suggestion)
	}
	if e.Offending != "" {
		msg += fmt.Sprintf(" [offending: %s]", e.Offending)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Wrap builds a presentable Error from a code, its cause, and the
// Context the cause arose in, filling in the code's stock suggestion if
// one is registered and snapshotting ctx's current substitutions for
// diagnostics (spec.md §6 "error reporting ... includes the current
// substitution store"). ctx may be nil, e.g. for errors (like an empty
// sequence) that never touch a Context at all — Store is then simply
// empty.
func Wrap(code Code, cause error, ctx *types.Context, offending string) *Error {
	e := &Error{Code: code, Cause: cause, Suggestion: suggestions[code], Offending: offending}
	if ctx != nil {
		e.Store = ctx.CurrentSubstitutions()
	}
	return e
}
