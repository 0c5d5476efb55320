package staqerr

import (
	"fmt"

	"github.com/staqlang/staq/internal/ssa"
	"github.com/staqlang/staq/internal/types"
)

// Classify wraps a domain error from internal/types or internal/ssa into
// a presentable *Error, picking the Code that matches its concrete type
// and pulling out the specific offending type pair/variable each error
// kind carries. ctx is the Context the error arose in (may be nil for
// errors that never touch one); every case passes it through to Wrap so
// Store always reflects the substitution state at the point of failure,
// exactly as forfait's UnificationError(t1, t2, ctx) does. An error type
// Classify doesn't recognize gets CodeUnknown rather than panicking —
// callers at the edge (CLI, scenario runner) should always be able to
// present something.
func Classify(err error, ctx *types.Context) *Error {
	if err == nil {
		return nil
	}
	if already, ok := err.(*Error); ok {
		return already
	}

	switch e := err.(type) {
	case *types.UnknownWordError:
		return Wrap(CodeUnknownWord, err, ctx, e.Name)
	case *types.UnificationError:
		return Wrap(CodeUnification, err, ctx, fmt.Sprintf("%s vs %s", e.Left, e.Right))
	case *types.OccursCheckError:
		return Wrap(CodeOccursCheck, err, ctx, fmt.Sprintf("%s in %s", e.Var, e.In))
	case *types.CyclicSubstitutionError:
		return Wrap(CodeCyclicSubstitution, err, ctx, e.Cause.Error())
	case *types.RecursionError:
		return Wrap(CodeRecursion, err, ctx, e.Name)
	case *types.UnsupportedNodeError:
		return Wrap(CodeUnsupportedNode, err, ctx, e.Node.String())
	case *ssa.UnsupportedWordError:
		return Wrap(CodeSSAUnsupportedWord, err, ctx, e.Name)
	case *ssa.PhiMismatchError:
		return Wrap(CodePhiMismatch, err, ctx, fmt.Sprintf("then has %d, else has %d", e.ThenLen, e.ElseLen))
	default:
		if err == types.ErrEmptySequence {
			return Wrap(CodeEmptySequence, err, ctx, "")
		}
		return Wrap(CodeUnknown, err, ctx, "")
	}
}
