// Package errkind defines the normative error kinds that cross the
// component boundaries of the optimizer core, as sentinel errors.
// Callers compare against these with errors.Is; the contextual message
// attached via errors.Wrap explains the specific violation.
package errkind

import "github.com/pkg/errors"

// Sentinel error kinds. Names match the boundary contract verbatim.
var (
	NotFound           = errors.New("not-found")
	AlreadyExists      = errors.New("already-exists")
	OutOfBounds        = errors.New("out-of-bounds")
	InvalidParameter   = errors.New("invalid-parameter")
	InvalidState       = errors.New("invalid-state")
	InvalidRequest     = errors.New("invalid-request")
	OutOfSpace         = errors.New("out-of-space")
	IteratorEnd        = errors.New("iterator-end")
	InternalError      = errors.New("internal-error")
	MemallocFailure    = errors.New("memalloc-failure")
	SyntaxError        = errors.New("syntax-error")
	LexerError         = errors.New("lexer-error")
	InconsistentPhi    = errors.New("inconsistent-phi")
	MissingPhiLink     = errors.New("missing-phi-link")
	InstructionInUse   = errors.New("instruction-in-use")
	CyclicDependency   = errors.New("cyclic-dependency")
	UIError            = errors.New("ui-error")
)

// Wrap attaches a contextual message to a sentinel kind while keeping it
// comparable with errors.Is(err, kind) and preserving a stack trace.
func Wrap(kind error, format string, args ...interface{}) error {
	return errors.Wrapf(kind, format, args...)
}
