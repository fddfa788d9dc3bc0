// Package token defines the token value and cursor contracts the front
// end produces and the core consumes for diagnostics and source maps.
package token

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/kefir-lang/kefirgo/errkind"
)

// Kind tags the variant carried by a Token.
type Kind int

const (
	// Sentinel is returned by Cursor.At when the requested offset is past
	// the end of the token stream.
	Sentinel Kind = iota
	Keyword
	Identifier
	Constant
	StringLiteral
	Punctuator
	PPWhitespace
	PPNumber
	PPHeaderName
	Extension
)

// ConstantKind tags the scalar payload of a Constant token.
type ConstantKind int

const (
	ConstantInt ConstantKind = iota
	ConstantUInt
	ConstantFloat32
	ConstantFloat64
	ConstantLongDouble
	ConstantChar
)

// StringElementKind is the element type of a string literal, used by
// the adjacent-string-literal concatenation rule.
type StringElementKind int

const (
	StringMultibyte StringElementKind = iota
	StringUTF8
	StringUTF16
	StringUTF32
	StringWide
)

// SourceLocation is attached to diagnostics raised at the front-end
// boundary.
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

func (l SourceLocation) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Constant is the scalar payload of a Constant token.
type Constant struct {
	Kind ConstantKind
	Int  int64
	UInt uint64
	F32  float32
	F64  float64
}

// StringLiteralValue is the payload of a StringLiteral token.
type StringLiteralValue struct {
	Element StringElementKind
	Raw     bool
	Bytes   []byte
}

// ExtensionHandle is the opaque, v-table-backed payload for Extension
// tokens, letting a caller register hook-defined token kinds without
// the core lexer knowing their concrete shape.
type ExtensionHandle interface {
	ExtensionKind() string
}

// Token is a tagged union over every lexical element the core's parser
// and diagnostic machinery need to see.
type Token struct {
	Kind Kind
	Loc  SourceLocation

	Keyword       string
	Identifier    string
	Constant      Constant
	StringLiteral StringLiteralValue
	Punctuator    string
	NewlineBefore bool // PPWhitespace
	PPNumber      string
	PPHeaderName  string
	PPHeaderIsSys bool
	Extension     ExtensionHandle
}

// IsSentinel reports whether tok is the past-the-end sentinel.
func (tok Token) IsSentinel() bool {
	return tok.Kind == Sentinel
}

// concatCompatible implements the adjacent-string-literal concatenation
// rule: multibyte is a neutral element; any two identical non-multibyte
// types concatenate; distinct non-multibyte types cannot concatenate.
// Note this is checked pairwise left to right, so a three-or-more-way
// concatenation crossing two distinct non-multibyte types (e.g.
// multibyte, utf16, utf8 in that order) errors on the utf16-utf8
// transition rather than being specially handled.
func concatCompatible(a, b StringElementKind) (StringElementKind, error) {
	if a == StringMultibyte {
		return b, nil
	}
	if b == StringMultibyte {
		return a, nil
	}
	if a == b {
		return a, nil
	}
	return 0, errkind.Wrap(errkind.InvalidState, "cannot concatenate string literals of element types %d and %d", a, b)
}

// ConcatStringLiterals folds the element-type compatibility rule across
// an ordered run of string literal tokens, left to right, preserving the
// documented utf16/utf8 transition error.
func ConcatStringLiterals(tokens []Token) (StringElementKind, error) {
	if len(tokens) == 0 {
		return 0, errors.Wrap(errkind.InvalidParameter, "expected at least one string literal token")
	}
	result := tokens[0].StringLiteral.Element
	for _, tok := range tokens[1:] {
		var err error
		result, err = concatCompatible(result, tok.StringLiteral.Element)
		if err != nil {
			return 0, err
		}
	}
	return result, nil
}
