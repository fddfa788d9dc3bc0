package token

import "github.com/kefir-lang/kefirgo/errkind"

// Mark is a saved cursor position restorable with Cursor.Restore.
type Mark int

// Cursor is the integer-indexed handle the parser consumes. It is a thin
// contract over two backing representations (a contiguous array in the
// front end, a chunked buffer in the middle end); both satisfy this
// interface so the parser and the core's diagnostic code can share one
// consumer-facing type.
type Cursor interface {
	// At returns the token offset positions ahead of the cursor, or the
	// Sentinel token if offset runs past the end of the stream.
	At(offset int) Token
	// Reset repositions the cursor to the start of the stream.
	Reset()
	// Next advances the cursor by one token.
	Next()
	// Save returns a mark that Restore can later return the cursor to.
	Save() Mark
	// Restore repositions the cursor to a previously saved mark.
	Restore(mark Mark)
	// Position returns the cursor's current absolute index.
	Position() int
}

// ArrayCursor is the front end's contiguous-array cursor backing.
type ArrayCursor struct {
	tokens []Token
	pos    int
}

// NewArrayCursor wraps tokens in a random-access cursor.
func NewArrayCursor(tokens []Token) *ArrayCursor {
	return &ArrayCursor{tokens: tokens}
}

func (c *ArrayCursor) At(offset int) Token {
	i := c.pos + offset
	if i < 0 || i >= len(c.tokens) {
		return Token{Kind: Sentinel}
	}
	return c.tokens[i]
}

func (c *ArrayCursor) Reset()            { c.pos = 0 }
func (c *ArrayCursor) Next()             { c.pos++ }
func (c *ArrayCursor) Save() Mark        { return Mark(c.pos) }
func (c *ArrayCursor) Restore(mark Mark) { c.pos = int(mark) }
func (c *ArrayCursor) Position() int     { return c.pos }

// chunkCapacity is the maximum number of tokens a single TokenBuffer
// chunk holds before a new chunk is appended.
const chunkCapacity = 4096

type chunk struct {
	tokens []Token
}

// TokenBuffer is the middle end's chunked token buffer: chunks grow
// geometrically up to chunkCapacity tokens each, and Insert merges
// adjacent chunks back together when doing so keeps the result under
// the limit.
type TokenBuffer struct {
	chunks []*chunk
	length int
}

// NewTokenBuffer creates an empty chunked token buffer.
func NewTokenBuffer() *TokenBuffer {
	return &TokenBuffer{}
}

// Len returns the total number of tokens stored across all chunks.
func (b *TokenBuffer) Len() int {
	return b.length
}

// Append adds a token to the end of the buffer, growing the last chunk
// geometrically (doubling, capped at chunkCapacity) or starting a new
// chunk once the current one is full.
func (b *TokenBuffer) Append(tok Token) {
	if len(b.chunks) == 0 || len(b.chunks[len(b.chunks)-1].tokens) >= chunkCapacity {
		b.chunks = append(b.chunks, &chunk{tokens: make([]Token, 0, 64)})
	}
	last := b.chunks[len(b.chunks)-1]
	last.tokens = append(last.tokens, tok)
	b.length++
}

// locate maps an absolute index to (chunk index, offset within chunk).
func (b *TokenBuffer) locate(index int) (int, int, bool) {
	if index < 0 {
		return 0, 0, false
	}
	remaining := index
	for ci, c := range b.chunks {
		if remaining < len(c.tokens) {
			return ci, remaining, true
		}
		remaining -= len(c.tokens)
	}
	return 0, 0, false
}

// At returns the token at the given absolute index, or the Sentinel
// token if out of range.
func (b *TokenBuffer) At(index int) Token {
	ci, off, ok := b.locate(index)
	if !ok {
		return Token{Kind: Sentinel}
	}
	return b.chunks[ci].tokens[off]
}

// Insert inserts tok at the given absolute index, splitting the owning
// chunk if it would overflow chunkCapacity, and otherwise merging the
// owning chunk with the chunk after it when that keeps the total under
// the capacity limit.
func (b *TokenBuffer) Insert(index int, tok Token) error {
	if index < 0 || index > b.length {
		return errkind.Wrap(errkind.OutOfBounds, "token buffer insert index %d out of bounds (length %d)", index, b.length)
	}
	if index == b.length {
		b.Append(tok)
		return nil
	}
	ci, off, ok := b.locate(index)
	if !ok {
		return errkind.Wrap(errkind.InternalError, "failed to locate chunk for index %d", index)
	}
	c := b.chunks[ci]
	c.tokens = append(c.tokens, Token{})
	copy(c.tokens[off+1:], c.tokens[off:])
	c.tokens[off] = tok
	b.length++

	if len(c.tokens) > chunkCapacity {
		split := len(c.tokens) / 2
		newChunk := &chunk{tokens: append([]Token(nil), c.tokens[split:]...)}
		c.tokens = c.tokens[:split]
		b.chunks = append(b.chunks, nil)
		copy(b.chunks[ci+2:], b.chunks[ci+1:])
		b.chunks[ci+1] = newChunk
		return nil
	}

	b.mergeAdjacent(ci)
	return nil
}

// mergeAdjacent merges the chunk at index ci with its next sibling if
// the combined length still fits within chunkCapacity.
func (b *TokenBuffer) mergeAdjacent(ci int) {
	if ci+1 >= len(b.chunks) {
		return
	}
	cur, next := b.chunks[ci], b.chunks[ci+1]
	if len(cur.tokens)+len(next.tokens) > chunkCapacity {
		return
	}
	cur.tokens = append(cur.tokens, next.tokens...)
	b.chunks = append(b.chunks[:ci+1], b.chunks[ci+2:]...)
}

// TokenBufferCursor is the random-access cursor over a TokenBuffer.
type TokenBufferCursor struct {
	buf *TokenBuffer
	pos int
}

// NewTokenBufferCursor creates a cursor positioned at the start of buf.
func NewTokenBufferCursor(buf *TokenBuffer) *TokenBufferCursor {
	return &TokenBufferCursor{buf: buf}
}

func (c *TokenBufferCursor) At(offset int) Token {
	return c.buf.At(c.pos + offset)
}

func (c *TokenBufferCursor) Reset()            { c.pos = 0 }
func (c *TokenBufferCursor) Next()             { c.pos++ }
func (c *TokenBufferCursor) Save() Mark        { return Mark(c.pos) }
func (c *TokenBufferCursor) Restore(mark Mark) { c.pos = int(mark) }
func (c *TokenBufferCursor) Position() int     { return c.pos }

var (
	_ Cursor = (*ArrayCursor)(nil)
	_ Cursor = (*TokenBufferCursor)(nil)
)
