package token

import "testing"

func ident(name string) Token {
	return Token{Kind: Identifier, Identifier: name}
}

func TestArrayCursorSentinelPastEnd(t *testing.T) {
	c := NewArrayCursor([]Token{ident("a"), ident("b")})
	if tok := c.At(5); !tok.IsSentinel() {
		t.Fatalf("expected sentinel past end, got %+v", tok)
	}
	c.Next()
	if tok := c.At(0); tok.Identifier != "b" {
		t.Fatalf("At(0) after Next = %q, want b", tok.Identifier)
	}
}

func TestCursorSaveRestore(t *testing.T) {
	c := NewArrayCursor([]Token{ident("a"), ident("b"), ident("c")})
	c.Next()
	mark := c.Save()
	c.Next()
	c.Next()
	c.Restore(mark)
	if tok := c.At(0); tok.Identifier != "b" {
		t.Fatalf("restored At(0) = %q, want b", tok.Identifier)
	}
}

func TestTokenBufferChunking(t *testing.T) {
	buf := NewTokenBuffer()
	for i := 0; i < chunkCapacity+10; i++ {
		buf.Append(ident("x"))
	}
	if buf.Len() != chunkCapacity+10 {
		t.Fatalf("length = %d, want %d", buf.Len(), chunkCapacity+10)
	}
	if len(buf.chunks) < 2 {
		t.Fatalf("expected buffer to grow a second chunk, got %d chunks", len(buf.chunks))
	}
	if tok := buf.At(buf.Len()); !tok.IsSentinel() {
		t.Fatalf("expected sentinel past end")
	}
}

func TestTokenBufferInsertMergesAdjacentChunks(t *testing.T) {
	buf := NewTokenBuffer()
	for i := 0; i < 5; i++ {
		buf.Append(ident("x"))
	}
	buf.chunks = append(buf.chunks, &chunk{tokens: []Token{ident("y")}})
	buf.length++
	if len(buf.chunks) != 2 {
		t.Fatalf("expected 2 chunks before insert, got %d", len(buf.chunks))
	}
	if err := buf.Insert(3, ident("z")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if len(buf.chunks) != 1 {
		t.Fatalf("expected insert to merge adjacent chunks under capacity, got %d chunks", len(buf.chunks))
	}
	if buf.At(3).Identifier != "z" {
		t.Fatalf("inserted token not at expected position")
	}
}

func TestConcatStringLiteralsRule(t *testing.T) {
	mb := Token{Kind: StringLiteral, StringLiteral: StringLiteralValue{Element: StringMultibyte}}
	u8 := Token{Kind: StringLiteral, StringLiteral: StringLiteralValue{Element: StringUTF8}}
	u16 := Token{Kind: StringLiteral, StringLiteral: StringLiteralValue{Element: StringUTF16}}

	if kind, err := ConcatStringLiterals([]Token{mb, u8}); err != nil || kind != StringUTF8 {
		t.Fatalf("multibyte+utf8 = (%v, %v), want (utf8, nil)", kind, err)
	}
	if kind, err := ConcatStringLiterals([]Token{u8, u8}); err != nil || kind != StringUTF8 {
		t.Fatalf("utf8+utf8 = (%v, %v), want (utf8, nil)", kind, err)
	}
	if _, err := ConcatStringLiterals([]Token{u8, u16}); err == nil {
		t.Fatalf("expected utf8+utf16 to be incompatible")
	}
	// Preserved source bug: {multibyte, utf16, utf8} errors on the
	// utf16->utf8 transition even though multibyte is a neutral element.
	if _, err := ConcatStringLiterals([]Token{mb, u16, u8}); err == nil {
		t.Fatalf("expected {multibyte,utf16,utf8} to error on the utf16->utf8 transition")
	}
}
