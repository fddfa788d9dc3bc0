package container

// StringID is a stable, dense identifier for an interned string. It is
// never reused and stays valid for the lifetime of the owning StringPool.
type StringID uint32

// NoneID is the reserved all-ones sentinel shared by every id space in
// the core (block, instruction, phi, call, inline-asm, label, vreg,
// stash, string).
const NoneID = ^uint32(0)

// StringPool interns strings to stable ids. Concurrent interning from
// multiple goroutines is not supported, matching the single-threaded
// core.
type StringPool struct {
	byID  []string
	byStr map[string]StringID
}

// NewStringPool creates an empty pool.
func NewStringPool() *StringPool {
	return &StringPool{byStr: make(map[string]StringID)}
}

// Intern returns the stable id for s, allocating a new one on first
// use. Calling Intern(s) twice always returns the same id.
func (p *StringPool) Intern(s string) StringID {
	if id, ok := p.byStr[s]; ok {
		return id
	}
	id := StringID(len(p.byID))
	p.byID = append(p.byID, s)
	p.byStr[s] = id
	return id
}

// Lookup returns the id previously assigned to s, if any.
func (p *StringPool) Lookup(s string) (StringID, bool) {
	id, ok := p.byStr[s]
	return id, ok
}

// String returns the interned string for id. It panics on an out-of-range
// id since that always indicates a caller bug (a dangling id from another
// pool, or a fabricated value) rather than a recoverable condition.
func (p *StringPool) String(id StringID) string {
	return p.byID[id]
}

// Len returns the number of distinct interned strings.
func (p *StringPool) Len() int {
	return len(p.byID)
}
