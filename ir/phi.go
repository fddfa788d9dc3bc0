package ir

// Phi is an unattached-by-default phi node: it owns a map from
// predecessor block to the instruction supplying that incoming value,
// and an Output instruction id (an OpPhi instruction whose
// Operand.Phi references this node) through which the merged value is
// read elsewhere in the function.
type Phi struct {
	ID     PhiID
	Block  BlockID
	Output InstrID

	links map[BlockID]InstrID
}

func newPhi(id PhiID, block BlockID) *Phi {
	return &Phi{
		ID:     id,
		Block:  block,
		Output: InstrID(NoneID),
		links:  make(map[BlockID]InstrID),
	}
}

// Link returns the instruction supplying the phi's value from pred, if
// one has been attached.
func (p *Phi) Link(pred BlockID) (InstrID, bool) {
	id, ok := p.links[pred]
	return id, ok
}

// Links returns a copy of the phi's predecessor-to-instruction map.
func (p *Phi) Links() map[BlockID]InstrID {
	out := make(map[BlockID]InstrID, len(p.links))
	for k, v := range p.links {
		out[k] = v
	}
	return out
}
