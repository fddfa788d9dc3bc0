package analysis

import (
	"github.com/kefir-lang/kefirgo/errkind"
	"github.com/kefir-lang/kefirgo/ir"
)

// VerifyUseDef checks, for every instruction X's input Y, that Y's
// defining block dominates X's block. It returns errkind.InvalidState
// citing both instructions on the first violation found.
func VerifyUseDef(code *ir.CodeContainer, structure *CodeStructure) error {
	var violation error
	code.Trace(func(user, used ir.InstrID) {
		if violation != nil {
			return
		}
		userInstr, ok := code.Instr(user)
		if !ok {
			return
		}
		usedInstr, ok := code.Instr(used)
		if !ok {
			return
		}
		if usedInstr.Block == userInstr.Block {
			return
		}
		if !structure.IsDominator(userInstr.Block, usedInstr.Block) {
			violation = errkind.Wrap(errkind.InvalidState,
				"instruction %d in block %d uses instruction %d defined in block %d with no dominance relationship",
				user, userInstr.Block, used, usedInstr.Block)
		}
	})
	return violation
}
