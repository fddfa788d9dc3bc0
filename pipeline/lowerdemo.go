package pipeline

import (
	"sort"

	"github.com/kefir-lang/kefirgo/asmcmp"
	"github.com/kefir-lang/kefirgo/debug"
	"github.com/kefir-lang/kefirgo/errkind"
	"github.com/kefir-lang/kefirgo/ir"
)

// LowerDemo lowers a single function's optimizer IR into an asmcmp
// context, one virtual register per instruction result and one asmcmp
// instruction per opcode. It covers the scalar integer subset (consts,
// arithmetic, compare, load/store, branch/jump/return) and
// exists to exercise asmcmp end to end in tests; a real code generator
// would pick concrete operand placements and physical registers
// instead of emitting a vreg for every value.
type LowerDemo struct {
	code *ir.CodeContainer
	ctx  *asmcmp.Context

	// Debug is the subprogram's debug-entry tree, populated as a
	// byproduct of lowering: a root EntrySubprogram entry named
	// FuncName carrying Name/CodeBegin/CodeEnd attributes, with one
	// EntryParameter child per get_argument instruction encountered.
	Debug    *debug.ModuleDebugInfo
	Subprog  debug.EntryID
	FuncName string

	vregs  map[ir.InstrID]asmcmp.VRegID
	labels map[ir.BlockID]asmcmp.LabelID
}

// NewLowerDemo prepares a demo lowering of code, named funcName, into a
// fresh asmcmp context.
func NewLowerDemo(code *ir.CodeContainer, funcName string) *LowerDemo {
	return &LowerDemo{
		code:     code,
		ctx:      asmcmp.NewContext(),
		Debug:    debug.NewModuleDebugInfo(),
		FuncName: funcName,
		vregs:    make(map[ir.InstrID]asmcmp.VRegID),
		labels:   make(map[ir.BlockID]asmcmp.LabelID),
	}
}

// Run lowers every block in code's natural id order and returns the
// populated asmcmp context. It also records a subprogram debug entry
// spanning the lowered instruction range and annotates that range in
// the asmcmp context's source map.
func (d *LowerDemo) Run() (*asmcmp.Context, error) {
	d.Subprog = d.Debug.NewEntry(debug.EntryID(debug.NoneID), debug.EntrySubprogram, d.FuncName, nil)
	if err := d.Debug.AddAttribute(d.Subprog, debug.AttrName, debug.Attribute{Str: d.FuncName}); err != nil {
		return nil, err
	}

	blocks := d.code.Blocks()
	sort.Slice(blocks, func(i, j int) bool { return blocks[i] < blocks[j] })
	for _, bid := range blocks {
		label, err := d.ctx.NewLabel(asmcmp.NoneIndex)
		if err != nil {
			return nil, err
		}
		d.labels[bid] = label
	}

	begin := d.ctx.Tail()
	for _, bid := range blocks {
		if err := d.lowerBlock(bid); err != nil {
			return nil, err
		}
	}
	end := d.ctx.Tail()

	if err := d.Debug.AddAttribute(d.Subprog, debug.AttrCodeBegin, debug.Attribute{Int: int64(begin) + 1}); err != nil {
		return nil, err
	}
	if err := d.Debug.AddAttribute(d.Subprog, debug.AttrCodeEnd, debug.Attribute{Int: int64(end)}); err != nil {
		return nil, err
	}
	if err := d.ctx.AnnotateSource(begin+1, end+1, debug.Location{File: d.FuncName}); err != nil {
		return nil, err
	}
	return d.ctx, nil
}

func (d *LowerDemo) lowerBlock(bid ir.BlockID) error {
	block, ok := d.code.Block(bid)
	if !ok {
		return errkind.Wrap(errkind.NotFound, "block %d not found", bid)
	}

	tail := d.ctx.Tail()
	marker, err := d.ctx.InstrInsertAfter(tail, "block_marker")
	if err != nil {
		return err
	}
	if err := d.ctx.BindLabel(d.labels[bid], marker); err != nil {
		return err
	}

	for _, id := range block.Instructions(d.code) {
		instr, ok := d.code.Instr(id)
		if !ok {
			continue
		}
		if err := d.lowerInstr(instr); err != nil {
			return err
		}
	}
	return nil
}

// vregFor returns id's lowered virtual register, allocating a
// general-purpose one on first reference so forward and backward
// references resolve to the same vreg.
func (d *LowerDemo) vregFor(id ir.InstrID) (asmcmp.VRegID, error) {
	if v, ok := d.vregs[id]; ok {
		return v, nil
	}
	v, err := d.ctx.VRegNew(asmcmp.VRegGeneralPurpose, asmcmp.Width64)
	if err != nil {
		return asmcmp.VRegID(asmcmp.NoneID), err
	}
	d.vregs[id] = v
	return v, nil
}

func (d *LowerDemo) useArg(id ir.InstrID) (asmcmp.Value, error) {
	v, err := d.vregFor(id)
	if err != nil {
		return asmcmp.Value{}, err
	}
	return asmcmp.VirtReg(v, asmcmp.Width64), nil
}

func (d *LowerDemo) defArg(id ir.InstrID) (asmcmp.Value, error) {
	return d.useArg(id)
}

// lowerInstr dispatches one optimizer-IR instruction to the asmcmp
// mnemonic(s) that implement it.
func (d *LowerDemo) lowerInstr(instr *ir.Instruction) error {
	switch instr.Op {
	case ir.OpIntConst, ir.OpUIntConst:
		dst, err := d.defArg(instr.ID)
		if err != nil {
			return err
		}
		_, err = d.ctx.InstrInsertAfter(d.ctx.Tail(), "mov", dst, asmcmp.ImmInt(int64(instr.Operand.Imm.ArgIndex)))
		return err

	case ir.OpGetArgument:
		dst, err := d.defArg(instr.ID)
		if err != nil {
			return err
		}
		argIndex := instr.Operand.Imm.ArgIndex
		param := d.Debug.NewEntry(d.Subprog, debug.EntryParameter, "", nil)
		if err := d.Debug.AddAttribute(param, debug.AttrParameter, debug.Attribute{Int: int64(argIndex)}); err != nil {
			return err
		}
		_, err = d.ctx.InstrInsertAfter(d.ctx.Tail(), "load_argument", dst, asmcmp.ImmInt(int64(argIndex)))
		return err

	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpAnd, ir.OpOr, ir.OpXor, ir.OpShl, ir.OpShr, ir.OpIntCompare:
		return d.lowerBinary(instr)

	case ir.OpNeg, ir.OpNot:
		return d.lowerUnary(instr)

	case ir.OpLoad:
		return d.lowerLoad(instr)

	case ir.OpStore:
		return d.lowerStore(instr)

	case ir.OpJump:
		target := d.labels[instr.Operand.Branch.Target]
		_, err := d.ctx.InstrInsertAfter(d.ctx.Tail(), "jmp", asmcmp.Value{Kind: asmcmp.OperandInternalLabel, InternalLabel: target})
		return err

	case ir.OpBranch:
		return d.lowerBranch(instr)

	case ir.OpReturn:
		args := []asmcmp.Value{}
		for i := 0; i < instr.Operand.NumRefs; i++ {
			v, err := d.useArg(instr.Operand.Refs[i])
			if err != nil {
				return err
			}
			args = append(args, v)
		}
		_, err := d.ctx.InstrInsertAfter(d.ctx.Tail(), "ret", args...)
		return err

	default:
		_, err := d.ctx.InstrInsertAfter(d.ctx.Tail(), instr.Op.String())
		return err
	}
}

func (d *LowerDemo) lowerBinary(instr *ir.Instruction) error {
	dst, err := d.defArg(instr.ID)
	if err != nil {
		return err
	}
	lhs, err := d.useArg(instr.Operand.Refs[0])
	if err != nil {
		return err
	}
	rhs, err := d.useArg(instr.Operand.Refs[1])
	if err != nil {
		return err
	}
	_, err = d.ctx.InstrInsertAfter(d.ctx.Tail(), instr.Op.String(), dst, lhs, rhs)
	return err
}

func (d *LowerDemo) lowerUnary(instr *ir.Instruction) error {
	dst, err := d.defArg(instr.ID)
	if err != nil {
		return err
	}
	src, err := d.useArg(instr.Operand.Refs[0])
	if err != nil {
		return err
	}
	_, err = d.ctx.InstrInsertAfter(d.ctx.Tail(), instr.Op.String(), dst, src)
	return err
}

func (d *LowerDemo) lowerLoad(instr *ir.Instruction) error {
	dst, err := d.defArg(instr.ID)
	if err != nil {
		return err
	}
	addr, err := d.useArg(instr.Operand.Memory.Location)
	if err != nil {
		return err
	}
	_, err = d.ctx.InstrInsertAfter(d.ctx.Tail(), "load", dst, addr)
	return err
}

func (d *LowerDemo) lowerStore(instr *ir.Instruction) error {
	addr, err := d.useArg(instr.Operand.Memory.Location)
	if err != nil {
		return err
	}
	val, err := d.useArg(instr.Operand.Memory.Value)
	if err != nil {
		return err
	}
	_, err = d.ctx.InstrInsertAfter(d.ctx.Tail(), "store", addr, val)
	return err
}

func (d *LowerDemo) lowerBranch(instr *ir.Instruction) error {
	cond, err := d.useArg(instr.Operand.Branch.Condition)
	if err != nil {
		return err
	}
	target := d.labels[instr.Operand.Branch.Target]
	alt := d.labels[instr.Operand.Branch.Alt]
	_, err = d.ctx.InstrInsertAfter(d.ctx.Tail(), "jnz", cond,
		asmcmp.Value{Kind: asmcmp.OperandInternalLabel, InternalLabel: target},
		asmcmp.Value{Kind: asmcmp.OperandInternalLabel, InternalLabel: alt})
	return err
}
