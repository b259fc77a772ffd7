package codegen

import (
	"github.com/dgdev1024/g10/internal/diag"
	"github.com/dgdev1024/g10/pkg/asmast"
	"github.com/dgdev1024/g10/pkg/obj"
)

// widthOf reports the byte width a register class occupies in an opcode's
// implied operand size, used to pick which LD/ST/ADD/etc. family a register
// operand selects.
func widthOf(class regClass) int {
	switch class {
	case regL, regH:
		return 1
	case regW:
		return 2
	default:
		return 4
	}
}

// --- LD / LDQ / LDP -------------------------------------------------------

func encodeLd(ops []asmast.Operand, pos diag.Position) (layout, error) {
	dst, err := operandAt(ops, 0, pos)
	if err != nil {
		return layout{}, err
	}
	class, x, err := wantRegister(dst)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	src, err := operandAt(ops, 1, pos)
	if err != nil {
		return layout{}, err
	}

	switch src.Kind {
	case asmast.OperandImmediate:
		var op uint8
		width := widthOf(class)
		switch class {
		case regL, regH:
			op = opLdLxImm8
		case regW:
			op = opLdWxImm16
		default:
			op = opLdDxImm32
		}
		return layout{opcode: makeOpcode(op, uint8(x), 0), immKind: immAbs, immWidth: width, immExpr: src.Expr}, nil

	case asmast.OperandDirectMemory:
		var op uint8
		switch class {
		case regL, regH:
			op = opLdLxAddr32
		case regW:
			op = opLdWxAddr32
		default:
			op = opLdDxAddr32
		}
		return layout{opcode: makeOpcode(op, uint8(x), 0), immKind: immAbs, immWidth: 4, immExpr: src.Expr, relocKind: obj.RelocAbs32}, nil

	case asmast.OperandIndirectMemory:
		_, y, err := wantIndirect(src)
		if err != nil {
			return layout{}, wrapErr(pos, err)
		}
		var op uint8
		switch class {
		case regL, regH:
			op = opLdLxPDy
		case regW:
			op = opLdWxPDy
		default:
			op = opLdDxPDy
		}
		return layout{opcode: makeOpcode(op, uint8(x), uint8(y))}, nil

	default:
		return layout{}, diag.At(pos, ErrOperandTypeMismatch, "ld: unexpected source operand")
	}
}

func encodeLdq(ops []asmast.Operand, pos diag.Position) (layout, error) {
	dst, err := operandAt(ops, 0, pos)
	if err != nil {
		return layout{}, err
	}
	class, x, err := wantRegister(dst)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	src, err := operandAt(ops, 1, pos)
	if err != nil {
		return layout{}, err
	}

	if src.Kind == asmast.OperandIndirectMemory {
		_, y, err := wantIndirect(src)
		if err != nil {
			return layout{}, wrapErr(pos, err)
		}
		var op uint8
		switch class {
		case regL, regH:
			op = opLdqLxPWy
		case regW:
			op = opLdqWxPWy
		default:
			op = opLdqDxPWy
		}
		return layout{opcode: makeOpcode(op, uint8(x), uint8(y))}, nil
	}

	expr, err := wantExprOperand(src, asmast.OperandDirectMemory, asmast.OperandImmediate)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	var op uint8
	switch class {
	case regL, regH:
		op = opLdqLxAddr16
	case regW:
		op = opLdqWxAddr16
	default:
		op = opLdqDxAddr16
	}
	return layout{opcode: makeOpcode(op, uint8(x), 0), immKind: immAbs, immWidth: 2, immExpr: expr, relocKind: obj.RelocQuick16}, nil
}

func encodeLdp(ops []asmast.Operand, pos diag.Position) (layout, error) {
	dst, err := operandAt(ops, 0, pos)
	if err != nil {
		return layout{}, err
	}
	_, x, err := wantRegister(dst)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	src, err := operandAt(ops, 1, pos)
	if err != nil {
		return layout{}, err
	}
	if src.Kind == asmast.OperandIndirectMemory {
		_, y, err := wantIndirect(src)
		if err != nil {
			return layout{}, wrapErr(pos, err)
		}
		return layout{opcode: makeOpcode(opLdpLxPLy, uint8(x), uint8(y))}, nil
	}
	expr, err := wantExprOperand(src, asmast.OperandDirectMemory, asmast.OperandImmediate)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	return layout{opcode: makeOpcode(opLdpLxAddr8, uint8(x), 0), immKind: immAbs, immWidth: 1, immExpr: expr, relocKind: obj.RelocPort8}, nil
}

// --- ST / STQ / STP -------------------------------------------------------

func encodeSt(ops []asmast.Operand, pos diag.Position) (layout, error) {
	dst, err := operandAt(ops, 0, pos)
	if err != nil {
		return layout{}, err
	}
	src, err := operandAt(ops, 1, pos)
	if err != nil {
		return layout{}, err
	}
	class, y, err := wantRegister(src)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}

	if dst.Kind == asmast.OperandIndirectMemory {
		_, x, err := wantIndirect(dst)
		if err != nil {
			return layout{}, wrapErr(pos, err)
		}
		var op uint8
		switch class {
		case regL, regH:
			op = opStPDxLy
		case regW:
			op = opStPDxWy
		default:
			op = opStPDxDy
		}
		return layout{opcode: makeOpcode(op, uint8(x), uint8(y))}, nil
	}

	expr, err := wantExprOperand(dst, asmast.OperandDirectMemory, asmast.OperandImmediate)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	var op uint8
	switch class {
	case regL, regH:
		op = opStAddr32Ly
	case regW:
		op = opStAddr32Wy
	default:
		op = opStAddr32Dy
	}
	return layout{opcode: makeOpcode(op, 0, uint8(y)), immKind: immAbs, immWidth: 4, immExpr: expr, relocKind: obj.RelocAbs32}, nil
}

func encodeStq(ops []asmast.Operand, pos diag.Position) (layout, error) {
	dst, err := operandAt(ops, 0, pos)
	if err != nil {
		return layout{}, err
	}
	src, err := operandAt(ops, 1, pos)
	if err != nil {
		return layout{}, err
	}
	class, y, err := wantRegister(src)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}

	if dst.Kind == asmast.OperandIndirectMemory {
		_, x, err := wantIndirect(dst)
		if err != nil {
			return layout{}, wrapErr(pos, err)
		}
		var op uint8
		switch class {
		case regL, regH:
			op = opStqPWxLy
		case regW:
			op = opStqPWxWy
		default:
			op = opStqPWxDy
		}
		return layout{opcode: makeOpcode(op, uint8(x), uint8(y))}, nil
	}

	expr, err := wantExprOperand(dst, asmast.OperandDirectMemory, asmast.OperandImmediate)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	var op uint8
	switch class {
	case regL, regH:
		op = opStqAddr16Ly
	case regW:
		op = opStqAddr16Wy
	default:
		op = opStqAddr16Dy
	}
	return layout{opcode: makeOpcode(op, 0, uint8(y)), immKind: immAbs, immWidth: 2, immExpr: expr, relocKind: obj.RelocQuick16}, nil
}

func encodeStp(ops []asmast.Operand, pos diag.Position) (layout, error) {
	dst, err := operandAt(ops, 0, pos)
	if err != nil {
		return layout{}, err
	}
	src, err := operandAt(ops, 1, pos)
	if err != nil {
		return layout{}, err
	}
	_, y, err := wantRegister(src)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}

	if dst.Kind == asmast.OperandIndirectMemory {
		_, x, err := wantIndirect(dst)
		if err != nil {
			return layout{}, wrapErr(pos, err)
		}
		return layout{opcode: makeOpcode(opStpPLxLy, uint8(x), uint8(y))}, nil
	}

	expr, err := wantExprOperand(dst, asmast.OperandDirectMemory, asmast.OperandImmediate)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	return layout{opcode: makeOpcode(opStpAddr8Ly, 0, uint8(y)), immKind: immAbs, immWidth: 1, immExpr: expr, relocKind: obj.RelocPort8}, nil
}

// --- MV / MWH / MWL --------------------------------------------------------

func encodeMv(ops []asmast.Operand, pos diag.Position) (layout, error) {
	dst, err := operandAt(ops, 0, pos)
	if err != nil {
		return layout{}, err
	}
	src, err := operandAt(ops, 1, pos)
	if err != nil {
		return layout{}, err
	}
	dc, x, err := wantRegister(dst)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	sc, y, err := wantRegister(src)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}

	switch {
	case dc == regL && sc == regL:
		return layout{opcode: makeOpcode(opMvLxLy, uint8(x), uint8(y))}, nil
	case dc == regH && sc == regL:
		return layout{opcode: makeOpcode(opMvHxLy, uint8(x), uint8(y))}, nil
	case dc == regL && sc == regH:
		return layout{opcode: makeOpcode(opMvLxHy, uint8(x), uint8(y))}, nil
	case dc == regW && sc == regW:
		return layout{opcode: makeOpcode(opMvWxWy, uint8(x), uint8(y))}, nil
	case dc == regD && sc == regD:
		return layout{opcode: makeOpcode(opMvDxDy, uint8(x), uint8(y))}, nil
	default:
		return layout{}, diag.At(pos, ErrOperandTypeMismatch, "mv: unsupported register combination")
	}
}

func encodeMwh(ops []asmast.Operand, pos diag.Position) (layout, error) {
	dst, err := operandAt(ops, 0, pos)
	if err != nil {
		return layout{}, err
	}
	src, err := operandAt(ops, 1, pos)
	if err != nil {
		return layout{}, err
	}
	_, x, err := wantRegister(dst)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	_, y, err := wantRegister(src)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	return layout{opcode: makeOpcode(opMwhDxWy, uint8(x), uint8(y))}, nil
}

func encodeMwl(ops []asmast.Operand, pos diag.Position) (layout, error) {
	dst, err := operandAt(ops, 0, pos)
	if err != nil {
		return layout{}, err
	}
	src, err := operandAt(ops, 1, pos)
	if err != nil {
		return layout{}, err
	}
	_, x, err := wantRegister(dst)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	_, y, err := wantRegister(src)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	return layout{opcode: makeOpcode(opMwlWxDy, uint8(x), uint8(y))}, nil
}

// --- Stack: LSP / POP / SSP / PUSH / SPO / SPI ----------------------------

func encodeLsp(ops []asmast.Operand, pos diag.Position) (layout, error) {
	op, err := operandAt(ops, 0, pos)
	if err != nil {
		return layout{}, err
	}
	expr, err := wantExprOperand(op, asmast.OperandImmediate, asmast.OperandDirectMemory)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	return layout{opcode: makeOpcode(opLspImm32, 0, 0), immKind: immAbs, immWidth: 4, immExpr: expr}, nil
}

func encodePop(ops []asmast.Operand, pos diag.Position) (layout, error) {
	dst, err := operandAt(ops, 0, pos)
	if err != nil {
		return layout{}, err
	}
	_, x, err := wantRegister(dst)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	return layout{opcode: makeOpcode(opPopDx, uint8(x), 0)}, nil
}

func encodeSsp(ops []asmast.Operand, pos diag.Position) (layout, error) {
	op, err := operandAt(ops, 0, pos)
	if err != nil {
		return layout{}, err
	}
	expr, err := wantExprOperand(op, asmast.OperandDirectMemory, asmast.OperandImmediate)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	return layout{opcode: makeOpcode(opSspAddr32, 0, 0), immKind: immAbs, immWidth: 4, immExpr: expr, relocKind: obj.RelocAbs32}, nil
}

func encodePush(ops []asmast.Operand, pos diag.Position) (layout, error) {
	src, err := operandAt(ops, 0, pos)
	if err != nil {
		return layout{}, err
	}
	_, y, err := wantRegister(src)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	return layout{opcode: makeOpcode(opPushDy, 0, uint8(y))}, nil
}

func encodeSpo(ops []asmast.Operand, pos diag.Position) (layout, error) {
	dst, err := operandAt(ops, 0, pos)
	if err != nil {
		return layout{}, err
	}
	_, x, err := wantRegister(dst)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	return layout{opcode: makeOpcode(opSpoDx, uint8(x), 0)}, nil
}

func encodeSpi(ops []asmast.Operand, pos diag.Position) (layout, error) {
	src, err := operandAt(ops, 0, pos)
	if err != nil {
		return layout{}, err
	}
	_, y, err := wantRegister(src)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	return layout{opcode: makeOpcode(opSpiDy, 0, uint8(y))}, nil
}

// --- Branch: JMP / JPB / CALL / INT / RET ---------------------------------

func encodeJmp(ops []asmast.Operand, pos diag.Position) (layout, error) {
	cc, rest, err := splitCondition(ops)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	target, err := operandAt(rest, 0, pos)
	if err != nil {
		return layout{}, err
	}
	if target.Kind == asmast.OperandRegister {
		_, y, err := wantRegister(target)
		if err != nil {
			return layout{}, wrapErr(pos, err)
		}
		return layout{opcode: makeOpcode(opJmpXDy, uint8(cc), uint8(y))}, nil
	}
	expr, err := wantExprOperand(target, asmast.OperandDirectMemory, asmast.OperandImmediate)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	return layout{opcode: makeOpcode(opJmpXImm32, uint8(cc), 0), immKind: immAbs, immWidth: 4, immExpr: expr, relocKind: obj.RelocAbs32}, nil
}

func encodeJpb(ops []asmast.Operand, pos diag.Position) (layout, error) {
	cc, rest, err := splitCondition(ops)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	target, err := operandAt(rest, 0, pos)
	if err != nil {
		return layout{}, err
	}
	expr, err := wantExprOperand(target, asmast.OperandDirectMemory, asmast.OperandImmediate)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	return layout{opcode: makeOpcode(opJpbXSimm16, uint8(cc), 0), immKind: immRelPC, immWidth: 2, immExpr: expr, relocKind: obj.RelocRel16}, nil
}

func encodeCall(ops []asmast.Operand, pos diag.Position) (layout, error) {
	cc, rest, err := splitCondition(ops)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	target, err := operandAt(rest, 0, pos)
	if err != nil {
		return layout{}, err
	}
	expr, err := wantExprOperand(target, asmast.OperandDirectMemory, asmast.OperandImmediate)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	return layout{opcode: makeOpcode(opCallXImm32, uint8(cc), 0), immKind: immAbs, immWidth: 4, immExpr: expr, relocKind: obj.RelocAbs32}, nil
}

func encodeInt(s *State, ops []asmast.Operand, pos diag.Position) (layout, error) {
	op, err := operandAt(ops, 0, pos)
	if err != nil {
		return layout{}, err
	}
	// The interrupt vector (0..31) is emitted as the one-byte immediate
	// pkg/cpu's INT handler fetches after the opcode word. It is
	// range-checked here, so like a bit index it must already be a
	// compile-time constant (a literal or a `.let`/`.const` name) rather than
	// a label resolved only at Pass 2.
	if op.Kind != asmast.OperandImmediate {
		return layout{}, diag.At(pos, ErrOperandTypeMismatch, "int: vector must be a compile-time constant")
	}
	v, err := s.eval.Eval(op.Expr)
	if err != nil {
		return layout{}, diag.At(pos, err, "int")
	}
	n, err := v.AsInt()
	if err != nil {
		return layout{}, diag.At(pos, err, "int")
	}
	if n < 0 || n > 31 {
		return layout{}, diag.At(pos, ErrVectorOutOfRange, "%d", n)
	}
	return layout{opcode: makeOpcode(opIntXX, 0, 0), immKind: immAbs, immWidth: 1, immExpr: op.Expr}, nil
}

func encodeRet(ops []asmast.Operand, pos diag.Position) (layout, error) {
	cc, _, err := splitCondition(ops)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	return layout{opcode: makeOpcode(opRetX, uint8(cc), 0)}, nil
}

// --- Arithmetic / logic ----------------------------------------------------

func encodeAdd(ops []asmast.Operand, pos diag.Position) (layout, error) {
	return encodeAccumALU(ops, pos, opAddL0Imm8, opAddL0Ly, opAddL0PDy, opAddW0Imm16, opAddW0Wy, opAddD0Imm32, opAddD0Dy)
}

func encodeSub(ops []asmast.Operand, pos diag.Position) (layout, error) {
	return encodeAccumALU(ops, pos, opSubL0Imm8, opSubL0Ly, opSubL0PDy, opSubW0Imm16, opSubW0Wy, opSubD0Imm32, opSubD0Dy)
}

func encodeAdc(ops []asmast.Operand, pos diag.Position) (layout, error) {
	return encodeAccum8ALU(ops, pos, opAdcL0Imm8, opAdcL0Ly, opAdcL0PDy)
}

func encodeSbc(ops []asmast.Operand, pos diag.Position) (layout, error) {
	return encodeAccum8ALU(ops, pos, opSbcL0Imm8, opSbcL0Ly, opSbcL0PDy)
}

func encodeAnd(ops []asmast.Operand, pos diag.Position) (layout, error) {
	return encodeAccum8ALU(ops, pos, opAndL0Imm8, opAndL0Ly, 0)
}

func encodeOr(ops []asmast.Operand, pos diag.Position) (layout, error) {
	return encodeAccum8ALU(ops, pos, opOrL0Imm8, opOrL0Ly, 0)
}

func encodeXor(ops []asmast.Operand, pos diag.Position) (layout, error) {
	return encodeAccum8ALU(ops, pos, opXorL0Imm8, opXorL0Ly, 0)
}

func encodeCmp(ops []asmast.Operand, pos diag.Position) (layout, error) {
	dst, err := operandAt(ops, 0, pos)
	if err != nil {
		return layout{}, err
	}
	class, _, err := wantRegister(dst)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	switch class {
	case regL, regH:
		return encodeAccum8ALU(ops, pos, opCmpL0Imm8, opCmpL0Ly, opCmpL0PDy)
	case regW:
		return encodeAccumWideALU(ops, pos, opCmpW0Imm16, opCmpW0Wy)
	default:
		return encodeAccumDALU(ops, pos, opCmpD0Imm32, opCmpD0Dy)
	}
}

func encodeNot(ops []asmast.Operand, pos diag.Position) (layout, error) {
	return layout{opcode: makeOpcode(opNotL0, 0, 0)}, nil
}

// encodeAccumALU dispatches by the destination register's width, covering
// the ADD/SUB mnemonics that exist at all three widths.
func encodeAccumALU(ops []asmast.Operand, pos diag.Position, imm8, ly8, pdy8, imm16, wy16, imm32, dy32 uint8) (layout, error) {
	dst, err := operandAt(ops, 0, pos)
	if err != nil {
		return layout{}, err
	}
	class, _, err := wantRegister(dst)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	switch class {
	case regL, regH:
		return encodeAccum8ALU(ops, pos, imm8, ly8, pdy8)
	case regW:
		return encodeAccumWideALU(ops, pos, imm16, wy16)
	default:
		return encodeAccumDALU(ops, pos, imm32, dy32)
	}
}

// encodeAccum8ALU encodes the L0-implicit-accumulator 8-bit ALU forms:
// `op L0, imm8` / `op L0, Ly` / `op L0, [Dy]`. pdyOp of 0 means that family
// has no register-indirect form (e.g. AND/OR/XOR).
func encodeAccum8ALU(ops []asmast.Operand, pos diag.Position, immOp, regOp, pdyOp uint8) (layout, error) {
	dst, err := operandAt(ops, 0, pos)
	if err != nil {
		return layout{}, err
	}
	_, x, err := wantRegister(dst)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	if err := requireAccumulator(regL, x); err != nil {
		return layout{}, wrapErr(pos, err)
	}
	src, err := operandAt(ops, 1, pos)
	if err != nil {
		return layout{}, err
	}
	switch src.Kind {
	case asmast.OperandImmediate:
		return layout{opcode: makeOpcode(immOp, 0, 0), immKind: immAbs, immWidth: 1, immExpr: src.Expr}, nil
	case asmast.OperandRegister:
		_, y, err := wantRegister(src)
		if err != nil {
			return layout{}, wrapErr(pos, err)
		}
		return layout{opcode: makeOpcode(regOp, 0, uint8(y))}, nil
	case asmast.OperandIndirectMemory:
		if pdyOp == 0 {
			return layout{}, diag.At(pos, ErrOperandTypeMismatch, "this operation has no register-indirect form")
		}
		_, y, err := wantIndirect(src)
		if err != nil {
			return layout{}, wrapErr(pos, err)
		}
		return layout{opcode: makeOpcode(pdyOp, 0, uint8(y))}, nil
	default:
		return layout{}, diag.At(pos, ErrOperandTypeMismatch, "unexpected source operand")
	}
}

func encodeAccumWideALU(ops []asmast.Operand, pos diag.Position, immOp, regOp uint8) (layout, error) {
	dst, err := operandAt(ops, 0, pos)
	if err != nil {
		return layout{}, err
	}
	_, x, err := wantRegister(dst)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	if err := requireAccumulator(regW, x); err != nil {
		return layout{}, wrapErr(pos, err)
	}
	src, err := operandAt(ops, 1, pos)
	if err != nil {
		return layout{}, err
	}
	if src.Kind == asmast.OperandRegister {
		_, y, err := wantRegister(src)
		if err != nil {
			return layout{}, wrapErr(pos, err)
		}
		return layout{opcode: makeOpcode(regOp, 0, uint8(y))}, nil
	}
	expr, err := wantExprOperand(src, asmast.OperandImmediate, asmast.OperandDirectMemory)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	return layout{opcode: makeOpcode(immOp, 0, 0), immKind: immAbs, immWidth: 2, immExpr: expr}, nil
}

func encodeAccumDALU(ops []asmast.Operand, pos diag.Position, immOp, regOp uint8) (layout, error) {
	dst, err := operandAt(ops, 0, pos)
	if err != nil {
		return layout{}, err
	}
	_, x, err := wantRegister(dst)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	if err := requireAccumulator(regD, x); err != nil {
		return layout{}, wrapErr(pos, err)
	}
	src, err := operandAt(ops, 1, pos)
	if err != nil {
		return layout{}, err
	}
	if src.Kind == asmast.OperandRegister {
		_, y, err := wantRegister(src)
		if err != nil {
			return layout{}, wrapErr(pos, err)
		}
		return layout{opcode: makeOpcode(regOp, 0, uint8(y))}, nil
	}
	expr, err := wantExprOperand(src, asmast.OperandImmediate, asmast.OperandDirectMemory)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	return layout{opcode: makeOpcode(immOp, 0, 0), immKind: immAbs, immWidth: 4, immExpr: expr}, nil
}

func encodeInc(ops []asmast.Operand, pos diag.Position) (layout, error) {
	dst, err := operandAt(ops, 0, pos)
	if err != nil {
		return layout{}, err
	}
	if dst.Kind == asmast.OperandIndirectMemory {
		_, x, err := wantIndirect(dst)
		if err != nil {
			return layout{}, wrapErr(pos, err)
		}
		return layout{opcode: makeOpcode(opIncPDx, uint8(x), 0)}, nil
	}
	class, x, err := wantRegister(dst)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	switch class {
	case regL, regH:
		return layout{opcode: makeOpcode(opIncLx, uint8(x), 0)}, nil
	case regW:
		return layout{opcode: makeOpcode(opIncWx, uint8(x), 0)}, nil
	default:
		return layout{opcode: makeOpcode(opIncDx, uint8(x), 0)}, nil
	}
}

func encodeDec(ops []asmast.Operand, pos diag.Position) (layout, error) {
	dst, err := operandAt(ops, 0, pos)
	if err != nil {
		return layout{}, err
	}
	if dst.Kind == asmast.OperandIndirectMemory {
		_, x, err := wantIndirect(dst)
		if err != nil {
			return layout{}, wrapErr(pos, err)
		}
		return layout{opcode: makeOpcode(opDecPDx, uint8(x), 0)}, nil
	}
	class, x, err := wantRegister(dst)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	switch class {
	case regL, regH:
		return layout{opcode: makeOpcode(opDecLx, uint8(x), 0)}, nil
	case regW:
		return layout{opcode: makeOpcode(opDecWx, uint8(x), 0)}, nil
	default:
		return layout{opcode: makeOpcode(opDecDx, uint8(x), 0)}, nil
	}
}

// --- Shift / rotate / swap --------------------------------------------------

func encodeShiftRot(ops []asmast.Operand, pos diag.Position, op uint8) (layout, error) {
	dst, err := operandAt(ops, 0, pos)
	if err != nil {
		return layout{}, err
	}
	_, x, err := wantRegister(dst)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	return layout{opcode: makeOpcode(op, uint8(x), 0)}, nil
}

func encodeSwap(ops []asmast.Operand, pos diag.Position) (layout, error) {
	dst, err := operandAt(ops, 0, pos)
	if err != nil {
		return layout{}, err
	}
	class, x, err := wantRegister(dst)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	switch class {
	case regL, regH:
		return layout{opcode: makeOpcode(opSwapLx, uint8(x), 0)}, nil
	case regW:
		return layout{opcode: makeOpcode(opSwapWx, uint8(x), 0)}, nil
	default:
		return layout{opcode: makeOpcode(opSwapDx, uint8(x), 0)}, nil
	}
}

// --- Bit operations ---------------------------------------------------------

// encodeBitOp handles BIT/SET/RES/TOG, which take a bit-index operand (0..7
// for Lx, 0..15 for Wx) followed by the target register.
func encodeBitOp(s *State, ops []asmast.Operand, pos diag.Position, lOp, wOp uint8) (layout, error) {
	bitOp, err := operandAt(ops, 0, pos)
	if err != nil {
		return layout{}, err
	}
	bit, err := compileTimeBitIndex(s, bitOp, pos)
	if err != nil {
		return layout{}, err
	}
	dst, err := operandAt(ops, 1, pos)
	if err != nil {
		return layout{}, err
	}
	class, y, err := wantRegister(dst)
	if err != nil {
		return layout{}, wrapErr(pos, err)
	}
	switch class {
	case regL, regH:
		return layout{opcode: makeOpcode(lOp, uint8(bit), uint8(y))}, nil
	case regW:
		return layout{opcode: makeOpcode(wOp, uint8(bit), uint8(y))}, nil
	default:
		return layout{}, diag.At(pos, ErrOperandTypeMismatch, "bit operations only apply to L/W registers")
	}
}

// compileTimeBitIndex requires the bit-index operand to already be known at
// encode time, since it must fit directly into the opcode's X nibble and
// cannot be a forward label reference resolved only at Pass 2.
func compileTimeBitIndex(s *State, op asmast.Operand, pos diag.Position) (int64, error) {
	if op.Kind != asmast.OperandImmediate {
		return 0, diag.At(pos, ErrOperandTypeMismatch, "bit index must be a compile-time constant")
	}
	v, err := s.eval.Eval(op.Expr)
	if err != nil {
		return 0, diag.At(pos, err, "bit index")
	}
	n, err := v.AsInt()
	if err != nil {
		return 0, diag.At(pos, err, "bit index")
	}
	if n < 0 || n > 15 {
		return 0, diag.At(pos, ErrImmediateOutOfRange, "bit index %d out of range", n)
	}
	return n, nil
}
