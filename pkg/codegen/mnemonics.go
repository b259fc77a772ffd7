package codegen

import (
	"strings"

	"github.com/dgdev1024/g10/internal/diag"
	"github.com/dgdev1024/g10/pkg/asmast"
	"github.com/dgdev1024/g10/pkg/cpu"
)

// splitCondition peels a leading OperandCondition off operands, defaulting
// to CondAlways ("nc" omitted) when the mnemonic was written with no
// explicit condition, e.g. plain `jmp start` rather than `jmp zs, start`.
func splitCondition(operands []asmast.Operand) (cpu.ConditionCode, []asmast.Operand, error) {
	if len(operands) > 0 && operands[0].Kind == asmast.OperandCondition {
		cc, err := lookupCondition(strings.ToLower(operands[0].Condition))
		if err != nil {
			return 0, nil, err
		}
		return cc, operands[1:], nil
	}
	return cpu.CondAlways, operands, nil
}

// instructionLayout resolves one parsed instruction to its encoding. Pass 1
// calls it for sizing only (layout.size()); Pass 2 calls it again (address
// resolution having since populated the label map) to get the same opcode
// plus however the immediate must be produced. s is only consulted by the
// handful of operand positions (bit index, interrupt vector) that must
// already be a compile-time constant rather than deferred to the
// immediate's own Pass 2 evaluation.
func instructionLayout(s *State, node *asmast.InstructionNode, pos diag.Position) (layout, error) {
	mnem := strings.ToLower(node.Mnemonic)
	ops := node.Operands

	switch mnem {
	// Zero-operand control, per pkg/cpu/control.go.
	case "nop":
		return layout{opcode: makeOpcode(opNop, 0, 0)}, nil
	case "stop":
		return layout{opcode: makeOpcode(opStop, 0, 0)}, nil
	case "halt":
		return layout{opcode: makeOpcode(opHalt, 0, 0)}, nil
	case "di":
		return layout{opcode: makeOpcode(opDi, 0, 0)}, nil
	case "ei":
		return layout{opcode: makeOpcode(opEi, 0, 0)}, nil
	case "eii":
		return layout{opcode: makeOpcode(opEii, 0, 0)}, nil
	case "daa":
		return layout{opcode: makeOpcode(opDaa, 0, 0)}, nil
	case "scf":
		return layout{opcode: makeOpcode(opScf, 0, 0)}, nil
	case "ccf", "tcf": // spec.md §9: tcf is a documented alias for ccf.
		return layout{opcode: makeOpcode(opCcf, 0, 0)}, nil
	case "clv":
		return layout{opcode: makeOpcode(opClv, 0, 0)}, nil
	case "sev":
		return layout{opcode: makeOpcode(opSev, 0, 0)}, nil

	case "ld":
		return encodeLd(ops, pos)
	case "ldq":
		return encodeLdq(ops, pos)
	case "ldp":
		return encodeLdp(ops, pos)
	case "st":
		return encodeSt(ops, pos)
	case "stq":
		return encodeStq(ops, pos)
	case "stp":
		return encodeStp(ops, pos)
	case "mv":
		return encodeMv(ops, pos)
	case "mwh":
		return encodeMwh(ops, pos)
	case "mwl":
		return encodeMwl(ops, pos)
	case "lsp":
		return encodeLsp(ops, pos)
	case "pop":
		return encodePop(ops, pos)
	case "ssp":
		return encodeSsp(ops, pos)
	case "push":
		return encodePush(ops, pos)
	case "spo":
		return encodeSpo(ops, pos)
	case "spi":
		return encodeSpi(ops, pos)

	case "jmp":
		return encodeJmp(ops, pos)
	case "jpb":
		return encodeJpb(ops, pos)
	case "call":
		return encodeCall(ops, pos)
	case "int":
		return encodeInt(s, ops, pos)
	case "ret":
		return encodeRet(ops, pos)
	case "reti":
		return layout{opcode: makeOpcode(opReti, 0, 0)}, nil

	case "add":
		return encodeAdd(ops, pos)
	case "adc":
		return encodeAdc(ops, pos)
	case "sub":
		return encodeSub(ops, pos)
	case "sbc":
		return encodeSbc(ops, pos)
	case "inc":
		return encodeInc(ops, pos)
	case "dec":
		return encodeDec(ops, pos)
	case "and":
		return encodeAnd(ops, pos)
	case "or":
		return encodeOr(ops, pos)
	case "xor":
		return encodeXor(ops, pos)
	case "not":
		return encodeNot(ops, pos)
	case "cmp":
		return encodeCmp(ops, pos)

	case "sla":
		return encodeShiftRot(ops, pos, opSlaLx)
	case "sra":
		return encodeShiftRot(ops, pos, opSraLx)
	case "srl":
		return encodeShiftRot(ops, pos, opSrlLx)
	case "swap":
		return encodeSwap(ops, pos)
	case "rla":
		return layout{opcode: makeOpcode(opRla, 0, 0)}, nil
	case "rl":
		return encodeShiftRot(ops, pos, opRlLx)
	case "rlca":
		return layout{opcode: makeOpcode(opRlca, 0, 0)}, nil
	case "rlc":
		return encodeShiftRot(ops, pos, opRlcLx)
	case "rra":
		return layout{opcode: makeOpcode(opRra, 0, 0)}, nil
	case "rr":
		return encodeShiftRot(ops, pos, opRrLx)
	case "rrca":
		return layout{opcode: makeOpcode(opRrca, 0, 0)}, nil
	case "rrc":
		return encodeShiftRot(ops, pos, opRrcLx)

	case "bit":
		return encodeBitOp(s, ops, pos, opBitBLx, opBitBWx)
	case "set":
		return encodeBitOp(s, ops, pos, opSetBLx, opSetBWx)
	case "res":
		return encodeBitOp(s, ops, pos, opResBLx, opResBWx)
	case "tog":
		return encodeBitOp(s, ops, pos, opTogBLx, opTogBWx)

	default:
		return layout{}, diag.At(pos, ErrUnknownMnemonic, "%q", node.Mnemonic)
	}
}

func wrapErr(pos diag.Position, err error) error {
	if err == nil {
		return nil
	}
	return diag.At(pos, err, "")
}
