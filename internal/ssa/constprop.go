package ssa

// ConstantPropagate folds Binop, Copy and Cast instructions whose operands
// are already known constants into Const instructions, in a single
// preorder pass over the CFG. It is the direct port of forfait's
// constant_propagation/constant_propagation_single_cfg: walk blocks in
// GraphVisit order, tracking a register -> known-constant map, and look
// each instruction's operands up in that map to decide whether its own
// result is now constant too. Const instructions whose registers are no
// longer read are left in place; nothing is removed.
func ConstantPropagate(cfg *CFG) {
	known := make(map[*Register]int64)

	for _, b := range cfg.GraphVisit() {
		propagateBlock(b, known)
	}
}

func propagateBlock(b *Block, known map[*Register]int64) {
	for i, instr := range b.Instrs {
		switch in := instr.(type) {
		case *Const:
			known[in.Dst] = in.Value

		case *Copy:
			if v, ok := known[in.Src]; ok {
				known[in.Dst] = v
				b.Instrs[i] = &Const{Dst: in.Dst, Value: v}
			}

		case *Binop:
			av, aok := known[in.A]
			bv, bok := known[in.B]
			if !aok || !bok {
				continue
			}
			result, ok := foldBinop(in.Op, av, bv, in.Dst)
			if !ok {
				continue
			}
			known[in.Dst] = result
			b.Instrs[i] = &Const{Dst: in.Dst, Value: result}

		case *Cast:
			if v, ok := known[in.Src]; ok {
				folded := wrap(v, in.Dst.Type)
				known[in.Dst] = folded
				b.Instrs[i] = &Const{Dst: in.Dst, Value: folded}
			}
		}
	}
}

// foldBinop computes the constant result of op(a, b), wrapping arithmetic
// results to the destination register's width the way forfait's
// defacto_constant/calculate_constant handle u8/u16 wraparound.
func foldBinop(op BinOpKind, a, b int64, dst *Register) (int64, bool) {
	switch op {
	case OpAdd:
		return wrap(a+b, dst.Type), true
	case OpSub:
		return wrap(a-b, dst.Type), true
	case OpMul:
		return wrap(a*b, dst.Type), true
	case OpDiv:
		if b == 0 {
			return 0, false
		}
		return wrap(a/b, dst.Type), true
	case OpGt:
		return boolInt(a > b), true
	case OpLt:
		return boolInt(a < b), true
	case OpGe:
		return boolInt(a >= b), true
	case OpLe:
		return boolInt(a <= b), true
	case OpEq:
		return boolInt(a == b), true
	case OpNe:
		return boolInt(a != b), true
	default:
		return 0, false
	}
}

func boolInt(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

// wrap masks v to the bit width implied by t, mirroring forfait's u8/u16
// wraparound semantics for constant-folded arithmetic.
func wrap(v int64, t interface{ String() string }) int64 {
	if t == nil {
		return v
	}
	switch t.String() {
	case "U8", "S8":
		return v & 0xFF
	case "U16":
		return v & 0xFFFF
	default:
		return v
	}
}
