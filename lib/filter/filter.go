/*package filter selects atom indices by comparing two per-atom or constant
operands under one of six comparison operators. Operands may be integer or
real valued, constant or per-frame ("dynamic"), and a single shared value or
one value per atom. Mixed integer/real comparisons are resolved when the
filter is built: whichever conversion preserves exact semantics is applied
once, so evaluation never converts both operands per atom.*/
package filter

import (
	"errors"
	"fmt"

	"github.com/phil-mansfield/nbkern/lib/mathx"
)

var (
	// ErrNotImplemented marks comparisons with no exact evaluation
	// strategy, like equality between a dynamic integer and a constant
	// real.
	ErrNotImplemented = errors.New("not implemented")
	// ErrInvalidInput marks malformed operands or operators.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInternal marks states that valid construction cannot reach.
	ErrInternal = errors.New("internal error")
)

// Op is a comparison operator.
type Op int

const (
	OpInvalid Op = iota
	OpLess
	OpLeq
	OpGtr
	OpGeq
	OpEqual
	OpNeq
)

// ParseOp parses the text form of a comparison operator.
func ParseOp(s string) (Op, error) {
	switch s {
	case "<":
		return OpLess, nil
	case "<=":
		return OpLeq, nil
	case ">":
		return OpGtr, nil
	case ">=":
		return OpGeq, nil
	case "==":
		return OpEqual, nil
	case "!=":
		return OpNeq, nil
	}
	return OpInvalid, fmt.Errorf(
		"%w: %q is not a comparison operator", ErrInvalidInput, s,
	)
}

func (op Op) String() string {
	switch op {
	case OpLess:
		return "<"
	case OpLeq:
		return "<="
	case OpGtr:
		return ">"
	case OpGeq:
		return ">="
	case OpEqual:
		return "=="
	case OpNeq:
		return "!="
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// reverse returns the operator with its operands swapped: a op b is
// equivalent to b op.reverse() a.
func (op Op) reverse() Op {
	switch op {
	case OpLess:
		return OpGtr
	case OpLeq:
		return OpGeq
	case OpGtr:
		return OpLess
	case OpGeq:
		return OpLeq
	}
	return op
}

// Operand is one side of a comparison. Exactly one of Ints and Reals is
// set. Single operands hold one value used for every atom; otherwise the
// slice holds one value per atom of the evaluation domain. Dynamic operands
// may have their slice contents rewritten between Eval calls.
type Operand[T mathx.Real] struct {
	Ints    []int
	Reals   []T
	Single  bool
	Dynamic bool
}

// StaticInt returns a constant integer operand.
func StaticInt[T mathx.Real](v int) Operand[T] {
	return Operand[T]{Ints: []int{v}, Single: true}
}

// StaticReal returns a constant real operand.
func StaticReal[T mathx.Real](v T) Operand[T] {
	return Operand[T]{Reals: []T{v}, Single: true}
}

// IntsPerAtom returns a per-atom integer operand; dynamic operands may be
// rewritten in place between evaluations.
func IntsPerAtom[T mathx.Real](v []int, dynamic bool) Operand[T] {
	return Operand[T]{Ints: v, Dynamic: dynamic}
}

// RealsPerAtom returns a per-atom real operand.
func RealsPerAtom[T mathx.Real](v []T, dynamic bool) Operand[T] {
	return Operand[T]{Reals: v, Dynamic: dynamic}
}

func (o *Operand[T]) isReal() bool { return o.Reals != nil }

func (o *Operand[T]) length() int {
	if o.isReal() {
		return len(o.Reals)
	}
	return len(o.Ints)
}

// Filter is a compiled comparison. After construction either both operands
// are integers, or the left operand is real.
type Filter[T mathx.Real] struct {
	op          Op
	left, right Operand[T]
	real        bool
	tol         T
}

// New compiles a comparison. Mixed integer/real operands are reconciled
// here: constant integers are promoted to reals, while a constant real
// compared against a dynamic integer is demoted to an integer bound with
// the rounding direction the operator needs, which is impossible for
// equality tests.
func New[T mathx.Real](left Operand[T], op Op, right Operand[T]) (*Filter[T], error) {
	if op <= OpInvalid || op > OpNeq {
		return nil, fmt.Errorf("%w: operator %d", ErrInvalidInput, int(op))
	}
	if left.length() == 0 || right.length() == 0 {
		return nil, fmt.Errorf("%w: empty operand", ErrInvalidInput)
	}
	if left.Single && left.length() != 1 || right.Single && right.length() != 1 {
		return nil, fmt.Errorf(
			"%w: a single-valued operand must hold exactly one value",
			ErrInvalidInput,
		)
	}

	f := &Filter[T]{op: op, left: left, right: right, tol: mathx.Eps[T]()}

	switch {
	case left.isReal() && !right.isReal():
		switch {
		case left.Dynamic && right.Dynamic:
			// Evaluation converts the integer side on the fly.
		case !right.Dynamic:
			f.right = intToReal(right)
		default:
			conv, err := realToInt(left, op, false)
			if err != nil {
				return nil, err
			}
			f.left = conv
		}
	case !left.isReal() && right.isReal():
		switch {
		case left.Dynamic && right.Dynamic:
			f.left, f.right = right, left
			f.op = op.reverse()
		case !left.Dynamic:
			f.left = intToReal(left)
		default:
			conv, err := realToInt(right, op, true)
			if err != nil {
				return nil, err
			}
			f.right = conv
		}
	}

	f.real = f.left.isReal()
	if f.real && !f.right.isReal() && !(f.left.Dynamic && f.right.Dynamic) {
		return nil, fmt.Errorf(
			"%w: unconverted mixed comparison survived setup", ErrInternal,
		)
	}
	return f, nil
}

// SetTolerance overrides the relative tolerance used by real equality and
// inequality tests. The default is the machine epsilon of T.
func (f *Filter[T]) SetTolerance(tol T) { f.tol = tol }

// intToReal promotes a constant integer operand.
func intToReal[T mathx.Real](o Operand[T]) Operand[T] {
	r := make([]T, len(o.Ints))
	for i, v := range o.Ints {
		r[i] = T(v)
	}
	return Operand[T]{Reals: r, Single: o.Single, Dynamic: o.Dynamic}
}

// realToInt demotes a constant real operand to the integer bound that makes
// the comparison exact. right says which side of the operator the operand
// sits on; for the left side the operator is reversed first so the rounding
// direction is decided from the integer side's point of view.
func realToInt[T mathx.Real](o Operand[T], op Op, right bool) (Operand[T], error) {
	if !right {
		op = op.reverse()
	}
	var round func(T) T
	switch op {
	case OpLess, OpGeq:
		round = mathx.Ceil[T]
	case OpGtr, OpLeq:
		round = mathx.Floor[T]
	default:
		return Operand[T]{}, fmt.Errorf(
			"%w: equality between a dynamic integer and a constant real",
			ErrNotImplemented,
		)
	}
	r := make([]int, len(o.Reals))
	for i, v := range o.Reals {
		r[i] = int(round(v))
	}
	return Operand[T]{Ints: r, Single: o.Single, Dynamic: o.Dynamic}, nil
}

// Eval returns the members of group that pass the comparison. Per-atom
// operands are indexed in step with group's positions, not by the atom
// indices group holds.
func (f *Filter[T]) Eval(group []int) ([]int, error) {
	for _, o := range []*Operand[T]{&f.left, &f.right} {
		if !o.Single && o.length() < len(group) {
			return nil, fmt.Errorf(
				"%w: operand holds %d values for a group of %d atoms",
				ErrInvalidInput, o.length(), len(group),
			)
		}
	}

	sel := []int{}
	if f.real {
		for i, a := range group {
			l := f.left.Reals[f.left.index(i)]
			var r T
			if f.right.isReal() {
				r = f.right.Reals[f.right.index(i)]
			} else {
				r = T(f.right.Ints[f.right.index(i)])
			}
			if f.compareReal(l, r) {
				sel = append(sel, a)
			}
		}
	} else {
		for i, a := range group {
			l := f.left.Ints[f.left.index(i)]
			r := f.right.Ints[f.right.index(i)]
			if f.compareInt(l, r) {
				sel = append(sel, a)
			}
		}
	}
	return sel, nil
}

func (o *Operand[T]) index(i int) int {
	if o.Single {
		return 0
	}
	return i
}

func (f *Filter[T]) compareInt(a, b int) bool {
	switch f.op {
	case OpLess:
		return a < b
	case OpLeq:
		return a <= b
	case OpGtr:
		return a > b
	case OpGeq:
		return a >= b
	case OpEqual:
		return a == b
	case OpNeq:
		return a != b
	}
	return false
}

func (f *Filter[T]) compareReal(a, b T) bool {
	switch f.op {
	case OpLess:
		return a < b
	case OpLeq:
		return a <= b
	case OpGtr:
		return a > b
	case OpGeq:
		return a >= b
	case OpEqual:
		return mathx.WithinTol(a, b, f.tol)
	case OpNeq:
		return !mathx.WithinTol(a, b, f.tol)
	}
	return false
}
