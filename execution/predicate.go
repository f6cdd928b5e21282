package execution

import (
	"coredb/dberrors"
	"coredb/types"
)

// CompareOp is a comparison operator over two fields of the same Type,
// built on Field.Compare's three-way ordering.
type CompareOp int

const (
	Equals CompareOp = iota
	NotEquals
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
)

func (op CompareOp) apply(cmp int) bool {
	switch op {
	case Equals:
		return cmp == 0
	case NotEquals:
		return cmp != 0
	case LessThan:
		return cmp < 0
	case LessThanOrEqual:
		return cmp <= 0
	case GreaterThan:
		return cmp > 0
	case GreaterThanOrEqual:
		return cmp >= 0
	default:
		return false
	}
}

// Predicate compares one field of a tuple against a fixed operand field
// using op, the single-field filter every Filter operator is built from.
type Predicate struct {
	field   int
	op      CompareOp
	operand types.Field
}

// NewPredicate builds a predicate testing tuple.Field(field) op operand.
func NewPredicate(field int, op CompareOp, operand types.Field) *Predicate {
	return &Predicate{field: field, op: op, operand: operand}
}

// Eval reports whether t satisfies the predicate.
func (p *Predicate) Eval(t *types.Tuple) (bool, error) {
	f, err := t.Field(p.field)
	if err != nil {
		return false, err
	}
	cmp, err := f.Compare(p.operand)
	if err != nil {
		return false, err
	}
	return p.op.apply(cmp), nil
}

// JoinPredicate compares one field from the left child's tuple against
// one field from the right child's, the predicate a Join operator
// evaluates once per (outer, inner) pair in its nested-loop scan.
type JoinPredicate struct {
	leftField  int
	op         CompareOp
	rightField int
}

// NewJoinPredicate builds a join predicate testing
// left.Field(leftField) op right.Field(rightField).
func NewJoinPredicate(leftField int, op CompareOp, rightField int) *JoinPredicate {
	return &JoinPredicate{leftField: leftField, op: op, rightField: rightField}
}

// Eval reports whether the (left, right) tuple pair satisfies the
// predicate. Fails with InvalidArgument if the compared fields have
// different Kinds.
func (jp *JoinPredicate) Eval(left, right *types.Tuple) (bool, error) {
	lf, err := left.Field(jp.leftField)
	if err != nil {
		return false, err
	}
	rf, err := right.Field(jp.rightField)
	if err != nil {
		return false, err
	}
	cmp, err := lf.Compare(rf)
	if err != nil {
		return false, dberrors.Wrap(dberrors.InvalidArgument, "JoinPredicate.Eval", err)
	}
	return jp.op.apply(cmp), nil
}
