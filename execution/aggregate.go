package execution

import (
	"coredb/dberrors"
	"coredb/execution/aggregation"
	"coredb/types"
)

// Aggregate materializes its child on the first Open, grouping by gField
// (or aggregation.NoGrouping) and folding aField through op, then replays
// the finalized groups as output tuples. A second Open (via Rewind)
// re-materializes from the child, picking up any change in its contents.
type Aggregate struct {
	base   *baseIterator
	child  OpIterator
	aField int
	gField int
	op     aggregation.Op

	schema  *types.Schema
	outputs []*types.Tuple
	pos     int
}

// NewAggregate builds an Aggregate over child, aggregating aField with op,
// grouped by gField (pass aggregation.NoGrouping for no grouping).
func NewAggregate(child OpIterator, aField, gField int, op aggregation.Op) *Aggregate {
	a := &Aggregate{child: child, aField: aField, gField: gField, op: op}
	a.schema = a.buildSchema()
	a.base = newBaseIterator(a.fetchNext)
	return a
}

func (a *Aggregate) buildSchema() *types.Schema {
	childSchema := a.child.Schema()
	aName, _ := childSchema.FieldName(a.aField)
	outName := a.op.String() + "(" + aName + ")"

	if a.gField == aggregation.NoGrouping {
		return mustSchema(types.FieldDesc{Kind: types.IntType, Name: outName})
	}

	gType, _ := childSchema.FieldType(a.gField)
	gName, _ := childSchema.FieldName(a.gField)
	return mustSchema(
		types.FieldDesc{Kind: gType, Name: gName},
		types.FieldDesc{Kind: types.IntType, Name: outName},
	)
}

// Open drains the child fully, builds the per-group accumulator matching
// the aggregate field's type, and replays the finalized groups.
func (a *Aggregate) Open() error {
	if err := a.child.Open(); err != nil {
		return err
	}

	aType, err := a.child.Schema().FieldType(a.aField)
	if err != nil {
		return err
	}

	var results []aggregation.Result
	switch aType {
	case types.IntType:
		ia := aggregation.NewIntegerAggregator(a.gField, a.aField, a.op)
		if err := a.drainInto(ia.MergeTupleIntoGroup); err != nil {
			return err
		}
		results = ia.Finalize()
	case types.StringType:
		sa, err := aggregation.NewStringAggregator(a.gField, a.aField, a.op)
		if err != nil {
			return err
		}
		if err := a.drainInto(sa.MergeTupleIntoGroup); err != nil {
			return err
		}
		results = sa.Finalize()
	default:
		return dberrors.New(dberrors.InvalidArgument, "Aggregate.Open", "unsupported aggregate field type")
	}

	outputs, err := a.buildOutputs(results)
	if err != nil {
		return err
	}
	a.outputs = outputs
	a.pos = 0
	a.base.openBase()
	return nil
}

func (a *Aggregate) drainInto(merge func(*types.Tuple) error) error {
	for {
		has, err := a.child.HasNext()
		if err != nil {
			return err
		}
		if !has {
			return nil
		}
		t, err := a.child.Next()
		if err != nil {
			return err
		}
		if err := merge(t); err != nil {
			return err
		}
	}
}

// buildOutputs turns finalized groups into output tuples. With no
// grouping and an empty child, COUNT still yields (0); any other op
// yields a single tuple with its aggregate field left unset. With
// grouping, an empty child yields no tuples at all.
func (a *Aggregate) buildOutputs(results []aggregation.Result) ([]*types.Tuple, error) {
	outputs := make([]*types.Tuple, 0, len(results))
	for _, r := range results {
		t := types.NewTuple(a.schema)
		idx := 0
		if a.gField != aggregation.NoGrouping {
			if err := t.SetField(0, r.Group); err != nil {
				return nil, err
			}
			idx = 1
		}
		if err := t.SetField(idx, types.IntField(r.Value)); err != nil {
			return nil, err
		}
		outputs = append(outputs, t)
	}

	if len(outputs) == 0 && a.gField == aggregation.NoGrouping {
		t := types.NewTuple(a.schema)
		if a.op == aggregation.Count {
			if err := t.SetField(0, types.IntField(0)); err != nil {
				return nil, err
			}
		}
		outputs = append(outputs, t)
	}

	return outputs, nil
}

func (a *Aggregate) fetchNext() (*types.Tuple, error) {
	if a.pos >= len(a.outputs) {
		return nil, nil
	}
	t := a.outputs[a.pos]
	a.pos++
	return t, nil
}

func (a *Aggregate) HasNext() (bool, error)      { return a.base.HasNext() }
func (a *Aggregate) Next() (*types.Tuple, error) { return a.base.Next() }

// Rewind re-materializes from the child.
func (a *Aggregate) Rewind() error { return a.Open() }

// Close closes this operator then its child.
func (a *Aggregate) Close() {
	a.base.closeBase()
	a.child.Close()
}

// Schema returns {aggregate: INT} without grouping, or
// {groupKey: gType, aggregate: INT} with grouping.
func (a *Aggregate) Schema() *types.Schema { return a.schema }

// Children returns the single child.
func (a *Aggregate) Children() []OpIterator { return []OpIterator{a.child} }

// SetChildren closes this operator, replaces its child, and recomputes
// the output schema against the new child.
func (a *Aggregate) SetChildren(children []OpIterator) {
	a.Close()
	a.child = children[0]
	a.schema = a.buildSchema()
}
