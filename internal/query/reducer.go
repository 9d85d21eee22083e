package query

import (
	"github.com/ldcrun/ldc/internal/decimal"
	"github.com/ldcrun/ldc/internal/document"
)

// Reducer folds a column of bound values into one aggregate value for
// a GROUP BY column.
type Reducer interface {
	Reduce(values []document.Value) (document.Value, error)
}

type SumReducer struct{}

func (SumReducer) Reduce(values []document.Value) (document.Value, error) {
	acc := decimal.Zero
	for _, v := range values {
		d, ok := v.AsDecimal()
		if !ok {
			return document.Value{}, QueryError{Kind: "aggregate", Message: "sum over non-numeric value"}
		}
		acc = acc.Add(d)
	}
	return document.Dec(acc), nil
}

type AvgReducer struct{}

func (AvgReducer) Reduce(values []document.Value) (document.Value, error) {
	if len(values) == 0 {
		return document.Null(), nil
	}
	acc := decimal.Zero
	for _, v := range values {
		d, ok := v.AsDecimal()
		if !ok {
			return document.Value{}, QueryError{Kind: "aggregate", Message: "avg over non-numeric value"}
		}
		acc = acc.Add(d)
	}
	n, _ := acc.Div(decimal.NewFromInt(int64(len(values))))
	return document.Dec(n), nil
}

type CountReducer struct{}

func (CountReducer) Reduce(values []document.Value) (document.Value, error) {
	return document.Int(int64(len(values))), nil
}

type MinReducer struct{}

func (MinReducer) Reduce(values []document.Value) (document.Value, error) {
	return extremum(values, false)
}

type MaxReducer struct{}

func (MaxReducer) Reduce(values []document.Value) (document.Value, error) {
	return extremum(values, true)
}

func extremum(values []document.Value, wantMax bool) (document.Value, error) {
	if len(values) == 0 {
		return document.Null(), nil
	}
	best := values[0]
	bd, ok := best.AsDecimal()
	if !ok {
		return document.Value{}, QueryError{Kind: "aggregate", Message: "min/max over non-numeric value"}
	}
	for _, v := range values[1:] {
		d, ok := v.AsDecimal()
		if !ok {
			return document.Value{}, QueryError{Kind: "aggregate", Message: "min/max over non-numeric value"}
		}
		if (wantMax && d.Cmp(bd) > 0) || (!wantMax && d.Cmp(bd) < 0) {
			best, bd = v, d
		}
	}
	return best, nil
}

func reducerFor(agg AggKind) (Reducer, bool) {
	switch agg {
	case AggSum:
		return SumReducer{}, true
	case AggAvg:
		return AvgReducer{}, true
	case AggCount:
		return CountReducer{}, true
	case AggMin:
		return MinReducer{}, true
	case AggMax:
		return MaxReducer{}, true
	default:
		return nil, false
	}
}
