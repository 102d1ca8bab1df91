package shared

import (
	"net/url"
	"strconv"
)

// RangeTerm is one numeric comparison from a query such as averageCost[lte]=1000.
type RangeTerm struct {
	Op    string
	Value float64
}

var rangeOps = map[string]string{
	"gt":  ">",
	"gte": ">=",
	"lt":  "<",
	"lte": "<=",
	"eq":  "=",
}

// ParseRange reads field=v and field[op]=v terms for op in gt, gte, lt, lte.
// Values that are not numbers yield ErrValidation.
func ParseRange(q url.Values, field string) ([]RangeTerm, error) {
	var terms []RangeTerm
	if raw := q.Get(field); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, Errorf(ErrValidation, "Invalid value for %s", field)
		}
		terms = append(terms, RangeTerm{Op: "=", Value: v})
	}
	for name, op := range rangeOps {
		raw := q.Get(field + "[" + name + "]")
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, Errorf(ErrValidation, "Invalid value for %s", field)
		}
		terms = append(terms, RangeTerm{Op: op, Value: v})
	}
	return terms, nil
}

// ParseBool reads an optional boolean query parameter.
func ParseBool(q url.Values, field string) (*bool, error) {
	raw := q.Get(field)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, Errorf(ErrValidation, "Invalid value for %s", field)
	}
	return &v, nil
}
