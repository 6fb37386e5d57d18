package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Measure is a single measured value. Older sensor firmware published values
// as numeric strings, so both BSON numbers and strings decode. A value that
// is missing or cannot be parsed is invalid and renders as JSON null.
type Measure struct {
	Value float64
	Valid bool
}

// NewMeasure returns a valid Measure holding v.
func NewMeasure(v float64) Measure {
	return Measure{Value: v, Valid: true}
}

// Ptr returns the value as a pointer, nil when invalid.
func (m Measure) Ptr() *float64 {
	if !m.Valid {
		return nil
	}
	v := m.Value
	return &v
}

func (m Measure) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, m.Value, 'f', -1, 64), nil
}

func (m *Measure) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*m = Measure{}
		return nil
	}
	v, err := parseMeasure(strings.Trim(s, `"`))
	if err != nil {
		return fmt.Errorf("invalid measure %s: %w", s, err)
	}
	*m = NewMeasure(v)
	return nil
}

func (m Measure) MarshalBSONValue() (byte, []byte, error) {
	if !m.Valid {
		return byte(bson.TypeNull), nil, nil
	}
	t, data, err := bson.MarshalValue(m.Value)
	return byte(t), data, err
}

func (m *Measure) UnmarshalBSONValue(typ byte, data []byte) error {
	rv := bson.RawValue{Type: bson.Type(typ), Value: data}

	*m = Measure{}
	switch rv.Type {
	case bson.TypeDouble:
		if v, ok := rv.DoubleOK(); ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
			*m = NewMeasure(v)
		}
	case bson.TypeInt32:
		if v, ok := rv.Int32OK(); ok {
			*m = NewMeasure(float64(v))
		}
	case bson.TypeInt64:
		if v, ok := rv.Int64OK(); ok {
			*m = NewMeasure(float64(v))
		}
	case bson.TypeString:
		if s, ok := rv.StringValueOK(); ok {
			if v, err := parseMeasure(s); err == nil {
				*m = NewMeasure(v)
			}
		}
	}
	return nil
}

func parseMeasure(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}
