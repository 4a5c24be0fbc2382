package price

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Bounds is an inclusive price range. A nil end is unbounded.
type Bounds struct {
	Min *decimal.Decimal
	Max *decimal.Decimal
}

// Contains reports whether amount falls inside b.
func (b Bounds) Contains(amount decimal.Decimal) bool {
	if b.Min != nil && amount.LessThan(*b.Min) {
		return false
	}
	if b.Max != nil && amount.GreaterThan(*b.Max) {
		return false
	}
	return true
}

// BoundsFromValues builds Bounds from loosely typed minimum and maximum
// values (numbers or numeric strings). nil values leave that end open.
func BoundsFromValues(minValue, maxValue any) (Bounds, error) {
	var bounds Bounds
	var err error
	if bounds.Min, err = toDecimal(minValue); err != nil {
		return Bounds{}, fmt.Errorf("price: min bound: %w", err)
	}
	if bounds.Max, err = toDecimal(maxValue); err != nil {
		return Bounds{}, fmt.Errorf("price: max bound: %w", err)
	}
	return bounds, nil
}

// FromValue converts a number or numeric string to a decimal. nil yields nil.
func FromValue(value any) (*decimal.Decimal, error) {
	return toDecimal(value)
}

func toDecimal(value any) (*decimal.Decimal, error) {
	var d decimal.Decimal
	switch typed := value.(type) {
	case nil:
		return nil, nil
	case decimal.Decimal:
		d = typed
	case float64:
		d = decimal.NewFromFloat(typed)
	case float32:
		d = decimal.NewFromFloat32(typed)
	case int:
		d = decimal.NewFromInt(int64(typed))
	case int64:
		d = decimal.NewFromInt(typed)
	case int32:
		d = decimal.NewFromInt32(typed)
	case string:
		parsed, err := decimal.NewFromString(typed)
		if err != nil {
			return nil, err
		}
		d = parsed
	case fmt.Stringer:
		parsed, err := decimal.NewFromString(typed.String())
		if err != nil {
			return nil, err
		}
		d = parsed
	default:
		return nil, fmt.Errorf("unsupported bound type %T", value)
	}
	return &d, nil
}
