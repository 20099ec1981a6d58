package rules

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Variant is one purchasable presentation of a product as edited in the panel.
type Variant struct {
	Label        string          `json:"label"`
	MeasureValue *string         `json:"measure_value"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	IsDefault    bool            `json:"is_default"`
	SortOrder    int             `json:"sort_order"`
}

// VariantField names an editable field of a variant.
type VariantField string

const (
	FieldLabel        VariantField = "label"
	FieldMeasureValue VariantField = "measure_value"
	FieldPrice        VariantField = "price"
	FieldStock        VariantField = "stock"
)

var (
	ErrInvalidNumber  = errors.New("invalid numeric value")
	ErrNegativeNumber = errors.New("value must not be negative")
	ErrUnknownField   = errors.New("unknown variant field")
)

// DuplicateLabelError is returned when two variants of the same product share
// a label once trimmed and lower-cased.
type DuplicateLabelError struct {
	Labels []string
}

func (e *DuplicateLabelError) Error() string {
	return fmt.Sprintf("duplicate variant labels: %s", strings.Join(e.Labels, ", "))
}

// NewVariant returns an empty variant.
func NewVariant() Variant {
	return Variant{Price: decimal.Zero}
}

func cloneVariants(variants []Variant) []Variant {
	out := make([]Variant, len(variants))
	copy(out, variants)
	return out
}

func reindex(variants []Variant) {
	for i := range variants {
		variants[i].SortOrder = i
	}
}

// ToggleVariantMode switches variant editing on or off. Turning it on with no
// variants yields a single empty default variant. Turning it off keeps the
// current variants; the caller decides not to persist them.
func ToggleVariantMode(enabled bool, current []Variant) []Variant {
	if enabled && len(current) == 0 {
		v := NewVariant()
		v.IsDefault = true
		return []Variant{v}
	}
	return cloneVariants(current)
}

// AddVariant appends an empty variant. The first variant of a set is the default.
func AddVariant(variants []Variant) []Variant {
	out := cloneVariants(variants)
	reindex(out)
	v := NewVariant()
	v.SortOrder = len(out)
	v.IsDefault = len(out) == 0
	return append(out, v)
}

// RemoveVariant drops the variant at index. If it was the default, the first
// remaining variant takes over. Sort order is renumbered from zero.
func RemoveVariant(variants []Variant, index int) []Variant {
	if index < 0 || index >= len(variants) {
		return cloneVariants(variants)
	}
	removed := variants[index]
	out := make([]Variant, 0, len(variants)-1)
	out = append(out, variants[:index]...)
	out = append(out, variants[index+1:]...)

	if removed.IsDefault && len(out) > 0 {
		for i := range out {
			out[i].IsDefault = i == 0
		}
	}
	reindex(out)
	return out
}

// SetDefault makes the variant at index the only default.
func SetDefault(variants []Variant, index int) []Variant {
	out := cloneVariants(variants)
	if index < 0 || index >= len(out) {
		return out
	}
	for i := range out {
		out[i].IsDefault = i == index
	}
	return out
}

// EditVariant sets one field of the variant at index from raw form input.
// A cleared price or stock becomes zero.
func EditVariant(variants []Variant, index int, field VariantField, raw string) ([]Variant, error) {
	out := cloneVariants(variants)
	if index < 0 || index >= len(out) {
		return out, nil
	}
	switch field {
	case FieldLabel:
		out[index].Label = raw
	case FieldMeasureValue:
		v := raw
		out[index].MeasureValue = &v
	case FieldPrice:
		price, err := ParseAmount(raw)
		if err != nil {
			return nil, err
		}
		out[index].Price = price
	case FieldStock:
		stock, err := ParseStock(raw)
		if err != nil {
			return nil, err
		}
		out[index].Stock = stock
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return out, nil
}

// ParseAmount converts a price input. Blank input is zero.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
	}
	if d.IsNegative() {
		return decimal.Zero, ErrNegativeNumber
	}
	return d, nil
}

// ParseStock converts a stock input. Blank input is zero.
func ParseStock(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
	}
	if n < 0 {
		return 0, ErrNegativeNumber
	}
	return n, nil
}

// NormalizeLabel is the form labels are compared in.
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// DetectDuplicates returns the normalized labels that appear more than once,
// each listed once, in the order the collisions are found. Blank labels are
// ignored.
func DetectDuplicates(variants []Variant) []string {
	seen := make(map[string]bool, len(variants))
	reported := make(map[string]bool)
	var dups []string
	for _, v := range variants {
		key := NormalizeLabel(v.Label)
		if key == "" {
			continue
		}
		if seen[key] && !reported[key] {
			reported[key] = true
			dups = append(dups, key)
		}
		seen[key] = true
	}
	return dups
}

// PrepareForPersistence cleans the set before it is written: labels and
// measures are trimmed, blank measures become nil, variants without a label
// are dropped and sort order is renumbered over what is left. The surviving
// set keeps exactly one default, falling back to the first variant. Remaining
// duplicate labels are reported as a *DuplicateLabelError.
func PrepareForPersistence(variants []Variant) ([]Variant, error) {
	out := make([]Variant, 0, len(variants))
	for _, v := range variants {
		v.Label = strings.TrimSpace(v.Label)
		if v.Label == "" {
			continue
		}
		if v.MeasureValue != nil {
			m := strings.TrimSpace(*v.MeasureValue)
			if m == "" {
				v.MeasureValue = nil
			} else {
				v.MeasureValue = &m
			}
		}
		out = append(out, v)
	}
	reindex(out)

	if dups := DetectDuplicates(out); len(dups) > 0 {
		return nil, &DuplicateLabelError{Labels: dups}
	}

	defaultIdx := -1
	for i := range out {
		if out[i].IsDefault && defaultIdx == -1 {
			defaultIdx = i
		}
	}
	if defaultIdx == -1 {
		defaultIdx = 0
	}
	for i := range out {
		out[i].IsDefault = i == defaultIdx
	}
	return out, nil
}
