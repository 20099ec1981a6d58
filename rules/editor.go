package rules

import (
	"errors"
	"fmt"
)

// VariantEditor is the state of the variant section of the product form.
type VariantEditor struct {
	HasVariants bool      `json:"has_variants"`
	Variants    []Variant `json:"variants"`
}

// ActionType identifies an edit performed on a VariantEditor.
type ActionType string

const (
	ActionToggleVariants ActionType = "toggle_variants"
	ActionAddVariant     ActionType = "add_variant"
	ActionRemoveVariant  ActionType = "remove_variant"
	ActionSetDefault     ActionType = "set_default"
	ActionEditVariant    ActionType = "edit_variant"
)

var ErrUnknownAction = errors.New("unknown editor action")

// Action is a single edit. Enabled is read by toggle_variants, Index by the
// per-row actions, Field and Value by edit_variant.
type Action struct {
	Type    ActionType   `json:"type" binding:"required"`
	Enabled bool         `json:"enabled"`
	Index   int          `json:"index"`
	Field   VariantField `json:"field"`
	Value   string       `json:"value"`
}

// Reduce applies a to e and returns the new state. e is not modified.
// Only edit_variant with unparseable input and unknown action types fail.
func Reduce(e VariantEditor, a Action) (VariantEditor, error) {
	next := VariantEditor{HasVariants: e.HasVariants}
	switch a.Type {
	case ActionToggleVariants:
		next.HasVariants = a.Enabled
		next.Variants = ToggleVariantMode(a.Enabled, e.Variants)
	case ActionAddVariant:
		next.Variants = AddVariant(e.Variants)
	case ActionRemoveVariant:
		next.Variants = RemoveVariant(e.Variants, a.Index)
	case ActionSetDefault:
		next.Variants = SetDefault(e.Variants, a.Index)
	case ActionEditVariant:
		variants, err := EditVariant(e.Variants, a.Index, a.Field, a.Value)
		if err != nil {
			return e, err
		}
		next.Variants = variants
	default:
		return e, fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}
	return next, nil
}

// Duplicates lists the colliding labels of the current state.
func (e VariantEditor) Duplicates() []string {
	return DetectDuplicates(e.Variants)
}
