package engine

import (
	"fmt"
	"strings"

	"github.com/seenimoa/fundline/pkg/models"
)

// FieldRef addresses one statement field: which item type and coverage it
// lives under and which payload key holds it.
type FieldRef struct {
	ItemType models.ItemType
	Coverage models.Coverage
	Key      string
}

// ParseFieldRef parses a field identifier of the form
// "ITEM_TYPE:COVERAGE:key". The key may be given either in camelCase
// machine form (totalRevenue) or in the spaced disclosed form
// (Total Revenue); machine keys are normalized to the disclosed form.
func ParseFieldRef(s string) (FieldRef, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return FieldRef{}, fmt.Errorf("field %q: want ITEM_TYPE:COVERAGE:key", s)
	}

	ref := FieldRef{
		ItemType: models.ItemType(strings.ToUpper(parts[0])),
		Coverage: models.Coverage(strings.ToUpper(parts[1])),
		Key:      parts[2],
	}
	if !ref.ItemType.Valid() {
		return FieldRef{}, fmt.Errorf("field %q: unknown item type %q", s, parts[0])
	}
	if !ref.Coverage.Valid() {
		return FieldRef{}, fmt.Errorf("field %q: unknown coverage %q", s, parts[1])
	}
	return ref, nil
}

// lookupKeys returns the candidate payload keys for a field reference: the
// key exactly as given, then its humanized form when they differ.
func (f FieldRef) lookupKeys() []string {
	keys := []string{f.Key}
	if human := models.HumanizeKey(f.Key); human != f.Key {
		keys = append(keys, human)
	}
	return keys
}

func (f FieldRef) String() string {
	return string(f.ItemType) + ":" + string(f.Coverage) + ":" + f.Key
}
