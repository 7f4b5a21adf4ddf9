package engine

import (
	"fmt"
	"strings"
)

// ratioRegistry indexes the catalogue by upper-cased name for
// case-insensitive dispatch.
var ratioRegistry = func() map[string]RatioDef {
	reg := make(map[string]RatioDef, len(ratioCatalogue))
	for _, def := range ratioCatalogue {
		reg[strings.ToUpper(def.Name)] = def
	}
	return reg
}()

// Catalogue returns the ratio definitions in declaration order.
func Catalogue() []RatioDef {
	out := make([]RatioDef, len(ratioCatalogue))
	copy(out, ratioCatalogue)
	return out
}

// LookupRatio resolves a ratio by name, case-insensitively.
func LookupRatio(name string) (RatioDef, error) {
	def, ok := ratioRegistry[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return RatioDef{}, fmt.Errorf("unknown ratio %q", name)
	}
	return def, nil
}
