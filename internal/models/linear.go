package models

import "github.com/oncodyn/tumorsim/internal/kinetics"

func linearDefaults() kinetics.Params {
	return kinetics.Params{
		"DMax":     100,
		"n":        1500,
		"fracRes":  0.01,
		"Cmax":     10,
		"k":        0.0004,
		"m":        0.0004,
		"u0":       0.0004,
		"v0":       0.004,
		"lambda0":  0.04,
		"lambda1":  0.001,
		"delta_d0": 0.08,
	}
}

// NewLinear1 responds to drug linearly in the birth-suppression term only.
func NewLinear1(overrides map[string]float64) *Variant {
	return newVariant("linear1", linearDefaults(), func(p kinetics.Params, c float64) (float64, float64) {
		return p["u0"] + p["k"]*c, p["v0"]
	}, overrides)
}

// NewLinear2 responds to drug linearly in the death-relief term only.
func NewLinear2(overrides map[string]float64) *Variant {
	return newVariant("linear2", linearDefaults(), func(p kinetics.Params, c float64) (float64, float64) {
		return p["u0"], p["v0"] - p["m"]*c
	}, overrides)
}

// NewLinear3 responds to drug linearly in both switching terms.
func NewLinear3(overrides map[string]float64) *Variant {
	return newVariant("linear3", linearDefaults(), func(p kinetics.Params, c float64) (float64, float64) {
		return p["u0"] + p["k"]*c, p["v0"] - p["m"]*c
	}, overrides)
}
