package models

import "github.com/oncodyn/tumorsim/internal/kinetics"

func uniformDefaults() kinetics.Params {
	return kinetics.Params{
		"DMax":     100,
		"n":        1500,
		"fracRes":  0.01,
		"Cmax":     10,
		"u0":       0.0004,
		"v0":       0.004,
		"lambda0":  0.04,
		"lambda1":  0.001,
		"delta_d0": 0.08,
		"delta_u":  0.004,
		"delta_v":  0.003,
	}
}

// NewUniform steps both switching terms to their extreme values whenever
// any drug is present, regardless of concentration.
func NewUniform(overrides map[string]float64) *Variant {
	return newVariant("uniform", uniformDefaults(), func(p kinetics.Params, c float64) (float64, float64) {
		if c > 0 {
			return p["u0"] + p["delta_u"], p["v0"] - p["delta_v"]
		}
		return p["u0"], p["v0"]
	}, overrides)
}

// NewUniformBirth steps only the birth-suppression term under drug.
func NewUniformBirth(overrides map[string]float64) *Variant {
	return newVariant("uniform-birth", uniformDefaults(), func(p kinetics.Params, c float64) (float64, float64) {
		if c > 0 {
			return p["u0"] + p["delta_u"], p["v0"]
		}
		return p["u0"], p["v0"]
	}, overrides)
}

// NewUniformDeath steps only the death-relief term under drug.
func NewUniformDeath(overrides map[string]float64) *Variant {
	return newVariant("uniform-death", uniformDefaults(), func(p kinetics.Params, c float64) (float64, float64) {
		if c > 0 {
			return p["u0"], p["v0"] - p["delta_v"]
		}
		return p["u0"], p["v0"]
	}, overrides)
}
