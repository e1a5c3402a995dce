package models

import "github.com/oncodyn/tumorsim/internal/kinetics"

// The persistor model family describes a sensitive pool S and a resistant
// (persistor) pool R exchanging cells at rates u (birth-rate suppression,
// S -> R) and v (death-rate relief, R -> S):
//
//	dS/dt = (lambda(c) - u(c)) * S + v(c) * R
//	dR/dt = (lambda1 - v(c)) * R + u(c) * S
//
// with lambda(c) = lambda0 - delta_d0 * c/(c+1). Variants differ only in
// how u and v respond to the instantaneous drug concentration c.
//
// The state vector is [S, R, cfrac] where cfrac is the drug dose as a
// fraction of Cmax; its derivative is always zero.

// response maps the instantaneous drug concentration to the switching
// rates (u, v). Each variant supplies its own.
type response func(p kinetics.Params, c float64) (u, v float64)

// Variant is one member of the persistor family.
type Variant struct {
	name   string
	params kinetics.Params
	resp   response
}

var stateVars = []string{"S", "R"}

func newVariant(name string, defaults kinetics.Params, resp response, overrides map[string]float64) *Variant {
	p := defaults.Merge(overrides)
	// Initial pools derive from the seeding count and resistant fraction
	// unless set explicitly.
	if s0, ok := overrides["S0"]; ok {
		p["S0"] = s0
	} else {
		p["S0"] = p["n"] * (1 - p["fracRes"])
	}
	if r0, ok := overrides["R0"]; ok {
		p["R0"] = r0
	} else {
		p["R0"] = p["n"] * p["fracRes"]
	}
	return &Variant{name: name, params: p, resp: resp}
}

func (v *Variant) Name() string          { return v.name }
func (v *Variant) StateVars() []string   { return stateVars }
func (v *Variant) Params() kinetics.Params { return v.params }

func (v *Variant) Rates(t float64, y kinetics.State) kinetics.State {
	p := v.params
	s, r, cfrac := y[0], y[1], y[2]

	c := cfrac * p["Cmax"]
	lamb := p["lambda0"] - p["delta_d0"]*(c/(c+1))
	u, w := v.resp(p, c)

	return kinetics.State{
		(lamb-u)*s + w*r,
		(p["lambda1"]-w)*r + u*s,
		0,
	}
}
