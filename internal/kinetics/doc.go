// Package kinetics provides the core types for tumour population models:
//
//   - [State]: population vector plus a trailing drug-concentration slot
//   - [System]: interface for model equations (dY/dt = f(t, Y))
//   - [Params]: named coefficients, fixed at model construction
//
// Model variants live in internal/models; the simulation driver and the
// adaptive dosing policies live in internal/therapy.
package kinetics
