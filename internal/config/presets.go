package config

var Presets = map[string]map[string]*Config{
	"at1": {
		"standard": {
			Model: "linear3", Policy: "at1",
			Solver: SolverConfig{Dt: DefaultDt, AbsErr: DefaultAbsErr, RelErr: DefaultRelErr, Method: DefaultMethod, SuppressOutput: true},
			PolicyParams: PolicyConfig{
				Threshold: 0.2, AdjustFactor: 0.5, InitialDose: -1,
				IntervalLength: 1, Horizon: 1000,
			},
		},
		"gentle": {
			Model: "linear3", Policy: "at1",
			Solver: SolverConfig{Dt: DefaultDt, AbsErr: DefaultAbsErr, RelErr: DefaultRelErr, Method: DefaultMethod, SuppressOutput: true},
			PolicyParams: PolicyConfig{
				Threshold: 0.3, AdjustFactor: 0.25, InitialDose: 50,
				IntervalLength: 1, Horizon: 1000,
			},
		},
		"multiplicative": {
			Model: "linear3", Policy: "at1",
			Solver: SolverConfig{Dt: DefaultDt, AbsErr: DefaultAbsErr, RelErr: DefaultRelErr, Method: DefaultMethod, SuppressOutput: true},
			PolicyParams: PolicyConfig{
				Threshold: 0.2, AdjustFactor: 0.5, InitialDose: -1,
				IntervalLength: 1, Horizon: 1000, Multiplicative: true,
			},
		},
	},
	"at2": {
		"standard": {
			Model: "linear3", Policy: "at2",
			Solver: SolverConfig{Dt: DefaultDt, AbsErr: DefaultAbsErr, RelErr: DefaultRelErr, Method: DefaultMethod, SuppressOutput: true},
			PolicyParams: PolicyConfig{
				Threshold: 0.2, HighDose: -1, InitialDose: -1,
				IntervalLength: 1, Lookback: 2, Horizon: 1000,
			},
		},
		"patient": {
			Model: "linear3", Policy: "at2",
			Solver: SolverConfig{Dt: DefaultDt, AbsErr: DefaultAbsErr, RelErr: DefaultRelErr, Method: DefaultMethod, SuppressOutput: true},
			PolicyParams: PolicyConfig{
				Threshold: 0.2, HighDose: -1, InitialDose: -1,
				IntervalLength: 1, Lookback: 5, Horizon: 1000,
			},
		},
	},
	"at50": {
		"standard": {
			Model: "linear3", Policy: "at50",
			Solver: SolverConfig{Dt: DefaultDt, AbsErr: DefaultAbsErr, RelErr: DefaultRelErr, Method: DefaultMethod, SuppressOutput: true},
			PolicyParams: PolicyConfig{
				Threshold: 0.5, HighDose: -1,
				IntervalLength: 1, Horizon: 1000,
			},
		},
		"slow": {
			Model: "linear3", Policy: "at50",
			Solver: SolverConfig{Dt: DefaultDt, AbsErr: DefaultAbsErr, RelErr: DefaultRelErr, Method: DefaultMethod, SuppressOutput: true},
			PolicyParams: PolicyConfig{
				Threshold: 0.5, HighDose: -1,
				IntervalLength: 3, OffLength: 3, Horizon: 1000,
			},
		},
	},
}

func GetPreset(policy, preset string) *Config {
	policyPresets, ok := Presets[policy]
	if !ok {
		return nil
	}
	cfg, ok := policyPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(policy string) []string {
	policyPresets, ok := Presets[policy]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(policyPresets))
	for name := range policyPresets {
		names = append(names, name)
	}
	return names
}
