package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/oncodyn/tumorsim/internal/therapy"
)

const (
	DefaultDt             = 1e-3
	DefaultAbsErr         = 1e-8
	DefaultRelErr         = 1e-6
	DefaultMethod         = "dopri5"
	DefaultHorizon        = 1000.0
	DefaultIntervalLength = 1.0
	DefaultThreshold      = 0.2
	DefaultAdjustFactor   = 0.5
	DefaultLookback       = 2
)

type Config struct {
	Model        string             `yaml:"model"`
	Policy       string             `yaml:"policy"`
	Params       map[string]float64 `yaml:"params"`
	Solver       SolverConfig       `yaml:"solver"`
	PolicyParams PolicyConfig       `yaml:"policy_params"`
	Schedule     []IntervalConfig   `yaml:"schedule"`
}

type SolverConfig struct {
	Dt             float64 `yaml:"dt"`
	AbsErr         float64 `yaml:"abs_err"`
	RelErr         float64 `yaml:"rel_err"`
	Method         string  `yaml:"method"`
	MaxStep        float64 `yaml:"max_step"`
	SuppressOutput bool    `yaml:"suppress_output"`
	Stabilise      bool    `yaml:"stabilise"`
}

type PolicyConfig struct {
	Threshold      float64 `yaml:"threshold"`
	AdjustFactor   float64 `yaml:"adjust_factor"`
	InitialDose    float64 `yaml:"initial_dose"`
	HighDose       float64 `yaml:"high_dose"`
	MinDose        float64 `yaml:"min_dose"`
	WithdrawBelow  float64 `yaml:"withdraw_below"`
	IntervalLength float64 `yaml:"interval_length"`
	OffLength      float64 `yaml:"off_length"`
	Lookback       int     `yaml:"lookback"`
	RefSize        float64 `yaml:"ref_size"`
	Horizon        float64 `yaml:"horizon"`
	MaxCycles      int     `yaml:"max_cycles"`
	Multiplicative bool    `yaml:"multiplicative"`
}

type IntervalConfig struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
	Dose  float64 `yaml:"dose"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:  "linear3",
		Policy: "at1",
		Solver: SolverConfig{
			Dt:     DefaultDt,
			AbsErr: DefaultAbsErr,
			RelErr: DefaultRelErr,
			Method: DefaultMethod,
		},
		PolicyParams: PolicyConfig{
			Threshold:      DefaultThreshold,
			AdjustFactor:   DefaultAdjustFactor,
			InitialDose:    -1,
			HighDose:       -1,
			IntervalLength: DefaultIntervalLength,
			Lookback:       DefaultLookback,
			Horizon:        DefaultHorizon,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SolverOptions translates the solver section into integration settings.
func (c *Config) SolverOptions() *therapy.SolverOptions {
	return &therapy.SolverOptions{
		Dt:             c.Solver.Dt,
		AbsErr:         c.Solver.AbsErr,
		RelErr:         c.Solver.RelErr,
		Method:         c.Solver.Method,
		MaxStep:        c.Solver.MaxStep,
		SuppressOutput: c.Solver.SuppressOutput,
		Stabilise:      c.Solver.Stabilise,
	}
}

// BuildPolicy constructs the configured dosing policy.
func (c *Config) BuildPolicy() (therapy.Policy, error) {
	p := c.PolicyParams
	solver := c.SolverOptions()

	switch c.Policy {
	case "at1":
		pol := therapy.NewDoseModulation()
		pol.Threshold = p.Threshold
		pol.AdjustFactor = p.AdjustFactor
		pol.InitialDose = p.InitialDose
		pol.WithdrawBelow = p.WithdrawBelow
		pol.IntervalLength = p.IntervalLength
		pol.Multiplicative = p.Multiplicative
		pol.Horizon = p.Horizon
		pol.MaxCycles = p.MaxCycles
		pol.Solver = solver
		return pol, nil
	case "at2":
		pol := therapy.NewDoseSkipping()
		pol.Threshold = p.Threshold
		pol.HighDose = p.HighDose
		pol.InitialDose = p.InitialDose
		pol.MinDose = p.MinDose
		pol.IntervalLength = p.IntervalLength
		pol.Lookback = p.Lookback
		pol.Horizon = p.Horizon
		pol.MaxCycles = p.MaxCycles
		pol.Solver = solver
		return pol, nil
	case "at50":
		pol := therapy.NewIntermittent()
		pol.RefSize = p.RefSize
		pol.Threshold = p.Threshold
		pol.HighDose = p.HighDose
		pol.MinDose = p.MinDose
		pol.OnLength = p.IntervalLength
		pol.OffLength = p.OffLength
		pol.Horizon = p.Horizon
		pol.MaxCycles = p.MaxCycles
		pol.Solver = solver
		return pol, nil
	}
	return nil, fmt.Errorf("unknown policy: %s", c.Policy)
}

// BuildSchedule translates the schedule section for fixed-schedule runs.
func (c *Config) BuildSchedule() therapy.Schedule {
	sched := make(therapy.Schedule, 0, len(c.Schedule))
	for _, iv := range c.Schedule {
		sched = append(sched, therapy.Interval{Start: iv.Start, End: iv.End, Dose: iv.Dose})
	}
	return sched
}
