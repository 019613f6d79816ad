package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/RenardDesNeiges/hopsim/internal/hybrid"
	"github.com/RenardDesNeiges/hopsim/internal/models"
)

const (
	DefaultRel        = 1e-8
	DefaultAbs        = 1e-10
	DefaultTMax       = 10.0
	DefaultDt         = 1e-3
	DefaultApexHeight = 1.0
	DefaultSpeed      = 1.0
)

type Config struct {
	Model      string       `yaml:"model"`      // slip | bouncer
	Integrator string       `yaml:"integrator"` // rk45 | rk4 | euler
	TStart     float64      `yaml:"t_start"`
	TMax       float64      `yaml:"t_max"` // <= 0 means unbounded
	Dt         float64      `yaml:"dt"`    // fixed-step integrators only
	Tolerances TolConfig    `yaml:"tolerances"`
	OutputStep float64      `yaml:"output_step"`
	Playback   float64      `yaml:"playback"` // live-view pacing factor
	MaxJumps   int          `yaml:"max_jumps"`
	InitState  InitConfig   `yaml:"init_state"`
	Slip       SlipConfig   `yaml:"slip"`
	Bouncer    BounceConfig `yaml:"bouncer"`
	Excite     ExciteConfig `yaml:"excitation"`
}

type TolConfig struct {
	Rel     float64 `yaml:"rel"`
	Abs     float64 `yaml:"abs"`
	MaxStep float64 `yaml:"max_step"`
}

type InitConfig struct {
	Height float64 `yaml:"height"`
	Speed  float64 `yaml:"speed"`
}

type SlipConfig struct {
	Mass        float64 `yaml:"mass"`
	Stiffness   float64 `yaml:"stiffness"`
	RestLength  float64 `yaml:"rest_length"`
	AttackAngle float64 `yaml:"attack_angle"`
	Gravity     float64 `yaml:"gravity"`
	ApexStop    bool    `yaml:"apex_stop"`
}

type BounceConfig struct {
	Gravity     float64 `yaml:"gravity"`
	Restitution float64 `yaml:"restitution"`
	MinSpeed    float64 `yaml:"min_speed"`
}

type ExciteConfig struct {
	Kind   string  `yaml:"kind"` // none | sine | constant | staircase | apex
	Amp    float64 `yaml:"amp"`
	Freq   float64 `yaml:"freq"`
	Phase  float64 `yaml:"phase"`
	Value  float64 `yaml:"value"`
	Rise   float64 `yaml:"rise"`   // staircase tread height
	Run    float64 `yaml:"run"`    // staircase tread width
	Index  int     `yaml:"index"`  // staircase driving component, < 0 for time
	Target float64 `yaml:"target"` // apex controller setpoint, m
	Gain   float64 `yaml:"gain"`   // apex controller gain, rad/m
}

func Default() *Config {
	return &Config{
		Model:      "slip",
		Integrator: "rk45",
		TMax:       DefaultTMax,
		Dt:         DefaultDt,
		Tolerances: TolConfig{Rel: DefaultRel, Abs: DefaultAbs},
		InitState:  InitConfig{Height: DefaultApexHeight, Speed: DefaultSpeed},
		Slip: SlipConfig{
			Mass:        80.0,
			Stiffness:   20000.0,
			RestLength:  1.0,
			AttackAngle: 0.3,
			Gravity:     9.81,
		},
		Bouncer: BounceConfig{
			Gravity:     9.81,
			Restitution: 0.8,
			MinSpeed:    0.05,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
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

// RunConfig translates the file-level settings into a hybrid.Config.
func (c *Config) RunConfig() hybrid.Config {
	rc := hybrid.DefaultConfig()
	rc.TStart = c.TStart
	rc.TMax = math.Inf(1)
	if c.TMax > 0 {
		rc.TMax = c.TStart + c.TMax
	}
	if c.Tolerances.Rel > 0 {
		rc.Rel = c.Tolerances.Rel
	}
	if c.Tolerances.Abs > 0 {
		rc.Abs = c.Tolerances.Abs
	}
	rc.MaxStep = c.Tolerances.MaxStep
	rc.OutputStep = c.OutputStep
	rc.MaxJumps = c.MaxJumps
	return rc
}

// BuildModel assembles the configured model with its initial vectors.
func (c *Config) BuildModel() (hybrid.Model, hybrid.State, hybrid.Discrete, hybrid.Params, error) {
	switch c.Model {
	case "slip":
		m := models.NewSLIP()
		p := m.DefaultParams()
		p[models.SlipMass] = c.Slip.Mass
		p[models.SlipStiffness] = c.Slip.Stiffness
		p[models.SlipRestLength] = c.Slip.RestLength
		p[models.SlipAttackAngle] = c.Slip.AttackAngle
		p[models.SlipGravity] = c.Slip.Gravity
		if c.Slip.ApexStop {
			p[models.SlipApexStop] = 1
		}
		return m, m.InitialState(c.InitState.Height, c.InitState.Speed), m.InitialDiscrete(), p, nil
	case "bouncer":
		m := models.NewBouncer()
		p := m.DefaultParams()
		p[models.BounceGravity] = c.Bouncer.Gravity
		p[models.BounceRestitution] = c.Bouncer.Restitution
		p[models.BounceMinSpeed] = c.Bouncer.MinSpeed
		return m, m.InitialState(c.InitState.Height), m.InitialDiscrete(), p, nil
	default:
		return nil, nil, nil, nil, fmt.Errorf("config: unknown model %q", c.Model)
	}
}

// BuildExcitation returns the configured excitation, nil for "none".
func (c *Config) BuildExcitation() (hybrid.Excitation, error) {
	switch c.Excite.Kind {
	case "", "none":
		return nil, nil
	case "sine":
		return models.Sine{Amp: c.Excite.Amp, Freq: c.Excite.Freq, Phase: c.Excite.Phase}, nil
	case "constant":
		return models.Constant{U: hybrid.Input{c.Excite.Value}}, nil
	case "staircase":
		return models.Staircase{Rise: c.Excite.Rise, Run: c.Excite.Run, Index: c.Excite.Index}, nil
	case "apex":
		return models.ApexController{Target: c.Excite.Target, Gain: c.Excite.Gain}, nil
	default:
		return nil, fmt.Errorf("config: unknown excitation %q", c.Excite.Kind)
	}
}
