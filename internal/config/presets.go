package config

// Presets are named ready-to-run configurations, keyed by model then
// preset name.
var Presets = map[string]map[string]*Config{
	"slip": {
		"hop": {
			Model: "slip", Integrator: "rk45", TMax: 10.0,
			Tolerances: TolConfig{Rel: 1e-8, Abs: 1e-10},
			InitState:  InitConfig{Height: 1.0, Speed: 1.0},
			Slip: SlipConfig{
				Mass: 80, Stiffness: 20000, RestLength: 1.0,
				AttackAngle: 0.3, Gravity: 9.81,
			},
		},
		"sprint": {
			Model: "slip", Integrator: "rk45", TMax: 10.0,
			Tolerances: TolConfig{Rel: 1e-8, Abs: 1e-10},
			InitState:  InitConfig{Height: 1.05, Speed: 3.5},
			Slip: SlipConfig{
				Mass: 80, Stiffness: 32000, RestLength: 1.0,
				AttackAngle: 0.42, Gravity: 9.81,
			},
		},
		"apex-map": {
			Model: "slip", Integrator: "rk45", TMax: 60.0, MaxJumps: 500,
			Tolerances: TolConfig{Rel: 1e-9, Abs: 1e-11},
			InitState:  InitConfig{Height: 1.0, Speed: 1.0},
			Slip: SlipConfig{
				Mass: 80, Stiffness: 20000, RestLength: 1.0,
				AttackAngle: 0.3, Gravity: 9.81,
			},
		},
		"steady": {
			Model: "slip", Integrator: "rk45", TMax: 30.0, MaxJumps: 400,
			Tolerances: TolConfig{Rel: 1e-8, Abs: 1e-10},
			InitState:  InitConfig{Height: 1.1, Speed: 1.0},
			Slip: SlipConfig{
				Mass: 80, Stiffness: 20000, RestLength: 1.0,
				AttackAngle: 0.3, Gravity: 9.81,
			},
			Excite: ExciteConfig{Kind: "apex", Target: 1.0, Gain: 0.5},
		},
		"swept": {
			Model: "slip", Integrator: "rk45", TMax: 20.0,
			Tolerances: TolConfig{Rel: 1e-8, Abs: 1e-10},
			InitState:  InitConfig{Height: 1.0, Speed: 1.5},
			Slip: SlipConfig{
				Mass: 80, Stiffness: 20000, RestLength: 1.0,
				AttackAngle: 0.3, Gravity: 9.81,
			},
			Excite: ExciteConfig{Kind: "sine", Amp: 0.05, Freq: 0.2},
		},
	},
	"bouncer": {
		"drop": {
			Model: "bouncer", Integrator: "rk45", TMax: 10.0,
			Tolerances: TolConfig{Rel: 1e-9, Abs: 1e-11},
			InitState:  InitConfig{Height: 1.0},
			Bouncer:    BounceConfig{Gravity: 9.81, Restitution: 0.0, MinSpeed: 0.0},
		},
		"rubber": {
			Model: "bouncer", Integrator: "rk45", TMax: 20.0,
			Tolerances: TolConfig{Rel: 1e-9, Abs: 1e-11},
			InitState:  InitConfig{Height: 2.0},
			Bouncer:    BounceConfig{Gravity: 9.81, Restitution: 0.9, MinSpeed: 0.05},
		},
	},
}

// Preset looks a preset up by model and name.
func Preset(model, name string) (*Config, bool) {
	group, ok := Presets[model]
	if !ok {
		return nil, false
	}
	cfg, ok := group[name]
	return cfg, ok
}
