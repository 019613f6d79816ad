package config

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/RenardDesNeiges/hopsim/internal/hybrid"
	"github.com/RenardDesNeiges/hopsim/internal/models"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Model != "slip" || cfg.Integrator != "rk45" {
		t.Errorf("unexpected defaults: model=%q integrator=%q", cfg.Model, cfg.Integrator)
	}
	if cfg.Tolerances.Rel <= 0 || cfg.Tolerances.Abs <= 0 {
		t.Error("default tolerances must be positive")
	}
	if _, _, _, _, err := cfg.BuildModel(); err != nil {
		t.Errorf("default config does not build: %v", err)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := Default()
	cfg.Model = "bouncer"
	cfg.TMax = 42
	cfg.Bouncer.Restitution = 0.65
	cfg.Excite = ExciteConfig{Kind: "sine", Amp: 0.1, Freq: 2}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if got.Model != "bouncer" || got.TMax != 42 {
		t.Errorf("round trip lost fields: model=%q tMax=%v", got.Model, got.TMax)
	}
	if got.Bouncer.Restitution != 0.65 {
		t.Errorf("restitution = %v, want 0.65", got.Bouncer.Restitution)
	}
	if got.Excite.Kind != "sine" || got.Excite.Freq != 2 {
		t.Errorf("excitation lost: %+v", got.Excite)
	}
	// Fields absent from the file keep their defaults.
	if got.Slip.Mass != 80 {
		t.Errorf("slip mass defaulted to %v, want 80", got.Slip.Mass)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestRunConfig(t *testing.T) {
	cfg := Default()
	cfg.TStart = 1
	cfg.TMax = 5
	cfg.OutputStep = 0.01
	cfg.MaxJumps = 99

	rc := cfg.RunConfig()
	if rc.TStart != 1 || rc.TMax != 6 {
		t.Errorf("time window [%v, %v], want [1, 6]", rc.TStart, rc.TMax)
	}
	if rc.OutputStep != 0.01 || rc.MaxJumps != 99 {
		t.Errorf("output/jump settings lost: %v, %d", rc.OutputStep, rc.MaxJumps)
	}

	cfg.TMax = 0
	if rc := cfg.RunConfig(); !math.IsInf(rc.TMax, 1) {
		t.Errorf("tMax=0 should mean unbounded, got %v", rc.TMax)
	}
}

func TestBuildModel(t *testing.T) {
	cfg := Default()
	cfg.Slip.ApexStop = true

	m, y0, z0, p, err := cfg.BuildModel()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if m == nil {
		t.Fatal("nil model")
	}
	if len(y0) != models.SlipStateDim || len(z0) != models.SlipDiscreteDim {
		t.Errorf("vector lengths %d/%d", len(y0), len(z0))
	}
	if y0[models.SlipY] != cfg.InitState.Height {
		t.Errorf("initial height %v, want %v", y0[models.SlipY], cfg.InitState.Height)
	}
	if p[models.SlipApexStop] != 1 {
		t.Error("apex stop not threaded into the parameter vector")
	}

	cfg.Model = "warp-drive"
	if _, _, _, _, err := cfg.BuildModel(); err == nil {
		t.Error("expected an error for an unknown model")
	}
}

func TestBuildExcitation(t *testing.T) {
	cfg := Default()

	ex, err := cfg.BuildExcitation()
	if err != nil || ex != nil {
		t.Errorf("empty kind should mean no excitation, got %v, %v", ex, err)
	}

	cfg.Excite = ExciteConfig{Kind: "constant", Value: 0.2}
	ex, err = cfg.BuildExcitation()
	if err != nil || ex == nil {
		t.Fatalf("constant excitation failed: %v", err)
	}
	if u := ex.Input(0, nil, nil); u[0] != 0.2 {
		t.Errorf("constant input %v, want 0.2", u[0])
	}

	cfg.Excite = ExciteConfig{Kind: "staircase", Rise: 0.1, Run: 2.0}
	ex, err = cfg.BuildExcitation()
	if err != nil || ex == nil {
		t.Fatalf("staircase excitation failed: %v", err)
	}
	if u := ex.Input(0, hybrid.State{5}, nil); u[0] != 0.2 {
		t.Errorf("staircase input %v, want 0.2", u[0])
	}

	cfg.Excite = ExciteConfig{Kind: "apex", Target: 1.0, Gain: 0.5}
	ex, err = cfg.BuildExcitation()
	if err != nil || ex == nil {
		t.Fatalf("apex excitation failed: %v", err)
	}

	cfg.Excite.Kind = "chirp"
	if _, err := cfg.BuildExcitation(); err == nil {
		t.Error("expected an error for an unknown excitation")
	}
}

func TestPresets(t *testing.T) {
	for model, group := range Presets {
		for name, cfg := range group {
			if cfg.Model != model {
				t.Errorf("preset %s/%s declares model %q", model, name, cfg.Model)
			}
			if _, _, _, _, err := cfg.BuildModel(); err != nil {
				t.Errorf("preset %s/%s does not build: %v", model, name, err)
			}
		}
	}

	if _, ok := Preset("slip", "hop"); !ok {
		t.Error("slip/hop preset missing")
	}
	if _, ok := Preset("slip", "moonwalk"); ok {
		t.Error("unknown preset reported as present")
	}
}
