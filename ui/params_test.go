package ui

import (
	"testing"

	"github.com/pthm-cable/sph/fluid"
)

func testSettings() Settings {
	return Settings{ParticleCount: 1000, DT: 0.01, Params: fluid.DefaultParams()}
}

func sliderByID(t *testing.T, sliders []SliderDescriptor, id string) SliderDescriptor {
	t.Helper()
	for _, sd := range sliders {
		if sd.ID == id {
			return sd
		}
	}
	t.Fatalf("no slider %q", id)
	return SliderDescriptor{}
}

func TestDefaultSlidersReadSettings(t *testing.T) {
	sliders := DefaultSliders(FieldRange{100, 5000}, FieldRange{0.001, 0.05})
	s := testSettings()

	tests := []struct {
		id   string
		want float32
	}{
		{"count", 1000},
		{"dt", 0.01},
		{"gravity_x", 0},
		{"gravity_y", -9.81},
		{"viscosity", 0.1},
		{"gas_constant", 2000},
		{"rest_density", 1000},
		{"smoothing_radius", 0.1},
		{"damping", 0.5},
	}
	if len(sliders) != len(tests) {
		t.Fatalf("got %d sliders, want %d", len(sliders), len(tests))
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			sd := sliderByID(t, sliders, tt.id)
			if got := sd.Get(&s); got != tt.want {
				t.Errorf("Get = %v, want %v", got, tt.want)
			}
			if tt.want < sd.Range.Min || tt.want > sd.Range.Max {
				t.Errorf("default %v outside slider range %+v", tt.want, sd.Range)
			}
		})
	}
}

func TestApply(t *testing.T) {
	sliders := DefaultSliders(FieldRange{100, 5000}, FieldRange{0.001, 0.05})

	tests := []struct {
		name  string
		id    string
		value float32
		want  ParamsChange
		check func(Settings) bool
	}{
		{
			"viscosity change", "viscosity", 0.3, ParamsChange{Params: true},
			func(s Settings) bool { return s.Params.Viscosity == 0.3 },
		},
		{
			"count rounds", "count", 1499.6, ParamsChange{Count: true},
			func(s Settings) bool { return s.ParticleCount == 1500 },
		},
		{
			"dt clamps", "dt", 1, ParamsChange{Step: true},
			func(s Settings) bool { return s.DT == 0.05 },
		},
		{
			"gravity clamps low", "gravity_y", -100, ParamsChange{Params: true},
			func(s Settings) bool { return s.Params.Gravity[1] == -20 },
		},
		{
			"unchanged value", "damping", 0.5, ParamsChange{},
			func(s Settings) bool { return s.Params.DampingCoefficient == 0.5 },
		},
		{
			"count below one unit", "count", 1000.2, ParamsChange{},
			func(s Settings) bool { return s.ParticleCount == 1000 },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSettings()
			got := Apply(&s, sliderByID(t, sliders, tt.id), tt.value)
			if got != tt.want {
				t.Errorf("Apply change = %+v, want %+v", got, tt.want)
			}
			if !tt.check(s) {
				t.Errorf("unexpected settings after apply: %+v", s)
			}
		})
	}
}

func TestAppliedParamsValidate(t *testing.T) {
	sliders := DefaultSliders(FieldRange{100, 5000}, FieldRange{0.001, 0.05})
	s := testSettings()

	// Every slider at its extremes still yields valid engine parameters.
	for _, sd := range sliders {
		for _, v := range []float32{sd.Range.Min - 1, sd.Range.Max + 1} {
			Apply(&s, sd, v)
			if err := s.Params.Validate(); err != nil {
				t.Errorf("%s=%v: %v", sd.ID, v, err)
			}
		}
	}
}

func TestParamsChangeAny(t *testing.T) {
	if (ParamsChange{}).Any() {
		t.Error("empty change reports Any")
	}
	c := ParamsChange{}
	c.merge(ParamsChange{Reset: true})
	if !c.Any() || !c.Reset {
		t.Error("merge lost the reset flag")
	}
}
