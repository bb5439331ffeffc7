package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/coexnet/coexnet/lib/datatypes"
)

func TestComputeSettingsFields(t *testing.T) {
	s := CoexnetSettings{}.ComputeSettingsFields()
	if s.Alpha != DefaultAlpha || s.Beta != DefaultBeta {
		t.Errorf("expected default weights but got %f and %f", s.Alpha, s.Beta)
	}
	if s.Power != DefaultPower {
		t.Errorf("expected default power but got %f", s.Power)
	}
	if s.MinModuleSize != DefaultMinModuleSize {
		t.Errorf("expected default minModuleSize but got %d", s.MinModuleSize)
	}
	if s.Threshold != DefaultThreshold || s.MaxEdgeRatio != DefaultMaxEdgeRatio {
		t.Errorf("expected default export parameters but got %f and %f", s.Threshold, s.MaxEdgeRatio)
	}

	s = CoexnetSettings{Alpha: 0.7, Beta: 0.3, Power: 6}.ComputeSettingsFields()
	if s.Alpha != 0.7 || s.Beta != 0.3 || s.Power != 6 {
		t.Errorf("expected explicit values to survive but got %f %f %f", s.Alpha, s.Beta, s.Power)
	}
}

func TestValidate(t *testing.T) {
	s := DefaultSettings()
	if err := s.Validate(); err != nil {
		t.Errorf("unexpected error validating defaults: %v", err)
	}

	bad := []CoexnetSettings{
		func() CoexnetSettings { c := DefaultSettings(); c.Alpha = 0.8; return c }(),
		func() CoexnetSettings { c := DefaultSettings(); c.Alpha = -0.1; c.Beta = 1.1; return c }(),
		func() CoexnetSettings { c := DefaultSettings(); c.Power = 0; return c }(),
		func() CoexnetSettings { c := DefaultSettings(); c.Power = -3; return c }(),
		func() CoexnetSettings { c := DefaultSettings(); c.MinModuleSize = 0; return c }(),
		func() CoexnetSettings { c := DefaultSettings(); c.Threshold = 1.5; return c }(),
		func() CoexnetSettings { c := DefaultSettings(); c.MaxEdgeRatio = -1; return c }(),
		func() CoexnetSettings { c := DefaultSettings(); c.Workers = -2; return c }(),
	}
	for i, c := range bad {
		err := c.Validate()
		if err == nil {
			t.Errorf("case %d: expected a validation error but got none", i)
			continue
		}
		if !errors.Is(err, datatypes.ErrInvalidParameter) {
			t.Errorf("case %d: expected an invalid parameter error but got %v", i, err)
		}
	}
}

func TestFromFile(t *testing.T) {
	tempdir, err := os.MkdirTemp("", "coexnetTest")
	if err != nil {
		t.Fatalf("failed to create temp dir")
	}
	defer os.RemoveAll(tempdir)

	path := filepath.Join(tempdir, "coexnet.toml")
	contents := "power = 6.0\nsigned = false\nminModuleSize = 20\nnetworkName = \"thyroid\"\n"
	if err := os.WriteFile(path, []byte(contents), 0640); err != nil {
		t.Fatalf("failed to write settings file: %v", err)
	}

	s, err := FromFile(path)
	if err != nil {
		t.Fatalf("unexpected error reading settings: %v", err)
	}
	if s.Power != 6.0 || s.Signed || s.MinModuleSize != 20 || s.NetworkName != "thyroid" {
		t.Errorf("file values not applied: %+v", s)
	}
	if !s.DeepSplit || !s.Weighted {
		t.Errorf("expected defaults to survive for fields absent from the file")
	}
	if s.Threshold != DefaultThreshold {
		t.Errorf("expected default threshold but got %f", s.Threshold)
	}
}
