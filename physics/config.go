// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/forgephys/rigid/math/lin"
)

// WorldSettings are the world-wide defaults §4.8/§4.9/§4.10 reference:
// gravity, Baumgarte gain, default solver iteration counts, sleep
// thresholds, linear slop and the restitution velocity floor. Loaded
// from YAML the same way the teacher's asset pipeline loads structured
// config (gopkg.in/yaml.v3), since this module carries no scene format
// of its own to piggyback on.
type WorldSettings struct {
	Gravity []float64 `yaml:"gravity"`

	Baumgarte float64 `yaml:"baumgarte"`

	DefaultVelocitySteps int `yaml:"default_velocity_steps"`
	DefaultPositionSteps int `yaml:"default_position_steps"`

	VelocitySleepThreshold float64 `yaml:"velocity_sleep_threshold"`
	TimeBeforeSleep        float64 `yaml:"time_before_sleep"`

	LinearSlop                float64 `yaml:"linear_slop"`
	RestitutionVelocityThreshold float64 `yaml:"restitution_velocity_threshold"`

	MaxContacts int `yaml:"max_contacts"`

	WarmStartRatioMax float64 `yaml:"warm_start_ratio_max"`
}

// GravityVector returns Gravity as a *lin.V3, defaulting to (0,-9.81,0)
// when unset.
func (s *WorldSettings) GravityVector() *lin.V3 {
	if len(s.Gravity) != 3 {
		return lin.NewV3S(0, -9.81, 0)
	}
	return lin.NewV3S(s.Gravity[0], s.Gravity[1], s.Gravity[2])
}

// DefaultWorldSettings returns the code defaults used when no config file
// is supplied, chosen to match spec.md §4.9/§4.10's "typically" values.
func DefaultWorldSettings() *WorldSettings {
	return &WorldSettings{
		Gravity:                      []float64{0, -9.81, 0},
		Baumgarte:                    0.2,
		DefaultVelocitySteps:         8,
		DefaultPositionSteps:         3,
		VelocitySleepThreshold:       0.01,
		TimeBeforeSleep:              0.5,
		LinearSlop:                   0.005,
		RestitutionVelocityThreshold: 1.0,
		MaxContacts:                  4096,
		WarmStartRatioMax:            2.0,
	}
}

// LoadWorldSettings reads YAML config from path, starting from
// DefaultWorldSettings so a partial file only overrides what it
// specifies.
func LoadWorldSettings(path string) (*WorldSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newConfigError("reading world settings: " + err.Error())
	}
	s := DefaultWorldSettings()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, newConfigError("parsing world settings: " + err.Error())
	}
	return s, nil
}
