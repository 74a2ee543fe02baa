package impulse

import (
	"fmt"
	"os"

	"github.com/akmonengine/impulse/constraint"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pelletier/go-toml/v2"
)

// Settings configures a World. The zero value is not usable, start from
// DefaultSettings or ParseSettings.
type Settings struct {
	Gravity mgl64.Vec3 `toml:"gravity"`
	// Iterations is the number of solver sweeps per island and step
	Iterations int `toml:"iterations"`

	Solver  constraint.SolverSettings `toml:"solver"`
	Sleep   SleepSettings             `toml:"sleep"`
	Linking LinkingSettings           `toml:"linking"`
}

type SleepSettings struct {
	Enabled          bool    `toml:"enabled"`
	LinearThreshold  float64 `toml:"linear_threshold"`
	AngularThreshold float64 `toml:"angular_threshold"`
	// TimeToSleep is how long a whole island must stay under the thresholds
	TimeToSleep float64 `toml:"time_to_sleep"`
}

type LinkingSettings struct {
	Enabled  bool    `toml:"enabled"`
	Distance float64 `toml:"distance"`
	CellSize float64 `toml:"cell_size"`
	Cells    int     `toml:"cells"`
}

func DefaultSettings() Settings {
	return Settings{
		Gravity:    mgl64.Vec3{0, -9.81, 0},
		Iterations: 10,
		Solver:     constraint.DefaultSolverSettings(),
		Sleep: SleepSettings{
			Enabled:          true,
			LinearThreshold:  0.1,
			AngularThreshold: 0.05,
			TimeToSleep:      0.5,
		},
		Linking: LinkingSettings{
			Enabled:  false,
			Distance: 0.2,
			CellSize: 2,
			Cells:    1024,
		},
	}
}

// ParseSettings decodes TOML over the default settings, so missing keys keep
// their default value.
func ParseSettings(data []byte) (Settings, error) {
	settings := DefaultSettings()
	if err := toml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return ParseSettings(data)
}

func (s Settings) Validate() error {
	switch {
	case s.Iterations < 1:
		return fmt.Errorf("%w: iterations must be at least 1, got %d", ErrInvalidSettings, s.Iterations)
	case s.Solver.Baumgarte < 0 || s.Solver.Baumgarte > 1:
		return fmt.Errorf("%w: baumgarte must be in [0, 1], got %v", ErrInvalidSettings, s.Solver.Baumgarte)
	case s.Solver.BaumgarteSplit < 0 || s.Solver.BaumgarteSplit > 1:
		return fmt.Errorf("%w: baumgarte_split must be in [0, 1], got %v", ErrInvalidSettings, s.Solver.BaumgarteSplit)
	case s.Solver.Slop < 0:
		return fmt.Errorf("%w: slop must not be negative, got %v", ErrInvalidSettings, s.Solver.Slop)
	case s.Solver.RestitutionVelocityThreshold < 0:
		return fmt.Errorf("%w: restitution_velocity_threshold must not be negative, got %v", ErrInvalidSettings, s.Solver.RestitutionVelocityThreshold)
	case s.Sleep.LinearThreshold < 0 || s.Sleep.AngularThreshold < 0 || s.Sleep.TimeToSleep < 0:
		return fmt.Errorf("%w: sleep thresholds must not be negative", ErrInvalidSettings)
	case s.Linking.Enabled && (s.Linking.CellSize <= 0 || s.Linking.Cells <= 0 || s.Linking.Distance < 0):
		return fmt.Errorf("%w: linking needs a positive cell size and cell count", ErrInvalidSettings)
	}
	return nil
}
