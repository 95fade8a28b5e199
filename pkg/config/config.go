// Package config loads the team configuration document and process settings.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"sigs.k8s.io/yaml"

	"github.com/codeGROOVE-dev/review-reminder/pkg/schedule"
	"github.com/codeGROOVE-dev/review-reminder/pkg/types"
)

// Settings holds process-level settings read from environment variables.
// TeamFilter restricts the run to one team, or to every team when set to the
// reserved value "all"; empty means schedule-based selection.
type Settings struct {
	ConfigPath  string        `envconfig:"CONFIG_PATH" default:"config.yaml"`
	TeamFilter  string        `envconfig:"TEAM_NAME"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
}

// LoadSettings reads process settings from environment variables.
func LoadSettings() (*Settings, error) {
	var s Settings
	if err := envconfig.Process("", &s); err != nil {
		return nil, fmt.Errorf("failed to read settings from environment: %w", err)
	}
	return &s, nil
}

// Load reads and validates the team configuration file. A malformed document
// is fatal: partial team lists would silently drop reminders.
func Load(path string) (*types.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg types.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return &cfg, nil
}

func validate(cfg *types.Config) error {
	if len(cfg.Teams) == 0 {
		return fmt.Errorf("no teams configured")
	}

	seen := make(map[string]struct{}, len(cfg.Teams))
	for i, team := range cfg.Teams {
		if team.Name == "" {
			return fmt.Errorf("team %d: name is required", i)
		}
		if _, dup := seen[team.Name]; dup {
			return fmt.Errorf("team %q: duplicate name", team.Name)
		}
		seen[team.Name] = struct{}{}

		if team.Channel == "" {
			return fmt.Errorf("team %q: slack_channel is required", team.Name)
		}
		if team.Schedule != "" {
			if _, err := schedule.Parse(team.Schedule); err != nil {
				return fmt.Errorf("team %q: %w", team.Name, err)
			}
		}
	}

	return nil
}
