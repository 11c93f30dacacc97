package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// RetentionFile is an optional on-disk override for the Retention Service's
// (C6) thresholds, read by cmd/retention when -config is given instead of
// relying solely on environment variables.
type RetentionFile struct {
	MaxAgeHours  int      `yaml:"max_age_hours"`
	StatusFilter []string `yaml:"status_filter"`
}

// LoadRetentionFile reads and parses a YAML retention override file. A
// missing path is not an error; callers fall back to env-derived defaults.
func LoadRetentionFile(path string) (*RetentionFile, error) {
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rf RetentionFile
	if err := yaml.Unmarshal(b, &rf); err != nil {
		return nil, err
	}
	return &rf, nil
}
