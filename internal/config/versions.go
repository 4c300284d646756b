package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	errpkg "github.com/veranemoloko/mdk-downloader/internal/errors"
)

// DefaultVersions returns every Minecraft release line that has Forge builds,
// newest first.
func DefaultVersions() []string {
	return []string{
		// 1.13+
		"1.21.4", "1.21.3", "1.21.1", "1.21",
		"1.20.6", "1.20.5", "1.20.4", "1.20.3", "1.20.2", "1.20.1", "1.20",
		"1.19.4", "1.19.3", "1.19.2", "1.19.1", "1.19",
		"1.18.2", "1.18.1", "1.18",
		"1.17.1", "1.17",
		"1.16.5", "1.16.4", "1.16.3", "1.16.2", "1.16.1",
		"1.15.2", "1.15.1", "1.15",
		"1.14.4", "1.14.3", "1.14.2", "1.14.1",
		"1.13.2", "1.13",
		// legacy
		"1.12.2", "1.12.1", "1.12",
		"1.11.2", "1.11",
		"1.10.2", "1.10",
		"1.9.4", "1.9",
		"1.8.9", "1.8.8", "1.8",
		"1.7.10", "1.7.2",
		"1.6.4", "1.6.2", "1.6.1",
		"1.5.2", "1.5.1", "1.5",
		"1.4.7", "1.4.6", "1.4.5", "1.4.4", "1.4.2",
		"1.3.2", "1.2.5", "1.1",
	}
}

type versionsFile struct {
	Versions []string `yaml:"versions"`
}

// LoadVersionsFile reads a YAML document of the form
//
//	versions:
//	  - "1.20.1"
//	  - "1.19.2"
func LoadVersionsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", errpkg.ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("read versions file: %w", err)
	}

	var vf versionsFile
	if err := yaml.Unmarshal(data, &vf); err != nil {
		return nil, fmt.Errorf("%w: %v", errpkg.ErrInvalidVersions, err)
	}

	return normalizeVersions(vf.Versions), nil
}

// normalizeVersions trims entries and drops blanks and repeats, keeping order.
func normalizeVersions(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
