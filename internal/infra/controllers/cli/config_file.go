package cli

import (
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// FileConfig is the content of the optional YAML configuration file
type FileConfig struct {
	Labels             LabelsFileConfig  `yaml:"labels"`
	TagPrefix          *string           `yaml:"tag-prefix"`
	TagRegex           string            `yaml:"tag-regex"`
	TagSelection       string            `yaml:"tag-selection"`
	TagsSource         string            `yaml:"tags-source"`
	ReleaseSelection   string            `yaml:"release-selection"`
	IgnoreReleases     *bool             `yaml:"ignore-releases"`
	TagMessageTemplate string            `yaml:"tag-message-template"`
	Tagger             TaggerFileConfig  `yaml:"tagger"`
	ExtensionLabels    map[string]string `yaml:"extension-labels"`
}

type LabelsFileConfig struct {
	Major []string `yaml:"major"`
	Minor []string `yaml:"minor"`
	Patch []string `yaml:"patch"`
	Docs  []string `yaml:"docs"`
	Beta  []string `yaml:"beta"`
	Alpha []string `yaml:"alpha"`
}

type TaggerFileConfig struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

func LoadFileConfig(fs afero.Fs, path string) (*FileConfig, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("can't read the configuration file %s: %w", path, err)
	}
	cfg := &FileConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("can't parse the configuration file %s: %w", path, err)
	}
	return cfg, nil
}
