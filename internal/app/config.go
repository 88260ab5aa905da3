package app

import (
	"fmt"
	"regexp"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/fabien-marty/github-pr-label-tagger/internal/app/git"
	"github.com/fabien-marty/github-pr-label-tagger/internal/app/labels"
	"github.com/fabien-marty/github-pr-label-tagger/internal/app/repo"
)

const DefaultTagMessageTemplate = "{{ .TagName }}"

// Config is the configuration of the application
type Config struct {
	Labels             labels.Config         // label names of each category
	TagPrefix          string                // prefix of the tag names (before the semantic version)
	TagRegex           string                // if set, only tags matching this regex are considered
	TagSelection       git.Selection         // how the latest tag is chosen when falling back to tags
	UseReleases        bool                  // if true, releases are preferred to tags for the baseline
	ReleaseSelection   repo.ReleaseSelection // how the latest stable release is chosen
	DryRun             bool                  // if true, no mutating call is made
	TagMessageTemplate string                // golang template (with sprig functions) for the annotated tag message
	TaggerName         string                // optional tagger name
	TaggerEmail        string                // optional tagger email
}

// NewDefaultConfig returns a configuration with default values (and without any label)
func NewDefaultConfig() Config {
	return Config{
		TagSelection:       git.SelectRecent,
		UseReleases:        true,
		ReleaseSelection:   repo.ReleaseSelectSemver,
		TagMessageTemplate: DefaultTagMessageTemplate,
	}
}

// Validate checks the configuration (the returned error wraps ErrConfiguration)
func (c *Config) Validate() error {
	switch c.TagSelection {
	case git.SelectRecent, git.SelectSemver:
	default:
		return fmt.Errorf("%w: unknown tag selection: %s", ErrConfiguration, c.TagSelection)
	}
	switch c.ReleaseSelection {
	case repo.ReleaseSelectSemver, repo.ReleaseSelectAPI:
	default:
		return fmt.Errorf("%w: unknown release selection: %s", ErrConfiguration, c.ReleaseSelection)
	}
	if _, err := regexp.Compile(c.TagRegex); err != nil {
		return fmt.Errorf("%w: can't compile the regex %s: %w", ErrConfiguration, c.TagRegex, err)
	}
	if _, err := c.tagMessageTemplate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	if len(c.Labels.Major)+len(c.Labels.Minor)+len(c.Labels.Patch) == 0 {
		return fmt.Errorf("%w: at least one major, minor or patch label must be configured", ErrConfiguration)
	}
	return nil
}

func (c *Config) tagMessageTemplate() (*template.Template, error) {
	tmpl := c.TagMessageTemplate
	if tmpl == "" {
		tmpl = DefaultTagMessageTemplate
	}
	res, err := template.New("message").Funcs(sprig.TxtFuncMap()).Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("can't parse the tag message template: %w", err)
	}
	return res, nil
}
