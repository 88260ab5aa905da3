package difflabel

import (
	"path"
	"strings"

	"github.com/fabien-marty/github-pr-label-tagger/internal/app/repo"
)

const DefaultCommentTemplate = `Pull request #{{ .Number }} has been updated with:

- {{ .Additions }} additions
- {{ .Deletions }} deletions
- {{ .Changes }} changes
`

// DefaultExtensionLabels is the default mapping between file extensions (without the dot) and labels
var DefaultExtensionLabels = map[string]string{
	"md": "markdown",
	"js": "javascript",
	"ts": "typescript",
}

// Config is the configuration of the diff labeler
type Config struct {
	ExtensionLabels  map[string]string // extension (without the dot) => label
	NoExtensionLabel string            // label for files without extension
	DefaultLabel     string            // label for files with an unknown extension
	CommentTemplate  string            // golang template (with sprig functions) of the summary comment
	DryRun           bool              // if true, the comment and the labels are only logged
}

// NewDefaultConfig returns the default configuration
func NewDefaultConfig() Config {
	return Config{
		ExtensionLabels:  DefaultExtensionLabels,
		NoExtensionLabel: "noextension",
		DefaultLabel:     "nomatch",
		CommentTemplate:  DefaultCommentTemplate,
	}
}

// Stats is the sum of the changes of a pull request
type Stats struct {
	Number    int // pull request number
	Files     int // number of changed files
	Additions int
	Deletions int
	Changes   int
}

// Report is the result of a diff labeling
type Report struct {
	Stats
	Comment string   // rendered comment
	Labels  []string // labels (deduplicated, in the order of the files)
}

// ComputeStats sums the additions, deletions and changes of the given files
func ComputeStats(number int, files []*repo.ChangedFile) Stats {
	res := Stats{Number: number, Files: len(files)}
	for _, f := range files {
		res.Additions += f.Additions
		res.Deletions += f.Deletions
		res.Changes += f.Changes
	}
	return res
}

// LabelFor returns the label of the given file name (according to its extension)
func (c *Config) LabelFor(filename string) string {
	ext := strings.TrimPrefix(path.Ext(path.Base(filename)), ".")
	if ext == "" {
		return c.NoExtensionLabel
	}
	label, ok := c.ExtensionLabels[ext]
	if !ok {
		return c.DefaultLabel
	}
	return label
}
