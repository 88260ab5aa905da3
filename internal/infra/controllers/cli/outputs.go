package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fabien-marty/github-pr-label-tagger/internal/app"
	"github.com/spf13/afero"
)

type output struct {
	key   string
	value string
}

func resultOutputs(res *app.Result) []output {
	return []output{
		{"version", res.Version},
		{"tag", res.Tag},
		{"prerelease", strconv.FormatBool(res.PreRelease)},
		{"status", string(res.Status)},
	}
}

// writeOutputs writes the outputs as key=value lines on w and appends them to
// the githubOutput file (if not empty)
func writeOutputs(fs afero.Fs, w io.Writer, githubOutput string, outputs []output) error {
	for _, o := range outputs {
		fmt.Fprintf(w, "%s=%s\n", o.key, o.value)
	}
	if githubOutput == "" {
		return nil
	}
	f, err := fs.OpenFile(githubOutput, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("can't open the output file %s: %w", githubOutput, err)
	}
	defer f.Close()
	for _, o := range outputs {
		if _, err := fmt.Fprintf(f, "%s=%s\n", o.key, o.value); err != nil {
			return fmt.Errorf("can't write the output file %s: %w", githubOutput, err)
		}
	}
	return nil
}
