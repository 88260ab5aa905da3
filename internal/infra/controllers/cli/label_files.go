package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fabien-marty/github-pr-label-tagger/internal/app/difflabel"
	"github.com/fabien-marty/github-pr-label-tagger/internal/app/labels"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"
)

var labelFilesCliFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "extension-labels",
		Value:   "md=markdown,js=javascript,ts=typescript",
		Usage:   "Coma separated list of extension=label",
		EnvVars: []string{"GPLT_EXTENSION_LABELS"},
	},
	&cli.StringFlag{
		Name:    "no-extension-label",
		Value:   "noextension",
		Usage:   "Label for files without extension",
		EnvVars: []string{"GPLT_NO_EXTENSION_LABEL"},
	},
	&cli.StringFlag{
		Name:    "default-label",
		Value:   "nomatch",
		Usage:   "Label for files with an unknown extension",
		EnvVars: []string{"GPLT_DEFAULT_LABEL"},
	},
	&cli.StringFlag{
		Name:    "comment-template",
		Value:   difflabel.DefaultCommentTemplate,
		Usage:   "Golang template (with sprig functions) of the summary comment",
		EnvVars: []string{"GPLT_COMMENT_TEMPLATE"},
	},
}

func parseExtensionLabels(s string) (map[string]string, error) {
	res := map[string]string{}
	for _, item := range labels.SplitLabels(s) {
		ext, label, ok := strings.Cut(item, "=")
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		label = strings.TrimSpace(label)
		if !ok || ext == "" || label == "" {
			return nil, fmt.Errorf("bad extension=label item: %s", item)
		}
		res[ext] = label
	}
	return res, nil
}

func labelFilesAction(cCtx *cli.Context) error {
	setDefaultLogger(cCtx)
	number := cCtx.Int("pr-number")
	if number <= 0 {
		return cli.Exit("You have to set a pull request number with --pr-number", exitCodeUsage)
	}
	fs := afero.NewOsFs()
	fc, err := loadConfigFile(cCtx, fs)
	if err != nil {
		return err
	}
	config := difflabel.NewDefaultConfig()
	config.DryRun = cCtx.Bool("dry-run")
	config.NoExtensionLabel = cCtx.String("no-extension-label")
	config.DefaultLabel = cCtx.String("default-label")
	config.CommentTemplate = cCtx.String("comment-template")
	if !cCtx.IsSet("extension-labels") && fc.ExtensionLabels != nil {
		config.ExtensionLabels = fc.ExtensionLabels
	} else {
		config.ExtensionLabels, err = parseExtensionLabels(cCtx.String("extension-labels"))
		if err != nil {
			return cli.Exit(err.Error(), exitCodeConfiguration)
		}
	}
	repoAdapter, err := newRepoAdapter(cCtx, newGitLocalAdapter(cCtx, ""))
	if err != nil {
		return err
	}
	report, err := difflabel.New(config, repoAdapter).Label(cCtx.Context, number)
	if err != nil {
		return cli.Exit(err.Error(), exitCodeCollaboratorErr)
	}
	return writeOutputs(fs, os.Stdout, cCtx.String("github-output"), []output{
		{"labels", strings.Join(report.Labels, ",")},
		{"additions", strconv.Itoa(report.Additions)},
		{"deletions", strconv.Itoa(report.Deletions)},
		{"changes", strconv.Itoa(report.Changes)},
	})
}
