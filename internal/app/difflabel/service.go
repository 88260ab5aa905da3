package difflabel

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/fabien-marty/github-pr-label-tagger/internal/app/repo"
)

type Service struct {
	config  Config
	adapter repo.Port
	logger  *slog.Logger
}

func New(config Config, adapter repo.Port) *Service {
	return &Service{
		config:  config,
		adapter: adapter,
		logger:  slog.With("name", "diffLabelService"),
	}
}

// Label sums the changes of the pull request, posts a summary comment and
// adds one label per distinct file extension (in a single call).
// In dry-run mode, nothing is posted.
func (s *Service) Label(ctx context.Context, number int) (*Report, error) {
	logger := s.logger.With(slog.Int("number", number))
	files, err := s.adapter.GetPullRequestFiles(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("can't get the files of the pull request #%d: %w", number, err)
	}
	res := &Report{Stats: ComputeStats(number, files)}
	for _, f := range files {
		label := s.config.LabelFor(f.Filename)
		if label == "" || slices.Contains(res.Labels, label) {
			continue
		}
		logger.Debug("label found", slog.String("file", f.Filename), slog.String("label", label))
		res.Labels = append(res.Labels, label)
	}
	res.Comment, err = s.renderComment(res.Stats)
	if err != nil {
		return nil, err
	}
	if s.config.DryRun {
		logger.Info("dry-run mode => nothing is posted", slog.String("comment", res.Comment), slog.Any("labels", res.Labels))
		return res, nil
	}
	err = s.adapter.CreateComment(ctx, number, res.Comment)
	if err != nil {
		return nil, fmt.Errorf("can't comment the pull request #%d: %w", number, err)
	}
	if len(res.Labels) > 0 {
		err = s.adapter.AddLabels(ctx, number, res.Labels)
		if err != nil {
			return nil, fmt.Errorf("can't label the pull request #%d: %w", number, err)
		}
	}
	logger.Info("pull request labeled", slog.Any("labels", res.Labels))
	return res, nil
}

func (s *Service) renderComment(stats Stats) (string, error) {
	tmplString := s.config.CommentTemplate
	if tmplString == "" {
		tmplString = DefaultCommentTemplate
	}
	tmpl, err := template.New("comment").Funcs(sprig.TxtFuncMap()).Parse(tmplString)
	if err != nil {
		return "", fmt.Errorf("can't parse the comment template: %w", err)
	}
	var body bytes.Buffer
	err = tmpl.Execute(&body, stats)
	if err != nil {
		return "", fmt.Errorf("can't execute the template: %w on stats: %+v", err, stats)
	}
	return body.String(), nil
}
