package app

import (
	"bytes"
	"fmt"
)

// MessageData is the object given to the tag message template
type MessageData struct {
	TagName           string
	Version           string
	PreviousTag       string
	PreRelease        bool
	ReleaseType       string
	Channel           string
	SHA               string
	Ref               string
	PullRequestNumber int
}

func (s *Service) renderTagMessage(data MessageData) (string, error) {
	tmpl, err := s.config.tagMessageTemplate()
	if err != nil {
		return "", err
	}
	var body bytes.Buffer
	err = tmpl.Execute(&body, data)
	if err != nil {
		return "", fmt.Errorf("can't execute the template: %w on data: %+v", err, data)
	}
	return body.String(), nil
}
