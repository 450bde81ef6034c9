package mailer

import (
	"errors"
	"strings"

	"github.com/oksasatya/linkbio/pkg/mailer/templates"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template with Data, or Subject with Text and/or HTML.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "welcome", "account_deleted"
	Data     map[string]any `json:"data,omitempty"`
}

var ErrEmptyJob = errors.New("email job has no recipient or content")

// Render resolves the subject and bodies of the job. Template jobs get brand
// defaults applied before rendering; raw jobs are passed through.
func (j EmailJob) Render(brand templates.Brand) (subject, text, html string, err error) {
	if strings.TrimSpace(j.To) == "" {
		return "", "", "", ErrEmptyJob
	}
	if j.Template == "" {
		if j.Subject == "" || (j.Text == "" && j.HTML == "") {
			return "", "", "", ErrEmptyJob
		}
		return j.Subject, j.Text, j.HTML, nil
	}
	data := templates.Apply(j.Data, templates.WithBrand(brand))
	if s, _ := data["RecipientEmail"].(string); s == "" {
		data["RecipientEmail"] = j.To
	}
	return templates.Render(j.Template, data)
}
