package mailer

// EmailJob is one rendered-or-renderable email. The notification worker
// builds it from a domain event; Template names a set under
// pkg/mailer/templates and Data is its EmailData.
type EmailJob struct {
	To       string `json:"to"`
	Subject  string `json:"subject,omitempty"`
	Text     string `json:"text,omitempty"`
	HTML     string `json:"html,omitempty"`
	Template string `json:"template,omitempty"`
	Data     any    `json:"data,omitempty"`
}
