// Package notification turns identity events from the bus into emails.
package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tenant-identity/internal/domain/event"
	"github.com/oksasatya/tenant-identity/pkg/mailer"
	tpl "github.com/oksasatya/tenant-identity/pkg/mailer/templates"
)

// ErrMalformed marks a message that can never be delivered; it is dropped
// instead of requeued.
var ErrMalformed = errors.New("malformed notification")

type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

type Notifier struct {
	sender Sender
	brand  tpl.Branding
	logger *logrus.Logger
}

func NewNotifier(sender Sender, brand tpl.Branding, logger *logrus.Logger) *Notifier {
	return &Notifier{sender: sender, brand: brand, logger: logger}
}

// Handle renders and sends the email for one event. Events without a
// template are acknowledged and ignored.
func (n *Notifier) Handle(ctx context.Context, routingKey string, body []byte) error {
	job, ok, err := BuildJob(routingKey, body, n.brand)
	if err != nil {
		return err
	}
	if !ok {
		if n.logger != nil {
			n.logger.WithField("event", routingKey).Debug("no template for event")
		}
		return nil
	}
	subject, text, html, err := tpl.Render(job.Template, job.Data)
	if err != nil {
		return fmt.Errorf("%w: render %s: %v", ErrMalformed, job.Template, err)
	}
	if err := n.sender.Send(ctx, job.To, subject, text, html); err != nil {
		return fmt.Errorf("send %s to %s: %w", job.Template, job.To, err)
	}
	if n.logger != nil {
		n.logger.WithFields(logrus.Fields{"event": routingKey, "template": job.Template}).Info("notification sent")
	}
	return nil
}

func decode[T any](body []byte) (T, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return v, nil
}

func name(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

// BuildJob maps an event to its email. ok is false for events that are not
// notified.
func BuildJob(routingKey string, body []byte, brand tpl.Branding) (job mailer.EmailJob, ok bool, err error) {
	var (
		to   string
		data tpl.EmailData
		tmpl string
	)
	switch routingKey {
	case event.OrganizationRegistered:
		e, err := decode[event.OrganizationRegisteredEvent](body)
		if err != nil {
			return job, false, err
		}
		to, tmpl = e.OwnerEmail, tpl.OrganizationRegistered
		data = tpl.NewEmailData(brand, name(e.OwnerFirstName, e.OwnerLastName), e.OwnerEmail,
			tpl.WithTime(e.OccurredAt), tpl.WithOrganization(e.OrganizationName), tpl.WithRole("CENTER_OWNER"))
	case event.UserProvisioned:
		e, err := decode[event.UserProvisionedEvent](body)
		if err != nil {
			return job, false, err
		}
		to, tmpl = e.Email, tpl.UserProvisioned
		data = tpl.NewEmailData(brand, name(e.FirstName, e.LastName), e.Email,
			tpl.WithTime(e.OccurredAt), tpl.WithRole(e.Role),
			tpl.WithTemporaryPassword(e.TemporaryPassword), tpl.WithActor(e.CreatedByEmail))
	case event.AccountBanned:
		e, err := decode[event.AccountBannedEvent](body)
		if err != nil {
			return job, false, err
		}
		to, tmpl = e.Email, tpl.AccountBanned
		data = tpl.NewEmailData(brand, e.FirstName, e.Email, tpl.WithTime(e.OccurredAt), tpl.WithActor(e.BannedByEmail))
	case event.AccountActivated:
		e, err := decode[event.AccountActivatedEvent](body)
		if err != nil {
			return job, false, err
		}
		to, tmpl = e.Email, tpl.AccountActivated
		data = tpl.NewEmailData(brand, e.FirstName, e.Email, tpl.WithTime(e.OccurredAt), tpl.WithActor(e.ActivatedByEmail))
	case event.PasswordResetRequested:
		e, err := decode[event.PasswordResetRequestedEvent](body)
		if err != nil {
			return job, false, err
		}
		to, tmpl = e.Email, tpl.PasswordResetRequested
		data = tpl.NewEmailData(brand, e.FirstName, e.Email, tpl.WithTime(e.OccurredAt))
	default:
		return job, false, nil
	}
	if strings.TrimSpace(to) == "" {
		return job, false, fmt.Errorf("%w: %s without recipient", ErrMalformed, routingKey)
	}
	return mailer.EmailJob{To: to, Template: tmpl, Data: data}, true, nil
}
