// Package feedback drives the contact form: field checks, a single submission attempt,
// and the notice telling the visitor how it went.
package feedback

import (
	"context"
	"errors"

	"storefront-service/internal/domain"
	"storefront-service/internal/notice"
	"storefront-service/internal/validation"
)

// Submitter forwards a checked message to the API.
type Submitter interface {
	SubmitFeedback(ctx context.Context, in domain.FeedbackInput) (domain.Feedback, error)
}

// Form is the contact form state. The default subject is "general".
type Form struct {
	Name    string
	Email   string
	Subject domain.Subject
	Message string

	submitter Submitter
	notifier  notice.Notifier
}

// NewForm returns an empty form.
func NewForm(submitter Submitter, notifier notice.Notifier) *Form {
	return &Form{Subject: domain.SubjectGeneral, submitter: submitter, notifier: notifier}
}

// Input is the payload the form would send right now.
func (f *Form) Input() domain.FeedbackInput {
	return domain.FeedbackInput{Name: f.Name, Email: f.Email, Subject: f.Subject, Message: f.Message}
}

// Validate returns field messages keyed by JSON field name, or nil when the form is fine.
func (f *Form) Validate() map[string]string {
	err := validation.Validate(f.Input())
	if err == nil {
		return nil
	}
	var verr *validation.Error
	if errors.As(err, &verr) {
		return verr.Fields()
	}
	return map[string]string{"form": err.Error()}
}

// Submit validates and, when the form is valid, sends it once.
// Invalid forms never reach the submitter and come back as a *validation.Error.
// On success the form is reset; on failure it is kept so the visitor can try again.
func (f *Form) Submit(ctx context.Context) (domain.Feedback, error) {
	in := f.Input()
	if err := validation.Validate(in); err != nil {
		return domain.Feedback{}, err
	}

	fb, err := f.submitter.SubmitFeedback(ctx, in)
	if err != nil {
		f.notifier.Notify(ctx, notice.Problem("Failed to send message", err.Error()))
		return domain.Feedback{}, err
	}

	f.Reset()
	f.notifier.Notify(ctx, notice.Info("Message sent successfully!",
		"Thank you for contacting us. We'll get back to you soon."))
	return fb, nil
}

// Reset clears every field.
func (f *Form) Reset() {
	f.Name, f.Email, f.Message = "", "", ""
	f.Subject = domain.SubjectGeneral
}
