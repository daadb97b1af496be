package domain

import "time"

// Subject is the topic a visitor picks on the contact form.
type Subject string

const (
	SubjectGeneral  Subject = "general"
	SubjectSupport  Subject = "support"
	SubjectBusiness Subject = "business"
	SubjectFeedback Subject = "feedback"
)

// Subjects lists the contact form topics.
var Subjects = []Subject{SubjectGeneral, SubjectSupport, SubjectBusiness, SubjectFeedback}

// Valid reports whether s is one of the contact form topics.
func (s Subject) Valid() bool {
	for _, known := range Subjects {
		if s == known {
			return true
		}
	}
	return false
}

// Feedback is a message left through the contact form. It is never edited once stored.
type Feedback struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   Subject   `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedbackInput is the payload submitted by the contact form.
type FeedbackInput struct {
	Name    string  `json:"name" validate:"required,min=2"`
	Email   string  `json:"email" validate:"required,email"`
	Subject Subject `json:"subject" validate:"required,subject"`
	Message string  `json:"message" validate:"required,min=10"`
}
