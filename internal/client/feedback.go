package client

import (
	"context"
	"net/http"

	"storefront-service/internal/domain"
	"storefront-service/internal/validation"
)

// SubmitFeedback posts a contact form message. Invalid input never leaves the process and comes
// back as *validation.Error; a 400 from the API comes back as *APIError with Fields set.
func (c *Client) SubmitFeedback(ctx context.Context, in domain.FeedbackInput) (domain.Feedback, error) {
	if err := validation.Validate(in); err != nil {
		return domain.Feedback{}, err
	}
	var fb domain.Feedback
	if err := c.do(ctx, http.MethodPost, "/api/feedback", in, &fb); err != nil {
		return domain.Feedback{}, err
	}
	return fb, nil
}

// ListFeedback fetches every stored message, newest first.
func (c *Client) ListFeedback(ctx context.Context) ([]domain.Feedback, error) {
	var list []domain.Feedback
	if err := c.do(ctx, http.MethodGet, "/api/feedback", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}
