package client

import (
	"context"
	"errors"
	"net/http"

	"storefront-service/internal/domain"
	"storefront-service/internal/validation"
)

// AdminLogin exchanges credentials for the admin user; ErrInvalidCredentials on 401.
func (c *Client) AdminLogin(ctx context.Context, creds domain.AdminCredentials) (domain.AdminUser, error) {
	if err := validation.Validate(creds); err != nil {
		return domain.AdminUser{}, err
	}
	var res domain.LoginResult
	if err := c.do(ctx, http.MethodPost, "/api/admin/login", creds, &res); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return domain.AdminUser{}, ErrInvalidCredentials
		}
		return domain.AdminUser{}, err
	}
	if !res.Success {
		return domain.AdminUser{}, ErrInvalidCredentials
	}
	if err := checkPayload(res.User); err != nil {
		return domain.AdminUser{}, err
	}
	return res.User, nil
}

// AdminStats fetches the dashboard figures.
func (c *Client) AdminStats(ctx context.Context) (domain.AdminStats, error) {
	var stats domain.AdminStats
	if err := c.do(ctx, http.MethodGet, "/api/admin/stats", nil, &stats); err != nil {
		return domain.AdminStats{}, err
	}
	return stats, nil
}
