// Package session gates the admin dashboard on a locally stored admin session.
//
// The session lives in one of two scopes: a durable one that survives restarts
// ("remember me") and a short-lived one that does not. Holding the key in either scope
// counts as logged in. The token is not signed and does not expire.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"storefront-service/internal/domain"
	"storefront-service/internal/localstore"
)

// StorageKey names the session entry in both scopes.
const StorageKey = "admin-session"

// ErrLoginRequired means no session was found; callers send the user to the login screen.
var ErrLoginRequired = errors.New("session: admin login required")

// Gate checks and records the admin session.
type Gate struct {
	durable localstore.Storage
	session localstore.Storage
	log     *slog.Logger
}

// NewGate returns a gate over the durable and the session scope.
func NewGate(durable, session localstore.Storage, logger *slog.Logger) *Gate {
	return &Gate{durable: durable, session: session, log: logger}
}

// Login stores user in the durable scope when remember is set, otherwise in the session scope.
func (g *Gate) Login(ctx context.Context, user domain.AdminUser, remember bool) error {
	scope := g.session
	if remember {
		scope = g.durable
	}
	if err := localstore.SaveJSON(ctx, scope, StorageKey, user); err != nil {
		return fmt.Errorf("session: save failed: %w", err)
	}
	return nil
}

// Current returns the stored admin user, looking at the durable scope first.
// A scope whose entry cannot be read counts as empty.
func (g *Gate) Current(ctx context.Context) (domain.AdminUser, error) {
	scopes := []struct {
		name  string
		store localstore.Storage
	}{{"durable", g.durable}, {"session", g.session}}

	for _, scope := range scopes {
		var user domain.AdminUser
		err := localstore.LoadJSON(ctx, scope.store, StorageKey, &user)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, localstore.ErrNotFound) {
			g.log.WarnContext(ctx, "failed to load admin session",
				slog.String("scope", scope.name), slog.String("error", err.Error()))
		}
	}
	return domain.AdminUser{}, ErrLoginRequired
}

// Check reports whether either scope holds a session. Only presence matters.
func (g *Gate) Check(ctx context.Context) bool {
	for _, scope := range []localstore.Storage{g.durable, g.session} {
		if _, err := scope.Get(ctx, StorageKey); err == nil {
			return true
		}
	}
	return false
}

// Require returns ErrLoginRequired unless a session is present.
func (g *Gate) Require(ctx context.Context) error {
	if !g.Check(ctx) {
		return ErrLoginRequired
	}
	return nil
}

// Logout clears both scopes, whether or not they held anything.
func (g *Gate) Logout(ctx context.Context) error {
	return errors.Join(
		g.durable.Delete(ctx, StorageKey),
		g.session.Delete(ctx, StorageKey),
	)
}
