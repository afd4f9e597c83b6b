package session

import (
	"context"
	"errors"

	"github.com/marmos91/cryptoolstore/internal/logger"
	"github.com/marmos91/cryptoolstore/internal/telemetry"
	"github.com/marmos91/cryptoolstore/pkg/auth"
	"github.com/marmos91/cryptoolstore/pkg/metrics"
	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
)

// handleLogin resets the session and runs one login attempt. A locked
// address ends the session without a response.
func (s *Session) handleLogin(ctx context.Context, m *message.Login, _ *target) (message.Message, error) {
	s.reset()

	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanAuthLogin)
	defer span.End()

	res, err := s.deps.Auth.Authenticate(ctx, m.Username, m.Password, s.remoteAddr)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrLockedOut):
		var le *auth.LockedOutError
		attempt := 0
		if errors.As(err, &le) {
			attempt = le.Attempt
		}
		logger.WarnCtx(ctx, "Login refused, address locked out",
			logger.KeyUsername, m.Username,
			logger.KeyAttempt, attempt)
		span.SetAttributes(telemetry.AuthOutcome(metrics.OutcomeLoginLocked))
		metrics.RecordLogin(s.deps.Metrics, metrics.OutcomeLoginLocked)
		return nil, err
	case errors.Is(err, auth.ErrAuthFailed):
		var fe *auth.FailedError
		attempt := 0
		if errors.As(err, &fe) {
			attempt = fe.Attempt
		}
		logger.InfoCtx(ctx, "Login failed",
			logger.KeyUsername, m.Username,
			logger.KeyAttempt, attempt)
		span.SetAttributes(telemetry.AuthOutcome(metrics.OutcomeLoginFailed))
		metrics.RecordLogin(s.deps.Metrics, metrics.OutcomeLoginFailed)
		return &message.ResponseLogin{Message: msgLoginIncorrect}, nil
	default:
		return nil, err
	}

	s.username = res.Username
	s.authenticated = true
	s.admin = res.IsAdmin

	if lc := logger.FromContext(ctx); lc != nil {
		lc.Username = res.Username
	}
	span.SetAttributes(telemetry.AuthOutcome(metrics.OutcomeLoginOK), telemetry.Admin(res.IsAdmin))
	metrics.RecordLogin(s.deps.Metrics, metrics.OutcomeLoginOK)
	logger.InfoCtx(ctx, "Login succeeded", logger.KeyUsername, res.Username, logger.KeyAdmin, res.IsAdmin)

	return &message.ResponseLogin{
		LoginOk: true,
		Message: msgLoginCorrect,
		IsAdmin: res.IsAdmin,
	}, nil
}

// handleLogout resets the session and ends it.
func (s *Session) handleLogout(ctx context.Context, _ *message.Logout, _ *target) (message.Message, error) {
	logger.InfoCtx(ctx, "Logout", logger.KeyUsername, s.username)
	s.reset()
	return nil, errLoggedOut
}
