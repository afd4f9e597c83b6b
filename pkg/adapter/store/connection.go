package store

import (
	"context"
	"errors"

	"github.com/marmos91/cryptoolstore/internal/logger"
	"github.com/marmos91/cryptoolstore/internal/protocol/store/session"
)

// connection runs one session on an accepted connection.
type connection struct {
	session *session.Session
}

// Serve runs the session and logs why it ended. The caller closes the
// connection.
func (c *connection) Serve(ctx context.Context) error {
	logger.InfoCtx(ctx, "Session opened")

	err := c.session.Serve(ctx)

	var se *session.Error
	switch {
	case err == nil:
		logger.InfoCtx(ctx, "Session ended", logger.KeyUsername, c.session.Username())
		return nil
	case errors.As(err, &se) && se.Kind == session.KindLockout:
		logger.WarnCtx(ctx, "Closing locked out client", logger.Err(err))
	case errors.As(err, &se) && se.Kind == session.KindProtocol:
		logger.WarnCtx(ctx, "Closing session on protocol error", logger.Err(err))
	default:
		logger.InfoCtx(ctx, "Session closed on transport error", logger.Err(err))
	}
	return err
}
