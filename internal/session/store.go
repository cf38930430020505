// Package session persists screening-session state for the duration of one
// run. State is ephemeral by design: the Redis store expires sessions with a
// TTL, and nothing here outlives the session.
package session

import (
	"context"
	"errors"

	"github.com/SAP-F-2025/screening-service/internal/models"
)

// ErrNotFound is returned when a session id resolves to nothing, either
// because it never existed or because its TTL expired.
var ErrNotFound = errors.New("session not found")

// Store holds screening sessions keyed by id.
type Store interface {
	Save(ctx context.Context, session *models.ScreeningSession) error
	Get(ctx context.Context, id string) (*models.ScreeningSession, error)
	Delete(ctx context.Context, id string) error
}
