package repository

import (
	"context"

	"github.com/automate-travel/studio/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

var ErrNotFound = goerr.New("session record not found")

func validateRange(offset, limit int) error {
	if offset < 0 || limit < 0 {
		return goerr.Wrap(model.ErrInvalidInput, "offset and limit must not be negative",
			goerr.V("offset", offset), goerr.V("limit", limit))
	}
	return nil
}

// Repository defines the interface for session record persistence
type Repository interface {
	// PutSession creates or replaces a session record
	PutSession(ctx context.Context, record *model.SessionRecord) error

	// GetSession retrieves a session record by ID. It returns ErrNotFound
	// when there is none.
	GetSession(ctx context.Context, id model.SessionID) (*model.SessionRecord, error)

	// ListSessions retrieves session records, most recently updated first. A
	// zero limit means no limit; negative values are rejected.
	ListSessions(ctx context.Context, offset, limit int) ([]*model.SessionRecord, error)
}
