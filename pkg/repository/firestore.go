package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/automate-travel/studio/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const sessionCollection = "sessions"

// Firestore stores session records as documents of the "sessions" collection
type Firestore struct {
	client *firestore.Client
}

// New creates a Firestore repository on the given database
func New(ctx context.Context, projectID, databaseID string) (*Firestore, error) {
	if projectID == "" {
		return nil, goerr.New("project ID is required for Firestore")
	}
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Firestore client",
			goerr.V("project_id", projectID), goerr.V("database_id", databaseID))
	}

	return &Firestore{client: client}, nil
}

func (r *Firestore) Close() error {
	return r.client.Close()
}

func (r *Firestore) PutSession(ctx context.Context, record *model.SessionRecord) error {
	if record == nil || record.ID == "" {
		return goerr.New("session record requires an ID")
	}

	if _, err := r.client.Collection(sessionCollection).Doc(string(record.ID)).Set(ctx, record); err != nil {
		return goerr.Wrap(err, "failed to put session", goerr.V("session_id", record.ID))
	}
	return nil
}

func (r *Firestore) GetSession(ctx context.Context, id model.SessionID) (*model.SessionRecord, error) {
	snap, err := r.client.Collection(sessionCollection).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "no such session", goerr.V("session_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get session", goerr.V("session_id", id))
	}

	var record model.SessionRecord
	if err := snap.DataTo(&record); err != nil {
		return nil, goerr.Wrap(err, "failed to decode session", goerr.V("session_id", id))
	}
	return &record, nil
}

func (r *Firestore) ListSessions(ctx context.Context, offset, limit int) ([]*model.SessionRecord, error) {
	if err := validateRange(offset, limit); err != nil {
		return nil, err
	}

	q := r.client.Collection(sessionCollection).OrderBy("updated_at", firestore.Desc).Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	records := []*model.SessionRecord{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate sessions")
		}

		var record model.SessionRecord
		if err := snap.DataTo(&record); err != nil {
			return nil, goerr.Wrap(err, "failed to decode session", goerr.V("doc_id", snap.Ref.ID))
		}
		records = append(records, &record)
	}
	return records, nil
}
