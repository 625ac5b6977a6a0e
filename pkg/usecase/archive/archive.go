package archive

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"time"

	"github.com/automate-travel/studio/pkg/adapter"
	"github.com/automate-travel/studio/pkg/model"
	"github.com/automate-travel/studio/pkg/repository"
	"github.com/automate-travel/studio/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

const summaryLimit = 280

// Source is a session whose timeline can be saved
type Source interface {
	Mode() model.Mode
	Items() ([]model.HistoryItem, int)
}

// Archive saves session timelines: artifact bytes go to object storage and
// the record to the repository.
type Archive struct {
	storage adapter.Storage
	repo    repository.Repository
	now     func() time.Time
}

type Option func(*Archive)

func WithClock(now func() time.Time) Option {
	return func(a *Archive) {
		a.now = now
	}
}

func New(storage adapter.Storage, repo repository.Repository, opts ...Option) *Archive {
	a := &Archive{storage: storage, repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ArtifactKey is the object key of an artifact within a saved session
func ArtifactKey(sessionID model.SessionID, item model.HistoryItem) string {
	return path.Join("sessions", string(sessionID), string(item.ID)+item.Image.Extension())
}

// Save uploads every artifact of src and writes the session record. An empty
// id saves a new session; an existing id is overwritten and keeps its
// creation time.
func (a *Archive) Save(ctx context.Context, id model.SessionID, src Source) (*model.SessionRecord, error) {
	items, cursor := src.Items()
	if len(items) == 0 {
		return nil, goerr.Wrap(model.ErrInvalidInput, "nothing to save, the session is empty")
	}

	now := a.now()
	record := &model.SessionRecord{
		ID:        id,
		Mode:      src.Mode(),
		Cursor:    cursor,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if id == "" {
		record.ID = model.NewSessionID()
	} else {
		prev, err := a.repo.GetSession(ctx, id)
		switch {
		case err == nil:
			record.CreatedAt = prev.CreatedAt
		case !errors.Is(err, repository.ErrNotFound):
			return nil, goerr.Wrap(err, "failed to load previous session", goerr.V("session_id", id))
		}
	}

	for _, item := range items {
		key := ArtifactKey(record.ID, item)
		if err := a.upload(ctx, key, item.Image); err != nil {
			return nil, err
		}

		artifact := model.SessionArtifact{
			ItemID:    item.ID,
			Origin:    item.Origin,
			ObjectKey: key,
			MIMEType:  item.Image.MIMEType,
			CreatedAt: item.CreatedAt,
		}
		if item.Analysis != nil {
			artifact.Summary = summarize(item.Analysis.Analysis)
		}
		record.Artifacts = append(record.Artifacts, artifact)
	}

	if err := a.repo.PutSession(ctx, record); err != nil {
		return nil, goerr.Wrap(err, "failed to save session record", goerr.V("session_id", record.ID))
	}

	logging.From(ctx).Info("session saved",
		"session_id", record.ID,
		"artifacts", len(record.Artifacts))

	return record, nil
}

// Export uploads a single image under key
func (a *Archive) Export(ctx context.Context, key string, img *model.Image) error {
	if img == nil {
		return goerr.Wrap(model.ErrInvalidInput, "nothing to export")
	}
	return a.upload(ctx, key, img)
}

// List returns saved sessions, most recently updated first
func (a *Archive) List(ctx context.Context, offset, limit int) ([]*model.SessionRecord, error) {
	return a.repo.ListSessions(ctx, offset, limit)
}

// Fetch loads a saved session together with its artifact images, in
// timeline order.
func (a *Archive) Fetch(ctx context.Context, id model.SessionID) (*model.SessionRecord, []*model.Image, error) {
	record, err := a.repo.GetSession(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	images := make([]*model.Image, 0, len(record.Artifacts))
	for _, artifact := range record.Artifacts {
		img, err := a.download(ctx, artifact)
		if err != nil {
			return nil, nil, err
		}
		images = append(images, img)
	}
	return record, images, nil
}

func (a *Archive) upload(ctx context.Context, key string, img *model.Image) error {
	w, err := a.storage.Put(ctx, key, img.MIMEType)
	if err != nil {
		return goerr.Wrap(err, "failed to open object for writing", goerr.V("key", key))
	}
	if _, err := io.Copy(w, bytes.NewReader(img.Data)); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to upload artifact", goerr.V("key", key))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finish upload", goerr.V("key", key))
	}
	return nil
}

func (a *Archive) download(ctx context.Context, artifact model.SessionArtifact) (*model.Image, error) {
	r, err := a.storage.Get(ctx, artifact.ObjectKey)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download artifact", goerr.V("key", artifact.ObjectKey))
	}
	return model.NewImage(path.Base(artifact.ObjectKey), artifact.MIMEType, data)
}

func summarize(s string) string {
	runes := []rune(s)
	if len(runes) <= summaryLimit {
		return s
	}
	return string(runes[:summaryLimit]) + "..."
}
