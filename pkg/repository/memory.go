package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/automate-travel/studio/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// Memory keeps session records in process memory
type Memory struct {
	mu      sync.RWMutex
	records map[model.SessionID]*model.SessionRecord
}

func NewMemory() *Memory {
	return &Memory{records: make(map[model.SessionID]*model.SessionRecord)}
}

func (m *Memory) PutSession(ctx context.Context, record *model.SessionRecord) error {
	if record == nil || record.ID == "" {
		return goerr.New("session record requires an ID")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.ID] = cloneRecord(record)
	return nil
}

func (m *Memory) GetSession(ctx context.Context, id model.SessionID) (*model.SessionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "no such session", goerr.V("session_id", id))
	}
	return cloneRecord(record), nil
}

func (m *Memory) ListSessions(ctx context.Context, offset, limit int) ([]*model.SessionRecord, error) {
	if err := validateRange(offset, limit); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]*model.SessionRecord, 0, len(m.records))
	for _, r := range m.records {
		all = append(all, cloneRecord(r))
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].UpdatedAt.After(all[j].UpdatedAt)
	})

	if offset >= len(all) {
		return []*model.SessionRecord{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func cloneRecord(r *model.SessionRecord) *model.SessionRecord {
	out := *r
	out.Artifacts = append([]model.SessionArtifact(nil), r.Artifacts...)
	return &out
}
