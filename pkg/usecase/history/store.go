package history

import (
	"log/slog"
	"sync"
	"time"

	"github.com/automate-travel/studio/pkg/model"
	"github.com/automate-travel/studio/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// DisplayProvider issues and releases the renderable handle of an item.
type DisplayProvider interface {
	Acquire(id model.ItemID, img *model.Image) (model.DisplayRef, error)
	Release(ref model.DisplayRef) error
}

// Store is the linear undo/redo timeline of a session. It owns every item and
// every display handle it acquired; each handle is released exactly once, on
// whichever path removes its item (truncation, Reset or Close).
type Store struct {
	mu      sync.Mutex
	items   []*model.HistoryItem
	cursor  int
	display DisplayProvider
	logger  *slog.Logger
	now     func() time.Time
	last    time.Time
}

// Option is a functional option for Store
type Option func(*Store)

// WithLogger sets the logger used to report release failures
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock replaces time.Now for item timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates an empty timeline
func New(display DisplayProvider, opts ...Option) *Store {
	s := &Store{
		cursor:  -1,
		display: display,
		logger:  logging.Default(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Add appends an artifact immediately after the cursor, discarding every
// future item first, and moves the cursor to it.
func (s *Store) Add(img *model.Image, origin model.Origin) (model.ItemID, error) {
	if img == nil {
		return "", goerr.New("image is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := model.NewItemID()
	ref, err := s.display.Acquire(id, img)
	if err != nil {
		return "", goerr.Wrap(err, "failed to acquire display handle", goerr.V("item_id", id))
	}

	// Future items are abandoned once new work branches off the cursor.
	s.release(s.items[s.cursor+1:])
	s.items = s.items[:s.cursor+1]

	s.items = append(s.items, &model.HistoryItem{
		ID:        id,
		Image:     img,
		Display:   ref,
		Tips:      model.DefaultTips,
		CreatedAt: s.timestamp(),
		Origin:    origin,
	})
	s.cursor = len(s.items) - 1

	return id, nil
}

// Update is the set of fields an analysis pass fills in.
type Update struct {
	Analysis *model.AnalysisResult
	// Tips overrides the tips derived from Analysis when not empty.
	Tips []string
}

// Update fills the analysis of the item with the given id. The analysis is
// written once: an update for an item that was discarded, or that already
// carries an analysis, is ignored. It reports whether the item changed.
func (s *Store) Update(id model.ItemID, u Update) bool {
	if u.Analysis == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.items {
		if item.ID != id {
			continue
		}
		if item.Analysis != nil {
			return false
		}

		item.Analysis = u.Analysis
		switch {
		case len(u.Tips) > 0:
			item.Tips = append([]string(nil), u.Tips...)
		case len(u.Analysis.Tips()) > 0:
			item.Tips = u.Analysis.Tips()
		}
		return true
	}

	return false
}

// Undo moves the cursor back one item; no-op on the original.
func (s *Store) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor <= 0 {
		return false
	}
	s.cursor--
	return true
}

// Redo moves the cursor forward one item; no-op at the tip.
func (s *Store) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor >= len(s.items)-1 {
		return false
	}
	s.cursor++
	return true
}

// Reset releases every handle and empties the timeline.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.release(s.items)
	s.items = nil
	s.cursor = -1
}

// Close tears the timeline down at the end of a session.
func (s *Store) Close() {
	s.Reset()
}

// Current returns the item under the cursor
func (s *Store) Current() (model.HistoryItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor < 0 {
		return model.HistoryItem{}, false
	}
	return snapshot(s.items[s.cursor]), true
}

// Original returns the first item, the undo floor and comparison baseline.
func (s *Store) Original() (model.HistoryItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return model.HistoryItem{}, false
	}
	return snapshot(s.items[0]), true
}

// Get returns the item with the given id if it is still in the timeline
func (s *Store) Get(id model.ItemID) (model.HistoryItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.items {
		if item.ID == id {
			return snapshot(item), true
		}
	}
	return model.HistoryItem{}, false
}

// Items returns the whole timeline and the cursor position
func (s *Store) Items() ([]model.HistoryItem, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.HistoryItem, len(s.items))
	for i, item := range s.items {
		out[i] = snapshot(item)
	}
	return out, s.cursor
}

func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor > 0
}

func (s *Store) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor < len(s.items)-1
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// release must be called with s.mu held
func (s *Store) release(items []*model.HistoryItem) {
	for _, item := range items {
		if err := s.display.Release(item.Display); err != nil {
			s.logger.Warn("failed to release display handle",
				"item_id", item.ID, "ref", item.Display, "error", err)
		}
	}
}

// timestamp must be called with s.mu held
func (s *Store) timestamp() time.Time {
	t := s.now()
	if !t.After(s.last) {
		t = s.last.Add(time.Nanosecond)
	}
	s.last = t
	return t
}

func snapshot(item *model.HistoryItem) model.HistoryItem {
	out := *item
	out.Tips = append([]string(nil), item.Tips...)
	return out
}
