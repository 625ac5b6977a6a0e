package model

import (
	"time"

	"github.com/google/uuid"
)

type ItemID string

// NewItemID generates a new unique ItemID
func NewItemID() ItemID {
	return ItemID(uuid.New().String())
}

// Origin tells whether an artifact was uploaded or produced by the model.
type Origin string

const (
	OriginUploaded  Origin = "uploaded"
	OriginGenerated Origin = "generated"
)

// DisplayRef is a renderable handle derived from an item's image. It is
// acquired and released only by the history store.
type DisplayRef string

// DefaultTips are shown until an analysis supplies its own suggestions.
var DefaultTips = []string{
	"Remove clutter",
	"Blue sky fix",
	"Warm lighting",
	"Remove tourists",
	"Sharpen details",
}

// HistoryItem is one artifact of an edit session timeline
type HistoryItem struct {
	ID        ItemID
	Image     *Image
	Display   DisplayRef
	Analysis  *AnalysisResult
	Tips      []string
	CreatedAt time.Time
	Origin    Origin
}

// Analyzed reports whether the analysis pass has filled this item.
func (h *HistoryItem) Analyzed() bool {
	return h.Analysis != nil
}
