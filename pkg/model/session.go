package model

import (
	"time"

	"github.com/google/uuid"
)

type SessionID string

// NewSessionID generates a new unique SessionID
func NewSessionID() SessionID {
	return SessionID(uuid.New().String())
}

// SessionArtifact references one saved timeline item. The image bytes live in
// object storage under ObjectKey.
type SessionArtifact struct {
	ItemID    ItemID    `firestore:"item_id" json:"item_id"`
	Origin    Origin    `firestore:"origin" json:"origin"`
	ObjectKey string    `firestore:"object_key" json:"object_key"`
	MIMEType  string    `firestore:"mime_type" json:"mime_type"`
	Summary   string    `firestore:"summary" json:"summary"`
	CreatedAt time.Time `firestore:"created_at" json:"created_at"`
}

// SessionRecord is the persisted metadata of a saved session
type SessionRecord struct {
	ID        SessionID         `firestore:"id" json:"id"`
	Mode      Mode              `firestore:"mode" json:"mode"`
	Artifacts []SessionArtifact `firestore:"artifacts" json:"artifacts"`
	Cursor    int               `firestore:"cursor" json:"cursor"`
	CreatedAt time.Time         `firestore:"created_at" json:"created_at"`
	UpdatedAt time.Time         `firestore:"updated_at" json:"updated_at"`
}
