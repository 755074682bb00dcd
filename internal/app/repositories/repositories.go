package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/yigit/gradebook/internal/app/models"
)

// TranscriptRepository loads and stores the whole transcript at once
type TranscriptRepository interface {
	// Load returns the stored transcript, deriving record IDs where the backend
	// does not persist them
	Load(ctx context.Context) (*models.Transcript, error)
	// Save replaces the stored transcript with t, preserving record order
	Save(ctx context.Context, t *models.Transcript) error
	// Location describes where the transcript lives, for logs
	Location() string
}

// PositionalIDs is implemented by backends whose record IDs follow the record
// position, so new records must take the ID their row will get on reload
type PositionalIDs interface {
	RecordID(position int) uuid.UUID
}
