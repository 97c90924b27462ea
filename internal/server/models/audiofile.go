package models

import "time"

// AudioFile is the catalogue entry for an uploaded audio object. The bytes
// live in object storage under Metadata.Key.
type AudioFile struct {
	ID          int64
	Title       string
	Description string
	UserID      int64
	FileURL     string
	Metadata    AudioMetadata
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AudioMetadata is stored as a JSONB document next to the row.
type AudioMetadata struct {
	Key  string   `json:"key"`
	Tags []string `json:"tags"`
}

// AudioFilePatch carries the optional fields of an audio file update. Tags
// are replaced wholesale when non-nil.
type AudioFilePatch struct {
	Title       *string
	Description *string
	Tags        []string
}

// AudioFileFilter narrows a listing to one owner. Search matches title or
// description case-insensitively; every tag in Tags must be present.
type AudioFileFilter struct {
	UserID int64
	Search string
	Tags   []string
	Limit  int
	Offset int
}
