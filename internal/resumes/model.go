package resumes

import "time"

// Resume is an uploaded résumé with its extracted text.
type Resume struct {
	ID         string
	UserID     string
	FileName   string
	MimeType   string
	SizeBytes  int64
	StorageKey string
	Text       string
	CreatedAt  time.Time
}
