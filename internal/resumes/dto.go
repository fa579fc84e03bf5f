package resumes

import "time"

// ResumeResponse is the outward-facing representation of a résumé.
type ResumeResponse struct {
	ResumeID   string    `json:"resumeId"`
	FileName   string    `json:"fileName"`
	MimeType   string    `json:"mimeType"`
	SizeBytes  int64     `json:"sizeBytes"`
	TextChars  int       `json:"textChars"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func toResponse(r Resume) ResumeResponse {
	return ResumeResponse{
		ResumeID:   r.ID,
		FileName:   r.FileName,
		MimeType:   r.MimeType,
		SizeBytes:  r.SizeBytes,
		TextChars:  len([]rune(r.Text)),
		UploadedAt: r.CreatedAt,
	}
}
