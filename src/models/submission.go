package models

import "time"

// Submission is one end user's answer set for a published form.
type Submission struct {
	ID        string         `json:"id"`
	FormID    string         `json:"formId"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"createdAt"`
}

// FileUpload is the metadata of a stored file.
type FileUpload struct {
	ID           string         `json:"id"`
	SubmissionID string         `json:"submissionId"`
	FieldID      string         `json:"fieldId"`
	FileName     string         `json:"fileName"`
	FileType     string         `json:"fileType"`
	FilePath     string         `json:"filePath"`
	FileSize     int64          `json:"fileSize"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// SubmissionDetail bundles a submission with its files.
type SubmissionDetail struct {
	Submission *Submission   `json:"submission"`
	Files      []*FileUpload `json:"files"`
}

// SubmitDto is the JSON variant of a form submission.
type SubmitDto struct {
	Data map[string]any `json:"data" validate:"required"`
}
