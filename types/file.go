package types

import "time"

// FileRecord is the registry entry for an uploaded document. Records are
// immutable after creation; the stored bytes live in object storage under
// the key "{id}{original extension}".
type FileRecord struct {
	// ID is the opaque unique identifier assigned at upload.
	ID string `json:"id" db:"id"`

	// Filename is the original name of the uploaded file.
	Filename string `json:"filename" db:"filename"`

	// Uploader is the email of the ops user who uploaded the file.
	Uploader string `json:"uploader" db:"uploader"`

	// CreatedAt is the upload timestamp.
	CreatedAt time.Time `json:"timestamp" db:"created_at"`
}
