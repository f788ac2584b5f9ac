package core

import (
	"io"
	"time"

	"github.com/pkg/errors"
)

var ErrFileNotFound = errors.New("file not found")

type (
	// File describes a stored upload (candidate photo, signature).
	File struct {
		ID          string    `json:"id"`
		Name        string    `json:"name"`
		ContentType string    `json:"content_type"`
		Size        int64     `json:"size"`
		CreatedAt   time.Time `json:"created_at"` // UTC
	}

	// FileStore persists uploaded documents alongside the entity records.
	FileStore interface {
		SaveFile(name, contentType string, r io.Reader) (File, error)
		OpenFile(id string) (File, io.ReadCloser, error)
		DeleteFile(id string) error
	}
)
