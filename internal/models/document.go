// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is a metadata record for a file attached to a project.
// File content lives in external storage; only the reference and
// descriptive metadata are persisted here.
type Document struct {
	// ID is the primary key.
	ID uuid.UUID `json:"id"`

	// ProjectID is the owning project.
	ProjectID uuid.UUID `json:"project_id"`

	// Title is the display name of the document.
	Title string `json:"title" validate:"required,min=1,max=200"`

	// StorageKey is the opaque key in the external object store.
	StorageKey string `json:"storage_key"`

	// ContentType is the MIME type reported at upload time.
	ContentType string `json:"content_type"`

	// SizeBytes is the stored size.
	SizeBytes int64 `json:"size_bytes" validate:"min=0"`

	// UploadedBy is the user who uploaded the document.
	UploadedBy uuid.UUID `json:"uploaded_by"`

	// CreatedAt is when the record was created.
	CreatedAt time.Time `json:"created_at"`
}
