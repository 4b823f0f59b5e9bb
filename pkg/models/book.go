package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// BookCode is the short random identifier clients use to address the
	// book. Title is the normalized lowercase dedupe key; DisplayTitle is
	// the same title with its original casing for presentation.
	BookCode     string  `bun:",nullzero" json:"book_code"`
	Title        string  `bun:",nullzero" json:"title"`
	DisplayTitle string  `bun:",nullzero" json:"display_title"`
	AltTitle     *string `json:"alt_title,omitempty"`
	Author       *string `json:"author,omitempty"`
	Description  *string `json:"description,omitempty"`
	Language     *string `json:"language,omitempty"`
	Type         *string `json:"type,omitempty"`

	// Filepath is where the EPUB lives under the library root. CoverPath
	// points at the cover image saved next to it, when one was found.
	Filepath  string  `bun:",nullzero" json:"filepath"`
	FileRef   *string `json:"file_ref,omitempty"`
	CoverPath *string `json:"cover_path,omitempty"`
}
