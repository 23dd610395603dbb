// Package storage persists notes on the local file system, one file per
// title under the wiki location.
package storage

import "github.com/Thomashighbaugh/tendril-wiki/internal/models"

// Provider is the note storage surface the rest of the core consumes.
type Provider interface {
	// ReadByTitle returns the note stored under title.
	// Returns apperr.ErrNotFound when no such note exists.
	ReadByTitle(title string) (models.Note, error)
	// Write persists the note under its title, atomically.
	Write(note models.Note) error
	// Delete removes the note stored under title.
	Delete(title string) error
	// Rename migrates a note from oldTitle to newTitle.
	Rename(oldTitle, newTitle string) error
	// Titles lists every stored note title.
	Titles() ([]string, error)
	// All reads and decodes every stored note.
	All() ([]models.Note, error)
}
