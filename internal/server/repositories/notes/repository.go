// Package notes stores notes, either in memory or in PostgreSQL.
package notes

import (
	"context"

	"github.com/dmitrijs2005/devnotes/internal/server/models"
)

// Repository is the note storage contract. Get, Update and Delete return
// common.ErrNotFound for an unknown id. List is ordered by UpdatedAt, newest
// first, ties broken by id.
type Repository interface {
	List(ctx context.Context) ([]*models.Note, error)
	Get(ctx context.Context, id string) (*models.Note, error)
	Create(ctx context.Context, note *models.Note) error
	Update(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, id string) error
}
