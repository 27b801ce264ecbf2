package client

import (
	"context"

	"github.com/dmitrijs2005/devnotes/internal/client/models"
)

// Client is the request/response boundary to the remote note store. It keeps
// no state between calls and performs no retries.
type Client interface {
	List(ctx context.Context) ([]models.Note, error)
	Get(ctx context.Context, id string) (*models.Note, error)
	Upsert(ctx context.Context, req models.UpsertRequest) (string, error)
	Delete(ctx context.Context, id string) error
}
