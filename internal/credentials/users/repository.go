// Package users reads credential records from the relational user store.
package users

import (
	"context"

	"github.com/dmitrijs2005/machinewatch/internal/models"
)

// Repository looks users up by their login name.
type Repository interface {
	// FindByUsername returns the record for username or common.ErrorNotFound.
	FindByUsername(ctx context.Context, username string) (*models.CredentialRecord, error)
}
