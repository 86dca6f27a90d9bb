package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/machinewatch/internal/common"
	"github.com/dmitrijs2005/machinewatch/internal/dbx"
	"github.com/dmitrijs2005/machinewatch/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindByUsername matches username exactly (case-sensitive). Should the
// table ever hold duplicates, the first row returned wins.
func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*models.CredentialRecord, error) {
	query :=
		`SELECT id, username, password_hash, role, name, assigned_location, assigned_office FROM users
		 WHERE username = $1
		 LIMIT 1
		 `

	var (
		rec              models.CredentialRecord
		role             string
		location, office sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, username).
		Scan(&rec.ID, &rec.Username, &rec.PasswordHash, &role, &rec.Name, &location, &office)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	rec.Role = models.Role(role)
	rec.AssignedLocation = location.String
	rec.AssignedOffice = office.String

	return &rec, nil
}
