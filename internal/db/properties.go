package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"PropertyManager/internal/models"
)

func (d *DB) CountProperties(ctx context.Context) (int, error) {
	var n int
	if err := d.QueryRowContext(ctx, `SELECT COUNT(*) FROM properties`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db: count properties: %w", err)
	}
	return n, nil
}

// CreateProperty вставляет объект; пустой статус становится "vacant".
func (d *DB) CreateProperty(ctx context.Context, name, address, status string) (models.Property, error) {
	p := models.Property{
		Name:      strings.TrimSpace(name),
		Address:   sql.NullString{String: strings.TrimSpace(address), Valid: strings.TrimSpace(address) != ""},
		Status:    strings.TrimSpace(status),
		CreatedAt: time.Now().UTC(),
	}
	if p.Name == "" {
		return models.Property{}, errors.New("db: property name is empty")
	}
	if p.Status == "" {
		p.Status = models.StatusVacant
	}
	err := d.QueryRowContext(ctx, d.q(`
		INSERT INTO properties (name, address, status, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`),
		p.Name, p.Address, p.Status, p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		return models.Property{}, fmt.Errorf("db: insert property: %w", err)
	}
	return p, nil
}
