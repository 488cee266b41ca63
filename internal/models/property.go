package models

import (
	"database/sql"
	"time"
)

const StatusVacant = "vacant"

// Property — объект недвижимости из таблицы properties.
type Property struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Address   sql.NullString `json:"address"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}
