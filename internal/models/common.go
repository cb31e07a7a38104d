package models

import "time"

// AuditFields are maintained by the database and never reach the domain.
type AuditFields struct {
	CreatedAt     time.Time `db:"created_at"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
}
