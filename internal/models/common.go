package models

import "time"

// AuditFields are the bookkeeping timestamps every mutable ledger table carries.
type AuditFields struct {
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
