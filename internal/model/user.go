package model

import (
	"encoding/json"
	"time"
)

// User is the read model over the shared users table. Registration, login and
// profile management belong to the accounts service; this service only reads
// display fields for joins and ownership checks.
type User struct {
	ID            string          `db:"id" json:"id"`
	Role          UserRole        `db:"role" json:"role"`
	FullName      string          `db:"full_name" json:"fullName"`
	Email         string          `db:"email" json:"email"`
	Avatar        *string         `db:"avatar" json:"avatar,omitempty"`
	EducationPath json.RawMessage `db:"education_path" json:"educationPath,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
}
