package model

import (
	"encoding/json"
	"time"
)

// LinkRequest records one parent's claim to a student. The (parent, student)
// pair is unique across all time regardless of status; rows are never deleted.
type LinkRequest struct {
	ID        string            `db:"id" json:"id"`
	ParentID  string            `db:"parent_id" json:"parentId"`
	StudentID string            `db:"student_id" json:"studentId"`
	Status    LinkRequestStatus `db:"status" json:"status"`
	CreatedAt time.Time         `db:"created_at" json:"createdAt"`
	DecidedAt *time.Time        `db:"decided_at" json:"decidedAt,omitempty"`
}

type CreateLinkRequestParams struct {
	ID        string
	ParentID  string
	StudentID string
}

// PendingLinkRequest is a pending row joined with the requesting parent's
// display fields, as shown to the student deciding on it.
type PendingLinkRequest struct {
	ID          string    `db:"id" json:"id"`
	ParentID    string    `db:"parent_id" json:"parentId"`
	ParentName  string    `db:"parent_name" json:"parentName"`
	ParentEmail string    `db:"parent_email" json:"parentEmail"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// LinkedStudent is an approved row joined with the student's public profile,
// as shown in a parent's student list.
type LinkedStudent struct {
	ID            string            `db:"id" json:"id"`
	FullName      string            `db:"full_name" json:"fullName"`
	Avatar        *string           `db:"avatar" json:"avatar"`
	EducationPath json.RawMessage   `db:"education_path" json:"educationPath"`
	Status        LinkRequestStatus `db:"status" json:"status"`
}
