package model

import (
	"time"
)

// LinkingCode is the one-time token a student shares out-of-band so a parent
// can request a link. Rows are never deleted; used and expired codes stay
// behind as an audit trail.
type LinkingCode struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"studentId"`
	Code      string    `db:"code" json:"code"`
	ExpiresAt time.Time `db:"expires_at" json:"expiresAt"`
	Used      bool      `db:"used" json:"used"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

func (c *LinkingCode) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// IsValid reports whether the code can still be redeemed at now.
func (c *LinkingCode) IsValid(now time.Time) bool {
	return !c.Used && !c.IsExpired(now)
}

type CreateLinkingCodeParams struct {
	ID        string
	StudentID string
	Code      string
	ExpiresAt time.Time
}
