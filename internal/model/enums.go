package model

type UserRole string

const (
	UserRoleStudent UserRole = "student"
	UserRoleParent  UserRole = "parent"
)

type LinkRequestStatus string

const (
	LinkRequestStatusPending  LinkRequestStatus = "pending"
	LinkRequestStatusApproved LinkRequestStatus = "approved"
	LinkRequestStatusRejected LinkRequestStatus = "rejected"
)

// IsDecision reports whether s is one of the two terminal statuses a student
// may apply to a pending request.
func (s LinkRequestStatus) IsDecision() bool {
	return s == LinkRequestStatusApproved || s == LinkRequestStatusRejected
}
