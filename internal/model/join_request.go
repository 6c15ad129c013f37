package model

import "time"

// Join request status values stored in join_requests.status.
const (
	JoinPending  = "Pending"
	JoinApproved = "Approved"
	JoinRejected = "Rejected"
)

// JoinRequest is an application from a registered user to join the
// platform as a seller.  Approval upgrades the user's role.
type JoinRequest struct {
	ID         uint64     // join_requests.id
	UserID     uint64     // join_requests.user_id
	Motivation string     // join_requests.motivation
	Status     string     // join_requests.status
	CreatedAt  time.Time  // join_requests.created_at
	DecidedAt  *time.Time // join_requests.decided_at (nullable)
}
