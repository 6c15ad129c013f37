package model

import "time"

// Role values stored in users.role.  Buyers may bid (once verified),
// sellers may additionally register horses and run auctions, admins may
// do everything.
const (
	RoleAdmin  = "Admin"
	RoleSeller = "Seller"
	RoleBuyer  = "Buyer"
)

// User represents an application user record as stored in the `users`
// table.  The json tags are omitted because these structs are used
// internally by the repository layer; handlers define separate response
// types with appropriate JSON tags.
//
// Fields:
//
//	ID               – primary key identifier of the user.
//	Email            – unique email address.
//	PasswordHash     – bcrypt hashed password, never serialized.
//	FullName         – display name shown on bids and messages.
//	Role             – one of RoleAdmin, RoleSeller, RoleBuyer.
//	IsVerifiedBidder – true once the refundable insurance deposit has
//	                   been paid; required before placing any bid.  Kept
//	                   orthogonal to Role on purpose.
//	CreatedAt        – timestamp of creation.
type User struct {
	ID               uint64    // users.id
	Email            string    // users.email
	PasswordHash     string    // users.password_hash
	FullName         string    // users.full_name
	Role             string    // users.role
	IsVerifiedBidder bool      // users.is_verified_bidder
	CreatedAt        time.Time // users.created_at
}

// Actor is the authenticated caller of an operation, as extracted from
// the access token by the auth middleware.
type Actor struct {
	ID   uint64
	Role string
}

// IsAdmin reports whether the actor carries the Admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
