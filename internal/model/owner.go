package model

import "time"

// Owner is the proxy entity between a user account and the horses they
// hold.  OwnerID shares the users id space (one owner record per user).
// A record is created explicitly when a seller registers, or on demand
// when a winning bidder first acquires a horse.
type Owner struct {
	OwnerID     uint64    // owners.owner_id (FK to users.id)
	Preferences *string   // owners.preferences (nullable JSON blob)
	Since       time.Time // owners.since
}
