package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Horse is a registered horse profile, keyed by its globally unique
// microchip id.  Ownership is indirected through the Owner entity so a
// user's horse holdings survive role changes.
//
// Fields:
//
//	MicrochipID – primary key, globally unique chip identifier.
//	Name        – display name.
//	Age         – age in years, if known.
//	Gender      – Mare, Stallion, Gelding, Filly or Colt.
//	Breed       – breed label, defaults to "Arabian".
//	ImageUrl    – optional profile image.
//	OwnerID     – current owner (owners.owner_id), nullable for
//	              unclaimed registrations.
//	Price       – asking price while listed for sale.
//	IsForSale   – whether the horse is listed on the sales board; cleared
//	              automatically when an auction completes.
type Horse struct {
	MicrochipID string           // horses.microchip_id
	Name        string           // horses.name
	Age         *int             // horses.age (nullable)
	Gender      *string          // horses.gender (nullable)
	Breed       string           // horses.breed
	ImageUrl    *string          // horses.image_url (nullable)
	OwnerID     *uint64          // horses.owner_id (nullable)
	Price       *decimal.Decimal // horses.price (nullable)
	IsForSale   bool             // horses.is_for_sale
	CreatedAt   time.Time        // horses.created_at
	UpdatedAt   time.Time        // horses.updated_at
}

// HorseProfile is the detail projection of a horse together with its
// owner chain, as returned by the public horse and auction detail views.
type HorseProfile struct {
	Horse
	OwnerUserID *uint64 `json:"owner_user_id"`
	OwnerName   *string `json:"owner_name"`
}
