package domain

import "time"

// Listing is the minimal projection of a property listing the engine needs:
// ownership for the self-booking check and a title for notifications. Listing
// CRUD and search live outside this service.
type Listing struct {
	ID        int32     `json:"id"`
	OwnerID   int32     `json:"ownerId"`
	Title     string    `json:"title"`
	Address   string    `json:"address,omitempty"`
	CreatedOn time.Time `json:"createdOn"`
}
