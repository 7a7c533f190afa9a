package models

import "time"

// Subscription status values mirrored from the latest billing outcome.
const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusInactive = "inactive"
)

// Restaurant is the business entity billed through Stripe. The active flag
// follows the latest invoice outcome for the restaurant.
type Restaurant struct {
	ID        int    `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:255;not null" json:"name"`
	Active    bool   `gorm:"not null" json:"active"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClientAccount links a provider-authenticated email to a restaurant.
type ClientAccount struct {
	ID           int    `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	RestaurantID int    `gorm:"index;not null" json:"restaurantId"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Subscription is one-to-one with a Restaurant; the unique index on
// restaurant_id backs the upsert performed by the webhook processor.
type Subscription struct {
	ID                   int    `gorm:"primaryKey" json:"id"`
	RestaurantID         int    `gorm:"uniqueIndex;not null" json:"restaurantId"`
	Status               string `gorm:"size:32;not null" json:"status"`
	StripeSubscriptionID string `gorm:"size:128" json:"stripeSubscriptionId"`
	StripeCustomerID     string `gorm:"size:128" json:"stripeCustomerId"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
