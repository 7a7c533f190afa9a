package accounts

import (
	"context"

	"github.com/menuvio/backoffice/pkg/models"
	"gorm.io/gorm"
)

// Resolver looks up the client account and restaurant behind a validated
// user identity.
type Resolver struct {
	db *gorm.DB
}

// NewResolver creates an account resolver.
func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Resolve returns the client account keyed by email and its linked
// restaurant. Both lookups must succeed: a found account whose restaurant
// is missing is still a total miss, reported as (nil, nil). Lookup errors
// are treated the same as not-found.
func (r *Resolver) Resolve(ctx context.Context, email string) (*models.ClientAccount, *models.Restaurant) {
	var account models.ClientAccount
	if err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&account).Error; err != nil {
		return nil, nil
	}

	var restaurant models.Restaurant
	if err := r.db.WithContext(ctx).
		First(&restaurant, account.RestaurantID).Error; err != nil {
		return nil, nil
	}

	return &account, &restaurant
}
