package postgres

import (
	"context"
	"database/sql"
	"errors"

	"realty-booking-engine/internal/domain"
	"realty-booking-engine/internal/repository"
)

type listingRepository struct {
	db *sql.DB
}

func NewListingRepository(db *sql.DB) repository.ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) GetByID(ctx context.Context, id int32) (*domain.Listing, error) {
	l := &domain.Listing{}
	query := `SELECT id, owner_id, title, address, created_on FROM listings WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&l.ID, &l.OwnerID, &l.Title, &l.Address, &l.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewError(domain.ErrNotFound, "listing", id, "", "listing not found")
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}
