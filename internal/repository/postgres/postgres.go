package postgres

import (
	"database/sql"

	"realty-booking-engine/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.AppointmentRepository
	repository.PaymentRepository
	repository.RefundRequestRepository
	repository.ListingRepository
	repository.UserRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                      db,
		AppointmentRepository:   NewAppointmentRepository(db),
		PaymentRepository:       NewPaymentRepository(db),
		RefundRequestRepository: NewRefundRequestRepository(db),
		ListingRepository:       NewListingRepository(db),
		UserRepository:          NewUserRepository(db),
		NotificationRepository:  NewNotificationRepository(db),
	}
}
