package jobs

import (
	"context"

	"realty-booking-engine/internal/domain"
	"realty-booking-engine/internal/logger"
)

// CompleteElapsedAppointments advances accepted appointments whose scheduled
// slot has passed to completed. Dates and times are stored as ISO strings, so
// lexicographic comparison matches chronological order. Whole-day appointments
// (empty time) complete once the date is over.
func (jr *JobRunner) CompleteElapsedAppointments() {
	jr.runWithRecovery("CompleteElapsedAppointments", func() {
		ctx := context.Background()
		now := jr.clk.Now().UTC()

		query := `
			UPDATE appointments
			SET status = 'completed',
			    updated_on = NOW()
			WHERE status = 'accepted'
			  AND (date < $1 OR (date = $1 AND time <> '' AND time < $2))
			RETURNING id, buyer_id, listing_id
		`

		rows, err := jr.db.QueryContext(ctx, query, now.Format(domain.DateLayout), now.Format(domain.TimeLayout))
		if err != nil {
			logger.Error("Failed to complete elapsed appointments", "error", err)
			return
		}
		defer rows.Close()

		count := 0
		for rows.Next() {
			var id, buyerID, listingID int32
			if err := rows.Scan(&id, &buyerID, &listingID); err != nil {
				logger.Error("Failed to scan completed appointment", "error", err)
				continue
			}
			count++
			logger.Debug("Completed elapsed appointment",
				"appointment_id", id,
				"buyer_id", buyerID,
				"listing_id", listingID)
		}
		if err := rows.Err(); err != nil {
			logger.Error("Error iterating completed appointments", "error", err)
			return
		}

		logger.Info("Completed elapsed appointments", "count", count)
	})
}

// SendAppointmentReminders emails buyers about accepted appointments scheduled
// for today.
func (jr *JobRunner) SendAppointmentReminders() {
	jr.runWithRecovery("SendAppointmentReminders", func() {
		ctx := context.Background()
		today := jr.clk.Now().UTC().Format(domain.DateLayout)

		query := `
			SELECT a.id, a.date, a.time, u.email, l.title
			FROM appointments a
			JOIN users u ON u.id = a.buyer_id
			JOIN listings l ON l.id = a.listing_id
			WHERE a.status = 'accepted'
			  AND a.date = $1
		`

		rows, err := jr.db.QueryContext(ctx, query, today)
		if err != nil {
			logger.Error("Failed to load appointments for reminders", "error", err)
			return
		}
		defer rows.Close()

		type reminder struct {
			id           int32
			date, tm     string
			email, title string
		}
		var reminders []reminder
		for rows.Next() {
			var rem reminder
			if err := rows.Scan(&rem.id, &rem.date, &rem.tm, &rem.email, &rem.title); err != nil {
				logger.Error("Failed to scan reminder row", "error", err)
				continue
			}
			reminders = append(reminders, rem)
		}
		if err := rows.Err(); err != nil {
			logger.Error("Error iterating reminder rows", "error", err)
			return
		}

		sent := 0
		for _, rem := range reminders {
			if err := jr.services.Email.SendAppointmentReminder(ctx, rem.email, rem.title, rem.date, rem.tm); err != nil {
				logger.Error("Failed to send appointment reminder",
					"appointment_id", rem.id, "error", err)
				continue
			}
			sent++
		}

		logger.Info("Sent appointment reminders", "count", sent)
	})
}
