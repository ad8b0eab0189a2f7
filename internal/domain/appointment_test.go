package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var noon = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func TestAppointment_IsOutdated(t *testing.T) {
	tests := []struct {
		name string
		date string
		tm   string
		want bool
	}{
		{"past date", "2026-03-14", "", true},
		{"past date with time", "2026-03-10", "18:00", true},
		{"future date", "2026-03-16", "", false},
		{"today whole day", "2026-03-15", "", false},
		{"today earlier time", "2026-03-15", "09:30", true},
		{"today later time", "2026-03-15", "14:00", false},
		{"today exact minute", "2026-03-15", "12:00", false},
		{"unparseable date keeps blocking", "not-a-date", "", false},
		{"unparseable time keeps blocking", "2026-03-15", "noonish", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Appointment{Date: tt.date, Time: tt.tm}
			assert.Equal(t, tt.want, a.IsOutdated(noon))
		})
	}
}

func TestAppointment_Blocks(t *testing.T) {
	tests := []struct {
		name   string
		status AppointmentStatus
		date   string
		count  int32
		want   bool
	}{
		{"pending future blocks", AppointmentStatusPending, "2026-03-20", 0, true},
		{"accepted future blocks", AppointmentStatusAccepted, "2026-03-20", 0, true},
		{"pending outdated never blocks", AppointmentStatusPending, "2026-03-01", 0, false},
		{"accepted outdated never blocks", AppointmentStatusAccepted, "2026-03-01", 0, false},
		{"rejected never blocks", AppointmentStatusRejected, "2026-03-20", 0, false},
		{"seller cancel never blocks", AppointmentStatusCancelledBySeller, "2026-03-20", 0, false},
		{"completed never blocks", AppointmentStatusCompleted, "2026-03-20", 0, false},
		{"buyer cancel below limit blocks", AppointmentStatusCancelledByBuyer, "2026-03-20", 1, true},
		{"buyer cancel at limit releases", AppointmentStatusCancelledByBuyer, "2026-03-20", MaxReinitiations, false},
		{"buyer cancel outdated never blocks", AppointmentStatusCancelledByBuyer, "2026-03-01", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Appointment{Status: tt.status, Date: tt.date, BuyerReinitiationCount: tt.count}
			assert.Equal(t, tt.want, a.Blocks(noon))
		})
	}
}

func TestAppointment_StatusColor(t *testing.T) {
	assert.Equal(t, "yellow", (&Appointment{Status: AppointmentStatusPending}).StatusColor())
	assert.Equal(t, "green", (&Appointment{Status: AppointmentStatusAccepted}).StatusColor())
	assert.Equal(t, "red", (&Appointment{Status: AppointmentStatusRejected}).StatusColor())
	assert.Equal(t, "red", (&Appointment{Status: AppointmentStatusCancelledByBuyer}).StatusColor())
	assert.Equal(t, "red", (&Appointment{Status: AppointmentStatusCancelledBySeller}).StatusColor())
	assert.Equal(t, "blue", (&Appointment{Status: AppointmentStatusCompleted}).StatusColor())
}
