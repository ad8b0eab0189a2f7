package domain

import "time"

type Notification struct {
	ID         int32             `json:"id"`
	UserID     int32             `json:"userId"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	Attributes map[string]string `json:"attributes,omitempty"`
	IsRead     bool              `json:"isRead"`
	CreatedOn  time.Time         `json:"createdOn"`
}
