package database

import "time"

// Delivery statuses.
const (
	DeliveryStatusSent   = "sent"
	DeliveryStatusFailed = "failed"
)

// Delivery records the outcome of one scheduled notification tick.
// It is an audit trail only; timers are never restored from it.
type Delivery struct {
	ID        int64     `db:"id"`
	ChatID    int64     `db:"chat_id"`
	TimerID   string    `db:"timer_id"`
	Status    string    `db:"status"`
	Error     string    `db:"error"`
	CreatedAt time.Time `db:"created_at"`
}
