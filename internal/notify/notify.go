// Package notify keeps at most one recurring notification timer per chat
// and delivers a fixed message to that chat on every tick.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/edgard/timerbot/internal/database"
)

// Period is the fixed interval between two ticks of a timer.
const Period = time.Hour

// ErrScheduling is returned by Arm when the timer backend rejects a new timer.
var ErrScheduling = errors.New("failed to schedule timer")

// Handle identifies a timer inside a Backend.
type Handle = uuid.UUID

// Backend is the timer substrate the Scheduler installs recurring jobs on.
type Backend interface {
	// Every installs tick to run once per period. When immediate is true the
	// first run happens right away instead of after the first period.
	Every(name string, period time.Duration, immediate bool, tick func()) (Handle, error)

	// Cancel removes the job so it is never started again.
	Cancel(h Handle) error
}

// Sender delivers a text message to a chat.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Recorder stores the outcome of every delivery attempt.
type Recorder interface {
	RecordDelivery(ctx context.Context, delivery *database.Delivery) error
}

// Confirmation describes the timer installed by a successful Arm.
type Confirmation struct {
	ChatID   int64
	TimerID  uuid.UUID
	Period   time.Duration
	Replaced bool
}

// DeliveryError is logged when a tick fails to reach its chat.
type DeliveryError struct {
	ChatID  int64
	TimerID uuid.UUID
	Err     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to chat %d failed: %v", e.ChatID, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
