package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/edgard/timerbot/internal/database"
)

const recordTimeout = 5 * time.Second

// timer is one armed recurring notification bound to a chat.
type timer struct {
	id      uuid.UUID
	chatID  int64
	handle  Handle
	armedAt time.Time
}

// Scheduler owns the registry of armed timers. It is safe for concurrent use.
type Scheduler struct {
	logger   *slog.Logger
	backend  Backend
	sender   Sender
	recorder Recorder

	welcome         string
	notification    string
	fireImmediately bool
	deliveryTimeout time.Duration

	mu     sync.Mutex // guards timers and locks
	timers map[int64]*timer
	locks  map[int64]*sync.Mutex
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithMessages sets the welcome text returned by Greet and the text sent on every tick.
func WithMessages(welcome, notification string) Option {
	return func(s *Scheduler) {
		if welcome != "" {
			s.welcome = welcome
		}
		if notification != "" {
			s.notification = notification
		}
	}
}

// WithFireImmediately makes new timers tick once right after being armed.
func WithFireImmediately(immediate bool) Option {
	return func(s *Scheduler) { s.fireImmediately = immediate }
}

// WithDeliveryTimeout bounds a single send.
func WithDeliveryTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.deliveryTimeout = d
		}
	}
}

// WithRecorder stores every delivery outcome through r.
func WithRecorder(r Recorder) Option {
	return func(s *Scheduler) { s.recorder = r }
}

// NewScheduler creates a Scheduler with an empty registry.
func NewScheduler(logger *slog.Logger, backend Backend, sender Sender, opts ...Option) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Scheduler{
		logger:          logger.With("component", "notify_scheduler"),
		backend:         backend,
		sender:          sender,
		welcome:         "Hi! I am a bot that sends scheduled messages.",
		notification:    "This is a scheduled message ⏰",
		deliveryTimeout: 30 * time.Second,
		timers:          make(map[int64]*timer),
		locks:           make(map[int64]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Greet returns the welcome text. It never touches the registry.
func (s *Scheduler) Greet(chatID int64) string {
	s.logger.Debug("Greeting chat", "chat_id", chatID)
	return s.welcome
}

// Arm installs a recurring timer for chatID, cancelling the one already armed
// for that chat. After a successful call exactly one timer exists for the chat.
//
// The previous timer is removed before the new one is created, so when the
// backend rejects the new timer the chat is left disarmed and the returned
// error wraps ErrScheduling.
func (s *Scheduler) Arm(ctx context.Context, chatID int64) (Confirmation, error) {
	lock := s.chatLock(chatID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return Confirmation{}, err
	}

	log := s.logger.With("chat_id", chatID)

	s.mu.Lock()
	old := s.timers[chatID]
	delete(s.timers, chatID)
	s.mu.Unlock()

	if old != nil {
		if err := s.backend.Cancel(old.handle); err != nil {
			// The entry is already gone and stale ticks are dropped in onTick.
			log.WarnContext(ctx, "Failed to cancel previous timer", "timer_id", old.id, "error", err)
		}
		log.InfoContext(ctx, "Cancelled previous timer", "timer_id", old.id, "armed_for", time.Since(old.armedAt))
	}

	t := &timer{
		id:      uuid.New(),
		chatID:  chatID,
		armedAt: time.Now(),
	}

	handle, err := s.backend.Every(timerName(chatID), Period, s.fireImmediately, func() { s.onTick(t) })
	if err != nil {
		log.ErrorContext(ctx, "Failed to arm timer, chat left without timer", "replaced", old != nil, "error", err)
		return Confirmation{}, fmt.Errorf("%w for chat %d: %w", ErrScheduling, chatID, err)
	}
	t.handle = handle

	s.mu.Lock()
	s.timers[chatID] = t
	s.mu.Unlock()

	log.InfoContext(ctx, "Timer armed", "timer_id", t.id, "period", Period, "replaced", old != nil)

	return Confirmation{
		ChatID:   chatID,
		TimerID:  t.id,
		Period:   Period,
		Replaced: old != nil,
	}, nil
}

// Armed reports whether chatID currently has a timer.
func (s *Scheduler) Armed(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[chatID]
	return ok
}

// Len returns the number of armed timers.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Shutdown cancels every timer and empties the registry.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	chatIDs := make([]int64, 0, len(s.timers))
	for chatID := range s.timers {
		chatIDs = append(chatIDs, chatID)
	}
	s.mu.Unlock()

	for _, chatID := range chatIDs {
		lock := s.chatLock(chatID)
		lock.Lock()

		s.mu.Lock()
		t := s.timers[chatID]
		delete(s.timers, chatID)
		s.mu.Unlock()

		if t != nil {
			if err := s.backend.Cancel(t.handle); err != nil {
				s.logger.Warn("Failed to cancel timer on shutdown", "chat_id", chatID, "timer_id", t.id, "error", err)
			}
		}
		lock.Unlock()
	}

	s.logger.Info("All timers cancelled", "count", len(chatIDs))
}

// onTick delivers the notification for t unless t has been superseded.
// Delivery errors are logged and recorded, never retried or propagated.
func (s *Scheduler) onTick(t *timer) {
	lock := s.chatLock(t.chatID)
	lock.Lock()
	defer lock.Unlock()

	log := s.logger.With("chat_id", t.chatID, "timer_id", t.id)

	s.mu.Lock()
	current := s.timers[t.chatID]
	s.mu.Unlock()

	if current != t {
		log.Debug("Dropping tick of superseded timer")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.deliveryTimeout)
	defer cancel()

	err := s.sender.Send(ctx, t.chatID, s.notification)
	if err != nil {
		derr := &DeliveryError{ChatID: t.chatID, TimerID: t.id, Err: err}
		log.ErrorContext(ctx, "Scheduled delivery failed", "error", derr)
	} else {
		log.DebugContext(ctx, "Scheduled message delivered")
	}

	s.record(t, err)
}

func (s *Scheduler) record(t *timer, deliveryErr error) {
	if s.recorder == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	delivery := &database.Delivery{
		ChatID:  t.chatID,
		TimerID: t.id.String(),
		Status:  database.DeliveryStatusSent,
	}
	if deliveryErr != nil {
		delivery.Status = database.DeliveryStatusFailed
		delivery.Error = deliveryErr.Error()
	}

	if err := s.recorder.RecordDelivery(ctx, delivery); err != nil {
		s.logger.WarnContext(ctx, "Failed to record delivery", "chat_id", t.chatID, "timer_id", t.id, "error", err)
	}
}

// chatLock returns the mutex serializing Arm and onTick for chatID.
func (s *Scheduler) chatLock(chatID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[chatID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[chatID] = l
	}
	return l
}

func timerName(chatID int64) string {
	return "notify-" + strconv.FormatInt(chatID, 10)
}
