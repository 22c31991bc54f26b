package notify

import (
	"sync"

	"go.uber.org/zap"
)

// Kind classifies a notification.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Warning Kind = "warning"
	Info    Kind = "info"
)

// Notification is a user-facing alert.
type Notification struct {
	Kind    Kind   `json:"kind"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Sink receives notifications. Delivery is fire-and-forget.
type Sink interface {
	Notify(n Notification)
}

// Confirmer asks the user a yes/no question before a destructive action.
// onConfirm runs synchronously, before Confirm returns, only on a yes.
type Confirmer interface {
	Confirm(title, message string, onConfirm func())
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(n Notification)

func (f SinkFunc) Notify(n Notification) { f(n) }

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(title, message string, onConfirm func())

func (f ConfirmFunc) Confirm(title, message string, onConfirm func()) { f(title, message, onConfirm) }

// AutoConfirm says yes to every question. The HTTP layer uses it because
// the DELETE request itself is the user's confirmation.
var AutoConfirm Confirmer = ConfirmFunc(func(_, _ string, onConfirm func()) { onConfirm() })

// ZapSink writes notifications to a zap logger.
type ZapSink struct {
	logger *zap.Logger
}

// NewZapSink creates a sink that logs through logger.
func NewZapSink(logger *zap.Logger) *ZapSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapSink{logger: logger}
}

func (s *ZapSink) Notify(n Notification) {
	fields := []zap.Field{zap.String("kind", string(n.Kind)), zap.String("title", n.Title), zap.String("message", n.Message)}
	switch n.Kind {
	case Error:
		s.logger.Error("notification", fields...)
	case Warning:
		s.logger.Warn("notification", fields...)
	default:
		s.logger.Info("notification", fields...)
	}
}

// Recorder keeps notifications in memory, newest last.
// The HTTP layer drains it into responses; tests inspect it.
type Recorder struct {
	mu   sync.Mutex
	list []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = append(r.list, n)
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.list...)
}

// Drain returns the recorded notifications and forgets them.
func (r *Recorder) Drain() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.list
	r.list = nil
	return out
}

// Last returns the newest notification, if any.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.list) == 0 {
		return Notification{}, false
	}
	return r.list[len(r.list)-1], true
}

// Tee fans a notification out to several sinks.
type Tee []Sink

func (t Tee) Notify(n Notification) {
	for _, s := range t {
		if s != nil {
			s.Notify(n)
		}
	}
}
