package wizard

import (
	"errors"
	"sync"

	"api_dealership/internal/notify"
	"api_dealership/internal/sales"
)

var (
	// ErrAlreadyOpen is returned when the owner already has an open wizard.
	ErrAlreadyOpen = errors.New("a sale wizard is already open")
	// ErrNoWizard is returned when the owner has no open wizard.
	ErrNoWizard = errors.New("no sale wizard is open")
)

// Session is an open wizard plus the notifications it raised and nobody
// has read yet.
type Session struct {
	*Wizard
	outbox *notify.Recorder
}

// Notifications returns and forgets the pending notifications.
func (s *Session) Notifications() []notify.Notification {
	return s.outbox.Drain()
}

// Registry keeps at most one open wizard per owner.
type Registry struct {
	mu       sync.Mutex
	deps     Deps
	sessions map[string]*Session
}

// NewRegistry creates an empty registry whose wizards share deps.
func NewRegistry(deps Deps) *Registry {
	return &Registry{deps: deps, sessions: map[string]*Session{}}
}

func (r *Registry) start(owner string, open func(w *Wizard)) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[owner]; ok {
		if s.IsOpen() {
			return nil, ErrAlreadyOpen
		}
		delete(r.sessions, owner)
	}

	outbox := &notify.Recorder{}
	deps := r.deps
	deps.Sink = notify.Tee{r.deps.Sink, outbox}
	s := &Session{Wizard: New(deps), outbox: outbox}
	open(s.Wizard)
	r.sessions[owner] = s
	return s, nil
}

// Open starts a new-sale wizard for owner.
func (r *Registry) Open(owner string) (*Session, error) {
	return r.start(owner, func(w *Wizard) { w.Open() })
}

// OpenEdit starts a wizard editing sale for owner.
func (r *Registry) OpenEdit(owner string, sale sales.Sale) (*Session, error) {
	return r.start(owner, func(w *Wizard) { w.OpenEdit(sale) })
}

// Get returns the open wizard of owner. Closed wizards are forgotten.
func (r *Registry) Get(owner string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[owner]
	if !ok {
		return nil, ErrNoWizard
	}
	if !s.IsOpen() {
		delete(r.sessions, owner)
		return nil, ErrNoWizard
	}
	return s, nil
}

// Cancel cancels and forgets the wizard of owner, if any.
func (r *Registry) Cancel(owner string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[owner]
	if !ok {
		return false
	}
	s.Cancel()
	delete(r.sessions, owner)
	return true
}
