package notify

import (
	"sync"
	"time"

	"ai-showcase-client/internal/domain/ports/adapter"
	"ai-showcase-client/internal/infra/metrics"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

var _ adapter.Notifier = (*Toaster)(nil)

// Toast is a notification as shown to the user.
type Toast struct {
	ID string `json:"id"`
	adapter.Notification
	CreatedAt time.Time `json:"createdAt"`
}

// Toaster keeps the most recent notifications until they are dismissed or
// pushed out by newer ones.
type Toaster struct {
	mu     sync.Mutex
	limit  int
	toasts []Toast // newest first
	log    *zerolog.Logger
}

func NewToaster(limit int, logger *zerolog.Logger) *Toaster {
	if limit <= 0 {
		limit = 5
	}
	l := logger.With().Str("component", "Toaster").Logger()
	return &Toaster{limit: limit, log: &l}
}

func (t *Toaster) Notify(n adapter.Notification) {
	if n.Variant == "" {
		n.Variant = adapter.VariantDefault
	}
	toast := Toast{ID: ulid.Make().String(), Notification: n, CreatedAt: time.Now()}

	t.mu.Lock()
	next := append([]Toast{toast}, t.toasts...)
	if len(next) > t.limit {
		next = next[:t.limit]
	}
	t.toasts = next
	t.mu.Unlock()

	metrics.IncNotification(string(n.Variant))
	ev := t.log.Info()
	if n.Variant == adapter.VariantDestructive {
		ev = t.log.Warn()
	}
	ev.Str("title", n.Title).Str("description", n.Description).Msg("notification")
}

// List returns visible toasts, newest first.
func (t *Toaster) List() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Toast(nil), t.toasts...)
}

// Dismiss removes a toast. It reports whether the id was visible.
func (t *Toaster) Dismiss(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, ts := range t.toasts {
		if ts.ID == id {
			t.toasts = append(append([]Toast(nil), t.toasts[:i]...), t.toasts[i+1:]...)
			return true
		}
	}
	return false
}
