package broadcast

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Pranoschal/BookVerse/internal/store"
)

// Listener applies remote mutation events to the local store. It drops its
// own session's events (the action surface already applied them before
// publishing) and contains every decode failure; a malformed slot can never
// take the listener down.
type Listener struct {
	store   *store.Store
	session *SessionID
	refresh func()
	logger  *log.Logger
}

// NewListener wires a listener to its session's store. refresh is invoked
// for REFRESH_BOOKS events and is expected to reload the store through the
// gateway; it may be nil.
func NewListener(st *store.Store, session *SessionID, refresh func(), logger *log.Logger) *Listener {
	if logger == nil {
		logger = log.Default()
	}
	return &Listener{store: st, session: session, refresh: refresh, logger: logger}
}

// Attach subscribes the listener to the medium for the lifetime of the
// session. The returned detach func unsubscribes cleanly; no events are
// handled after it returns.
func (l *Listener) Attach(m Medium) (detach func()) {
	return m.Watch(l.Handle)
}

// Handle processes one medium change. Exported so transports that deliver
// changes themselves (the relay client) can feed the listener directly.
func (l *Listener) Handle(ch Change) {
	if ch.Removed || !strings.HasPrefix(ch.Key, SlotPrefix) {
		return
	}

	env, cmd, err := Decode(ch.Value)
	if err != nil {
		l.logger.Warn("dropping malformed sync event", "key", ch.Key, "err", err)
		return
	}
	if env.Origin == l.session.String() {
		return
	}

	switch c := cmd.(type) {
	case AddCommand:
		// Idempotent against redundant delivery; the origin session already
		// ran the duplicate guard, so dedup here is by id only.
		if l.store.Has(c.Book.ID) {
			return
		}
		l.store.Add(c.Book)
	case UpdateCommand:
		l.store.Replace(c.Book)
	case DeleteCommand:
		l.store.Remove(c.ID)
	case RefreshCommand:
		if l.refresh != nil {
			l.refresh()
		}
	}
}
