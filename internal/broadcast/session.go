package broadcast

import (
	"sync"

	"github.com/google/uuid"
)

// SessionID is the identity token for one session, created lazily on first
// use and held for the session's lifetime. It is only ever compared against
// an envelope's origin, never used as a lock.
type SessionID struct {
	once sync.Once
	id   string
}

// String generates the token on first call and returns the same value
// afterwards.
func (s *SessionID) String() string {
	s.once.Do(func() {
		s.id = uuid.NewString()
	})
	return s.id
}
