package broadcast

import (
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// SlotPrefix names the keys this protocol owns on the shared medium.
// Listeners ignore everything else.
const SlotPrefix = "bookverse_sync_"

// DefaultSlotTTL is how long a published slot lives before its author
// deletes it. Delivery is fire-and-forget: a listener that misses the
// window misses the event.
const DefaultSlotTTL = time.Second

// Publisher writes mutation events to the shared medium. Publishing never
// blocks the caller and never returns an error; a medium failure is logged
// and dropped.
type Publisher struct {
	medium  Medium
	session *SessionID
	ttl     time.Duration
	logger  *log.Logger
}

// NewPublisher stamps every event with the given session identity. A zero
// ttl falls back to DefaultSlotTTL.
func NewPublisher(medium Medium, session *SessionID, ttl time.Duration, logger *log.Logger) *Publisher {
	if ttl <= 0 {
		ttl = DefaultSlotTTL
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Publisher{medium: medium, session: session, ttl: ttl, logger: logger}
}

// Publish writes one event under a fresh unique slot key and schedules the
// slot's removal after the TTL, whether or not anyone read it.
func (p *Publisher) Publish(t EventType, payload any) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			p.logger.Error("marshal sync payload", "type", t, "err", err)
			return
		}
		raw = b
	}

	env := Envelope{
		Type:      t,
		Payload:   raw,
		Timestamp: time.Now().UnixMilli(),
		Origin:    p.session.String(),
	}
	data, err := json.Marshal(env)
	if err != nil {
		p.logger.Error("marshal sync envelope", "type", t, "err", err)
		return
	}

	key := SlotPrefix + uuid.NewString()
	if err := p.medium.Set(key, data); err != nil {
		p.logger.Warn("sync publish failed", "type", t, "err", err)
		return
	}

	time.AfterFunc(p.ttl, func() {
		if err := p.medium.Delete(key); err != nil {
			p.logger.Debug("sync slot cleanup failed", "key", key, "err", err)
		}
	})
}
