package broadcast

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pranoschal/BookVerse/pkg/models"
)

// recordingMedium captures every Set and Delete for inspection.
type recordingMedium struct {
	mu      sync.Mutex
	sets    map[string][]byte
	deletes []string
}

func newRecordingMedium() *recordingMedium {
	return &recordingMedium{sets: make(map[string][]byte)}
}

func (m *recordingMedium) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets[key] = value
	return nil
}

func (m *recordingMedium) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, key)
	return nil
}

func (m *recordingMedium) Watch(fn func(Change)) (cancel func()) { return func() {} }

func (m *recordingMedium) deleteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.deletes)
}

func TestPublishUsesFreshPrefixedSlots(t *testing.T) {
	medium := newRecordingMedium()
	session := &SessionID{}
	pub := NewPublisher(medium, session, time.Minute, nil)

	pub.Publish(EventAddBook, models.Book{ID: "b1", Title: "One"})
	pub.Publish(EventAddBook, models.Book{ID: "b2", Title: "Two"})

	require.Len(t, medium.sets, 2, "each publish gets its own slot key")
	for key := range medium.sets {
		assert.True(t, strings.HasPrefix(key, SlotPrefix), "slot key %q", key)
	}
}

func TestPublishStampsEnvelope(t *testing.T) {
	medium := newRecordingMedium()
	session := &SessionID{}
	pub := NewPublisher(medium, session, time.Minute, nil)

	before := time.Now().UnixMilli()
	pub.Publish(EventDeleteBook, "b1")
	after := time.Now().UnixMilli()

	require.Len(t, medium.sets, 1)
	for _, raw := range medium.sets {
		var env Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		assert.Equal(t, EventDeleteBook, env.Type)
		assert.Equal(t, session.String(), env.Origin)
		assert.GreaterOrEqual(t, env.Timestamp, before)
		assert.LessOrEqual(t, env.Timestamp, after)

		var id string
		require.NoError(t, json.Unmarshal(env.Payload, &id))
		assert.Equal(t, "b1", id)
	}
}

func TestPublishedSlotsSelfClean(t *testing.T) {
	medium := newRecordingMedium()
	pub := NewPublisher(medium, &SessionID{}, 10*time.Millisecond, nil)

	pub.Publish(EventRefreshBooks, nil)
	pub.Publish(EventRefreshBooks, nil)

	require.Eventually(t, func() bool {
		return medium.deleteCount() == 2
	}, time.Second, 5*time.Millisecond, "slots must be deleted after the TTL")

	medium.mu.Lock()
	defer medium.mu.Unlock()
	for _, key := range medium.deletes {
		_, wasSet := medium.sets[key]
		assert.True(t, wasSet, "cleanup deletes the same key it set")
	}
}

func TestMemoryMediumDrainsToZero(t *testing.T) {
	medium := NewMemoryMedium()
	pub := NewPublisher(medium, &SessionID{}, 10*time.Millisecond, nil)

	for i := 0; i < 5; i++ {
		pub.Publish(EventRefreshBooks, nil)
	}

	require.Eventually(t, func() bool {
		return medium.Len() == 0
	}, time.Second, 5*time.Millisecond, "a quiet medium holds no stale slots")
}

func TestZeroTTLFallsBackToDefault(t *testing.T) {
	pub := NewPublisher(newRecordingMedium(), &SessionID{}, 0, nil)
	assert.Equal(t, DefaultSlotTTL, pub.ttl)
}

func TestSessionIDIsStable(t *testing.T) {
	s := &SessionID{}
	first := s.String()
	assert.NotEmpty(t, first)
	assert.Equal(t, first, s.String())

	other := &SessionID{}
	assert.NotEqual(t, first, other.String())
}
