package shift

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryDefaultIdle(t *testing.T) {
	r := NewRegistry()
	sess := r.Peek(1)
	assert.False(t, sess.Started())
	assert.Equal(t, "idle", sess.State())
}

func TestRegistryUpdateMutatesSession(t *testing.T) {
	r := NewRegistry()
	started := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	err := r.Update(1, func(s *Session) error {
		s.StartedAt = started
		s.Awaiting = AwaitingEntryPhoto
		return nil
	})
	require.NoError(t, err)

	sess := r.Peek(1)
	assert.Equal(t, started, sess.StartedAt)
	assert.Equal(t, "awaiting_entry_photo", sess.State())
	// чужая сессия не тронута
	assert.False(t, r.Peek(2).Started())
}

// Два события одного identity никогда не перемежаются: инкременты под
// замком не теряются.
func TestRegistrySerializesPerIdentity(t *testing.T) {
	r := NewRegistry()
	const workers = 16
	const rounds = 50

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				_ = r.Update(7, func(s *Session) error {
					s.EntryPhotoRef += "x"
					return nil
				})
			}
		}()
	}
	wg.Wait()

	assert.Len(t, r.Peek(7).EntryPhotoRef, workers*rounds)
}

func TestRegistrySnapshotSkipsIdle(t *testing.T) {
	r := NewRegistry()
	_ = r.Update(1, func(s *Session) error {
		s.StartedAt = time.Now()
		s.Awaiting = AwaitingEntryPhoto
		return nil
	})
	_ = r.Update(2, func(s *Session) error {
		s.StartedAt = time.Now()
		return nil
	})
	r.Peek(3) // создаёт пустую запись

	snapshot := r.Snapshot()
	require.Len(t, snapshot, 2)
	states := map[int64]string{}
	for _, as := range snapshot {
		states[as.IdentityID] = as.State
	}
	assert.Equal(t, "awaiting_entry_photo", states[1])
	assert.Equal(t, "active", states[2])
}
