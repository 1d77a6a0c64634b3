package shift

import (
	"sync"
	"time"
)

// Awaiting — какое фото ожидается от сотрудника.
type Awaiting int

const (
	AwaitingNone Awaiting = iota
	AwaitingEntryPhoto
	AwaitingExitPhoto
)

// Session — состояние незакрытой смены одного identity. Живёт только в
// памяти процесса: рестарт теряет незакрытые смены, сотрудник начинает
// смену заново.
type Session struct {
	StartedAt     time.Time
	EntryPhotoRef string
	ExitPhotoRef  string
	Awaiting      Awaiting
}

// Started — смена открыта (идёт в любом из промежуточных состояний).
func (s Session) Started() bool {
	return !s.StartedAt.IsZero()
}

// State — имя состояния для снапшота и логов.
func (s Session) State() string {
	switch {
	case !s.Started():
		return "idle"
	case s.Awaiting == AwaitingEntryPhoto:
		return "awaiting_entry_photo"
	case s.Awaiting == AwaitingExitPhoto:
		return "awaiting_exit_photo"
	default:
		return "active"
	}
}

type entry struct {
	mu   sync.Mutex
	sess Session
}

// Registry — реестр сессий по identity. Запись в сессию идёт только под
// замком её identity, поэтому два события одного сотрудника никогда не
// перемежаются; события разных сотрудников идут параллельно.
type Registry struct {
	mu      sync.Mutex
	entries map[int64]*entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[int64]*entry)}
}

func (r *Registry) entryFor(identityID int64) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[identityID]
	if !ok {
		e = &entry{}
		r.entries[identityID] = e
	}
	return e
}

// Update выполняет fn под замком identity. fn может блокироваться на
// I/O (загрузка фото, запись в леджер) — это задерживает только события
// того же сотрудника.
func (r *Registry) Update(identityID int64, fn func(*Session) error) error {
	e := r.entryFor(identityID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(&e.sess)
}

// Peek возвращает копию сессии.
func (r *Registry) Peek(identityID int64) Session {
	e := r.entryFor(identityID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess
}

// ActiveSession — строка снапшота для панели владельца.
type ActiveSession struct {
	IdentityID int64     `json:"identity_id"`
	StartedAt  time.Time `json:"started_at"`
	State      string    `json:"state"`
}

// Snapshot возвращает все незакрытые смены.
func (r *Registry) Snapshot() []ActiveSession {
	r.mu.Lock()
	ids := make([]int64, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	var out []ActiveSession
	for _, id := range ids {
		sess := r.Peek(id)
		if !sess.Started() {
			continue
		}
		out = append(out, ActiveSession{
			IdentityID: id,
			StartedAt:  sess.StartedAt,
			State:      sess.State(),
		})
	}
	return out
}
