package ledger

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dishflow/shiftbot/internal/models"
)

// MemoryCodeLedger хранит коды в памяти. Используется тестами и бэкендом
// LEDGER_BACKEND=memory для локального запуска без Google-учётки.
// Поиск — линейный скан, как и в табличном варианте.
type MemoryCodeLedger struct {
	mu   sync.Mutex
	rows []models.ActivationCode
}

func NewMemoryCodeLedger(seed ...models.ActivationCode) *MemoryCodeLedger {
	return &MemoryCodeLedger{rows: append([]models.ActivationCode{}, seed...)}
}

func (l *MemoryCodeLedger) Add(c models.ActivationCode) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows = append(l.rows, c)
}

func (l *MemoryCodeLedger) FindByCode(_ context.Context, code string) (*models.ActivationCode, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.rows {
		if strings.EqualFold(strings.TrimSpace(l.rows[i].Code), code) {
			c := l.rows[i]
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (l *MemoryCodeLedger) FindByIdentity(_ context.Context, identityID int64) (*models.ActivationCode, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.rows {
		if l.rows[i].IdentityID == identityID {
			c := l.rows[i]
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (l *MemoryCodeLedger) Bind(_ context.Context, code string, identityID int64, personName string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.rows {
		if strings.EqualFold(strings.TrimSpace(l.rows[i].Code), code) {
			l.rows[i].PersonName = personName
			l.rows[i].IdentityID = identityID
			l.rows[i].Status = models.CodeStatusActivated
			return nil
		}
	}
	return ErrNotFound
}

// MemoryShiftLedger — записи смен в памяти, только дозапись.
type MemoryShiftLedger struct {
	mu   sync.Mutex
	rows []models.ShiftRecord
}

func NewMemoryShiftLedger() *MemoryShiftLedger {
	return &MemoryShiftLedger{}
}

func (l *MemoryShiftLedger) Append(_ context.Context, rec *models.ShiftRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows = append(l.rows, *rec)
	return nil
}

func (l *MemoryShiftLedger) List(_ context.Context, from, to time.Time) ([]models.ShiftRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []models.ShiftRecord
	for _, r := range l.rows {
		d, err := time.Parse(models.DateLayout, r.Date)
		if err != nil {
			continue
		}
		if !from.IsZero() && d.Before(from) {
			continue
		}
		if !to.IsZero() && d.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (l *MemoryShiftLedger) ListByIdentity(_ context.Context, identityID int64, limit int) ([]models.ShiftRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []models.ShiftRecord
	for i := len(l.rows) - 1; i >= 0; i-- {
		if l.rows[i].IdentityID != identityID {
			continue
		}
		out = append(out, l.rows[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Records возвращает копию всех строк (для тестов).
func (l *MemoryShiftLedger) Records() []models.ShiftRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.ShiftRecord{}, l.rows...)
}
