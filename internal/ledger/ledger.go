package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/dishflow/shiftbot/internal/models"
)

// ErrNotFound — строка не найдена (код или привязка отсутствуют).
var ErrNotFound = errors.New("ledger: row not found")

// CodeLedger — лист Коды_Доступа. Поиск кода работает без регистра и
// по контракту выполняется линейным сканом строк.
type CodeLedger interface {
	// FindByCode ищет код (уже нормализованный: trim + upper).
	FindByCode(ctx context.Context, code string) (*models.ActivationCode, error)
	// FindByIdentity ищет строку по привязанному Telegram ID.
	FindByIdentity(ctx context.Context, identityID int64) (*models.ActivationCode, error)
	// Bind записывает ФИО, Telegram ID и статус "активирован" в строку кода.
	Bind(ctx context.Context, code string, identityID int64, personName string) error
}

// ShiftLedger — лист Смены, только дозапись. Методы чтения нужны
// отчётам владельца и кнопке «Мои последние смены».
type ShiftLedger interface {
	Append(ctx context.Context, rec *models.ShiftRecord) error
	List(ctx context.Context, from, to time.Time) ([]models.ShiftRecord, error)
	ListByIdentity(ctx context.Context, identityID int64, limit int) ([]models.ShiftRecord, error)
}
