package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dishflow/shiftbot/internal/ledger"
	"github.com/dishflow/shiftbot/internal/models"
)

var (
	// ErrNotAuthorized — identity не привязан ни к одному активированному коду.
	ErrNotAuthorized = errors.New("auth: идентификатор не авторизован")
	// ErrCodeNotFound — такого кода нет в таблице.
	ErrCodeNotFound = errors.New("auth: код не найден")
	// ErrCodeAlreadyBound — код уже привязан к другому identity.
	ErrCodeAlreadyBound = errors.New("auth: код уже привязан к другому пользователю")
	// ErrInvalidRole — роль в строке кода вне разрешённого набора.
	ErrInvalidRole = errors.New("auth: неверная роль в коде")
)

// Engine выдаёт роли по кодам доступа: код одноразовый, активируется
// первым обратившимся identity и навсегда привязывается к нему.
type Engine struct {
	codes   ledger.CodeLedger
	cache   Cache
	timeout time.Duration
}

func NewEngine(codes ledger.CodeLedger, cache Cache, timeout time.Duration) *Engine {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Engine{codes: codes, cache: cache, timeout: timeout}
}

// NormalizeCode приводит токен к канонической форме.
func NormalizeCode(token string) string {
	return strings.ToUpper(strings.TrimSpace(token))
}

// ResolveIdentity ищет уже привязанный активированный код. Только чтение.
func (e *Engine) ResolveIdentity(ctx context.Context, identityID int64) (*models.RoleAssignment, error) {
	if e.cache != nil {
		if a, ok := e.cache.Get(ctx, identityID); ok {
			return a, nil
		}
	}

	code, err := e.codes.FindByIdentity(ctx, identityID)
	if errors.Is(err, ledger.ErrNotFound) {
		return nil, ErrNotAuthorized
	}
	if err != nil {
		return nil, fmt.Errorf("леджер кодов недоступен: %w", err)
	}
	if !code.Role.IsValid() {
		return nil, ErrNotAuthorized
	}

	a := &models.RoleAssignment{
		IdentityID: identityID,
		Role:       code.Role,
		Place:      code.Place,
		PersonName: code.PersonName,
	}
	if e.cache != nil {
		e.cache.Set(ctx, a)
	}
	return a, nil
}

// Activate привязывает код к identity. Повторная активация тем же identity
// идемпотентна. Проверка «уже привязан к другому» — best effort: две
// одновременные активации непривязанного кода разными identity не
// изолированы транзакцией, на уровне леджера побеждает последняя запись.
func (e *Engine) Activate(ctx context.Context, codeToken string, identityID int64, personName string) (*models.RoleAssignment, error) {
	token := NormalizeCode(codeToken)

	code, err := e.codes.FindByCode(ctx, token)
	if errors.Is(err, ledger.ErrNotFound) {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("леджер кодов недоступен: %w", err)
	}

	if code.IdentityID != 0 && code.IdentityID != identityID {
		return nil, ErrCodeAlreadyBound
	}
	if !code.Role.IsValid() {
		return nil, ErrInvalidRole
	}

	bindCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	if err := e.codes.Bind(bindCtx, token, identityID, personName); err != nil {
		return nil, fmt.Errorf("не удалось активировать код: %w", err)
	}

	a := &models.RoleAssignment{
		IdentityID: identityID,
		Role:       code.Role,
		Place:      code.Place,
		PersonName: personName,
	}
	if e.cache != nil {
		e.cache.Set(ctx, a)
	}
	return a, nil
}
