package shift

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dishflow/shiftbot/internal/blob"
	"github.com/dishflow/shiftbot/internal/ledger"
	"github.com/dishflow/shiftbot/internal/models"
	"github.com/dishflow/shiftbot/internal/pkg/clock"
)

var (
	// ErrRoleNotPermitted — действие доступно только персоналу.
	ErrRoleNotPermitted = errors.New("shift: действие доступно только персоналу")
	// ErrAlreadyStarted — смена уже идёт.
	ErrAlreadyStarted = errors.New("shift: смена уже начата")
	// ErrNotStarted — завершать нечего.
	ErrNotStarted = errors.New("shift: смена ещё не начата")
	// ErrEntryPhotoRequired — перед завершением нужно фото входа.
	ErrEntryPhotoRequired = errors.New("shift: сначала нужно фото входа")
	// ErrNoPhotoExpected — фото пришло вне смены.
	ErrNoPhotoExpected = errors.New("shift: фото сейчас не ожидается")
)

// PhotoPhase — что зафиксировало присланное фото.
type PhotoPhase int

const (
	PhotoEntry PhotoPhase = iota + 1
	PhotoExit
)

// PhotoResult — исход SubmitPhoto. Record заполнен только при закрытии смены.
type PhotoResult struct {
	Phase  PhotoPhase
	Ref    string
	Record *models.ShiftRecord
}

// Machine — конечный автомат смены:
// idle → ждём фото входа → смена идёт → ждём фото выхода → закрыта (idle).
// Все переходы выполняются под замком identity в реестре сессий.
type Machine struct {
	registry      *Registry
	shifts        ledger.ShiftLedger
	photos        blob.Store
	clock         clock.Clock
	appendTimeout time.Duration
}

func NewMachine(registry *Registry, shifts ledger.ShiftLedger, photos blob.Store, clk clock.Clock, appendTimeout time.Duration) *Machine {
	if appendTimeout == 0 {
		appendTimeout = 15 * time.Second
	}
	return &Machine{
		registry:      registry,
		shifts:        shifts,
		photos:        photos,
		clock:         clk,
		appendTimeout: appendTimeout,
	}
}

// StartShift открывает смену и переводит сотрудника в ожидание фото входа.
func (m *Machine) StartShift(_ context.Context, a models.RoleAssignment) error {
	if !a.Role.IsStaff() {
		return ErrRoleNotPermitted
	}
	return m.registry.Update(a.IdentityID, func(sess *Session) error {
		if sess.Started() {
			return ErrAlreadyStarted
		}
		*sess = Session{
			StartedAt: m.clock.Now(),
			Awaiting:  AwaitingEntryPhoto,
		}
		return nil
	})
}

// EndShift переводит смену в ожидание фото выхода. Без фото входа смена
// завершиться не может — сотруднику повторно предлагается прислать его.
func (m *Machine) EndShift(_ context.Context, a models.RoleAssignment) error {
	if !a.Role.IsStaff() {
		return ErrRoleNotPermitted
	}
	return m.registry.Update(a.IdentityID, func(sess *Session) error {
		if !sess.Started() {
			return ErrNotStarted
		}
		if sess.EntryPhotoRef == "" {
			sess.Awaiting = AwaitingEntryPhoto
			return ErrEntryPhotoRequired
		}
		sess.Awaiting = AwaitingExitPhoto
		return nil
	})
}

// SubmitPhoto фиксирует фото входа или выхода. Фото выхода сначала
// загружается в хранилище и только потом смена пишется в леджер: если
// запись не удалась, сессия не очищается и повтор события докидывает
// запись без повторной загрузки (ссылка уже в сессии).
func (m *Machine) SubmitPhoto(ctx context.Context, a models.RoleAssignment, photo []byte) (*PhotoResult, error) {
	if !a.Role.IsStaff() {
		return nil, ErrRoleNotPermitted
	}

	var result *PhotoResult
	err := m.registry.Update(a.IdentityID, func(sess *Session) error {
		if !sess.Started() || sess.Awaiting == AwaitingNone {
			return ErrNoPhotoExpected
		}

		switch sess.Awaiting {
		case AwaitingEntryPhoto:
			ref, err := m.photos.Upload(ctx, blob.CategoryEntry, m.photoName("entry", a), photo)
			if err != nil {
				return fmt.Errorf("хранилище фото недоступно: %w", err)
			}
			sess.EntryPhotoRef = ref
			sess.Awaiting = AwaitingNone
			result = &PhotoResult{Phase: PhotoEntry, Ref: ref}
			return nil

		case AwaitingExitPhoto:
			if sess.ExitPhotoRef == "" {
				ref, err := m.photos.Upload(ctx, blob.CategoryExit, m.photoName("exit", a), photo)
				if err != nil {
					return fmt.Errorf("хранилище фото недоступно: %w", err)
				}
				sess.ExitPhotoRef = ref
			}

			endedAt := m.clock.Now()
			duration := RoundHours(endedAt.Sub(sess.StartedAt))
			rec := models.NewShiftRecord(a, sess.StartedAt, endedAt, sess.EntryPhotoRef, sess.ExitPhotoRef, duration)

			appendCtx, cancel := context.WithTimeout(ctx, m.appendTimeout)
			defer cancel()
			if err := m.shifts.Append(appendCtx, rec); err != nil {
				return fmt.Errorf("леджер смен недоступен: %w", err)
			}

			*sess = Session{}
			result = &PhotoResult{Phase: PhotoExit, Ref: rec.ExitPhotoRef, Record: rec}
			return nil
		}
		return ErrNoPhotoExpected
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (m *Machine) photoName(kind string, a models.RoleAssignment) string {
	return fmt.Sprintf("%s_%s_%d_%s.jpg", kind, a.Role, a.IdentityID,
		m.clock.Now().Format("2006-01-02_15-04-05"))
}

// RoundHours — длительность в часах, округлённая до двух знаков.
func RoundHours(d time.Duration) float64 {
	return math.Round(d.Seconds()/3600*100) / 100
}

// Registry отдаёт реестр сессий (снапшот для панели владельца).
func (m *Machine) Registry() *Registry {
	return m.registry
}
