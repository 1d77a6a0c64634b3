// Package bot превращает входящие сообщения Telegram в вызовы
// движка авторизации и автомата смен и отвечает пользователю.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dishflow/shiftbot/internal/auth"
	"github.com/dishflow/shiftbot/internal/events"
	"github.com/dishflow/shiftbot/internal/ledger"
	"github.com/dishflow/shiftbot/internal/models"
	"github.com/dishflow/shiftbot/internal/pkg/response"
	"github.com/dishflow/shiftbot/internal/shift"
	"github.com/dishflow/shiftbot/internal/telegram"
)

// Кнопки клавиатур — тексты совпадают с входящими сообщениями.
const (
	BtnStartShift = "🔓 Начать смену"
	BtnEndShift   = "🔒 Завершить смену"
	BtnMyShifts   = "🗒 Мои последние смены"
	BtnReport     = "📊 Отчёт по сменам"
	BtnIssueCode  = "🔑 Выдать код (manual)"
)

var codePrefixes = []string{"STAFF-", "OWNER-", "BAR-"}

// Sender и FileFetcher — срез клиента Telegram, нужный роутеру.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string, kb *telegram.ReplyKeyboardMarkup) error
}

type FileFetcher interface {
	FileBytes(ctx context.Context, fileID string) ([]byte, error)
}

type Router struct {
	auth    *auth.Engine
	machine *shift.Machine
	shifts  ledger.ShiftLedger
	sender  Sender
	files   FileFetcher
	hub     *events.Hub
}

func NewRouter(authEngine *auth.Engine, machine *shift.Machine, shifts ledger.ShiftLedger, sender Sender, files FileFetcher, hub *events.Hub) *Router {
	return &Router{
		auth:    authEngine,
		machine: machine,
		shifts:  shifts,
		sender:  sender,
		files:   files,
		hub:     hub,
	}
}

func staffKeyboard() *telegram.ReplyKeyboardMarkup {
	return telegram.NewReplyKeyboard(
		[]string{BtnStartShift, BtnEndShift},
		[]string{BtnMyShifts},
	)
}

func ownerKeyboard() *telegram.ReplyKeyboardMarkup {
	return telegram.NewReplyKeyboard(
		[]string{BtnReport, BtnIssueCode},
	)
}

func isCodeMessage(text string) bool {
	token := auth.NormalizeCode(text)
	for _, p := range codePrefixes {
		if strings.HasPrefix(token, p) {
			return true
		}
	}
	return false
}

// HandleUpdate обрабатывает одно входящее событие. События одного
// сотрудника сериализуются замком его сессии в реестре.
func (r *Router) HandleUpdate(ctx context.Context, upd telegram.Update) {
	m := upd.Message
	if m == nil || m.From == nil {
		return
	}
	chatID := m.Chat.ID

	switch {
	case len(m.Photo) > 0:
		r.handlePhoto(ctx, m)
	case m.Text == "/start":
		r.handleStart(ctx, m)
	case isCodeMessage(m.Text):
		r.handleCode(ctx, m)
	case m.Text == BtnStartShift:
		r.handleStartShift(ctx, m)
	case m.Text == BtnEndShift:
		r.handleEndShift(ctx, m)
	case m.Text == BtnMyShifts:
		r.handleMyShifts(ctx, m)
	case m.Text == BtnReport:
		r.handleReport(ctx, m)
	case m.Text == BtnIssueCode:
		r.reply(ctx, chatID, "Добавьте код вручную в лист «Коды_Доступа»: Код, Роль, Заведение.", nil)
	}
}

func (r *Router) reply(ctx context.Context, chatID int64, text string, kb *telegram.ReplyKeyboardMarkup) {
	if err := r.sender.SendMessage(ctx, chatID, text, kb); err != nil {
		log.Printf("Не удалось отправить сообщение в чат %d: %v", chatID, err)
	}
}

// replyErr переводит ошибки ядра в ответы пользователю. Ошибки ввода не
// логируются; недоступность хранилищ логируется и превращается в
// «попробуйте ещё раз» — переход при этом не продвинулся, повтор безопасен.
func (r *Router) replyErr(ctx context.Context, chatID int64, err error) {
	var text string
	switch {
	case errors.Is(err, auth.ErrCodeNotFound):
		text = "❌ Код не найден."
	case errors.Is(err, auth.ErrCodeAlreadyBound):
		text = "⚠️ Код уже привязан к другому пользователю."
	case errors.Is(err, auth.ErrInvalidRole):
		text = "❌ Неверная роль в коде."
	case errors.Is(err, auth.ErrNotAuthorized):
		text = "🔐 Введите персональный код (например, STAFF-KASSIR-XXXX):"
	case errors.Is(err, shift.ErrRoleNotPermitted):
		text = "Доступно только для персонала."
	case errors.Is(err, shift.ErrAlreadyStarted):
		text = "Смена уже начата."
	case errors.Is(err, shift.ErrNotStarted):
		text = "Смена ещё не начата."
	case errors.Is(err, shift.ErrEntryPhotoRequired):
		text = "Сначала пришлите фото входа."
	case errors.Is(err, shift.ErrNoPhotoExpected):
		text = "Сначала нажмите «🔓 Начать смену»."
	default:
		log.Printf("Ошибка хранилища: %v", err)
		text = "⚠️ Не получилось сохранить данные. Попробуйте ещё раз."
	}
	r.reply(ctx, chatID, text, nil)
}

func keyboardFor(role models.Role) *telegram.ReplyKeyboardMarkup {
	if role.IsStaff() {
		return staffKeyboard()
	}
	return ownerKeyboard()
}

func (r *Router) handleStart(ctx context.Context, m *telegram.Message) {
	a, err := r.auth.ResolveIdentity(ctx, m.From.ID)
	if err != nil {
		r.replyErr(ctx, m.Chat.ID, err)
		return
	}
	text := fmt.Sprintf("Добро пожаловать, %s.\nРоль: %s\nТочка: %s",
		a.PersonName, a.Role.Title(), a.Place)
	r.reply(ctx, m.Chat.ID, text, keyboardFor(a.Role))
}

func (r *Router) handleCode(ctx context.Context, m *telegram.Message) {
	a, err := r.auth.Activate(ctx, m.Text, m.From.ID, m.From.FullName())
	if err != nil {
		r.replyErr(ctx, m.Chat.ID, err)
		return
	}
	text := fmt.Sprintf("✅ Код принят. Роль: %s.\nТочка: %s", a.Role.Title(), a.Place)
	r.reply(ctx, m.Chat.ID, text, keyboardFor(a.Role))
}

func (r *Router) handleStartShift(ctx context.Context, m *telegram.Message) {
	a, err := r.auth.ResolveIdentity(ctx, m.From.ID)
	if err != nil {
		r.replyErr(ctx, m.Chat.ID, err)
		return
	}
	if err := r.machine.StartShift(ctx, *a); err != nil {
		r.replyErr(ctx, m.Chat.ID, err)
		return
	}
	if r.hub != nil {
		r.hub.ShiftStarted(*a, time.Now())
	}
	r.reply(ctx, m.Chat.ID, "🟢 Смена начата. Пришлите селфи для фиксации входа.", nil)
}

func (r *Router) handleEndShift(ctx context.Context, m *telegram.Message) {
	a, err := r.auth.ResolveIdentity(ctx, m.From.ID)
	if err != nil {
		r.replyErr(ctx, m.Chat.ID, err)
		return
	}
	if err := r.machine.EndShift(ctx, *a); err != nil {
		r.replyErr(ctx, m.Chat.ID, err)
		return
	}
	r.reply(ctx, m.Chat.ID, "🔴 Пришлите фото выхода (селфи).", nil)
}

func (r *Router) handlePhoto(ctx context.Context, m *telegram.Message) {
	a, err := r.auth.ResolveIdentity(ctx, m.From.ID)
	if err != nil || !a.Role.IsStaff() {
		r.reply(ctx, m.Chat.ID, "Фото принимаются только от персонала.", nil)
		return
	}

	photo, ok := telegram.LargestPhoto(m.Photo)
	if !ok {
		return
	}
	content, err := r.files.FileBytes(ctx, photo.FileID)
	if err != nil {
		r.replyErr(ctx, m.Chat.ID, fmt.Errorf("не удалось скачать фото: %w", err))
		return
	}

	result, err := r.machine.SubmitPhoto(ctx, *a, content)
	if err != nil {
		r.replyErr(ctx, m.Chat.ID, err)
		return
	}

	switch result.Phase {
	case shift.PhotoEntry:
		r.reply(ctx, m.Chat.ID, "✅ Фото входа сохранено. В конце смены нажмите «🔒 Завершить смену».", nil)
	case shift.PhotoExit:
		if r.hub != nil {
			r.hub.ShiftEnded(result.Record)
		}
		text := fmt.Sprintf("✅ Смена завершена. Отработано: %s.",
			response.FormatHours(result.Record.DurationHours))
		r.reply(ctx, m.Chat.ID, text, nil)
	}
}

func (r *Router) handleMyShifts(ctx context.Context, m *telegram.Message) {
	a, err := r.auth.ResolveIdentity(ctx, m.From.ID)
	if err != nil {
		r.replyErr(ctx, m.Chat.ID, err)
		return
	}
	if !a.Role.IsStaff() {
		r.reply(ctx, m.Chat.ID, "Доступно только для персонала.", nil)
		return
	}

	records, err := r.shifts.ListByIdentity(ctx, a.IdentityID, 5)
	if err != nil {
		r.replyErr(ctx, m.Chat.ID, err)
		return
	}
	if len(records) == 0 {
		r.reply(ctx, m.Chat.ID, "Записей о сменах пока нет.", nil)
		return
	}

	var b strings.Builder
	b.WriteString("🗒 Последние смены:\n")
	for _, rec := range records {
		fmt.Fprintf(&b, "%s · %s–%s · %s\n",
			rec.Date, rec.StartTime, rec.EndTime, response.FormatHours(rec.DurationHours))
	}
	r.reply(ctx, m.Chat.ID, b.String(), nil)
}

// handleReport — сводка владельцу за сегодня. Полный отчёт и XLSX — в
// HTTP-панели.
func (r *Router) handleReport(ctx context.Context, m *telegram.Message) {
	a, err := r.auth.ResolveIdentity(ctx, m.From.ID)
	if err != nil {
		r.replyErr(ctx, m.Chat.ID, err)
		return
	}
	if a.Role.IsStaff() {
		r.reply(ctx, m.Chat.ID, "Отчёт доступен только владельцу.", nil)
		return
	}

	today := time.Now()
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	records, err := r.shifts.List(ctx, day, day)
	if err != nil {
		r.replyErr(ctx, m.Chat.ID, err)
		return
	}

	var total float64
	for _, rec := range records {
		total += rec.DurationHours
	}
	text := fmt.Sprintf("📊 Смен за сегодня: %d. Всего отработано: %s.",
		len(records), response.FormatHours(total))
	r.reply(ctx, m.Chat.ID, text, nil)
}
