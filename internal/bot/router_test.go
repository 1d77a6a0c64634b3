package bot

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/dishflow/shiftbot/internal/auth"
	"github.com/dishflow/shiftbot/internal/blob"
	"github.com/dishflow/shiftbot/internal/ledger"
	"github.com/dishflow/shiftbot/internal/models"
	"github.com/dishflow/shiftbot/internal/pkg/clock"
	"github.com/dishflow/shiftbot/internal/shift"
	"github.com/dishflow/shiftbot/internal/telegram"
)

type sentMessage struct {
	chatID int64
	text   string
	kb     *telegram.ReplyKeyboardMarkup
}

type recordingSender struct {
	messages []sentMessage
}

func (s *recordingSender) SendMessage(_ context.Context, chatID int64, text string, kb *telegram.ReplyKeyboardMarkup) error {
	s.messages = append(s.messages, sentMessage{chatID: chatID, text: text, kb: kb})
	return nil
}

func (s *recordingSender) last() sentMessage {
	return s.messages[len(s.messages)-1]
}

type stubFetcher struct{}

func (stubFetcher) FileBytes(_ context.Context, fileID string) ([]byte, error) {
	return []byte("jpeg:" + fileID), nil
}

type stubBlobStore struct {
	n int
}

func (s *stubBlobStore) Upload(_ context.Context, category blob.Category, _ string, _ []byte) (string, error) {
	s.n++
	return fmt.Sprintf("https://drive.google.com/file/d/%s-%d/view", category, s.n), nil
}

type RouterSuite struct {
	suite.Suite
	codes  *ledger.MemoryCodeLedger
	shifts *ledger.MemoryShiftLedger
	sender *recordingSender
	clock  *clock.Mock
	router *Router
	ctx    context.Context
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.codes = ledger.NewMemoryCodeLedger(
		models.ActivationCode{Code: "STAFF-KASSIR-001", Role: models.RoleCashier, Status: models.CodeStatusUnused, Place: "Казан Шаверма"},
		models.ActivationCode{Code: "BAR-BARMEN-007", Role: models.RoleBartender, IdentityID: 99, PersonName: "Пётр Иванов", Status: models.CodeStatusActivated, Place: "Казан Шаверма"},
		models.ActivationCode{Code: "OWNER-BOSS-001", Role: models.RoleOwner, Status: models.CodeStatusUnused, Place: "Казан Шаверма"},
	)
	s.shifts = ledger.NewMemoryShiftLedger()
	s.sender = &recordingSender{}
	s.clock = clock.NewMock(time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC))

	engine := auth.NewEngine(s.codes, nil, time.Second)
	machine := shift.NewMachine(shift.NewRegistry(), s.shifts, &stubBlobStore{}, s.clock, time.Second)
	s.router = NewRouter(engine, machine, s.shifts, s.sender, stubFetcher{}, nil)
	s.ctx = context.Background()
}

func textUpdate(id int64, text string) telegram.Update {
	return telegram.Update{
		Message: &telegram.Message{
			From: &telegram.User{ID: id, FirstName: "Иван", LastName: "Петров"},
			Chat: telegram.Chat{ID: id},
			Text: text,
		},
	}
}

func photoUpdate(id int64) telegram.Update {
	return telegram.Update{
		Message: &telegram.Message{
			From:  &telegram.User{ID: id, FirstName: "Иван", LastName: "Петров"},
			Chat:  telegram.Chat{ID: id},
			Photo: []telegram.PhotoSize{{FileID: "small", Width: 90, Height: 90}, {FileID: "big", Width: 800, Height: 800}},
		},
	}
}

func (s *RouterSuite) TestStartPromptsForCodeWhenUnknown() {
	s.router.HandleUpdate(s.ctx, textUpdate(42, "/start"))

	s.Require().Len(s.sender.messages, 1)
	s.Contains(s.sender.last().text, "Введите персональный код")
}

func (s *RouterSuite) TestCodeActivationRepliesWithStaffKeyboard() {
	s.router.HandleUpdate(s.ctx, textUpdate(42, "STAFF-KASSIR-001"))

	last := s.sender.last()
	s.Contains(last.text, "Код принят")
	s.Contains(last.text, "Кассир")
	s.Require().NotNil(last.kb)
	s.Equal(BtnStartShift, last.kb.Keyboard[0][0].Text)
}

func (s *RouterSuite) TestBoundCodeRejectedForOtherIdentity() {
	s.router.HandleUpdate(s.ctx, textUpdate(7, "BAR-BARMEN-007"))

	s.Contains(s.sender.last().text, "уже привязан к другому пользователю")

	code, err := s.codes.FindByCode(s.ctx, "BAR-BARMEN-007")
	s.Require().NoError(err)
	s.Equal(int64(99), code.IdentityID)
}

func (s *RouterSuite) TestUnknownCodeRejected() {
	s.router.HandleUpdate(s.ctx, textUpdate(42, "STAFF-NONE-404"))
	s.Contains(s.sender.last().text, "Код не найден")
}

func (s *RouterSuite) TestOwnerGetsOwnerKeyboard() {
	s.router.HandleUpdate(s.ctx, textUpdate(5, "OWNER-BOSS-001"))

	last := s.sender.last()
	s.Require().NotNil(last.kb)
	s.Equal(BtnReport, last.kb.Keyboard[0][0].Text)
}

func (s *RouterSuite) TestOwnerCannotStartShift() {
	s.router.HandleUpdate(s.ctx, textUpdate(5, "OWNER-BOSS-001"))
	s.router.HandleUpdate(s.ctx, textUpdate(5, BtnStartShift))

	s.Contains(s.sender.last().text, "Доступно только для персонала")
}

// Полный проход смены через сообщения бота.
func (s *RouterSuite) TestFullShiftConversation() {
	s.router.HandleUpdate(s.ctx, textUpdate(42, "STAFF-KASSIR-001"))

	s.router.HandleUpdate(s.ctx, textUpdate(42, BtnStartShift))
	s.Contains(s.sender.last().text, "Смена начата")

	s.router.HandleUpdate(s.ctx, textUpdate(42, BtnEndShift))
	s.Contains(s.sender.last().text, "Сначала пришлите фото входа")

	s.router.HandleUpdate(s.ctx, photoUpdate(42))
	s.Contains(s.sender.last().text, "Фото входа сохранено")

	s.router.HandleUpdate(s.ctx, textUpdate(42, BtnEndShift))
	s.Contains(s.sender.last().text, "фото выхода")

	s.clock.Advance(8 * time.Hour)
	s.router.HandleUpdate(s.ctx, photoUpdate(42))
	s.Contains(s.sender.last().text, "Смена завершена")
	s.Contains(s.sender.last().text, "8.00 ч")

	records := s.shifts.Records()
	s.Require().Len(records, 1)
	s.Equal(int64(42), records[0].IdentityID)
	s.InDelta(8.0, records[0].DurationHours, 0.001)
}

func (s *RouterSuite) TestDoubleStartRejected() {
	s.router.HandleUpdate(s.ctx, textUpdate(42, "STAFF-KASSIR-001"))
	s.router.HandleUpdate(s.ctx, textUpdate(42, BtnStartShift))
	s.router.HandleUpdate(s.ctx, textUpdate(42, BtnStartShift))

	s.Contains(s.sender.last().text, "Смена уже начата")
}

func (s *RouterSuite) TestPhotoWithoutShift() {
	s.router.HandleUpdate(s.ctx, textUpdate(42, "STAFF-KASSIR-001"))
	s.router.HandleUpdate(s.ctx, photoUpdate(42))

	s.Contains(s.sender.last().text, "Начать смену")
}

func (s *RouterSuite) TestPhotoFromStrangerRejected() {
	s.router.HandleUpdate(s.ctx, photoUpdate(123))
	s.Contains(s.sender.last().text, "только от персонала")
}

func (s *RouterSuite) TestMyShiftsEmpty() {
	s.router.HandleUpdate(s.ctx, textUpdate(42, "STAFF-KASSIR-001"))
	s.router.HandleUpdate(s.ctx, textUpdate(42, BtnMyShifts))

	s.Contains(s.sender.last().text, "пока нет")
}

func (s *RouterSuite) TestReportForOwner() {
	s.router.HandleUpdate(s.ctx, textUpdate(5, "OWNER-BOSS-001"))
	s.router.HandleUpdate(s.ctx, textUpdate(5, BtnReport))

	s.Contains(s.sender.last().text, "Смен за сегодня: 0")
}

func (s *RouterSuite) TestIgnoresMessagesWithoutSender() {
	s.router.HandleUpdate(s.ctx, telegram.Update{})
	s.Empty(s.sender.messages)
}
