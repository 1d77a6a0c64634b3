package ledger

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/dishflow/shiftbot/internal/models"
)

const (
	sheetShifts = "Смены"
	sheetCodes  = "Коды_Доступа"
)

// SheetsClient — обёртка над Google Sheets для одной таблицы.
type SheetsClient struct {
	srv           *sheets.Service
	spreadsheetID string
}

// NewSheetsClient создаёт клиент по файлу сервисного аккаунта и
// гарантирует наличие листов Смены и Коды_Доступа с заголовками.
func NewSheetsClient(ctx context.Context, credentialsFile, spreadsheetID string) (*SheetsClient, error) {
	srv, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации Google Sheets: %w", err)
	}
	c := &SheetsClient{srv: srv, spreadsheetID: spreadsheetID}

	if err := c.ensureWorksheet(ctx, sheetShifts, models.ShiftColumns); err != nil {
		return nil, err
	}
	if err := c.ensureWorksheet(ctx, sheetCodes, models.CodeColumns); err != nil {
		return nil, err
	}
	return c, nil
}

// ensureWorksheet добавляет лист с заголовком, если его ещё нет.
func (c *SheetsClient) ensureWorksheet(ctx context.Context, title string, header []string) error {
	ss, err := c.srv.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("ошибка чтения таблицы: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return nil
		}
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		}},
	}
	if _, err := c.srv.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("не удалось создать лист %s: %w", title, err)
	}

	row := make([]interface{}, len(header))
	for i, h := range header {
		row[i] = h
	}
	if err := c.appendRow(ctx, title, row); err != nil {
		return err
	}
	log.Printf("✅ Создан лист %q", title)
	return nil
}

func (c *SheetsClient) appendRow(ctx context.Context, title string, row []interface{}) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{row}}
	_, err := c.srv.Spreadsheets.Values.Append(c.spreadsheetID, title+"!A1", vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("не удалось дописать строку в %s: %w", title, err)
	}
	return nil
}

func (c *SheetsClient) readRows(ctx context.Context, rng string) ([][]interface{}, error) {
	resp, err := c.srv.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения %s: %w", rng, err)
	}
	return resp.Values, nil
}

func cell(row []interface{}, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%v", row[i]))
}

// SheetsCodeLedger — лист Коды_Доступа поверх SheetsClient.
// Колонки: Код, Роль, ФИО, Telegram ID, Статус, Заведение.
type SheetsCodeLedger struct {
	client       *SheetsClient
	defaultPlace string
}

func NewSheetsCodeLedger(client *SheetsClient, defaultPlace string) *SheetsCodeLedger {
	return &SheetsCodeLedger{client: client, defaultPlace: defaultPlace}
}

func (l *SheetsCodeLedger) rowToCode(row []interface{}) *models.ActivationCode {
	identity, _ := strconv.ParseInt(cell(row, 3), 10, 64)
	place := cell(row, 5)
	if place == "" {
		place = l.defaultPlace
	}
	return &models.ActivationCode{
		Code:       strings.ToUpper(cell(row, 0)),
		Role:       models.ParseRole(cell(row, 1)),
		PersonName: cell(row, 2),
		IdentityID: identity,
		Status:     models.CodeStatus(strings.ToLower(cell(row, 4))),
		Place:      place,
	}
}

// findCodeRow возвращает номер строки кода (1-based, с учётом заголовка).
func (l *SheetsCodeLedger) findCodeRow(ctx context.Context, code string) (int, []interface{}, error) {
	rows, err := l.client.readRows(ctx, sheetCodes+"!A2:F")
	if err != nil {
		return 0, nil, err
	}
	for i, row := range rows {
		if strings.EqualFold(cell(row, 0), code) {
			return i + 2, row, nil
		}
	}
	return 0, nil, ErrNotFound
}

func (l *SheetsCodeLedger) FindByCode(ctx context.Context, code string) (*models.ActivationCode, error) {
	_, row, err := l.findCodeRow(ctx, code)
	if err != nil {
		return nil, err
	}
	return l.rowToCode(row), nil
}

func (l *SheetsCodeLedger) FindByIdentity(ctx context.Context, identityID int64) (*models.ActivationCode, error) {
	rows, err := l.client.readRows(ctx, sheetCodes+"!A2:F")
	if err != nil {
		return nil, err
	}
	want := strconv.FormatInt(identityID, 10)
	for _, row := range rows {
		if cell(row, 3) == want {
			return l.rowToCode(row), nil
		}
	}
	return nil, ErrNotFound
}

func (l *SheetsCodeLedger) Bind(ctx context.Context, code string, identityID int64, personName string) error {
	idx, _, err := l.findCodeRow(ctx, code)
	if err != nil {
		return err
	}
	rng := fmt.Sprintf("%s!C%d:E%d", sheetCodes, idx, idx)
	vr := &sheets.ValueRange{Values: [][]interface{}{{
		personName,
		strconv.FormatInt(identityID, 10),
		string(models.CodeStatusActivated),
	}}}
	_, err = l.client.srv.Spreadsheets.Values.Update(l.client.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("не удалось активировать код: %w", err)
	}
	return nil
}

// SheetsShiftLedger — лист Смены поверх SheetsClient, только дозапись.
type SheetsShiftLedger struct {
	client *SheetsClient
}

func NewSheetsShiftLedger(client *SheetsClient) *SheetsShiftLedger {
	return &SheetsShiftLedger{client: client}
}

func (l *SheetsShiftLedger) Append(ctx context.Context, rec *models.ShiftRecord) error {
	return l.client.appendRow(ctx, sheetShifts, []interface{}{
		rec.Date,
		rec.PersonName,
		strconv.FormatInt(rec.IdentityID, 10),
		string(rec.Role),
		rec.StartTime,
		rec.EndTime,
		rec.DurationHours,
		rec.EntryPhotoRef,
		rec.ExitPhotoRef,
		rec.Place,
	})
}

func rowToShift(row []interface{}) models.ShiftRecord {
	identity, _ := strconv.ParseInt(cell(row, 2), 10, 64)
	duration, _ := strconv.ParseFloat(strings.ReplaceAll(cell(row, 6), ",", "."), 64)
	return models.ShiftRecord{
		Date:          cell(row, 0),
		PersonName:    cell(row, 1),
		IdentityID:    identity,
		Role:          models.ParseRole(cell(row, 3)),
		StartTime:     cell(row, 4),
		EndTime:       cell(row, 5),
		DurationHours: duration,
		EntryPhotoRef: cell(row, 7),
		ExitPhotoRef:  cell(row, 8),
		Place:         cell(row, 9),
	}
}

func (l *SheetsShiftLedger) List(ctx context.Context, from, to time.Time) ([]models.ShiftRecord, error) {
	rows, err := l.client.readRows(ctx, sheetShifts+"!A2:J")
	if err != nil {
		return nil, err
	}
	var out []models.ShiftRecord
	for _, row := range rows {
		rec := rowToShift(row)
		d, err := time.Parse(models.DateLayout, rec.Date)
		if err != nil {
			continue
		}
		if !from.IsZero() && d.Before(from) {
			continue
		}
		if !to.IsZero() && d.After(to) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (l *SheetsShiftLedger) ListByIdentity(ctx context.Context, identityID int64, limit int) ([]models.ShiftRecord, error) {
	rows, err := l.client.readRows(ctx, sheetShifts+"!A2:J")
	if err != nil {
		return nil, err
	}
	var out []models.ShiftRecord
	for i := len(rows) - 1; i >= 0; i-- {
		rec := rowToShift(rows[i])
		if rec.IdentityID != identityID {
			continue
		}
		out = append(out, rec)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
