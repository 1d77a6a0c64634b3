package models

import "time"

// ShiftRecord — одна завершённая смена, записывается в леджер ровно один раз.
type ShiftRecord struct {
	Date          string  `json:"date"`
	PersonName    string  `json:"person_name"`
	IdentityID    int64   `json:"identity_id"`
	Role          Role    `json:"role"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	DurationHours float64 `json:"duration_hours"`
	EntryPhotoRef string  `json:"entry_photo"`
	ExitPhotoRef  string  `json:"exit_photo"`
	Place         string  `json:"place"`
}

// ShiftColumns — фиксированный порядок колонок листа Смены.
var ShiftColumns = []string{
	"Дата", "Имя", "Telegram ID", "Роль", "Время входа", "Время выхода",
	"Длительность (ч)", "Фото вход", "Фото выход", "Заведение",
}

// CodeColumns — заголовок листа Коды_Доступа.
var CodeColumns = []string{"Код", "Роль", "ФИО", "Telegram ID", "Статус", "Заведение"}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// NewShiftRecord собирает запись смены из границ интервала.
func NewShiftRecord(a RoleAssignment, start, end time.Time, entryRef, exitRef string, durationHours float64) *ShiftRecord {
	return &ShiftRecord{
		Date:          end.Format(DateLayout),
		PersonName:    a.PersonName,
		IdentityID:    a.IdentityID,
		Role:          a.Role,
		StartTime:     start.Format(TimeLayout),
		EndTime:       end.Format(TimeLayout),
		DurationHours: durationHours,
		EntryPhotoRef: entryRef,
		ExitPhotoRef:  exitRef,
		Place:         a.Place,
	}
}
