// internal/handlers/report.go
package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/dishflow/shiftbot/internal/ledger"
	"github.com/dishflow/shiftbot/internal/models"
	"github.com/dishflow/shiftbot/internal/pkg/response"
)

func parseDateParam(r *http.Request, key string) (time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(models.DateLayout, raw)
}

// GetShiftsHandler — завершённые смены, опционально за период ?from=&to=.
func GetShiftsHandler(shifts ledger.ShiftLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, err := parseDateParam(r, "from")
		if err != nil {
			response.RespondWithError(w, http.StatusBadRequest, "Неверный формат from (ожидается ГГГГ-ММ-ДД)")
			return
		}
		to, err := parseDateParam(r, "to")
		if err != nil {
			response.RespondWithError(w, http.StatusBadRequest, "Неверный формат to (ожидается ГГГГ-ММ-ДД)")
			return
		}

		records, err := shifts.List(r.Context(), from, to)
		if err != nil {
			log.Printf("Ошибка чтения смен: %v", err)
			response.RespondWithError(w, http.StatusInternalServerError, "Леджер смен недоступен")
			return
		}
		if records == nil {
			records = []models.ShiftRecord{}
		}
		response.RespondWithJSON(w, http.StatusOK, records)
	}
}

// ExportShiftsHandler — те же данные в XLSX для бухгалтерии.
func ExportShiftsHandler(shifts ledger.ShiftLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, err := parseDateParam(r, "from")
		if err != nil {
			response.RespondWithError(w, http.StatusBadRequest, "Неверный формат from (ожидается ГГГГ-ММ-ДД)")
			return
		}
		to, err := parseDateParam(r, "to")
		if err != nil {
			response.RespondWithError(w, http.StatusBadRequest, "Неверный формат to (ожидается ГГГГ-ММ-ДД)")
			return
		}

		records, err := shifts.List(r.Context(), from, to)
		if err != nil {
			log.Printf("Ошибка чтения смен: %v", err)
			response.RespondWithError(w, http.StatusInternalServerError, "Леджер смен недоступен")
			return
		}

		f := excelize.NewFile()
		const sheet = "Смены"
		f.SetSheetName("Sheet1", sheet)

		header := make([]interface{}, len(models.ShiftColumns))
		for i, h := range models.ShiftColumns {
			header[i] = h
		}
		f.SetSheetRow(sheet, "A1", &header)

		for i, rec := range records {
			cell, _ := excelize.CoordinatesToCellName(1, i+2)
			row := []interface{}{
				rec.Date, rec.PersonName, rec.IdentityID, string(rec.Role),
				rec.StartTime, rec.EndTime, rec.DurationHours,
				rec.EntryPhotoRef, rec.ExitPhotoRef, rec.Place,
			}
			f.SetSheetRow(sheet, cell, &row)
		}

		filename := fmt.Sprintf("shifts_%s.xlsx", time.Now().Format(models.DateLayout))
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		if err := f.Write(w); err != nil {
			log.Printf("Ошибка выгрузки XLSX: %v", err)
		}
	}
}
