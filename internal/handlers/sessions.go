// internal/handlers/sessions.go
package handlers

import (
	"net/http"

	"github.com/dishflow/shiftbot/internal/pkg/response"
	"github.com/dishflow/shiftbot/internal/shift"
)

// ActiveSessionsHandler — незакрытые смены из реестра. Данные живут
// только в памяти процесса: после рестарта список пуст, это не баг.
func ActiveSessionsHandler(registry *shift.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions := registry.Snapshot()
		if sessions == nil {
			sessions = []shift.ActiveSession{}
		}
		response.RespondWithJSON(w, http.StatusOK, sessions)
	}
}
