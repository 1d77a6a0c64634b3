// internal/pkg/response/utils.go
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Универсальные JSON-ответы для HTTP-хендлеров.
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	data, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(data)
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]string{"error": message})
}

// FormatHours форматирует длительность смены для сообщений: "7.52 ч".
func FormatHours(hours float64) string {
	return fmt.Sprintf("%.2f ч", hours)
}
