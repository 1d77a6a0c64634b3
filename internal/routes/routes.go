package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"

	"github.com/dishflow/shiftbot/config"
	"github.com/dishflow/shiftbot/internal/events"
	"github.com/dishflow/shiftbot/internal/handlers"
	"github.com/dishflow/shiftbot/internal/ledger"
	"github.com/dishflow/shiftbot/internal/pkg/response"
	authService "github.com/dishflow/shiftbot/internal/services/auth"
	"github.com/dishflow/shiftbot/internal/shift"
)

// Setup собирает маршрутизатор HTTP-панели владельца.
func Setup(cfg *config.Config, shifts ledger.ShiftLedger, registry *shift.Registry, hub *events.Hub) *chi.Mux {
	jwtAuth := jwtauth.New("HS256", []byte(cfg.JwtSecret), nil)
	jwtService := authService.NewJWTService(cfg.JwtSecret)
	authHandler := handlers.NewAuthHandler(jwtService, cfg.AdminUsername, cfg.AdminPasswordHash)

	router := chi.NewRouter()
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(jwtauth.Verifier(jwtAuth))

	// Публичные маршруты
	router.Post("/api/auth/login", authHandler.LoginHandler)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Статика: фото при локальном хранилище
	router.Handle("/uploads/*", http.StripPrefix("/uploads", http.FileServer(http.Dir(cfg.UploadsDir))))

	// Маршруты владельца
	router.Group(func(r chi.Router) {
		r.Use(jwtauth.Authenticator(jwtAuth))
		r.Use(ownerOnlyMiddleware())

		r.Get("/api/shifts", handlers.GetShiftsHandler(shifts))
		r.Get("/api/shifts/export", handlers.ExportShiftsHandler(shifts))
		r.Get("/api/shifts/active", handlers.ActiveSessionsHandler(registry))
		r.Get("/api/shifts/events", handlers.ShiftEventsHandler(hub))
	})

	return router
}

// ownerOnlyMiddleware — в панель пускаем только владельца.
func ownerOnlyMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				response.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			claims, err := token.AsMap(r.Context())
			if err != nil {
				response.RespondWithError(w, http.StatusUnauthorized, "Invalid claims")
				return
			}
			if claims["role"] != "owner" {
				response.RespondWithError(w, http.StatusForbidden, "Access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
