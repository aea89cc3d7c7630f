package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"easyfood/internal/domain/poll"
	"easyfood/internal/domain/user"
	"easyfood/internal/domain/vote"
	"easyfood/internal/gitmeta"
	jwtpkg "easyfood/internal/platform/jwt"
	"easyfood/internal/session"
	"easyfood/internal/worker"
)

type Handler struct {
	userSvc  *user.Service
	pollSvc  *poll.Service
	voteSvc  *vote.Service
	sessions *session.Manager
	stats    *worker.OrderStatsWorker
	commits  *gitmeta.Client
	jwtMgr   *jwtpkg.Manager
	orderCh  chan<- worker.OrderEvent
	db       *sql.DB
}

func NewRouter(
	userSvc *user.Service,
	pollSvc *poll.Service,
	voteSvc *vote.Service,
	sessions *session.Manager,
	stats *worker.OrderStatsWorker,
	commits *gitmeta.Client,
	jwtMgr *jwtpkg.Manager,
	orderCh chan<- worker.OrderEvent,
	db *sql.DB,
) http.Handler {
	h := &Handler{
		userSvc:  userSvc,
		pollSvc:  pollSvc,
		voteSvc:  voteSvc,
		sessions: sessions,
		stats:    stats,
		commits:  commits,
		jwtMgr:   jwtMgr,
		orderCh:  orderCh,
		db:       db,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(RequestLogger)
	r.Use(CORSMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/ready", h.handleReady)
	r.Get("/swagger/*", httpSwagger.WrapHandler)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		// The SSE stream is mounted outside the Timeout group: a deadline
		// would cut every stream after 60s and tear down its session.
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(jwtMgr))
			r.Get("/polls/{id}/live", h.handleLive)
		})

		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(60 * time.Second))

			r.Post("/auth/register", h.handleRegister)
			r.Post("/auth/login", h.handleLogin)
			r.Get("/meta/latest-commit", h.handleLatestCommit)

			r.Group(func(r chi.Router) {
				r.Use(AuthMiddleware(jwtMgr))

				r.Get("/polls", h.handleListPolls)
				r.Get("/polls/{id}", h.handleGetPoll)
				r.Get("/polls/{id}/notifications", h.handleDrainNotifications)
				r.Get("/polls/{id}/orders", h.handleListOrders)
				r.With(RateLimitOrders(rate.Every(time.Minute/10), 3)).Post("/polls/{id}/orders", h.handleSubmitOrder)
				r.Delete("/polls/{id}/orders", h.handleDeleteOrder)
				r.Post("/polls/{id}/vote", h.handleVote)
				r.Get("/polls/{id}/results", h.handlePollResults)

				r.Group(func(r chi.Router) {
					r.Use(RequireRole("admin"))
					r.Post("/polls", h.handleCreatePoll)
					r.Delete("/polls/{id}", h.handleDeletePoll)
					r.Post("/polls/{id}/close", h.handleCloseOrdering)
					r.Post("/polls/{id}/select", h.handleSelectRestaurant)
					r.Patch("/polls/{id}/orders/{userID}", h.handleAdminUpdateOrder)
					r.Put("/polls/{id}/menu-url", h.handleUpdateMenuURL)
					r.Get("/polls/{id}/stats", h.handlePollStats)
					r.Get("/users", h.handleListUsers)
					r.Patch("/users/{id}/role", h.handleUpdateUserRole)
				})
			})
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		// Memory store, nothing external to wait for.
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error":   "db_unavailable",
			"message": "database not ready",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
