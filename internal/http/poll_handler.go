package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"easyfood/internal/domain/poll"
	"easyfood/internal/platform/apperr"
)

type createPollRequest struct {
	Title   string                  `json:"title"`
	Options []poll.RestaurantOption `json:"options"`
}

// @Summary     Create a poll
// @Tags        polls
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       request  body      createPollRequest  true  "Poll payload"
// @Success     201      {object}  poll.Poll
// @Failure     400      {object}  map[string]string  "invalid body"
// @Router      /api/v1/polls [post]
func (h *Handler) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	var req createPollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}

	p, err := h.pollSvc.Create(r.Context(), req.Title, userIDFromCtx(r), req.Options)
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", err.Error(), err))
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) handleListPolls(w http.ResponseWriter, r *http.Request) {
	polls, err := h.pollSvc.List(r.Context())
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, polls)
}

// @Summary     Get a poll
// @Tags        polls
// @Security    BearerAuth
// @Produce     json
// @Param       id   path      string  true  "Poll ID"
// @Success     200  {object}  poll.Poll
// @Failure     404  {object}  map[string]string  "not found"
// @Router      /api/v1/polls/{id} [get]
func (h *Handler) handleGetPoll(w http.ResponseWriter, r *http.Request) {
	p, err := h.pollSvc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) handleDeletePoll(w http.ResponseWriter, r *http.Request) {
	if err := h.pollSvc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		errorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type selectRestaurantRequest struct {
	Restaurant string `json:"restaurant"`
}

func (h *Handler) handleSelectRestaurant(w http.ResponseWriter, r *http.Request) {
	var req selectRestaurantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}

	if err := h.pollSvc.SelectRestaurant(r.Context(), chi.URLParam(r, "id"), req.Restaurant); err != nil {
		errorResponse(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary     Close ordering for a poll
// @Tags        polls
// @Security    BearerAuth
// @Produce     json
// @Param       id   path      string  true  "Poll ID"
// @Success     200  {object}  session.State
// @Router      /api/v1/polls/{id}/close [post]
func (h *Handler) handleCloseOrdering(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Acquire(r.Context(), chi.URLParam(r, "id"), userIDFromCtx(r))
	if err != nil {
		errorResponse(w, err)
		return
	}
	defer s.Release()

	s.Ctrl.CloseOrdering(r.Context())
	writeJSON(w, http.StatusOK, s.Ctrl.Snapshot())
}

type updateMenuURLRequest struct {
	URL string `json:"url"`
}

// @Summary     Update the menu link of the selected restaurant
// @Tags        polls
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       id       path      string                true  "Poll ID"
// @Param       request  body      updateMenuURLRequest  true  "Menu link"
// @Success     200      {object}  session.State
// @Router      /api/v1/polls/{id}/menu-url [put]
func (h *Handler) handleUpdateMenuURL(w http.ResponseWriter, r *http.Request) {
	var req updateMenuURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}

	s, err := h.sessions.Acquire(r.Context(), chi.URLParam(r, "id"), userIDFromCtx(r))
	if err != nil {
		errorResponse(w, err)
		return
	}
	defer s.Release()

	s.Ctrl.UpdateMenuURL(r.Context(), req.URL)
	writeJSON(w, http.StatusOK, s.Ctrl.Snapshot())
}

func (h *Handler) handlePollStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stats.Stats(chi.URLParam(r, "id")))
}
