package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"easyfood/internal/platform/apperr"
)

type voteRequest struct {
	Restaurant string `json:"restaurant"`
}

// @Summary     Vote for a restaurant option
// @Tags        votes
// @Security    BearerAuth
// @Accept      json
// @Param       id       path  string       true  "Poll ID"
// @Param       request  body  voteRequest  true  "Vote payload"
// @Success     204
// @Failure     400  {object}  map[string]string  "invalid body or option"
// @Failure     409  {object}  map[string]string  "already voted"
// @Router      /api/v1/polls/{id}/vote [post]
func (h *Handler) handleVote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}
	if req.Restaurant == "" {
		errorResponse(w, apperr.BadRequest("invalid_input", "restaurant is required", nil))
		return
	}

	if err := h.voteSvc.Vote(r.Context(), chi.URLParam(r, "id"), req.Restaurant, userIDFromCtx(r)); err != nil {
		errorResponse(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary     Restaurant vote results
// @Tags        polls
// @Security    BearerAuth
// @Produce     json
// @Param       id   path  string  true  "Poll ID"
// @Success     200  {object}  map[string]any
// @Router      /api/v1/polls/{id}/results [get]
func (h *Handler) handlePollResults(w http.ResponseWriter, r *http.Request) {
	pollID := chi.URLParam(r, "id")

	res, total, err := h.voteSvc.Results(r.Context(), pollID)
	if err != nil {
		errorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"poll_id":     pollID,
		"total_votes": total,
		"options":     res,
	})
}
