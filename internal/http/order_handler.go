package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"easyfood/internal/domain/order"
	"easyfood/internal/platform/apperr"
	"easyfood/internal/worker"
)

type submitOrderRequest struct {
	Dish  string  `json:"dish"`
	Notes string  `json:"notes"`
	Cost  float64 `json:"cost"`
}

// @Summary     Submit or update the caller's order
// @Tags        orders
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       id       path      string              true  "Poll ID"
// @Param       request  body      submitOrderRequest  true  "Order payload"
// @Success     200      {object}  session.State
// @Failure     400      {object}  map[string]string  "invalid body"
// @Failure     429      {object}  map[string]string  "rate limited"
// @Router      /api/v1/polls/{id}/orders [post]
func (h *Handler) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req submitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}
	if req.Dish == "" {
		errorResponse(w, apperr.BadRequest("invalid_input", "dish is required", nil))
		return
	}
	if req.Cost < 0 {
		errorResponse(w, apperr.BadRequest("invalid_input", "cost must not be negative", nil))
		return
	}

	pollID := chi.URLParam(r, "id")
	userID := userIDFromCtx(r)

	s, err := h.sessions.Acquire(r.Context(), pollID, userID)
	if err != nil {
		errorResponse(w, err)
		return
	}
	defer s.Release()

	before := s.Ctrl.Snapshot().UserOrder
	s.Ctrl.SubmitOrder(r.Context(), req.Dish, req.Notes, req.Cost)
	after := s.Ctrl.Snapshot().UserOrder

	// Only a write that actually landed counts; a rejected submit leaves the
	// order untouched.
	if after != nil && (before == nil || *before != *after) {
		action := "updated"
		if before == nil {
			action = "created"
		}
		select {
		case h.orderCh <- worker.OrderEvent{PollID: pollID, UserID: userID, Action: action, Cost: req.Cost}:
		default:
		}
	}

	writeJSON(w, http.StatusOK, s.Ctrl.Snapshot())
}

// @Summary     Delete the caller's order
// @Tags        orders
// @Security    BearerAuth
// @Produce     json
// @Param       id   path      string  true  "Poll ID"
// @Success     200  {object}  session.State
// @Router      /api/v1/polls/{id}/orders [delete]
func (h *Handler) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	pollID := chi.URLParam(r, "id")
	userID := userIDFromCtx(r)

	s, err := h.sessions.Acquire(r.Context(), pollID, userID)
	if err != nil {
		errorResponse(w, err)
		return
	}
	defer s.Release()

	had := s.Ctrl.Snapshot().UserOrder != nil
	s.Ctrl.DeleteOrder(r.Context())

	if had && s.Ctrl.Snapshot().UserOrder == nil {
		select {
		case h.orderCh <- worker.OrderEvent{PollID: pollID, UserID: userID, Action: "deleted"}:
		default:
		}
	}

	writeJSON(w, http.StatusOK, s.Ctrl.Snapshot())
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Acquire(r.Context(), chi.URLParam(r, "id"), userIDFromCtx(r))
	if err != nil {
		errorResponse(w, err)
		return
	}
	defer s.Release()

	st := s.Ctrl.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"orders":     st.Orders,
		"total_cost": st.TotalCost,
	})
}

// @Summary     Administrative order override
// @Tags        orders
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       id       path      string        true  "Poll ID"
// @Param       userID   path      string        true  "Order owner's user ID"
// @Param       request  body      order.Update  true  "Partial order fields"
// @Success     200      {object}  session.State
// @Router      /api/v1/polls/{id}/orders/{userID} [patch]
func (h *Handler) handleAdminUpdateOrder(w http.ResponseWriter, r *http.Request) {
	var updates order.Update
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}

	s, err := h.sessions.Acquire(r.Context(), chi.URLParam(r, "id"), userIDFromCtx(r))
	if err != nil {
		errorResponse(w, err)
		return
	}
	defer s.Release()

	s.Ctrl.UpdateOrder(r.Context(), chi.URLParam(r, "userID"), updates)
	writeJSON(w, http.StatusOK, s.Ctrl.Snapshot())
}
