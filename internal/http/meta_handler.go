package api

import (
	"net/http"
	"time"
)

type latestCommitResponse struct {
	Available bool      `json:"available"`
	SHA       string    `json:"sha,omitempty"`
	Message   string    `json:"message,omitempty"`
	Date      time.Time `json:"date,omitempty"`
	HTMLURL   string    `json:"html_url,omitempty"`
}

// @Summary     Latest commit of the project repository
// @Tags        meta
// @Produce     json
// @Success     200  {object}  latestCommitResponse
// @Router      /api/v1/meta/latest-commit [get]
func (h *Handler) handleLatestCommit(w http.ResponseWriter, r *http.Request) {
	commit, err := h.commits.LatestCommit(r.Context())
	if err != nil {
		// Best effort: the footer renders "no information" instead of an error.
		slogLogger.Debug("latest commit unavailable", "err", err)
		writeJSON(w, http.StatusOK, latestCommitResponse{Available: false})
		return
	}

	writeJSON(w, http.StatusOK, latestCommitResponse{
		Available: true,
		SHA:       commit.SHA,
		Message:   commit.Message,
		Date:      commit.Date,
		HTMLURL:   commit.HTMLURL,
	})
}
