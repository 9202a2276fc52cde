package handlers

import (
	"errors"
	"net/http"

	"github.com/nkhatu/SwissRoundRobinApp-sub000/middleware"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: ms}
}

// ConfirmHandler godoc
// @Summary      Submit a result confirmation
// @Description  Each player submits the score once; matching submissions confirm the match, differing ones mark it disputed.
// @Tags         matches
// @Accept       json
// @Produce      json
// @Param        matchID path int true "Match ID"
// @Param        body body services.ResultInput true "claimed result"
// @Success      200 {object} map[string]interface{}
// @Failure      403 {object} map[string]string "not a participant"
// @Failure      422 {object} map[string]string "already confirmed or not the current round"
// @Security     BearerAuth
// @Router       /matches/{matchID}/confirm [post]
func (h *MatchHandler) ConfirmHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	playerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to confirm a result")
		return
	}

	var input services.ResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.SubmitConfirmation(r.Context(), matchID, playerID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// OverrideHandler godoc
// @Summary   Set a match result as an admin
// @Tags      matches
// @Accept    json
// @Produce   json
// @Param     matchID path int true "Match ID"
// @Param     body body services.OverrideInput true "result and reason"
// @Success   200 {object} map[string]interface{}
// @Security  BearerAuth
// @Router    /matches/{matchID}/override [post]
func (h *MatchHandler) OverrideHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, err := actorFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.OverrideInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Reason == "" {
		badRequestResponse(w, r, errors.New("reason is required"))
		return
	}

	match, err := h.matchService.OverrideConfirmation(r.Context(), matchID, actor, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ReopenHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, err := actorFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	match, err := h.matchService.ReopenMatch(r.Context(), matchID, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetHandler returns a match. Authenticated callers also see their own confirmation.
func (h *MatchHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	viewerID, _ := middleware.GetUserIDFromContext(r.Context())

	match, err := h.matchService.GetMatch(r.Context(), matchID, viewerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
