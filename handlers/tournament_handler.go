package handlers

import (
	"errors"
	"net/http"

	"github.com/nkhatu/SwissRoundRobinApp-sub000/middleware"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/models"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
	seedService       services.SeedService
}

func NewTournamentHandler(ts services.TournamentService, ss services.SeedService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: ts,
		seedService:       ss,
	}
}

// CreateHandler godoc
// @Summary   Create a tournament
// @Tags      tournaments
// @Accept    json
// @Produce   json
// @Param     body body services.CreateTournamentInput true "tournament settings"
// @Success   201 {object} map[string]interface{}
// @Failure   400 {object} map[string]string
// @Failure   403 {object} map[string]string
// @Security  BearerAuth
// @Router    /tournaments [post]
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to create tournament")
		return
	}

	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Create(r.Context(), currentUserID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler godoc
// @Summary  Get a tournament
// @Tags     tournaments
// @Produce  json
// @Param    tournamentID path int true "Tournament ID"
// @Success  200 {object} map[string]interface{}
// @Failure  404 {object} map[string]string
// @Router   /tournaments/{tournamentID} [get]
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /tournaments?status=&limit=&offset=
func (h *TournamentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var status *models.TournamentStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := models.TournamentStatus(s)
		status = &st
	}
	limit, err := queryInt(r, "limit", 20)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournaments, err := h.tournamentService.List(r.Context(), status, limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateStatusHandler handles PATCH /tournaments/{tournamentID}/status
func (h *TournamentHandler) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var statusInput struct {
		Status models.TournamentStatus `json:"status"`
	}
	if err := readJSON(w, r, &statusInput); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if statusInput.Status == "" {
		badRequestResponse(w, r, errors.New("status is required"))
		return
	}

	tournament, err := h.tournamentService.UpdateStatus(r.Context(), id, statusInput.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ReplaceSeedsHandler godoc
// @Summary   Replace the seeding list
// @Tags      seeds
// @Accept    json
// @Produce   json
// @Param     tournamentID path int true "Tournament ID"
// @Param     body body []services.SeedInput true "seeded players"
// @Success   200 {object} map[string]interface{}
// @Failure   400 {object} map[string]string
// @Failure   409 {object} map[string]string "seeds are locked once groups exist"
// @Security  BearerAuth
// @Router    /tournaments/{tournamentID}/seeds [put]
func (h *TournamentHandler) ReplaceSeedsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Seeds []services.SeedInput `json:"seeds"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	seeds, err := h.seedService.ReplaceSeeds(r.Context(), id, input.Seeds)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"seeds": seeds}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) ListSeedsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	seeds, err := h.seedService.ListSeeds(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"seeds": seeds}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
