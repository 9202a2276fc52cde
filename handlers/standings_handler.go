package handlers

import (
	"net/http"

	"github.com/nkhatu/SwissRoundRobinApp-sub000/models"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/services"
)

type StandingsHandler struct {
	standingsService services.StandingsService
	snapshotService  services.SnapshotService
}

func NewStandingsHandler(ss services.StandingsService, snap services.SnapshotService) *StandingsHandler {
	return &StandingsHandler{standingsService: ss, snapshotService: snap}
}

// GetHandler godoc
// @Summary      Tournament standings
// @Description  Without parameters the live table. round=n stops after round n, group=g restricts to one group.
// @Tags         standings
// @Produce      json
// @Param        tournamentID path int true "Tournament ID"
// @Param        round query int false "after round"
// @Param        group query int false "group number"
// @Success      200 {object} map[string]interface{}
// @Failure      400 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Router       /tournaments/{tournamentID}/standings [get]
func (h *StandingsHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	round, err := queryInt(r, "round", 0)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	group, err := queryInt(r, "group", 0)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	scope := models.StandingsScope{Round: round, Group: group}

	rows, err := h.standingsService.GetStandings(r.Context(), id, scope)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"scope": scope.Kind(), "standings": rows}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StandingsHandler) RoundPointsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	points, err := h.standingsService.RoundPoints(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rounds": points}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StandingsHandler) ByRoundHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	byRound, err := h.standingsService.StandingsByRound(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rounds": byRound}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StandingsHandler) LiveHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	snap, err := h.standingsService.LiveSnapshot(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"live": snap}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ExportSnapshotHandler godoc
// @Summary   Export the live snapshot to object storage
// @Tags      snapshots
// @Produce   json
// @Param     tournamentID path int true "Tournament ID"
// @Success   201 {object} map[string]interface{}
// @Security  BearerAuth
// @Router    /tournaments/{tournamentID}/snapshots [post]
func (h *StandingsHandler) ExportSnapshotHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	info, err := h.snapshotService.Export(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"snapshot": info}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StandingsHandler) LatestSnapshotHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	snap, err := h.snapshotService.Latest(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"live": snap}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
