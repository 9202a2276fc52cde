package handlers

import (
	"net/http"
	"strconv"

	"github.com/nkhatu/SwissRoundRobinApp-sub000/models"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/services"
)

type GroupHandler struct {
	groupService services.GroupService
	roundService services.RoundService
}

func NewGroupHandler(gs services.GroupService, rs services.RoundService) *GroupHandler {
	return &GroupHandler{groupService: gs, roundService: rs}
}

// readOptionalJSON decodes the body when the client sent one.
func readOptionalJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return readJSON(w, r, dst)
}

func tournamentAndGroup(r *http.Request) (int, int, error) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		return 0, 0, err
	}
	groupNumber, err := getIDFromURL(r, "groupNumber")
	if err != nil {
		return 0, 0, err
	}
	return tournamentID, groupNumber, nil
}

// AllocateHandler godoc
// @Summary      Allocate seeded players into groups
// @Description  group_count 0 uses the tournament setting. reset wipes existing rounds.
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        tournamentID path int true "Tournament ID"
// @Success      201 {object} map[string]interface{}
// @Failure      400 {object} map[string]string
// @Failure      412 {object} map[string]string "no seeds, or rounds exist without reset"
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/groups [post]
func (h *GroupHandler) AllocateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		GroupCount int                `json:"group_count"`
		Method     models.GroupMethod `json:"method"`
		Reset      bool               `json:"reset"`
	}
	if err := readOptionalJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	groups, err := h.groupService.AllocateGroups(r.Context(), id, input.GroupCount, input.Method, input.Reset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"groups": groups}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GroupHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	groups, err := h.groupService.ListGroups(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"groups": groups}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler handles DELETE /tournaments/{tournamentID}/groups?cascade=true
func (h *GroupHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	cascade := false
	if raw := r.URL.Query().Get("cascade"); raw != "" {
		cascade, err = strconv.ParseBool(raw)
		if err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	deletion, err := h.groupService.DeleteGroups(r.Context(), id, cascade)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"deleted": deletion}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateRoundHandler godoc
// @Summary      Generate the next round of a group
// @Description  Round one follows round_one_method (or the tournament default); later rounds pair by standings without rematches.
// @Tags         rounds
// @Accept       json
// @Produce      json
// @Param        tournamentID path int true "Tournament ID"
// @Param        groupNumber  path int true "Group number"
// @Success      201 {object} map[string]interface{}
// @Failure      409 {object} map[string]string "generated concurrently or no valid pairing"
// @Failure      412 {object} map[string]string "previous round incomplete or all rounds generated"
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/groups/{groupNumber}/rounds [post]
func (h *GroupHandler) GenerateRoundHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, groupNumber, err := tournamentAndGroup(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		RoundOneMethod *models.RoundOneMethod `json:"round_one_method"`
	}
	if err := readOptionalJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	round, err := h.roundService.GenerateRound(r.Context(), tournamentID, groupNumber, input.RoundOneMethod)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GroupHandler) ListRoundsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, groupNumber, err := tournamentAndGroup(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rounds, err := h.roundService.ListRounds(r.Context(), tournamentID, groupNumber)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rounds": rounds}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GroupHandler) DeleteCurrentRoundHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, groupNumber, err := tournamentAndGroup(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	deletion, err := h.roundService.DeleteCurrentRound(r.Context(), tournamentID, groupNumber)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"deleted": deletion}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
