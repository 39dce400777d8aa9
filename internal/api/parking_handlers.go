package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"parkhub/internal/apperrors"
	"parkhub/internal/service"
)

type ParkingHandler struct {
	Service *service.ParkingService
}

func NewParkingHandler(svc *service.ParkingService) *ParkingHandler {
	return &ParkingHandler{Service: svc}
}

func (h *ParkingHandler) ListLots(w http.ResponseWriter, r *http.Request) {
	lots, err := h.Service.ListLots(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lots)
}

func (h *ParkingHandler) LotDetails(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		writeError(w, apperrors.Validation("invalid parking lot id"))
		return
	}
	details, err := h.Service.LotDetails(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}
