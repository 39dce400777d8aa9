package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"parkhub/internal/apperrors"
	"parkhub/internal/service"
)

type AdminHandler struct {
	Service *service.AdminService
}

func NewAdminHandler(svc *service.AdminService) *AdminHandler {
	return &AdminHandler{Service: svc}
}

func lotID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, apperrors.Validation("invalid parking lot id")
	}
	return id, nil
}

func (h *AdminHandler) CreateLot(w http.ResponseWriter, r *http.Request) {
	var req CreateLotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Validation("invalid request body"))
		return
	}
	lot, err := h.Service.CreateLot(r.Context(), req.Name, req.Location, req.Capacity, req.PricePerHour)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, lot)
}

func (h *AdminHandler) UpdateLot(w http.ResponseWriter, r *http.Request) {
	id, err := lotID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req UpdateLotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Validation("invalid request body"))
		return
	}
	lot, err := h.Service.UpdateLot(r.Context(), id, service.UpdateLotParams{
		Name:         req.Name,
		Location:     req.Location,
		Capacity:     req.Capacity,
		PricePerHour: req.PricePerHour,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lot)
}

func (h *AdminHandler) DeleteLot(w http.ResponseWriter, r *http.Request) {
	id, err := lotID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Service.DeleteLot(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Parking lot deleted."})
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.Service.Dashboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func (h *AdminHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	list, err := h.Service.ListReservations(r.Context(), status, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
