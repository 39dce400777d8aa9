package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"parkhub/internal/apperrors"
	"parkhub/internal/auth"
	"parkhub/internal/service"
)

type ReservationHandler struct {
	Service *service.ReservationService
}

func NewReservationHandler(svc *service.ReservationService) *ReservationHandler {
	return &ReservationHandler{Service: svc}
}

func reservationID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, apperrors.Validation("invalid reservation id")
	}
	return id, nil
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Validation("invalid request body"))
		return
	}
	res, err := h.Service.Reserve(r.Context(), auth.UserID(r.Context()), req.LotID, req.DurationHours, req.VehicleNumber)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *ReservationHandler) Occupy(w http.ResponseWriter, r *http.Request) {
	id, err := reservationID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.Service.Occupy(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReservationHandler) Release(w http.ResponseWriter, r *http.Request) {
	id, err := reservationID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.Service.Release(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReservationHandler) Extend(w http.ResponseWriter, r *http.Request) {
	id, err := reservationID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req ExtendReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Validation("invalid request body"))
		return
	}
	res, err := h.Service.Extend(r.Context(), auth.UserID(r.Context()), id, req.AdditionalHours)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := reservationID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.Service.Cancel(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListReservations(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ReservationHandler) History(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	res, err := h.Service.History(r.Context(), auth.UserID(r.Context()), status, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
