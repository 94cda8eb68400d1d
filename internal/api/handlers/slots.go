package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"walk-scheduler/internal/api/dto"
	"walk-scheduler/internal/domain"
	"walk-scheduler/internal/scheduling"
)

// SlotHandler exposes slot membership and lifecycle endpoints.
type SlotHandler struct {
	Service      *scheduling.SlotService
	DiscountRate float64
}

func (h *SlotHandler) Join(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.JoinSlotRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.SlotID == uuid.Nil || req.BookingID == uuid.Nil {
		writeError(w, r, http.StatusBadRequest, "slot_id and booking_id are required")
		return
	}

	slot, err := h.Service.Join(r.Context(), req.SlotID, req.BookingID, h.DiscountRate)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, presentSlot(slot))
}

func (h *SlotHandler) Leave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.LeaveSlotRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.SlotID == uuid.Nil || req.BookingID == uuid.Nil {
		writeError(w, r, http.StatusBadRequest, "slot_id and booking_id are required")
		return
	}

	slot, err := h.Service.Leave(r.Context(), req.SlotID, req.BookingID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, presentSlot(slot))
}

func (h *SlotHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.Start)
}

func (h *SlotHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.Complete)
}

func (h *SlotHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.Cancel)
}

func (h *SlotHandler) transition(w http.ResponseWriter, r *http.Request, op func(context.Context, uuid.UUID) (*domain.Slot, error)) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.SlotTransitionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.SlotID == uuid.Nil {
		writeError(w, r, http.StatusBadRequest, "slot_id is required")
		return
	}

	slot, err := op(r.Context(), req.SlotID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, presentSlot(slot))
}

func presentSlot(s *domain.Slot) dto.SlotResponse {
	res := dto.SlotResponse{
		ID:          s.ID,
		WalkerID:    s.WalkerID,
		Date:        s.Date.Format("2006-01-02"),
		Window:      presentWindow(s.Window),
		CurrentDogs: s.CurrentDogs,
		MaxDogs:     s.MaxDogs,
		Status:      string(s.Status),
		IsGroup:     s.IsGroup,
		RadiusKm:    s.RadiusKm,
		BookingIDs:  s.BookingIDs,
	}
	if s.Center != nil {
		res.Center = &dto.LocationResponse{Lat: s.Center.Lat, Lng: s.Center.Lng}
	}
	return res
}
