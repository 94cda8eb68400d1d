package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"walk-scheduler/internal/api/dto"
	"walk-scheduler/internal/domain"
	"walk-scheduler/internal/scheduling"
)

// OptimizationHandler exposes preview, apply and run history. Defaults
// for optimization parameters come from server configuration and may be
// overridden per request.
type OptimizationHandler struct {
	Optimizer     *scheduling.Optimizer
	DefaultParams domain.RunParams
}

// Preview computes a grouping proposal for one day without touching any
// booking or slot.
func (h *OptimizationHandler) Preview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.PreviewRequest
	if !decodeBody(w, r, &req) {
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	params := h.DefaultParams
	if req.MaxRadiusKm != nil {
		params.MaxRadiusKm = *req.MaxRadiusKm
	}
	if req.MaxTimeGapMinutes != nil {
		params.MaxTimeGapMinutes = *req.MaxTimeGapMinutes
	}
	if req.MaxDogsPerGroup != nil {
		params.MaxDogsPerGroup = *req.MaxDogsPerGroup
	}
	if req.GroupDiscountRate != nil {
		params.GroupDiscountRate = *req.GroupDiscountRate
	}
	if msg := validateParams(params); msg != "" {
		writeError(w, r, http.StatusBadRequest, msg)
		return
	}

	run, err := h.Optimizer.Preview(r.Context(), date, params)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, presentRun(run, true))
}

// Apply replays a previewed run against live bookings and slots.
func (h *OptimizationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.ApplyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.RunID == uuid.Nil {
		writeError(w, r, http.StatusBadRequest, "run_id is required")
		return
	}

	result, err := h.Optimizer.Apply(r.Context(), req.RunID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	res := dto.ApplyResponse{
		RunID:   result.RunID,
		Applied: make([]dto.AppliedGroupResponse, 0, len(result.Applied)),
		Skipped: presentGroupErrors(result.Skipped),
		Failed:  presentGroupErrors(result.Failed),
	}
	for _, g := range result.Applied {
		res.Applied = append(res.Applied, dto.AppliedGroupResponse{
			SlotID:     g.SlotID,
			WalkerID:   g.WalkerID,
			BookingIDs: g.BookingIDs,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

// List returns recent runs, newest first, without proposal details.
func (h *OptimizationHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	runs, err := h.Optimizer.Runs.ListRuns(r.Context(), limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	res := dto.ListRunsResponse{Runs: make([]dto.RunResponse, 0, len(runs))}
	for _, run := range runs {
		res.Runs = append(res.Runs, presentRun(run, false))
	}

	writeJSON(w, r, http.StatusOK, res)
}

// decodeBody enforces a single strict JSON object per request body.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

func validateParams(p domain.RunParams) string {
	if p.MaxRadiusKm <= 0 {
		return "max_radius_km must be positive"
	}
	if p.MaxTimeGapMinutes < 0 {
		return "max_time_gap_minutes must not be negative"
	}
	if p.MaxDogsPerGroup < 1 {
		return "max_dogs_per_group must be at least 1"
	}
	if p.GroupDiscountRate < 0 || p.GroupDiscountRate >= 1 {
		return "group_discount_rate must be in [0, 1)"
	}
	return ""
}

func presentRun(run *domain.OptimizationRun, withProposal bool) dto.RunResponse {
	res := dto.RunResponse{
		ID:               run.ID,
		Date:             run.Date.Format("2006-01-02"),
		Status:           string(run.Status),
		BookingsAnalyzed: run.BookingsAnalyzed,
		BookingsGrouped:  run.BookingsGrouped,
		GroupsCreated:    run.GroupsCreated,
		EstimatedSavings: run.EstimatedSavings,
		Error:            run.Error,
		CreatedAt:        run.CreatedAt,
		FinishedAt:       run.FinishedAt,
	}

	if !withProposal || run.Proposal == nil {
		return res
	}

	res.Groups = make([]dto.GroupResponse, 0, len(run.Proposal.Groups))
	for i := range run.Proposal.Groups {
		res.Groups = append(res.Groups, presentGroup(&run.Proposal.Groups[i]))
	}
	res.Ungrouped = make([]dto.UngroupedResponse, 0, len(run.Proposal.Ungrouped))
	for _, u := range run.Proposal.Ungrouped {
		res.Ungrouped = append(res.Ungrouped, dto.UngroupedResponse{BookingID: u.BookingID, Reason: u.Reason})
	}

	return res
}

func presentGroup(g *domain.Group) dto.GroupResponse {
	res := dto.GroupResponse{
		Members:  make([]dto.GroupMemberResponse, 0, len(g.Bookings)),
		Center:   dto.LocationResponse{Lat: g.Center.Lat, Lng: g.Center.Lng},
		RadiusKm: g.RadiusKm,
		Window:   presentWindow(g.Window),
		Route:    make([]dto.LocationResponse, 0, len(g.Route)),
		DogCount: g.DogCount,
		Score:    g.Score,
	}
	for _, b := range g.Bookings {
		res.Members = append(res.Members, dto.GroupMemberResponse{
			BookingID:  b.ID,
			CustomerID: b.Customer.ID,
			Dogs:       b.DogCount(),
			Price:      b.Price,
		})
	}
	for _, p := range g.Route {
		res.Route = append(res.Route, dto.LocationResponse{Lat: p.Lat, Lng: p.Lng})
	}
	if g.Walker != nil {
		id := g.Walker.ID
		res.WalkerID = &id
		res.WalkerName = g.Walker.Name
	}
	return res
}

func presentGroupErrors(errs []domain.GroupError) []dto.GroupErrorResponse {
	out := make([]dto.GroupErrorResponse, 0, len(errs))
	for _, e := range errs {
		out = append(out, dto.GroupErrorResponse{GroupIndex: e.GroupIndex, Reason: e.Reason})
	}
	return out
}

func presentWindow(w domain.TimeWindow) dto.WindowResponse {
	parts := w.String()
	// String renders "HH:MM-HH:MM"; split once for the response shape.
	return dto.WindowResponse{Start: parts[:5], End: parts[6:]}
}
