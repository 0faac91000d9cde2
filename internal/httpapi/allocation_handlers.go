package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"cowork-allocator/internal/allocation"
	"cowork-allocator/internal/catalog"
	"cowork-allocator/internal/domain"
	"cowork-allocator/internal/draft"
	"cowork-allocator/internal/pricing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// AllocationHandler exposes the allocation engine over HTTP: catalog and
// allocation views, draft editing, commit, and removal.
type AllocationHandler struct {
	catalog  *catalog.Service
	drafts   *draft.Store
	commits  *allocation.CommitService
	removals *allocation.RemovalService
	api      allocation.AllocationAPI
	logger   *zap.Logger
}

func NewAllocationHandler(
	cat *catalog.Service,
	drafts *draft.Store,
	commits *allocation.CommitService,
	removals *allocation.RemovalService,
	api allocation.AllocationAPI,
	logger *zap.Logger,
) *AllocationHandler {
	return &AllocationHandler{
		catalog:  cat,
		drafts:   drafts,
		commits:  commits,
		removals: removals,
		api:      api,
		logger:   logger,
	}
}

// lineView decorates a draft line with its computed total.
type lineView struct {
	draft.Line
	LineTotal decimal.Decimal `json:"line_total"`
}

// draftView is the wire shape of a draft: the draft itself plus computed
// per-line and aggregate totals. Totals are always derived, never stored.
type draftView struct {
	*draft.AllocationDraft
	Lines       []lineView      `json:"lines"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func newDraftView(d *draft.AllocationDraft) draftView {
	lines := make([]lineView, 0, len(d.Lines))
	for _, l := range d.Lines {
		lines = append(lines, lineView{Line: l, LineTotal: pricing.LineTotal(l)})
	}
	return draftView{
		AllocationDraft: d,
		Lines:           lines,
		TotalAmount:     pricing.DraftTotal(d),
	}
}

type roomsResponse struct {
	BranchID  int64         `json:"branch_id"`
	FetchedAt string        `json:"fetched_at"`
	Rooms     []domain.Room `json:"rooms"`
}

// GetRooms returns the current availability snapshot for a branch.
// GET /allocation/api/v1/rooms?branch_id=&customer_id=
func (h *AllocationHandler) GetRooms(w http.ResponseWriter, r *http.Request) {
	branchID, ok := parseID(r.URL.Query().Get("branch_id"))
	if !ok {
		writeJSON(w, http.StatusOK, Fail("branch_id is required"))
		return
	}
	customerID, _ := parseID(r.URL.Query().Get("customer_id"))

	snap, err := h.catalog.Fetch(r.Context(), branchID, customerID)
	if err != nil {
		h.logger.Error("Failed to fetch room catalog",
			zap.Int64("branch_id", branchID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(roomsResponse{
		BranchID:  snap.BranchID,
		FetchedAt: snap.FetchedAt.Format("2006-01-02T15:04:05Z07:00"),
		Rooms:     snap.Rooms,
	}))
}

// GetAllocations returns committed allocations grouped by customer.
// GET /allocation/api/v1/allocations?branch_id=
func (h *AllocationHandler) GetAllocations(w http.ResponseWriter, r *http.Request) {
	branchID, ok := parseID(r.URL.Query().Get("branch_id"))
	if !ok {
		writeJSON(w, http.StatusOK, Fail("branch_id is required"))
		return
	}

	customers, err := h.api.ListAllocations(r.Context(), branchID)
	if err != nil {
		h.logger.Error("Failed to list allocations",
			zap.Int64("branch_id", branchID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(customers))
}

// GetDraft returns the parked draft for a customer.
func (h *AllocationHandler) GetDraft(w http.ResponseWriter, r *http.Request, customerID int64) {
	d, err := h.drafts.Load(r.Context(), customerID)
	if err != nil {
		if errors.Is(err, draft.ErrNoDraft) {
			writeJSON(w, http.StatusOK, Fail("no draft for customer"))
			return
		}
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(newDraftView(d)))
}

// draftRequest carries the editable header fields of a draft. Pointer fields
// distinguish "not sent" from zero values; absent fields are left untouched.
type draftRequest struct {
	CustomerBranchID *int64              `json:"customer_branch_id"`
	MgmtID           *int64              `json:"mgmt_id"`
	BranchID         *int64              `json:"branch_id"`
	BookingType      *domain.BookingType `json:"booking_type"`
	StartDate        *string             `json:"start_date"`
	EndDate          *string             `json:"end_date"`
	Frequency        *string             `json:"frequency"`
	RecurringInvoice *bool               `json:"recurring_invoice"`
	PaymentTerm      *int                `json:"payment_term"`
}

// PutDraft creates the draft for a customer or updates its header fields.
// Lines are edited through the /lines endpoints, never replaced wholesale.
func (h *AllocationHandler) PutDraft(w http.ResponseWriter, r *http.Request, customerID int64) {
	var req draftRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}

	d, err := h.drafts.Load(r.Context(), customerID)
	if err != nil {
		if !errors.Is(err, draft.ErrNoDraft) {
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		branchID := int64(0)
		if req.BranchID != nil {
			branchID = *req.BranchID
		}
		bookingType := domain.BookingMonthly
		if req.BookingType != nil {
			bookingType = *req.BookingType
		}
		d = draft.New(customerID, branchID, bookingType)
	}

	if req.CustomerBranchID != nil {
		d.CustomerBranchID = *req.CustomerBranchID
	}
	if req.MgmtID != nil {
		d.MgmtID = *req.MgmtID
	}
	if req.BranchID != nil {
		d.BranchID = *req.BranchID
	}
	if req.BookingType != nil {
		d.SetBookingType(*req.BookingType)
	}
	if req.StartDate != nil {
		if *req.StartDate == "" {
			d.StartDate = nil
		} else {
			parsed, err := domain.ParseDate(*req.StartDate)
			if err != nil {
				writeJSON(w, http.StatusOK, Fail(err.Error()))
				return
			}
			d.StartDate = &parsed
		}
	}
	if req.EndDate != nil {
		if *req.EndDate == "" {
			d.EndDate = nil
		} else {
			parsed, err := domain.ParseDate(*req.EndDate)
			if err != nil {
				writeJSON(w, http.StatusOK, Fail(err.Error()))
				return
			}
			d.EndDate = &parsed
		}
	}
	if req.Frequency != nil {
		d.Frequency = *req.Frequency
	}
	if req.RecurringInvoice != nil {
		d.RecurringInvoice = *req.RecurringInvoice
	}
	if req.PaymentTerm != nil {
		d.PaymentTerm = *req.PaymentTerm
	}

	if err := h.drafts.Save(r.Context(), d); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(newDraftView(d)))
}

// DeleteDraft discards the parked draft.
func (h *AllocationHandler) DeleteDraft(w http.ResponseWriter, r *http.Request, customerID int64) {
	if err := h.drafts.Delete(r.Context(), customerID); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(true))
}

type addLineRequest struct {
	RoomID int64 `json:"room_id"`
}

// AddLine adds a room to the draft with quantity 1 and the tariff for the
// draft's booking type. The room must have headroom beyond what the draft
// already holds; the booking server re-checks at commit regardless.
func (h *AllocationHandler) AddLine(w http.ResponseWriter, r *http.Request, customerID int64) {
	var req addLineRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil || req.RoomID <= 0 {
		writeJSON(w, http.StatusOK, Fail("room_id is required"))
		return
	}

	d, err := h.drafts.Load(r.Context(), customerID)
	if err != nil {
		if errors.Is(err, draft.ErrNoDraft) {
			writeJSON(w, http.StatusOK, Fail("no draft for customer"))
			return
		}
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	snap, err := h.catalog.Fetch(r.Context(), d.BranchID, d.CustomerID)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	room, ok := snap.Room(req.RoomID)
	if !ok {
		writeJSON(w, http.StatusOK, Fail("room is no longer available"))
		return
	}
	if snap.Headroom(req.RoomID, d) < 1 {
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("only %d available", room.AvailableQuantity)))
		return
	}

	if err := d.AddLine(room); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	if err := h.drafts.Save(r.Context(), d); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(newDraftView(d)))
}

// lineUpdateRequest carries the editable fields of one draft line. Values
// are applied as sent; range checks happen at commit-time validation so the
// operator can edit freely and see all problems at once.
type lineUpdateRequest struct {
	QuantityBooked  *int             `json:"quantity_booked"`
	Rate            *decimal.Decimal `json:"rate"`
	DiscountApplied *decimal.Decimal `json:"discount_applied"`
}

// UpdateLine edits quantity, rate, or discount on an existing draft line.
func (h *AllocationHandler) UpdateLine(w http.ResponseWriter, r *http.Request, customerID, roomID int64) {
	var req lineUpdateRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}

	d, err := h.drafts.Load(r.Context(), customerID)
	if err != nil {
		if errors.Is(err, draft.ErrNoDraft) {
			writeJSON(w, http.StatusOK, Fail("no draft for customer"))
			return
		}
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	if req.QuantityBooked != nil {
		err = d.UpdateQuantity(roomID, *req.QuantityBooked)
	}
	if err == nil && req.Rate != nil {
		err = d.UpdateRate(roomID, *req.Rate)
	}
	if err == nil && req.DiscountApplied != nil {
		err = d.UpdateDiscount(roomID, *req.DiscountApplied)
	}
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	if err := h.drafts.Save(r.Context(), d); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(newDraftView(d)))
}

// RemoveLine drops a room from the draft. Removing an absent room succeeds.
func (h *AllocationHandler) RemoveLine(w http.ResponseWriter, r *http.Request, customerID, roomID int64) {
	d, err := h.drafts.Load(r.Context(), customerID)
	if err != nil {
		if errors.Is(err, draft.ErrNoDraft) {
			writeJSON(w, http.StatusOK, Fail("no draft for customer"))
			return
		}
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	d.RemoveLine(roomID)

	if err := h.drafts.Save(r.Context(), d); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(newDraftView(d)))
}

// CommitDraft validates the draft against a fresh snapshot and submits it as
// one batch. On success the parked draft is deleted; on rejection or failure
// it is left exactly as the operator built it.
func (h *AllocationHandler) CommitDraft(w http.ResponseWriter, r *http.Request, customerID int64) {
	// 1. Load the parked draft
	d, err := h.drafts.Load(r.Context(), customerID)
	if err != nil {
		if errors.Is(err, draft.ErrNoDraft) {
			writeJSON(w, http.StatusOK, Fail("no draft for customer"))
			return
		}
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	// 2. Fetch the freshest availability for validation
	snap, err := h.catalog.Fetch(r.Context(), d.BranchID, d.CustomerID)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	// 3. Validate and submit
	outcome := h.commits.Submit(r.Context(), d, snap)

	// 4. Only a confirmed commit touches the parked draft
	if outcome.Status == allocation.StatusCommitted {
		if err := h.drafts.Delete(r.Context(), customerID); err != nil {
			h.logger.Warn("Failed to drop draft after commit",
				zap.Int64("customer_id", customerID),
				zap.Error(err),
			)
		}
	}

	writeJSON(w, http.StatusOK, Ok(outcome))
}

type removalResponse struct {
	AllocationID int64  `json:"allocation_id"`
	Status       string `json:"status"`
}

// RequestRemoval stages an allocation for removal pending confirmation.
func (h *AllocationHandler) RequestRemoval(w http.ResponseWriter, r *http.Request, allocationID int64) {
	if !h.removals.Request(allocationID) {
		writeJSON(w, http.StatusOK, Fail("a removal is already pending"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(removalResponse{
		AllocationID: allocationID,
		Status:       "confirm_pending",
	}))
}

// ConfirmRemoval executes a staged removal.
// POST /allocation/api/v1/allocations/{id}/removal/confirm?branch_id=
func (h *AllocationHandler) ConfirmRemoval(w http.ResponseWriter, r *http.Request, allocationID int64) {
	branchID, ok := parseID(r.URL.Query().Get("branch_id"))
	if !ok {
		writeJSON(w, http.StatusOK, Fail("branch_id is required"))
		return
	}
	outcome := h.removals.Confirm(r.Context(), allocationID, branchID)
	writeJSON(w, http.StatusOK, Ok(outcome))
}

// CancelRemoval abandons a staged removal with no side effects.
func (h *AllocationHandler) CancelRemoval(w http.ResponseWriter, r *http.Request, allocationID int64) {
	h.removals.Cancel()
	writeJSON(w, http.StatusOK, Ok(removalResponse{
		AllocationID: allocationID,
		Status:       "cancelled",
	}))
}
