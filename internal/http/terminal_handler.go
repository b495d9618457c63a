package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/StuartGrossman/Consigment-sub002/internal/backend"
	"github.com/StuartGrossman/Consigment-sub002/internal/domain"
	"github.com/StuartGrossman/Consigment-sub002/internal/session"
	"github.com/StuartGrossman/Consigment-sub002/internal/settlement"
	"github.com/go-chi/chi/v5"
)

// TerminalHandler exposes the checkout engine to the cashier-facing front
// end over localhost JSON endpoints.
type TerminalHandler struct {
	session *session.Session
	timeout time.Duration
}

func NewTerminalHandler(s *session.Session, timeout time.Duration) *TerminalHandler {
	return &TerminalHandler{
		session: s,
		timeout: timeout,
	}
}

func (h *TerminalHandler) Routes(r chi.Router) {
	r.Post("/scan", h.Scan)
	r.Post("/confirm", h.ConfirmItem)
	r.Post("/skip", h.SkipItem)
	r.Get("/cart", h.GetCart)
	r.Put("/cart/items/{item_id}", h.UpdateQuantity)
	r.Delete("/cart/items/{item_id}", h.RemoveItem)
	r.Post("/review", h.Review)
	r.Post("/back", h.Back)
	r.Post("/close", h.Close)
	r.Post("/shared-cart", h.AttachSharedCart)
	r.Delete("/shared-cart", h.DetachSharedCart)
	r.Get("/customers", h.SearchCustomers)
	r.Post("/pay", h.Pay)
	r.Post("/new-sale", h.NewSale)
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type ScanRequestDTO struct {
	Barcode string `json:"barcode"`
}

type ScanResponseDTO struct {
	Status string               `json:"status"`
	Item   *domain.SellableItem `json:"item,omitempty"`
	Reason string               `json:"reason,omitempty"`
	Cart   *domain.Cart         `json:"cart"`
}

// POST /api/v1/scan
func (h *TerminalHandler) Scan(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ScanRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Barcode == "" {
		respondError(w, http.StatusBadRequest, "missing_barcode", "barcode is required")
		return
	}

	result, err := h.session.Scan(ctx, req.Barcode)
	if err != nil {
		handleSessionError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ScanResponseDTO{
		Status: string(result.Status),
		Item:   result.Item,
		Reason: result.Reason,
		Cart:   h.session.Cart(),
	})
}

// POST /api/v1/confirm
func (h *TerminalHandler) ConfirmItem(w http.ResponseWriter, r *http.Request) {
	if err := h.session.ConfirmPendingItem(); err != nil {
		handleSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.cartView())
}

// POST /api/v1/skip
func (h *TerminalHandler) SkipItem(w http.ResponseWriter, r *http.Request) {
	if err := h.session.SkipPendingItem(); err != nil {
		handleSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.cartView())
}

type CartViewDTO struct {
	State      string                    `json:"state"`
	Cart       *domain.Cart              `json:"cart"`
	Pending    *domain.SellableItem      `json:"pending_item,omitempty"`
	SharedCart *domain.SharedCartSession `json:"shared_cart,omitempty"`
}

func (h *TerminalHandler) cartView() CartViewDTO {
	return CartViewDTO{
		State:      h.session.State().String(),
		Cart:       h.session.Cart(),
		Pending:    h.session.PendingItem(),
		SharedCart: h.session.SharedCart(),
	}
}

// GET /api/v1/cart
func (h *TerminalHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.cartView())
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

// PUT /api/v1/cart/items/{item_id}
func (h *TerminalHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "item_id")
	if itemID == "" {
		respondError(w, http.StatusBadRequest, "missing_item_id", "item_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.session.SetQuantity(itemID, req.Quantity); err != nil {
		handleSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.cartView())
}

// DELETE /api/v1/cart/items/{item_id}
func (h *TerminalHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "item_id")
	if itemID == "" {
		respondError(w, http.StatusBadRequest, "missing_item_id", "item_id is required")
		return
	}

	if err := h.session.RemoveLine(itemID); err != nil {
		handleSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.cartView())
}

// POST /api/v1/review
func (h *TerminalHandler) Review(w http.ResponseWriter, r *http.Request) {
	if err := h.session.ReviewCart(); err != nil {
		handleSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.cartView())
}

// POST /api/v1/back
func (h *TerminalHandler) Back(w http.ResponseWriter, r *http.Request) {
	if err := h.session.BackToScanning(); err != nil {
		handleSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.cartView())
}

type CloseResponseDTO struct {
	Redirected bool   `json:"redirected"`
	State      string `json:"state"`
}

// POST /api/v1/close
func (h *TerminalHandler) Close(w http.ResponseWriter, r *http.Request) {
	result := h.session.Close()
	respondJSON(w, http.StatusOK, CloseResponseDTO{
		Redirected: result.Redirected,
		State:      h.session.State().String(),
	})
}

// POST /api/v1/shared-cart
func (h *TerminalHandler) AttachSharedCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	mirror, err := h.session.AttachSharedCart(ctx)
	if err != nil {
		handleSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mirror)
}

// DELETE /api/v1/shared-cart
func (h *TerminalHandler) DetachSharedCart(w http.ResponseWriter, r *http.Request) {
	if err := h.session.DetachSharedCart(); err != nil {
		handleSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.cartView())
}

type CustomerSearchResponseDTO struct {
	Customers []domain.CustomerMatch `json:"customers"`
}

// GET /api/v1/customers?q=
func (h *TerminalHandler) SearchCustomers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	matches, err := h.session.SearchCustomers(ctx, r.URL.Query().Get("q"))
	if err != nil {
		handleSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, CustomerSearchResponseDTO{Customers: matches})
}

type PayRequestDTO struct {
	Method   string              `json:"method"`
	Amount   float64             `json:"amount"`
	Customer domain.CustomerInfo `json:"customer"`
}

// POST /api/v1/pay
func (h *TerminalHandler) Pay(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req PayRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	receipt, err := h.session.Pay(ctx, req.Customer, domain.PaymentMethod(req.Method), req.Amount)
	if err != nil {
		handleSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, receipt)
}

// POST /api/v1/new-sale
func (h *TerminalHandler) NewSale(w http.ResponseWriter, r *http.Request) {
	if err := h.session.NewSale(); err != nil {
		handleSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.cartView())
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: "",
	})
}

func handleSessionError(w http.ResponseWriter, err error) {
	var unavailable *backend.UnavailableError
	var settlementErr *backend.SettlementError

	switch {
	case errors.Is(err, session.ErrIllegalTransition):
		respondError(w, http.StatusConflict, "illegal_state", err.Error())
	case errors.Is(err, session.ErrPaymentInProgress):
		respondError(w, http.StatusTooManyRequests, "payment_in_progress", err.Error())
	case errors.Is(err, session.ErrLineNotFound),
		errors.Is(err, session.ErrNoPendingItem),
		errors.Is(err, session.ErrNoSharedCart):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, session.ErrQueryTooShort),
		errors.Is(err, session.ErrEmptyCart),
		errors.Is(err, settlement.ErrCustomerNameRequired),
		errors.Is(err, settlement.ErrEmptyCart),
		errors.Is(err, settlement.ErrAmountMismatch),
		errors.Is(err, settlement.ErrUnknownPaymentMethod):
		respondError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
	case errors.As(err, &unavailable):
		respondError(w, http.StatusNotFound, "item_unavailable", unavailable.Reason)
	case errors.As(err, &settlementErr):
		respondError(w, http.StatusUnprocessableEntity, "settlement_failed", settlementErr.Reason)
	case errors.Is(err, session.ErrSharedCartUnreachable):
		respondError(w, http.StatusServiceUnavailable, "shared_cart_unreachable", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
