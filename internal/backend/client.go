package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/StuartGrossman/Consigment-sub002/internal/domain"
)

// Client talks to the store backend over HTTP/JSON. It covers the five
// boundary operations the terminal consumes: item lookup, shared cart
// get-or-create, shared cart snapshot, customer search and settlement.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
	}
}

// UnavailableError covers every reason a barcode cannot be sold right now:
// unknown barcode, item not in a sellable status, item already sold or
// reserved. It is recoverable; scanning continues.
type UnavailableError struct {
	Reason string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("item unavailable: %s", e.Reason)
}

// SettlementError is a backend-reported settlement failure. The sale stays
// in checkout and the cashier may retry.
type SettlementError struct {
	Reason string
}

func (e *SettlementError) Error() string {
	return fmt.Sprintf("settlement failed: %s", e.Reason)
}

type itemLookupResponseDTO struct {
	Available bool                 `json:"available"`
	Message   string               `json:"message,omitempty"`
	Item      *domain.SellableItem `json:"item,omitempty"`
}

// LookupItem resolves a barcode to a sellable item. An unavailable item is
// reported as *UnavailableError, transport problems as plain errors.
func (c *Client) LookupItem(ctx context.Context, barcode string) (*domain.SellableItem, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := fmt.Sprintf("%s/api/v1/items/lookup?barcode=%s", c.baseURL, url.QueryEscape(barcode))
	var resp itemLookupResponseDTO
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("lookup item: %w", err)
	}

	if !resp.Available || resp.Item == nil {
		return nil, &UnavailableError{Reason: resp.Message}
	}
	return resp.Item, nil
}

type getOrCreateSharedCartRequestDTO struct {
	TerminalID string `json:"terminal_id"`
}

// GetOrCreateSharedCart returns the mirror for this terminal, creating one
// if none is active. IsExisting carries any lines already scanned by other
// devices so the terminal can fold them in immediately.
func (c *Client) GetOrCreateSharedCart(ctx context.Context, terminalID string) (*domain.SharedCartSession, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var resp domain.SharedCartSession
	err := c.postJSON(ctx, c.baseURL+"/api/v1/shared-carts", getOrCreateSharedCartRequestDTO{TerminalID: terminalID}, &resp)
	if err != nil {
		return nil, fmt.Errorf("get or create shared cart: %w", err)
	}
	return &resp, nil
}

type sharedCartSnapshotDTO struct {
	Items []domain.RemoteLine `json:"items"`
}

func (c *Client) GetSharedCartSnapshot(ctx context.Context, cartID string) ([]domain.RemoteLine, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var resp sharedCartSnapshotDTO
	u := fmt.Sprintf("%s/api/v1/shared-carts/%s", c.baseURL, url.PathEscape(cartID))
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("shared cart snapshot: %w", err)
	}
	return resp.Items, nil
}

type customerSearchResponseDTO struct {
	Customers []domain.CustomerMatch `json:"customers"`
}

func (c *Client) SearchCustomers(ctx context.Context, query string) ([]domain.CustomerMatch, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := fmt.Sprintf("%s/api/v1/customers/search?q=%s", c.baseURL, url.QueryEscape(query))
	var resp customerSearchResponseDTO
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}
	return resp.Customers, nil
}

type settleLineDTO struct {
	ItemID    string  `json:"item_id"`
	Title     string  `json:"title"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"line_total"`
}

// SettleRequest is the one-shot submission of a validated sale.
type SettleRequest struct {
	AttemptID     string               `json:"attempt_id"`
	Lines         []settleLineDTO      `json:"lines"`
	Customer      domain.CustomerInfo  `json:"customer"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	Amount        float64              `json:"amount"`
	ProcessedBy   string               `json:"processed_by"`
}

type settleResponseDTO struct {
	Receipt *domain.Receipt `json:"receipt,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// NewSettleRequest builds the submission from a cart snapshot. AttemptID is
// generated by the caller so a retried attempt is distinguishable from a
// duplicated one.
func NewSettleRequest(attemptID string, cart *domain.Cart, customer domain.CustomerInfo, payment domain.PaymentAttempt, processedBy string) SettleRequest {
	lines := make([]settleLineDTO, len(cart.Lines))
	for i, l := range cart.Lines {
		lines[i] = settleLineDTO{
			ItemID:    l.Item.ID,
			Title:     l.Item.Title,
			UnitPrice: l.Item.Price,
			Quantity:  l.Quantity,
			LineTotal: l.LineTotal,
		}
	}
	return SettleRequest{
		AttemptID:     attemptID,
		Lines:         lines,
		Customer:      customer,
		PaymentMethod: payment.Method,
		Amount:        payment.Amount,
		ProcessedBy:   processedBy,
	}
}

// SettleSale submits the sale exactly once. A 422 from the backend becomes
// *SettlementError; anything else non-2xx is a transport-level error.
func (c *Client) SettleSale(ctx context.Context, req SettleRequest) (*domain.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal settle request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/sales", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build settle request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("settle sale: %w", err)
	}
	defer httpResp.Body.Close()

	var resp settleResponseDTO
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode settle response: %w", err)
	}

	if httpResp.StatusCode == http.StatusUnprocessableEntity {
		return nil, &SettlementError{Reason: resp.Error}
	}
	if httpResp.StatusCode != http.StatusOK && httpResp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("settle sale: backend returned %d: %s", httpResp.StatusCode, resp.Error)
	}
	if resp.Receipt == nil {
		return nil, fmt.Errorf("settle sale: backend returned no receipt")
	}
	return resp.Receipt, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) postJSON(ctx context.Context, url string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("backend returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
