package clinicclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	pkgcheckout "github.com/novaderm/clinic-backend/pkg/checkout"
	"github.com/novaderm/clinic-backend/pkg/enums"
)

// TokenSource supplies the bearer token attached to every request. An empty
// token is a fatal precondition failure; no network call is attempted.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource returning a fixed token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

// Config bundles what the client needs to talk to the prescription API.
type Config struct {
	BaseURL    string
	Tokens     TokenSource
	HTTPClient *http.Client
}

// Client orchestrates the fetch-select-submit-invalidate cycle against the
// prescription checkout API. It owns the selection set and the single
// in-flight mutation flag; it never retries on its own.
type Client struct {
	baseURL   string
	tokens    TokenSource
	httpc     *http.Client
	selection *Selection

	inFlight      atomic.Bool
	pendingStale  atomic.Bool
	productsStale atomic.Bool

	mu          sync.Mutex
	lastPending map[int64]Prescription
}

// New builds a client. Tokens is required.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("base url required")
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("token source required")
	}
	httpc := cfg.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		tokens:      cfg.Tokens,
		httpc:       httpc,
		selection:   NewSelection(),
		lastPending: make(map[int64]Prescription),
	}, nil
}

// Selection exposes the selection controller owned by this client.
func (c *Client) Selection() *Selection {
	return c.selection
}

// PendingStale reports whether the pending list should be refetched because
// a mutation has invalidated it. Reading the flag resets it.
func (c *Client) PendingStale() bool {
	return c.pendingStale.Swap(false)
}

// ProductsStale reports whether product/stock views should be refetched.
// Reading the flag resets it.
func (c *Client) ProductsStale() bool {
	return c.productsStale.Swap(false)
}

// ListPendingOptions narrows and pages the pending list.
type ListPendingOptions struct {
	CustomerID *int64
	Page       int
	PerPage    int
}

// PendingPage is one page of the pending read model.
type PendingPage struct {
	Prescriptions []Prescription
	TotalPages    int
}

// ListPending fetches prescriptions still awaiting checkout. Selected IDs
// that no longer appear in the result are dropped from the selection.
func (c *Client) ListPending(ctx context.Context, opts ListPendingOptions) (*PendingPage, error) {
	query := url.Values{}
	if opts.CustomerID != nil {
		query.Set("customer_id", strconv.FormatInt(*opts.CustomerID, 10))
	}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(opts.PerPage))
	}

	var wire wirePendingPage
	if err := c.do(ctx, http.MethodGet, "/checkout/pending", query, nil, &wire, "list pending"); err != nil {
		return nil, err
	}

	page := &PendingPage{
		Prescriptions: make([]Prescription, 0, len(wire.Prescriptions)),
		TotalPages:    wire.TotalPages,
	}
	visible := make([]int64, 0, len(wire.Prescriptions))
	c.mu.Lock()
	for _, w := range wire.Prescriptions {
		p := fromWirePrescription(w)
		page.Prescriptions = append(page.Prescriptions, p)
		visible = append(visible, p.ID)
		c.lastPending[p.ID] = p
	}
	c.mu.Unlock()

	// Only an unfiltered first-page-less fetch sees the whole set; a
	// customer-filtered view must not drop selections it cannot see.
	if opts.CustomerID == nil && opts.Page <= 1 && wire.TotalPages <= 1 {
		c.selection.Prune(visible)
	}
	return page, nil
}

// CheckoutResult is the server's summary of a processed batch.
type CheckoutResult struct {
	Message            string `json:"message"`
	ProductsProcessed  int    `json:"products_processed"`
	ServicesProcessed  int    `json:"services_processed"`
	CheckoutID         string `json:"checkout_id"`
	TotalItemsAffected int    `json:"total_items"`
}

// SubmitCheckout posts the selected IDs as one batch. A second call while
// one is outstanding returns ErrCheckoutInFlight without touching the
// server. On success the selection is cleared and the affected read models
// are marked stale; on failure the selection is left intact.
func (c *Client) SubmitCheckout(ctx context.Context, ids []int64) (*CheckoutResult, error) {
	if len(ids) == 0 {
		return nil, &ValidationError{Reasons: []string{"no prescriptions selected"}}
	}

	if !c.inFlight.CompareAndSwap(false, true) {
		return nil, ErrCheckoutInFlight
	}
	defer c.inFlight.Store(false)

	items, hasProduct := c.knownItems(ids)
	if ok, reasons := pkgcheckout.EvaluateBatch(items); !ok {
		return nil, &ValidationError{Reasons: reasons}
	}

	body := map[string]any{"prescription_ids": ids}
	var result CheckoutResult
	if err := c.do(ctx, http.MethodPost, "/checkout", nil, body, &result, "submit checkout"); err != nil {
		return nil, err
	}

	c.selection.Clear()
	c.pendingStale.Store(true)
	if hasProduct || result.ProductsProcessed > 0 {
		c.productsStale.Store(true)
	}
	return &result, nil
}

// UpdateStatusRequest targets one prescription or a customer's batch. Type
// optionally narrows a customer-scoped update to products or services.
type UpdateStatusRequest struct {
	PrescriptionID *int64  `json:"prescription_id,omitempty"`
	CustomerID     *int64  `json:"customer_id,omitempty"`
	Type           *string `json:"type,omitempty"`
	Status         string  `json:"status"`
}

// UpdateStatusResult reports the transition outcome.
type UpdateStatusResult struct {
	Message    string  `json:"message"`
	UpdatedIDs []int64 `json:"updated_ids"`
}

// UpdateStatus performs a single-item or customer-scoped transition outside
// full checkout. Same failure semantics as SubmitCheckout.
func (c *Client) UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*UpdateStatusResult, error) {
	var result UpdateStatusResult
	if err := c.do(ctx, http.MethodPost, "/checkout/update-status", nil, req, &result, "update status"); err != nil {
		return nil, err
	}

	c.pendingStale.Store(true)
	if req.Status == enums.PrescriptionStatusSold.String() {
		c.productsStale.Store(true)
	}
	return &result, nil
}

// ProductPage is one page of the catalog read model.
type ProductPage struct {
	Products   []Product
	TotalPages int
}

// ListProducts fetches a catalog page, for stock displays.
func (c *Client) ListProducts(ctx context.Context, page int) (*ProductPage, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}

	var wire wireProductPage
	if err := c.do(ctx, http.MethodGet, "/products", query, nil, &wire, "list products"); err != nil {
		return nil, err
	}

	result := &ProductPage{
		Products:   make([]Product, 0, len(wire.Products)),
		TotalPages: wire.TotalPages,
	}
	for _, w := range wire.Products {
		result.Products = append(result.Products, fromWireProduct(w))
	}
	return result, nil
}

func (c *Client) knownItems(ids []int64) ([]pkgcheckout.Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]pkgcheckout.Item, 0, len(ids))
	hasProduct := false
	for _, id := range ids {
		p, ok := c.lastPending[id]
		if !ok {
			// Never fetched; the server's re-check is authoritative.
			continue
		}
		items = append(items, p.Item())
		if p.Type == enums.PrescriptionTypeProduct.String() {
			hasProduct = true
		}
	}
	return items, hasProduct
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details *struct {
		Reasons []string `json:"reasons"`
	} `json:"details"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any, operation string) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return &AuthError{Message: "token source failed: " + err.Error()}
	}
	if strings.TrimSpace(token) == "" {
		return &AuthError{Message: "no access token available"}
	}

	endpoint := c.baseURL + "/api/v1" + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return &FetchError{Operation: operation, Cause: err}
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return &FetchError{Operation: operation, Cause: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &FetchError{Operation: operation, Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return &FetchError{Operation: operation, StatusCode: resp.StatusCode, Cause: err}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &FetchError{Operation: operation, StatusCode: resp.StatusCode, Message: "malformed response", Cause: err}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return &AuthError{Message: env.Message}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		if method == http.MethodGet {
			return &FetchError{Operation: operation, StatusCode: resp.StatusCode, Message: env.Message}
		}
		ce := &CheckoutError{StatusCode: resp.StatusCode, Code: env.Code, Message: env.Message}
		if env.Details != nil {
			ce.Reasons = env.Details.Reasons
		}
		return ce
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &FetchError{Operation: operation, StatusCode: resp.StatusCode, Message: "malformed payload", Cause: err}
		}
	}
	return nil
}
