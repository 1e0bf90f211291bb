package clinicclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"runtime"
	"sync"
	"testing"
)

const pendingPayload = `{
	"success": true,
	"data": {
		"prescriptions": [
			{"id":1,"type":"product","status":"prescribed","name":"Serum","quantity":3,"unit_price":"10.00","customer_id":1,"doctor_id":1,"doctor_name":"Dr","consultation_date":"2026-08-01T10:00:00Z","product_id":3,"stock_quantity":5,"created_at":"2026-08-01T10:00:00Z"},
			{"id":2,"type":"service","status":"pending","name":"Facial","quantity":1,"unit_price":"40.00","customer_id":1,"doctor_id":1,"doctor_name":"Dr","consultation_date":"2026-08-01T10:00:00Z","created_at":"2026-08-01T10:00:00Z"}
		],
		"total_pages": 1
	}
}`

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(Config{BaseURL: srv.URL, Tokens: StaticToken("test-token")})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestListPendingParsesAndSendsBearer(t *testing.T) {
	t.Parallel()

	var gotAuth string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/api/v1/checkout/pending" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(pendingPayload))
	}))

	page, err := client.ListPending(context.Background(), ListPendingOptions{})
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if len(page.Prescriptions) != 2 || page.TotalPages != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page.Prescriptions[0].Name != "Serum" || page.Prescriptions[1].StockQuantity != nil {
		t.Fatalf("unexpected mapping: %+v", page.Prescriptions)
	}
}

func TestMissingTokenFailsBeforeNetwork(t *testing.T) {
	t.Parallel()

	called := false
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	client.tokens = StaticToken("")

	_, err := client.ListPending(context.Background(), ListPendingOptions{})
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if called {
		t.Fatal("server must not be contacted without a token")
	}
}

func TestListPendingServerErrorIsFetchError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"code":"INTERNAL","message":"something broke"}`))
	}))

	_, err := client.ListPending(context.Background(), ListPendingOptions{})
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fetchErr.StatusCode != http.StatusInternalServerError || fetchErr.Message != "something broke" {
		t.Fatalf("unexpected fetch error: %+v", fetchErr)
	}
}

func TestRejectedTokenIsAuthError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"code":"UNAUTHORIZED","message":"token expired"}`))
	}))

	_, err := client.ListPending(context.Background(), ListPendingOptions{})
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if authErr.Message != "token expired" {
		t.Fatalf("unexpected message %q", authErr.Message)
	}
}

func TestSubmitCheckoutClearsSelectionAndMarksStale(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/checkout/pending":
			w.Write([]byte(pendingPayload))
		case "/api/v1/checkout":
			var body struct {
				PrescriptionIDs []int64 `json:"prescription_ids"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode body: %v", err)
			}
			if len(body.PrescriptionIDs) != 2 {
				t.Errorf("unexpected ids %v", body.PrescriptionIDs)
			}
			w.Write([]byte(`{"success":true,"data":{"message":"Checkout completed","products_processed":1,"services_processed":1}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	ctx := context.Background()

	if _, err := client.ListPending(ctx, ListPendingOptions{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	client.Selection().Select(1)
	client.Selection().Select(2)

	result, err := client.SubmitCheckout(ctx, client.Selection().IDs())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Message != "Checkout completed" || result.ProductsProcessed != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if client.Selection().Count() != 0 {
		t.Fatal("expected selection cleared after success")
	}
	if !client.PendingStale() {
		t.Fatal("expected pending marked stale")
	}
	if !client.ProductsStale() {
		t.Fatal("expected products marked stale after a product checkout")
	}
	// Flags reset on read.
	if client.PendingStale() {
		t.Fatal("expected stale flag reset")
	}
}

func TestSubmitCheckoutBlocksIneligibleBatchLocally(t *testing.T) {
	t.Parallel()

	called := false
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/checkout/pending":
			// Product with less stock than quantity.
			w.Write([]byte(`{"success":true,"data":{"prescriptions":[{"id":1,"type":"product","status":"prescribed","name":"Serum","quantity":3,"unit_price":"10.00","customer_id":1,"doctor_id":1,"doctor_name":"Dr","consultation_date":"2026-08-01T10:00:00Z","stock_quantity":1,"created_at":"2026-08-01T10:00:00Z"}],"total_pages":1}}`))
		default:
			called = true
		}
	}))
	ctx := context.Background()

	if _, err := client.ListPending(ctx, ListPendingOptions{}); err != nil {
		t.Fatalf("list: %v", err)
	}

	_, err := client.SubmitCheckout(ctx, []int64{1})
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(valErr.Reasons) != 1 || valErr.Reasons[0] != "Serum: Insufficient stock (1 available, 3 needed)" {
		t.Fatalf("unexpected reasons %v", valErr.Reasons)
	}
	if called {
		t.Fatal("ineligible batch must not reach the server")
	}
}

func TestSubmitCheckoutServerRejectionKeepsSelection(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/checkout/pending":
			w.Write([]byte(pendingPayload))
		case "/api/v1/checkout":
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"success":false,"code":"STATE_CONFLICT","message":"1 prescription(s) cannot be processed","details":{"reasons":["Serum: Insufficient stock (0 available, 3 needed)"]}}`))
		}
	}))
	ctx := context.Background()

	if _, err := client.ListPending(ctx, ListPendingOptions{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	client.Selection().Select(1)

	_, err := client.SubmitCheckout(ctx, client.Selection().IDs())
	var checkoutErr *CheckoutError
	if !errors.As(err, &checkoutErr) {
		t.Fatalf("expected CheckoutError, got %v", err)
	}
	if checkoutErr.Code != "STATE_CONFLICT" || len(checkoutErr.Reasons) != 1 {
		t.Fatalf("unexpected checkout error: %+v", checkoutErr)
	}
	if client.Selection().Count() != 1 {
		t.Fatal("selection must stay intact after a server rejection")
	}
}

func TestSubmitCheckoutSingleInFlight(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/checkout/pending":
			w.Write([]byte(pendingPayload))
		case "/api/v1/checkout":
			<-release
			w.Write([]byte(`{"success":true,"data":{"message":"ok"}}`))
		}
	}))
	ctx := context.Background()

	if _, err := client.ListPending(ctx, ListPendingOptions{}); err != nil {
		t.Fatalf("list: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	firstErr := make(chan error, 1)
	go func() {
		defer wg.Done()
		_, err := client.SubmitCheckout(ctx, []int64{2})
		firstErr <- err
	}()

	// Wait until the first call holds the flag, then try again.
	for !client.inFlight.Load() {
		runtime.Gosched()
	}
	_, err := client.SubmitCheckout(ctx, []int64{2})
	if !errors.Is(err, ErrCheckoutInFlight) {
		t.Fatalf("expected ErrCheckoutInFlight, got %v", err)
	}

	close(release)
	wg.Wait()
	if err := <-firstErr; err != nil {
		t.Fatalf("first submit: %v", err)
	}
}

func TestUpdateStatusMarksStale(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/checkout/update-status" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"success":true,"data":{"message":"updated","updated_ids":[5]}}`))
	}))

	id := int64(5)
	result, err := client.UpdateStatus(context.Background(), UpdateStatusRequest{PrescriptionID: &id, Status: "sold"})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if len(result.UpdatedIDs) != 1 || result.UpdatedIDs[0] != 5 {
		t.Fatalf("unexpected result %+v", result)
	}
	if !client.PendingStale() || !client.ProductsStale() {
		t.Fatal("expected both read models stale after a sold transition")
	}
}

func TestListPendingPrunesVanishedSelection(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(pendingPayload))
	}))
	ctx := context.Background()

	client.Selection().Select(1)
	client.Selection().Select(99)

	if _, err := client.ListPending(ctx, ListPendingOptions{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if client.Selection().Has(99) {
		t.Fatal("expected vanished id pruned")
	}
	if !client.Selection().Has(1) {
		t.Fatal("expected visible id kept")
	}
}
