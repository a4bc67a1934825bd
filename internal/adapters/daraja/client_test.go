package daraja_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/adapters/daraja"
	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/domain"
)

func newTestClient(t *testing.T, base string, opts ...daraja.Option) *daraja.Client {
	t.Helper()
	cl, err := daraja.New(base, "key", "secret", "passkey", "174379", "https://example.com/callback", opts...)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	return cl
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := daraja.New("https://sandbox", "", "secret", "passkey", "174379", "cb")
	if !errors.Is(err, domain.ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestInitiateSTKPush_Success(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	fixed := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v1/generate":
			want := "Basic " + base64.StdEncoding.EncodeToString([]byte("key:secret"))
			if r.Header.Get("Authorization") != want {
				t.Errorf("oauth auth header = %q", r.Header.Get("Authorization"))
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-1", "expires_in": "3599"})
		case "/mpesa/stkpush/v1/processrequest":
			gotAuth = r.Header.Get("Authorization")
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"ResponseCode":        "0",
				"ResponseDescription": "Success. Request accepted for processing",
				"CheckoutRequestID":   "ws_CO_1",
			})
		default:
			w.WriteHeader(404)
		}
	}))
	defer ts.Close()

	cl := newTestClient(t, ts.URL, daraja.WithClock(func() time.Time { return fixed }))
	res, err := cl.InitiateSTKPush(context.Background(), "254712345678", 10.2)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !res.Acknowledged {
		t.Fatalf("expected acknowledged result")
	}
	if res.Body["ResponseCode"] != "0" {
		t.Fatalf("unexpected body: %+v", res.Body)
	}
	if gotAuth != "Bearer tok-1" {
		t.Fatalf("stk auth header = %q", gotAuth)
	}

	// Amount 10.2 is submitted as the whole unit 11.
	if amt, ok := gotBody["Amount"].(float64); !ok || amt != 11 {
		t.Fatalf("Amount = %v, want 11", gotBody["Amount"])
	}

	// Timestamp is 14 numeric chars matching the injected clock.
	tsStr, _ := gotBody["Timestamp"].(string)
	if !regexp.MustCompile(`^\d{14}$`).MatchString(tsStr) {
		t.Fatalf("Timestamp = %q, want 14 digits", tsStr)
	}
	if tsStr != "20260314150926" {
		t.Fatalf("Timestamp = %q, want 20260314150926", tsStr)
	}

	// Password = base64(shortcode + passkey + timestamp).
	wantPw := base64.StdEncoding.EncodeToString([]byte("174379" + "passkey" + tsStr))
	if gotBody["Password"] != wantPw {
		t.Fatalf("Password = %v, want %s", gotBody["Password"], wantPw)
	}

	// Single-till configuration: phone is both PartyA and PartyB.
	if gotBody["PartyA"] != "254712345678" || gotBody["PartyB"] != "254712345678" {
		t.Fatalf("PartyA/PartyB = %v/%v", gotBody["PartyA"], gotBody["PartyB"])
	}
}

func TestInitiateSTKPush_OAuthFailureSkipsPush(t *testing.T) {
	var stkCalls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v1/generate":
			w.WriteHeader(401)
			_, _ = w.Write([]byte(`{"errorMessage":"invalid credentials"}`))
		case "/mpesa/stkpush/v1/processrequest":
			atomic.AddInt32(&stkCalls, 1)
		}
	}))
	defer ts.Close()

	cl := newTestClient(t, ts.URL)
	_, err := cl.InitiateSTKPush(context.Background(), "254712345678", 100)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if atomic.LoadInt32(&stkCalls) != 0 {
		t.Fatalf("stk endpoint called %d times after oauth failure", stkCalls)
	}
}

func TestInitiateSTKPush_ProviderRejection(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v1/generate":
			_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-1"})
		case "/mpesa/stkpush/v1/processrequest":
			w.WriteHeader(400)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"requestId":    "1234",
				"errorCode":    "400.002.02",
				"errorMessage": "Bad Request - Invalid PhoneNumber",
			})
		}
	}))
	defer ts.Close()

	cl := newTestClient(t, ts.URL)
	res, err := cl.InitiateSTKPush(context.Background(), "0712", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Acknowledged {
		t.Fatalf("expected unacknowledged result")
	}
	if res.Body["errorMessage"] != "Bad Request - Invalid PhoneNumber" {
		t.Fatalf("provider body not passed through: %+v", res.Body)
	}
}
