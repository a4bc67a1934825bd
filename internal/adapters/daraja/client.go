// internal/adapters/daraja/client.go
package daraja

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/adapters/observability"
	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/domain"
)

// Client talks to the M-Pesa Daraja API: OAuth token fetch, then STK push.
// A failed outbound call is surfaced immediately; the payment callback
// itself is delivered asynchronously by the provider and handled elsewhere.
type Client struct {
	base        string
	hc          *http.Client
	key, secret string
	passkey     string
	shortcode   string
	callbackURL string
	accountRef  string
	txnDesc     string
	now         func() time.Time
}

type Option func(*Client)

// WithClock overrides the timestamp source. Tests use this to pin the
// derived password/timestamp pair.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func New(base, key, secret, passkey, shortcode, callbackURL string, opts ...Option) (*Client, error) {
	if key == "" || secret == "" || passkey == "" {
		return nil, domain.ErrMissingCredentials
	}
	c := &Client{
		base:        strings.TrimRight(base, "/"),
		hc:          &http.Client{Timeout: 30 * time.Second},
		key:         key,
		secret:      secret,
		passkey:     passkey,
		shortcode:   shortcode,
		callbackURL: callbackURL,
		accountRef:  "RafikiHouseStays",
		txnDesc:     "Booking payment",
		now:         time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

type stkPayload struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

// InitiateSTKPush requests the provider push a payment prompt to phone.
// It returns the provider's decoded acknowledgment body verbatim; the
// end-user's PIN entry happens after this call returns.
func (c *Client) InitiateSTKPush(ctx context.Context, phone string, amount float64) (domain.STKResult, error) {
	token, err := c.fetchToken(ctx)
	if err != nil {
		return domain.STKResult{}, err
	}

	// The provider rejects stale timestamps; derive both per request.
	ts := c.now().Format("20060102150405")
	password := base64.StdEncoding.EncodeToString([]byte(c.shortcode + c.passkey + ts))

	p := stkPayload{
		BusinessShortCode: c.shortcode,
		Password:          password,
		Timestamp:         ts,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            int64(math.Ceil(amount)),
		PartyA:            phone,
		PartyB:            phone, // single-till configuration: payer is side B as well
		PhoneNumber:       phone,
		CallBackURL:       c.callbackURL,
		AccountReference:  c.accountRef,
		TransactionDesc:   c.txnDesc,
	}
	body, err := json.Marshal(p)
	if err != nil {
		return domain.STKResult{}, err
	}

	url := c.base + "/mpesa/stkpush/v1/processrequest"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return domain.STKResult{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return domain.STKResult{}, ctx.Err()
		}
		return domain.STKResult{}, fmt.Errorf("stk push request failed: %w", err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal("daraja", "stkpush", resp.StatusCode, time.Since(start))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.STKResult{}, err
	}
	out := map[string]any{}
	if len(raw) > 0 {
		if uerr := json.Unmarshal(raw, &out); uerr != nil {
			// non-JSON provider body: wrap it so the caller still sees it
			out = map[string]any{"raw": strings.TrimSpace(string(raw))}
		}
	}
	return domain.STKResult{
		Acknowledged: resp.StatusCode >= 200 && resp.StatusCode < 300,
		Body:         out,
	}, nil
}

// fetchToken obtains a short-lived bearer token via HTTP Basic auth.
func (c *Client) fetchToken(ctx context.Context) (string, error) {
	url := c.base + "/oauth/v1/generate?grant_type=client_credentials"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	cred := base64.StdEncoding.EncodeToString([]byte(c.key + ":" + c.secret))
	req.Header.Set("Authorization", "Basic "+cred)

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("oauth request failed: %w", err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal("daraja", "oauth", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: oauth status %d: %s", domain.ErrUnauthorized, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode oauth response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", domain.ErrUnauthorized)
	}
	return tr.AccessToken, nil
}
