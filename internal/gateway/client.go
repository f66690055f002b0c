package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrUnavailable wraps every transport failure and non-2xx gateway
// response. The client never retries; webhook redelivery and the user's
// browser provide the retry loop.
var ErrUnavailable = errors.New("payment gateway unavailable")

// Client is a thin typed client for the Switch payments API. Every call is
// a single round trip authenticated with the account id / private key pair;
// no caching, each response reflects current gateway truth.
type Client struct {
	baseURL    string
	accountID  string
	privateKey string
	http       *http.Client
}

func NewClient(baseURL, accountID, privateKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		accountID:  accountID,
		privateKey: privateKey,
		http:       &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) CreateCharge(ctx context.Context, req ChargeRequest) (Charge, error) {
	body := map[string]any{
		"charge_type":  req.ChargeType,
		"amount":       req.Amount,
		"currency":     req.Currency,
		"events_url":   req.EventsURL,
		"redirect_url": req.RedirectURL,
		"metadata":     map[string]string{MetadataOrderKey: req.OrderID},
	}

	raw, err := c.do(ctx, http.MethodPost, "/charges/", body)
	if err != nil {
		return Charge{}, err
	}

	var ch Charge
	if err := json.Unmarshal(raw, &ch); err != nil {
		return Charge{}, fmt.Errorf("decode charge: %w", err)
	}
	ch.Raw = raw
	return ch, nil
}

func (c *Client) FetchEvent(ctx context.Context, eventID string) (Event, error) {
	raw, err := c.do(ctx, http.MethodGet, "/events/"+eventID, nil)
	if err != nil {
		return Event{}, err
	}

	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return Event{}, fmt.Errorf("decode event %s: %w", eventID, err)
	}
	ev.Raw = raw
	return ev, nil
}

func (c *Client) FetchInstrument(ctx context.Context, instrumentID string) (Instrument, error) {
	raw, err := c.do(ctx, http.MethodGet, "/instruments/"+instrumentID, nil)
	if err != nil {
		return Instrument{}, err
	}

	var inst Instrument
	if err := json.Unmarshal(raw, &inst); err != nil {
		return Instrument{}, fmt.Errorf("decode instrument %s: %w", instrumentID, err)
	}
	return inst, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.accountID, c.privateKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: read body: %v", ErrUnavailable, method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s %s: status %d: %s",
			ErrUnavailable, method, path, resp.StatusCode, truncate(string(raw), 200))
	}
	return raw, nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
