// mockgateway stands in for the payment gateway during local development.
// It serves the charges/events/instruments API the web service calls, and
// exposes trigger endpoints that simulate the payer finishing the hosted
// flow: each trigger records an event and pushes its id to the service's
// /events webhook, so the whole reconciliation loop runs without a tunnel.
//
//	POST /v2/charges/                            create charge
//	GET  /v2/events/{id}                         event fetch
//	GET  /v2/instruments/{id}                    instrument fetch
//	POST /trigger/authorize?charge=C&instrument=I
//	POST /trigger/capture?charge=C&payment=P
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
)

type charge struct {
	ID        string            `json:"id"`
	Type      string            `json:"charge_type"`
	Amount    int               `json:"amount"`
	Currency  string            `json:"currency"`
	Metadata  map[string]string `json:"metadata"`
	EventsURL string            `json:"-"`
}

type event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Charge     charge         `json:"charge"`
	Instrument map[string]any `json:"instrument,omitempty"`
	Payment    map[string]any `json:"payment,omitempty"`
}

type state struct {
	mu          sync.Mutex
	seq         int
	charges     map[string]charge
	events      map[string]event
	instruments map[string]string // id -> status
}

func main() {
	listen := flag.String("listen", ":9090", "Address to serve the fake gateway API on")
	flag.Parse()

	st := &state{
		charges:     map[string]charge{},
		events:      map[string]event{},
		instruments: map[string]string{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/charges/", st.createCharge)
	mux.HandleFunc("GET /v2/events/", st.getEvent)
	mux.HandleFunc("GET /v2/instruments/", st.getInstrument)
	mux.HandleFunc("POST /trigger/authorize", st.triggerAuthorize)
	mux.HandleFunc("POST /trigger/capture", st.triggerCapture)

	log.Printf("mock gateway listening on %s", *listen)
	log.Fatal(http.ListenAndServe(*listen, mux))
}

func (st *state) createCharge(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ChargeType  string            `json:"charge_type"`
		Amount      int               `json:"amount"`
		Currency    string            `json:"currency"`
		EventsURL   string            `json:"events_url"`
		Metadata    map[string]string `json:"metadata"`
		RedirectURL string            `json:"redirect_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	st.mu.Lock()
	st.seq++
	ch := charge{
		ID:        fmt.Sprintf("ch_%04d", st.seq),
		Type:      body.ChargeType,
		Amount:    body.Amount,
		Currency:  body.Currency,
		Metadata:  body.Metadata,
		EventsURL: body.EventsURL,
	}
	st.charges[ch.ID] = ch
	st.mu.Unlock()

	log.Printf("charge %s created (order %s, %d %s)", ch.ID, body.Metadata["orderId"], ch.Amount, ch.Currency)
	writeJSON(w, ch)
}

func (st *state) getEvent(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v2/events/")
	st.mu.Lock()
	ev, ok := st.events[id]
	st.mu.Unlock()
	if !ok {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}
	writeJSON(w, ev)
}

func (st *state) getInstrument(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v2/instruments/")
	st.mu.Lock()
	status, ok := st.instruments[id]
	st.mu.Unlock()
	if !ok {
		status = "pending"
	}
	writeJSON(w, map[string]string{"id": id, "status": status})
}

func (st *state) triggerAuthorize(w http.ResponseWriter, r *http.Request) {
	chargeID := r.URL.Query().Get("charge")
	instrumentID := r.URL.Query().Get("instrument")
	if instrumentID == "" {
		instrumentID = "ins_" + chargeID
	}

	ev, err := st.record(chargeID, func(ch charge, eventID string) event {
		st.instruments[instrumentID] = "authorized"
		return event{
			ID:         eventID,
			Type:       "instrument.authorized",
			Charge:     ch,
			Instrument: map[string]any{"id": instrumentID, "status": "authorized"},
		}
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	st.push(w, ev)
}

func (st *state) triggerCapture(w http.ResponseWriter, r *http.Request) {
	chargeID := r.URL.Query().Get("charge")
	paymentID := r.URL.Query().Get("payment")
	if paymentID == "" {
		paymentID = "pay_" + chargeID
	}

	ev, err := st.record(chargeID, func(ch charge, eventID string) event {
		return event{
			ID:      eventID,
			Type:    "payment.success",
			Charge:  ch,
			Payment: map[string]any{"id": paymentID, "status": "success"},
		}
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	st.push(w, ev)
}

func (st *state) record(chargeID string, build func(charge, string) event) (event, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	ch, ok := st.charges[chargeID]
	if !ok {
		return event{}, fmt.Errorf("unknown charge %q", chargeID)
	}
	st.seq++
	ev := build(ch, fmt.Sprintf("evt_%04d", st.seq))
	st.events[ev.ID] = ev
	return ev, nil
}

// push notifies the shop the way the real gateway does: an empty POST with
// the event id in the query string.
func (st *state) push(w http.ResponseWriter, ev event) {
	url := ev.Charge.EventsURL + "?event=" + ev.ID
	resp, err := http.Post(url, "application/json", bytes.NewReader(nil))
	if err != nil {
		log.Printf("push %s to %s failed: %v", ev.ID, url, err)
		http.Error(w, "webhook push failed", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	log.Printf("pushed %s (%s) -> %s: %d", ev.ID, ev.Type, url, resp.StatusCode)
	writeJSON(w, map[string]any{"event": ev.ID, "webhook_status": resp.StatusCode})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
