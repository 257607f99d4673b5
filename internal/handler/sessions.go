package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nidys-catering/api/internal/enum"
	"github.com/nidys-catering/api/internal/mailer"
	"github.com/nidys-catering/api/internal/model"
	"github.com/nidys-catering/api/internal/session"
	"github.com/nidys-catering/api/internal/store"
)

// SessionHandler drives one ordering session per client: day and quantity
// edits, totals, and the send-quote flow.
type SessionHandler struct {
	registry *session.Registry
	history  store.OrderHistory
	sender   mailer.Sender

	// appTitle resolves the storefront title at send time, so renamed
	// storefronts render correctly without restart.
	appTitle func() string

	// quoteRecipient, when set, receives a copy of every dispatched quote.
	quoteRecipient string
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(registry *session.Registry, history store.OrderHistory, sender mailer.Sender, appTitle func() string, quoteRecipient string) *SessionHandler {
	return &SessionHandler{
		registry:       registry,
		history:        history,
		sender:         sender,
		appTitle:       appTitle,
		quoteRecipient: quoteRecipient,
	}
}

// RegisterRoutes registers session endpoints on the given Chi router.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.Create)
	r.Route("/sessions/{sid}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/quantities/{itemID}", h.SetQuantity)
		r.Post("/clear", h.ClearActiveOrder)
		r.Post("/days", h.AddDay)
		r.Delete("/days/{dayID}", h.RemoveDay)
		r.Patch("/days/{dayID}", h.UpdateDayDetail)
		r.Put("/active-day", h.SetActiveDay)
		r.Patch("/customer", h.UpdateCustomer)
		r.Get("/totals", h.Totals)
		r.Get("/quote", h.Quote)
		r.Post("/send", h.Send)
		r.Post("/load/{orderID}", h.Load)
	})
}

type sessionResponse struct {
	ID          string                `json:"id"`
	EventDays   []model.EventDay      `json:"eventDays"`
	ActiveDayID string                `json:"activeDayId"`
	Customer    model.CustomerDetails `json:"customer"`
	Lineage     string                `json:"lineage,omitempty"`
}

func toSessionResponse(s *session.Session) sessionResponse {
	return sessionResponse{
		ID:          s.ID(),
		EventDays:   s.Days(),
		ActiveDayID: s.ActiveDayID(),
		Customer:    s.Customer(),
		Lineage:     s.Lineage(),
	}
}

func (h *SessionHandler) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, ok := h.registry.Get(chi.URLParam(r, "sid"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return nil, false
	}
	return s, true
}

// Create starts a fresh session with one default day.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, toSessionResponse(h.registry.Create()))
}

// Get returns the current session state.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(s))
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// SetQuantity sets the active day's quantity for an item. Zero removes the
// line.
func (h *SessionHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req setQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	s.SetQuantity(chi.URLParam(r, "itemID"), req.Quantity)
	writeJSON(w, http.StatusOK, toSessionResponse(s))
}

// ClearActiveOrder empties the active day's order.
func (h *SessionHandler) ClearActiveOrder(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	s.ClearActiveOrder()
	writeJSON(w, http.StatusOK, toSessionResponse(s))
}

// AddDay appends a new empty day and makes it active.
func (h *SessionHandler) AddDay(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	s.AddDay()
	writeJSON(w, http.StatusCreated, toSessionResponse(s))
}

// RemoveDay deletes a day; the session always keeps at least one.
func (h *SessionHandler) RemoveDay(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	s.RemoveDay(chi.URLParam(r, "dayID"))
	writeJSON(w, http.StatusOK, toSessionResponse(s))
}

type dayDetailRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// UpdateDayDetail sets one free-text field on a day.
func (h *SessionHandler) UpdateDayDetail(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req dayDetailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	switch req.Field {
	case "dayDate", "dropTime", "event", "notes":
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown field"})
		return
	}

	s.UpdateDayDetail(chi.URLParam(r, "dayID"), req.Field, req.Value)
	writeJSON(w, http.StatusOK, toSessionResponse(s))
}

type setActiveDayRequest struct {
	DayID string `json:"dayId"`
}

// SetActiveDay changes the day selector, including the summary view.
func (h *SessionHandler) SetActiveDay(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req setActiveDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.DayID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "dayId is required"})
		return
	}

	s.SetActiveDay(req.DayID)
	writeJSON(w, http.StatusOK, toSessionResponse(s))
}

// UpdateCustomer merges a partial update into the shared customer record.
func (h *SessionHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var patch session.CustomerPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if patch.ServiceType != nil && !enum.ValidServiceType(*patch.ServiceType) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid serviceType"})
		return
	}

	writeJSON(w, http.StatusOK, s.SetCustomerDetails(patch))
}

// Totals returns derived pricing for ?scope=<dayID|summary>. Defaults to
// the summary scope.
func (h *SessionHandler) Totals(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	scope := r.URL.Query().Get("scope")
	if scope == "" {
		scope = session.SummaryDayID
	}
	writeJSON(w, http.StatusOK, s.ComputeTotals(scope))
}

// Quote returns the full export view: every day's lines, the customer
// record, and grand totals.
func (h *SessionHandler) Quote(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.BuildQuote())
}

// Send emails the rendered quote to the customer and, on a confirmed send,
// freezes the session into the order history. A failed send persists
// nothing so the client can retry.
func (h *SessionHandler) Send(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	quote := s.BuildQuote()
	if quote.Customer.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "customer email is required"})
		return
	}

	title := h.appTitle()
	body, err := mailer.RenderQuote(title, quote)
	if err != nil {
		log.Printf("ERROR: render quote: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	subject := title + " - Quote Request"
	if err := h.sender.Send(r.Context(), quote.Customer.Email, quote.Customer.Name, subject, body); err != nil {
		if errors.Is(err, mailer.ErrDisabled) {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "email sending is not configured"})
			return
		}
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "email delivery failed, please retry"})
		return
	}

	// Business copy is best effort; the customer send already succeeded.
	if h.quoteRecipient != "" {
		if err := h.sender.Send(r.Context(), h.quoteRecipient, "", subject, body); err != nil {
			log.Printf("ERROR: quote copy to %s: %v", h.quoteRecipient, err)
		}
	}

	saved, err := s.SaveSnapshot(r.Context(), quote.Customer.Email)
	if err != nil {
		log.Printf("ERROR: save snapshot: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "email sent but order could not be saved"})
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// Load replaces the session state with a saved order snapshot.
func (h *SessionHandler) Load(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	saved, err := h.history.Get(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: load order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	s.LoadSnapshot(saved)
	writeJSON(w, http.StatusOK, toSessionResponse(s))
}
