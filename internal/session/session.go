// Package session implements the multi-day order engine: event days with
// per-item quantities, the shared customer record, pure pricing, and order
// snapshot save/load against the history store.
package session

import (
	"strconv"
	"sync"
	"time"

	"github.com/nidys-catering/api/internal/model"
	"github.com/nidys-catering/api/internal/store"

	"github.com/google/uuid"
)

// SummaryDayID is the synthetic aggregate selector. It is never a stored
// day; quantity edits against it are no-ops.
const SummaryDayID = "summary"

const (
	defaultDayID    = "day-1"
	defaultDayLabel = "Order 1"
)

// Catalog provides read access to the menu for pricing.
type Catalog interface {
	Categories() []model.MenuCategory
}

// Session owns one ordering session: its event days (always at least one),
// the active-day selector, and the customer record shared across days.
type Session struct {
	id      string
	catalog Catalog
	history store.OrderHistory
	now     func() time.Time

	mu          sync.Mutex
	eventDays   []model.EventDay
	activeDayID string
	customer    model.CustomerDetails
	lineage     string
}

func defaultDay() model.EventDay {
	return model.EventDay{ID: defaultDayID, Label: defaultDayLabel, Order: model.Order{}}
}

func defaultCustomer() model.CustomerDetails {
	return model.CustomerDetails{
		Attendees:     1,
		EquipmentType: "Takeaway",
		ServiceType:   "Delivery",
	}
}

func newSession(id string, catalog Catalog, history store.OrderHistory, now func() time.Time) *Session {
	return &Session{
		id:          id,
		catalog:     catalog,
		history:     history,
		now:         now,
		eventDays:   []model.EventDay{defaultDay()},
		activeDayID: defaultDayID,
		customer:    defaultCustomer(),
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Days returns a deep copy of the event days.
func (s *Session) Days() []model.EventDay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneDays(s.eventDays)
}

// ActiveDayID returns the active selector: a day id or SummaryDayID.
func (s *Session) ActiveDayID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeDayID
}

// Customer returns a copy of the shared customer record.
func (s *Session) Customer() model.CustomerDetails {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customer
}

// Lineage returns the id of the snapshot this session was last saved as or
// loaded from, used to link revisions.
func (s *Session) Lineage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lineage
}

// SetQuantity sets the active day's quantity for an item. A quantity of
// zero or less removes the entry. No-op when the summary selector is
// active or the active id matches no day.
func (s *Session) SetQuantity(itemID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeDayID == SummaryDayID {
		return
	}
	for i := range s.eventDays {
		if s.eventDays[i].ID != s.activeDayID {
			continue
		}
		if s.eventDays[i].Order == nil {
			s.eventDays[i].Order = model.Order{}
		}
		if quantity <= 0 {
			delete(s.eventDays[i].Order, itemID)
		} else {
			s.eventDays[i].Order[itemID] = quantity
		}
		return
	}
}

// ClearActiveOrder empties the active day's order map. No-op on the
// summary selector.
func (s *Session) ClearActiveOrder() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.eventDays {
		if s.eventDays[i].ID == s.activeDayID {
			s.eventDays[i].Order = model.Order{}
			return
		}
	}
}

// AddDay appends a new empty day and makes it active. The label numbers by
// the day count at call time, so a label can repeat after deletions; that
// matches the documented contract and is not corrected here.
func (s *Session) AddDay() model.EventDay {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := model.EventDay{
		ID:    "day-" + uuid.NewString(),
		Label: "Order " + strconv.Itoa(len(s.eventDays)+1),
		Order: model.Order{},
	}
	s.eventDays = append(s.eventDays, day)
	s.activeDayID = day.ID
	return day.Clone()
}

// RemoveDay deletes a day. Removing the active day activates the first
// remaining one; removing the last day resets to a single fresh default
// day, keeping the day count at one or more always.
func (s *Session) RemoveDay(dayID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := s.eventDays[:0]
	for _, day := range s.eventDays {
		if day.ID != dayID {
			filtered = append(filtered, day)
		}
	}
	s.eventDays = filtered

	if len(s.eventDays) == 0 {
		s.eventDays = []model.EventDay{defaultDay()}
		s.activeDayID = defaultDayID
		return
	}
	if s.activeDayID == dayID {
		s.activeDayID = s.eventDays[0].ID
	}
}

// SetActiveDay changes the selector without validating that the id exists;
// the presentation layer only offers valid ids.
func (s *Session) SetActiveDay(dayID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeDayID = dayID
}

// UpdateDayDetail sets one free-text field on a day. Unknown days and
// unknown fields are no-ops; the label is deliberately not editable here.
func (s *Session) UpdateDayDetail(dayID, field, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.eventDays {
		if s.eventDays[i].ID != dayID {
			continue
		}
		switch field {
		case "dayDate":
			s.eventDays[i].DayDate = value
		case "dropTime":
			s.eventDays[i].DropTime = value
		case "event":
			s.eventDays[i].Event = value
		case "notes":
			s.eventDays[i].Notes = value
		}
		return
	}
}

// CustomerPatch carries partial customer updates; nil fields are left
// untouched.
type CustomerPatch struct {
	Name          *string `json:"name"`
	Email         *string `json:"email"`
	Business      *string `json:"business"`
	Address       *string `json:"address"`
	ContactNumber *string `json:"contactNumber"`
	Attendees     *int    `json:"attendees"`
	EquipmentType *string `json:"equipmentType"`
	ServiceType   *string `json:"serviceType"`
	Notes         *string `json:"notes"`
}

// SetCustomerDetails merges a patch into the shared record. Attendee
// counts below one clamp to one.
func (s *Session) SetCustomerDetails(patch CustomerPatch) model.CustomerDetails {
	s.mu.Lock()
	defer s.mu.Unlock()

	if patch.Name != nil {
		s.customer.Name = *patch.Name
	}
	if patch.Email != nil {
		s.customer.Email = *patch.Email
	}
	if patch.Business != nil {
		s.customer.Business = *patch.Business
	}
	if patch.Address != nil {
		s.customer.Address = *patch.Address
	}
	if patch.ContactNumber != nil {
		s.customer.ContactNumber = *patch.ContactNumber
	}
	if patch.Attendees != nil {
		s.customer.Attendees = *patch.Attendees
		if s.customer.Attendees < 1 {
			s.customer.Attendees = 1
		}
	}
	if patch.EquipmentType != nil {
		s.customer.EquipmentType = *patch.EquipmentType
	}
	if patch.ServiceType != nil {
		s.customer.ServiceType = *patch.ServiceType
	}
	if patch.Notes != nil {
		s.customer.Notes = *patch.Notes
	}
	return s.customer
}

func cloneDays(days []model.EventDay) []model.EventDay {
	out := make([]model.EventDay, len(days))
	for i, d := range days {
		out[i] = d.Clone()
	}
	return out
}
