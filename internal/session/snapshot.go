package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/nidys-catering/api/internal/enum"
	"github.com/nidys-catering/api/internal/model"
)

// SaveSnapshot freezes the session into a SavedOrder, assigns an order
// number, appends it to the history store, and records the returned id as
// this session's lineage pointer. emailSentTo may be empty when the
// snapshot was saved without a dispatched email.
func (s *Session) SaveSnapshot(ctx context.Context, emailSentTo string) (model.SavedOrder, error) {
	pricing := s.ComputeTotals(SummaryDayID)

	s.mu.Lock()
	days := cloneDays(s.eventDays)
	customer := s.customer
	lineage := s.lineage
	s.mu.Unlock()

	now := s.now()
	number, err := s.nextOrderNumber(ctx, now)
	if err != nil {
		return model.SavedOrder{}, err
	}

	saved := model.SavedOrder{
		OrderNumber:     number,
		Timestamp:       now.UTC().Format(time.RFC3339),
		Status:          enum.OrderStatusSent,
		CustomerDetails: customer,
		EventDays:       days,
		Totals:          pricing.Totals(),
		EmailSentTo:     emailSentTo,
		ModifiedFrom:    lineage,
	}

	id, err := s.history.Append(ctx, saved)
	if err != nil {
		return model.SavedOrder{}, fmt.Errorf("append snapshot: %w", err)
	}
	saved.ID = id

	s.mu.Lock()
	s.lineage = id
	s.mu.Unlock()
	return saved, nil
}

// nextOrderNumber builds ORD-YYYYMM-NNN, where NNN is one past the count
// of existing snapshots from the same year. The year-scoped count with a
// month-bearing label is the published numbering contract; downstream
// report consumers parse this format.
func (s *Session) nextOrderNumber(ctx context.Context, now time.Time) (string, error) {
	existing, err := s.history.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list snapshots: %w", err)
	}

	yearPrefix := strconv.Itoa(now.Year())
	count := 0
	for _, order := range existing {
		if len(order.Timestamp) >= len(yearPrefix) && order.Timestamp[:len(yearPrefix)] == yearPrefix {
			count++
		}
	}
	return fmt.Sprintf("ORD-%d%02d-%03d", now.Year(), int(now.Month()), count+1), nil
}

// LoadSnapshot replaces the session's customer record and event days with
// deep copies from the snapshot, activates its first day, and remembers
// the snapshot id so a later resave links back to it.
func (s *Session) LoadSnapshot(saved model.SavedOrder) {
	copied := saved.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.customer = copied.CustomerDetails
	if len(copied.EventDays) > 0 {
		s.eventDays = copied.EventDays
		s.activeDayID = copied.EventDays[0].ID
	} else {
		s.eventDays = []model.EventDay{defaultDay()}
		s.activeDayID = defaultDayID
	}
	s.lineage = copied.ID
}
