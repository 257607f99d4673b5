package session

import (
	"sort"

	"github.com/nidys-catering/api/internal/enum"
	"github.com/nidys-catering/api/internal/model"

	"github.com/shopspring/decimal"
)

// MinOrderQuantity is the advisory per-line minimum. Lines below it are
// flagged in breakdowns but nothing is blocked or re-priced.
const MinOrderQuantity = 6

var (
	gstRate        = decimal.New(1, -1) // exactly 0.10
	feeDelivery    = decimal.NewFromInt(40)
	feeFullService = decimal.NewFromInt(100)
)

// MinQuantityFlagged reports whether a line quantity draws the minimum
// warning: present but below the minimum.
func MinQuantityFlagged(quantity int) bool {
	return quantity >= 1 && quantity < MinOrderQuantity
}

// Line is one priced order entry.
type Line struct {
	ItemID             string          `json:"itemId"`
	Name               string          `json:"name"`
	CategoryTitle      string          `json:"categoryTitle"`
	Quantity           int             `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unitPrice"`
	LineTotal          decimal.Decimal `json:"lineTotal"`
	MinQuantityFlagged bool            `json:"minQuantityFlagged"`
}

// DayBreakdown is one day's priced lines with its details and subtotal.
type DayBreakdown struct {
	DayID    string          `json:"dayId"`
	Label    string          `json:"label"`
	DayDate  string          `json:"dayDate"`
	DropTime string          `json:"dropTime"`
	Event    string          `json:"event"`
	Notes    string          `json:"notes"`
	Lines    []Line          `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Pricing is the derived total set for one scope. For the summary scope
// Days carries every day's breakdown alongside the aggregate.
type Pricing struct {
	Scope      string          `json:"scope"`
	Days       []DayBreakdown  `json:"days"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	ServiceFee decimal.Decimal `json:"serviceFee"`
	GST        decimal.Decimal `json:"gst"`
	Total      decimal.Decimal `json:"total"`
	PerHead    decimal.Decimal `json:"perHead"`
	Attendees  int             `json:"attendees"`
}

// Totals converts the pricing to the four-field shape frozen into
// snapshots.
func (p Pricing) Totals() model.Totals {
	return model.Totals{
		Subtotal:   p.Subtotal,
		ServiceFee: p.ServiceFee,
		GST:        p.GST,
		Total:      p.Total,
	}
}

// Quote is the read-only view handed to renderers: every day's grouped
// lines, the customer record, and the grand totals. It is a data-shape
// contract; no rendering happens here.
type Quote struct {
	Pricing  Pricing               `json:"pricing"`
	Customer model.CustomerDetails `json:"customer"`
}

// ComputeTotals derives pricing for a day id or SummaryDayID. It is pure:
// identical state yields identical results, and the order maps are never
// pruned; entries whose item is missing or unavailable are excluded from
// totals but stay in the map.
func (s *Session) ComputeTotals(scope string) Pricing {
	s.mu.Lock()
	days := cloneDays(s.eventDays)
	customer := s.customer
	s.mu.Unlock()

	index := indexCatalog(s.catalog.Categories())

	pricing := Pricing{Scope: scope}
	if scope == SummaryDayID {
		for _, day := range days {
			breakdown := priceDay(day, index)
			pricing.Days = append(pricing.Days, breakdown)
			pricing.Subtotal = pricing.Subtotal.Add(breakdown.Subtotal)
		}
	} else {
		for _, day := range days {
			if day.ID == scope {
				breakdown := priceDay(day, index)
				pricing.Days = []DayBreakdown{breakdown}
				pricing.Subtotal = breakdown.Subtotal
				break
			}
		}
	}

	pricing.ServiceFee = serviceFee(customer.ServiceType, pricing.Subtotal)
	pricing.GST = pricing.Subtotal.Mul(gstRate)
	pricing.Total = pricing.Subtotal.Add(pricing.GST).Add(pricing.ServiceFee)

	attendees := customer.Attendees
	if attendees < 1 {
		attendees = 1
	}
	pricing.Attendees = attendees
	pricing.PerHead = pricing.Total.Div(decimal.NewFromInt(int64(attendees)))
	return pricing
}

// BuildQuote assembles the export view across all days.
func (s *Session) BuildQuote() Quote {
	return Quote{
		Pricing:  s.ComputeTotals(SummaryDayID),
		Customer: s.Customer(),
	}
}

// serviceFee is a step function of the fulfillment method applied to the
// base subtotal; a zero base pays no fee regardless of method.
func serviceFee(serviceType string, baseSubtotal decimal.Decimal) decimal.Decimal {
	if baseSubtotal.IsZero() {
		return decimal.Zero
	}
	switch serviceType {
	case enum.ServiceTypeDelivery:
		return feeDelivery
	case enum.ServiceTypeFullService:
		return feeFullService
	default:
		return decimal.Zero
	}
}

type catalogEntry struct {
	item          model.MenuItem
	categoryTitle string
}

func indexCatalog(categories []model.MenuCategory) map[string]catalogEntry {
	index := make(map[string]catalogEntry)
	for _, category := range categories {
		for _, item := range category.Items {
			index[item.ID] = catalogEntry{item: item, categoryTitle: category.Title}
		}
	}
	return index
}

func priceDay(day model.EventDay, index map[string]catalogEntry) DayBreakdown {
	breakdown := DayBreakdown{
		DayID:    day.ID,
		Label:    day.Label,
		DayDate:  day.DayDate,
		DropTime: day.DropTime,
		Event:    day.Event,
		Notes:    day.Notes,
		Subtotal: decimal.Zero,
	}

	// Walk the catalog in its seeded order so lines group stably by
	// category, not map iteration order.
	for _, entry := range orderedEntries(index, day.Order) {
		quantity := day.Order[entry.item.ID]
		lineTotal := entry.item.Price.Mul(decimal.NewFromInt(int64(quantity)))
		breakdown.Lines = append(breakdown.Lines, Line{
			ItemID:             entry.item.ID,
			Name:               entry.item.Name,
			CategoryTitle:      entry.categoryTitle,
			Quantity:           quantity,
			UnitPrice:          entry.item.Price,
			LineTotal:          lineTotal,
			MinQuantityFlagged: MinQuantityFlagged(quantity),
		})
		breakdown.Subtotal = breakdown.Subtotal.Add(lineTotal)
	}
	return breakdown
}

func orderedEntries(index map[string]catalogEntry, order model.Order) []catalogEntry {
	var entries []catalogEntry
	seen := make(map[string]bool)
	for id := range order {
		entry, ok := index[id]
		if !ok || !entry.item.IsAvailable || seen[id] {
			continue
		}
		seen[id] = true
		entries = append(entries, entry)
	}
	// Deterministic order: category title, then item name, then id.
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.categoryTitle != b.categoryTitle {
			return a.categoryTitle < b.categoryTitle
		}
		if a.item.Name != b.item.Name {
			return a.item.Name < b.item.Name
		}
		return a.item.ID < b.item.ID
	})
	return entries
}
