package mailer

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nidys-catering/api/internal/model"
	"github.com/nidys-catering/api/internal/session"
)

func TestRenderQuote(t *testing.T) {
	quote := session.Quote{
		Customer: model.CustomerDetails{
			Name:          "Lan",
			Email:         "lan@example.com",
			ServiceType:   "Delivery",
			EquipmentType: "Takeaway",
		},
		Pricing: session.Pricing{
			Scope: session.SummaryDayID,
			Days: []session.DayBreakdown{{
				DayID:   "day-1",
				Label:   "Order 1",
				DayDate: "2026-09-12",
				Lines: []session.Line{{
					ItemID:        "item-curry",
					Name:          "Green Curry",
					CategoryTitle: "Mains",
					Quantity:      4,
					UnitPrice:     decimal.RequireFromString("10.00"),
					LineTotal:     decimal.RequireFromString("40.00"),
				}},
				Subtotal: decimal.RequireFromString("40.00"),
			}},
			Subtotal:   decimal.RequireFromString("40.00"),
			ServiceFee: decimal.RequireFromString("40"),
			GST:        decimal.RequireFromString("4.00"),
			Total:      decimal.RequireFromString("84.00"),
			PerHead:    decimal.RequireFromString("21.00"),
			Attendees:  4,
		},
	}

	html, err := RenderQuote("Nidys Thai Van and Catering", quote)
	if err != nil {
		t.Fatalf("RenderQuote: %v", err)
	}

	for _, want := range []string{
		"Dear Lan",
		"Green Curry",
		"Order 1",
		"A$10.00",
		"A$84.00",
		"Per head (4)",
		"GST (10%)",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered quote missing %q", want)
		}
	}
}

func TestRenderQuoteEscapesCustomerInput(t *testing.T) {
	quote := session.Quote{
		Customer: model.CustomerDetails{Name: "<script>alert(1)</script>"},
	}

	html, err := RenderQuote("Nidys", quote)
	if err != nil {
		t.Fatalf("RenderQuote: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Error("customer input was not escaped")
	}
}
