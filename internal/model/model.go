// Package model holds the record shapes shared by the store, services, and
// handlers. JSON field names follow the persisted document contract: saved
// order snapshots are read by downstream reporting tools and must keep
// their exact shape.
package model

import "github.com/shopspring/decimal"

// Dietary describes the dietary profile shown on a menu card.
type Dietary struct {
	GlutenFree bool `json:"glutenFree"`
	Vegetarian bool `json:"vegetarian"`
	Vegan      bool `json:"vegan"`
	NoSeafood  bool `json:"noSeafood"`
	SpicyLevel int  `json:"spicyLevel"` // 0-3
}

// MenuItem is a single orderable item. Image ids reference media tree files
// and may be empty.
type MenuItem struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"`
	BackgroundImageID string          `json:"backgroundImageId,omitempty"`
	ForegroundImageID string          `json:"foregroundImageId,omitempty"`
	Dietary           Dietary         `json:"dietary"`
	IsAvailable       bool            `json:"isAvailable"`
}

// MenuCategory owns an ordered list of menu items. Categories are seeded
// catalog data; they are not created or deleted through the API.
type MenuCategory struct {
	ID    string     `json:"id"`
	Title string     `json:"title"`
	Items []MenuItem `json:"items"`
}

// Order maps a menu item id to a positive quantity. A zero quantity is
// never stored; setting one removes the key.
type Order map[string]int

// Clone returns an independent copy of the order map.
func (o Order) Clone() Order {
	c := make(Order, len(o))
	for id, qty := range o {
		c[id] = qty
	}
	return c
}

// EventDay is one independently priced order bucket within a multi-day
// catering session.
type EventDay struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	DayDate  string `json:"dayDate"`
	DropTime string `json:"dropTime"`
	Event    string `json:"event"`
	Notes    string `json:"notes"`
	Order    Order  `json:"order"`
}

// Clone returns a deep copy of the day, including its order map.
func (d EventDay) Clone() EventDay {
	c := d
	c.Order = d.Order.Clone()
	return c
}

// CustomerDetails is shared across all event days in one session.
type CustomerDetails struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Business      string `json:"business"`
	Address       string `json:"address"`
	ContactNumber string `json:"contactNumber"`
	Attendees     int    `json:"attendees"`
	EquipmentType string `json:"equipmentType"`
	ServiceType   string `json:"serviceType"`
	Notes         string `json:"notes"`
}

// Totals is the priced breakdown frozen into a snapshot at save time.
type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	ServiceFee decimal.Decimal `json:"serviceFee"`
	GST        decimal.Decimal `json:"gst"`
	Total      decimal.Decimal `json:"total"`
}

// SavedOrder is an immutable snapshot of a session taken at submission.
// ModifiedFrom links to the snapshot this order was loaded from, forming a
// revision chain (at most one predecessor per snapshot).
type SavedOrder struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	Timestamp       string          `json:"timestamp"` // RFC3339
	Status          string          `json:"status"`
	CustomerDetails CustomerDetails `json:"customerDetails"`
	EventDays       []EventDay      `json:"eventDays"`
	Totals          Totals          `json:"totals"`
	EmailSentTo     string          `json:"emailSentTo,omitempty"`
	ModifiedFrom    string          `json:"modifiedFrom,omitempty"`
}

// Clone returns a deep copy of the snapshot.
func (s SavedOrder) Clone() SavedOrder {
	c := s
	c.EventDays = make([]EventDay, len(s.EventDays))
	for i, d := range s.EventDays {
		c.EventDays[i] = d.Clone()
	}
	return c
}

// MediaRootID is the distinguished root folder of the media tree. It has no
// parent and can never be deleted.
const MediaRootID = "root"

// MediaItem is a node in the media tree: either a folder (Children set) or
// a file (MimeType set). Every non-root item has exactly one parent.
type MediaItem struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Kind     string   `json:"type"`
	ParentID string   `json:"parentId,omitempty"`
	Children []string `json:"children,omitempty"`
	MimeType string   `json:"mimeType,omitempty"`
}

// IsFolder reports whether the item is a folder node.
func (m MediaItem) IsFolder() bool { return m.Kind == "folder" }

// Clone returns a copy with an independent children slice.
func (m MediaItem) Clone() MediaItem {
	c := m
	if m.Children != nil {
		c.Children = append([]string(nil), m.Children...)
	}
	return c
}

// Theme is a storefront color scheme. BackgroundImage references a media
// tree file id.
type Theme struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	BackgroundImage string `json:"backgroundImage"`
	PrimaryColor    string `json:"primaryColor"`
	SecondaryColor  string `json:"secondaryColor"`
	TextColor       string `json:"textColor"`
}
