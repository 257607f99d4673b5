package catalog

import (
	"github.com/nidys-catering/api/internal/model"

	"github.com/shopspring/decimal"
)

// DefaultAppTitle is the storefront title used until an admin edits it.
const DefaultAppTitle = "Nidys Thai Van and Catering"

// Document keys in the remote store.
const (
	DocMenuData      = "menuData"
	DocAppTitle      = "appTitle"
	DocThemes        = "themes"
	DocActiveThemeID = "activeThemeId"
)

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// DefaultMenu is the pre-seeded catalog: the fixed top-level category list
// the storefront starts from.
func DefaultMenu() []model.MenuCategory {
	vegetarian := model.Dietary{Vegetarian: true, NoSeafood: true}
	vegan := model.Dietary{GlutenFree: true, Vegetarian: true, Vegan: true, NoSeafood: true}

	return []model.MenuCategory{
		{
			ID:    "cat-1",
			Title: "Mains",
			Items: []model.MenuItem{
				{
					ID:          "item-1",
					Name:        "Gourmet Burger",
					Description: "A delicious burger with all the toppings, including a juicy patty, fresh lettuce, tomatoes, and our special sauce.",
					Price:       price("15.99"),
					Dietary:     model.Dietary{NoSeafood: true, SpicyLevel: 1},
					IsAvailable: true,
				},
				{
					ID:          "item-2",
					Name:        "Margherita Pizza",
					Description: "Classic pizza with fresh mozzarella, San Marzano tomatoes, fresh basil, salt and extra-virgin olive oil.",
					Price:       price("12.99"),
					Dietary:     vegetarian,
					IsAvailable: true,
				},
			},
		},
		{
			ID:    "cat-2",
			Title: "Sides",
			Items: []model.MenuItem{
				{
					ID:          "item-3",
					Name:        "Crispy Fries",
					Description: "Golden, crispy fries served with our house-made aioli.",
					Price:       price("4.99"),
					Dietary:     vegan,
					IsAvailable: true,
				},
			},
		},
		{
			ID:    "cat-3",
			Title: "Drinks",
			Items: []model.MenuItem{
				{
					ID:          "item-4",
					Name:        "Cola",
					Description: "A refreshing can of your favorite cola.",
					Price:       price("2.99"),
					Dietary:     vegan,
					IsAvailable: true,
				},
				{
					ID:          "item-5",
					Name:        "Mineral Water",
					Description: "Chilled mineral water.",
					Price:       price("1.99"),
					Dietary:     vegan,
					IsAvailable: false,
				},
			},
		},
	}
}

// DefaultThemes is the seeded theme list; the first entry starts active.
func DefaultThemes() []model.Theme {
	return []model.Theme{
		{
			ID:             "theme-1",
			Name:           "Default",
			PrimaryColor:   "amber",
			SecondaryColor: "indigo",
			TextColor:      "white",
		},
		{
			ID:             "theme-2",
			Name:           "Ocean",
			PrimaryColor:   "cyan",
			SecondaryColor: "blue",
			TextColor:      "white",
		},
	}
}
