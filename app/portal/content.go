package portal

import "github.com/shopspring/decimal"

// Content is the static copy served by the marketing pages.
type Content struct {
	Name          string        `json:"name"`
	Tagline       string        `json:"tagline"`
	About         About         `json:"about"`
	Gallery       []GalleryItem `json:"gallery"`
	Plans         []Plan        `json:"plans"`
	Advertisement []AdPackage   `json:"advertisement"`
}

type About struct {
	Mission string   `json:"mission"`
	History string   `json:"history"`
	Board   []string `json:"board"`
}

type GalleryItem struct {
	Title    string `json:"title"`
	ImageURL string `json:"imageUrl"`
}

// Plan is a membership tier with its yearly fee.
type Plan struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Fee      decimal.Decimal `json:"fee"`
	Currency string          `json:"currency"`
	Benefits []string        `json:"benefits"`
}

type AdPackage struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
	Slots    int             `json:"slots"`
}

// DefaultContent returns placeholder copy for a fresh installation.
func DefaultContent() Content {
	return Content{
		Name:    "Member Portal",
		Tagline: "News, events and publications for our members",
		About: About{
			Mission: "Connect members, share research and organise events.",
			History: "Founded by volunteers and run by an elected board.",
			Board:   []string{"President", "Secretary", "Treasurer"},
		},
		Gallery: []GalleryItem{
			{Title: "Annual meeting", ImageURL: "/static/gallery/annual-meeting.jpg"},
			{Title: "Summer school", ImageURL: "/static/gallery/summer-school.jpg"},
		},
		Plans: []Plan{
			{ID: "student", Name: "Student", Fee: decimal.RequireFromString("15.00"), Currency: "EUR", Benefits: []string{"Newsletter", "Event discounts"}},
			{ID: "regular", Name: "Regular", Fee: decimal.RequireFromString("45.00"), Currency: "EUR", Benefits: []string{"Newsletter", "Event discounts", "Publishing"}},
			{ID: "institutional", Name: "Institutional", Fee: decimal.RequireFromString("250.00"), Currency: "EUR", Benefits: []string{"Five member seats", "Publishing", "Logo on partners page"}},
		},
		Advertisement: []AdPackage{
			{Name: "Newsletter banner", Price: decimal.RequireFromString("120.00"), Currency: "EUR", Slots: 1},
			{Name: "Event sponsorship", Price: decimal.RequireFromString("600.00"), Currency: "EUR", Slots: 3},
		},
	}
}
