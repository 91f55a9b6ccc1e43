package models

// Default category names, in display order.
const (
	CategoryVenue         = "Venue"
	CategoryPhotography   = "Photography"
	CategoryFloristry     = "Floristry"
	CategoryCatering      = "Catering"
	CategoryMusic         = "Music/DJ"
	CategoryVideography   = "Videography"
	CategoryHairMakeup    = "Hair & Makeup"
	CategoryTransport     = "Transportation"
	CategoryAccommodation = "Accommodation"
	CategoryInvitations   = "Invitations"
	CategoryCake          = "Wedding Cake"
	CategoryEntertainment = "Entertainment"
	CategoryDecor         = "Decorations"
	CategoryAttire        = "Wedding Dress/Suits"
	CategoryLighting      = "Lighting"
	CategoryOthers        = "Others"
)

// DefaultCategories returns the initial category list.
func DefaultCategories() []string {
	return []string{
		CategoryVenue, CategoryPhotography, CategoryFloristry, CategoryCatering,
		CategoryMusic, CategoryVideography, CategoryHairMakeup, CategoryTransport,
		CategoryAccommodation, CategoryInvitations, CategoryCake, CategoryEntertainment,
		CategoryDecor, CategoryAttire, CategoryLighting, CategoryOthers,
	}
}

// DefaultDocument returns the document a fresh client starts from before the
// first remote snapshot arrives.
func DefaultDocument() Document {
	categories := DefaultCategories()

	budget := make([]BudgetLineItem, 0, len(categories))
	for _, c := range categories {
		item := BudgetLineItem{Category: c, Status: BudgetOnTrack}
		if c == CategoryPhotography {
			item.Spent = 3500
			item.VendorID = "2"
		}
		budget = append(budget, item)
	}

	return Document{
		Vendors: []Vendor{
			{
				ID:            "1",
				Name:          "Kempinski Hotel Barbaros Bay",
				Category:      CategoryVenue,
				PriceEstimate: 18000,
				Location:      "Kızılağaç, Bodrum",
				Available:     true,
				Notes:         "Stunning sea view, infinity pool.",
				PortfolioURL:  "https://www.kempinski.com/en/bodrum/hotel-barbaros-bay",
				Status:        VendorPending,
			},
			{
				ID:            "2",
				Name:          "Aegean Light Photography",
				Category:      CategoryPhotography,
				PriceEstimate: 3500,
				Location:      "Bodrum Center",
				Available:     true,
				Notes:         "Good with sunset shots.",
				PortfolioURL:  "https://example.com/aegean-light",
				Status:        VendorBooked,
			},
			{
				ID:            "4",
				Name:          "Mandarin Oriental",
				Category:      CategoryVenue,
				PriceEstimate: 25000,
				Location:      "Göltürkbükü",
				Available:     true,
				Notes:         "Very luxurious, high end.",
				PortfolioURL:  "https://www.mandarinoriental.com/en/bodrum/aegean-sea",
				Status:        VendorContacted,
			},
		},
		Budget: budget,
		Notes: []InspirationNote{
			{
				ID:       "n1",
				Content:  "Serve signature cocktails named after Bodrum beaches.",
				Category: CategoryCatering,
				ImageURL: "https://picsum.photos/300/200?random=10",
			},
			{
				ID:           "n2",
				Content:      "Live Saxophone player during the sunset cocktail hour.",
				Category:     "Music",
				ImageURL:     "https://picsum.photos/300/200?random=11",
				AISuggestion: "Great choice! Ensure the saxophonist has a portable setup. A great local vendor for this is \"Bodrum Jazz Vibes\". Budget approx $400-600.",
			},
		},
		Guests:     []Guest{},
		Categories: categories,
	}
}
