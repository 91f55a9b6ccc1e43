package models

// VendorStatus is where a vendor stands in the booking process.
type VendorStatus string

const (
	VendorContacted VendorStatus = "contacted"
	VendorBooked    VendorStatus = "booked"
	VendorRejected  VendorStatus = "rejected"
	VendorFavorite  VendorStatus = "favorite"
	VendorPending   VendorStatus = "pending"
)

// Valid reports whether s is one of the known statuses.
func (s VendorStatus) Valid() bool {
	switch s {
	case VendorContacted, VendorBooked, VendorRejected, VendorFavorite, VendorPending:
		return true
	}
	return false
}

// MaxRating is the highest star rating a vendor can receive.
const MaxRating = 5

// Vendor represents a supplier being considered for the event.
type Vendor struct {
	// ID is the unique identifier for the vendor.
	// Seed vendors use short numeric ids, new ones a UUID.
	ID string `json:"id"`

	// Name is the business name (e.g., "Aegean Light Photography").
	Name string `json:"name"`

	// Category is a free-form category name, normally one of Document.Categories.
	Category string `json:"category"`

	// PriceEstimate is the quoted price in the planning currency.
	PriceEstimate float64 `json:"priceEstimate"`

	// Rating is the 0-5 star rating. 0 means "not rated".
	Rating float64 `json:"rating"`

	// ReviewCount is the number of ratings given.
	ReviewCount int `json:"reviewCount"`

	// Location is where the vendor is based.
	Location string `json:"location"`

	// Available reports whether the vendor is free on the event date.
	Available bool `json:"available"`

	// Notes are free-form notes from the planners.
	Notes string `json:"notes"`

	// PortfolioURL links to the vendor's website or portfolio.
	PortfolioURL string `json:"portfolioUrl"`

	// Status is the booking status.
	Status VendorStatus `json:"status"`
}
