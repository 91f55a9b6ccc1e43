package calculator

import (
	"math"
	"time"

	"github.com/mmynk/planboard/internal/models"
)

// DashboardStats is the summary shown on the dashboard.
type DashboardStats struct {
	DaysLeft      int
	BookedVendors int
	TotalVendors  int
	TotalSpent    float64
	BrideGuests   int
	GroomGuests   int
	SelectedLines int
}

// Dashboard computes the dashboard summary for doc as of now.
// DaysLeft is rounded up, so any part of a remaining day counts as a day.
func Dashboard(doc models.Document, eventDate, now time.Time) DashboardStats {
	stats := DashboardStats{
		DaysLeft:     int(math.Ceil(eventDate.Sub(now).Hours() / 24)),
		TotalVendors: len(doc.Vendors),
		TotalSpent:   TotalSpent(doc.Budget),
	}

	for _, v := range doc.Vendors {
		if v.Status == models.VendorBooked {
			stats.BookedVendors++
		}
	}
	for _, g := range doc.Guests {
		switch g.Side {
		case models.SideBride:
			stats.BrideGuests++
		case models.SideGroom:
			stats.GroomGuests++
		}
	}
	for _, item := range doc.Budget {
		if item.HasVendor() {
			stats.SelectedLines++
		}
	}

	return stats
}
