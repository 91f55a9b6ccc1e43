package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmynk/planboard/internal/calculator"
	"github.com/mmynk/planboard/internal/models"
)

var (
	colorGold  = lipgloss.Color("#C5A059")
	colorSage  = lipgloss.Color("#8A9A5B")
	colorRose  = lipgloss.Color("#D4A5A5")
	colorDim   = lipgloss.Color("#8C8C8C")
	colorRed   = lipgloss.Color("#D14D41")
	colorGreen = lipgloss.Color("#66800B")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorGold)
	labelStyle = lipgloss.NewStyle().Foreground(colorDim)
	valueStyle = lipgloss.NewStyle().Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(colorRed)
	okStyle    = lipgloss.NewStyle().Foreground(colorGreen)
	cardStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGold).
			Padding(0, 2)
)

// formatMoney formats an amount with thousands separators, e.g. 18000 -> "$18,000".
func formatMoney(v float64) string {
	n := int64(math.Round(v))
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-$" + b.String()
	}
	return "$" + b.String()
}

func card(label, value string) string {
	return cardStyle.Render(labelStyle.Render(label) + "\n" + valueStyle.Render(value))
}

func renderDashboard(doc models.Document, stats calculator.DashboardStats, location string) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Planboard · "+location) + "\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		card("Days left", strconv.Itoa(stats.DaysLeft)),
		card("Vendors booked", fmt.Sprintf("%d / %d", stats.BookedVendors, stats.TotalVendors)),
		card("Spent", formatMoney(stats.TotalSpent)),
		card("Guests", fmt.Sprintf("%d bride · %d groom", stats.BrideGuests, stats.GroomGuests)),
	))
	b.WriteString("\n\n")
	b.WriteString(renderVendors(doc.Vendors))
	return b.String()
}

func renderVendors(vendors []models.Vendor) string {
	if len(vendors) == 0 {
		return labelStyle.Render("No vendors yet.") + "\n"
	}

	nameW := len("Vendor")
	catW := len("Category")
	for _, v := range vendors {
		nameW = max(nameW, lipgloss.Width(v.Name))
		catW = max(catW, lipgloss.Width(v.Category))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Vendors") + "\n")
	header := fmt.Sprintf("  %-8s  %-*s  %-*s  %10s  %-5s  %s", "ID", nameW, "Vendor", catW, "Category", "Price", "Stars", "Status")
	b.WriteString(labelStyle.Render(header) + "\n")
	for _, v := range vendors {
		id := v.ID
		if len(id) > 8 {
			id = id[:8]
		}
		fmt.Fprintf(&b, "  %-8s  %-*s  %-*s  %10s  %-5s  %s\n",
			id, nameW, v.Name, catW, v.Category, formatMoney(v.PriceEstimate), stars(v.Rating), statusLabel(v.Status))
	}
	return b.String()
}

func stars(rating float64) string {
	n := int(math.Round(rating))
	return strings.Repeat("★", n) + strings.Repeat("☆", models.MaxRating-n)
}

func statusLabel(s models.VendorStatus) string {
	switch s {
	case models.VendorBooked:
		return okStyle.Render(string(s))
	case models.VendorFavorite:
		return lipgloss.NewStyle().Foreground(colorRose).Render(string(s))
	case models.VendorRejected:
		return errorStyle.Render(string(s))
	default:
		return labelStyle.Render(string(s))
	}
}

const barWidth = 30

func renderBudget(doc models.Document) string {
	rows := calculator.DisplayBudget(doc.Categories, doc.Budget, doc.Vendors)
	slices := calculator.ChartSlices(rows)
	total := calculator.TotalSpent(doc.Budget)

	names := make(map[string]string, len(doc.Vendors))
	for _, v := range doc.Vendors {
		names[v.ID] = v.Name
	}

	catW := len("Category")
	for _, r := range rows {
		catW = max(catW, lipgloss.Width(r.Category))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Budget") + "\n")
	for _, r := range rows {
		vendor := labelStyle.Render("not selected")
		if r.VendorID != "" {
			vendor = names[r.VendorID]
		}
		fmt.Fprintf(&b, "  %-*s  %10s  %s\n", catW, r.Category, formatMoney(r.Spent), vendor)
	}
	b.WriteString("\n" + labelStyle.Render("  Total spent ") + valueStyle.Render(formatMoney(total)) + "\n")

	if len(slices) == 0 || total <= 0 {
		return b.String()
	}

	b.WriteString("\n" + titleStyle.Render("Breakdown") + "\n")
	bar := lipgloss.NewStyle().Foreground(colorSage)
	for _, s := range slices {
		pct := s.Spent / total
		filled := int(math.Round(pct * barWidth))
		fmt.Fprintf(&b, "  %-*s  %s%s %5.1f%%\n", catW, s.Category,
			bar.Render(strings.Repeat("█", filled)),
			labelStyle.Render(strings.Repeat("░", barWidth-filled)),
			pct*100)
	}
	return b.String()
}

func renderGuests(guests []models.Guest) string {
	if len(guests) == 0 {
		return labelStyle.Render("No guests found.") + "\n"
	}
	var b strings.Builder
	for _, side := range []models.Side{models.SideBride, models.SideGroom} {
		var rows []string
		for _, g := range guests {
			if g.Side == side {
				id := g.ID
				if len(id) > 8 {
					id = id[:8]
				}
				rows = append(rows, fmt.Sprintf("  %-8s  %s %s", id, g.FirstName, g.LastName))
			}
		}
		b.WriteString(titleStyle.Render(fmt.Sprintf("%s (%d)", side.Label(), len(rows))) + "\n")
		for _, r := range rows {
			b.WriteString(r + "\n")
		}
	}
	return b.String()
}

func renderNotes(notes []models.InspirationNote) string {
	if len(notes) == 0 {
		return labelStyle.Render("The inspiration board is empty.") + "\n"
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Inspiration") + "\n")
	for _, n := range notes {
		id := n.ID
		if len(id) > 8 {
			id = id[:8]
		}
		fmt.Fprintf(&b, "  %-8s  %s\n", id, n.Content)
		if n.AISuggestion != "" {
			for _, line := range strings.Split(strings.TrimSpace(n.AISuggestion), "\n") {
				b.WriteString(labelStyle.Render("            "+line) + "\n")
			}
		}
	}
	return b.String()
}
