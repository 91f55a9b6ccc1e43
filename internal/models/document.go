package models

import (
	"errors"
	"fmt"
	"slices"
)

// DefaultDocumentPath is the remote key the whole Document lives under.
const DefaultDocumentPath = "wedding_data_v1"

// Document is the Planning Document: the single aggregate that is synchronized.
type Document struct {
	Vendors    []Vendor          `json:"vendors"`
	Budget     []BudgetLineItem  `json:"budget"`
	Notes      []InspirationNote `json:"notes"`
	Guests     []Guest           `json:"guests"`
	Categories []string          `json:"categories"`
}

// Clone returns a deep copy of d. Mutating the copy never affects d.
func (d Document) Clone() Document {
	return Document{
		Vendors:    slices.Clone(d.Vendors),
		Budget:     slices.Clone(d.Budget),
		Notes:      slices.Clone(d.Notes),
		Guests:     slices.Clone(d.Guests),
		Categories: slices.Clone(d.Categories),
	}
}

// Empty reports whether every collection is absent. Such a document carries
// no planning data and cannot be restored from its own export.
func (d Document) Empty() bool {
	return d.Vendors == nil && d.Budget == nil && d.Notes == nil && d.Guests == nil && d.Categories == nil
}

// FindVendor returns the vendor with the given id.
func (d Document) FindVendor(id string) (Vendor, bool) {
	for _, v := range d.Vendors {
		if v.ID == id {
			return v, true
		}
	}
	return Vendor{}, false
}

// HasCategory reports whether name is in the category list.
func (d Document) HasCategory(name string) bool {
	return slices.Contains(d.Categories, name)
}

// ErrInvalidDocument is wrapped by every error returned from Validate.
var ErrInvalidDocument = errors.New("invalid document")

// Validate checks the document invariants:
//   - category names are unique
//   - every budget vendorId references an existing vendor of the same category
//   - ratings are within 0..MaxRating and enum fields hold known values
func (d Document) Validate() error {
	var errs []error

	seen := make(map[string]bool, len(d.Categories))
	for _, c := range d.Categories {
		if c == "" {
			errs = append(errs, fmt.Errorf("%w: empty category name", ErrInvalidDocument))
			continue
		}
		if seen[c] {
			errs = append(errs, fmt.Errorf("%w: duplicate category %q", ErrInvalidDocument, c))
		}
		seen[c] = true
	}

	vendors := make(map[string]Vendor, len(d.Vendors))
	for _, v := range d.Vendors {
		if v.ID == "" {
			errs = append(errs, fmt.Errorf("%w: vendor %q has no id", ErrInvalidDocument, v.Name))
		}
		if v.Rating < 0 || v.Rating > MaxRating {
			errs = append(errs, fmt.Errorf("%w: vendor %s rating %v out of range", ErrInvalidDocument, v.ID, v.Rating))
		}
		if v.Status != "" && !v.Status.Valid() {
			errs = append(errs, fmt.Errorf("%w: vendor %s has unknown status %q", ErrInvalidDocument, v.ID, v.Status))
		}
		vendors[v.ID] = v
	}

	for _, item := range d.Budget {
		if item.Status != "" && !item.Status.Valid() {
			errs = append(errs, fmt.Errorf("%w: budget %q has unknown status %q", ErrInvalidDocument, item.Category, item.Status))
		}
		if !item.HasVendor() {
			continue
		}
		v, ok := vendors[item.VendorID]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: budget %q references missing vendor %s", ErrInvalidDocument, item.Category, item.VendorID))
			continue
		}
		if v.Category != item.Category {
			errs = append(errs, fmt.Errorf("%w: budget %q references vendor %s in category %q",
				ErrInvalidDocument, item.Category, v.ID, v.Category))
		}
	}

	for _, g := range d.Guests {
		if !g.Side.Valid() {
			errs = append(errs, fmt.Errorf("%w: guest %s has unknown side %q", ErrInvalidDocument, g.ID, g.Side))
		}
	}

	return errors.Join(errs...)
}
