// Package export converts the Planning Document to and from the files users
// download: a JSON backup of the whole document and a CSV of the guest list.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/mmynk/planboard/internal/models"
)

// ErrMalformedImport is returned when a backup cannot be imported.
var ErrMalformedImport = errors.New("malformed import file")

// ExportJSON returns the document as 2-space indented JSON.
func ExportJSON(doc models.Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return data, nil
}

// ImportJSON reads a backup. Collections missing from the file come back nil,
// so they marshal as null and leave the collaborators' copies untouched.
func ImportJSON(r io.Reader) (models.Document, error) {
	snap, err := ImportSnapshot(r)
	if err != nil {
		return models.Document{}, err
	}

	var doc models.Document
	if snap.Vendors != nil {
		doc.Vendors = *snap.Vendors
	}
	if snap.Budget != nil {
		doc.Budget = *snap.Budget
	}
	if snap.Notes != nil {
		doc.Notes = *snap.Notes
	}
	if snap.Guests != nil {
		doc.Guests = *snap.Guests
	}
	if snap.Categories != nil {
		doc.Categories = *snap.Categories
	}

	if err := doc.Validate(); err != nil {
		return models.Document{}, fmt.Errorf("%w: %w", ErrMalformedImport, err)
	}
	return doc, nil
}

// ImportSnapshot decodes a backup without validating references, keeping
// absent collections absent.
func ImportSnapshot(r io.Reader) (models.Snapshot, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to read import: %w", err)
	}

	var snap models.Snapshot
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}
	if dec.More() {
		return models.Snapshot{}, fmt.Errorf("%w: trailing data after document", ErrMalformedImport)
	}
	if snap.Empty() {
		return models.Snapshot{}, fmt.Errorf("%w: no planning data found", ErrMalformedImport)
	}
	return snap, nil
}

// GuestsCSV writes a header row and one row per guest.
func GuestsCSV(w io.Writer, guests []models.Guest) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Side", "First Name", "Last Name"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, g := range guests {
		if err := cw.Write([]string{g.Side.Label(), g.FirstName, g.LastName}); err != nil {
			return fmt.Errorf("failed to write guest %s: %w", g.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
