package export

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/mmynk/planboard/internal/models"
)

func TestExportImportRoundTrip(t *testing.T) {
	doc := models.DefaultDocument()
	doc.Guests = []models.Guest{
		{ID: "g1", FirstName: "Ada", LastName: "Lovelace", Side: models.SideBride},
		{ID: "g2", FirstName: "Alan", LastName: "Turing", Side: models.SideGroom},
	}
	doc.Vendors[0].Rating = 4
	doc.Vendors[0].ReviewCount = 1

	data, err := ExportJSON(doc)
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}
	if !strings.Contains(string(data), "\n  \"vendors\": [") {
		t.Errorf("expected 2-space indentation, got:\n%s", data[:40])
	}

	got, err := ImportJSON(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ImportJSON failed: %v", err)
	}
	if !reflect.DeepEqual(got, doc) {
		t.Errorf("round trip changed the document\n got: %+v\nwant: %+v", got, doc)
	}
}

func TestExportImportEmptyCollections(t *testing.T) {
	doc := models.Document{
		Vendors:    []models.Vendor{},
		Budget:     []models.BudgetLineItem{},
		Notes:      []models.InspirationNote{},
		Guests:     []models.Guest{},
		Categories: []string{},
	}

	data, err := ExportJSON(doc)
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}
	got, err := ImportJSON(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ImportJSON failed: %v", err)
	}
	if !reflect.DeepEqual(got, doc) {
		t.Errorf("round trip changed the document\n got: %+v\nwant: %+v", got, doc)
	}

	// A document without any collection is refused on write, and its
	// all-null export is not a valid backup.
	if !(models.Document{}).Empty() {
		t.Fatal("zero document should report Empty")
	}
	data, err = ExportJSON(models.Document{})
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}
	if _, err := ImportJSON(bytes.NewReader(data)); !errors.Is(err, ErrMalformedImport) {
		t.Errorf("expected ErrMalformedImport, got %v", err)
	}
}

func TestImportJSON(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantErr   bool
		checkFunc func(t *testing.T, doc models.Document)
	}{
		{
			name:    "not json",
			input:   "Error!",
			wantErr: true,
		},
		{
			name:    "json array",
			input:   `[1,2,3]`,
			wantErr: true,
		},
		{
			name:    "object without planning data",
			input:   `{"hello":"world"}`,
			wantErr: true,
		},
		{
			name:    "wrong field type",
			input:   `{"guests":"everyone"}`,
			wantErr: true,
		},
		{
			name:    "violates invariants",
			input:   `{"vendors":[],"budget":[{"category":"Venue","vendorId":"ghost"}]}`,
			wantErr: true,
		},
		{
			name:  "backup without categories",
			input: `{"vendors":[],"budget":[],"notes":[],"guests":[{"id":"g1","firstName":"A","lastName":"B","side":"groom"}]}`,
			checkFunc: func(t *testing.T, doc models.Document) {
				if doc.Categories != nil {
					t.Errorf("missing categories should stay absent, got %v", doc.Categories)
				}
				if len(doc.Guests) != 1 || doc.Guests[0].Side != models.SideGroom {
					t.Errorf("unexpected guests %+v", doc.Guests)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ImportJSON(strings.NewReader(tt.input))
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedImport) {
					t.Fatalf("expected ErrMalformedImport, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ImportJSON failed: %v", err)
			}
			if tt.checkFunc != nil {
				tt.checkFunc(t, doc)
			}
		})
	}
}

func TestGuestsCSV(t *testing.T) {
	guests := []models.Guest{
		{ID: "g1", FirstName: "Ada", LastName: "Lovelace", Side: models.SideBride},
		{ID: "g2", FirstName: "Alan", LastName: "Turing", Side: models.SideGroom},
	}

	var buf bytes.Buffer
	if err := GuestsCSV(&buf, guests); err != nil {
		t.Fatalf("GuestsCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	want := []string{
		"Side,First Name,Last Name",
		"Bride's Side,Ada,Lovelace",
		"Groom's Side,Alan,Turing",
	}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("GuestsCSV lines = %q, want %q", lines, want)
	}
}
