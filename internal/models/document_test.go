package models

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestDefaultDocumentIsValid(t *testing.T) {
	doc := DefaultDocument()
	if err := doc.Validate(); err != nil {
		t.Fatalf("default document should be valid: %v", err)
	}
	if len(doc.Categories) != 16 {
		t.Errorf("expected 16 default categories, got %d", len(doc.Categories))
	}
	if len(doc.Budget) != len(doc.Categories) {
		t.Errorf("expected one budget line per category, got %d lines", len(doc.Budget))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *Document)
		wantErr bool
	}{
		{
			name:    "valid default",
			mutate:  func(d *Document) {},
			wantErr: false,
		},
		{
			name:    "duplicate category",
			mutate:  func(d *Document) { d.Categories = append(d.Categories, CategoryVenue) },
			wantErr: true,
		},
		{
			name: "budget references missing vendor",
			mutate: func(d *Document) {
				d.Budget[0].VendorID = "does-not-exist"
			},
			wantErr: true,
		},
		{
			name: "budget references vendor in other category",
			mutate: func(d *Document) {
				// Budget[0] is Venue, vendor 2 is Photography
				d.Budget[0].VendorID = "2"
			},
			wantErr: true,
		},
		{
			name:    "rating out of range",
			mutate:  func(d *Document) { d.Vendors[0].Rating = 6 },
			wantErr: true,
		},
		{
			name: "unknown guest side",
			mutate: func(d *Document) {
				d.Guests = append(d.Guests, Guest{ID: "g1", Side: "aunt"})
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := DefaultDocument()
			tt.mutate(&doc)
			err := doc.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidDocument) {
				t.Errorf("expected error to wrap ErrInvalidDocument, got %v", err)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	doc := DefaultDocument()
	clone := doc.Clone()
	clone.Vendors[0].Name = "changed"
	clone.Categories[0] = "changed"

	if doc.Vendors[0].Name == "changed" || doc.Categories[0] == "changed" {
		t.Error("mutating the clone changed the original")
	}
}

func TestSnapshotApplyTo(t *testing.T) {
	base := DefaultDocument()

	t.Run("replaces only present fields", func(t *testing.T) {
		guests := []Guest{{ID: "g1", FirstName: "Ada", Side: SideBride}}
		snap := Snapshot{Guests: &guests}

		got := snap.ApplyTo(base)
		if !reflect.DeepEqual(got.Guests, guests) {
			t.Errorf("guests not replaced: %+v", got.Guests)
		}
		if !reflect.DeepEqual(got.Vendors, base.Vendors) {
			t.Error("vendors changed although absent from snapshot")
		}
		if !reflect.DeepEqual(got.Categories, base.Categories) {
			t.Error("categories changed although absent from snapshot")
		}
	})

	t.Run("empty array clears collection", func(t *testing.T) {
		empty := []Vendor{}
		got := Snapshot{Vendors: &empty}.ApplyTo(base)
		if len(got.Vendors) != 0 {
			t.Errorf("expected vendors cleared, got %d", len(got.Vendors))
		}
	})

	t.Run("json null and missing are absent", func(t *testing.T) {
		var snap Snapshot
		if err := json.Unmarshal([]byte(`{"vendors":null,"notes":[]}`), &snap); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if snap.Vendors != nil {
			t.Error("null vendors should decode as absent")
		}
		if snap.Notes == nil {
			t.Error("empty notes array should decode as present")
		}
		if got := snap.Fields(); !reflect.DeepEqual(got, []string{"notes"}) {
			t.Errorf("Fields() = %v, want [notes]", got)
		}
	})
}
