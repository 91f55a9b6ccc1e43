package main

import (
	"errors"
	"testing"

	"github.com/mmynk/planboard/internal/state"
)

func TestResolveID(t *testing.T) {
	ids := []string{"1", "12", "a1b2c3d4-0000", "a1b2ffff-0000"}

	tests := []struct {
		prefix  string
		want    string
		wantErr bool
	}{
		{"1", "1", false},
		{"12", "12", false},
		{"a1b2c", "a1b2c3d4-0000", false},
		{"a1b2", "", true},
		{"zz", "", true},
	}
	for _, tt := range tests {
		got, err := resolveID(ids, tt.prefix)
		if tt.wantErr {
			if err == nil {
				t.Errorf("resolveID(%q): expected error, got %q", tt.prefix, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("resolveID(%q) = %q, %v; want %q", tt.prefix, got, err, tt.want)
		}
	}

	if _, err := resolveID(ids, "zz"); !errors.Is(err, state.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
