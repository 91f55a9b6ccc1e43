package state

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/planboard/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(models.DefaultDocument())
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return s
}

func TestVendorOperations(t *testing.T) {
	s := newTestStore(t)

	v, err := s.AddVendor(models.Vendor{Name: "Bodrum Jazz Vibes", Category: models.CategoryMusic, PriceEstimate: 500})
	require.NoError(t, err)
	assert.Equal(t, "id-1", v.ID)
	assert.Equal(t, models.VendorPending, v.Status)

	_, err = s.AddVendor(models.Vendor{Name: "Nobody", Category: "Fireworks"})
	assert.ErrorIs(t, err, ErrUnknownCategory)

	_, err = s.AddVendor(models.Vendor{Name: "  ", Category: models.CategoryMusic})
	assert.ErrorIs(t, err, ErrEmptyVendorName)

	t.Run("favorite toggles back to pending", func(t *testing.T) {
		require.NoError(t, s.ToggleFavorite(v.ID))
		got, _ := s.Document().FindVendor(v.ID)
		assert.Equal(t, models.VendorFavorite, got.Status)

		require.NoError(t, s.ToggleFavorite(v.ID))
		got, _ = s.Document().FindVendor(v.ID)
		assert.Equal(t, models.VendorPending, got.Status)
	})

	t.Run("booked toggles", func(t *testing.T) {
		require.NoError(t, s.ToggleBooked("2"))
		got, _ := s.Document().FindVendor("2")
		assert.Equal(t, models.VendorPending, got.Status)
	})

	t.Run("rating", func(t *testing.T) {
		require.NoError(t, s.RateVendor(v.ID, 4))
		got, _ := s.Document().FindVendor(v.ID)
		assert.Equal(t, 4.0, got.Rating)
		assert.Equal(t, 1, got.ReviewCount)

		assert.ErrorIs(t, s.RateVendor(v.ID, 6), ErrInvalidRating)
		assert.ErrorIs(t, s.RateVendor("missing", 3), ErrNotFound)

		s.ResetRatings()
		got, _ = s.Document().FindVendor(v.ID)
		assert.Zero(t, got.Rating)
		assert.Zero(t, got.ReviewCount)
	})

	t.Run("notes", func(t *testing.T) {
		require.NoError(t, s.UpdateVendorNotes(v.ID, "Plays at sunset"))
		got, _ := s.Document().FindVendor(v.ID)
		assert.Equal(t, "Plays at sunset", got.Notes)
	})
}

func TestDeleteVendorClearsSelection(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.DeleteVendor("2"))

	doc := s.Document()
	_, found := doc.FindVendor("2")
	assert.False(t, found)
	for _, item := range doc.Budget {
		assert.NotEqual(t, "2", item.VendorID, "budget line %q still references deleted vendor", item.Category)
	}
	assert.NoError(t, doc.Validate())
	assert.ErrorIs(t, s.DeleteVendor("2"), ErrNotFound)
}

func TestAddCategory(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.AddCategory("Fireworks"))
	assert.True(t, s.Document().HasCategory("Fireworks"))

	assert.ErrorIs(t, s.AddCategory("Fireworks"), ErrDuplicateCategory)
	assert.ErrorIs(t, s.AddCategory(" "), ErrEmptyCategory)
}

func TestSelectVendor(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SelectVendor(models.CategoryVenue, "4"))
	doc := s.Document()
	for _, item := range doc.Budget {
		if item.Category == models.CategoryVenue {
			assert.Equal(t, "4", item.VendorID)
			assert.Equal(t, 25000.0, item.Spent)
		}
	}

	assert.Error(t, s.SelectVendor(models.CategoryVenue, "2"))

	s.ResetSelections()
	for _, item := range s.Document().Budget {
		assert.False(t, item.HasVendor())
	}
}

func TestNotes(t *testing.T) {
	s := newTestStore(t)

	note, err := s.AddNote("Lanterns on the beach", "")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultNoteCategory, note.Category)

	doc := s.Document()
	require.NotEmpty(t, doc.Notes)
	assert.Equal(t, note.ID, doc.Notes[0].ID, "new notes go first")

	require.NoError(t, s.SetSuggestion(note.ID, "Check wind restrictions"))
	assert.Equal(t, "Check wind restrictions", s.Document().Notes[0].AISuggestion)

	require.NoError(t, s.RemoveNote(note.ID))
	assert.Len(t, s.Document().Notes, 2)

	_, err = s.AddNote("", "")
	assert.ErrorIs(t, err, ErrEmptyNote)
}

func TestGuests(t *testing.T) {
	s := newTestStore(t)

	ada, err := s.AddGuest(models.SideBride, "Ada", "Lovelace")
	require.NoError(t, err)
	blank, err := s.AddGuest(models.SideGroom, "", "")
	require.NoError(t, err)
	require.NoError(t, s.UpdateGuest(blank.ID, "Alan", "Turing"))

	_, err = s.AddGuest("aunt", "", "")
	assert.ErrorIs(t, err, ErrInvalidSide)

	assert.Len(t, s.SearchGuests(""), 2)
	found := s.SearchGuests("TUR")
	require.Len(t, found, 1)
	assert.Equal(t, "Alan", found[0].FirstName)

	require.NoError(t, s.RemoveGuest(ada.ID))
	assert.Len(t, s.Document().Guests, 1)
	assert.ErrorIs(t, s.RemoveGuest(ada.ID), ErrNotFound)
}

func TestApplySnapshot(t *testing.T) {
	s := newTestStore(t)
	before := s.Document()

	guests := []models.Guest{{ID: "g1", FirstName: "Ada", Side: models.SideBride}}
	s.ApplySnapshot(models.Snapshot{Guests: &guests})

	after := s.Document()
	assert.Equal(t, guests, after.Guests)
	assert.Equal(t, before.Vendors, after.Vendors)
	assert.Equal(t, before.Budget, after.Budget)
	assert.Equal(t, before.Notes, after.Notes)
	assert.Equal(t, before.Categories, after.Categories)

	rev := s.Revision()
	s.ApplySnapshot(models.Snapshot{})
	assert.Equal(t, rev, s.Revision(), "empty snapshot must not count as a change")
}

func TestFailedMutationDoesNotNotify(t *testing.T) {
	s := newTestStore(t)
	ch, cancel := s.Subscribe()
	defer cancel()

	assert.Error(t, s.RemoveGuest("missing"))
	assert.Zero(t, s.Revision())
	select {
	case c := <-ch:
		t.Fatalf("unexpected notification %+v", c)
	default:
	}
}

func TestSubscribeCoalesces(t *testing.T) {
	s := newTestStore(t)
	ch, cancel := s.Subscribe()

	_, err := s.AddGuest(models.SideBride, "A", "")
	require.NoError(t, err)
	guests := []models.Guest{}
	s.ApplySnapshot(models.Snapshot{Guests: &guests})

	c := <-ch
	assert.Equal(t, uint64(2), c.Revision)
	assert.Equal(t, OriginLocal, c.Origin, "local change must survive coalescing with a remote one")

	select {
	case extra := <-ch:
		t.Fatalf("expected a single coalesced notification, got %+v", extra)
	default:
	}

	s.ApplySnapshot(models.Snapshot{Guests: &guests})
	c = <-ch
	assert.Equal(t, OriginRemote, c.Origin)

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)

	// no panic after unsubscribe
	s.ResetRatings()
}
