// Package state holds the Local State Store: the in-memory source of truth for
// the Planning Document on one client.
//
// Every mutation bumps a local revision and notifies subscribers. Notifications
// are coalesced per subscriber, so a slow reader only ever sees the latest
// change, but a local change is never hidden behind a later remote one.
package state

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mmynk/planboard/internal/calculator"
	"github.com/mmynk/planboard/internal/models"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrEmptyCategory     = errors.New("category name is required")
	ErrDuplicateCategory = errors.New("category already exists")
	ErrUnknownCategory   = errors.New("unknown category")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrInvalidSide       = errors.New("side must be bride or groom")
	ErrEmptyNote         = errors.New("note content is required")
	ErrEmptyVendorName   = errors.New("vendor name is required")
)

// Origin tells where a change came from.
type Origin int

const (
	// OriginLocal is a mutation made on this client.
	OriginLocal Origin = iota
	// OriginRemote is a snapshot applied from the remote document.
	OriginRemote
)

func (o Origin) String() string {
	if o == OriginRemote {
		return "remote"
	}
	return "local"
}

// Change is a notification that the document changed.
type Change struct {
	// Revision is the local revision after the change.
	Revision uint64
	// Origin is OriginLocal if any coalesced change was local.
	Origin Origin
}

// Store owns the current Document. It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	doc      models.Document
	revision uint64
	subs     map[int]chan Change
	nextSub  int
	newID    func() string
}

// New creates a Store holding a copy of initial.
func New(initial models.Document) *Store {
	return &Store{
		doc:   initial.Clone(),
		subs:  make(map[int]chan Change),
		newID: uuid.NewString,
	}
}

// Document returns a deep copy of the current document.
func (s *Store) Document() models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Revision returns the local revision counter.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Subscribe registers for change notifications. The returned function
// unregisters and closes the channel.
func (s *Store) Subscribe() (<-chan Change, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Change, 1)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

// ApplySnapshot replaces every collection present in snap wholesale and leaves
// absent ones untouched. An empty snapshot is a no-op.
func (s *Store) ApplySnapshot(snap models.Snapshot) {
	if snap.Empty() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = snap.ApplyTo(s.doc)
	s.commit(OriginRemote)
}

// Merge applies snap like ApplySnapshot but as a local change, for edits
// that arrive from outside the remote such as a mirrored file.
func (s *Store) Merge(snap models.Snapshot) {
	if snap.Empty() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = snap.ApplyTo(s.doc)
	s.commit(OriginLocal)
}

// Replace overwrites the whole document, as a local change.
func (s *Store) Replace(doc models.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc.Clone()
	s.commit(OriginLocal)
}

// update runs fn on a copy of the document and commits it if fn succeeds.
func (s *Store) update(fn func(d *models.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	s.doc = next
	s.commit(OriginLocal)
	return nil
}

// commit must be called with mu held.
func (s *Store) commit(origin Origin) {
	s.revision++
	c := Change{Revision: s.revision, Origin: origin}
	for _, ch := range s.subs {
		select {
		case ch <- c:
			continue
		default:
		}
		// Coalesce with the pending notification.
		select {
		case prev := <-ch:
			if prev.Origin == OriginLocal {
				c.Origin = OriginLocal
			}
		default:
		}
		ch <- c
		c.Origin = origin
	}
}

// Vendors

// AddVendor appends v with a fresh id, no rating and pending status.
func (s *Store) AddVendor(v models.Vendor) (models.Vendor, error) {
	v.Name = strings.TrimSpace(v.Name)
	if v.Name == "" {
		return models.Vendor{}, ErrEmptyVendorName
	}
	err := s.update(func(d *models.Document) error {
		if !d.HasCategory(v.Category) {
			return fmt.Errorf("%w: %q", ErrUnknownCategory, v.Category)
		}
		v.ID = s.newID()
		v.Rating = 0
		v.ReviewCount = 0
		v.Available = true
		v.Status = models.VendorPending
		d.Vendors = append(d.Vendors, v)
		return nil
	})
	if err != nil {
		return models.Vendor{}, err
	}
	return v, nil
}

// DeleteVendor removes a vendor and clears any budget selection pointing at it.
func (s *Store) DeleteVendor(id string) error {
	return s.update(func(d *models.Document) error {
		i := vendorIndex(d, id)
		if i < 0 {
			return fmt.Errorf("vendor %s: %w", id, ErrNotFound)
		}
		d.Vendors = slices.Delete(d.Vendors, i, i+1)
		for j := range d.Budget {
			if d.Budget[j].VendorID == id {
				d.Budget[j].VendorID = ""
				d.Budget[j].Spent = 0
			}
		}
		return nil
	})
}

// ToggleFavorite flips a vendor between favorite and pending.
func (s *Store) ToggleFavorite(id string) error {
	return s.toggleStatus(id, models.VendorFavorite)
}

// ToggleBooked flips a vendor between booked and pending.
func (s *Store) ToggleBooked(id string) error {
	return s.toggleStatus(id, models.VendorBooked)
}

func (s *Store) toggleStatus(id string, status models.VendorStatus) error {
	return s.updateVendor(id, func(v *models.Vendor) error {
		if v.Status == status {
			v.Status = models.VendorPending
		} else {
			v.Status = status
		}
		return nil
	})
}

// RateVendor sets the rating directly. The review count is always 1.
func (s *Store) RateVendor(id string, rating int) error {
	if rating < 1 || rating > models.MaxRating {
		return ErrInvalidRating
	}
	return s.updateVendor(id, func(v *models.Vendor) error {
		v.Rating = float64(rating)
		v.ReviewCount = 1
		return nil
	})
}

// ResetRatings clears every vendor's rating.
func (s *Store) ResetRatings() {
	_ = s.update(func(d *models.Document) error {
		for i := range d.Vendors {
			d.Vendors[i].Rating = 0
			d.Vendors[i].ReviewCount = 0
		}
		return nil
	})
}

// UpdateVendorNotes replaces a vendor's notes.
func (s *Store) UpdateVendorNotes(id, notes string) error {
	return s.updateVendor(id, func(v *models.Vendor) error {
		v.Notes = notes
		return nil
	})
}

func (s *Store) updateVendor(id string, fn func(v *models.Vendor) error) error {
	return s.update(func(d *models.Document) error {
		i := vendorIndex(d, id)
		if i < 0 {
			return fmt.Errorf("vendor %s: %w", id, ErrNotFound)
		}
		return fn(&d.Vendors[i])
	})
}

func vendorIndex(d *models.Document, id string) int {
	return slices.IndexFunc(d.Vendors, func(v models.Vendor) bool { return v.ID == id })
}

// Categories

// AddCategory appends a new category name.
func (s *Store) AddCategory(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyCategory
	}
	return s.update(func(d *models.Document) error {
		if d.HasCategory(name) {
			return fmt.Errorf("%w: %q", ErrDuplicateCategory, name)
		}
		d.Categories = append(d.Categories, name)
		return nil
	})
}

// Budget

// SelectVendor picks vendorID for the category's budget line.
// An empty vendorID clears the selection.
func (s *Store) SelectVendor(category, vendorID string) error {
	return s.update(func(d *models.Document) error {
		budget, err := calculator.SelectVendor(d.Budget, d.Vendors, category, vendorID)
		if err != nil {
			return fmt.Errorf("failed to select vendor: %w", err)
		}
		d.Budget = budget
		return nil
	})
}

// ResetSelections clears every budget selection.
func (s *Store) ResetSelections() {
	_ = s.update(func(d *models.Document) error {
		d.Budget = calculator.ResetSelections(d.Budget)
		return nil
	})
}

// Notes

// AddNote puts a new note at the top of the board.
func (s *Store) AddNote(content, imageURL string) (models.InspirationNote, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.InspirationNote{}, ErrEmptyNote
	}
	note := models.InspirationNote{
		Content:  content,
		Category: models.DefaultNoteCategory,
		ImageURL: imageURL,
	}
	err := s.update(func(d *models.Document) error {
		note.ID = s.newID()
		d.Notes = slices.Insert(d.Notes, 0, note)
		return nil
	})
	return note, err
}

// RemoveNote deletes a note.
func (s *Store) RemoveNote(id string) error {
	return s.update(func(d *models.Document) error {
		i := noteIndex(d, id)
		if i < 0 {
			return fmt.Errorf("note %s: %w", id, ErrNotFound)
		}
		d.Notes = slices.Delete(d.Notes, i, i+1)
		return nil
	})
}

// SetSuggestion stores the advisor's analysis on a note.
func (s *Store) SetSuggestion(id, suggestion string) error {
	return s.update(func(d *models.Document) error {
		i := noteIndex(d, id)
		if i < 0 {
			return fmt.Errorf("note %s: %w", id, ErrNotFound)
		}
		d.Notes[i].AISuggestion = suggestion
		return nil
	})
}

func noteIndex(d *models.Document, id string) int {
	return slices.IndexFunc(d.Notes, func(n models.InspirationNote) bool { return n.ID == id })
}

// Guests

// AddGuest appends a guest on the given side. Names may be empty and filled in
// later with UpdateGuest.
func (s *Store) AddGuest(side models.Side, firstName, lastName string) (models.Guest, error) {
	if !side.Valid() {
		return models.Guest{}, ErrInvalidSide
	}
	g := models.Guest{FirstName: firstName, LastName: lastName, Side: side}
	err := s.update(func(d *models.Document) error {
		g.ID = s.newID()
		d.Guests = append(d.Guests, g)
		return nil
	})
	return g, err
}

// UpdateGuest sets a guest's names.
func (s *Store) UpdateGuest(id, firstName, lastName string) error {
	return s.update(func(d *models.Document) error {
		i := guestIndex(d, id)
		if i < 0 {
			return fmt.Errorf("guest %s: %w", id, ErrNotFound)
		}
		d.Guests[i].FirstName = firstName
		d.Guests[i].LastName = lastName
		return nil
	})
}

// RemoveGuest deletes a guest.
func (s *Store) RemoveGuest(id string) error {
	return s.update(func(d *models.Document) error {
		i := guestIndex(d, id)
		if i < 0 {
			return fmt.Errorf("guest %s: %w", id, ErrNotFound)
		}
		d.Guests = slices.Delete(d.Guests, i, i+1)
		return nil
	})
}

// SearchGuests returns guests whose first or last name contains term,
// case-insensitively. An empty term matches everyone.
func (s *Store) SearchGuests(term string) []models.Guest {
	s.mu.Lock()
	defer s.mu.Unlock()

	term = strings.ToLower(term)
	var out []models.Guest
	for _, g := range s.doc.Guests {
		if strings.Contains(strings.ToLower(g.FirstName), term) ||
			strings.Contains(strings.ToLower(g.LastName), term) {
			out = append(out, g)
		}
	}
	return out
}

func guestIndex(d *models.Document, id string) int {
	return slices.IndexFunc(d.Guests, func(g models.Guest) bool { return g.ID == id })
}
