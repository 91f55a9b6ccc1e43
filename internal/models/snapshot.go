package models

// Snapshot is a full or partial copy of the Document received from the remote
// store at a point in time.
//
// Collections are pointers so that "absent" (nil) can be told apart from
// "present but empty". JSON null decodes to nil.
type Snapshot struct {
	Vendors    *[]Vendor          `json:"vendors,omitempty"`
	Budget     *[]BudgetLineItem  `json:"budget,omitempty"`
	Notes      *[]InspirationNote `json:"notes,omitempty"`
	Guests     *[]Guest           `json:"guests,omitempty"`
	Categories *[]string          `json:"categories,omitempty"`

	// Revision is the remote store's write counter for the document path.
	Revision int64 `json:"-"`

	// Writer is the write token of the write that produced this snapshot.
	// Empty for snapshots that did not come from a tracked write.
	Writer string `json:"-"`
}

// Empty reports whether the snapshot carries no collection at all,
// which is how a missing remote value is represented.
func (s Snapshot) Empty() bool {
	return s.Vendors == nil && s.Budget == nil && s.Notes == nil && s.Guests == nil && s.Categories == nil
}

// SnapshotOf returns a snapshot with every collection of d present.
func SnapshotOf(d Document) Snapshot {
	c := d.Clone()
	return Snapshot{
		Vendors:    &c.Vendors,
		Budget:     &c.Budget,
		Notes:      &c.Notes,
		Guests:     &c.Guests,
		Categories: &c.Categories,
	}
}

// ApplyTo returns base with every collection present in s replaced wholesale.
// Collections absent from s are kept from base.
func (s Snapshot) ApplyTo(base Document) Document {
	out := base.Clone()
	if s.Vendors != nil {
		out.Vendors = cloneOrEmpty(*s.Vendors)
	}
	if s.Budget != nil {
		out.Budget = cloneOrEmpty(*s.Budget)
	}
	if s.Notes != nil {
		out.Notes = cloneOrEmpty(*s.Notes)
	}
	if s.Guests != nil {
		out.Guests = cloneOrEmpty(*s.Guests)
	}
	if s.Categories != nil {
		out.Categories = cloneOrEmpty(*s.Categories)
	}
	return out
}

// Fields lists the JSON names of the collections present in s.
func (s Snapshot) Fields() []string {
	var fields []string
	if s.Vendors != nil {
		fields = append(fields, "vendors")
	}
	if s.Budget != nil {
		fields = append(fields, "budget")
	}
	if s.Notes != nil {
		fields = append(fields, "notes")
	}
	if s.Guests != nil {
		fields = append(fields, "guests")
	}
	if s.Categories != nil {
		fields = append(fields, "categories")
	}
	return fields
}

func cloneOrEmpty[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
