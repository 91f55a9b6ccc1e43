package models

// Side is which half of the couple invited a guest.
type Side string

const (
	SideBride Side = "bride"
	SideGroom Side = "groom"
)

// Valid reports whether s is bride or groom.
func (s Side) Valid() bool {
	return s == SideBride || s == SideGroom
}

// Label returns the display label used in exports.
func (s Side) Label() string {
	if s == SideBride {
		return "Bride's Side"
	}
	return "Groom's Side"
}

// Guest is one invitee.
type Guest struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Side      Side   `json:"side"`
}
