// Package analysis turns beat/bar/section boundaries supplied by the host
// into one-shot reactions.
package analysis

// Kind names a boundary type.
type Kind int

const (
	Beat Kind = iota
	Bar
	Section
)

func (k Kind) String() string {
	switch k {
	case Beat:
		return "beat"
	case Bar:
		return "bar"
	case Section:
		return "section"
	}
	return "unknown"
}

// Update is one analysis feed. Nil fields are left alone.
type Update struct {
	Beat    *int     `json:"beatIndex,omitempty"`
	Bar     *int     `json:"barIndex,omitempty"`
	Section *int     `json:"sectionIndex,omitempty"`
	Time    *float64 `json:"time,omitempty"`
}

// Cursor remembers the last index seen per boundary type. Indices start at -1.
type Cursor struct {
	last [3]int
}

func NewCursor() *Cursor {
	c := &Cursor{}
	c.Reset()
	return c
}

// Reset forgets every index, e.g. on a new track.
func (c *Cursor) Reset() { c.last = [3]int{-1, -1, -1} }

// Last returns the last index seen for k.
func (c *Cursor) Last(k Kind) int { return c.last[k] }

// Apply records the indices in u and calls fire once for every kind whose
// index changed, in beat, bar, section order.
func (c *Cursor) Apply(u Update, fire func(Kind)) {
	for k, v := range [3]*int{u.Beat, u.Bar, u.Section} {
		if v == nil || *v == c.last[k] {
			continue
		}
		c.last[k] = *v
		if fire != nil {
			fire(Kind(k))
		}
	}
}
