package entity

import (
	"time"

	"github.com/google/uuid"
)

// Notebook orders pages by reference. PageIds is the navigation order.
type Notebook struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Title     string
	PageIds   []uuid.UUID
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// IndexOf returns the position of a page in the notebook, or -1.
func (n *Notebook) IndexOf(pageId uuid.UUID) int {
	for i, id := range n.PageIds {
		if id == pageId {
			return i
		}
	}
	return -1
}

// WithoutPage returns a copy of the page list with pageId removed.
func (n *Notebook) WithoutPage(pageId uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(n.PageIds))
	for _, id := range n.PageIds {
		if id != pageId {
			out = append(out, id)
		}
	}
	return out
}

// Clone copies the notebook so callers can stage changes before persisting them.
func (n *Notebook) Clone() *Notebook {
	if n == nil {
		return nil
	}
	c := *n
	c.PageIds = append([]uuid.UUID(nil), n.PageIds...)
	if n.UpdatedAt != nil {
		t := *n.UpdatedAt
		c.UpdatedAt = &t
	}
	return &c
}
