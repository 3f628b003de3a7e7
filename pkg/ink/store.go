// Package ink holds the stroke data model and the per-page stroke store with undo/redo.
package ink

import "errors"

var ErrStrokeNotFound = errors.New("stroke not found")

// Store is the live stroke sequence of the open page plus its redo stack.
//
// A Store belongs to a single drawing session and is not safe for concurrent use;
// the session serializes access.
type Store struct {
	strokes []Stroke
	redo    []Stroke
}

func NewStore() *Store {
	return &Store{
		strokes: make([]Stroke, 0),
		redo:    make([]Stroke, 0),
	}
}

// Append adds a stroke to the end of the live sequence. Any pending redo history is discarded.
func (s *Store) Append(stroke Stroke) {
	s.redo = s.redo[:0]
	s.strokes = append(s.strokes, stroke.Clone())
}

// Undo moves the last live stroke onto the redo stack. Reports false when there is nothing to undo.
func (s *Store) Undo() bool {
	n := len(s.strokes)
	if n == 0 {
		return false
	}
	last := s.strokes[n-1]
	s.strokes = s.strokes[:n-1]
	s.redo = append(s.redo, last)
	return true
}

// Redo restores the most recently undone stroke. Reports false when the redo stack is empty.
func (s *Store) Redo() bool {
	n := len(s.redo)
	if n == 0 {
		return false
	}
	last := s.redo[n-1]
	s.redo = s.redo[:n-1]
	s.strokes = append(s.strokes, last)
	return true
}

// Clear empties the live sequence. The redo stack is left as is.
func (s *Store) Clear() {
	s.strokes = s.strokes[:0]
}

// ClearRedo drops the redo history.
func (s *Store) ClearRedo() {
	s.redo = s.redo[:0]
}

// Load replaces the live sequence with the strokes of a newly opened page and clears redo.
func (s *Store) Load(strokes []Stroke) {
	s.strokes = CloneStrokes(strokes)
	s.redo = s.redo[:0]
}

// ReplacePoints swaps the point list of the open (last) stroke.
func (s *Store) ReplacePoints(strokeID string, points []Point) error {
	last := s.last()
	if last == nil || last.ID != strokeID {
		return ErrStrokeNotFound
	}
	pts := make([]Point, len(points))
	copy(pts, points)
	last.Points = pts
	return nil
}

// AppendPoints extends the open (last) stroke.
func (s *Store) AppendPoints(strokeID string, points ...Point) error {
	last := s.last()
	if last == nil || last.ID != strokeID {
		return ErrStrokeNotFound
	}
	last.Points = append(last.Points, points...)
	return nil
}

// Last returns a copy of the last live stroke.
func (s *Store) Last() (Stroke, bool) {
	last := s.last()
	if last == nil {
		return Stroke{}, false
	}
	return last.Clone(), true
}

func (s *Store) last() *Stroke {
	if len(s.strokes) == 0 {
		return nil
	}
	return &s.strokes[len(s.strokes)-1]
}

// Strokes returns a copy of the live sequence in insertion order.
func (s *Store) Strokes() []Stroke {
	return CloneStrokes(s.strokes)
}

// Len is the number of live strokes.
func (s *Store) Len() int {
	return len(s.strokes)
}

// RedoSize is the number of strokes that redo can restore.
func (s *Store) RedoSize() int {
	return len(s.redo)
}
