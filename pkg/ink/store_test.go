package ink

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stroke(id string, n int) Stroke {
	pts := make([]Point, n)
	for i := range pts {
		pts[i] = Point{X: float64(i), Y: float64(i), Pressure: DefaultPressure}
	}
	return Stroke{ID: id, Points: pts, Color: "#000000", Width: 2}
}

func ids(strokes []Stroke) []string {
	out := make([]string, len(strokes))
	for i, s := range strokes {
		out[i] = s.ID
	}
	return out
}

func TestStore_UndoRedo(t *testing.T) {
	s := NewStore()
	s.Append(stroke("A", 2))
	s.Append(stroke("B", 3))

	require.True(t, s.Undo())
	assert.Equal(t, []string{"A"}, ids(s.Strokes()))
	assert.Equal(t, 1, s.RedoSize())

	require.True(t, s.Redo())
	assert.Equal(t, []string{"A", "B"}, ids(s.Strokes()))
	assert.Equal(t, 0, s.RedoSize())
}

func TestStore_RedoAfterUndoRestoresSequence(t *testing.T) {
	s := NewStore()
	for _, id := range []string{"A", "B", "C"} {
		s.Append(stroke(id, 2))
	}
	before := s.Strokes()

	s.Undo()
	s.Redo()

	assert.Equal(t, before, s.Strokes())
}

func TestStore_EmptyOperationsAreNoops(t *testing.T) {
	s := NewStore()
	assert.False(t, s.Undo())
	assert.False(t, s.Redo())
	assert.Empty(t, s.Strokes())
	assert.Equal(t, 0, s.RedoSize())
}

func TestStore_AppendAfterUndoClearsRedo(t *testing.T) {
	s := NewStore()
	s.Append(stroke("A", 1))
	s.Append(stroke("B", 1))
	s.Undo()
	require.Equal(t, 1, s.RedoSize())

	s.Append(stroke("C", 1))

	assert.Equal(t, 0, s.RedoSize())
	assert.False(t, s.Redo())
	assert.Equal(t, []string{"A", "C"}, ids(s.Strokes()))
}

func TestStore_NoStrokeInBothSequences(t *testing.T) {
	s := NewStore()
	s.Append(stroke("A", 1))
	s.Append(stroke("B", 1))
	s.Undo()
	s.Undo()
	s.Redo()

	live := map[string]bool{}
	for _, st := range s.Strokes() {
		live[st.ID] = true
	}
	for _, st := range s.redo {
		assert.False(t, live[st.ID], "stroke %s is live and redoable", st.ID)
	}
}

func TestStore_ClearKeepsRedoStack(t *testing.T) {
	s := NewStore()
	s.Append(stroke("A", 1))
	s.Append(stroke("B", 1))
	s.Undo()
	s.Clear()

	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Undo())
	assert.Equal(t, 1, s.RedoSize())
}

func TestStore_LoadClearsRedo(t *testing.T) {
	s := NewStore()
	s.Append(stroke("A", 1))
	s.Undo()

	s.Load([]Stroke{stroke("X", 4)})

	assert.Equal(t, []string{"X"}, ids(s.Strokes()))
	assert.Equal(t, 0, s.RedoSize())
}

func TestStore_ReplaceAndAppendPoints(t *testing.T) {
	s := NewStore()
	s.Append(stroke("A", 1))
	s.Append(stroke("B", 1))

	err := s.ReplacePoints("B", []Point{{X: 5, Y: 5}, {X: 6, Y: 6}})
	require.NoError(t, err)
	require.NoError(t, s.AppendPoints("B", Point{X: 7, Y: 7}))

	last, ok := s.Last()
	require.True(t, ok)
	assert.Len(t, last.Points, 3)
	assert.Equal(t, 7.0, last.Points[2].X)

	assert.ErrorIs(t, s.ReplacePoints("A", nil), ErrStrokeNotFound)
	assert.ErrorIs(t, s.AppendPoints("missing"), ErrStrokeNotFound)
}

func TestStore_StrokesReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Append(stroke("A", 2))

	out := s.Strokes()
	out[0].Points[0].X = 99

	last, _ := s.Last()
	assert.Equal(t, 0.0, last.Points[0].X)
}

func TestNewStrokeID(t *testing.T) {
	a, b := NewStrokeID(), NewStrokeID()
	assert.True(t, strings.HasPrefix(a, "stroke-"))
	assert.NotEqual(t, a, b)
}
