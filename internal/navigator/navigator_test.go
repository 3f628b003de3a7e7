package navigator

import (
	"context"
	"errors"
	"testing"

	"econote-be/internal/entity"
	"econote-be/internal/repository/contract"
	"econote-be/internal/repository/memory"
	"econote-be/pkg/ink"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errInjected = errors.New("injected failure")

// flakyGateway fails the named operations while they are armed.
type flakyGateway struct {
	contract.PersistenceGateway
	fail map[string]bool
}

func (g *flakyGateway) GetPage(ctx context.Context, id uuid.UUID) (*entity.Page, error) {
	if g.fail["GetPage"] {
		return nil, errInjected
	}
	return g.PersistenceGateway.GetPage(ctx, id)
}

func (g *flakyGateway) SavePage(ctx context.Context, p *entity.Page) error {
	if g.fail["SavePage"] {
		return errInjected
	}
	return g.PersistenceGateway.SavePage(ctx, p)
}

func (g *flakyGateway) SaveNotebook(ctx context.Context, nb *entity.Notebook) error {
	if g.fail["SaveNotebook"] {
		return errInjected
	}
	return g.PersistenceGateway.SaveNotebook(ctx, nb)
}

func (g *flakyGateway) DeletePage(ctx context.Context, id uuid.UUID) error {
	if g.fail["DeletePage"] {
		return errInjected
	}
	return g.PersistenceGateway.DeletePage(ctx, id)
}

type fixture struct {
	gw    *flakyGateway
	store *ink.Store
	nav   *Navigator
	nb    *entity.Notebook
	pages []*entity.Page
}

func newFixture(t *testing.T, pageCount int) *fixture {
	t.Helper()
	ctx := context.Background()
	gw := &flakyGateway{PersistenceGateway: memory.NewGateway(), fail: map[string]bool{}}
	userId := uuid.New()

	f := &fixture{gw: gw, store: ink.NewStore()}
	f.nb = &entity.Notebook{Id: uuid.New(), UserId: userId, Title: "NB"}
	for i := 0; i < pageCount; i++ {
		p := entity.NewPage(userId, DefaultPageTitle(i+1))
		p.Strokes = []ink.Stroke{{ID: p.Title, Points: []ink.Point{{X: float64(i)}}}}
		require.NoError(t, gw.SavePage(ctx, p))
		f.pages = append(f.pages, p)
		f.nb.PageIds = append(f.nb.PageIds, p.Id)
	}
	require.NoError(t, gw.SaveNotebook(ctx, f.nb))

	f.nav = New(gw, f.store)
	require.NoError(t, f.nav.Open(ctx, f.nb.Id, uuid.Nil))
	return f
}

func (f *fixture) storedNotebook(t *testing.T) *entity.Notebook {
	nb, err := f.gw.GetNotebook(context.Background(), f.nb.Id)
	require.NoError(t, err)
	return nb
}

func TestOpen_LoadsFirstPage(t *testing.T) {
	f := newFixture(t, 3)

	assert.Equal(t, 1, f.nav.CurrentIndex())
	assert.Equal(t, 3, f.nav.TotalPages())
	assert.Equal(t, "Page 1", f.store.Strokes()[0].ID)
}

func TestOpen_ProvisionsEmptyNotebook(t *testing.T) {
	ctx := context.Background()
	gw := memory.NewGateway()
	nb := &entity.Notebook{Id: uuid.New(), UserId: uuid.New(), Title: "Fresh"}
	require.NoError(t, gw.SaveNotebook(ctx, nb))

	nav := New(gw, ink.NewStore())
	require.NoError(t, nav.Open(ctx, nb.Id, uuid.Nil))

	assert.Equal(t, 1, nav.TotalPages())
	assert.Equal(t, "Page 1", nav.CurrentPage().Title)
}

func TestOpen_Errors(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	assert.ErrorIs(t, f.nav.Open(ctx, uuid.New(), uuid.Nil), ErrNotebookNotFound)
	assert.ErrorIs(t, f.nav.Open(ctx, f.nb.Id, uuid.New()), ErrPageNotInNotebook)
	assert.Equal(t, 1, f.nav.CurrentIndex())
}

func TestNext_FlushesAndLoads(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	f.store.Append(ink.Stroke{ID: "new-on-1"})

	require.NoError(t, f.nav.Next(ctx))

	assert.Equal(t, 2, f.nav.CurrentIndex())
	assert.Equal(t, "Page 2", f.store.Strokes()[0].ID)

	saved, err := f.gw.GetPage(ctx, f.pages[0].Id)
	require.NoError(t, err)
	require.Len(t, saved.Strokes, 2)
	assert.Equal(t, "new-on-1", saved.Strokes[1].ID)
}

func TestNext_OnLastPageCreatesExactlyOnePage(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	require.NoError(t, f.nav.Next(ctx))

	assert.Equal(t, 2, f.nav.TotalPages())
	assert.Equal(t, 2, f.nav.CurrentIndex())
	assert.Equal(t, "Page 2", f.nav.CurrentPage().Title)
	assert.Empty(t, f.store.Strokes())
	assert.Len(t, f.storedNotebook(t).PageIds, 2)
}

func TestPrevious(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	require.NoError(t, f.nav.Previous(ctx))
	assert.Equal(t, 1, f.nav.CurrentIndex())

	require.NoError(t, f.nav.Next(ctx))
	require.NoError(t, f.nav.Previous(ctx))
	assert.Equal(t, 1, f.nav.CurrentIndex())
}

func TestSwitchTo(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()

	require.NoError(t, f.nav.SwitchTo(ctx, f.pages[2].Id))
	assert.Equal(t, 3, f.nav.CurrentIndex())

	assert.ErrorIs(t, f.nav.SwitchTo(ctx, uuid.New()), ErrPageNotInNotebook)
	assert.Equal(t, 3, f.nav.CurrentIndex())
}

func TestSwitchTo_SamePageKeepsRedo(t *testing.T) {
	f := newFixture(t, 2)
	f.store.Undo()
	require.Equal(t, 1, f.store.RedoSize())

	require.NoError(t, f.nav.SwitchTo(context.Background(), f.pages[0].Id))
	assert.Equal(t, 1, f.store.RedoSize())
}

func TestSwitch_ClearsRedo(t *testing.T) {
	f := newFixture(t, 2)
	f.store.Undo()

	require.NoError(t, f.nav.Next(context.Background()))
	assert.Equal(t, 0, f.store.RedoSize())
}

func TestSwitch_FlushFailureKeepsCurrentPage(t *testing.T) {
	f := newFixture(t, 2)
	f.gw.fail["SavePage"] = true

	err := f.nav.Next(context.Background())

	assert.ErrorIs(t, err, errInjected)
	assert.Equal(t, 1, f.nav.CurrentIndex())
	assert.Equal(t, f.pages[0].Id, f.nav.CurrentPage().Id)
}

func TestSwitch_LoadFailureKeepsCurrentPage(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	f.store.Append(ink.Stroke{ID: "unsaved"})

	// Flush reads the page first; fail only the incoming page by deleting it behind the navigator.
	require.NoError(t, f.gw.PersistenceGateway.DeletePage(ctx, f.pages[1].Id))

	err := f.nav.Next(ctx)

	assert.ErrorIs(t, err, ErrPageNotFound)
	assert.Equal(t, 1, f.nav.CurrentIndex())
	assert.Len(t, f.store.Strokes(), 2, "live strokes survive the failed switch")
}

func TestCreatePage_AppendsWithoutSwitching(t *testing.T) {
	f := newFixture(t, 1)

	page, err := f.nav.CreatePage(context.Background(), "Sketches")
	require.NoError(t, err)

	assert.Equal(t, "Sketches", page.Title)
	assert.Equal(t, 2, f.nav.TotalPages())
	assert.Equal(t, 1, f.nav.CurrentIndex())
	assert.Equal(t, page.Id, f.storedNotebook(t).PageIds[1])
}

func TestCreatePage_NotebookSaveFailure(t *testing.T) {
	f := newFixture(t, 1)
	f.gw.fail["SaveNotebook"] = true

	_, err := f.nav.CreatePage(context.Background(), "")

	assert.ErrorIs(t, err, errInjected)
	assert.Equal(t, 1, f.nav.TotalPages())
}

func TestDeletePage_LastPageRefused(t *testing.T) {
	f := newFixture(t, 1)

	err := f.nav.DeletePage(context.Background(), f.pages[0].Id)

	assert.ErrorIs(t, err, ErrLastPage)
	assert.Equal(t, []uuid.UUID{f.pages[0].Id}, f.storedNotebook(t).PageIds)
	assert.Equal(t, 1, f.nav.TotalPages())
}

func TestDeletePage_CurrentMovesToClampedIndex(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()
	require.NoError(t, f.nav.SwitchTo(ctx, f.pages[2].Id))

	require.NoError(t, f.nav.DeletePage(ctx, f.pages[2].Id))

	assert.Equal(t, 2, f.nav.TotalPages())
	assert.Equal(t, 2, f.nav.CurrentIndex())
	assert.Equal(t, f.pages[1].Id, f.nav.CurrentPage().Id)

	gone, err := f.gw.GetPage(ctx, f.pages[2].Id)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestDeletePage_CurrentInMiddle(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()
	require.NoError(t, f.nav.Next(ctx))

	require.NoError(t, f.nav.DeletePage(ctx, f.pages[1].Id))

	assert.Equal(t, 2, f.nav.CurrentIndex())
	assert.Equal(t, f.pages[2].Id, f.nav.CurrentPage().Id)
}

func TestDeletePage_OtherPageKeepsCurrent(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()
	require.NoError(t, f.nav.SwitchTo(ctx, f.pages[2].Id))

	require.NoError(t, f.nav.DeletePage(ctx, f.pages[0].Id))

	assert.Equal(t, 2, f.nav.CurrentIndex())
	assert.Equal(t, f.pages[2].Id, f.nav.CurrentPage().Id)
	assert.Equal(t, []uuid.UUID{f.pages[1].Id, f.pages[2].Id}, f.storedNotebook(t).PageIds)
}

func TestDeletePage_NotebookSaveFailureChangesNothing(t *testing.T) {
	f := newFixture(t, 2)
	f.gw.fail["SaveNotebook"] = true

	err := f.nav.DeletePage(context.Background(), f.pages[0].Id)

	assert.ErrorIs(t, err, errInjected)
	assert.Equal(t, 2, f.nav.TotalPages())
	assert.Equal(t, f.pages[0].Id, f.nav.CurrentPage().Id)
}

func TestNotebookAlwaysKeepsAPage(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.nav.CreatePage(ctx, "")
		require.NoError(t, err)
	}
	for _, id := range f.nav.Notebook().PageIds {
		_ = f.nav.DeletePage(ctx, id)
		assert.GreaterOrEqual(t, len(f.storedNotebook(t).PageIds), 1)
	}
	assert.Equal(t, 1, f.nav.TotalPages())
}

func TestOperationsRequireOpenNotebook(t *testing.T) {
	nav := New(memory.NewGateway(), ink.NewStore())
	ctx := context.Background()

	assert.ErrorIs(t, nav.Next(ctx), ErrNotOpen)
	assert.ErrorIs(t, nav.Previous(ctx), ErrNotOpen)
	_, err := nav.CreatePage(ctx, "x")
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.NoError(t, nav.Flush(ctx))
	assert.Equal(t, 0, nav.CurrentIndex())
}

func TestAddPage_KeepsPreparedFields(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	img := "iVBORw0KGgo="
	scanned := entity.NewPage(f.nb.UserId, "Scan")
	scanned.ImageData = &img
	scanned.IsScanned = true

	require.NoError(t, f.nav.AddPage(ctx, scanned))

	stored, err := f.gw.GetPage(ctx, scanned.Id)
	require.NoError(t, err)
	assert.True(t, stored.IsScanned)
	assert.Equal(t, img, *stored.ImageData)
	assert.Equal(t, scanned.Id, f.storedNotebook(t).PageIds[1])
	assert.Equal(t, 1, f.nav.CurrentIndex())
}

func TestFlush_PageDeletedByAnotherTabIsNotRecreated(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	f.store.Append(ink.Stroke{ID: "late"})

	other := New(f.gw, ink.NewStore())
	require.NoError(t, other.Open(ctx, f.nb.Id, uuid.Nil))
	require.NoError(t, other.DeletePage(ctx, f.pages[0].Id))

	err := f.nav.Flush(ctx)

	assert.ErrorIs(t, err, ErrPageNotFound)
	page, err := f.gw.GetPage(ctx, f.pages[0].Id)
	require.NoError(t, err)
	assert.Nil(t, page)
	assert.Equal(t, []uuid.UUID{f.pages[1].Id}, f.storedNotebook(t).PageIds)
	assert.Equal(t, f.pages[0].Id, f.nav.CurrentPage().Id)
}

func TestOpen_ReopeningCurrentPageKeepsLiveStrokes(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	f.store.Append(ink.Stroke{ID: "live"})

	require.NoError(t, f.nav.Open(ctx, f.nb.Id, f.pages[0].Id))

	strokes := f.store.Strokes()
	require.Len(t, strokes, 2)
	assert.Equal(t, "live", strokes[1].ID)
}

func TestNext_VisitsPageAppendedByAnotherTab(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	other := New(f.gw, ink.NewStore())
	require.NoError(t, other.Open(ctx, f.nb.Id, uuid.Nil))
	added, err := other.CreatePage(ctx, "From the other tab")
	require.NoError(t, err)

	require.NoError(t, f.nav.Next(ctx))

	assert.Equal(t, added.Id, f.nav.CurrentPage().Id)
	assert.Equal(t, 2, f.nav.CurrentIndex())
	assert.Equal(t, 2, f.nav.TotalPages())
	assert.Len(t, f.storedNotebook(t).PageIds, 2)
}
