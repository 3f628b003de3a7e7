// Package navigator tracks the current page of an open notebook and moves between pages,
// flushing the outgoing page before the incoming one is loaded.
package navigator

import (
	"context"
	"errors"
	"fmt"

	"econote-be/internal/entity"
	"econote-be/internal/repository/contract"
	"econote-be/pkg/ink"

	"github.com/google/uuid"
)

var (
	ErrNotOpen           = errors.New("no notebook is open")
	ErrNotebookNotFound  = errors.New("notebook not found")
	ErrPageNotFound      = errors.New("page not found")
	ErrPageNotInNotebook = errors.New("page does not belong to this notebook")
	ErrLastPage          = errors.New("a notebook must keep at least one page")
)

// Canvas receives the strokes of the page being opened and provides the live strokes to flush.
type Canvas interface {
	Load(strokes []ink.Stroke)
	Strokes() []ink.Stroke
}

// Navigator is owned by a single session and is not safe for concurrent use.
//
// On any failure the current notebook, page and index are left as they were.
type Navigator struct {
	gw     contract.PersistenceGateway
	canvas Canvas

	notebook *entity.Notebook
	current  *entity.Page
	index    int
}

func New(gw contract.PersistenceGateway, canvas Canvas) *Navigator {
	return &Navigator{gw: gw, canvas: canvas}
}

// DefaultPageTitle is the title given to the n-th page (1-based) when none is supplied.
func DefaultPageTitle(n int) string {
	return fmt.Sprintf("Page %d", n)
}

// Open loads a notebook and one of its pages. uuid.Nil opens the first page.
// An empty notebook gets a first page provisioned.
func (n *Navigator) Open(ctx context.Context, notebookId, pageId uuid.UUID) error {
	nb, err := n.gw.GetNotebook(ctx, notebookId)
	if err != nil {
		return err
	}
	if nb == nil {
		return ErrNotebookNotFound
	}

	if len(nb.PageIds) == 0 {
		first := entity.NewPage(nb.UserId, DefaultPageTitle(1))
		if nb, err = n.appendPage(ctx, nb, first); err != nil {
			return err
		}
	}

	idx := 0
	if pageId != uuid.Nil {
		if idx = nb.IndexOf(pageId); idx < 0 {
			return ErrPageNotInNotebook
		}
	}

	if err := n.Flush(ctx); err != nil {
		return err
	}
	page, err := n.load(ctx, nb.PageIds[idx])
	if err != nil {
		return err
	}
	n.notebook = nb
	n.set(page, idx)
	return nil
}

func (n *Navigator) IsOpen() bool {
	return n.notebook != nil && n.current != nil
}

// Flush writes the live strokes onto the latest stored copy of the current page.
// Other fields (title, OCR text) written elsewhere are kept. A page deleted elsewhere
// is reported as ErrPageNotFound and is not written back.
func (n *Navigator) Flush(ctx context.Context) error {
	if !n.IsOpen() {
		return nil
	}

	page, err := n.gw.GetPage(ctx, n.current.Id)
	if err != nil {
		return err
	}
	if page == nil {
		return fmt.Errorf("%w: %s", ErrPageNotFound, n.current.Id)
	}
	page.Strokes = n.canvas.Strokes()

	if err := n.gw.SavePage(ctx, page); err != nil {
		return err
	}
	n.current = page.Clone()
	return nil
}

// Next moves one page forward. On the last page it creates a new page and switches to it.
// The page order is re-read first so pages appended by another tab are visited, not duplicated.
func (n *Navigator) Next(ctx context.Context) error {
	if !n.IsOpen() {
		return ErrNotOpen
	}
	nb, err := n.latestNotebook(ctx)
	if err != nil {
		return err
	}
	idx := nb.IndexOf(n.current.Id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrPageNotFound, n.current.Id)
	}
	if idx < len(nb.PageIds)-1 {
		return n.moveTo(ctx, nb, idx+1)
	}

	if err := n.Flush(ctx); err != nil {
		return err
	}
	page, err := n.CreatePage(ctx, "")
	if err != nil {
		return err
	}
	n.set(page, len(n.notebook.PageIds)-1)
	return nil
}

// Previous moves one page back. No-op on the first page.
func (n *Navigator) Previous(ctx context.Context) error {
	if !n.IsOpen() {
		return ErrNotOpen
	}
	if n.index == 0 {
		return nil
	}
	return n.switchToIndex(ctx, n.index-1)
}

// SwitchTo makes pageId current. Switching to the current page is a no-op.
func (n *Navigator) SwitchTo(ctx context.Context, pageId uuid.UUID) error {
	if !n.IsOpen() {
		return ErrNotOpen
	}
	idx := n.notebook.IndexOf(pageId)
	if idx < 0 {
		return ErrPageNotInNotebook
	}
	return n.switchToIndex(ctx, idx)
}

// CreatePage persists a new empty page at the end of the notebook without switching to it.
// An empty title becomes "Page N".
func (n *Navigator) CreatePage(ctx context.Context, title string) (*entity.Page, error) {
	if !n.IsOpen() {
		return nil, ErrNotOpen
	}
	nb, err := n.latestNotebook(ctx)
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = DefaultPageTitle(len(nb.PageIds) + 1)
	}

	page := entity.NewPage(nb.UserId, title)
	if err := n.addPage(ctx, nb, page); err != nil {
		return nil, err
	}
	return page.Clone(), nil
}

// AddPage persists a prepared page (e.g. a scanned one) at the end of the notebook without switching to it.
func (n *Navigator) AddPage(ctx context.Context, page *entity.Page) error {
	if !n.IsOpen() {
		return ErrNotOpen
	}
	nb, err := n.latestNotebook(ctx)
	if err != nil {
		return err
	}
	return n.addPage(ctx, nb, page)
}

func (n *Navigator) addPage(ctx context.Context, nb *entity.Notebook, page *entity.Page) error {
	nb, err := n.appendPage(ctx, nb, page)
	if err != nil {
		return err
	}
	n.notebook = nb
	n.index = nb.IndexOf(n.current.Id)
	return nil
}

// DeletePage removes a page from the notebook and the gateway. The last page cannot be deleted.
// When the current page is deleted, the page now at the same (clamped) index becomes current.
func (n *Navigator) DeletePage(ctx context.Context, pageId uuid.UUID) error {
	if !n.IsOpen() {
		return ErrNotOpen
	}
	nb, err := n.latestNotebook(ctx)
	if err != nil {
		return err
	}
	idx := nb.IndexOf(pageId)
	if idx < 0 {
		return ErrPageNotInNotebook
	}
	if len(nb.PageIds) <= 1 {
		return ErrLastPage
	}

	staged := nb.Clone()
	staged.PageIds = nb.WithoutPage(pageId)

	deletingCurrent := pageId == n.current.Id
	var replacement *entity.Page
	replacementIdx := idx
	if deletingCurrent {
		if replacementIdx >= len(staged.PageIds) {
			replacementIdx = len(staged.PageIds) - 1
		}
		if replacement, err = n.load(ctx, staged.PageIds[replacementIdx]); err != nil {
			return err
		}
	}

	if err := n.gw.SaveNotebook(ctx, staged); err != nil {
		return err
	}
	n.notebook = staged
	if deletingCurrent {
		n.set(replacement, replacementIdx)
	} else {
		n.index = staged.IndexOf(n.current.Id)
	}

	// The notebook no longer references the page; a failure here only leaves an orphan record.
	return n.gw.DeletePage(ctx, pageId)
}

// CurrentIndex is the 1-based position of the current page, 0 when nothing is open.
func (n *Navigator) CurrentIndex() int {
	if !n.IsOpen() {
		return 0
	}
	return n.index + 1
}

func (n *Navigator) TotalPages() int {
	if n.notebook == nil {
		return 0
	}
	return len(n.notebook.PageIds)
}

// CurrentPage returns a copy of the current page as last loaded or flushed.
func (n *Navigator) CurrentPage() *entity.Page {
	return n.current.Clone()
}

func (n *Navigator) Notebook() *entity.Notebook {
	return n.notebook.Clone()
}

func (n *Navigator) switchToIndex(ctx context.Context, idx int) error {
	if idx == n.index {
		return nil
	}
	return n.moveTo(ctx, n.notebook, idx)
}

// moveTo flushes the current page, then makes nb's idx-th page current.
func (n *Navigator) moveTo(ctx context.Context, nb *entity.Notebook, idx int) error {
	if err := n.Flush(ctx); err != nil {
		return err
	}
	page, err := n.load(ctx, nb.PageIds[idx])
	if err != nil {
		return err
	}
	n.notebook = nb
	n.set(page, idx)
	return nil
}

func (n *Navigator) set(page *entity.Page, idx int) {
	n.current = page
	n.index = idx
	n.canvas.Load(page.Strokes)
}

func (n *Navigator) load(ctx context.Context, pageId uuid.UUID) (*entity.Page, error) {
	page, err := n.gw.GetPage(ctx, pageId)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, pageId)
	}
	return page, nil
}

func (n *Navigator) latestNotebook(ctx context.Context) (*entity.Notebook, error) {
	nb, err := n.gw.GetNotebook(ctx, n.notebook.Id)
	if err != nil {
		return nil, err
	}
	if nb == nil {
		return nil, ErrNotebookNotFound
	}
	return nb, nil
}

// appendPage persists the page, then the notebook with the page appended.
// The returned notebook is the persisted copy; nb itself is untouched.
func (n *Navigator) appendPage(ctx context.Context, nb *entity.Notebook, page *entity.Page) (*entity.Notebook, error) {
	if err := n.gw.SavePage(ctx, page); err != nil {
		return nil, err
	}
	staged := nb.Clone()
	staged.PageIds = append(staged.PageIds, page.Id)
	if err := n.gw.SaveNotebook(ctx, staged); err != nil {
		_ = n.gw.DeletePage(ctx, page.Id)
		return nil, err
	}
	return staged, nil
}
