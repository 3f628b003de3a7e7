package service

import (
	"context"
	"encoding/json"
	"time"

	"econote-be/internal/dto"
	"econote-be/internal/entity"
	"econote-be/internal/navigator"
	"econote-be/internal/pkg/logger"
	"econote-be/internal/repository/contract"
	"econote-be/pkg/canvas"
	"econote-be/pkg/events"
	"econote-be/pkg/export"
	"econote-be/pkg/ink"

	"github.com/google/uuid"
)

const (
	OcrStatusQueued = "queued"

	actionCreatePage = "create_page"
	actionRenamePage = "rename_page"
	actionDeletePage = "delete_page"
	actionScanPage   = "scan_page"
	actionRequestOcr = "request_ocr"
)

type IPageService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreatePageRequest) (*dto.CreatePageResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowPageResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdatePageRequest) (*dto.UpdatePageResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, req *dto.DeletePageRequest) error
	Scan(ctx context.Context, userId uuid.UUID, req *dto.ScanPageRequest) (*dto.CreatePageResponse, error)
	RequestOCR(ctx context.Context, userId uuid.UUID, req *dto.RequestOcrRequest) (*dto.RequestOcrResponse, error)
	ExportPNG(ctx context.Context, userId uuid.UUID, id uuid.UUID) ([]byte, error)
}

type PageServiceOptions struct {
	CanvasWidth     int
	CanvasHeight    int
	GridSpacing     int
	DefaultLanguage string
}

type pageService struct {
	gateway  contract.PersistenceGateway
	events   events.Publisher
	ocrQueue IPublisherService
	notifier INotificationService
	logger   logger.ILogger
	opts     PageServiceOptions
}

func NewPageService(
	gateway contract.PersistenceGateway,
	publisher events.Publisher,
	ocrQueue IPublisherService,
	notifier INotificationService,
	log logger.ILogger,
	opts PageServiceOptions,
) IPageService {
	return &pageService{
		gateway:  gateway,
		events:   publisher,
		ocrQueue: ocrQueue,
		notifier: notifier,
		logger:   log,
		opts:     opts,
	}
}

// Create appends a drawing page to the notebook.
func (c *pageService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreatePageRequest) (*dto.CreatePageResponse, error) {
	nav, err := c.openNotebook(ctx, userId, req.NotebookId)
	if err != nil {
		return nil, err
	}

	page, err := nav.CreatePage(ctx, req.Title)
	if err != nil {
		return nil, c.notifier.Report(ctx, userId, actionCreatePage, "", toAppError(err))
	}
	c.publish(ctx, events.NewPageCreated(userId, req.NotebookId, page.Id, page.Title))
	c.notifier.Notify(ctx, userId, dto.NotificationSuccess, actionCreatePage, "Page created")

	return &dto.CreatePageResponse{
		Id:        page.Id,
		Title:     page.Title,
		PageIndex: nav.TotalPages(),
	}, nil
}

func (c *pageService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowPageResponse, error) {
	page, err := c.owned(ctx, userId, id)
	if err != nil {
		return nil, err
	}

	return &dto.ShowPageResponse{
		Id:          page.Id,
		Title:       page.Title,
		Strokes:     page.Strokes,
		ImageData:   page.ImageData,
		IsScanned:   page.IsScanned,
		OcrText:     page.OcrText,
		OcrLanguage: page.OcrLanguage,
		CreatedAt:   page.CreatedAt,
		UpdatedAt:   page.UpdatedAt,
	}, nil
}

func (c *pageService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdatePageRequest) (*dto.UpdatePageResponse, error) {
	page, err := c.owned(ctx, userId, req.Id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	page.Title = req.Title
	page.UpdatedAt = &now
	if err := c.gateway.SavePage(ctx, page); err != nil {
		c.logger.Error("PageService", "Failed to rename page", map[string]interface{}{
			"page_id": page.Id.String(),
			"error":   err.Error(),
		})
		return nil, c.notifier.Report(ctx, userId, actionRenamePage, "", err)
	}
	c.notifier.Notify(ctx, userId, dto.NotificationSuccess, actionRenamePage, "Page renamed")

	return &dto.UpdatePageResponse{Id: page.Id}, nil
}

// Delete removes a page from its notebook. The last page of a notebook cannot be deleted.
func (c *pageService) Delete(ctx context.Context, userId uuid.UUID, req *dto.DeletePageRequest) error {
	nav, err := c.openNotebook(ctx, userId, req.NotebookId)
	if err != nil {
		return err
	}

	if err := nav.DeletePage(ctx, req.Id); err != nil {
		return c.notifier.Report(ctx, userId, actionDeletePage, "", toAppError(err))
	}
	c.publish(ctx, events.NewPageDeleted(userId, req.NotebookId, req.Id))
	c.notifier.Notify(ctx, userId, dto.NotificationSuccess, actionDeletePage, "Page deleted")
	return nil
}

// Scan appends a scanned page: the image is kept as base64 and the page has no strokes.
func (c *pageService) Scan(ctx context.Context, userId uuid.UUID, req *dto.ScanPageRequest) (*dto.CreatePageResponse, error) {
	raw, err := decodeImageData(req.ImageData)
	if err != nil {
		return nil, c.notifier.Report(ctx, userId, actionScanPage, "", toAppError(err))
	}

	nav, err := c.openNotebook(ctx, userId, req.NotebookId)
	if err != nil {
		return nil, err
	}

	title := req.Title
	if title == "" {
		title = navigator.DefaultPageTitle(nav.TotalPages() + 1)
	}
	page := entity.NewPage(userId, title)
	encoded := encodeImageData(raw)
	page.ImageData = &encoded
	page.IsScanned = true

	if err := nav.AddPage(ctx, page); err != nil {
		return nil, c.notifier.Report(ctx, userId, actionScanPage, "", toAppError(err))
	}
	c.publish(ctx, events.NewPageCreated(userId, req.NotebookId, page.Id, page.Title))
	c.notifier.Notify(ctx, userId, dto.NotificationSuccess, actionScanPage, "Scanned page added")

	return &dto.CreatePageResponse{
		Id:        page.Id,
		Title:     page.Title,
		PageIndex: nav.TotalPages(),
	}, nil
}

// RequestOCR queues recognition of a page. The result is reported through a notification.
func (c *pageService) RequestOCR(ctx context.Context, userId uuid.UUID, req *dto.RequestOcrRequest) (*dto.RequestOcrResponse, error) {
	page, err := c.owned(ctx, userId, req.Id)
	if err != nil {
		return nil, err
	}

	language := req.Language
	if language == "" {
		language = c.opts.DefaultLanguage
	}

	payload, err := json.Marshal(dto.OcrPageMessage{
		PageId:   page.Id,
		UserId:   userId,
		Language: language,
	})
	if err != nil {
		return nil, err
	}
	if err := c.ocrQueue.Publish(ctx, payload); err != nil {
		c.logger.Error("PageService", "Failed to queue OCR job", map[string]interface{}{
			"page_id": page.Id.String(),
			"error":   err.Error(),
		})
		return nil, c.notifier.Report(ctx, userId, actionRequestOcr, "", err)
	}

	return &dto.RequestOcrResponse{
		PageId:   page.Id,
		Language: language,
		Status:   OcrStatusQueued,
	}, nil
}

// ExportPNG renders a drawing page with its title as caption, or re-encodes a scanned image.
func (c *pageService) ExportPNG(ctx context.Context, userId uuid.UUID, id uuid.UUID) ([]byte, error) {
	page, err := c.owned(ctx, userId, id)
	if err != nil {
		return nil, err
	}

	opts := renderOptions(c.opts.CanvasWidth, c.opts.CanvasHeight, c.opts.GridSpacing)
	opts.Caption = page.Title
	img, err := pageImage(page, opts)
	if err != nil {
		return nil, toAppError(err)
	}
	return img, nil
}

// openNotebook opens a headless navigator on a notebook owned by the user.
func (c *pageService) openNotebook(ctx context.Context, userId uuid.UUID, notebookId uuid.UUID) (*navigator.Navigator, error) {
	nb, err := c.gateway.GetNotebook(ctx, notebookId)
	if err != nil {
		return nil, err
	}
	if nb == nil || nb.UserId != userId {
		return nil, toAppError(navigator.ErrNotebookNotFound)
	}

	nav := navigator.New(c.gateway, ink.NewStore())
	if err := nav.Open(ctx, notebookId, uuid.Nil); err != nil {
		return nil, toAppError(err)
	}
	return nav, nil
}

func (c *pageService) owned(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*entity.Page, error) {
	page, err := c.gateway.GetPage(ctx, id)
	if err != nil {
		return nil, err
	}
	if page == nil || page.UserId != userId {
		return nil, toAppError(navigator.ErrPageNotFound)
	}
	return page, nil
}

func (c *pageService) publish(ctx context.Context, event events.Event) {
	publishEvent(ctx, c.events, c.logger, "PageService", event)
}

func renderOptions(width, height, gridSpacing int) export.PNGOptions {
	opts := export.DefaultPNGOptions()
	if width > 0 {
		opts.Width = width
	}
	if height > 0 {
		opts.Height = height
	}
	opts.Render = canvas.DefaultRenderOptions()
	if gridSpacing > 0 {
		opts.Render.GridSpacing = float64(gridSpacing)
	}
	return opts
}
