package service

import (
	"context"
	"io"
	"time"

	"econote-be/internal/dto"
	"econote-be/internal/entity"
	"econote-be/internal/navigator"
	"econote-be/internal/pkg/logger"
	"econote-be/internal/repository/contract"
	"econote-be/pkg/events"
	"econote-be/pkg/export"

	"github.com/google/uuid"
)

const (
	DefaultNotebookTitle = "My Notebook"

	actionCreateNotebook = "create_notebook"
	actionRenameNotebook = "rename_notebook"
	actionDeleteNotebook = "delete_notebook"
)

type INotebookService interface {
	GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllNotebookResponse, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNotebookRequest) (*dto.CreateNotebookResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowNotebookResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNotebookRequest) (*dto.UpdateNotebookResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	ExportPDF(ctx context.Context, userId uuid.UUID, id uuid.UUID, w io.Writer) error
}

type notebookService struct {
	gateway     contract.PersistenceGateway
	events      events.Publisher
	notifier    INotificationService
	logger      logger.ILogger
	canvasWidth float64
}

func NewNotebookService(
	gateway contract.PersistenceGateway,
	publisher events.Publisher,
	notifier INotificationService,
	log logger.ILogger,
	canvasWidth int,
) INotebookService {
	return &notebookService{
		gateway:     gateway,
		events:      publisher,
		notifier:    notifier,
		logger:      log,
		canvasWidth: float64(canvasWidth),
	}
}

// GetAll lists the user's notebooks. A user without notebooks gets a first one provisioned.
func (c *notebookService) GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllNotebookResponse, error) {
	notebooks, err := c.gateway.ListNotebooks(ctx, userId)
	if err != nil {
		return nil, err
	}

	if len(notebooks) == 0 {
		nb, _, err := c.provision(ctx, userId, DefaultNotebookTitle)
		if err != nil {
			return nil, err
		}
		notebooks = []*entity.Notebook{nb}
	}

	result := make([]*dto.GetAllNotebookResponse, 0, len(notebooks))
	for _, nb := range notebooks {
		result = append(result, &dto.GetAllNotebookResponse{
			Id:        nb.Id,
			Title:     nb.Title,
			PageCount: len(nb.PageIds),
			CreatedAt: nb.CreatedAt,
			UpdatedAt: nb.UpdatedAt,
		})
	}
	return result, nil
}

func (c *notebookService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNotebookRequest) (*dto.CreateNotebookResponse, error) {
	nb, first, err := c.provision(ctx, userId, req.Title)
	if err != nil {
		return nil, c.notifier.Report(ctx, userId, actionCreateNotebook, "", err)
	}
	c.notifier.Notify(ctx, userId, dto.NotificationSuccess, actionCreateNotebook, "Notebook created")

	return &dto.CreateNotebookResponse{
		Id:          nb.Id,
		FirstPageId: first.Id,
	}, nil
}

func (c *notebookService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowNotebookResponse, error) {
	nb, err := c.owned(ctx, userId, id)
	if err != nil {
		return nil, err
	}

	pages := make([]*dto.NotebookPageSummary, 0, len(nb.PageIds))
	for _, pageId := range nb.PageIds {
		page, err := c.gateway.GetPage(ctx, pageId)
		if err != nil {
			return nil, err
		}
		if page == nil {
			c.logger.Warn("NotebookService", "Notebook references a missing page", map[string]interface{}{
				"notebook_id": nb.Id.String(),
				"page_id":     pageId.String(),
			})
			continue
		}
		pages = append(pages, &dto.NotebookPageSummary{
			Id:        page.Id,
			Title:     page.Title,
			IsScanned: page.IsScanned,
		})
	}

	return &dto.ShowNotebookResponse{
		Id:        nb.Id,
		Title:     nb.Title,
		Pages:     pages,
		CreatedAt: nb.CreatedAt,
		UpdatedAt: nb.UpdatedAt,
	}, nil
}

func (c *notebookService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNotebookRequest) (*dto.UpdateNotebookResponse, error) {
	nb, err := c.owned(ctx, userId, req.Id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	nb.Title = req.Title
	nb.UpdatedAt = &now
	if err := c.gateway.SaveNotebook(ctx, nb); err != nil {
		c.logger.Error("NotebookService", "Failed to rename notebook", map[string]interface{}{
			"notebook_id": nb.Id.String(),
			"error":       err.Error(),
		})
		return nil, c.notifier.Report(ctx, userId, actionRenameNotebook, "", err)
	}
	c.notifier.Notify(ctx, userId, dto.NotificationSuccess, actionRenameNotebook, "Notebook renamed")

	return &dto.UpdateNotebookResponse{Id: nb.Id}, nil
}

// Delete removes a notebook and its pages. The user's last notebook cannot be deleted.
func (c *notebookService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	nb, err := c.owned(ctx, userId, id)
	if err != nil {
		return err
	}

	notebooks, err := c.gateway.ListNotebooks(ctx, userId)
	if err != nil {
		return err
	}
	if len(notebooks) <= 1 {
		return c.notifier.Report(ctx, userId, actionDeleteNotebook, "", toAppError(ErrLastNotebook))
	}

	if err := c.gateway.DeleteNotebook(ctx, nb.Id); err != nil {
		return c.notifier.Report(ctx, userId, actionDeleteNotebook, "", err)
	}
	for _, pageId := range nb.PageIds {
		if err := c.gateway.DeletePage(ctx, pageId); err != nil {
			c.logger.Error("NotebookService", "Failed to delete page of deleted notebook", map[string]interface{}{
				"notebook_id": nb.Id.String(),
				"page_id":     pageId.String(),
				"error":       err.Error(),
			})
		}
	}

	c.publish(ctx, events.NewNotebookDeleted(userId, nb.Id))
	c.notifier.Notify(ctx, userId, dto.NotificationSuccess, actionDeleteNotebook, "Notebook deleted")
	return nil
}

// ExportPDF writes one A4 page per notebook page, in navigation order.
func (c *notebookService) ExportPDF(ctx context.Context, userId uuid.UUID, id uuid.UUID, w io.Writer) error {
	nb, err := c.owned(ctx, userId, id)
	if err != nil {
		return err
	}

	pages := make([]export.Page, 0, len(nb.PageIds))
	for _, pageId := range nb.PageIds {
		page, err := c.gateway.GetPage(ctx, pageId)
		if err != nil {
			return err
		}
		if page == nil {
			continue
		}

		out := export.Page{Title: page.Title, Strokes: page.Strokes}
		if page.IsScanned && page.ImageData != nil {
			raw, err := decodeImageData(*page.ImageData)
			if err != nil {
				return toAppError(err)
			}
			out.Image = raw
		}
		pages = append(pages, out)
	}

	return export.PDF(w, pages, export.PDFOptions{CanvasWidth: c.canvasWidth, Title: nb.Title})
}

// provision creates a notebook together with its first page.
func (c *notebookService) provision(ctx context.Context, userId uuid.UUID, title string) (*entity.Notebook, *entity.Page, error) {
	first := entity.NewPage(userId, navigator.DefaultPageTitle(1))
	if err := c.gateway.SavePage(ctx, first); err != nil {
		return nil, nil, err
	}

	nb := &entity.Notebook{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     title,
		PageIds:   []uuid.UUID{first.Id},
		CreatedAt: time.Now(),
	}
	if err := c.gateway.SaveNotebook(ctx, nb); err != nil {
		_ = c.gateway.DeletePage(ctx, first.Id)
		c.logger.Error("NotebookService", "Failed to create notebook", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
		return nil, nil, err
	}

	c.publish(ctx, events.NewNotebookCreated(userId, nb.Id, nb.Title))
	c.publish(ctx, events.NewPageCreated(userId, nb.Id, first.Id, first.Title))
	return nb, first, nil
}

// owned loads a notebook of the user; notebooks of other users are reported as missing.
func (c *notebookService) owned(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*entity.Notebook, error) {
	nb, err := c.gateway.GetNotebook(ctx, id)
	if err != nil {
		return nil, err
	}
	if nb == nil || nb.UserId != userId {
		return nil, toAppError(navigator.ErrNotebookNotFound)
	}
	return nb, nil
}

func (c *notebookService) publish(ctx context.Context, event events.Event) {
	publishEvent(ctx, c.events, c.logger, "NotebookService", event)
}
