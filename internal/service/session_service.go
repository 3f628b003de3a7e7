package service

import (
	"bytes"
	"context"

	"econote-be/internal/dto"
	"econote-be/internal/navigator"
	"econote-be/internal/pkg/logger"
	"econote-be/internal/repository/contract"
	"econote-be/internal/session"
	"econote-be/pkg/calibration"
	"econote-be/pkg/events"

	"github.com/google/uuid"
)

const (
	actionSavePage   = "save_page"
	actionSwitchPage = "switch_page"
)

type ISessionService interface {
	Open(ctx context.Context, userId uuid.UUID, req *dto.OpenSessionRequest) (*dto.SessionStateResponse, error)
	Show(ctx context.Context, userId, id uuid.UUID) (*dto.SessionStateResponse, error)
	Close(ctx context.Context, userId, id uuid.UUID) error
	// Get returns the live session, for the pen stream handler.
	Get(ctx context.Context, userId, id uuid.UUID) (*session.Session, error)
	// KeepAlive renews a session's expiry while only its pen stream is active.
	KeepAlive(ctx context.Context, userId, id uuid.UUID) error

	Pointer(ctx context.Context, userId, id uuid.UUID, req *dto.PointerEventRequest) (*dto.SessionStateResponse, error)
	Touch(ctx context.Context, userId, id uuid.UUID, req *dto.TouchEventRequest) (*dto.TouchEventResponse, error)
	UpdateTool(ctx context.Context, userId, id uuid.UUID, req *dto.UpdateToolRequest) (*dto.SessionStateResponse, error)
	Zoom(ctx context.Context, userId, id uuid.UUID, req *dto.ZoomRequest) (*dto.ZoomResponse, error)
	Undo(ctx context.Context, userId, id uuid.UUID) (*dto.SessionStateResponse, error)
	Redo(ctx context.Context, userId, id uuid.UUID) (*dto.SessionStateResponse, error)
	Clear(ctx context.Context, userId, id uuid.UUID) (*dto.SessionStateResponse, error)
	Save(ctx context.Context, userId, id uuid.UUID) ([]byte, error)
	Render(ctx context.Context, userId, id uuid.UUID) ([]byte, error)

	Next(ctx context.Context, userId, id uuid.UUID) (*dto.SessionStateResponse, error)
	Previous(ctx context.Context, userId, id uuid.UUID) (*dto.SessionStateResponse, error)
	SwitchPage(ctx context.Context, userId, id uuid.UUID, req *dto.SwitchPageRequest) (*dto.SessionStateResponse, error)
	CreatePage(ctx context.Context, userId, id uuid.UUID, req *dto.SessionCreatePageRequest) (*dto.SessionCreatePageResponse, error)
	DeletePage(ctx context.Context, userId, id, pageId uuid.UUID) (*dto.SessionStateResponse, error)

	StartCalibration(ctx context.Context, userId, id uuid.UUID, req *dto.StartCalibrationRequest) (*dto.CalibrationStepResponse, error)
	CaptureCalibration(ctx context.Context, userId, id uuid.UUID, req *dto.CaptureCalibrationRequest) (*dto.CalibrationStepResponse, error)
}

type sessionService struct {
	manager     *session.Manager
	gateway     contract.PersistenceGateway
	calibration *calibration.Holder
	events      events.Publisher
	notifier    INotificationService
	logger      logger.ILogger
	opts        session.Options
}

func NewSessionService(
	manager *session.Manager,
	gateway contract.PersistenceGateway,
	holder *calibration.Holder,
	publisher events.Publisher,
	notifier INotificationService,
	log logger.ILogger,
	opts session.Options,
) ISessionService {
	return &sessionService{
		manager:     manager,
		gateway:     gateway,
		calibration: holder,
		events:      publisher,
		notifier:    notifier,
		logger:      log,
		opts:        opts,
	}
}

func (c *sessionService) Open(ctx context.Context, userId uuid.UUID, req *dto.OpenSessionRequest) (*dto.SessionStateResponse, error) {
	nb, err := c.gateway.GetNotebook(ctx, req.NotebookId)
	if err != nil {
		return nil, err
	}
	if nb == nil || nb.UserId != userId {
		return nil, toAppError(navigator.ErrNotebookNotFound)
	}

	pageId := uuid.Nil
	if req.PageId != nil {
		pageId = *req.PageId
	}

	s := session.New(userId, c.gateway, c.calibration, c.opts, c.logger)
	if err := s.Open(ctx, req.NotebookId, pageId); err != nil {
		return nil, toAppError(err)
	}
	c.manager.Add(s)

	c.logger.Info("SessionService", "Session opened", map[string]interface{}{
		"session_id":  s.Id().String(),
		"user_id":     userId.String(),
		"notebook_id": req.NotebookId.String(),
	})
	return toStateResponse(s.State()), nil
}

func (c *sessionService) Get(_ context.Context, userId, id uuid.UUID) (*session.Session, error) {
	s, err := c.manager.Get(id, userId)
	if err != nil {
		return nil, toAppError(err)
	}
	return s, nil
}

func (c *sessionService) KeepAlive(_ context.Context, userId, id uuid.UUID) error {
	return toAppError(c.manager.Touch(id, userId))
}

func (c *sessionService) Show(ctx context.Context, userId, id uuid.UUID) (*dto.SessionStateResponse, error) {
	s, err := c.Get(ctx, userId, id)
	if err != nil {
		return nil, err
	}
	return toStateResponse(s.State()), nil
}

// Close flushes the current page and forgets the session.
func (c *sessionService) Close(ctx context.Context, userId, id uuid.UUID) error {
	s, err := c.Get(ctx, userId, id)
	if err != nil {
		return err
	}
	st := s.State()
	if err := c.manager.Remove(ctx, id, userId); err != nil {
		c.logger.Error("SessionService", "Failed to flush page on close", map[string]interface{}{
			"session_id": id.String(),
			"error":      err.Error(),
		})
		return c.notifier.Report(ctx, userId, actionSavePage, "", toAppError(err))
	}
	c.publish(ctx, events.NewPageSaved(userId, st.PageId, len(st.Strokes)))
	return nil
}

func (c *sessionService) Pointer(ctx context.Context, userId, id uuid.UUID, req *dto.PointerEventRequest) (*dto.SessionStateResponse, error) {
	s, err := c.Get(ctx, userId, id)
	if err != nil {
		return nil, err
	}
	st, err := s.Pointer(req.Event, req.X, req.Y)
	if err != nil {
		return nil, toAppError(err)
	}
	return toStateResponse(st), nil
}

func (c *sessionService) Touch(ctx context.Context, userId, id uuid.UUID, req *dto.TouchEventRequest) (*dto.TouchEventResponse, error) {
	s, err := c.Get(ctx, userId, id)
	if err != nil {
		return nil, err
	}
	prevented, err := s.Touch(req.Event, req.X, req.Y)
	if err != nil {
		return nil, toAppError(err)
	}
	return &dto.TouchEventResponse{
		PreventDefault: prevented,
		State:          toStateResponse(s.State()),
	}, nil
}

func (c *sessionService) UpdateTool(ctx context.Context, userId, id uuid.UUID, req *dto.UpdateToolRequest) (*dto.SessionStateResponse, error) {
	s, err := c.Get(ctx, userId, id)
	if err != nil {
		return nil, err
	}
	st, err := s.Configure(session.Settings{Tool: req.Tool, Color: req.Color, Width: req.Width})
	if err != nil {
		return nil, toAppError(err)
	}
	return toStateResponse(st), nil
}

func (c *sessionService) Zoom(ctx context.Context, userId, id uuid.UUID, req *dto.ZoomRequest) (*dto.ZoomResponse, error) {
	s, err := c.Get(ctx, userId, id)
	if err != nil {
		return nil, err
	}
	zoom, err := s.Zoom(req.Direction)
	if err != nil {
		return nil, toAppError(err)
	}
	return &dto.ZoomResponse{Zoom: zoom}, nil
}

func (c *sessionService) Undo(ctx context.Context, userId, id uuid.UUID) (*dto.SessionStateResponse, error) {
	s, err := c.Get(ctx, userId, id)
	if err != nil {
		return nil, err
	}
	return toStateResponse(s.Undo()), nil
}

func (c *sessionService) Redo(ctx context.Context, userId, id uuid.UUID) (*dto.SessionStateResponse, error) {
	s, err := c.Get(ctx, userId, id)
	if err != nil {
		return nil, err
	}
	return toStateResponse(s.Redo()), nil
}

func (c *sessionService) Clear(ctx context.Context, userId, id uuid.UUID) (*dto.SessionStateResponse, error) {
	s, err := c.Get(ctx, userId, id)
	if err != nil {
		return nil, err
	}
	return toStateResponse(s.Clear()), nil
}

// Save persists the current page and returns the PNG of the surface.
func (c *sessionService) Save(ctx context.Context, userId, id uuid.UUID) ([]byte, error) {
	s, err := c.Get(ctx, userId, id)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := s.Save(ctx, &buf); err != nil {
		c.logger.Error("SessionService", "Failed to save page", map[string]interface{}{
			"session_id": id.String(),
			"error":      err.Error(),
		})
		return nil, c.notifier.Report(ctx, userId, actionSavePage, "", toAppError(err))
	}

	st := s.State()
	c.publish(ctx, events.NewPageSaved(userId, st.PageId, len(st.Strokes)))
	c.notifier.Notify(ctx, userId, dto.NotificationSuccess, actionSavePage, "Page saved")
	return buf.Bytes(), nil
}

func (c *sessionService) Render(ctx context.Context, userId, id uuid.UUID) ([]byte, error) {
	s, err := c.Get(ctx, userId, id)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := s.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *sessionService) Next(ctx context.Context, userId, id uuid.UUID) (*dto.SessionStateResponse, error) {
	return c.move(ctx, userId, id, func(s *session.Session) (session.State, error) { return s.Next(ctx) })
}

func (c *sessionService) Previous(ctx context.Context, userId, id uuid.UUID) (*dto.SessionStateResponse, error) {
	return c.move(ctx, userId, id, func(s *session.Session) (session.State, error) { return s.Previous(ctx) })
}

func (c *sessionService) SwitchPage(ctx context.Context, userId, id uuid.UUID, req *dto.SwitchPageRequest) (*dto.SessionStateResponse, error) {
	return c.move(ctx, userId, id, func(s *session.Session) (session.State, error) { return s.SwitchTo(ctx, req.PageId) })
}

// move runs a page change; the outgoing page has been flushed once it succeeds.
func (c *sessionService) move(ctx context.Context, userId, id uuid.UUID, fn func(*session.Session) (session.State, error)) (*dto.SessionStateResponse, error) {
	s, err := c.Get(ctx, userId, id)
	if err != nil {
		return nil, err
	}
	before := s.State()

	st, err := fn(s)
	if err != nil {
		return nil, c.notifier.Report(ctx, userId, actionSwitchPage, "", toAppError(err))
	}
	if st.PageId != before.PageId {
		c.publish(ctx, events.NewPageSaved(userId, before.PageId, len(before.Strokes)))
		if st.TotalPages > before.TotalPages {
			c.publish(ctx, events.NewPageCreated(userId, st.NotebookId, st.PageId, st.PageTitle))
		}
	}
	return toStateResponse(st), nil
}

func (c *sessionService) CreatePage(ctx context.Context, userId, id uuid.UUID, req *dto.SessionCreatePageRequest) (*dto.SessionCreatePageResponse, error) {
	s, err := c.Get(ctx, userId, id)
	if err != nil {
		return nil, err
	}

	pageId, st, err := s.CreatePage(ctx, req.Title)
	if err != nil {
		return nil, c.notifier.Report(ctx, userId, actionCreatePage, "", toAppError(err))
	}
	title := req.Title
	if title == "" {
		title = navigator.DefaultPageTitle(st.TotalPages)
	}
	c.publish(ctx, events.NewPageCreated(userId, st.NotebookId, pageId, title))
	c.notifier.Notify(ctx, userId, dto.NotificationSuccess, actionCreatePage, "Page created")

	return &dto.SessionCreatePageResponse{
		PageId: pageId,
		State:  toStateResponse(st),
	}, nil
}

func (c *sessionService) DeletePage(ctx context.Context, userId, id, pageId uuid.UUID) (*dto.SessionStateResponse, error) {
	s, err := c.Get(ctx, userId, id)
	if err != nil {
		return nil, err
	}

	st, err := s.DeletePage(ctx, pageId)
	if err != nil {
		return nil, c.notifier.Report(ctx, userId, actionDeletePage, "", toAppError(err))
	}
	c.publish(ctx, events.NewPageDeleted(userId, st.NotebookId, pageId))
	c.notifier.Notify(ctx, userId, dto.NotificationSuccess, actionDeletePage, "Page deleted")
	return toStateResponse(st), nil
}

func (c *sessionService) StartCalibration(ctx context.Context, userId, id uuid.UUID, req *dto.StartCalibrationRequest) (*dto.CalibrationStepResponse, error) {
	s, err := c.Get(ctx, userId, id)
	if err != nil {
		return nil, err
	}
	step, err := s.StartCalibration(req.Targets)
	if err != nil {
		return nil, toAppError(err)
	}
	return toStepResponse(step), nil
}

func (c *sessionService) CaptureCalibration(ctx context.Context, userId, id uuid.UUID, req *dto.CaptureCalibrationRequest) (*dto.CalibrationStepResponse, error) {
	s, err := c.Get(ctx, userId, id)
	if err != nil {
		return nil, err
	}
	step, err := s.CaptureCalibration(req.X, req.Y)
	if err != nil {
		return nil, c.notifier.Report(ctx, userId, actionCalibrate, "", toAppError(err))
	}
	if step.Done {
		c.notifier.Notify(ctx, userId, dto.NotificationSuccess, actionCalibrate, "Calibration applied")
	}
	return toStepResponse(step), nil
}

func (c *sessionService) publish(ctx context.Context, event events.Event) {
	publishEvent(ctx, c.events, c.logger, "SessionService", event)
}

func toStateResponse(st session.State) *dto.SessionStateResponse {
	return &dto.SessionStateResponse{
		Id:          st.Id,
		NotebookId:  st.NotebookId,
		PageId:      st.PageId,
		PageTitle:   st.PageTitle,
		PageIndex:   st.PageIndex,
		TotalPages:  st.TotalPages,
		Tool:        string(st.Tool),
		Color:       st.Color,
		Width:       st.Width,
		Zoom:        st.Zoom,
		Strokes:     st.Strokes,
		RedoSize:    st.RedoSize,
		Calibrating: st.Calibrating,
	}
}

func toStepResponse(step session.CalibrationStep) *dto.CalibrationStepResponse {
	return &dto.CalibrationStepResponse{
		Index:  step.Index,
		Total:  step.Total,
		Target: step.Target,
		Done:   step.Done,
		Result: step.Result,
	}
}
