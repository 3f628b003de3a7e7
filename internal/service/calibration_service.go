package service

import (
	"context"

	"econote-be/internal/dto"
	"econote-be/internal/pkg/logger"
	"econote-be/pkg/calibration"

	"github.com/google/uuid"
)

const actionCalibrate = "calibrate"

// ICalibrationService manages the process-wide calibration read by every pen decoder.
type ICalibrationService interface {
	Get(ctx context.Context) calibration.Calibration
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateCalibrationRequest) calibration.Calibration
	Reset(ctx context.Context, userId uuid.UUID) calibration.Calibration
}

type calibrationService struct {
	holder   *calibration.Holder
	notifier INotificationService
	logger   logger.ILogger
}

func NewCalibrationService(holder *calibration.Holder, notifier INotificationService, log logger.ILogger) ICalibrationService {
	return &calibrationService{
		holder:   holder,
		notifier: notifier,
		logger:   log,
	}
}

func (c *calibrationService) Get(_ context.Context) calibration.Calibration {
	return c.holder.Get()
}

// Update changes only the fields present in the request.
func (c *calibrationService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateCalibrationRequest) calibration.Calibration {
	cal := c.holder.Set(calibration.Partial{
		OffsetX:  req.OffsetX,
		OffsetY:  req.OffsetY,
		ScaleX:   req.ScaleX,
		ScaleY:   req.ScaleY,
		Rotation: req.Rotation,
	})
	c.logger.Info("CalibrationService", "Calibration updated", map[string]interface{}{
		"user_id":  userId.String(),
		"offset_x": cal.OffsetX,
		"offset_y": cal.OffsetY,
		"scale_x":  cal.ScaleX,
		"scale_y":  cal.ScaleY,
		"rotation": cal.Rotation,
	})
	c.notifier.Notify(ctx, userId, dto.NotificationSuccess, actionCalibrate, "Calibration updated")
	return cal
}

func (c *calibrationService) Reset(ctx context.Context, userId uuid.UUID) calibration.Calibration {
	c.holder.Reset()
	c.logger.Info("CalibrationService", "Calibration reset to identity", map[string]interface{}{
		"user_id": userId.String(),
	})
	c.notifier.Notify(ctx, userId, dto.NotificationSuccess, actionCalibrate, "Calibration reset")
	return c.holder.Get()
}
