package dto

import "econote-be/pkg/calibration"

type UpdateCalibrationRequest struct {
	OffsetX  *float64 `json:"offset_x"`
	OffsetY  *float64 `json:"offset_y"`
	ScaleX   *float64 `json:"scale_x" validate:"omitempty,ne=0"`
	ScaleY   *float64 `json:"scale_y" validate:"omitempty,ne=0"`
	Rotation *float64 `json:"rotation"`
}

type StartCalibrationRequest struct {
	Targets []calibration.Target `json:"targets" validate:"omitempty,min=2"`
}

type CaptureCalibrationRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type CalibrationStepResponse struct {
	Index  int                      `json:"index"`
	Total  int                      `json:"total"`
	Target *calibration.Target      `json:"target,omitempty"`
	Done   bool                     `json:"done"`
	Result *calibration.Calibration `json:"result,omitempty"`
}
