package dto

import (
	"econote-be/pkg/ink"

	"github.com/google/uuid"
)

type OpenSessionRequest struct {
	NotebookId uuid.UUID  `json:"notebook_id" validate:"required"`
	PageId     *uuid.UUID `json:"page_id"`
}

type SessionStateResponse struct {
	Id          uuid.UUID    `json:"id"`
	NotebookId  uuid.UUID    `json:"notebook_id"`
	PageId      uuid.UUID    `json:"page_id"`
	PageTitle   string       `json:"page_title"`
	PageIndex   int          `json:"page_index"` // 1-based
	TotalPages  int          `json:"total_pages"`
	Tool        string       `json:"tool"`
	Color       string       `json:"color"`
	Width       float64      `json:"width"`
	Zoom        float64      `json:"zoom"`
	Strokes     []ink.Stroke `json:"strokes"`
	RedoSize    int          `json:"redo_size"`
	Calibrating bool         `json:"calibrating"`
}

type PointerEventRequest struct {
	Event string  `json:"event" validate:"required,oneof=down move up leave"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

type TouchEventRequest struct {
	Event string  `json:"event" validate:"required,oneof=start move end"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

type TouchEventResponse struct {
	PreventDefault bool                  `json:"prevent_default"`
	State          *SessionStateResponse `json:"state"`
}

type UpdateToolRequest struct {
	Tool  *string  `json:"tool" validate:"omitempty,oneof=pen finger eraser hand"`
	Color *string  `json:"color" validate:"omitempty,hexcolor,len=4|len=7"`
	Width *float64 `json:"width"`
}

type ZoomRequest struct {
	Direction string `json:"direction" validate:"required,oneof=in out"`
}

type ZoomResponse struct {
	Zoom float64 `json:"zoom"`
}

type SwitchPageRequest struct {
	PageId uuid.UUID `json:"page_id" validate:"required"`
}

type SessionCreatePageRequest struct {
	Title string `json:"title" validate:"max=200"`
}

type SessionCreatePageResponse struct {
	PageId uuid.UUID             `json:"page_id"`
	State  *SessionStateResponse `json:"state"`
}
