package api

import (
	"github.com/ZacxDev/video-editor/internal/assistant"
	"github.com/ZacxDev/video-editor/internal/render"
	"github.com/ZacxDev/video-editor/pkg/videoeditor"
)

type CreateSessionRequest struct {
	Path string `json:"path" validate:"omitempty,max=4096"`
}

type SessionResponse struct {
	ID    string               `json:"id"`
	State videoeditor.Snapshot `json:"state"`
}

type ChatRequest struct {
	Message string `json:"message" validate:"required,max=1000"`
}

// ChatResponse is the assistant's reply. The client shows Lines one after
// the other, DelayMS apart.
type ChatResponse struct {
	assistant.Reply
	DelayMS int64 `json:"delay_ms"`
}

type KeyRequest struct {
	Key         string `json:"key" validate:"required,max=32"`
	Ctrl        bool   `json:"ctrl"`
	Meta        bool   `json:"meta"`
	TextFocused bool   `json:"text_focused"`
}

type FilterRequest struct {
	Kind  string   `json:"kind" validate:"required,max=32"`
	Value *float64 `json:"value"`
}

type PreviewRequest struct {
	Kind  string  `json:"kind" validate:"required,max=32"`
	Value float64 `json:"value"`
}

type RandomRequest struct {
	Count int `json:"count" validate:"gte=0,lte=5"`
}

type SpeedRequest struct {
	Rate float64 `json:"rate" validate:"required,gt=0"`
}

type VolumeRequest struct {
	Percent *int `json:"percent" validate:"required,gte=0,lte=100"`
}

type RotateRequest struct {
	Degrees int `json:"degrees" validate:"required,oneof=90 180 270 360"`
}

type FlipRequest struct {
	Axis string `json:"axis" validate:"required"`
}

type SeekRequest struct {
	Position *float64 `json:"position" validate:"required,gte=0"`
}

type ExportResponse struct {
	Artifact *render.Artifact `json:"artifact,omitempty"`
	Download string           `json:"download,omitempty"`
	Error    *ErrorResponse   `json:"error,omitempty"`
}

type TranscriptResponse struct {
	Turns []assistant.ChatTurn `json:"turns"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
