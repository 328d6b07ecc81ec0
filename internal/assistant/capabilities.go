package assistant

import (
	"github.com/ZacxDev/video-editor/internal/session"
)

// Result is the outcome of one capability call. Failures carry the error
// kind and a message meant for the user; nothing is ever thrown.
type Result struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Kind    session.ErrorKind      `json:"kind,omitempty"`
	Extra   map[string]interface{} `json:"extra,omitempty"`
}

// OK builds a successful result.
func OK(message string, extra map[string]interface{}) Result {
	return Result{Success: true, Message: message, Extra: extra}
}

// Fail converts err into a failed result.
func Fail(err error) Result {
	kind := session.KindOf(err)
	if kind == "" {
		kind = session.KindExportFailure
	}
	return Result{Success: false, Message: session.MessageOf(err), Kind: kind}
}

// Capabilities is the editor surface the router drives. Every call returns a
// Result instead of an error.
type Capabilities interface {
	HasVideo() bool
	ApplyFilter(name string, value *float64) Result
	RemoveFilter(name string) Result
	ClearAllFilters() Result
	ApplyRandomFilters(count int) Result
	ApplyFilterCombination(name string) Result
	ApplyRecommendedFilters() Result
	ChangeVideoSpeed(rate float64) Result
	ChangeVideoVolume(percent int) Result
	RotateVideo(degrees int) Result
	FlipVideo(axis string) Result
	GetAvailableFilters() Result
	SplitVideo() Result
	GetSplitInfo() Result
	AnalyzeVideo() Result
	Undo() Result
	Redo() Result
}
