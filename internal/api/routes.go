package api

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/ZacxDev/video-editor/internal/assistant"
	"github.com/ZacxDev/video-editor/internal/keys"
	"github.com/ZacxDev/video-editor/internal/session"
	"github.com/ZacxDev/video-editor/pkg/videoeditor"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var validate = validator.New()

const entryKey contextKey = "session"

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", createSessionHandler(cfg))

		r.Route("/{id}", func(r chi.Router) {
			r.Use(SessionMiddleware(cfg.Store))

			r.Get("/", stateHandler)
			r.Delete("/", deleteSessionHandler(cfg))
			r.Get("/transcript", transcriptHandler)
			r.Post("/chat", chatHandler)
			r.Post("/keys", keyHandler)

			r.Get("/filters", capability(func(e *videoeditor.Editor, r *http.Request) assistant.Result {
				return e.GetAvailableFilters()
			}))
			r.Post("/filters", applyFilterHandler)
			r.Delete("/filters", capability(func(e *videoeditor.Editor, r *http.Request) assistant.Result {
				return e.ClearAllFilters()
			}))
			r.Delete("/filters/{kind}", capability(func(e *videoeditor.Editor, r *http.Request) assistant.Result {
				return e.RemoveFilter(chi.URLParam(r, "kind"))
			}))
			r.Post("/filters/random", randomFiltersHandler)
			r.Post("/filters/recommended", capability(func(e *videoeditor.Editor, r *http.Request) assistant.Result {
				return e.ApplyRecommendedFilters()
			}))
			r.Post("/presets/{name}", capability(func(e *videoeditor.Editor, r *http.Request) assistant.Result {
				return e.ApplyFilterCombination(chi.URLParam(r, "name"))
			}))

			r.Post("/preview", previewHandler)
			r.Post("/preview/commit", capability(func(e *videoeditor.Editor, r *http.Request) assistant.Result {
				return e.CommitPreview()
			}))
			r.Post("/preview/cancel", capability(func(e *videoeditor.Editor, r *http.Request) assistant.Result {
				return e.CancelPreview()
			}))

			r.Post("/speed", speedHandler)
			r.Post("/volume", volumeHandler)
			r.Post("/rotate", rotateHandler)
			r.Post("/flip", flipHandler)
			r.Post("/seek", seekHandler)
			r.Post("/split", capability(func(e *videoeditor.Editor, r *http.Request) assistant.Result {
				return e.SplitVideo()
			}))
			r.Get("/split", capability(func(e *videoeditor.Editor, r *http.Request) assistant.Result {
				return e.GetSplitInfo()
			}))
			r.Get("/analysis", capability(func(e *videoeditor.Editor, r *http.Request) assistant.Result {
				return e.AnalyzeVideo()
			}))
			r.Post("/undo", capability(func(e *videoeditor.Editor, r *http.Request) assistant.Result {
				return e.Undo()
			}))
			r.Post("/redo", capability(func(e *videoeditor.Editor, r *http.Request) assistant.Result {
				return e.Redo()
			}))

			r.Post("/export", exportHandler(cfg))
			r.Get("/download", downloadHandler)
		})
	})

	return r
}

// SessionMiddleware resolves {id} to a stored session.
func SessionMiddleware(store *Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			entry, ok := store.Get(chi.URLParam(r, "id"))
			if !ok {
				WriteError(w, http.StatusNotFound, "session not found", "NOT_FOUND")
				return
			}
			ctx := context.WithValue(r.Context(), entryKey, entry)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func entryFrom(r *http.Request) *Entry {
	return r.Context().Value(entryKey).(*Entry)
}

// decode reads a JSON body into v and validates it.
func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(err, "invalid request body")
	}
	if err := validate.Struct(v); err != nil {
		return errors.Wrap(err, "invalid request")
	}
	return nil
}

func writeResult(w http.ResponseWriter, res assistant.Result) {
	WriteJSON(w, StatusFor(res.Kind), res)
}

func capability(fn func(e *videoeditor.Editor, r *http.Request) assistant.Result) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, fn(entryFrom(r).Editor, r))
	}
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status":   "ok",
			"sessions": cfg.Store.Len(),
			"uptime_s": int64(time.Since(cfg.StartTime).Seconds()),
		})
	}
}

// createSessionHandler starts a session. The body is either a multipart
// upload with a "file" field, a JSON {"path": ...} naming a local file, or
// empty.
func createSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		editor, err := cfg.NewEditor()
		if err != nil {
			cfg.Logger.Error("failed to create editor", zap.Error(err))
			WriteError(w, http.StatusInternalServerError, "failed to create editor", "INTERNAL_ERROR")
			return
		}

		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		switch {
		case mediaType == "multipart/form-data":
			file, header, ferr := r.FormFile("file")
			if ferr != nil {
				editor.Close()
				WriteError(w, http.StatusBadRequest, "file field is required", "BAD_REQUEST")
				return
			}
			defer r.MultipartForm.RemoveAll()
			err = editor.LoadUpload(file, header.Filename)
			file.Close()
		default:
			var req CreateSessionRequest
			if derr := decode(r, &req); derr != nil && !errors.Is(derr, io.EOF) {
				editor.Close()
				WriteError(w, http.StatusBadRequest, derr.Error(), "BAD_REQUEST")
				return
			}
			if req.Path != "" {
				err = editor.Load(req.Path)
			}
		}
		if err != nil {
			editor.Close()
			WriteEditError(w, err)
			return
		}

		entry := cfg.Store.Create(editor)
		cfg.Logger.Info("session created", zap.String("session", entry.ID))
		WriteJSON(w, http.StatusCreated, SessionResponse{ID: entry.ID, State: editor.Snapshot()})
	}
}

func stateHandler(w http.ResponseWriter, r *http.Request) {
	entry := entryFrom(r)
	WriteJSON(w, http.StatusOK, SessionResponse{ID: entry.ID, State: entry.Editor.Snapshot()})
}

func deleteSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg.Store.Delete(entryFrom(r).ID)
		w.WriteHeader(http.StatusNoContent)
	}
}

func transcriptHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, TranscriptResponse{Turns: entryFrom(r).Editor.Transcript()})
}

func chatHandler(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
		return
	}
	editor := entryFrom(r).Editor
	reply := editor.Chat(req.Message)
	WriteJSON(w, http.StatusOK, ChatResponse{
		Reply:   reply,
		DelayMS: editor.Assistant().Stagger().Milliseconds(),
	})
}

func keyHandler(w http.ResponseWriter, r *http.Request) {
	var req KeyRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
		return
	}
	k := keys.Parse(req.Key)
	k.Ctrl = k.Ctrl || req.Ctrl
	k.Meta = k.Meta || req.Meta
	writeResult(w, entryFrom(r).Editor.HandleKey(k, req.TextFocused))
}

func applyFilterHandler(w http.ResponseWriter, r *http.Request) {
	var req FilterRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
		return
	}
	writeResult(w, entryFrom(r).Editor.ApplyFilter(req.Kind, req.Value))
}

func randomFiltersHandler(w http.ResponseWriter, r *http.Request) {
	var req RandomRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
	}
	writeResult(w, entryFrom(r).Editor.ApplyRandomFilters(req.Count))
}

func previewHandler(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
		return
	}
	writeResult(w, entryFrom(r).Editor.PreviewFilter(req.Kind, req.Value))
}

func speedHandler(w http.ResponseWriter, r *http.Request) {
	var req SpeedRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
		return
	}
	writeResult(w, entryFrom(r).Editor.ChangeVideoSpeed(req.Rate))
}

func volumeHandler(w http.ResponseWriter, r *http.Request) {
	var req VolumeRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
		return
	}
	writeResult(w, entryFrom(r).Editor.ChangeVideoVolume(*req.Percent))
}

func rotateHandler(w http.ResponseWriter, r *http.Request) {
	var req RotateRequest
	if err := decode(r, &req); err != nil {
		writeResult(w, assistant.Fail(session.NewError(session.KindInvalidRotation,
			"Rotation must be 90, 180, 270 or 360 degrees")))
		return
	}
	writeResult(w, entryFrom(r).Editor.RotateVideo(req.Degrees))
}

func flipHandler(w http.ResponseWriter, r *http.Request) {
	var req FlipRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
		return
	}
	writeResult(w, entryFrom(r).Editor.FlipVideo(req.Axis))
}

func seekHandler(w http.ResponseWriter, r *http.Request) {
	var req SeekRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
		return
	}
	writeResult(w, entryFrom(r).Editor.Seek(*req.Position))
}

// exportHandler renders synchronously. A fallback copy of the original is
// still returned with 200 so the client can offer it, with the failure in
// the error field.
func exportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry := entryFrom(r)
		art, err := entry.Editor.Export(r.Context())
		if art == nil {
			WriteEditError(w, err)
			return
		}
		entry.SetArtifact(art)

		resp := ExportResponse{Artifact: art, Download: "/sessions/" + entry.ID + "/download"}
		if err != nil {
			resp.Error = &ErrorResponse{Error: session.MessageOf(err), Code: string(session.KindOf(err))}
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func downloadHandler(w http.ResponseWriter, r *http.Request) {
	art := entryFrom(r).Artifact()
	if art == nil {
		WriteError(w, http.StatusNotFound, "nothing exported yet", "NOT_FOUND")
		return
	}
	if art.MIME != "" {
		w.Header().Set("Content-Type", art.MIME)
	}
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": art.Name}))
	http.ServeFile(w, r, art.Path)
}
