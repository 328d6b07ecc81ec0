package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ZacxDev/video-editor/internal/session"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const RequestIDKey contextKey = "request_id"

func LoggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			requestID, _ := r.Context().Value(RequestIDKey).(string)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", wrapped.status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.String("request_id", requestID),
			)
		})
	}
}

func RecoveryMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					requestID, _ := r.Context().Value(RequestIDKey).(string)
					logger.Error("panic recovered", zap.Any("error", err), zap.String("request_id", requestID))
					WriteError(w, http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.NewString()[:8]
			ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
			w.Header().Set("X-Request-ID", requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func WriteError(w http.ResponseWriter, status int, message, code string) {
	WriteJSON(w, status, ErrorResponse{Error: message, Code: code})
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// StatusFor maps an editing failure to an HTTP status.
func StatusFor(kind session.ErrorKind) int {
	switch kind {
	case "":
		return http.StatusOK
	case session.KindNoMediaLoaded, session.KindExportInProgress, session.KindDuplicateSplit:
		return http.StatusConflict
	case session.KindInvalidMedia:
		return http.StatusUnsupportedMediaType
	case session.KindExportFailure:
		return http.StatusInternalServerError
	case session.KindAdjustmentUnknown, session.KindPresetNotFound:
		return http.StatusNotFound
	case session.KindUnrecognizedCommand:
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}

// WriteEditError writes err using its editing kind when it has one.
func WriteEditError(w http.ResponseWriter, err error) {
	kind := session.KindOf(err)
	if kind == "" {
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
		return
	}
	WriteError(w, StatusFor(kind), session.MessageOf(err), string(kind))
}
