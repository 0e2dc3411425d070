package app

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/himakar4/movie-booking-system/api"
	"github.com/redis/go-redis/v9"
)

const (
	IdempotencyKeyHeader  = "Idempotency-Key"
	DefaultIdempotencyTTL = 24 * time.Hour

	idempotencyKeyPrefix     = "idempotency:"
	idempotencyProcessingTTL = 30 * time.Second
	idempotentReplayedHeader = "Idempotent-Replayed"
)

const (
	ErrRequestInProgress    = "A request with this idempotency key is still being processed"
	ErrIdempotencyKeyReused = "The idempotency key was already used with a different request"
)

type idempotencyStatus string

const (
	statusProcessing idempotencyStatus = "processing"
	statusCompleted  idempotencyStatus = "completed"
)

type idempotencyRecord struct {
	Status       idempotencyStatus `json:"status"`
	RequestHash  string            `json:"requestHash"`
	ResponseCode int               `json:"responseCode,omitempty"`
	ContentType  string            `json:"contentType,omitempty"`
	ResponseBody []byte            `json:"responseBody,omitempty"`
}

// idempotent replays the stored response of an earlier POST carrying the same
// Idempotency-Key and body. Server errors are not stored, so the key can be
// retried. When Redis is not configured or fails, requests are served without
// this guarantee.
func (app *Application) idempotent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" || r.Method != http.MethodPost || app.redis == nil {
			next.ServeHTTP(w, r)
			return
		}

		logger := app.contextGetLogger(r).With("idempotency_key", key)

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
		if err != nil {
			app.badRequestResponse(w, r, err)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		ctx := r.Context()
		redisKey := idempotencyKeyPrefix + key
		hash := requestHash(r, body)

		data, err := json.Marshal(idempotencyRecord{Status: statusProcessing, RequestHash: hash})
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}

		acquired, err := app.redis.SetNX(ctx, redisKey, data, idempotencyProcessingTTL).Result()
		if err != nil {
			logger.Warn("idempotency store unavailable, serving request without it", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		if !acquired {
			app.replayIdempotent(w, r, redisKey, hash)
			return
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		var buf bytes.Buffer
		ww.Tee(&buf)

		next.ServeHTTP(ww, r)

		// The outcome is already decided, store it even if the client left.
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()

		status := ww.Status()
		if status == 0 || status >= http.StatusInternalServerError {
			err = app.redis.Del(saveCtx, redisKey).Err()
			if err != nil {
				logger.Error("failed to release idempotency key", "error", err)
			}
			return
		}

		data, err = json.Marshal(idempotencyRecord{
			Status:       statusCompleted,
			RequestHash:  hash,
			ResponseCode: status,
			ContentType:  ww.Header().Get("Content-Type"),
			ResponseBody: buf.Bytes(),
		})
		if err == nil {
			err = app.redis.Set(saveCtx, redisKey, data, app.idempotencyTTL()).Err()
		}
		if err != nil {
			logger.Error("failed to store idempotent response", "error", err)
		}
	})
}

func (app *Application) replayIdempotent(w http.ResponseWriter, r *http.Request, redisKey, hash string) {
	logger := app.contextGetLogger(r)

	raw, err := app.redis.Get(r.Context(), redisKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Released between SETNX and GET by a failed first attempt.
			app.reasonResponse(w, r, http.StatusConflict, api.RequestInProgress, ErrRequestInProgress, nil, nil)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	var record idempotencyRecord
	err = json.Unmarshal(raw, &record)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	switch {
	case record.RequestHash != hash:
		logger.Warn("idempotency key reused with a different request")
		app.reasonResponse(w, r, http.StatusUnprocessableEntity, api.IdempotencyKeyReused, ErrIdempotencyKeyReused, nil, nil)

	case record.Status == statusProcessing:
		app.reasonResponse(w, r, http.StatusConflict, api.RequestInProgress, ErrRequestInProgress, nil, nil)

	default:
		if record.ContentType != "" {
			w.Header().Set("Content-Type", record.ContentType)
		}
		w.Header().Set(idempotentReplayedHeader, "true")
		w.WriteHeader(record.ResponseCode)
		w.Write(record.ResponseBody)
	}
}

func (app *Application) idempotencyTTL() time.Duration {
	if app.config.Redis.IdempotencyTTL > 0 {
		return app.config.Redis.IdempotencyTTL
	}
	return DefaultIdempotencyTTL
}

func requestHash(r *http.Request, body []byte) string {
	h := sha256.New()
	h.Write([]byte(r.Method))
	h.Write([]byte(r.URL.Path))
	h.Write(body)

	return hex.EncodeToString(h.Sum(nil))
}
