package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/shortspan/shortspan/internal/shortener"
	"go.uber.org/zap"
)

// URLHandler translates transport requests into shortener service calls and
// service errors back into transport responses.
type URLHandler struct {
	service shortener.Service
	logger  *zap.Logger
}

// NewURLHandler creates a new URL handler.
func NewURLHandler(service shortener.Service, logger *zap.Logger) *URLHandler {
	return &URLHandler{service: service, logger: logger}
}

// CreateShortURL stores a URL under an identifier derived from the payload.
func (h *URLHandler) CreateShortURL(ctx context.Context, req *CreateShortURLRequest) (*CreateShortURLResponse, error) {
	shortened, err := h.service.Post(ctx, req.Body.URL, req.Body.ExpirationTimestamp)
	if err != nil {
		return nil, h.mapError(err, "create")
	}

	resp := &CreateShortURLResponse{}
	resp.Body = *shortened

	return resp, nil
}

// PutShortURL stores a URL under the identifier chosen by the caller.
func (h *URLHandler) PutShortURL(ctx context.Context, req *PutShortURLRequest) (*PutShortURLResponse, error) {
	shortened, status, err := h.service.Put(ctx, req.ID, req.Body.URL, req.Body.ExpirationTimestamp)
	if err != nil {
		return nil, h.mapError(err, "put")
	}

	resp := &PutShortURLResponse{Status: http.StatusOK, Body: *shortened}
	if status == shortener.StatusCreated {
		resp.Status = http.StatusCreated
	}

	return resp, nil
}

// RedirectToURL resolves a short identifier into a temporary redirect.
func (h *URLHandler) RedirectToURL(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	redirect, err := h.service.Get(ctx, req.ID)
	if err != nil {
		return nil, h.mapError(err, "redirect")
	}

	resp := &RedirectResponse{Status: http.StatusTemporaryRedirect}
	resp.Headers.Location = redirect.URL
	resp.Headers.CacheControl = fmt.Sprintf("max-age=%d", redirect.RemainingSeconds)

	return resp, nil
}

// mapError converts a service error into a transport response. Internal
// causes are logged under a generated error id; the caller only sees the id.
func (h *URLHandler) mapError(err error, op string) error {
	errorID := uuid.NewString()

	switch {
	case errors.Is(err, shortener.ErrNotFound):
		return huma.Error404NotFound("short url not found")
	case errors.Is(err, shortener.ErrShortIDTaken):
		h.logger.Info("short ID exists under a different entry",
			zap.String("op", op),
			zap.String("error_id", errorID),
		)

		return huma.Error409Conflict(err.Error())
	case shortener.IsValidationError(err):
		h.logger.Info("rejected a bad request",
			zap.String("op", op),
			zap.String("error_id", errorID),
			zap.Error(err),
		)

		return huma.Error400BadRequest(err.Error())
	default:
		h.logger.Error("request failed",
			zap.String("op", op),
			zap.String("error_id", errorID),
			zap.Error(err),
		)

		return huma.Error500InternalServerError("internal server error (error id " + errorID + ")")
	}
}
