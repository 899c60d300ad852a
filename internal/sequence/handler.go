package sequence

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/saralbooks/saralbooks/internal/platform/httpx"
	"github.com/saralbooks/saralbooks/internal/shared"
)

// Handler exposes number preview and allocation endpoints.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{service: service, logger: logger}
}

// MountRoutes attaches sequence routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/preview", h.Preview)
	r.Post("/allocate", h.Allocate)
}

func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	firmID := shared.FirmFromContext(r.Context())
	docType := DocumentType(r.URL.Query().Get("type"))
	fy := r.URL.Query().Get("financial_year")
	number, err := h.service.Preview(r.Context(), firmID, docType, fy)
	if err != nil {
		h.respondError(w, "preview number", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"number": number})
}

func (h *Handler) Allocate(w http.ResponseWriter, r *http.Request) {
	firmID := shared.FirmFromContext(r.Context())
	docType := DocumentType(r.URL.Query().Get("type"))
	fy := r.URL.Query().Get("financial_year")
	number, err := h.service.Allocate(r.Context(), firmID, docType, fy)
	if err != nil {
		h.respondError(w, "allocate number", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]string{"number": number})
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrInvalidFirm), errors.Is(err, ErrInvalidFinancialYear), errors.Is(err, ErrUnknownDocumentType):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrSequenceExhausted):
		httpx.Problem(w, http.StatusConflict, "Sequence Exhausted", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
