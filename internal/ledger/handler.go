package ledger

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/saralbooks/saralbooks/internal/platform/httpx"
	"github.com/saralbooks/saralbooks/internal/shared"
)

// Handler exposes manual posting and drill-down endpoints. Bill and voucher
// postings arrive through the billing module, not here.
type Handler struct {
	service  *Service
	logger   *slog.Logger
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{service: service, logger: logger, validate: validator.New()}
}

type entryRequest struct {
	AccountName string  `json:"account_name" validate:"required"`
	AccountType string  `json:"account_type" validate:"required"`
	Debit       float64 `json:"debit" validate:"gte=0"`
	Credit      float64 `json:"credit" validate:"gte=0"`
	Narration   string  `json:"narration"`
}

type postRequest struct {
	Date    string         `json:"date" validate:"required,datetime=2006-01-02"`
	RefType string         `json:"ref_type" validate:"required,oneof=MANUAL OPENING ADJUSTMENT"`
	RefID   int64          `json:"ref_id"`
	Entries []entryRequest `json:"entries" validate:"required,min=2,dive"`
}

type reverseRequest struct {
	RefType string `json:"ref_type" validate:"required,oneof=BILL VOUCHER MANUAL OPENING ADJUSTMENT"`
	RefID   int64  `json:"ref_id" validate:"required"`
}

// MountRoutes attaches ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/postings", h.Post)
	r.Post("/reversals", h.Reverse)
	r.Get("/entries", h.ListEntries)
	r.Delete("/entries/{id}", h.DeleteEntry)
}

func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	date, _ := time.Parse("2006-01-02", req.Date)
	input := PostingInput{
		FirmID:  shared.FirmFromContext(r.Context()),
		Date:    date,
		RefType: RefType(req.RefType),
		RefID:   req.RefID,
		ActorID: actorID(r),
	}
	for _, e := range req.Entries {
		input.Entries = append(input.Entries, EntryInput{
			AccountName: e.AccountName,
			AccountType: AccountType(e.AccountType),
			Debit:       e.Debit,
			Credit:      e.Credit,
			Narration:   e.Narration,
		})
	}
	ids, err := h.service.Post(r.Context(), input)
	if err != nil {
		h.respondError(w, "post entries", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"entry_ids": ids})
}

func (h *Handler) Reverse(w http.ResponseWriter, r *http.Request) {
	var req reverseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	firmID := shared.FirmFromContext(r.Context())
	ids, err := h.service.Reverse(r.Context(), firmID, RefType(req.RefType), req.RefID, actorID(r))
	if err != nil {
		h.respondError(w, "reverse entries", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entry_ids": ids})
}

func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	firmID := shared.FirmFromContext(r.Context())
	q := r.URL.Query()

	if refType := q.Get("ref_type"); refType != "" {
		refID, err := strconv.ParseInt(q.Get("ref_id"), 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "ref_id must be an integer")
			return
		}
		entries, err := h.service.EntriesByRef(r.Context(), firmID, RefType(refType), refID)
		if err != nil {
			h.respondError(w, "list entries by ref", err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries})
		return
	}

	account := q.Get("account")
	if account == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "account or ref_type is required")
		return
	}
	from, err := parseDateParam(q.Get("from"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "from must be YYYY-MM-DD")
		return
	}
	to, err := parseDateParam(q.Get("to"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "to must be YYYY-MM-DD")
		return
	}
	entries, err := h.service.EntriesByAccount(r.Context(), firmID, account, from, to)
	if err != nil {
		h.respondError(w, "list entries by account", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "entry id must be an integer")
		return
	}
	firmID := shared.FirmFromContext(r.Context())
	if err := h.service.DeleteEntry(r.Context(), firmID, entryID, actorID(r)); err != nil {
		h.respondError(w, "delete entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrUnbalancedPosting), errors.Is(err, ErrTooFewLines),
		errors.Is(err, ErrInvalidEntry), errors.Is(err, ErrUnknownAccountType):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrEntryNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrSystemEntryImmutable):
		httpx.Problem(w, http.StatusConflict, "Immutable Entry", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func actorID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
	return id
}

func parseDateParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
