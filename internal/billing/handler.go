package billing

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/saralbooks/saralbooks/internal/gst"
	"github.com/saralbooks/saralbooks/internal/ledger"
	"github.com/saralbooks/saralbooks/internal/platform/httpx"
	"github.com/saralbooks/saralbooks/internal/sequence"
	"github.com/saralbooks/saralbooks/internal/shared"
)

// Handler exposes the document lifecycle over HTTP.
type Handler struct {
	service  *Service
	logger   *slog.Logger
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{service: service, logger: logger, validate: validator.New()}
}

type lineRequest struct {
	Description string  `json:"description"`
	HSNCode     string  `json:"hsn_code"`
	Qty         float64 `json:"qty" validate:"gt=0"`
	Rate        float64 `json:"rate" validate:"gte=0"`
	DiscountPct float64 `json:"discount_pct" validate:"gte=0,lte=100"`
	GSTRatePct  float64 `json:"gst_rate_pct" validate:"gte=0,lte=100"`
}

type chargeRequest struct {
	Name       string  `json:"name" validate:"required"`
	HSNCode    string  `json:"hsn_code"`
	Amount     float64 `json:"amount" validate:"gte=0"`
	GSTRatePct float64 `json:"gst_rate_pct" validate:"gte=0,lte=100"`
}

type accountRefRequest struct {
	Name string `json:"name" validate:"required"`
	Type string `json:"type" validate:"required"`
}

type journalLineRequest struct {
	Account   accountRefRequest `json:"account"`
	Debit     float64           `json:"debit" validate:"gte=0"`
	Credit    float64           `json:"credit" validate:"gte=0"`
	Narration string            `json:"narration"`
}

type documentRequest struct {
	DocType       string               `json:"doc_type" validate:"required,oneof=SALES PURCHASE CREDIT_NOTE DEBIT_NOTE DELIVERY_NOTE PAYMENT RECEIPT JOURNAL"`
	FinancialYear string               `json:"financial_year"`
	Date          string               `json:"date" validate:"required,datetime=2006-01-02"`
	PartyName     string               `json:"party_name"`
	Narration     string               `json:"narration"`
	BillType      string               `json:"bill_type" validate:"omitempty,oneof=INTRA_STATE INTER_STATE"`
	GSTEnabled    bool                 `json:"gst_enabled"`
	ReverseCharge bool                 `json:"reverse_charge"`
	Lines         []lineRequest        `json:"lines" validate:"dive"`
	Charges       []chargeRequest      `json:"charges" validate:"dive"`
	Amount        float64              `json:"amount" validate:"gte=0"`
	FromAccount   *accountRefRequest   `json:"from_account"`
	ToAccount     *accountRefRequest   `json:"to_account"`
	JournalLines  []journalLineRequest `json:"journal_lines" validate:"dive"`
}

// MountRoutes attaches document routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/documents", h.Create)
	r.Get("/documents", h.List)
	r.Get("/documents/{id}", h.Get)
	r.Put("/documents/{id}", h.Update)
	r.Delete("/documents/{id}", h.Delete)
	r.Post("/documents/{id}/cancel", h.Cancel)
	r.Post("/documents/{id}/convert", h.Convert)
	r.Get("/documents/{id}/hsn-summary", h.HSNSummary)
	r.Post("/tax-preview", h.TaxPreview)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	doc, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondError(w, "create document", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	docs, err := h.service.List(r.Context(), shared.FirmFromContext(r.Context()),
		sequence.DocumentType(q.Get("type")), limit, offset)
	if err != nil {
		h.respondError(w, "list documents", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := docID(w, r)
	if !ok {
		return
	}
	doc, err := h.service.Get(r.Context(), shared.FirmFromContext(r.Context()), id)
	if err != nil {
		h.respondError(w, "get document", err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := docID(w, r)
	if !ok {
		return
	}
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	doc, err := h.service.Update(r.Context(), shared.FirmFromContext(r.Context()), id, input)
	if err != nil {
		h.respondError(w, "update document", err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := docID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), shared.FirmFromContext(r.Context()), id, actorID(r)); err != nil {
		h.respondError(w, "delete document", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := docID(w, r)
	if !ok {
		return
	}
	doc, err := h.service.Cancel(r.Context(), shared.FirmFromContext(r.Context()), id, actorID(r))
	if err != nil {
		h.respondError(w, "cancel document", err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	id, ok := docID(w, r)
	if !ok {
		return
	}
	invoice, err := h.service.Convert(r.Context(), shared.FirmFromContext(r.Context()), id, actorID(r))
	if err != nil {
		h.respondError(w, "convert delivery note", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, invoice)
}

func (h *Handler) HSNSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := docID(w, r)
	if !ok {
		return
	}
	rows, err := h.service.HSNSummary(r.Context(), shared.FirmFromContext(r.Context()), id)
	if err != nil {
		h.respondError(w, "hsn summary", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"rows": rows})
}

// TaxPreview computes the breakdown for a draft bill without persisting
// anything, for the entry screen.
func (h *Handler) TaxPreview(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	payload := req.toPayload()
	breakdown := gst.Compute(payload.Lines, payload.Charges, gst.BillMeta{
		BillType:      payload.BillType,
		GSTEnabled:    payload.GSTEnabled,
		ReverseCharge: payload.ReverseCharge,
	})
	httpx.JSON(w, http.StatusOK, breakdown)
}

func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request) (DocumentInput, bool) {
	var req documentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return DocumentInput{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return DocumentInput{}, false
	}
	date, _ := time.Parse("2006-01-02", req.Date)
	return DocumentInput{
		FirmID:        shared.FirmFromContext(r.Context()),
		DocType:       sequence.DocumentType(req.DocType),
		FinancialYear: req.FinancialYear,
		DocDate:       date,
		PartyName:     req.PartyName,
		Narration:     req.Narration,
		ActorID:       actorID(r),
		Payload:       req.toPayload(),
	}, true
}

func (req documentRequest) toPayload() Payload {
	p := Payload{
		BillType:      gst.BillType(req.BillType),
		GSTEnabled:    req.GSTEnabled,
		ReverseCharge: req.ReverseCharge,
		Amount:        req.Amount,
	}
	if p.BillType == "" {
		p.BillType = gst.BillTypeIntraState
	}
	for _, l := range req.Lines {
		p.Lines = append(p.Lines, gst.LineItem{
			Description: l.Description,
			HSNCode:     l.HSNCode,
			Qty:         l.Qty,
			Rate:        l.Rate,
			DiscountPct: l.DiscountPct,
			GSTRatePct:  l.GSTRatePct,
		})
	}
	for _, c := range req.Charges {
		p.Charges = append(p.Charges, gst.OtherCharge{
			Name:       c.Name,
			HSNCode:    c.HSNCode,
			Amount:     c.Amount,
			GSTRatePct: c.GSTRatePct,
		})
	}
	if req.FromAccount != nil {
		p.FromAccount = AccountRef{Name: req.FromAccount.Name, Type: ledger.AccountType(req.FromAccount.Type)}
	}
	if req.ToAccount != nil {
		p.ToAccount = AccountRef{Name: req.ToAccount.Name, Type: ledger.AccountType(req.ToAccount.Type)}
	}
	for _, jl := range req.JournalLines {
		p.JournalLines = append(p.JournalLines, JournalLine{
			Account:   AccountRef{Name: jl.Account.Name, Type: ledger.AccountType(jl.Account.Type)},
			Debit:     jl.Debit,
			Credit:    jl.Credit,
			Narration: jl.Narration,
		})
	}
	return p
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrInvalidDocument),
		errors.Is(err, sequence.ErrInvalidFinancialYear),
		errors.Is(err, sequence.ErrUnknownDocumentType),
		errors.Is(err, ledger.ErrUnbalancedPosting),
		errors.Is(err, ledger.ErrTooFewLines),
		errors.Is(err, ledger.ErrInvalidEntry),
		errors.Is(err, ledger.ErrUnknownAccountType):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrDocumentNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, sequence.ErrSequenceExhausted),
		errors.Is(err, ErrDocumentNotActive),
		errors.Is(err, ErrDocumentConverted),
		errors.Is(err, ErrNotDeliveryNote):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func docID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "document id must be an integer")
		return 0, false
	}
	return id, true
}

func actorID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
	return id
}
