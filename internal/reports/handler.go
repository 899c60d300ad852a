package reports

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/saralbooks/saralbooks/internal/platform/httpx"
	"github.com/saralbooks/saralbooks/internal/shared"
)

// Handler exposes the report views.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{service: service, logger: logger}
}

// MountRoutes attaches report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reports/account-balance", h.AccountBalance)
	r.Get("/reports/trial-balance", h.TrialBalance)
	r.Get("/reports/profit-loss", h.ProfitLoss)
	r.Get("/reports/balance-sheet", h.BalanceSheet)
	r.Get("/reports/cash-flow", h.CashFlow)
}

func (h *Handler) AccountBalance(w http.ResponseWriter, r *http.Request) {
	account := r.URL.Query().Get("account")
	if account == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "account is required")
		return
	}
	asOf, ok := dateParam(w, r, "as_of")
	if !ok {
		return
	}
	balance, err := h.service.AccountBalance(r.Context(), shared.FirmFromContext(r.Context()), account, asOf)
	if err != nil {
		h.fail(w, "account balance", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"balance": balance,
		"display": FormatINR(balance.Amount),
	})
}

func (h *Handler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	from, ok := dateParam(w, r, "from")
	if !ok {
		return
	}
	to, ok := dateParam(w, r, "to")
	if !ok {
		return
	}
	tb, err := h.service.TrialBalance(r.Context(), shared.FirmFromContext(r.Context()), from, to)
	if err != nil {
		h.fail(w, "trial balance", err)
		return
	}
	httpx.JSON(w, http.StatusOK, tb)
}

func (h *Handler) ProfitLoss(w http.ResponseWriter, r *http.Request) {
	from, ok := dateParam(w, r, "from")
	if !ok {
		return
	}
	to, ok := dateParam(w, r, "to")
	if !ok {
		return
	}
	pl, err := h.service.ProfitLoss(r.Context(), shared.FirmFromContext(r.Context()), from, to)
	if err != nil {
		h.fail(w, "profit and loss", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"report":             pl,
		"net_profit_display": FormatINR(pl.NetProfit),
	})
}

func (h *Handler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	asOf, ok := dateParam(w, r, "as_of")
	if !ok {
		return
	}
	bs, err := h.service.BalanceSheet(r.Context(), shared.FirmFromContext(r.Context()), asOf)
	if err != nil {
		h.fail(w, "balance sheet", err)
		return
	}
	httpx.JSON(w, http.StatusOK, bs)
}

func (h *Handler) CashFlow(w http.ResponseWriter, r *http.Request) {
	from, ok := dateParam(w, r, "from")
	if !ok {
		return
	}
	to, ok := dateParam(w, r, "to")
	if !ok {
		return
	}
	cf, err := h.service.CashFlow(r.Context(), shared.FirmFromContext(r.Context()), from, to)
	if err != nil {
		h.fail(w, "cash flow", err)
		return
	}
	httpx.JSON(w, http.StatusOK, cf)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}

func dateParam(w http.ResponseWriter, r *http.Request, name string) (*time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", name+" must be YYYY-MM-DD")
		return nil, false
	}
	return &t, true
}
