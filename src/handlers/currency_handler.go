package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/username/pennywise/backend/src/security/validation"
	"github.com/username/pennywise/backend/src/services"
	"github.com/username/pennywise/backend/src/utils"
)

// CurrencyHandler exposes the cached rate table and ad-hoc conversions.
type CurrencyHandler struct {
	currency services.CurrencyService
}

func NewCurrencyHandler(currency services.CurrencyService) *CurrencyHandler {
	return &CurrencyHandler{currency: currency}
}

func (h *CurrencyHandler) HandleRates(w http.ResponseWriter, r *http.Request) {
	utils.SendJSONResponse(w, map[string]any{
		"base":  "USD",
		"rates": h.currency.GetRates(),
	}, http.StatusOK)
}

// HandleConvert serves GET /api/currency/convert?amount=..&from=..&to=..
func (h *CurrencyHandler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, err := strconv.ParseFloat(q.Get("amount"), 64)
	if err != nil {
		utils.SendJSONError(w, "amount must be a number", http.StatusBadRequest)
		return
	}
	if err := validation.ValidateAmount(amount); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	from := strings.ToUpper(strings.TrimSpace(q.Get("from")))
	to := strings.ToUpper(strings.TrimSpace(q.Get("to")))
	if err := validation.ValidateCurrencyCode(from); err != nil {
		utils.SendJSONError(w, "from: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateCurrencyCode(to); err != nil {
		utils.SendJSONError(w, "to: "+err.Error(), http.StatusBadRequest)
		return
	}

	converted := utils.RoundFloat(h.currency.Convert(amount, from, to), 2)
	utils.SendJSONResponse(w, map[string]any{
		"amount":    amount,
		"from":      from,
		"to":        to,
		"converted": converted,
	}, http.StatusOK)
}
