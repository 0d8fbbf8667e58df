package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
)

// Health GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateAccount POST /accounts/{name}
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.core.CreateAccount(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, r, createAccountStatus, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

// GetAccount GET /accounts/{name}
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	result, err := h.core.GetAccount(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, r, getAccountStatus, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountBalanceResponse(result))
}

// ListAccounts GET /accounts
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	balances, err := h.core.ListAccounts(r.Context())
	if err != nil {
		h.writeError(w, r, nil, err)
		return
	}
	out := make([]accountBalanceResponse, 0, len(balances))
	for _, ab := range balances {
		out = append(out, toAccountBalanceResponse(ab))
	}
	writeJSON(w, http.StatusOK, out)
}

// Statement GET /accounts/{name}/statement
func (h *Handler) Statement(w http.ResponseWriter, r *http.Request) {
	statement, err := h.core.Statement(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, r, getAccountStatus, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatementResponse(statement, h.core.Reporter()))
}

// AddFunds POST /money {name, amount}
func (h *Handler) AddFunds(w http.ResponseWriter, r *http.Request) {
	var req addFundsRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, fundsStatus, err)
		return
	}
	amount, err := domain.ParseAmount(string(req.Amount))
	if err != nil {
		h.writeError(w, r, fundsStatus, err)
		return
	}

	tx, err := h.core.AddFunds(r.Context(), req.Name, amount)
	if err != nil {
		h.writeError(w, r, fundsStatus, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

// MoveFunds POST /money/move {name_from, name_to, amount}
func (h *Handler) MoveFunds(w http.ResponseWriter, r *http.Request) {
	var req moveFundsRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, fundsStatus, err)
		return
	}
	amount, err := domain.ParseAmount(string(req.Amount))
	if err != nil {
		h.writeError(w, r, fundsStatus, err)
		return
	}

	debit, credit, err := h.core.MoveFunds(r.Context(), req.NameFrom, req.NameTo, amount)
	if err != nil {
		h.writeError(w, r, fundsStatus, err)
		return
	}
	writeJSON(w, http.StatusOK, []transactionResponse{
		toTransactionResponse(debit),
		toTransactionResponse(credit),
	})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	// 只接受一個 JSON 物件，後面不能再有其他內容
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after object", errMalformedBody)
	}
	return nil
}
