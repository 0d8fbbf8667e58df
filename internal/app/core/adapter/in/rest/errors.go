package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
)

// errMalformedBody 請求內容不是合法的 JSON
var errMalformedBody = errors.New("malformed request body")

// statusMapping 每個路由各自的 業務錯誤 -> HTTP 狀態碼
type statusMapping []struct {
	err    error
	status int
}

var (
	createAccountStatus = statusMapping{
		{domain.ErrInvalidName, http.StatusBadRequest},
		{domain.ErrDuplicateAccount, http.StatusBadRequest},
	}
	getAccountStatus = statusMapping{
		{domain.ErrAccountNotFound, http.StatusNotFound},
	}
	fundsStatus = statusMapping{
		{domain.ErrInsufficientFunds, http.StatusForbidden},
		{domain.ErrAccountNotFound, http.StatusBadRequest},
		{domain.ErrNonIntegerAmount, http.StatusBadRequest},
		{errMalformedBody, http.StatusBadRequest},
	}
)

// status 找不到對應時：帳本停止為 503，其餘一律 500
func (m statusMapping) status(err error) int {
	for _, entry := range m {
		if errors.Is(err, entry.err) {
			return entry.status
		}
	}
	if errors.Is(err, domain.ErrLedgerClosed) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError 寫出 {"message": ...}；5xx 不回傳內部錯誤內容，只記錄在 log
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, mapping statusMapping, err error) {
	status := mapping.status(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
		message = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Message: message})
}
