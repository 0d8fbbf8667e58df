package rest

import (
	"encoding/json"
	"time"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
)

// addFundsRequest POST /money
// Amount 保留原始字面值，交給 domain.ParseAmount 判斷是否為整數
type addFundsRequest struct {
	Name   string          `json:"name"`
	Amount json.RawMessage `json:"amount"`
}

// moveFundsRequest POST /money/move
type moveFundsRequest struct {
	NameFrom string          `json:"name_from"`
	NameTo   string          `json:"name_to"`
	Amount   json.RawMessage `json:"amount"`
}

type accountResponse struct {
	Name string `json:"name"`
}

type accountBalanceResponse struct {
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
}

type transactionResponse struct {
	ID          string `json:"id"`
	AccountName string `json:"account_name"`
	Amount      int64  `json:"amount"`
	Date        string `json:"date"`
}

type statementLineResponse struct {
	transactionResponse
	Type           string `json:"type"`
	RunningBalance int64  `json:"running_balance"`
	Display        string `json:"display"`
}

type statementResponse struct {
	Name           string                  `json:"name"`
	Lines          []statementLineResponse `json:"lines"`
	Closing        int64                   `json:"closing"`
	ClosingDisplay string                  `json:"closing_display"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func toAccountResponse(account *domain.Account) accountResponse {
	return accountResponse{Name: account.Name()}
}

func toAccountBalanceResponse(ab usecase.AccountBalance) accountBalanceResponse {
	return accountBalanceResponse{Name: ab.Account.Name(), Balance: ab.Balance}
}

func toTransactionResponse(tx domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID.String(),
		AccountName: tx.AccountName(),
		Amount:      tx.Amount,
		Date:        tx.Date.Format(time.RFC3339Nano),
	}
}

func toStatementResponse(statement *usecase.Statement, reporter *usecase.BankReporter) statementResponse {
	lines := make([]statementLineResponse, 0, len(statement.Lines))
	for _, line := range statement.Lines {
		lines = append(lines, statementLineResponse{
			transactionResponse: toTransactionResponse(line.Transaction),
			Type:                line.Transaction.Type.String(),
			RunningBalance:      line.RunningBalance,
			Display:             reporter.FormatAmount(line.RunningBalance),
		})
	}
	return statementResponse{
		Name:           statement.Account.Name(),
		Lines:          lines,
		Closing:        statement.Closing,
		ClosingDisplay: reporter.FormatAmount(statement.Closing),
	}
}
