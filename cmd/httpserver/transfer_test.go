//go:build integration

package httpserver_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/integrationtest"
	"github.com/go-petr/pet-ledger/internal/integrationtest/helpers"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

func TestCreateTransferAPIPostgres(t *testing.T) {
	server := integrationtest.SetupServer(t)

	account1 := helpers.SeedAccountWith1000Balance(t, server.DB)
	account2 := helpers.SeedAccountWith1000Balance(t, server.DB)

	testCases := []struct {
		name           string
		requestBody    map[string]any
		wantStatusCode int
		wantCode       string
		wantFrom       string
		wantTo         string
	}{
		{
			name:           "OK",
			requestBody:    map[string]any{"fromId": account1.Identifier, "toId": account2.Identifier, "amount": "100.25"},
			wantStatusCode: http.StatusOK,
			wantFrom:       "899.75",
			wantTo:         "1100.25",
		},
		{
			name:           "InsufficientBalance",
			requestBody:    map[string]any{"fromId": account1.Identifier, "toId": account2.Identifier, "amount": 900},
			wantStatusCode: http.StatusBadRequest,
			wantCode:       errorspkg.CodeInsufficientFunds,
			wantFrom:       "899.75",
			wantTo:         "1100.25",
		},
		{
			name:           "UnknownDestination",
			requestBody:    map[string]any{"fromId": account1.Identifier, "toId": helpers.RandomIdentifier(), "amount": 1},
			wantStatusCode: http.StatusNotFound,
			wantCode:       errorspkg.CodeNotFound,
			wantFrom:       "899.75",
			wantTo:         "1100.25",
		},
		{
			name:           "SameAccount",
			requestBody:    map[string]any{"fromId": account1.Identifier, "toId": account1.Identifier, "amount": 1},
			wantStatusCode: http.StatusBadRequest,
			wantCode:       errorspkg.CodeValidation,
			wantFrom:       "899.75",
			wantTo:         "1100.25",
		},
		{
			name:           "TooManyDecimals",
			requestBody:    map[string]any{"fromId": account1.Identifier, "toId": account2.Identifier, "amount": "0.00001"},
			wantStatusCode: http.StatusBadRequest,
			wantCode:       errorspkg.CodeValidation,
			wantFrom:       "899.75",
			wantTo:         "1100.25",
		},
		{
			name:           "WholeRemainder",
			requestBody:    map[string]any{"fromId": account1.Identifier, "toId": account2.Identifier, "amount": "899.75"},
			wantStatusCode: http.StatusOK,
			wantFrom:       "0",
			wantTo:         "2000",
		},
	}

	// Cases share accounts and run in order.
	for _, tc := range testCases {
		code, res := do(t, server, http.MethodPost, "/api/transfer", tc.requestBody, nil)
		require.Equal(t, tc.wantStatusCode, code, "%s: %s", tc.name, res.Error)

		if tc.wantStatusCode == http.StatusOK {
			require.NotEmpty(t, res.TransactionID, tc.name)
		} else {
			require.Equal(t, tc.wantCode, res.Code, tc.name)
		}

		got := balances(t, server)
		require.True(t, got[account1.Identifier].Equal(decimal.RequireFromString(tc.wantFrom)), "%s: from balance %s", tc.name, got[account1.Identifier])
		require.True(t, got[account2.Identifier].Equal(decimal.RequireFromString(tc.wantTo)), "%s: to balance %s", tc.name, got[account2.Identifier])
	}

	history := transactionsOf(t, server, account2.Identifier)
	require.Len(t, history, 2)

	for _, tr := range history {
		require.Equal(t, domain.StatusCompleted, tr.Status)
		require.Equal(t, account1.Identifier, tr.FromID)
	}
}

func TestTransferIdempotencyAPIPostgres(t *testing.T) {
	server := integrationtest.SetupServer(t)

	from := helpers.SeedAccount(t, server.DB, "100")
	to := helpers.SeedAccount(t, server.DB, "0")

	headers := map[string]string{"Idempotency-Key": "pg-retry-1"}
	body := map[string]any{"fromId": from.Identifier, "toId": to.Identifier, "amount": 40}

	code, first := do(t, server, http.MethodPost, "/api/transfer", body, headers)
	require.Equal(t, http.StatusOK, code)
	require.False(t, first.Replayed)

	code, second := do(t, server, http.MethodPost, "/api/transfer", body, headers)
	require.Equal(t, http.StatusOK, code)
	require.True(t, second.Replayed)
	require.Equal(t, first.TransactionID, second.TransactionID)

	body["amount"] = 41
	code, res := do(t, server, http.MethodPost, "/api/transfer", body, headers)
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, errorspkg.CodeIdempotencyConflict, res.Code)

	got := balances(t, server)
	require.True(t, got[from.Identifier].Equal(decimal.NewFromInt(60)))
	require.True(t, got[to.Identifier].Equal(decimal.NewFromInt(40)))
}

func TestConcurrentTransfersAPIPostgres(t *testing.T) {
	server := integrationtest.SetupServer(t)

	from := helpers.SeedAccount(t, server.DB, "100")
	to1 := helpers.SeedAccount(t, server.DB, "0")
	to2 := helpers.SeedAccount(t, server.DB, "0")

	const n = 20

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		statuses = map[int]int{}
	)

	for i := 0; i < n; i++ {
		wg.Add(1)

		to := to1.Identifier
		if i%2 == 0 {
			to = to2.Identifier
		}

		go func(to string) {
			defer wg.Done()

			raw, _ := json.Marshal(map[string]any{"fromId": from.Identifier, "toId": to, "amount": 15})

			req := httptest.NewRequest(http.MethodPost, "/api/transfer", bytes.NewReader(raw))
			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			mu.Lock()
			statuses[recorder.Code]++
			mu.Unlock()
		}(to)
	}

	wg.Wait()

	// 100 / 15 allows six debits.
	require.Equal(t, 6, statuses[http.StatusOK])
	require.Equal(t, n-6, statuses[http.StatusBadRequest])

	got := balances(t, server)
	require.True(t, got[from.Identifier].Equal(decimal.NewFromInt(10)))
	require.True(t, got[to1.Identifier].Add(got[to2.Identifier]).Equal(decimal.NewFromInt(90)))
	require.Len(t, transactionsOf(t, server, from.Identifier), 6)
}
