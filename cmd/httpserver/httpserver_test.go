package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/mem-bank/pkg/configpkg"
	"github.com/go-petr/mem-bank/pkg/randompkg"
)

func newTestServer() *Server {
	config := configpkg.Config{
		UserConcurrencyLimit: configpkg.DefaultUserConcurrencyLimit,
	}

	return New(zerolog.Nop(), config)
}

type apiResponse struct {
	Data struct {
		Balance     json.Number `json:"balance"`
		FromBalance json.Number `json:"from_balance"`
		ToBalance   json.Number `json:"to_balance"`
	} `json:"data"`
	Error string `json:"error"`
}

func do(t *testing.T, server *Server, method, url, body string) (int, apiResponse) {
	t.Helper()

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	server.ServeHTTP(recorder, req)

	var res apiResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &res))

	return recorder.Code, res
}

func createUser(t *testing.T, server *Server, username string) {
	t.Helper()

	code, res := do(t, server, http.MethodPost, "/users", fmt.Sprintf(`{"username":%q}`, username))
	require.Equal(t, http.StatusOK, code, res.Error)
}

func deposit(t *testing.T, server *Server, username, amount, currency string) string {
	t.Helper()

	url := fmt.Sprintf("/users/%s/deposit", username)
	body := fmt.Sprintf(`{"amount":%s,"currency":%q}`, amount, currency)

	code, res := do(t, server, http.MethodPost, url, body)
	require.Equal(t, http.StatusOK, code, res.Error)

	return res.Data.Balance.String()
}

func balance(t *testing.T, server *Server, username, currency string) string {
	t.Helper()

	url := fmt.Sprintf("/users/%s/balance?currency=%s", username, currency)

	code, res := do(t, server, http.MethodGet, url, "")
	require.Equal(t, http.StatusOK, code, res.Error)

	return res.Data.Balance.String()
}

func TestSubCentDeposits(t *testing.T) {
	server := newTestServer()
	username := randompkg.Owner()

	createUser(t, server, username)

	require.Equal(t, "0.01", deposit(t, server, username, "0.01", "USD"))
	require.Equal(t, "0.02", deposit(t, server, username, "0.01", "USD"))
	require.Equal(t, "0.02", balance(t, server, username, "USD"))
}

func TestDisplayTruncation(t *testing.T) {
	server := newTestServer()
	username := randompkg.Owner()

	createUser(t, server, username)

	require.Equal(t, "10.12", deposit(t, server, username, "10.123", "USD"))
	require.Equal(t, "20.57", deposit(t, server, username, "10.45678", "USD"))
	require.Equal(t, "30.58", deposit(t, server, username, "10.001", "USD"))
	require.Equal(t, "40.58", deposit(t, server, username, "10.009", "USD"))
}

func TestExactFullWithdrawal(t *testing.T) {
	server := newTestServer()
	username := randompkg.Owner()

	createUser(t, server, username)
	deposit(t, server, username, "100", "USD")

	url := fmt.Sprintf("/users/%s/withdraw", username)
	code, res := do(t, server, http.MethodPost, url, `{"amount":100,"currency":"USD"}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "0.00", res.Data.Balance.String())

	require.Equal(t, "0.00", balance(t, server, username, "USD"))
}

func TestInsufficientFunds(t *testing.T) {
	server := newTestServer()
	username := randompkg.Owner()

	createUser(t, server, username)
	deposit(t, server, username, "100", "USD")

	url := fmt.Sprintf("/users/%s/withdraw", username)
	code, res := do(t, server, http.MethodPost, url, `{"amount":100.01,"currency":"USD"}`)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "not_enough_money", res.Error)

	require.Equal(t, "100.00", balance(t, server, username, "USD"))
}

func TestTransfer(t *testing.T) {
	server := newTestServer()

	createUser(t, server, "alice")
	createUser(t, server, "bob")
	deposit(t, server, "alice", "100", "USD")

	body := `{"from_username":"alice","to_username":"bob","amount":25,"currency":"USD"}`
	code, res := do(t, server, http.MethodPost, "/transfers", body)
	require.Equal(t, http.StatusOK, code)

	var want apiResponse
	want.Data.FromBalance = "75.00"
	want.Data.ToBalance = "25.00"

	if diff := cmp.Diff(want.Data, res.Data); diff != "" {
		t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, "75.00", balance(t, server, "alice", "USD"))
	require.Equal(t, "25.00", balance(t, server, "bob", "USD"))
}

func TestSameUserTransferRejected(t *testing.T) {
	server := newTestServer()
	username := randompkg.Owner()

	createUser(t, server, username)
	deposit(t, server, username, "100", "USD")

	body := fmt.Sprintf(`{"from_username":%[1]q,"to_username":%[1]q,"amount":10,"currency":"USD"}`, username)
	code, res := do(t, server, http.MethodPost, "/transfers", body)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "wrong_arguments", res.Error)

	require.Equal(t, "100.00", balance(t, server, username, "USD"))
}

func TestCurrencyCaseSensitivity(t *testing.T) {
	server := newTestServer()
	username := randompkg.Owner()

	createUser(t, server, username)
	deposit(t, server, username, "100", "USD")

	require.Equal(t, "0.00", balance(t, server, username, "usd"))
}

func TestUnknownUser(t *testing.T) {
	server := newTestServer()

	code, res := do(t, server, http.MethodGet, "/users/ghost/balance?currency=USD", "")
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "user_does_not_exist", res.Error)
}

func TestConcurrentUserCreation(t *testing.T) {
	server := newTestServer()
	username := randompkg.Owner()

	const callers = 20

	var (
		created int64
		refused int64
		wg      sync.WaitGroup
	)

	for i := 0; i < callers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			recorder := httptest.NewRecorder()
			body := fmt.Sprintf(`{"username":%q}`, username)
			req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
			server.ServeHTTP(recorder, req)

			switch recorder.Code {
			case http.StatusOK:
				atomic.AddInt64(&created, 1)
			case http.StatusConflict:
				atomic.AddInt64(&refused, 1)
			default:
				t.Errorf("unexpected status %v: %v", recorder.Code, recorder.Body.String())
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int64(1), created)
	require.Equal(t, int64(callers-1), refused)
}

func TestMetricsEndpoint(t *testing.T) {
	server := newTestServer()

	// Generate at least one observed request so the counter vector has a
	// series to expose.
	createUser(t, server, randompkg.Owner())

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	server.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), "mem_bank_http_requests_total")
}
