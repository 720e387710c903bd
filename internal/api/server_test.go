package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Ksavu/launched-lol-admin/internal/dex/launchpad"
	"github.com/Ksavu/launched-lol-admin/internal/dex/raydium"
	"github.com/Ksavu/launched-lol-admin/internal/graduation"
	"github.com/Ksavu/launched-lol-admin/internal/storage/models"
	"github.com/Ksavu/launched-lol-admin/internal/utils/metrics"
)

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) ListGraduated(ctx context.Context) ([]*graduation.GraduatedToken, error) {
	args := m.Called(ctx)
	tokens, _ := args.Get(0).([]*graduation.GraduatedToken)
	return tokens, args.Error(1)
}

func (m *MockBackend) Settle(ctx context.Context, curve, mint solana.PublicKey) (*graduation.SettlementResult, *raydium.MigrationPlan, error) {
	args := m.Called(ctx, curve, mint)
	result, _ := args.Get(0).(*graduation.SettlementResult)
	plan, _ := args.Get(1).(*raydium.MigrationPlan)
	return result, plan, args.Error(2)
}

func (m *MockBackend) ListVerificationRequests(ctx context.Context) ([]*graduation.VerificationRequest, error) {
	args := m.Called(ctx)
	requests, _ := args.Get(0).([]*graduation.VerificationRequest)
	return requests, args.Error(1)
}

func (m *MockBackend) VerifySocial(ctx context.Context, registry, mint solana.PublicKey) (solana.Signature, error) {
	args := m.Called(ctx, registry, mint)
	return args.Get(0).(solana.Signature), args.Error(1)
}

func (m *MockBackend) RevokeVerification(ctx context.Context, registry, mint solana.PublicKey) (solana.Signature, error) {
	args := m.Called(ctx, registry, mint)
	return args.Get(0).(solana.Signature), args.Error(1)
}

func (m *MockBackend) ListSettlements(ctx context.Context, limit, offset int) ([]*models.Settlement, error) {
	args := m.Called(ctx, limit, offset)
	rows, _ := args.Get(0).([]*models.Settlement)
	return rows, args.Error(1)
}

func (m *MockBackend) RecordPool(ctx context.Context, mint, pool, market, lpMint solana.PublicKey) (string, error) {
	args := m.Called(ctx, mint, pool, market, lpMint)
	return args.String(0), args.Error(1)
}

func newTestServer(t *testing.T) (*MockBackend, *metrics.Collector, http.Handler) {
	t.Helper()
	backend := new(MockBackend)
	collector := metrics.NewCollector()
	return backend, collector, NewServer(backend, collector, zaptest.NewLogger(t)).Router()
}

func do(t *testing.T, router http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func TestHealth(t *testing.T) {
	_, _, router := newTestServer(t)
	w, body := do(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestListGraduatedTokens(t *testing.T) {
	backend, _, router := newTestServer(t)
	graduatedAt := time.Date(2026, 9, 2, 15, 4, 5, 0, time.UTC)
	backend.On("ListGraduated", mock.Anything).Return([]*graduation.GraduatedToken{{
		Mint: "MintA", Name: "Launch Cat", Symbol: "LCAT", SolInCurve: 85,
		TokensInCurveMillions: 230, GraduatedAt: graduatedAt, Graduated: true,
	}}, nil)

	w, body := do(t, router, http.MethodGet, "/api/admin/graduated-tokens", nil)
	require.Equal(t, http.StatusOK, w.Code)

	tokens, ok := body["tokens"].([]interface{})
	require.True(t, ok)
	require.Len(t, tokens, 1)
	token := tokens[0].(map[string]interface{})
	assert.Equal(t, "MintA", token["mint"])
	assert.Equal(t, 85.0, token["solInCurve"])
	assert.Equal(t, 230.0, token["tokensInCurveMillions"])
	assert.Equal(t, "2026-09-02T15:04:05Z", token["graduatedAt"])
	assert.Equal(t, false, token["lpCreated"])
}

func TestListGraduatedTokensFailure(t *testing.T) {
	backend, _, router := newTestServer(t)
	backend.On("ListGraduated", mock.Anything).Return(nil, errors.New("rpc down"))

	w, body := do(t, router, http.MethodGet, "/api/admin/graduated-tokens", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "rpc down")
}

func TestGraduate(t *testing.T) {
	backend, _, router := newTestServer(t)
	curve, mint := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()
	plan := raydium.PlanMigration(mint, 200_000_000_000_000, launchpad.LiquidityLamports)
	backend.On("Settle", mock.Anything, curve, mint).Return(&graduation.SettlementResult{
		Success: true, State: graduation.StateFundsDistributed, TransactionID: "sig",
		PlatformReceived: "79 SOL", CreatorReceived: "2 SOL",
	}, plan, nil)

	w, body := do(t, router, http.MethodPost, "/api/admin/graduate", graduateRequest{
		BondingCurve: curve.String(), TokenMint: mint.String(),
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])

	result := body["result"].(map[string]interface{})
	assert.Equal(t, "FundsDistributed", result["state"])
	assert.Equal(t, "79 SOL", result["platformReceived"])
	assert.Equal(t, "2 SOL", result["creatorReceived"])

	gotPlan := body["plan"].(map[string]interface{})
	pool := gotPlan["step2"].(map[string]interface{})
	assert.Equal(t, "200M tokens", pool["tokenAmount"])
	assert.Equal(t, "75 SOL", pool["solAmount"])
}

func TestGraduateErrors(t *testing.T) {
	curve, mint := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"in progress", graduation.ErrSettlementInProgress, http.StatusConflict},
		{"not eligible", graduation.ErrNotEligible, http.StatusUnprocessableEntity},
		{"insufficient balance", fmt.Errorf("%w: 80 SOL", graduation.ErrInsufficientBalance), http.StatusUnprocessableEntity},
		{"wrong owner", &graduation.StepError{Step: graduation.StepLoad, Err: launchpad.ErrUnexpectedOwner}, http.StatusUnprocessableEntity},
		{"submission", &graduation.StepError{Step: graduation.StepFunds, Err: fmt.Errorf("%w: blockhash not found", graduation.ErrSubmissionFailed)}, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, _, router := newTestServer(t)
			backend.On("Settle", mock.Anything, curve, mint).
				Return(&graduation.SettlementResult{State: graduation.StateFailed, Error: tt.err.Error()}, nil, tt.err)

			w, body := do(t, router, http.MethodPost, "/api/admin/graduate", graduateRequest{
				BondingCurve: curve.String(), TokenMint: mint.String(),
			})
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.err.Error(), body["error"])
			assert.NotNil(t, body["result"])
			assert.Nil(t, body["plan"])
		})
	}
}

func TestGraduateBadRequest(t *testing.T) {
	backend, _, router := newTestServer(t)

	w, body := do(t, router, http.MethodPost, "/api/admin/graduate", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])

	w, body = do(t, router, http.MethodPost, "/api/admin/graduate", graduateRequest{BondingCurve: "xyz"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["error"], "bondingCurve")

	w, body = do(t, router, http.MethodPost, "/api/admin/graduate", graduateRequest{BondingCurve: solana.NewWallet().PublicKey().String()})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["error"], "tokenMint is required")

	backend.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerificationRoutes(t *testing.T) {
	backend, _, router := newTestServer(t)
	registry, mint := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()

	backend.On("ListVerificationRequests", mock.Anything).Return([]*graduation.VerificationRequest{{
		Address: registry.String(), TokenMint: mint.String(), Platform: launchpad.PlatformTwitter, Handle: "@launchcat",
	}}, nil)
	backend.On("VerifySocial", mock.Anything, registry, mint).Return(solana.Signature{1}, nil)
	backend.On("RevokeVerification", mock.Anything, registry, mint).
		Return(solana.Signature{}, &graduation.StepError{Step: "revoke_verification", Err: graduation.ErrMintMismatch})

	w, body := do(t, router, http.MethodGet, "/api/admin/verification-requests", nil)
	require.Equal(t, http.StatusOK, w.Code)
	requests := body["requests"].([]interface{})
	require.Len(t, requests, 1)
	assert.Equal(t, "@launchcat", requests[0].(map[string]interface{})["handle"])

	req := verificationRequest{RegistryAddress: registry.String(), TokenMint: mint.String()}
	w, body = do(t, router, http.MethodPost, "/api/admin/verify-social", req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, solana.Signature{1}.String(), body["txid"])

	w, body = do(t, router, http.MethodPost, "/api/admin/revoke-verification", req)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, false, body["success"])
}

func TestListSettlements(t *testing.T) {
	backend, _, router := newTestServer(t)
	completed := time.Date(2026, 9, 3, 10, 0, 0, 0, time.UTC)
	backend.On("ListSettlements", mock.Anything, 20, 40).Return([]*models.Settlement{{
		ID: "a1", TokenMint: "MintA", State: "FundsDistributed", Success: true,
		FundsSignature: "sig", AllocationMillions: 200, CompletedAt: completed,
	}}, nil)
	backend.On("ListSettlements", mock.Anything, defaultSettlementsLimit, 0).Return([]*models.Settlement{}, nil)

	w, body := do(t, router, http.MethodGet, "/api/admin/settlements?limit=20&offset=40", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rows := body["settlements"].([]interface{})
	require.Len(t, rows, 1)
	row := rows[0].(map[string]interface{})
	assert.Equal(t, "a1", row["id"])
	assert.Equal(t, 200.0, row["allocationMillions"])
	assert.Equal(t, "2026-09-03T10:00:00Z", row["completedAt"])

	w, body = do(t, router, http.MethodGet, "/api/admin/settlements", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["settlements"])

	for _, query := range []string{"limit=0", "limit=501", "limit=abc", "offset=-1"} {
		w, _ = do(t, router, http.MethodGet, "/api/admin/settlements?"+query, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
}

func TestPoolCreated(t *testing.T) {
	backend, _, router := newTestServer(t)
	mint, pool, market, lpMint := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey(),
		solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()
	backend.On("RecordPool", mock.Anything, mint, pool, market, lpMint).Return("spl-token transfer ...", nil)

	w, body := do(t, router, http.MethodPost, "/api/admin/pool-created", poolCreatedRequest{
		TokenMint: mint.String(), PoolID: pool.String(), MarketID: market.String(), LPMint: lpMint.String(),
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "spl-token transfer ...", body["burnCommand"])

	w, body = do(t, router, http.MethodPost, "/api/admin/pool-created", poolCreatedRequest{TokenMint: mint.String()})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["error"], "poolId")
}

func TestMetricsEndpoint(t *testing.T) {
	backend, collector, router := newTestServer(t)
	backend.On("ListGraduated", mock.Anything).Return([]*graduation.GraduatedToken{}, nil)

	do(t, router, http.MethodGet, "/api/admin/graduated-tokens", nil)
	do(t, router, http.MethodGet, "/api/admin/graduated-tokens", nil)

	count, err := testutil.GatherAndCount(collector.Registry(), "launched_admin_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	w, _ := do(t, router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `launched_admin_http_requests_total{method="GET",path="/api/admin/graduated-tokens",status="200"} 2`)
}

func TestExportSettlements(t *testing.T) {
	backend, _, router := newTestServer(t)
	completed := time.Date(2026, 9, 3, 10, 0, 0, 0, time.UTC)
	backend.On("ListSettlements", mock.Anything, maxExportRows, 0).Return([]*models.Settlement{
		{ID: "a1", TokenMint: "MintA", State: "FundsDistributed", Success: true, CompletedAt: completed},
		{ID: "a2", TokenMint: "MintA", State: "Failed", CompletedAt: completed.Add(time.Minute)},
	}, nil)

	w, _ := do(t, router, http.MethodGet, "/api/admin/settlements/export?onlySuccess=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "settlements_success_")
	assert.Equal(t, "1", w.Header().Get("X-Settlement-Count"))

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "a1,2026-09-03T10:00:00Z"))

	w, body := do(t, router, http.MethodGet, "/api/admin/settlements/export?format=json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2.0, body["settlement_count"])

	for _, query := range []string{"format=xml", "onlySuccess=maybe", "from=yesterday"} {
		w, _ = do(t, router, http.MethodGet, "/api/admin/settlements/export?"+query, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
}
