// internal/api/handlers.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/Ksavu/launched-lol-admin/internal/blockchain"
	"github.com/Ksavu/launched-lol-admin/internal/dex/launchpad"
	"github.com/Ksavu/launched-lol-admin/internal/dex/raydium"
	"github.com/Ksavu/launched-lol-admin/internal/export"
	"github.com/Ksavu/launched-lol-admin/internal/graduation"
	"github.com/Ksavu/launched-lol-admin/internal/storage/models"
)

const (
	defaultSettlementsLimit = 50
	maxSettlementsLimit     = 500
	maxExportRows           = 10000
)

type graduateRequest struct {
	BondingCurve string `json:"bondingCurve"`
	TokenMint    string `json:"tokenMint"`
}

type graduateResponse struct {
	Success bool                         `json:"success"`
	Error   string                       `json:"error,omitempty"`
	Result  *graduation.SettlementResult `json:"result"`
	Plan    *raydium.MigrationPlan       `json:"plan,omitempty"`
}

type verificationRequest struct {
	RegistryAddress string `json:"registryAddress"`
	TokenMint       string `json:"tokenMint"`
}

type poolCreatedRequest struct {
	TokenMint string `json:"tokenMint"`
	PoolID    string `json:"poolId"`
	MarketID  string `json:"marketId"`
	LPMint    string `json:"lpMint"`
}

func (s *Server) listGraduated(w http.ResponseWriter, r *http.Request) {
	tokens, err := s.backend.ListGraduated(r.Context())
	if err != nil {
		s.logger.Error("failed to list graduated tokens", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch graduated tokens: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tokens": tokens})
}

func (s *Server) graduate(w http.ResponseWriter, r *http.Request) {
	var req graduateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	curve, err := parseKey("bondingCurve", req.BondingCurve)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	mint, err := parseKey("tokenMint", req.TokenMint)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, plan, err := s.backend.Settle(r.Context(), curve, mint)
	if err != nil {
		writeJSON(w, statusFor(err), graduateResponse{Success: false, Error: err.Error(), Result: result})
		return
	}
	writeJSON(w, http.StatusOK, graduateResponse{Success: true, Result: result, Plan: plan})
}

func (s *Server) listVerificationRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := s.backend.ListVerificationRequests(r.Context())
	if err != nil {
		s.logger.Error("failed to list verification requests", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch verification requests: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"requests": requests})
}

func (s *Server) verifySocial(w http.ResponseWriter, r *http.Request) {
	s.registryAction(w, r, s.backend.VerifySocial)
}

func (s *Server) revokeVerification(w http.ResponseWriter, r *http.Request) {
	s.registryAction(w, r, s.backend.RevokeVerification)
}

func (s *Server) registryAction(
	w http.ResponseWriter,
	r *http.Request,
	action func(ctx context.Context, registry, mint solana.PublicKey) (solana.Signature, error),
) {
	var req verificationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	registry, err := parseKey("registryAddress", req.RegistryAddress)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	mint, err := parseKey("tokenMint", req.TokenMint)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sig, err := action(r.Context(), registry, mint)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "txid": sig.String()})
}

func (s *Server) listSettlements(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultSettlementsLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if limit <= 0 || limit > maxSettlementsLimit {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxSettlementsLimit))
		return
	}
	if offset < 0 {
		writeError(w, http.StatusBadRequest, "offset must not be negative")
		return
	}

	rows, err := s.backend.ListSettlements(r.Context(), limit, offset)
	if err != nil {
		s.logger.Error("failed to list settlements", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rows == nil {
		rows = []*models.Settlement{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"settlements": rows, "limit": limit, "offset": offset})
}

func (s *Server) exportSettlements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts := export.Options{Format: format, TokenFilter: q.Get("mint")}
	if raw := q.Get("onlySuccess"); raw != "" {
		if opts.OnlySuccess, err = strconv.ParseBool(raw); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid onlySuccess: %q", raw))
			return
		}
	}
	if opts.StartTime, err = queryTime(r, "from"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if opts.EndTime, err = queryTime(r, "to"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := s.backend.ListSettlements(r.Context(), maxExportRows, 0)
	if err != nil {
		s.logger.Error("failed to load settlements for export", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var buf bytes.Buffer
	summary, err := s.exporter.Export(&buf, rows, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	contentType := "text/csv"
	if format == export.FormatJSON {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.exporter.Filename(opts)))
	w.Header().Set("X-Settlement-Count", strconv.Itoa(summary.TotalSettlements))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) poolCreated(w http.ResponseWriter, r *http.Request) {
	var req poolCreatedRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	keys := make(map[string]solana.PublicKey, 4)
	for _, field := range []struct{ name, value string }{
		{"tokenMint", req.TokenMint},
		{"poolId", req.PoolID},
		{"marketId", req.MarketID},
		{"lpMint", req.LPMint},
	} {
		key, err := parseKey(field.name, field.value)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		keys[field.name] = key
	}

	cmd, err := s.backend.RecordPool(r.Context(), keys["tokenMint"], keys["poolId"], keys["marketId"], keys["lpMint"])
	if err != nil {
		s.logger.Error("failed to record pool", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "burnCommand": cmd})
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, graduation.ErrSettlementInProgress):
		return http.StatusConflict
	case errors.Is(err, blockchain.ErrAccountNotFound), errors.Is(err, launchpad.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, graduation.ErrNotEligible),
		errors.Is(err, graduation.ErrInsufficientBalance),
		errors.Is(err, graduation.ErrMintMismatch),
		errors.Is(err, launchpad.ErrMalformedAccount),
		errors.Is(err, launchpad.ErrUnexpectedOwner):
		return http.StatusUnprocessableEntity
	case errors.Is(err, graduation.ErrSubmissionFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func parseKey(field, value string) (solana.PublicKey, error) {
	if value == "" {
		return solana.PublicKey{}, fmt.Errorf("%s is required", field)
	}
	key, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid %s: %w", field, err)
	}
	return key, nil
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return n, nil
}

func queryTime(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %q is not RFC3339", name, raw)
	}
	return t, nil
}

func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"success": false, "error": message})
}
