package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Ksavu/launched-lol-admin/internal/storage/models"
)

var base = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func generateTestSettlements() []*models.Settlement {
	return []*models.Settlement{
		{
			ID: "c", TokenMint: "MintBBBBBBBB", BondingCurve: "CurveB", State: "FundsDistributed", Success: true,
			FundsSignature: "sigB", AllocationMillions: 230, LiquidityLamports: 75_000_000_000,
			Note: "token transfer already settled, skipped", CompletedAt: base.Add(2 * time.Hour),
		},
		{
			ID: "a", TokenMint: "MintAAAAAAAA", BondingCurve: "CurveA", State: "FundsDistributed", Success: true,
			TokenSignature: "tokA", FundsSignature: "sigA", AllocationMillions: 200, LiquidityLamports: 75_000_000_000,
			CompletedAt: base,
		},
		{
			ID: "b", TokenMint: "MintAAAAAAAA", BondingCurve: "CurveA", State: "Failed",
			ErrorMessage: "insufficient bonding curve balance", CompletedAt: base.Add(time.Hour),
		},
		nil,
	}
}

func newTestExporter(t *testing.T) *SettlementExporter {
	e := NewSettlementExporter(zaptest.NewLogger(t))
	e.now = func() time.Time { return base.Add(24 * time.Hour) }
	return e
}

func TestExportCSV(t *testing.T) {
	e := newTestExporter(t)
	var buf bytes.Buffer

	summary, err := e.Export(&buf, generateTestSettlements(), Options{Format: FormatCSV})
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, csvHeaders, records[0])

	// ordered by completion time
	assert.Equal(t, "a", records[1][0])
	assert.Equal(t, "b", records[2][0])
	assert.Equal(t, "c", records[3][0])

	assert.Equal(t, "2026-09-01T12:00:00Z", records[1][1])
	assert.Equal(t, "true", records[1][5])
	assert.Equal(t, "200", records[1][8])
	assert.Equal(t, "75", records[1][9])
	assert.Equal(t, "insufficient bonding curve balance", records[2][11])

	assert.Equal(t, 3, summary.TotalSettlements)
	assert.Equal(t, 2, summary.SuccessfulSettlements)
	assert.Equal(t, 1, summary.FailedSettlements)
	assert.Equal(t, 1, summary.SkippedTokenSteps)
	assert.Equal(t, 2, summary.UniqueTokens)
	assert.Equal(t, uint64(430), summary.AllocatedMillions)
	assert.Equal(t, "150", summary.LiquiditySol)
	assert.Equal(t, base, summary.StartDate)
	assert.Equal(t, base.Add(2*time.Hour), summary.EndDate)
}

func TestExportJSON(t *testing.T) {
	e := newTestExporter(t)
	var buf bytes.Buffer

	_, err := e.Export(&buf, generateTestSettlements(), Options{Format: FormatJSON, OnlySuccess: true})
	require.NoError(t, err)

	var decoded struct {
		ExportTime      time.Time            `json:"export_time"`
		SettlementCount int                  `json:"settlement_count"`
		Settlements     []*models.Settlement `json:"settlements"`
		Summary         Summary              `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, base.Add(24*time.Hour), decoded.ExportTime)
	assert.Equal(t, 2, decoded.SettlementCount)
	require.Len(t, decoded.Settlements, 2)
	assert.Equal(t, "a", decoded.Settlements[0].ID)
	assert.Equal(t, "tokA", decoded.Settlements[0].TokenSignature)
	assert.Equal(t, 0, decoded.Summary.FailedSettlements)
}

func TestExportFilters(t *testing.T) {
	e := newTestExporter(t)

	tests := []struct {
		name string
		opts Options
		ids  []string
	}{
		{"token", Options{TokenFilter: "MintAAAAAAAA"}, []string{"a", "b"}},
		{"success", Options{OnlySuccess: true}, []string{"a", "c"}},
		{"window", Options{StartTime: base.Add(30 * time.Minute), EndTime: base.Add(90 * time.Minute)}, []string{"b"}},
		{"nothing", Options{TokenFilter: "MintZZZZZZZZ"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			summary, err := e.Export(&buf, generateTestSettlements(), tt.opts)
			require.NoError(t, err)

			records, err := csv.NewReader(&buf).ReadAll()
			require.NoError(t, err)
			var ids []string
			for _, rec := range records[1:] {
				ids = append(ids, rec[0])
			}
			assert.Equal(t, tt.ids, ids)
			assert.Equal(t, len(tt.ids), summary.TotalSettlements)
		})
	}
}

func TestExportUnsupportedFormat(t *testing.T) {
	e := newTestExporter(t)
	_, err := e.Export(&bytes.Buffer{}, nil, Options{Format: "xlsx"})
	assert.Error(t, err)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
}

func TestFilename(t *testing.T) {
	e := newTestExporter(t)
	assert.Equal(t, "settlements_all_20260902_120000.csv", e.Filename(Options{}))
	assert.Equal(t, "settlements_success_MintAAAA_20260902_120000.json",
		e.Filename(Options{Format: FormatJSON, OnlySuccess: true, TokenFilter: "MintAAAAAAAA"}))
}
