package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Ksavu/launched-lol-admin/internal/dex/model"
	"github.com/Ksavu/launched-lol-admin/internal/storage/models"
)

// Format is the export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts "csv" or "json"; empty means csv.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// Options configures which ledger rows are exported
type Options struct {
	Format      Format
	StartTime   time.Time
	EndTime     time.Time
	TokenFilter string // token mint
	OnlySuccess bool
}

// Summary contains statistics over the exported settlements
type Summary struct {
	TotalSettlements      int       `json:"total_settlements"`
	SuccessfulSettlements int       `json:"successful_settlements"`
	FailedSettlements     int       `json:"failed_settlements"`
	SkippedTokenSteps     int       `json:"skipped_token_steps"`
	UniqueTokens          int       `json:"unique_tokens"`
	AllocatedMillions     uint64    `json:"allocated_millions"`
	LiquiditySol          string    `json:"liquidity_sol"`
	StartDate             time.Time `json:"start_date"`
	EndDate               time.Time `json:"end_date"`
}

var csvHeaders = []string{
	"id", "completed_at", "bonding_curve", "token_mint", "state", "success",
	"token_signature", "funds_signature", "allocation_millions", "liquidity_sol",
	"note", "error",
}

// SettlementExporter writes the settlement ledger as CSV or JSON
type SettlementExporter struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewSettlementExporter(logger *zap.Logger) *SettlementExporter {
	return &SettlementExporter{
		logger: logger.Named("export"),
		now:    time.Now,
	}
}

// Export filters rows, orders them by completion time and writes them to w.
func (e *SettlementExporter) Export(w io.Writer, rows []*models.Settlement, options Options) (Summary, error) {
	filtered := e.filter(rows, options)

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CompletedAt.Before(filtered[j].CompletedAt)
	})
	summary := e.summarize(filtered)

	var err error
	switch options.Format {
	case FormatCSV, "":
		err = e.writeCSV(w, filtered)
	case FormatJSON:
		err = e.writeJSON(w, filtered, summary)
	default:
		err = fmt.Errorf("unsupported format: %s", options.Format)
	}
	if err != nil {
		return Summary{}, err
	}

	e.logger.Info("Settlements exported",
		zap.Int("count", len(filtered)),
		zap.String("format", string(options.Format)))
	return summary, nil
}

// Filename suggests a download name for an export.
func (e *SettlementExporter) Filename(options Options) string {
	prefix := "settlements_all"
	if options.OnlySuccess {
		prefix = "settlements_success"
	}
	if len(options.TokenFilter) >= 8 {
		prefix += "_" + options.TokenFilter[:8]
	}
	format := options.Format
	if format == "" {
		format = FormatCSV
	}
	return fmt.Sprintf("%s_%s.%s", prefix, e.now().UTC().Format("20060102_150405"), format)
}

func (e *SettlementExporter) filter(rows []*models.Settlement, options Options) []*models.Settlement {
	filtered := make([]*models.Settlement, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		if !options.StartTime.IsZero() && row.CompletedAt.Before(options.StartTime) {
			continue
		}
		if !options.EndTime.IsZero() && row.CompletedAt.After(options.EndTime) {
			continue
		}
		if options.TokenFilter != "" && row.TokenMint != options.TokenFilter {
			continue
		}
		if options.OnlySuccess && !row.Success {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}

func (e *SettlementExporter) writeCSV(w io.Writer, rows []*models.Settlement) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeaders); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.ID,
			row.CompletedAt.UTC().Format(time.RFC3339),
			row.BondingCurve,
			row.TokenMint,
			row.State,
			strconv.FormatBool(row.Success),
			row.TokenSignature,
			row.FundsSignature,
			strconv.FormatUint(row.AllocationMillions, 10),
			model.LamportsToSol(row.LiquidityLamports).String(),
			row.Note,
			row.ErrorMessage,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write settlement %s: %w", row.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func (e *SettlementExporter) writeJSON(w io.Writer, rows []*models.Settlement, summary Summary) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	exportData := struct {
		ExportTime      time.Time            `json:"export_time"`
		SettlementCount int                  `json:"settlement_count"`
		Settlements     []*models.Settlement `json:"settlements"`
		Summary         Summary              `json:"summary"`
	}{
		ExportTime:      e.now().UTC(),
		SettlementCount: len(rows),
		Settlements:     rows,
		Summary:         summary,
	}

	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func (e *SettlementExporter) summarize(rows []*models.Settlement) Summary {
	summary := Summary{TotalSettlements: len(rows), LiquiditySol: "0"}
	if len(rows) == 0 {
		return summary
	}

	summary.StartDate = rows[0].CompletedAt
	summary.EndDate = rows[len(rows)-1].CompletedAt

	tokens := make(map[string]bool)
	var liquidity uint64
	for _, row := range rows {
		tokens[row.TokenMint] = true
		if !row.Success {
			summary.FailedSettlements++
			continue
		}
		summary.SuccessfulSettlements++
		summary.AllocatedMillions += row.AllocationMillions
		liquidity += row.LiquidityLamports
		if row.TokenSignature == "" {
			summary.SkippedTokenSteps++
		}
	}

	summary.UniqueTokens = len(tokens)
	summary.LiquiditySol = model.LamportsToSol(liquidity).String()
	return summary
}
