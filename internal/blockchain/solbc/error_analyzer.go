package solbc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"go.uber.org/zap"
)

// AnchorError represents an error raised by an Anchor program
type AnchorError struct {
	Code int    `json:"code"`
	Name string `json:"name"`
	Msg  string `json:"msg"`
}

// Analysis is the structured view of a failed RPC call
type Analysis struct {
	Type             string       `json:"type"`
	Code             int          `json:"code,omitempty"`
	Message          string       `json:"message"`
	SimulationFailed bool         `json:"simulationFailed,omitempty"`
	Logs             []string     `json:"logs,omitempty"`
	Anchor           *AnchorError `json:"anchorError,omitempty"`
	InstructionError interface{}  `json:"instructionError,omitempty"`
}

// Summary renders the analysis as a single log-friendly line
func (a Analysis) Summary() string {
	if a.Anchor != nil {
		return fmt.Sprintf("%s (anchor %s #%d: %s)", a.Message, a.Anchor.Name, a.Anchor.Code, a.Anchor.Msg)
	}
	return a.Message
}

// ErrorAnalyzer extracts program errors from Solana RPC failures
type ErrorAnalyzer struct {
	logger *zap.Logger
}

// NewErrorAnalyzer creates a new ErrorAnalyzer instance
func NewErrorAnalyzer(logger *zap.Logger) *ErrorAnalyzer {
	return &ErrorAnalyzer{
		logger: logger.Named("error-analyzer"),
	}
}

// Analyze inspects err, unwrapping to a jsonrpc.RPCError when possible
func (ea *ErrorAnalyzer) Analyze(err error) Analysis {
	if err == nil {
		return Analysis{Type: "none", Message: "no error"}
	}

	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) {
		return Analysis{Type: "generic_error", Message: err.Error()}
	}

	result := Analysis{
		Type:    "rpc_error",
		Code:    rpcErr.Code,
		Message: rpcErr.Message,
	}
	if !strings.Contains(rpcErr.Message, "Transaction simulation failed") {
		return result
	}
	result.SimulationFailed = true

	data, ok := rpcErr.Data.(map[string]interface{})
	if !ok {
		return result
	}
	if logs, ok := data["logs"].([]interface{}); ok {
		for _, entry := range logs {
			line, ok := entry.(string)
			if !ok {
				continue
			}
			result.Logs = append(result.Logs, line)
			if strings.Contains(line, "AnchorError occurred") {
				anchorErr := ParseAnchorErrorLog(line)
				result.Anchor = &anchorErr
				ea.logger.Warn("Anchor error detected",
					zap.Int("code", anchorErr.Code),
					zap.String("name", anchorErr.Name),
					zap.String("message", anchorErr.Msg))
			}
		}
	}
	if instrErr, ok := data["err"]; ok {
		result.InstructionError = instrErr
	}
	return result
}

// ParseAnchorErrorLog parses an Anchor error log line, e.g.
// "Program log: AnchorError occurred. Error Code: NotGraduated. Error Number: 6003. Error Message: Curve not graduated."
func ParseAnchorErrorLog(line string) AnchorError {
	var result AnchorError
	if v, ok := logField(line, "Error Number:"); ok {
		result.Code, _ = strconv.Atoi(v)
	}
	if v, ok := logField(line, "Error Code:"); ok {
		result.Name = v
	}
	if v, ok := logField(line, "Error Message:"); ok {
		result.Msg = v
	}
	return result
}

// logField returns the text after label up to the next period.
func logField(line, label string) (string, bool) {
	_, rest, found := strings.Cut(line, label)
	if !found {
		return "", false
	}
	value, _, _ := strings.Cut(rest, ".")
	return strings.TrimSpace(value), true
}
