// internal/graduation/states.go
package graduation

// State is the position of one orchestration in the settlement sequence.
type State string

const (
	StatePending               State = "Pending"
	StateTokensSettling        State = "TokensSettling"
	StateTokensSettled         State = "TokensSettled"
	StateSkippedAlreadySettled State = "SkippedAlreadySettled"
	StateFundsDistributing     State = "FundsDistributing"
	StateFundsDistributed      State = "FundsDistributed"
	StateFailed                State = "Failed"
)

// SettlementResult is the outcome of one Settle call.
type SettlementResult struct {
	Success            bool   `json:"success"`
	State              State  `json:"state"`
	TransactionID      string `json:"transactionId,omitempty"`
	TokenTransactionID string `json:"tokenTransactionId,omitempty"`
	PlatformReceived   string `json:"platformReceived,omitempty"`
	CreatorReceived    string `json:"creatorReceived,omitempty"`
	Note               string `json:"note,omitempty"`
	Error              string `json:"error,omitempty"`
}
