// internal/graduation/errors.go
package graduation

import (
	"errors"
	"fmt"
)

var (
	// ErrNotEligible means the curve holds less than the graduation threshold. No action was taken.
	ErrNotEligible = errors.New("bonding curve not eligible for graduation")

	// ErrMintMismatch means the requested mint is not the curve's mint.
	ErrMintMismatch = errors.New("token mint does not match bonding curve")

	// ErrInsufficientBalance means the curve balance dropped below the threshold before funds distribution.
	ErrInsufficientBalance = errors.New("insufficient bonding curve balance")

	// ErrPossiblyAlreadySettled marks a failed token step that is assumed to have already run.
	ErrPossiblyAlreadySettled = errors.New("token transfer possibly already settled")

	// ErrSubmissionFailed wraps a signing, broadcast or confirmation failure.
	ErrSubmissionFailed = errors.New("on-chain submission failed")

	// ErrSettlementInProgress is returned when another settlement holds the mint's lock.
	ErrSettlementInProgress = errors.New("settlement already in progress")
)

// Step names a stage of the settlement sequence.
type Step string

const (
	StepLoad   Step = "load"
	StepTokens Step = "graduate_token"
	StepFunds  Step = "process_graduation_funds"
)

// StepError records which settlement step failed.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
