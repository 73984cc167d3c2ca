package model

import "errors"

// Rule identifies which configuration invariant failed.
// Keep these values stable; they are returned to API clients.
type Rule string

const (
	RuleWeightSum         Rule = "WEIGHT_SUM"
	RuleWeightRange       Rule = "WEIGHT_RANGE"
	RuleNonNumeric        Rule = "NON_NUMERIC"
	RuleReturnRange       Rule = "RETURN_RANGE"
	RuleHorizon           Rule = "HORIZON"
	RuleRebalanceInterval Rule = "REBALANCE_INTERVAL"
	RuleNoMethods         Rule = "NO_METHODS"
	RulePrincipal         Rule = "PRINCIPAL"
	RuleContribution      Rule = "CONTRIBUTION"
)

// ValidationError reports a configuration that must be fixed by the user
// before any simulation can run.
type ValidationError struct {
	Rule    Rule
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(rule Rule, msg string) *ValidationError {
	return &ValidationError{Rule: rule, Message: msg}
}

// AsValidationError unwraps err into a *ValidationError when it carries one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
