package service

// MaxPolicyScore is the upper bound of the strength score.
const MaxPolicyScore = 8

// PolicyEvaluation is the outcome of checking a candidate password.
// Acceptance and strength are independent: a password can satisfy every
// hard rule yet still score as weak, and the score is reported either way
// so clients can give feedback.
type PolicyEvaluation struct {
	Accepted   bool     `json:"accepted"`
	Violations []string `json:"violations,omitempty"`
	Score      int      `json:"score"`
	Strong     bool     `json:"strong"`
}

// PasswordPolicy evaluates candidate passwords against the composition
// rules and scores their strength. Implementations must be deterministic,
// side-effect free and total over arbitrary input strings.
type PasswordPolicy interface {
	Evaluate(candidate string) PolicyEvaluation
}
