package auth

import (
	"strings"

	"warden/config"
	"warden/internal/domain/service"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128
	strongScore       = 6

	specialSet = "@$!%*?&"

	// Ascending-run references. Checking 3-char windows against these
	// covers digit runs including the 890 wrap and alphabetic runs.
	digitRuns  = "01234567890"
	letterRuns = "abcdefghijklmnopqrstuvwxyz"
)

// defaultDenylist holds common weak passwords rejected as
// case-insensitive substrings.
var defaultDenylist = []string{
	"password",
	"12345678",
	"qwerty",
	"letmein",
	"iloveyou",
	"abc123",
	"admin123",
	"welcome",
}

// passwordPolicy implements service.PasswordPolicy. It is pure: no state
// beyond the configured denylist, no side effects, total over any input.
type passwordPolicy struct {
	denylist []string
}

// NewPasswordPolicy is the constructor for passwordPolicy. A denylist from
// configuration replaces the built-in one; entries are matched lowercased.
func NewPasswordPolicy(cfg *config.Config) service.PasswordPolicy {
	denylist := defaultDenylist
	if cfg != nil && cfg.PasswordPolicy != nil && len(cfg.PasswordPolicy.Denylist) > 0 {
		denylist = make([]string, 0, len(cfg.PasswordPolicy.Denylist))
		for _, entry := range cfg.PasswordPolicy.Denylist {
			denylist = append(denylist, strings.ToLower(entry))
		}
	}

	return &passwordPolicy{denylist: denylist}
}

// Evaluate checks the candidate against every hard rule and scores its
// strength. Acceptance requires all hard rules; the score is informative
// feedback and does not gate acceptance.
func (p *passwordPolicy) Evaluate(candidate string) service.PolicyEvaluation {
	var violations []string

	length := len(candidate)
	if length < minPasswordLength {
		violations = append(violations, "must be at least 8 characters long")
	}
	if length > maxPasswordLength {
		violations = append(violations, "must be at most 128 characters long")
	}

	var hasLower, hasUpper, hasDigit, hasSpecial, hasOtherSymbol bool
	for _, r := range candidate {
		switch {
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(specialSet, r):
			hasSpecial = true
		default:
			hasOtherSymbol = true
		}
	}

	if !hasLower {
		violations = append(violations, "must contain a lowercase letter")
	}
	if !hasUpper {
		violations = append(violations, "must contain an uppercase letter")
	}
	if !hasDigit {
		violations = append(violations, "must contain a digit")
	}
	if !hasSpecial {
		violations = append(violations, "must contain a special character (@$!%*?&)")
	}

	lowered := strings.ToLower(candidate)
	for _, weak := range p.denylist {
		if strings.Contains(lowered, weak) {
			violations = append(violations, "must not contain a commonly used password")

			break
		}
	}

	score := 0
	if length >= minPasswordLength {
		score++
	}
	if length >= 12 {
		score++
	}
	if hasLower {
		score++
	}
	if hasUpper {
		score++
	}
	if hasDigit {
		score++
	}
	if hasSpecial || hasOtherSymbol {
		score++
	}
	if !hasTripleRepeat(candidate) {
		score++
	}
	if !hasAscendingRun(lowered) {
		score++
	}

	return service.PolicyEvaluation{
		Accepted:   len(violations) == 0,
		Violations: violations,
		Score:      score,
		Strong:     score >= strongScore,
	}
}

// hasTripleRepeat reports whether any byte repeats three or more times
// consecutively.
func hasTripleRepeat(s string) bool {
	for i := 2; i < len(s); i++ {
		if s[i] == s[i-1] && s[i] == s[i-2] {
			return true
		}
	}

	return false
}

// hasAscendingRun reports whether the lowercased input contains a 3-char
// ascending alphabetic or numeric run ("abc", "789", "890").
func hasAscendingRun(lowered string) bool {
	for i := 0; i+3 <= len(lowered); i++ {
		window := lowered[i : i+3]
		if strings.Contains(digitRuns, window) || strings.Contains(letterRuns, window) {
			return true
		}
	}

	return false
}
