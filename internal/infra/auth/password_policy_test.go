package auth

import (
	"strings"
	"testing"

	"warden/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPolicy() *passwordPolicy {
	return NewPasswordPolicy(nil).(*passwordPolicy)
}

func TestPasswordPolicy_Evaluate_Accepted(t *testing.T) {
	policy := newTestPolicy()

	tests := []struct {
		name      string
		candidate string
		accepted  bool
	}{
		{name: "all rules satisfied", candidate: "Tr!ckyHorse7", accepted: true},
		{name: "minimum length boundary", candidate: "Xk9!mQpl", accepted: true},
		{name: "too short", candidate: "Xk9!mQp", accepted: false},
		{name: "too long", candidate: "Aa1!" + strings.Repeat("x", 125), accepted: false},
		{name: "missing lowercase", candidate: "XK9!MQPLW", accepted: false},
		{name: "missing uppercase", candidate: "xk9!mqplw", accepted: false},
		{name: "missing digit", candidate: "Xkz!mQplw", accepted: false},
		{name: "missing special", candidate: "Xk9zmQplw", accepted: false},
		{name: "special outside allowed set", candidate: "Xk9#mQplw", accepted: false},
		{name: "denylist substring", candidate: "MyPassword9!", accepted: false},
		{name: "denylist case-insensitive", candidate: "QwErTy$Zm9K", accepted: false},
		{name: "empty string", candidate: "", accepted: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.Evaluate(tt.candidate)
			assert.Equal(t, tt.accepted, got.Accepted)
			if !tt.accepted {
				assert.NotEmpty(t, got.Violations)
			}
		})
	}
}

func TestPasswordPolicy_Evaluate_Score(t *testing.T) {
	policy := newTestPolicy()

	tests := []struct {
		name      string
		candidate string
		score     int
		strong    bool
	}{
		// lower only, short: +len8 +lower +norepeat +norun
		{name: "weak lowercase", candidate: "horsetub", score: 4, strong: false},
		// everything except length 12
		{name: "good but short", candidate: "Xk9!mQpl", score: 7, strong: true},
		// full marks
		{name: "full marks", candidate: "Tr!ckyHors7e$wim", score: 8, strong: true},
		// triple repeat forfeits one point
		{name: "triple repeat", candidate: "Traaa!cky7Hb", score: 7, strong: true},
		// ascending alphabetic run forfeits one point
		{name: "alphabetic run", candidate: "Tabc!wky7Hqz", score: 7, strong: true},
		// ascending digit run with wrap
		{name: "digit run 890", candidate: "Tzw!qky890Hm", score: 7, strong: true},
		// empty string scores nothing except the absence checks
		{name: "empty", candidate: "", score: 2, strong: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.Evaluate(tt.candidate)
			assert.Equal(t, tt.score, got.Score, "score")
			assert.Equal(t, tt.strong, got.Strong, "strong")
		})
	}
}

func TestPasswordPolicy_Evaluate_NonAlphanumericCountsForScore(t *testing.T) {
	policy := newTestPolicy()

	// '#' is outside the accepted special set, so the hard rule fails, but
	// the symbol still earns the non-alphanumeric strength point.
	got := policy.Evaluate("Xk9#mQplw")
	assert.False(t, got.Accepted)
	assert.GreaterOrEqual(t, got.Score, 6)
}

func TestPasswordPolicy_ConfiguredDenylist(t *testing.T) {
	cfg := &config.Config{PasswordPolicy: &config.PasswordPolicyConfig{Denylist: []string{"Hunter2"}}}
	policy := NewPasswordPolicy(cfg)

	got := policy.Evaluate("MyhUnTeR2x!Q")
	require.False(t, got.Accepted)
	assert.Contains(t, got.Violations, "must not contain a commonly used password")

	// Built-in entries are replaced, not appended.
	got = policy.Evaluate("MyQwerty9x!B")
	assert.True(t, got.Accepted)
}

func TestPasswordPolicy_Evaluate_IsTotal(t *testing.T) {
	policy := newTestPolicy()

	// Arbitrary bytes, including invalid UTF-8, must never panic.
	inputs := []string{"\xff\xfe\xfd", "\x00\x00\x00\x00\x00\x00\x00\x00", strings.Repeat("\xf0\x9f\x98\x80", 64)}
	for _, in := range inputs {
		assert.NotPanics(t, func() { policy.Evaluate(in) })
	}
}
