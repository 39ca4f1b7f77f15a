package tool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandomDigits(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		code := RandomDigits(6)
		require.Len(t, code, 6)
		for _, r := range code {
			require.True(t, r >= '0' && r <= '9')
		}
		seen[code] = true
	}
	// 20 draws from a million-value space should not all collide
	require.Greater(t, len(seen), 1)
}

func TestReferralPrefix(t *testing.T) {
	cases := map[string]string{
		"taro@example.com":    "TARO",
		"ab@example.com":      "ABXX",
		"a.b-c@example.com":   "AXBX",
		"1234567@example.com": "1234",
		"@example.com":        "XXXX",
		"noatsign":            "NOAT",
	}
	for in, want := range cases {
		require.Equal(t, want, ReferralPrefix(in), "input %q", in)
	}
}
