package tool

import (
	"crypto/rand"
	"math/big"
	"strings"
	"unicode"
)

// RandomDigits returns n uniformly random ASCII digits.
func RandomDigits(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			// crypto/rand only fails when the platform source is broken
			panic(err)
		}
		b.WriteByte(byte('0' + v.Int64()))
	}
	return b.String()
}

// ReferralPrefixLen is the deterministic-prefix length of a referral code.
const ReferralPrefixLen = 4

// ReferralPrefix derives the deterministic part of a referral code from the
// local part of an email address: first four characters, uppercased, with
// anything outside [A-Za-z0-9] replaced by 'X'. Short local parts are padded
// with 'X'.
func ReferralPrefix(email string) string {
	local := email
	if i := strings.IndexByte(email, '@'); i >= 0 {
		local = email[:i]
	}

	out := make([]rune, 0, ReferralPrefixLen)
	for _, r := range local {
		if len(out) == ReferralPrefixLen {
			break
		}
		if unicode.IsLetter(r) && r < 128 || unicode.IsDigit(r) && r < 128 {
			out = append(out, unicode.ToUpper(r))
		} else {
			out = append(out, 'X')
		}
	}
	for len(out) < ReferralPrefixLen {
		out = append(out, 'X')
	}
	return string(out)
}
