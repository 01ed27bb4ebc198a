// Package ibanpkg generates IBAN-like account identifiers.
//
// The identifiers only mimic the IBAN layout: country code, two check digits,
// bank code and a 12 digit account part. They are not registered anywhere.
package ibanpkg

import (
	"fmt"
	"strings"

	"github.com/go-petr/pet-ledger/pkg/randompkg"
)

const accountPartLen = 12

// Generator creates identifiers for a single country and bank.
type Generator struct {
	countryCode string
	bankCode    string
}

// NewGenerator returns a Generator for the given country and bank code.
func NewGenerator(countryCode, bankCode string) (*Generator, error) {
	countryCode = strings.ToUpper(countryCode)
	bankCode = strings.ToUpper(bankCode)

	if len(countryCode) != 2 || !isAlpha(countryCode) {
		return nil, fmt.Errorf("invalid country code %q", countryCode)
	}

	if bankCode == "" || !isAlnum(bankCode) {
		return nil, fmt.Errorf("invalid bank code %q", bankCode)
	}

	return &Generator{countryCode: countryCode, bankCode: bankCode}, nil
}

// Generate returns a new random identifier with valid mod-97 check digits.
func (g *Generator) Generate() string {
	bban := g.bankCode + randompkg.Digits(accountPartLen)
	return g.countryCode + checkDigits(g.countryCode, bban) + bban
}

// Valid reports whether s is well formed and its check digits match.
func Valid(s string) bool {
	if len(s) < 5 || !isAlpha(s[:2]) || !isAlnum(s[2:]) {
		return false
	}

	return mod97(s[4:]+s[:4]) == 1
}

func checkDigits(countryCode, bban string) string {
	return fmt.Sprintf("%02d", 98-mod97(bban+countryCode+"00"))
}

// mod97 computes the ISO 7064 remainder with letters expanded to 10..35.
func mod97(s string) int {
	r := 0

	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
			r = (r*10 + int(c-'0')) % 97
		case c >= 'A' && c <= 'Z':
			r = (r*100 + int(c-'A') + 10) % 97
		}
	}

	return r
}

func isAlpha(s string) bool {
	for _, c := range s {
		if c < 'A' || c > 'Z' {
			return false
		}
	}

	return true
}

func isAlnum(s string) bool {
	for _, c := range s {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}

	return true
}
