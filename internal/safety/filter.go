// Package safety gates every outbound message. Nothing leaves the agent
// without passing Filter.IsSafe first.
package safety

import (
	"regexp"
	"strings"
)

// Verdict reasons, in rule precedence order.
const (
	ReasonEmpty         = "empty"
	ReasonDiscordInvite = "discord_invite"
	ReasonPIIEmail      = "pii_email"
	ReasonCryptoWallet  = "crypto_wallet"
	ReasonScamKeyword   = "scam_keyword"
	ReasonSafe          = "safe"
)

// Filter holds compiled deny rules. Safe for concurrent use after New.
type Filter struct {
	invite  *regexp.Regexp
	email   *regexp.Regexp
	wallet  *regexp.Regexp
	scam    *regexp.Regexp
	blocked []string
}

// New compiles the deny rules. Blocked terms are matched as lowercase
// substrings, so multi-word phrases work too.
func New() *Filter {
	return &Filter{
		invite: regexp.MustCompile(`(?i)(discord\.(gg|io|me|li)|discordapp\.com/invite)/[a-zA-Z0-9]+`),
		email:  regexp.MustCompile(`(?i)[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
		wallet: regexp.MustCompile(`(0x[a-fA-F0-9]{40})|(bc1|[13])[a-zA-HJ-NP-Z0-9]{25,39}`),
		scam:   regexp.MustCompile(`(?i)\b(nitro free|steam wallet|gift card|giveaway|claim now|click here)\b`),
		blocked: []string{
			"nigger", "faggot", "retard", "kys", "kill yourself", "rape",
			"chink", "tranny", "shemale", "dyke", "kike",
		},
	}
}

// IsSafe reports whether text may be sent, with the first matching deny
// reason. Empty text is always allowed.
func (f *Filter) IsSafe(text string) (bool, string) {
	if text == "" {
		return true, ReasonEmpty
	}

	lower := strings.ToLower(text)
	for _, w := range f.blocked {
		if strings.Contains(lower, w) {
			return false, "blocked_word: " + w
		}
	}

	if f.invite.MatchString(text) {
		return false, ReasonDiscordInvite
	}
	if f.email.MatchString(text) {
		return false, ReasonPIIEmail
	}
	if f.wallet.MatchString(text) {
		return false, ReasonCryptoWallet
	}
	if f.scam.MatchString(text) {
		return false, ReasonScamKeyword
	}

	return true, ReasonSafe
}

// Sanitize returns text unchanged when safe, otherwise an empty string.
func (f *Filter) Sanitize(text string) string {
	if ok, _ := f.IsSafe(text); ok {
		return text
	}
	return ""
}
