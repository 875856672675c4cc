package slots

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrNotPermitted    = errors.New("not permitted")
	ErrAlreadyUsed     = errors.New("already used")
	ErrLimitReached    = errors.New("limit reached")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrBlacklisted     = errors.New("blacklisted")
	ErrOnCooldown      = errors.New("on cooldown")
	ErrExternalFailure = errors.New("external failure")
)

// Reason names the failure class of err for the command surface.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not-found"
	case errors.Is(err, ErrNotPermitted):
		return "not-permitted"
	case errors.Is(err, ErrAlreadyUsed):
		return "already-used"
	case errors.Is(err, ErrLimitReached):
		return "limit-reached"
	case errors.Is(err, ErrInvalidArgument):
		return "out-of-range"
	case errors.Is(err, ErrBlacklisted):
		return "blacklisted"
	case errors.Is(err, ErrOnCooldown):
		return "on-cooldown"
	case errors.Is(err, ErrExternalFailure):
		return "external-failure"
	}
	return "internal"
}

// UserMessage renders err as a reply. Unknown errors are not echoed back.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if Reason(err) == "internal" {
		return "❌ Something went wrong. Please contact an admin."
	}
	return fmt.Sprintf("❌ %s", capitalize(err.Error()))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
