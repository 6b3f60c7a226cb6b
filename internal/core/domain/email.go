package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidateEmail performs a structural check of an email address: a non-empty
// local part, exactly one @, a dotted domain without empty labels and a final
// label of at least two letters.
func ValidateEmail(addr string) error {
	invalid := func(reason string) error {
		return fmt.Errorf("%w: %q %s", ErrInvalidEmailAddress, addr, reason)
	}

	if strings.Count(addr, "@") != 1 {
		return invalid("must contain exactly one @")
	}
	local, domainPart, _ := strings.Cut(addr, "@")
	if local == "" {
		return invalid("has an empty local part")
	}
	if !strings.Contains(domainPart, ".") {
		return invalid("has no dot in the domain")
	}

	labels := strings.Split(domainPart, ".")
	for _, label := range labels {
		if label == "" {
			return invalid("has an empty domain label")
		}
	}

	tld := labels[len(labels)-1]
	if len(tld) < 2 {
		return invalid("has a top-level domain shorter than two letters")
	}
	for _, r := range tld {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return invalid("has a non-alphabetic top-level domain")
		}
	}
	return nil
}

// IsValidEmail reports whether ValidateEmail accepts addr.
func IsValidEmail(addr string) bool {
	return ValidateEmail(addr) == nil
}
