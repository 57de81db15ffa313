package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Account field limits.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MinPasswordLength = 12
	MaxPasswordLength = 128
	maxEmailLength    = 254
)

const passwordSymbols = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

var errInvalidEmail = errors.New("Enter a valid email address.")

// passwordClasses lists the character kinds every password must contain.
var passwordClasses = []struct {
	label string
	in    func(rune) bool
}{
	{"an uppercase letter", unicode.IsUpper},
	{"a lowercase letter", unicode.IsLower},
	{"a digit", unicode.IsDigit},
	{"a symbol such as ! or #", func(r rune) bool { return strings.ContainsRune(passwordSymbols, r) }},
}

// ValidatePassword enforces the length and character mix of new passwords.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength || n > MaxPasswordLength {
		return fmt.Errorf("Password must be %d to %d characters.", MinPasswordLength, MaxPasswordLength)
	}
	for _, class := range passwordClasses {
		if strings.IndexFunc(password, class.in) < 0 {
			return fmt.Errorf("Password must contain %s.", class.label)
		}
	}
	return nil
}

func isUsernameRune(r rune) bool {
	return r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-')
}

// ValidateUsername accepts ASCII letters, digits, '_' and '-', bounded by a letter or digit.
func ValidateUsername(username string) error {
	if n := len(username); n < MinUsernameLength || n > MaxUsernameLength {
		return fmt.Errorf("Username must be %d to %d characters.", MinUsernameLength, MaxUsernameLength)
	}
	if strings.IndexFunc(username, func(r rune) bool { return !isUsernameRune(r) }) >= 0 {
		return errors.New("Username may contain only letters, digits, underscores and hyphens.")
	}
	if strings.ContainsAny(username[:1]+username[len(username)-1:], "_-") {
		return errors.New("Username must start and end with a letter or digit.")
	}
	return nil
}

// ValidateEmail accepts a bare address whose domain has at least one dot.
func ValidateEmail(email string) error {
	if len(email) > maxEmailLength {
		return errInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return errInvalidEmail
	}
	domain := email[strings.LastIndexByte(email, '@')+1:]
	if !strings.Contains(strings.Trim(domain, "."), ".") {
		return errInvalidEmail
	}
	return nil
}
