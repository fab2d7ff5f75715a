package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// emailTLD accepts local@domain.tld: no whitespace, exactly one @, and a dotted domain
// whose last label is at least two letters.
var emailTLD = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[A-Za-z]{2,}$`)

// MaxPasswordBytes is bcrypt's input limit. validator's max counts runes, not bytes.
const MaxPasswordBytes = 72

// v is the package-level singleton validator. It is initialised once at
// package load time. Any custom type registrations must be made during init()
// before the first call to Struct.
var v = validator.New()

func init() {
	_ = v.RegisterValidation("emailtld", func(fl validator.FieldLevel) bool {
		return emailTLD.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("bcryptmax", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= MaxPasswordBytes
	})
}

// Struct validates the given struct using its validate tags.
// Returns a human-readable error string or nil.
func Struct(s interface{}) error {
	if err := v.Struct(s); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		var msgs []string
		for _, fe := range ve {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return nil
}

// Email reports whether s has the form local@domain.tld.
func Email(s string) bool {
	return emailTLD.MatchString(s)
}
