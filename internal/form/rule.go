// internal/form/rule.go
//
// Feleck – Forms subsystem: rule predicates.
//
// Context
//   A Rule pairs one pure predicate with the fixed message shown when the
//   predicate fails.  Rules are declared per field in a FormDef (YAML) and
//   compiled into a Schema.  The predicate set is closed: a definition names a
//   rule kind and, where the kind takes one, a parameter.
//
// Kinds
//   •  required   – value is non-empty.
//   •  email      – value is a well-formed address (validator/v10 "email").
//   •  minlength  – value holds at least Min characters (code points).
//   •  letter     – value contains an ASCII letter.
//   •  digit      – value contains an ASCII digit.
//   •  special    – value contains a non-word character or an underscore.
//   •  pattern    – value matches Pattern somewhere.
//
//------------------------------------------------------------------------------

package form

import (
	"fmt"
	"regexp"
	"unicode/utf16"

	"github.com/go-playground/validator/v10"
)

// Rule kinds understood by compileRule.
const (
	KindRequired  = "required"
	KindEmail     = "email"
	KindMinLength = "minlength"
	KindLetter    = "letter"
	KindDigit     = "digit"
	KindSpecial   = "special"
	KindPattern   = "pattern"
)

// Rule is a named predicate over one field value.  Check returns true when the
// value satisfies the rule.
type Rule struct {
	Name    string
	Message string
	Check   func(string) bool
}

var (
	letterRe  = regexp.MustCompile(`[A-Za-z]`)
	digitRe   = regexp.MustCompile(`\d`)
	specialRe = regexp.MustCompile(`\W|_`) // underscore counts as special

	// emailCheck is shared; validator instances are safe for concurrent use.
	emailCheck = validator.New()
)

// Required reports whether s is present.
func Required(s string) bool { return s != "" }

// Email reports whether s is a well-formed email address.
func Email(s string) bool { return emailCheck.Var(s, "email") == nil }

// MinLength returns a predicate accepting values of at least n characters.
// Length is measured in UTF-16 code units, the unit browser and mobile
// clients report, so a character outside the BMP counts as two.
func MinLength(n int) func(string) bool {
	return func(s string) bool { return utf16Len(s) >= n }
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += len(utf16.Encode([]rune{r}))
	}
	return n
}

// ContainsLetter reports whether s holds an ASCII letter.
func ContainsLetter(s string) bool { return letterRe.MatchString(s) }

// ContainsDigit reports whether s holds an ASCII digit.
func ContainsDigit(s string) bool { return digitRe.MatchString(s) }

// ContainsSpecial reports whether s holds a non-word character or "_".
func ContainsSpecial(s string) bool { return specialRe.MatchString(s) }

// compileRule turns a RuleDef into a Rule.  The message must already be
// resolved by the caller.
func compileRule(field string, rd RuleDef, msg string) (Rule, error) {
	var check func(string) bool

	switch rd.Rule {
	case KindRequired:
		check = Required
	case KindEmail:
		check = Email
	case KindMinLength:
		if rd.Min <= 0 {
			return Rule{}, fmt.Errorf("field %q: minlength rule needs min > 0", field)
		}
		check = MinLength(rd.Min)
	case KindLetter:
		check = ContainsLetter
	case KindDigit:
		check = ContainsDigit
	case KindSpecial:
		check = ContainsSpecial
	case KindPattern:
		re, err := regexp.Compile(rd.Pattern)
		if err != nil {
			return Rule{}, fmt.Errorf("field %q: invalid pattern: %w", field, err)
		}
		check = re.MatchString
	default:
		return Rule{}, fmt.Errorf("field %q: unknown rule %q", field, rd.Rule)
	}

	return Rule{Name: rd.ruleName(), Message: msg, Check: check}, nil
}
