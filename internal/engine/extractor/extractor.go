// Package extractor reads applicant attributes out of free-text Korean
// chat messages with ordered pattern rules.
package extractor

import (
	"strconv"
	"strings"

	"govsupport-chatbot/internal/models"
)

// Options tune the extractor. The zero value is the production setup.
type Options struct {
	// NumericAge enables "<n>살" parsing into age and age_group.
	NumericAge bool
}

// Extractor is immutable after New and safe for concurrent use.
type Extractor struct {
	rules []Rule
	opts  Options
}

func New(opts Options) *Extractor {
	return &Extractor{rules: DefaultRules(), opts: opts}
}

// NewWithRules builds an extractor over a custom rule list.
func NewWithRules(rules []Rule, opts Options) *Extractor {
	return &Extractor{rules: append([]Rule(nil), rules...), opts: opts}
}

// Rules returns the rule names in evaluation order.
func (e *Extractor) Rules() []string {
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name
	}
	return names
}

// Extract returns only the fields recognised in message. Fields that
// no rule matches are absent; unrecognised text gives an empty profile.
// current is accepted for callers that merge the result; the rules do
// not depend on it.
func (e *Extractor) Extract(message string, current models.UserProfile) models.UserProfile {
	var out models.UserProfile
	if strings.TrimSpace(message) == "" {
		return out
	}

	matched := make(map[string]bool)
	for _, r := range e.rules {
		if matched[r.Field] {
			continue
		}
		if r.Gate != "" && !strings.Contains(message, r.Gate) {
			continue
		}
		if !r.Pattern.MatchString(message) {
			continue
		}
		if err := out.Set(r.Field, r.Value); err != nil {
			continue
		}
		matched[r.Field] = true
	}

	if e.opts.NumericAge {
		if age, ok := NumericAge(message); ok {
			out.Age = models.IntPtr(age)
			if !matched[models.FieldAgeGroup] {
				out.AgeGroup = models.StringPtr(AgeToGroup(age))
			}
		}
	}

	return out
}

// Extract runs the production extractor.
func Extract(message string, current models.UserProfile) models.UserProfile {
	return defaultExtractor.Extract(message, current)
}

var defaultExtractor = New(Options{})

// NumericAge finds an age written as digits followed by "살".
func NumericAge(message string) (int, bool) {
	m := numericAgeRE.FindStringSubmatch(message)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// AgeToGroup buckets an age into the decade labels used by the
// question bank.
func AgeToGroup(age int) string {
	switch {
	case age < 30:
		return "20대"
	case age < 40:
		return "30대"
	case age < 50:
		return "40대"
	case age < 60:
		return "50대"
	default:
		return "60대 이상"
	}
}
