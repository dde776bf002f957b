package dates

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ErrInvalidExpression reports a date expression that no parser tier accepts.
var ErrInvalidExpression = errors.New("invalid date expression")

// Resolver turns human date expressions into absolute timestamps.
// Expressions are user-typed and must tolerate synonyms and sloppy spacing,
// so two regex tiers (short form, verbose form) are tried before falling
// back to a generic date parser.
type Resolver struct {
	// Now is the clock; overridable in tests.
	Now func() time.Time
}

// NewResolver creates a Resolver using the wall clock.
func NewResolver() *Resolver {
	return &Resolver{Now: time.Now}
}

// tier pairs a matcher with its handler. Tiers are tried in order; the
// first regexp that matches decides the outcome.
type tier struct {
	re     *regexp.Regexp
	handle func(r *Resolver, m []string) (*time.Time, error)
}

var tiers = []tier{
	// Short forms used by quick lookups: 1m, 3m, 6m, 1y, 2y, 5y.
	{regexp.MustCompile(`^(?i)(\d+)(m|y)$`), handleShort},
	// Verbose forms: optional "last", integer, unit alias, optional "ago".
	{regexp.MustCompile(`^(?i)(?:last\s*)?(\d+)\s*(m|mos|mths|mo|months|days|d|yrs|yr|y|weeks?|wks?|wk|w)\s*(?:ago)?$`), handleVerbose},
}

// Resolve parses expr into a start timestamp. A nil result with a nil error
// means "no lower bound": the caller should use full history.
//
//   - empty expression: one year ago
//   - "max": nil (full history)
//   - "ytd": January 1 of the current year
//   - relative forms ("3m", "last 2 weeks ago"): now minus the offset
//   - anything else: best-effort generic parse, or ErrInvalidExpression
func (r *Resolver) Resolve(expr string) (*time.Time, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		t := r.Now().AddDate(-1, 0, 0)
		return &t, nil
	}
	if strings.EqualFold(expr, "max") {
		return nil, nil
	}
	if strings.EqualFold(expr, "ytd") {
		now := r.Now()
		t := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return &t, nil
	}

	for _, tr := range tiers {
		if m := tr.re.FindStringSubmatch(expr); m != nil {
			return tr.handle(r, m)
		}
	}

	parsed, err := dateparse.ParseAny(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidExpression, expr)
	}
	return &parsed, nil
}

func handleShort(r *Resolver, m []string) (*time.Time, error) {
	n, _ := strconv.Atoi(m[1])
	var t time.Time
	switch strings.ToLower(m[2]) {
	case "m":
		t = r.Now().AddDate(0, -n, 0)
	case "y":
		t = r.Now().AddDate(-n, 0, 0)
	}
	return &t, nil
}

func handleVerbose(r *Resolver, m []string) (*time.Time, error) {
	n, _ := strconv.Atoi(m[1])
	var t time.Time
	switch strings.ToLower(m[2]) {
	case "m", "mo", "mos", "mths", "months":
		t = r.Now().AddDate(0, -n, 0)
	case "d", "days":
		t = r.Now().AddDate(0, 0, -n)
	case "y", "yr", "yrs":
		t = r.Now().AddDate(-n, 0, 0)
	case "w", "wk", "wks", "week", "weeks":
		t = r.Now().AddDate(0, 0, -7*n)
	default:
		// Unreachable while the unit list mirrors the regexp, but a new
		// alias added to one and not the other must fail loudly.
		return nil, fmt.Errorf("%w: unknown unit %q", ErrInvalidExpression, m[2])
	}
	return &t, nil
}
