package silver

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrDropped is returned by a transformer that rejects a record.
var ErrDropped = errors.New("record dropped")

// Transformer maps one raw record to at most one conformed record.
// A nil result or an error wrapping ErrDropped drops the record.
type Transformer[B, S any] interface {
	Transform(rec *B) (*S, error)
}

// TransformFunc adapts a plain function to Transformer.
type TransformFunc[B, S any] func(rec *B) (*S, error)

func (f TransformFunc[B, S]) Transform(rec *B) (*S, error) {
	return f(rec)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// span returns end-start divided by unit, rounded to 2 decimals, or nil
// when either endpoint is missing.
func span(start, end *time.Time, unit time.Duration) *float64 {
	if start == nil || end == nil {
		return nil
	}
	v := round2(end.Sub(*start).Seconds() / unit.Seconds())
	return &v
}

func hoursBetween(start, end *time.Time) *float64 {
	return span(start, end, time.Hour)
}

func daysBetween(start, end *time.Time) *float64 {
	return span(start, end, 24*time.Hour)
}

// stayLength returns the (days, hours) pair; days derive from the unrounded
// hours.
func stayLength(start, end *time.Time) (*float64, *float64) {
	if start == nil || end == nil {
		return nil, nil
	}
	hours := end.Sub(*start).Seconds() / 3600
	days := round2(hours / 24)
	hours = round2(hours)
	return &days, &hours
}

// dateOnly truncates to the calendar date in UTC. Raw timestamps are parsed
// as UTC, and the driver hands them back in the local zone.
func dateOnly(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	d := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func upper(s *string) string {
	if s == nil {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(*s))
}

func parseFinite(s string) *float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// comparison prefixes seen in lab values, longest first
var labOperators = []string{">=", "<=", ">", "<", "~"}

// parseLabNumeric reads values such as ">10" or "<=0.5". Text results like
// "NEGATIVE" yield nil.
func parseLabNumeric(value *string) *float64 {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	for _, op := range labOperators {
		if strings.HasPrefix(v, op) {
			v = strings.TrimSpace(v[len(op):])
			break
		}
	}
	if v == "" {
		return nil
	}
	return parseFinite(v)
}

// parseDose strips thousands separators, so "1,000" is 1000. Ranges such
// as "1-2" are not numeric.
func parseDose(value *string) *float64 {
	if value == nil {
		return nil
	}
	v := strings.ReplaceAll(strings.TrimSpace(*value), ",", "")
	if v == "" {
		return nil
	}
	return parseFinite(v)
}
