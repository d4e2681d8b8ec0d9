package bronze

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/synaptica-ai/warehouse/pkg/common/logger"
)

// Kind is the declared type of a raw column.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindDate
	KindDateTime
)

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	case KindDateTime:
		return "datetime"
	default:
		return "str"
	}
}

// ParseValue converts one raw cell. Blank input yields (nil, nil); input
// that does not match the kind yields (nil, err). Values come back as
// int64, float64, bool, time.Time or string.
func ParseValue(raw string, kind Kind) (any, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	switch kind {
	case KindInt:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse int %q: %w", raw, err)
		}
		return n, nil
	case KindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("parse float %q: %w", raw, err)
		}
		return f, nil
	case KindBool:
		// only blank is null; anything unrecognised is false
		return strings.EqualFold(value, "1") || strings.EqualFold(value, "true"), nil
	case KindDate:
		t, err := time.Parse(DateLayout, value)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", raw, err)
		}
		return t, nil
	case KindDateTime:
		t, err := time.Parse(DateTimeLayout, value)
		if err != nil {
			return nil, fmt.Errorf("parse datetime %q: %w", raw, err)
		}
		return t, nil
	default:
		return value, nil
	}
}

// Parse is ParseValue with the failure downgraded to a warning.
func Parse(field, raw string, kind Kind) any {
	v, err := ParseValue(raw, kind)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{
			"field": field,
			"kind":  kind.String(),
			"value": raw,
		}).WithError(err).Warn("unparseable value set to null")
		return nil
	}
	return v
}
