// Package sanitizer narrows raw model output to values that are safe to
// persist. It never fails: a bad field becomes null or a default.
package sanitizer

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"github.com/BerylCAtieno/docvault-api/internal/models"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

var canonicalTypes = map[string]string{
	"invoice":  models.TypeInvoice,
	"receipt":  models.TypeReceipt,
	"contract": models.TypeContract,
	"other":    models.TypeOther,
}

// Sanitize returns a cleaned copy of r.
func Sanitize(r models.ExtractionResult) models.ExtractionResult {
	out := models.ExtractionResult{
		Type:       NormalizeType(r.Type),
		Confidence: clampConfidence(r.Confidence),
	}

	if r.Vendor != nil {
		if v := NormalizeVendor(*r.Vendor); v != "" {
			out.Vendor = &v
		}
	}
	if r.Date != nil {
		if d := strings.TrimSpace(*r.Date); ValidDate(d) {
			out.Date = &d
		}
	}
	if r.Amount != nil {
		if a, ok := NormalizeAmount(*r.Amount); ok {
			out.Amount = &a
		}
	}

	return out
}

// Usable reports whether a sanitized result carries anything worth saving.
// A result without vendor, date and amount is treated as a failed extraction.
func Usable(r models.ExtractionResult) bool {
	return r.Vendor != nil || r.Date != nil || r.Amount != nil
}

// NormalizeAmount keeps digits and separators, resolves which separator is
// the decimal one and returns the amount with a dot decimal separator.
// ok is false when nothing parses as a non-negative number.
func NormalizeAmount(raw string) (string, bool) {
	if negative(raw) {
		return "", false
	}

	s := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			return r
		}
		return -1
	}, raw)
	if s == "" {
		return "", false
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		// Both present: the rightmost one separates decimals.
		sep := lastDot
		if lastComma > lastDot {
			sep = lastComma
		}
		s = onlyDigits(s[:sep]) + "." + onlyDigits(s[sep+1:])
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 || len(s)-lastComma-1 == 3 {
			s = onlyDigits(s)
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 {
			s = onlyDigits(s)
		}
	}

	s = strings.TrimSuffix(s, ".")
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	if s == "" {
		return "", false
	}

	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return "", false
	}

	return s, true
}

// negative reports a minus sign ahead of the first digit.
func negative(raw string) bool {
	first := strings.IndexFunc(raw, func(r rune) bool { return r >= '0' && r <= '9' })
	if first < 0 {
		return false
	}
	return strings.ContainsAny(raw[:first], "-\u2212")
}

// ValidDate reports whether s is a real calendar date in YYYY-MM-DD form.
func ValidDate(s string) bool {
	if !datePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse(models.DateLayout, s)
	return err == nil
}

// NormalizeType maps s onto one of the four canonical types.
func NormalizeType(s string) string {
	if t, ok := canonicalTypes[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t
	}
	return models.TypeOther
}

// NormalizeVendor composes Unicode, collapses whitespace and trims.
func NormalizeVendor(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

func clampConfidence(c float64) float64 {
	switch {
	case math.IsNaN(c) || c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}

func onlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
