package app

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/domain"
)

/********** fallback extraction (no model available) **********/

var (
	// "9/10", "9.2 / 10", "Scored 8.5"
	scoreSlashRe  = regexp.MustCompile(`\b(10(?:\.0)?|[0-9](?:\.[0-9])?)\s*/\s*10\b`)
	scoredWordRe  = regexp.MustCompile(`(?i)\bscored\s+(10(?:\.0)?|[0-9](?:\.[0-9])?)\b`)
	nameLineRe    = regexp.MustCompile(`^[\p{Lu}][\p{L}'.-]*(?:\s+[\p{L}'.-]+){0,3}$`)
	markupTrimRe  = regexp.MustCompile(`[#*_>\x60]+`)
	positivePrefs = []string{"liked:", "pros:", "positive:", "+ ", "👍"}
	negativePrefs = []string{"disliked:", "cons:", "negative:", "- ", "👎"}
)

// words that pass the name shape but never are reviewer names on listing pages
var nameStoplist = map[string]struct{}{
	"reviews": {}, "review": {}, "location": {}, "staff": {}, "facilities": {},
	"cleanliness": {}, "comfort": {}, "value": {}, "wifi": {}, "show": {},
	"show more": {}, "read more": {}, "helpful": {}, "exceptional": {},
	"wonderful": {}, "superb": {}, "very good": {}, "good": {}, "guest reviews": {},
}

// FallbackExtract is a deterministic best-effort pass over raw listing
// text, used when no completion provider is configured or its reply could
// not be parsed. Returning zero records is a valid outcome.
func FallbackExtract(raw string) []domain.Review {
	var out []domain.Review
	var cur *domain.Review

	// a name alone is noise; only emit records that carried some content
	flush := func() {
		if cur != nil && strings.TrimSpace(cur.ReviewerName) != "" &&
			(cur.Score != nil || cur.PositiveText != nil || cur.NegativeText != nil || cur.ReviewerCountry != nil) {
			out = append(out, *cur)
		}
		cur = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(markupTrimRe.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		low := strings.ToLower(line)

		// positive/negative sections attach to the record in progress
		if cur != nil {
			if txt, ok := stripAnyPrefix(line, low, positivePrefs); ok {
				cur.PositiveText = mergeText(cur.PositiveText, txt)
				continue
			}
			if txt, ok := stripAnyPrefix(line, low, negativePrefs); ok {
				cur.NegativeText = mergeText(cur.NegativeText, txt)
				continue
			}
		}

		if f := parseScore(line); f != nil && cur != nil && cur.Score == nil {
			cur.Score = f
			continue
		}

		// a short capitalized line starts a new record
		if looksLikeName(line, low) {
			flush()
			cur = &domain.Review{ReviewerName: line}
			continue
		}

		// "Name · Country" or "Name, Country"
		if name, country, ok := splitNameCountry(line); ok {
			flush()
			cur = &domain.Review{ReviewerName: name, ReviewerCountry: &country}
		}
	}
	flush()
	return out
}

func looksLikeName(line, low string) bool {
	if len(line) > 40 || strings.ContainsAny(line, "0123456789:/") {
		return false
	}
	if _, stop := nameStoplist[low]; stop {
		return false
	}
	return nameLineRe.MatchString(line)
}

func splitNameCountry(line string) (string, string, bool) {
	for _, sep := range []string{" · ", " | ", ", "} {
		parts := strings.SplitN(line, sep, 2)
		if len(parts) != 2 {
			continue
		}
		name, country := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if looksLikeName(name, strings.ToLower(name)) && len(country) <= 40 && !strings.ContainsAny(country, "0123456789") {
			return name, country, true
		}
	}
	return "", "", false
}

func parseScore(line string) *float64 {
	m := scoreSlashRe.FindStringSubmatch(line)
	if m == nil {
		m = scoredWordRe.FindStringSubmatch(line)
	}
	if m == nil {
		return nil
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil || f < 1 || f > 10 {
		return nil
	}
	return &f
}

func stripAnyPrefix(line, low string, prefixes []string) (string, bool) {
	for _, p := range prefixes {
		if strings.HasPrefix(low, p) {
			if txt := strings.TrimSpace(line[len(p):]); txt != "" {
				return txt, true
			}
		}
	}
	return "", false
}

func mergeText(existing *string, txt string) *string {
	if existing == nil || *existing == "" {
		return &txt
	}
	joined := *existing + " " + txt
	return &joined
}
