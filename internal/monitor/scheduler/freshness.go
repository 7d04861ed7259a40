package scheduler

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// relativeUnits maps relative-date units to their span. Months and years are
// coarse on purpose; the threshold comparison only needs to order items.
var relativeUnits = map[string]time.Duration{
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
	"week":   7 * 24 * time.Hour,
	"month":  30 * 24 * time.Hour,
	"year":   365 * 24 * time.Hour,
}

var relativePattern = regexp.MustCompile(`(?i)^(\d+)\s+(minute|hour|day|week|month|year)s?\s+ago$`)

// absoluteLayouts covers the date shapes the search engines emit.
var absoluteLayouts = []string{
	time.RFC3339,
	"Jan 2, 2006 03:04 PM",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// parseItemTime parses an item's date token, absolute or relative ("3 hours
// ago"), anchored to now. ok is false when the token has no recognizable
// shape; such items stay eligible for surfacing.
func parseItemTime(token string, now time.Time) (time.Time, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return time.Time{}, false
	}

	if m := relativePattern.FindStringSubmatch(token); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, false
		}
		unit := relativeUnits[strings.ToLower(m[2])]
		return now.Add(-time.Duration(n) * unit), true
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, token); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

const fingerprintLen = 40

// fingerprint digests an item's identifying fields into the dedup key. It is
// intentionally lossy: case and surrounding whitespace are dropped so the
// same underlying item fingerprints identically across repeated fetches.
func fingerprint(engine, link, title, dateToken string) string {
	normalize := func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	}
	h := sha256.Sum256([]byte(normalize(engine) + "|" + normalize(link) + "|" + normalize(title) + "|" + normalize(dateToken)))
	return hex.EncodeToString(h[:])[:fingerprintLen]
}
