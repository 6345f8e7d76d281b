// Package phone provides phone number extraction and normalization for the
// countries the dialer operates in. This is part of the platform layer and
// contains no business logic.
package phone

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Supported country codes. Anything else yields an empty extraction result.
const (
	CountryColombia = "CO"
	CountryChile    = "CL"
	CountryMexico   = "MX"
)

// Stats describes what happened during an extraction pass.
type Stats struct {
	RawCount             int `json:"rawCount"`
	TokenCount           int `json:"tokenCount"`
	ValidCount           int `json:"validCount"`
	DuplicateCount       int `json:"duplicateCount"`
	DiscardedCount       int `json:"discardedCount"`
	PreferredMobileCount int `json:"preferredMobileCount"`
}

// Result is a ranked, deduplicated set of phone candidates.
// Candidates holds at most two numbers; Primary and Secondary mirror them.
type Result struct {
	Primary    string   `json:"primary"`
	Secondary  string   `json:"secondary"`
	Candidates []string `json:"candidates"`
	Stats      Stats    `json:"stats"`
}

// HasValidPhone reports whether extraction produced at least one usable number.
func (r Result) HasValidPhone() bool {
	return r.Primary != ""
}

// countryRules is one entry of the normalization decision table. The table is
// a fixed tagged dispatch keyed by country, extended by adding entries, not by
// generalizing the parser.
type countryRules struct {
	normalize func(digits string) (string, bool)
	mobile    *regexp.Regexp
}

// Calling codes come from the phonenumbers metadata so the table cannot drift
// from the real country assignments.
var (
	ccColombia = callingCode(CountryColombia) // 57
	ccChile    = callingCode(CountryChile)    // 56
	ccMexico   = callingCode(CountryMexico)   // 52
)

var rulesByCountry = map[string]countryRules{
	CountryColombia: {
		normalize: normalizeColombia,
		mobile:    regexp.MustCompile(`^\+` + ccColombia + `3\d{9}$`),
	},
	CountryChile: {
		normalize: normalizeChile,
		mobile:    regexp.MustCompile(`^\+` + ccChile + `9\d{8}$`),
	},
	CountryMexico: {
		normalize: normalizeMexico,
		mobile:    regexp.MustCompile(`^\+` + ccMexico + `\d{10}$`),
	},
}

func callingCode(region string) string {
	return strconv.Itoa(phonenumbers.GetCountryCodeForRegion(region))
}

// Colombian mobiles are ten digits starting with 3. Landlines have no entry in
// the table and are discarded.
func normalizeColombia(digits string) (string, bool) {
	switch {
	case len(digits) == 10 && digits[0] == '3':
		return "+" + ccColombia + digits, true
	case len(digits) == 12 && strings.HasPrefix(digits, ccColombia) && digits[2] == '3':
		return "+" + digits, true
	}
	return normalizeNANP(digits)
}

// Chilean numbers: nine national digits (mobiles start with 9), or the full
// eleven-digit form with the country prefix.
func normalizeChile(digits string) (string, bool) {
	switch {
	case len(digits) == 9:
		return "+" + ccChile + digits, true
	case len(digits) == 11 && strings.HasPrefix(digits, ccChile):
		return "+" + digits, true
	}
	return normalizeNANP(digits)
}

// Mexican numbers are ten national digits; the legacy mobile form carries an
// extra 1 after the country code.
func normalizeMexico(digits string) (string, bool) {
	switch {
	case len(digits) == 10:
		return "+" + ccMexico + digits, true
	case len(digits) == 12 && strings.HasPrefix(digits, ccMexico):
		return "+" + digits, true
	case len(digits) == 13 && strings.HasPrefix(digits, ccMexico+"1"):
		return "+" + ccMexico + digits[3:], true
	}
	return normalizeNANP(digits)
}

// normalizeNANP accepts eleven-digit numbers starting with 1, regardless of
// the requested country. CRM records occasionally carry US contact numbers.
func normalizeNANP(digits string) (string, bool) {
	if len(digits) == 11 && digits[0] == '1' {
		return "+" + digits, true
	}
	return "", false
}

var (
	// A candidate token: a digit run tolerating common separators, with an
	// optional extension suffix captured so it can be stripped afterwards.
	tokenPattern = regexp.MustCompile(`(?i)\+?\d(?:[\d\s./()\-]*\d)?(?:\s*(?:ext\.?|x|#)\s*\d+)?`)

	extensionSuffix = regexp.MustCompile(`(?i)\s*(?:ext\.?|x|#)\s*\d+\s*$`)

	nonDigit = regexp.MustCompile(`\D`)

	fieldSplitter = regexp.MustCompile(`[,;|\n]`)
)

// Extract turns raw contact fields into ranked, deduplicated, normalized
// phone candidates for the given country. An unknown country yields an empty
// result without attempting extraction. The result is the sole gate for a
// deal's has_valid_phone flag.
func Extract(rawFields []string, country string) Result {
	rules, ok := rulesByCountry[strings.ToUpper(strings.TrimSpace(country))]
	if !ok {
		return Result{Candidates: []string{}}
	}

	var result Result
	result.Candidates = []string{}

	var normalized []string
	seen := make(map[string]bool)

	for _, field := range rawFields {
		if strings.TrimSpace(field) == "" {
			continue
		}
		result.Stats.RawCount++

		for _, chunk := range fieldSplitter.Split(field, -1) {
			for _, token := range tokenPattern.FindAllString(chunk, -1) {
				if digitCount(token) < 7 {
					continue
				}
				result.Stats.TokenCount++

				token = extensionSuffix.ReplaceAllString(token, "")
				digits, _ := clean(token)

				number, ok := rules.normalize(digits)
				if !ok {
					result.Stats.DiscardedCount++
					continue
				}
				result.Stats.ValidCount++

				if seen[number] {
					result.Stats.DuplicateCount++
					continue
				}
				seen[number] = true
				normalized = append(normalized, number)
			}
		}
	}

	ranked := rank(normalized, rules.mobile)
	for _, number := range ranked {
		if rules.mobile.MatchString(number) {
			result.Stats.PreferredMobileCount++
		}
	}

	if len(ranked) > 0 {
		result.Primary = ranked[0]
		result.Candidates = append(result.Candidates, ranked[0])
	}
	if len(ranked) > 1 && ranked[1] != result.Primary {
		result.Secondary = ranked[1]
		result.Candidates = append(result.Candidates, ranked[1])
	}

	return result
}

// clean removes everything but digits, converting an international 00 prefix
// to a plus and collapsing any interior plus signs.
func clean(token string) (digits string, plus bool) {
	trimmed := strings.TrimSpace(token)
	plus = strings.HasPrefix(trimmed, "+")
	digits = nonDigit.ReplaceAllString(trimmed, "")
	if strings.HasPrefix(digits, "00") {
		digits = digits[2:]
		plus = true
	}
	return digits, plus
}

// rank sorts preferred mobiles first, keeping first-occurrence order otherwise.
func rank(numbers []string, mobile *regexp.Regexp) []string {
	if len(numbers) < 2 {
		return numbers
	}
	ranked := make([]string, 0, len(numbers))
	for _, n := range numbers {
		if mobile.MatchString(n) {
			ranked = append(ranked, n)
		}
	}
	for _, n := range numbers {
		if !mobile.MatchString(n) {
			ranked = append(ranked, n)
		}
	}
	return ranked
}

func digitCount(s string) int {
	count := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			count++
		}
	}
	return count
}
