package stdict

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var keyPattern = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)

// ValidateSearch checks a search request against the search.do contract and
// fills in defaults. Advanced-group fields are validated even when Advanced is
// "n"; the encoder drops them in that case.
func ValidateSearch(req SearchRequest) (SearchParams, error) {
	var p SearchParams

	key, err := validateKey(req.Key)
	if err != nil {
		return p, err
	}
	query, err := validateQuery(req.Query)
	if err != nil {
		return p, err
	}
	p.Key, p.Query = key, query

	if p.ReqType, err = enumOrDefault("req_type", req.ReqType, ReqTypeXML, reqTypes); err != nil {
		return p, err
	}
	if p.Start, err = intOrDefault("start", req.Start, 1, MinStart, MaxStart); err != nil {
		return p, err
	}
	if p.Num, err = intOrDefault("num", req.Num, 10, MinNum, MaxNum); err != nil {
		return p, err
	}
	advanced, err := enumOrDefault("advanced", req.Advanced, "n", advancedFlags)
	if err != nil {
		return p, err
	}
	p.Advanced = advanced == "y"

	if p.Target, err = intOrDefault("target", req.Target, 1, MinTarget, MaxTarget); err != nil {
		return p, err
	}
	if p.Method, err = enumOrDefault("method", req.Method, "exact", searchMethods); err != nil {
		return p, err
	}
	if p.Type1, err = stringSet("type1", req.Type1, type1Values); err != nil {
		return p, err
	}
	if p.Type2, err = stringSet("type2", req.Type2, type2Values); err != nil {
		return p, err
	}
	if p.Pos, err = intSet("pos", req.Pos, MaxPos); err != nil {
		return p, err
	}
	if p.Cat, err = intSet("cat", req.Cat, MaxCat); err != nil {
		return p, err
	}
	if p.Multimedia, err = intSet("multimedia", req.Multimedia, MaxMultimedia); err != nil {
		return p, err
	}

	// letter_s/letter_e have no documented upper bound.
	if p.LetterStart, err = intOrDefault("letter_s", req.LetterStart, 1, MinLetter, 0); err != nil {
		return p, err
	}
	if p.LetterEnd, err = intOrDefault("letter_e", req.LetterEnd, 1, MinLetter, 0); err != nil {
		return p, err
	}
	// letter_e defaults to 1, so a raised letter_s needs an explicit letter_e.
	if p.LetterEnd < p.LetterStart {
		return p, newRangeError("letter_e", p.LetterEnd, fmt.Sprintf("must not be less than letter_s %d", p.LetterStart))
	}

	startDate, err := validateDate("update_s", req.UpdateStart)
	if err != nil {
		return p, err
	}
	endDate, err := validateDate("update_e", req.UpdateEnd)
	if err != nil {
		return p, err
	}
	if !startDate.IsZero() && !endDate.IsZero() && endDate.Before(startDate) {
		return p, &ValidationError{
			Field:  "update_e",
			Kind:   KindRange,
			Value:  strings.TrimSpace(req.UpdateEnd),
			Detail: "must not be before update_s",
		}
	}
	p.UpdateStart = strings.TrimSpace(req.UpdateStart)
	p.UpdateEnd = strings.TrimSpace(req.UpdateEnd)

	return p, nil
}

// ValidateDetail checks a detail request against the view.do contract and
// fills in defaults.
func ValidateDetail(req DetailRequest) (DetailParams, error) {
	var p DetailParams

	key, err := validateKey(req.Key)
	if err != nil {
		return p, err
	}
	query, err := validateQuery(req.Query)
	if err != nil {
		return p, err
	}
	p.Key, p.Query = key, query

	if p.Method, err = enumOrDefault("method", req.Method, DetailWordInfo, detailMethods); err != nil {
		return p, err
	}
	if p.ReqType, err = enumOrDefault("req_type", req.ReqType, ReqTypeXML, reqTypes); err != nil {
		return p, err
	}
	if p.Method == DetailTargetCode {
		if _, err := strconv.ParseUint(p.Query, 10, 64); err != nil {
			return p, newFormatError("q", p.Query, "target_code lookups take a numeric code")
		}
	}

	return p, nil
}

// ValidKey reports whether key looks like an issued API key (32 hex digits).
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

func validateKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", newMissingError("key")
	}
	if !ValidKey(key) {
		// The value is a credential; do not echo it back.
		return "", newFormatError("key", "", fmt.Sprintf("expected %d hexadecimal characters", keyLength))
	}
	return key, nil
}

func validateQuery(q string) (string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", newMissingError("q")
	}
	return q, nil
}

func enumOrDefault(field, value, def string, allowed []string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return def, nil
	}
	for _, a := range allowed {
		if value == a {
			return value, nil
		}
	}
	return "", newEnumError(field, value, allowed)
}

// intOrDefault checks min <= v <= max; max <= 0 means unbounded.
func intOrDefault(field string, value *int, def, min, max int) (int, error) {
	if value == nil {
		return def, nil
	}
	v := *value
	if v < min || (max > 0 && v > max) {
		return 0, newRangeError(field, v, boundsDetail(min, max))
	}
	return v, nil
}

func stringSet(field string, values, allowed []string) ([]string, error) {
	if len(values) == 0 {
		return []string{allowed[0]}, nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, raw := range values {
		v := strings.TrimSpace(raw)
		ok := false
		for _, a := range allowed {
			if v == a {
				ok = true
				break
			}
		}
		if !ok {
			return nil, newEnumError(field, v, allowed)
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out, nil
}

func intSet(field string, values []int, max int) ([]int, error) {
	if len(values) == 0 {
		return []int{0}, nil
	}
	out := make([]int, 0, len(values))
	seen := make(map[int]bool, len(values))
	for _, v := range values {
		if v < 0 || v > max {
			return nil, newRangeError(field, v, boundsDetail(0, max))
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out, nil
}

func validateDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if len(value) != len(updateLayout) {
		return time.Time{}, newFormatError(field, value, "expected yyyymmdd")
	}
	t, err := time.Parse(updateLayout, value)
	if err != nil {
		return time.Time{}, newFormatError(field, value, "expected yyyymmdd")
	}
	return t, nil
}

func boundsDetail(min, max int) string {
	if max <= 0 {
		return fmt.Sprintf("must be at least %d", min)
	}
	return fmt.Sprintf("must be between %d and %d", min, max)
}
