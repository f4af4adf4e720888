package dictionary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"stdict-mcp/internal/stdict"
)

// searchArgs mirrors the search tool's input. Fields that clients commonly
// send in more than one JSON shape are kept raw and converted per field.
type searchArgs struct {
	Key         *string         `json:"key"`
	Q           string          `json:"q"`
	Query       string          `json:"query"`
	ReqType     string          `json:"req_type"`
	Start       json.RawMessage `json:"start"`
	Num         json.RawMessage `json:"num"`
	Advanced    json.RawMessage `json:"advanced"`
	Target      json.RawMessage `json:"target"`
	Method      string          `json:"method"`
	Type1       json.RawMessage `json:"type1"`
	Type2       json.RawMessage `json:"type2"`
	Pos         json.RawMessage `json:"pos"`
	Cat         json.RawMessage `json:"cat"`
	Multimedia  json.RawMessage `json:"multimedia"`
	LetterStart json.RawMessage `json:"letter_s"`
	LetterEnd   json.RawMessage `json:"letter_e"`
	UpdateStart json.RawMessage `json:"update_s"`
	UpdateEnd   json.RawMessage `json:"update_e"`
}

type detailArgs struct {
	Key     *string `json:"key"`
	Q       string  `json:"q"`
	Query   string  `json:"query"`
	Method  string  `json:"method"`
	ReqType string  `json:"req_type"`
}

// decodeArgs treats empty input and JSON null as an empty object.
func decodeArgs(raw json.RawMessage, v any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = []byte("{}")
	}
	return json.Unmarshal(raw, v)
}

// toRequest converts bound arguments into a SearchRequest. Conversion
// failures are reported as validation errors naming the field.
func (a searchArgs) toRequest(defaultKey string) (stdict.SearchRequest, error) {
	req := stdict.SearchRequest{
		Key:     resolveKey(a.Key, defaultKey),
		Query:   firstNonEmpty(a.Q, a.Query),
		ReqType: a.ReqType,
		Method:  a.Method,
	}

	var err error
	if req.Start, err = optionalInt("start", a.Start); err != nil {
		return req, err
	}
	if req.Num, err = optionalInt("num", a.Num); err != nil {
		return req, err
	}
	if req.Advanced, err = yesNo("advanced", a.Advanced); err != nil {
		return req, err
	}
	if req.Target, err = optionalInt("target", a.Target); err != nil {
		return req, err
	}
	if req.Type1, err = stringList("type1", a.Type1); err != nil {
		return req, err
	}
	if req.Type2, err = stringList("type2", a.Type2); err != nil {
		return req, err
	}
	if req.Pos, err = intList("pos", a.Pos); err != nil {
		return req, err
	}
	if req.Cat, err = intList("cat", a.Cat); err != nil {
		return req, err
	}
	if req.Multimedia, err = intList("multimedia", a.Multimedia); err != nil {
		return req, err
	}
	if req.LetterStart, err = optionalInt("letter_s", a.LetterStart); err != nil {
		return req, err
	}
	if req.LetterEnd, err = optionalInt("letter_e", a.LetterEnd); err != nil {
		return req, err
	}
	if req.UpdateStart, err = dateString("update_s", a.UpdateStart); err != nil {
		return req, err
	}
	if req.UpdateEnd, err = dateString("update_e", a.UpdateEnd); err != nil {
		return req, err
	}
	return req, nil
}

func (a detailArgs) toRequest(defaultKey string) stdict.DetailRequest {
	return stdict.DetailRequest{
		Key:     resolveKey(a.Key, defaultKey),
		Method:  a.Method,
		ReqType: a.ReqType,
		Query:   firstNonEmpty(a.Q, a.Query),
	}
}

// resolveKey uses the configured key unless the caller supplied one. An
// explicit empty key is kept so that validation rejects it.
func resolveKey(supplied *string, defaultKey string) string {
	if supplied == nil {
		return defaultKey
	}
	return *supplied
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func isAbsent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func formatError(field, value, detail string) error {
	return &stdict.ValidationError{Field: field, Kind: stdict.KindFormat, Value: value, Detail: detail}
}

// optionalInt accepts 10 or "10".
func optionalInt(field string, raw json.RawMessage) (*int, error) {
	if isAbsent(raw) {
		return nil, nil
	}
	v, err := parseInt(field, raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseInt(field string, raw json.RawMessage) (int, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return atoi(field, s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, formatError(field, string(raw), "expected an integer")
	}
	return atoi(field, n.String())
}

func atoi(field, s string) (int, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, formatError(field, s, "expected an integer")
	}
	return v, nil
}

// yesNo accepts "y"/"n" or a JSON boolean. Other strings are passed through
// for the enumeration check.
func yesNo(field string, raw json.RawMessage) (string, error) {
	if isAbsent(raw) {
		return "", nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		if b {
			return "y", nil
		}
		return "n", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", formatError(field, string(raw), `expected "y", "n" or a boolean`)
	}
	return s, nil
}

// stringList accepts ["word","idiom"] or "word,idiom".
func stringList(field string, raw json.RawMessage) ([]string, error) {
	if isAbsent(raw) {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, formatError(field, string(raw), "expected a list of strings or a comma-separated string")
	}
	return splitList(s), nil
}

// intList accepts [1,2], ["1","2"], "1,2" or a single 1.
func intList(field string, raw json.RawMessage) ([]int, error) {
	if isAbsent(raw) {
		return nil, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		out := make([]int, 0, len(items))
		for _, item := range items {
			v, err := parseInt(field, item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		parts := splitList(s)
		out := make([]int, 0, len(parts))
		for _, p := range parts {
			v, err := atoi(field, p)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}

	v, err := parseInt(field, raw)
	if err != nil {
		return nil, formatError(field, string(raw), "expected a list of integers or a comma-separated string")
	}
	return []int{v}, nil
}

// dateString accepts 20240101 or "20240101".
func dateString(field string, raw json.RawMessage) (string, error) {
	if isAbsent(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", formatError(field, string(raw), "expected yyyymmdd")
	}
	return n.String(), nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// describeCodes renders "1: 명사, 2: 대명사, ..." for schema descriptions,
// numbering labels from first.
func describeCodes(labels []string, first int) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = fmt.Sprintf("%d: %s", first+i, l)
	}
	return strings.Join(parts, ", ")
}
