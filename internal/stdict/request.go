// Package stdict validates, encodes and relays requests to the Standard Korean
// Dictionary open API (stdict.korean.go.kr).
package stdict

// Upstream endpoints
const (
	DefaultSearchURL = "https://stdict.korean.go.kr/api/search.do"
	DefaultViewURL   = "https://stdict.korean.go.kr/api/view.do"
)

// Response serialization selectors
const (
	ReqTypeXML  = "xml"
	ReqTypeJSON = "json"
)

// Detail lookup methods
const (
	DetailWordInfo   = "word_info"
	DetailTargetCode = "target_code"
)

// Documented numeric bounds
const (
	MinStart      = 1
	MaxStart      = 1000
	MinNum        = 10
	MaxNum        = 100
	MinTarget     = 1
	MaxTarget     = 11
	MaxPos        = 15
	MaxCat        = 67
	MaxMultimedia = 6
	MinLetter     = 1
)

var (
	reqTypes      = []string{ReqTypeXML, ReqTypeJSON}
	advancedFlags = []string{"y", "n"}
	searchMethods = []string{"exact", "include", "start", "end", "wildcard"}
	type1Values   = []string{"all", "word", "phrase", "idiom", "proverb"}
	type2Values   = []string{"all", "native", "chinese", "loanword", "hybrid"}
	detailMethods = []string{DetailWordInfo, DetailTargetCode}
)

const (
	keyLength    = 32
	updateLayout = "20060102"
)

// SearchRequest is a caller's search.do query. Nil pointers and empty strings
// mean "not supplied" and are replaced by the documented defaults.
type SearchRequest struct {
	Key      string
	Query    string
	ReqType  string
	Start    *int
	Num      *int
	Advanced string

	// Only sent when Advanced is "y".
	Target      *int
	Method      string
	Type1       []string
	Type2       []string
	Pos         []int
	Cat         []int
	Multimedia  []int
	LetterStart *int
	LetterEnd   *int
	UpdateStart string
	UpdateEnd   string
}

// SearchParams is a validated, fully defaulted SearchRequest.
type SearchParams struct {
	Key      string
	Query    string
	ReqType  string
	Start    int
	Num      int
	Advanced bool

	Target      int
	Method      string
	Type1       []string
	Type2       []string
	Pos         []int
	Cat         []int
	Multimedia  []int
	LetterStart int
	LetterEnd   int
	UpdateStart string
	UpdateEnd   string
}

// DetailRequest is a caller's view.do query.
type DetailRequest struct {
	Key     string
	Method  string
	ReqType string
	Query   string
}

// DetailParams is a validated, fully defaulted DetailRequest.
type DetailParams struct {
	Key     string
	Method  string
	ReqType string
	Query   string
}

// SearchMethods returns the allowed values of the search "method" field.
func SearchMethods() []string { return append([]string(nil), searchMethods...) }

// Type1Values returns the allowed members of "type1".
func Type1Values() []string { return append([]string(nil), type1Values...) }

// Type2Values returns the allowed members of "type2".
func Type2Values() []string { return append([]string(nil), type2Values...) }

// DetailMethods returns the allowed values of the detail "method" field.
func DetailMethods() []string { return append([]string(nil), detailMethods...) }

// ReqTypes returns the allowed values of "req_type".
func ReqTypes() []string { return append([]string(nil), reqTypes...) }

// IntPtr is a convenience for populating optional integer fields.
func IntPtr(v int) *int { return &v }
