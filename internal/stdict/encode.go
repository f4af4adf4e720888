package stdict

import (
	"net/url"
	"strconv"
	"strings"
)

// queryBuilder writes name=value pairs in insertion order. url.Values.Encode
// sorts keys and escapes commas, neither of which matches the documented
// request layout.
type queryBuilder struct {
	b strings.Builder
}

func (q *queryBuilder) add(name, value string) {
	if q.b.Len() > 0 {
		q.b.WriteByte('&')
	}
	q.b.WriteString(url.QueryEscape(name))
	q.b.WriteByte('=')
	q.b.WriteString(url.QueryEscape(value))
}

func (q *queryBuilder) addInt(name string, value int) {
	q.add(name, strconv.Itoa(value))
}

// addList escapes each member and joins them with a literal comma.
func (q *queryBuilder) addList(name string, values []string) {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = url.QueryEscape(v)
	}
	if q.b.Len() > 0 {
		q.b.WriteByte('&')
	}
	q.b.WriteString(url.QueryEscape(name))
	q.b.WriteByte('=')
	q.b.WriteString(strings.Join(escaped, ","))
}

func (q *queryBuilder) addIntList(name string, values []int) {
	q.addList(name, intsToStrings(values))
}

func (q *queryBuilder) String() string {
	return q.b.String()
}

// Encode renders the parameters as a search.do query string. Advanced-group
// fields are omitted unless Advanced is set.
func (p SearchParams) Encode() string {
	var q queryBuilder
	q.add("key", p.Key)
	q.add("q", p.Query)
	q.add("req_type", p.ReqType)
	q.addInt("start", p.Start)
	q.addInt("num", p.Num)
	if !p.Advanced {
		q.add("advanced", "n")
		return q.String()
	}

	q.add("advanced", "y")
	q.addInt("target", p.Target)
	q.add("method", p.Method)
	q.addList("type1", p.Type1)
	q.addList("type2", p.Type2)
	q.addIntList("pos", p.Pos)
	q.addIntList("cat", p.Cat)
	q.addIntList("multimedia", p.Multimedia)
	q.addInt("letter_s", p.LetterStart)
	q.addInt("letter_e", p.LetterEnd)
	if p.UpdateStart != "" {
		q.add("update_s", p.UpdateStart)
	}
	if p.UpdateEnd != "" {
		q.add("update_e", p.UpdateEnd)
	}
	return q.String()
}

// Values returns the encoded parameters as url.Values.
func (p SearchParams) Values() url.Values {
	v, _ := url.ParseQuery(p.Encode())
	return v
}

// Encode renders the parameters as a view.do query string.
func (p DetailParams) Encode() string {
	var q queryBuilder
	q.add("key", p.Key)
	q.add("method", p.Method)
	q.add("req_type", p.ReqType)
	q.add("q", p.Query)
	return q.String()
}

// Values returns the encoded parameters as url.Values.
func (p DetailParams) Values() url.Values {
	v, _ := url.ParseQuery(p.Encode())
	return v
}

func intsToStrings(values []int) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strconv.Itoa(v)
	}
	return out
}
