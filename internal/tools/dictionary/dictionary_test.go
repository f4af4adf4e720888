package dictionary

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"testing"

	"stdict-mcp/internal/stdict"
	"stdict-mcp/internal/tools"
)

const configuredKey = "0123456789abcdef0123456789abcdef"

type fakeDictionary struct {
	search stdict.SearchRequest
	detail stdict.DetailRequest
	body   []byte
}

func (f *fakeDictionary) Search(ctx context.Context, req stdict.SearchRequest) ([]byte, error) {
	f.search = req
	return f.body, nil
}

func (f *fakeDictionary) Detail(ctx context.Context, req stdict.DetailRequest) ([]byte, error) {
	f.detail = req
	return f.body, nil
}

func TestSearchTool_InjectsConfiguredKey(t *testing.T) {
	fake := &fakeDictionary{body: []byte("<channel/>")}
	tool := NewSearchTool(fake, configuredKey)

	out, err := tool.Call(context.Background(), json.RawMessage(`{"q":"사랑"}`))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(out) != "<channel/>" {
		t.Errorf("Expected body passthrough, got %s", out)
	}
	if fake.search.Key != configuredKey {
		t.Errorf("Expected configured key, got %q", fake.search.Key)
	}
	if fake.search.Query != "사랑" {
		t.Errorf("Expected query 사랑, got %q", fake.search.Query)
	}
}

func TestSearchTool_ExplicitEmptyKeyIsKept(t *testing.T) {
	fake := &fakeDictionary{}
	tool := NewSearchTool(fake, configuredKey)

	if _, err := tool.Call(context.Background(), json.RawMessage(`{"key":"","q":"테스트"}`)); err != nil {
		t.Fatalf("Expected no error from fake, got %v", err)
	}
	if fake.search.Key != "" {
		t.Errorf("Expected explicit empty key to be forwarded, got %q", fake.search.Key)
	}
}

func TestSearchTool_FlexibleArgumentShapes(t *testing.T) {
	tests := []struct {
		name string
		args string
		want stdict.SearchRequest
	}{
		{
			name: "arrays and booleans",
			args: `{"q":"나무","advanced":true,"pos":[1,2],"type1":["word","idiom"],"start":"11","update_s":20240101}`,
			want: stdict.SearchRequest{
				Key: configuredKey, Query: "나무", Advanced: "y", Pos: []int{1, 2},
				Type1: []string{"word", "idiom"}, Start: stdict.IntPtr(11), UpdateStart: "20240101",
			},
		},
		{
			name: "comma separated strings",
			args: `{"query":"나무","advanced":"y","cat":"3, 1","multimedia":5,"type2":"native,chinese"}`,
			want: stdict.SearchRequest{
				Key: configuredKey, Query: "나무", Advanced: "y", Cat: []int{3, 1},
				Multimedia: []int{5}, Type2: []string{"native", "chinese"},
			},
		},
		{
			name: "false advanced",
			args: `{"q":"나무","advanced":false,"target":5}`,
			want: stdict.SearchRequest{Key: configuredKey, Query: "나무", Advanced: "n", Target: stdict.IntPtr(5)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeDictionary{}
			tool := NewSearchTool(fake, configuredKey)
			if _, err := tool.Call(context.Background(), json.RawMessage(tt.args)); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if !reflect.DeepEqual(fake.search, tt.want) {
				t.Errorf("Expected %+v, got %+v", tt.want, fake.search)
			}
		})
	}
}

func TestSearchTool_BadArgumentShapes(t *testing.T) {
	tests := []struct {
		name  string
		args  string
		field string
	}{
		{"fractional start", `{"q":"나무","start":1.5}`, "start"},
		{"word in pos", `{"q":"나무","pos":"1,noun"}`, "pos"},
		{"object advanced", `{"q":"나무","advanced":{}}`, "advanced"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := NewSearchTool(&fakeDictionary{}, configuredKey)
			_, err := tool.Call(context.Background(), json.RawMessage(tt.args))
			var verr *stdict.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, verr.Field)
			}
		})
	}
}

func TestSearchTool_UndecodableArguments(t *testing.T) {
	tool := NewSearchTool(&fakeDictionary{}, configuredKey)
	_, err := tool.Call(context.Background(), json.RawMessage(`{"q":123}`))

	var toolErr *tools.Error
	if !errors.As(err, &toolErr) {
		t.Fatalf("Expected tools.Error, got %v", err)
	}
	if toolErr.Code != tools.ErrInvalidArguments {
		t.Errorf("Expected %s, got %s", tools.ErrInvalidArguments, toolErr.Code)
	}
}

func TestDetailTool(t *testing.T) {
	fake := &fakeDictionary{body: []byte(`{"channel":{}}`)}
	tool := NewDetailTool(fake, configuredKey)

	out, err := tool.Call(context.Background(), json.RawMessage(`{"method":"target_code","req_type":"json","q":"123456"}`))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(out) != `{"channel":{}}` {
		t.Errorf("Unexpected body %s", out)
	}
	want := stdict.DetailRequest{Key: configuredKey, Method: "target_code", ReqType: "json", Query: "123456"}
	if fake.detail != want {
		t.Errorf("Expected %+v, got %+v", want, fake.detail)
	}
}

func TestDefinitions(t *testing.T) {
	registry := tools.NewRegistry()
	Register(registry, &fakeDictionary{}, configuredKey)

	defs := registry.Definitions()
	if len(defs) != 2 {
		t.Fatalf("Expected 2 definitions, got %d", len(defs))
	}
	if defs[0].Name != DetailToolName || defs[1].Name != SearchToolName {
		t.Errorf("Expected sorted [detail search], got [%s %s]", defs[0].Name, defs[1].Name)
	}

	search := defs[1]
	if !reflect.DeepEqual(search.InputSchema.Required, []string{"q"}) {
		t.Errorf("Expected q to be required, got %v", search.InputSchema.Required)
	}
	method := search.InputSchema.Properties["method"]
	if method == nil || len(method.Enum) != 5 {
		t.Errorf("Expected five search methods in schema, got %+v", method)
	}
	if search.Annotations == nil || !search.Annotations.ReadOnlyHint || !search.Annotations.OpenWorldHint {
		t.Error("Expected read-only open-world annotations")
	}

	if _, err := json.Marshal(defs); err != nil {
		t.Errorf("Definitions must marshal: %v", err)
	}
}

func TestSearchTool_EndToEnd(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Write([]byte("<channel><total>0</total></channel>"))
	}))
	defer srv.Close()

	cfg := stdict.DefaultClientConfig()
	cfg.SearchURL = srv.URL + "/api/search.do"
	cfg.ViewURL = srv.URL + "/api/view.do"
	client, err := stdict.NewClient(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	tool := NewSearchTool(client, configuredKey)
	if _, err := tool.Call(context.Background(), json.RawMessage(`{"q":"사랑","advanced":"n","target":5}`)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if got.Get("key") != configuredKey || got.Get("q") != "사랑" {
		t.Errorf("Unexpected key/q: %v", got)
	}
	if got.Has("target") {
		t.Errorf("Expected target to be omitted when advanced=n, got %v", got)
	}
}
