package dictionary

import (
	"stdict-mcp/internal/stdict"
	"stdict-mcp/internal/tools"
)

// Code tables from the search.do request documentation.
var (
	targetLabels = []string{
		"표제어", "원어", "어원", "발음", "활용", "문형", "문법", "뜻풀이", "용례", "용례 출전", "용례 번역",
	}
	posLabels = []string{
		"전체", "명사", "대명사", "수사", "조사", "동사", "형용사", "관형사", "부사", "감탄사",
		"접사", "의존 명사", "보조 동사", "보조 형용사", "어미", "품사 없음",
	}
	catLabels = []string{
		"전체", "언어", "문학", "역사", "철학", "교육", "민속", "인문 일반", "법률", "군사",
		"경영", "경제", "복지", "정치", "매체", "행정", "심리", "사회 일반", "지구", "지리",
		"해양", "천문", "환경", "생명", "동물", "식물", "천연자원", "수학", "물리", "화학",
		"자연 일반", "농업", "수산업", "임업", "광업", "공업", "서비스업", "산업 일반", "의학", "약학",
		"한의", "수의", "식품", "보건 일반", "건설", "교통", "기계", "전기·전자", "재료", "정보·통신",
		"공학 일반", "체육", "연기", "영상", "무용", "음악", "미술", "복식", "공예", "예체능 일반",
		"가톨릭", "기독교", "불교", "종교 일반", "인명", "지명", "책명", "고유명 일반",
	}
	multimediaLabels = []string{
		"전체", "사진", "삽화", "동영상", "애니메이션", "소리", "없음",
	}
)

func enumOf(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func keySchema() *tools.Schema {
	return &tools.Schema{
		Type:        "string",
		Description: "API key (32 hex characters). Defaults to the key configured on the server.",
		Pattern:     "^[0-9a-fA-F]{32}$",
	}
}

func reqTypeSchema() *tools.Schema {
	return &tools.Schema{
		Type:        "string",
		Description: "Response format returned by the dictionary API.",
		Enum:        enumOf(stdict.ReqTypes()),
		Default:     stdict.ReqTypeXML,
	}
}

func intSetSchema(description string, max int) *tools.Schema {
	return &tools.Schema{
		Type:        "array",
		Description: description + " Multiple values are sent comma-separated; a comma-separated string is also accepted.",
		Items:       &tools.Schema{Type: "integer", Minimum: tools.Bound(0), Maximum: tools.Bound(max)},
		Default:     []int{0},
		UniqueItems: true,
	}
}

func stringSetSchema(description string, values []string) *tools.Schema {
	return &tools.Schema{
		Type:        "array",
		Description: description + " Multiple values are sent comma-separated; a comma-separated string is also accepted.",
		Items:       &tools.Schema{Type: "string", Enum: enumOf(values)},
		Default:     []string{values[0]},
		UniqueItems: true,
	}
}

func searchSchema() tools.Schema {
	return tools.Schema{
		Type: "object",
		Properties: map[string]*tools.Schema{
			"key": keySchema(),
			"q": {
				Type:        "string",
				Description: "Search term (검색어).",
			},
			"req_type": reqTypeSchema(),
			"start": {
				Type:        "integer",
				Description: "Index of the first result (검색의 시작 번호).",
				Minimum:     tools.Bound(stdict.MinStart),
				Maximum:     tools.Bound(stdict.MaxStart),
				Default:     1,
			},
			"num": {
				Type:        "integer",
				Description: "Number of results (결과 출력 건수).",
				Minimum:     tools.Bound(stdict.MinNum),
				Maximum:     tools.Bound(stdict.MaxNum),
				Default:     10,
			},
			"advanced": {
				Type:        "string",
				Description: `Advanced search (자세히 찾기). The fields below are only sent when this is "y"; a boolean is also accepted.`,
				Enum:        []any{"y", "n"},
				Default:     "n",
			},
			"target": {
				Type:        "integer",
				Description: "Field to search (찾을 대상). " + describeCodes(targetLabels, 1),
				Minimum:     tools.Bound(stdict.MinTarget),
				Maximum:     tools.Bound(stdict.MaxTarget),
				Default:     1,
			},
			"method": {
				Type:        "string",
				Description: "Match mode (검색 방식): exact 일치, include 포함, start 시작, end 끝, wildcard 와일드카드.",
				Enum:        enumOf(stdict.SearchMethods()),
				Default:     "exact",
			},
			"type1":      stringSetSchema("Entry kind (구분 1): all 전체, word 어휘, phrase 구, idiom 관용구, proverb 속담.", stdict.Type1Values()),
			"type2":      stringSetSchema("Word origin (구분 2): all 전체, native 고유어, chinese 한자어, loanword 외래어, hybrid 혼종어.", stdict.Type2Values()),
			"pos":        intSetSchema("Part of speech (품사). "+describeCodes(posLabels, 0)+".", stdict.MaxPos),
			"cat":        intSetSchema("Subject field (전문 분야). "+describeCodes(catLabels, 0)+".", stdict.MaxCat),
			"multimedia": intSetSchema("Multimedia (멀티미디어). "+describeCodes(multimediaLabels, 0)+".", stdict.MaxMultimedia),
			"letter_s": {
				Type:        "integer",
				Description: "Minimum syllable count (음절 수 시작).",
				Minimum:     tools.Bound(stdict.MinLetter),
				Default:     1,
			},
			"letter_e": {
				Type:        "integer",
				Description: "Maximum syllable count (음절 수 끝).",
				Minimum:     tools.Bound(stdict.MinLetter),
				Default:     1,
			},
			"update_s": {
				Type:        "string",
				Description: "Revised on or after, yyyymmdd (고친 날짜 시작일).",
				Pattern:     `^\d{8}$`,
			},
			"update_e": {
				Type:        "string",
				Description: "Revised on or before, yyyymmdd (고친 날짜 종료일).",
				Pattern:     `^\d{8}$`,
			},
		},
		Required: []string{"q"},
	}
}

func detailSchema() tools.Schema {
	return tools.Schema{
		Type: "object",
		Properties: map[string]*tools.Schema{
			"key": keySchema(),
			"method": {
				Type:        "string",
				Description: "Lookup mode (검색 방식): word_info looks up a headword with its homograph number, target_code looks up an entry by its numeric target_code.",
				Enum:        enumOf(stdict.DetailMethods()),
				Default:     stdict.DetailWordInfo,
			},
			"req_type": reqTypeSchema(),
			"q": {
				Type:        "string",
				Description: "Headword or target_code (검색어).",
			},
		},
		Required: []string{"q"},
	}
}
