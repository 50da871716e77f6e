package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripMarkdownFence(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n[1,2]\n```", "[1,2]"},
		{"array before object", "前言 [{\"a\":1}] 後記", `[{"a":1}]`},
		{"object only", "回覆如下 {\"a\":1} 謝謝", `{"a":1}`},
		{"plain text", "沒有任何結構", "沒有任何結構"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripMarkdownFence(tc.in))
		})
	}
}

func TestParseJSONRejectsTrailingData(t *testing.T) {
	var v map[string]interface{}

	assert.Error(t, ParseJSON(`{"a":1} extra`, &v))
}

func TestParseJSONStrictUnknownField(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}

	assert.NoError(t, ParseJSON(`{"a":1,"b":2}`, &v))
	assert.Error(t, ParseJSONStrict(`{"a":1,"b":2}`, &v))
}

func TestQuoteJSONKeys(t *testing.T) {
	assert.Equal(t, `{"a": 1, "b": "x"}`, QuoteJSONKeys(`{a: 1, b: "x"}`))
	// 已加引號的鍵不受影響
	assert.Equal(t, `{"a": 1}`, QuoteJSONKeys(`{"a": 1}`))
}

func TestStringSliceToString(t *testing.T) {
	assert.Equal(t, "番茄、蛋", StringSliceToString([]string{"番茄", "蛋"}))
	assert.Equal(t, "", StringSliceToString(nil))
}

func TestToJSONRoundTrip(t *testing.T) {
	out, err := ToJSON(map[string]int{"a": 1})

	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out)
}
