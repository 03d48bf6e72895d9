package jsonutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPretty(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "simple object",
			input: `{"id":1}`,
			want:  "{\n  \"id\": 1\n}",
		},
		{
			name:  "not JSON returned unchanged",
			input: "plain text",
			want:  "plain text",
		},
		{
			name:  "nested JSON string expands",
			input: `{"text":"{\"a\":1}"}`,
			want:  "{\n  \"text\": {\n    \"a\": 1\n  }\n}",
		},
		{
			name:  "plain string values stay strings",
			input: `{"text":"olleh"}`,
			want:  "{\n  \"text\": \"olleh\"\n}",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Pretty(tt.input))
		})
	}
}

func TestLooksLikeJSON(t *testing.T) {
	assert.True(t, looksLikeJSON(`{"a":1}`))
	assert.True(t, looksLikeJSON(` [1,2] `))
	assert.False(t, looksLikeJSON("42"))
	assert.False(t, looksLikeJSON("hello"))
	assert.False(t, looksLikeJSON(""))
	assert.False(t, looksLikeJSON("{"))
}
