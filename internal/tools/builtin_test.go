// ABOUTME: Tests for the validate, getNews and get_latest_news tools.
// ABOUTME: Checks identity disclosure rules, headline rendering and fetch failures.

package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/news-mcp/internal/auth"
	"github.com/2389/news-mcp/internal/news"
)

const testPhone = "919901470297"

type fakeProvider struct {
	result news.Result
	err    error
	filter []string
}

func (p *fakeProvider) Fetch(_ context.Context, filter []string) (news.Result, error) {
	p.filter = filter
	return p.result, p.err
}

func call(t *testing.T, tool *Tool, args string) *Result {
	t.Helper()
	var raw json.RawMessage
	if args != "" {
		raw = json.RawMessage(args)
	}
	res, err := tool.Handler(context.Background(), raw)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	assert.Equal(t, "text", res.Content[0].Type)
	return res
}

func TestValidateTool(t *testing.T) {
	tool := ValidateTool(auth.NewGate("s3cret"), testPhone)

	tests := []struct {
		name      string
		args      string
		wantError bool
		wantText  string
	}{
		{"correct token", `{"token":"s3cret"}`, false, `{"phone":"919901470297"}`},
		{"wrong token", `{"token":"wrong"}`, true, `{"error":"Invalid bearer token"}`},
		{"empty token", `{"token":""}`, true, `{"error":"Invalid bearer token"}`},
		{"missing token", `{}`, true, `{"error":"Invalid bearer token"}`},
		{"absent arguments", "", true, `{"error":"Invalid bearer token"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := call(t, tool, tt.args)
			assert.Equal(t, tt.wantError, res.IsError)
			assert.Equal(t, tt.wantText, res.Content[0].Text)
		})
	}
}

func TestValidateTool_UnconfiguredSecretNeverValidates(t *testing.T) {
	tool := ValidateTool(auth.NewGate(""), testPhone)

	res := call(t, tool, `{"token":""}`)
	assert.True(t, res.IsError)
	assert.NotContains(t, res.Content[0].Text, testPhone)
}

func TestValidateTool_NonObjectArguments(t *testing.T) {
	tool := ValidateTool(auth.NewGate("s3cret"), testPhone)

	res := call(t, tool, `"s3cret"`)
	assert.True(t, res.IsError)
	assert.NotContains(t, res.Content[0].Text, testPhone)
	assert.Contains(t, res.Content[0].Text, "Invalid arguments")
}

func TestNewsTool_IndentedEnvelope(t *testing.T) {
	provider := &fakeProvider{result: news.Result{
		{Source: "BBC", Headlines: []string{"b1"}},
		{Source: "CNN", Headlines: []string{}},
	}}
	tool := NewsTool(provider)

	res := call(t, tool, `{"sources":["BBC"]}`)

	assert.False(t, res.IsError)
	assert.Equal(t, "{\n  \"news\": {\n    \"BBC\": [\n      \"b1\"\n    ],\n    \"CNN\": []\n  }\n}", res.Content[0].Text)
	assert.Equal(t, []string{"BBC"}, provider.filter)
}

func TestNewsTool_FetchFailure(t *testing.T) {
	provider := &fakeProvider{err: context.DeadlineExceeded}
	tool := NewsTool(provider)

	res := call(t, tool, "")

	assert.True(t, res.IsError)
	assert.JSONEq(t, `{"error":"Failed to fetch news","details":"context deadline exceeded"}`, res.Content[0].Text)
}

func TestLatestNewsAlias_Digest(t *testing.T) {
	provider := &fakeProvider{result: news.Result{{Source: "BBC", Headlines: []string{"b1", "b2"}}}}
	tool := LatestNewsAlias(provider)

	res := call(t, tool, "null")

	assert.False(t, res.IsError)
	assert.Equal(t, "📰 **Latest News Headlines**\n\n**BBC:**\n1. b1\n2. b2\n\n", res.Content[0].Text)
}

func TestNewDefaultRegistry(t *testing.T) {
	r, err := NewDefaultRegistry(auth.NewGate("x"), testPhone, &fakeProvider{})
	require.NoError(t, err)

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, ValidateToolName, list[0].Name)
	assert.Equal(t, NewsToolName, list[1].Name)
	assert.Equal(t, []string{"token"}, list[0].InputSchema.Required)

	_, err = r.Get(LatestNewsAliasName)
	assert.NoError(t, err)
}

func TestDescriptor_JSONShape(t *testing.T) {
	data, err := json.Marshal(ValidateTool(auth.NewGate("x"), testPhone).Descriptor)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"name": "validate",
		"description": "Validate bearer token and return user phone number",
		"inputSchema": {
			"type": "object",
			"properties": {"token": {"type": "string", "description": "Bearer token to validate"}},
			"required": ["token"]
		}
	}`, string(data))
}
