// ABOUTME: The news-mcp tool set: validate, getNews and the get_latest_news alias
// ABOUTME: Handlers call through the auth gate and the headline aggregator

package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/2389/news-mcp/internal/auth"
	"github.com/2389/news-mcp/internal/news"
)

// Tool names.
const (
	ValidateToolName    = "validate"
	NewsToolName        = "getNews"
	LatestNewsAliasName = "get_latest_news"
)

const (
	invalidTokenMessage   = "Invalid bearer token"
	fetchFailedMessage    = "Failed to fetch news"
	invalidArgumentsError = "Invalid arguments"
)

// HeadlineProvider fetches headlines for an optional advisory source filter.
type HeadlineProvider interface {
	Fetch(ctx context.Context, filter []string) (news.Result, error)
}

// IdentityPayload is disclosed by validate on success.
type IdentityPayload struct {
	Phone string `json:"phone"`
}

type validateArgs struct {
	Token string `json:"token"`
}

type newsArgs struct {
	Sources []string `json:"sources"`
}

var sourcesSchema = &jsonschema.Schema{
	Type:        "array",
	Items:       &jsonschema.Schema{Type: "string"},
	Description: "Optional array of news sources to fetch from",
}

// ValidateTool returns the validate tool. A token accepted by gate yields
// {"phone": phone}; anything else yields an isError result.
func ValidateTool(gate auth.TokenValidator, phone string) *Tool {
	return &Tool{
		Descriptor: Descriptor{
			Name:        ValidateToolName,
			Description: "Validate bearer token and return user phone number",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"token": {Type: "string", Description: "Bearer token to validate"},
				},
				Required: []string{"token"},
			},
		},
		Handler: func(_ context.Context, raw json.RawMessage) (*Result, error) {
			var args validateArgs
			if err := DecodeArguments(raw, &args); err != nil {
				return ErrorResult(invalidArgumentsError, err.Error()), nil
			}
			if !gate.Validate(args.Token) {
				return ErrorResult(invalidTokenMessage, ""), nil
			}
			return JSONResult(IdentityPayload{Phone: phone})
		},
	}
}

// NewsTool returns the getNews tool. The result text is the {"news": ...}
// document indented with two spaces.
func NewsTool(provider HeadlineProvider) *Tool {
	return &Tool{
		Descriptor: Descriptor{
			Name:        NewsToolName,
			Description: "Fetch top 5 headlines from major news sources",
			InputSchema: &jsonschema.Schema{
				Type:       "object",
				Properties: map[string]*jsonschema.Schema{"sources": sourcesSchema},
			},
		},
		Handler: newsHandler(provider, func(r news.Result) (string, error) {
			data, err := json.MarshalIndent(news.Envelope{News: r}, "", "  ")
			if err != nil {
				return "", fmt.Errorf("encoding headlines: %w", err)
			}
			return string(data), nil
		}),
	}
}

// LatestNewsAlias returns get_latest_news, which renders the same headlines
// as a markdown digest. It is registered as an unlisted alias.
func LatestNewsAlias(provider HeadlineProvider) *Tool {
	return &Tool{
		Descriptor: Descriptor{
			Name:        LatestNewsAliasName,
			Description: "Fetch latest news headlines from major sources",
			InputSchema: &jsonschema.Schema{
				Type:       "object",
				Properties: map[string]*jsonschema.Schema{"sources": sourcesSchema},
			},
		},
		Handler: newsHandler(provider, func(r news.Result) (string, error) {
			return news.FormatDigest(r), nil
		}),
	}
}

func newsHandler(provider HeadlineProvider, render func(news.Result) (string, error)) Handler {
	return func(ctx context.Context, raw json.RawMessage) (*Result, error) {
		var args newsArgs
		if err := DecodeArguments(raw, &args); err != nil {
			return ErrorResult(invalidArgumentsError, err.Error()), nil
		}

		result, err := provider.Fetch(ctx, args.Sources)
		if err != nil {
			return ErrorResult(fetchFailedMessage, err.Error()), nil
		}

		text, err := render(result)
		if err != nil {
			return nil, err
		}
		return TextResult(text), nil
	}
}

// NewDefaultRegistry builds the registry served by news-mcp: validate and
// getNews listed, get_latest_news as an alias.
func NewDefaultRegistry(gate auth.TokenValidator, phone string, provider HeadlineProvider) (*Registry, error) {
	return NewRegistry(
		[]*Tool{ValidateTool(gate, phone), NewsTool(provider)},
		LatestNewsAlias(provider),
	)
}
