// ABOUTME: Tool call result envelope with text content blocks
// ABOUTME: Application failures set isError instead of surfacing protocol errors

package tools

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidArguments indicates the call's arguments were not a JSON object
// of the expected shape.
var ErrInvalidArguments = errors.New("invalid arguments")

// Content is one block of a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result is the result of a tools/call.
type Result struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// TextResult returns a successful result with a single text block.
func TextResult(text string) *Result {
	return &Result{Content: []Content{{Type: "text", Text: text}}}
}

// JSONResult returns a successful result whose text is the compact JSON of v.
func JSONResult(v any) (*Result, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding tool result: %w", err)
	}
	return TextResult(string(data)), nil
}

// ErrorResult returns an isError result whose text is {"error": msg}, plus
// "details" when details is non-empty.
func ErrorResult(msg, details string) *Result {
	payload := struct {
		Error   string `json:"error"`
		Details string `json:"details,omitempty"`
	}{Error: msg, Details: details}
	data, _ := json.Marshal(payload)
	return &Result{Content: []Content{{Type: "text", Text: string(data)}}, IsError: true}
}

// DecodeArguments unmarshals args into v. Absent or null arguments decode as
// an empty object; anything other than a JSON object is ErrInvalidArguments.
func DecodeArguments(args json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(args)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		trimmed = []byte("{}")
	}
	if trimmed[0] != '{' {
		return fmt.Errorf("%w: expected an object", ErrInvalidArguments)
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return nil
}
