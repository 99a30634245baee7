// ABOUTME: Headline source definitions and the ordered per-source headline result
// ABOUTME: Result serialises as a JSON object whose keys keep source order

package news

import (
	"bytes"
	"encoding/json"
)

// Source identifies one headline source and where its headlines live on the page.
type Source struct {
	Name     string
	URL      string
	Selector string // CSS selector matching headline elements
}

// SourceHeadlines holds the headlines fetched for one source.
type SourceHeadlines struct {
	Source    string
	Headlines []string
}

// Result maps source name to its headlines, in configured source order.
// A source that failed carries an empty list.
type Result []SourceHeadlines

// Get returns the headlines for the named source.
func (r Result) Get(source string) ([]string, bool) {
	for _, sh := range r {
		if sh.Source == source {
			return sh.Headlines, true
		}
	}
	return nil, false
}

// Total returns the number of headlines across all sources.
func (r Result) Total() int {
	n := 0
	for _, sh := range r {
		n += len(sh.Headlines)
	}
	return n
}

// MarshalJSON encodes the result as {"<source>": ["headline", ...], ...}.
func (r Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, sh := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(sh.Source)
		if err != nil {
			return nil, err
		}
		headlines := sh.Headlines
		if headlines == nil {
			headlines = []string{}
		}
		val, err := json.Marshal(headlines)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Envelope is the {"news": ...} document returned by the REST endpoint and
// embedded as text by the getNews tool.
type Envelope struct {
	News Result `json:"news"`
}
