// Package chains defines the data returned by the cognate inquiry service:
// search results, chain nodes, chains and chain sets.
package chains

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/agentstation/cognates/pkg/errors"
)

// ConceptID identifies a concept. The service sends it as a number or a
// string; it is kept as an opaque string.
type ConceptID string

// UnmarshalJSON accepts both JSON numbers and strings.
func (id *ConceptID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ConceptID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("concept_id: %w", err)
	}
	*id = ConceptID(n.String())
	return nil
}

// MarshalJSON writes numeric ids as numbers so they round-trip unchanged.
func (id ConceptID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// String implements fmt.Stringer.
func (id ConceptID) String() string { return string(id) }

// Coordinates is a [latitude, longitude] pair, in that order.
type Coordinates [2]float64

// Lat returns the latitude.
func (c Coordinates) Lat() float64 { return c[0] }

// Lon returns the longitude.
func (c Coordinates) Lon() float64 { return c[1] }

// LanguageInfo describes the language of a word.
type LanguageInfo struct {
	Code        string      `json:"code" yaml:"code"`               // Language code, e.g. "en"
	Name        string      `json:"name" yaml:"name"`               // Display name, e.g. "English"
	Flag        string      `json:"flag" yaml:"flag"`               // Flag emoji
	Coordinates Coordinates `json:"coordinates" yaml:"coordinates"` // [lat, lon]
}

// Result is one search suggestion. It is immutable once received.
type Result struct {
	Word         string       `json:"word" yaml:"word"`
	ConceptID    ConceptID    `json:"concept_id" yaml:"concept_id"`
	LanguageInfo LanguageInfo `json:"language_info" yaml:"language_info"`
}

// Validate checks that a result can drive a chain lookup.
func (r *Result) Validate() error {
	if r == nil {
		return errors.NewValidationError("result", nil, "is required")
	}
	if r.ConceptID == "" {
		return errors.NewValidationError("concept_id", r.ConceptID, "is required")
	}
	if r.Word == "" {
		return errors.NewValidationError("word", r.Word, "is required")
	}
	return nil
}

// Equal reports whether two results refer to the same word in the same
// language for the same concept.
func (r *Result) Equal(o *Result) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.Word == o.Word && r.ConceptID == o.ConceptID && r.LanguageInfo == o.LanguageInfo
}

// Label renders the result the way the dropdown shows it.
func (r Result) Label() string {
	if r.LanguageInfo.Flag != "" {
		return fmt.Sprintf("%s %s (%s)", r.LanguageInfo.Flag, r.Word, r.LanguageInfo.Name)
	}
	return fmt.Sprintf("%s (%s)", r.Word, r.LanguageInfo.Name)
}

// Node is one word in a chain.
type Node struct {
	Word            string       `json:"word" yaml:"word"`
	Transliteration string       `json:"translit1,omitempty" yaml:"translit1,omitempty"` // Latin transliteration, may be empty
	LanguageInfo    LanguageInfo `json:"language_info" yaml:"language_info"`
}

// Chain is an ordered sequence of related words.
type Chain struct {
	Nodes []Node `json:"chain" yaml:"chain"`
}

// Len returns the number of nodes.
func (c Chain) Len() int { return len(c.Nodes) }

// ChainSet is the response of a chain lookup.
type ChainSet struct {
	Chains []Chain `json:"chains" yaml:"chains"`
}

// Len returns the number of chains.
func (s *ChainSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Chains)
}

// NodeCount returns the number of nodes across all chains.
func (s *ChainSet) NodeCount() int {
	n := 0
	if s == nil {
		return n
	}
	for _, c := range s.Chains {
		n += len(c.Nodes)
	}
	return n
}

// Query selects which chains to fetch for a concept.
type Query struct {
	ConceptID ConceptID
	Word      string // empty together with Language fetches all chains
	Language  string
}

// All reports whether the query asks for every chain of the concept.
func (q Query) All() bool { return q.Word == "" && q.Language == "" }

// QueryFor builds the chain query for a selected result. With showAll the
// word and language filters are omitted.
func QueryFor(r *Result, showAll bool) Query {
	q := Query{ConceptID: r.ConceptID}
	if !showAll {
		q.Word = r.Word
		q.Language = r.LanguageInfo.Code
	}
	return q
}
