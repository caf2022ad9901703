// Package query turns one generic search request into source-appropriate
// query strings and keyword sets.
//
// Parsing never fails: malformed input degrades to plain keyword
// concatenation. All functions are pure; the package holds no state
// beyond its static expansion tables.
package query

import (
	"regexp"
	"strings"
)

// Parsed holds the structural components of a raw user query.
type Parsed struct {
	// Raw is the original query string, trimmed.
	Raw string

	// Phrases are quoted phrases, extracted before any other parsing.
	Phrases []string

	// Fields are field:value pairs (field names lowercased).
	Fields map[string]string

	// MustInclude are +tokens that every result must contain.
	MustInclude []string

	// MustExclude are -tokens that results must not contain.
	MustExclude []string

	// Keywords are the remaining free terms, in input order. Boolean
	// operator tokens (AND/OR/NOT) are kept verbatim so an explicit
	// boolean expression survives translation.
	Keywords []string

	// HasBooleanOps reports whether the query contained explicit
	// AND/OR/NOT operators.
	HasBooleanOps bool
}

var phraseRe = regexp.MustCompile(`"([^"]*)"`)

// Parse decomposes a raw query string into its components.
// It never returns an error; anything it cannot interpret structurally
// becomes a plain keyword.
func Parse(raw string) Parsed {
	p := Parsed{
		Raw:    strings.TrimSpace(raw),
		Fields: make(map[string]string),
	}

	// Quoted phrases come out first so their contents are not re-tokenized.
	rest := phraseRe.ReplaceAllStringFunc(p.Raw, func(m string) string {
		phrase := strings.TrimSpace(strings.Trim(m, `"`))
		if phrase != "" {
			p.Phrases = append(p.Phrases, phrase)
		}
		return " "
	})

	for _, tok := range strings.Fields(rest) {
		switch {
		case tok == "AND", tok == "OR", tok == "NOT":
			p.HasBooleanOps = true
			p.Keywords = append(p.Keywords, tok)
		case len(tok) > 1 && tok[0] == '+':
			p.MustInclude = append(p.MustInclude, tok[1:])
		case len(tok) > 1 && tok[0] == '-':
			p.MustExclude = append(p.MustExclude, tok[1:])
		case isFieldPair(tok):
			idx := strings.Index(tok, ":")
			p.Fields[strings.ToLower(tok[:idx])] = tok[idx+1:]
		default:
			p.Keywords = append(p.Keywords, tok)
		}
	}

	return p
}

// isFieldPair reports whether a token is a well-formed field:value pair.
// Tokens with an empty field or value side degrade to plain keywords.
func isFieldPair(tok string) bool {
	idx := strings.Index(tok, ":")
	return idx > 0 && idx < len(tok)-1
}

// Terms returns the searchable terms of the parsed query: phrases,
// keywords (minus operator tokens), must-include tokens, and field
// values. Used to fit relevance scoring against the query.
func (p Parsed) Terms() []string {
	terms := make([]string, 0, len(p.Phrases)+len(p.Keywords)+len(p.MustInclude)+len(p.Fields))
	terms = append(terms, p.Phrases...)
	for _, kw := range p.Keywords {
		if kw == "AND" || kw == "OR" || kw == "NOT" {
			continue
		}
		terms = append(terms, kw)
	}
	terms = append(terms, p.MustInclude...)
	for _, v := range p.Fields {
		terms = append(terms, v)
	}
	return terms
}
