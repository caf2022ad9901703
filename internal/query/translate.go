package query

import "strings"

// Syntax identifies the query dialect a source understands.
type Syntax string

const (
	// SyntaxBoolean joins terms with explicit AND/NOT operators. Most
	// scholarly APIs accept this form.
	SyntaxBoolean Syntax = "boolean"

	// SyntaxFielded emits field:value pairs for sources with structured
	// metadata search.
	SyntaxFielded Syntax = "fielded"

	// SyntaxPlain is bare keyword concatenation for primitive-search
	// sources, using the expanded keyword set.
	SyntaxPlain Syntax = "plain"
)

// Translation is the per-source form of one request.
type Translation struct {
	// Query is the query string to send to the source.
	Query string

	// Keywords is the expanded keyword set backing the query. Plain
	// sources search with exactly these terms.
	Keywords []string
}

// Translate builds the source-appropriate query form for one parsed
// request. The expansion dimensions come from the request filters.
func Translate(p Parsed, syntax Syntax, discipline, educationLevel, publicationType, studyType string) Translation {
	keywords := keywordsOnly(p)
	expanded := ExpandKeywords(append(append([]string{}, p.Phrases...), keywords...),
		discipline, educationLevel, publicationType, studyType)

	var q string
	switch syntax {
	case SyntaxFielded:
		q = FieldedQuery(p)
	case SyntaxPlain:
		q = PlainQuery(p, expanded)
	default:
		q = BooleanQuery(p)
	}

	// A query that parsed down to nothing degrades to the raw input.
	if q == "" {
		q = p.Raw
	}

	return Translation{Query: q, Keywords: expanded}
}

// BooleanQuery joins phrases, keywords, and must-include terms with AND,
// appending NOT for every exclusion. An explicit boolean expression in
// the input is preserved verbatim as a single clause.
func BooleanQuery(p Parsed) string {
	var parts []string
	for _, ph := range p.Phrases {
		parts = append(parts, `"`+ph+`"`)
	}
	if len(p.Keywords) > 0 {
		if p.HasBooleanOps {
			parts = append(parts, strings.Join(p.Keywords, " "))
		} else {
			parts = append(parts, p.Keywords...)
		}
	}
	parts = append(parts, p.MustInclude...)

	q := strings.Join(parts, " AND ")
	for _, ex := range p.MustExclude {
		q += " NOT " + ex
	}
	return strings.TrimSpace(q)
}

// FieldedQuery emits field:value pairs followed by the boolean form of
// the remaining terms, for sources with structured metadata fields.
// Field order is deterministic (sorted by field name).
func FieldedQuery(p Parsed) string {
	var parts []string
	for _, field := range sortedFieldNames(p.Fields) {
		v := p.Fields[field]
		if strings.ContainsAny(v, " \t") {
			v = `"` + v + `"`
		}
		parts = append(parts, field+":"+v)
	}

	remainder := BooleanQuery(p)
	if remainder != "" {
		parts = append(parts, remainder)
	}
	return strings.TrimSpace(strings.Join(parts, " AND "))
}

// PlainQuery is bare concatenation of phrases and the expanded keyword
// set, with excluded terms filtered out. Operators and markers carry no
// meaning for primitive-search sources and are omitted.
func PlainQuery(p Parsed, expanded []string) string {
	excluded := make(map[string]bool, len(p.MustExclude))
	for _, ex := range p.MustExclude {
		excluded[strings.ToLower(ex)] = true
	}

	var parts []string
	for _, term := range expanded {
		if excluded[strings.ToLower(term)] {
			continue
		}
		parts = append(parts, term)
	}
	for _, inc := range p.MustInclude {
		if !containsFold(parts, inc) {
			parts = append(parts, inc)
		}
	}
	return strings.Join(parts, " ")
}

// keywordsOnly returns the free keywords with operator tokens removed.
func keywordsOnly(p Parsed) []string {
	out := make([]string, 0, len(p.Keywords))
	for _, kw := range p.Keywords {
		if kw == "AND" || kw == "OR" || kw == "NOT" {
			continue
		}
		out = append(out, kw)
	}
	return out
}

func sortedFieldNames(fields map[string]string) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	// Insertion sort; field maps are tiny.
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j] < names[j-1]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
	return names
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}
