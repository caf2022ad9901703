package query

import "strings"

// Static expansion tables keyed by request filter dimensions. Expansion
// adds related terms without ever removing originals; additions are
// deduplicated case-insensitively and order is preserved.

var disciplineTerms = map[string][]string{
	"psychology":       {"psychological", "cognitive", "behavioral"},
	"medicine":         {"medical", "clinical", "health"},
	"computer science": {"computing", "algorithm", "software"},
	"biology":          {"biological", "molecular", "organism"},
	"chemistry":        {"chemical", "compound", "synthesis"},
	"physics":          {"physical", "quantum", "theoretical"},
	"economics":        {"economic", "financial", "market"},
	"education":        {"educational", "pedagogy", "learning"},
	"sociology":        {"social", "societal", "demographic"},
	"engineering":      {"technical", "design", "systems"},
	"mathematics":      {"mathematical", "theorem", "proof"},
	"neuroscience":     {"neural", "brain", "cognitive"},
	"nutrition":        {"dietary", "diet", "nutritional"},
	"environmental":    {"ecology", "climate", "sustainability"},
}

var educationLevelTerms = map[string][]string{
	"undergraduate": {"introductory", "fundamentals"},
	"graduate":      {"advanced", "research"},
	"doctoral":      {"dissertation", "novel"},
	"k12":           {"school", "curriculum"},
}

var publicationTypeTerms = map[string][]string{
	"journal":          {"peer-reviewed", "article"},
	"conference":       {"proceedings", "symposium"},
	"review":           {"systematic review", "survey"},
	"preprint":         {"working paper"},
	"book":             {"textbook", "monograph"},
	"thesis":           {"dissertation"},
	"clinical_trial":   {"randomized", "trial"},
	"meta_analysis":    {"meta-analysis", "pooled analysis"},
	"case_study":       {"case report"},
	"technical_report": {"report", "white paper"},
}

var studyTypeTerms = map[string][]string{
	"experimental":    {"experiment", "controlled"},
	"observational":   {"cohort", "cross-sectional"},
	"longitudinal":    {"longitudinal study", "follow-up"},
	"qualitative":     {"interview", "ethnographic"},
	"quantitative":    {"statistical", "measurement"},
	"meta_analysis":   {"meta-analysis", "systematic"},
	"randomized":      {"randomized controlled trial", "rct"},
	"case_control":    {"case-control"},
	"survey":          {"questionnaire", "survey study"},
	"simulation":      {"model", "simulation study"},
}

// ExpandKeywords returns the keyword list augmented with synonym and
// related terms for the given filter dimensions. Originals always come
// first and are never removed. Additions are deduplicated
// case-insensitively against everything already present.
func ExpandKeywords(keywords []string, discipline, educationLevel, publicationType, studyType string) []string {
	out := make([]string, 0, len(keywords)+8)
	seen := make(map[string]bool, len(keywords)+8)

	add := func(term string) {
		key := strings.ToLower(strings.TrimSpace(term))
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, term)
	}

	for _, kw := range keywords {
		add(kw)
	}
	for _, term := range disciplineTerms[normalizeTableKey(discipline)] {
		add(term)
	}
	for _, term := range educationLevelTerms[normalizeTableKey(educationLevel)] {
		add(term)
	}
	for _, term := range publicationTypeTerms[normalizeTableKey(publicationType)] {
		add(term)
	}
	for _, term := range studyTypeTerms[normalizeTableKey(studyType)] {
		add(term)
	}

	return out
}

// normalizeTableKey lowercases and trims a filter value for table lookup.
func normalizeTableKey(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
