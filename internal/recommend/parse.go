package recommend

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"
)

const (
	sentenceMinLen   = 10
	sentenceFallback = 3
)

var (
	sectionLabel = regexp.MustCompile(`(?i)["*#]*\s*\b(urgent\s*actions|growth\s*strategies|marketing\s*ideas|competitive\s*positioning|future\s*scenarios)\b\s*["*]*\s*:`)
	bulletPrefix = regexp.MustCompile(`^(?:[-•*]|\d+[.)])\s*`)
	quotedItem   = regexp.MustCompile(`"((?:[^"\\]|\\.)+)"`)
	sentenceEnd  = regexp.MustCompile(`[.!?]+`)
	labelSpace   = regexp.MustCompile(`\s+`)
)

// Parse extracts recommendations from model output. It tries a JSON object
// first, then labelled sections. Within a section it takes bullet or
// numbered lines, then quoted strings, then up to three sentences.
func Parse(text string) (*Recommendations, error) {
	if recs, ok := parseJSON(text); ok {
		return recs, nil
	}
	recs := parseSections(text)
	recs.normalize()
	if recs.Empty() {
		return nil, ErrEmptyRecommendations
	}
	return recs, nil
}

// parseJSON decodes the whole text, or failing that the span from the first
// '{' to the last '}'.
func parseJSON(text string) (*Recommendations, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, false
	}
	var recs Recommendations
	if err := json.Unmarshal([]byte(s), &recs); err != nil {
		start := strings.IndexByte(s, '{')
		end := strings.LastIndexByte(s, '}')
		if start == -1 || end <= start {
			return nil, false
		}
		recs = Recommendations{}
		if err := json.Unmarshal([]byte(s[start:end+1]), &recs); err != nil {
			return nil, false
		}
	}
	recs.normalize()
	if recs.Empty() {
		return nil, false
	}
	return &recs, true
}

func parseSections(text string) *Recommendations {
	recs := &Recommendations{}
	matches := sectionLabel.FindAllStringSubmatchIndex(text, -1)
	sort.Slice(matches, func(i, j int) bool { return matches[i][0] < matches[j][0] })

	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		body := text[m[1]:end]
		label := strings.ToLower(labelSpace.ReplaceAllString(text[m[2]:m[3]], ""))

		target := recs.section(label)
		if target == nil || len(*target) > 0 {
			continue
		}
		*target = extractItems(body)
	}
	return recs
}

func (r *Recommendations) section(label string) *[]string {
	switch label {
	case "urgentactions":
		return &r.UrgentActions
	case "growthstrategies":
		return &r.GrowthStrategies
	case "marketingideas":
		return &r.MarketingIdeas
	case "competitivepositioning":
		return &r.CompetitivePositioning
	case "futurescenarios":
		return &r.FutureScenarios
	}
	return nil
}

func extractItems(body string) []string {
	var items []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if !bulletPrefix.MatchString(line) {
			continue
		}
		if item := trimItem(bulletPrefix.ReplaceAllString(line, "")); item != "" {
			items = append(items, item)
		}
	}
	if len(items) > 0 {
		return items
	}

	for _, m := range quotedItem.FindAllStringSubmatch(body, -1) {
		var s string
		if err := json.Unmarshal([]byte(`"`+m[1]+`"`), &s); err != nil {
			s = m[1]
		}
		if s = trimItem(s); s != "" {
			items = append(items, s)
		}
	}
	if len(items) > 0 {
		return items
	}

	for _, sentence := range sentenceEnd.Split(body, -1) {
		sentence = trimItem(sentence)
		if len(sentence) > sentenceMinLen {
			items = append(items, sentence)
		}
		if len(items) == sentenceFallback {
			break
		}
	}
	return items
}

// trimItem strips whitespace, list punctuation and markdown emphasis.
func trimItem(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `[],"*`)
	return strings.TrimSpace(s)
}
