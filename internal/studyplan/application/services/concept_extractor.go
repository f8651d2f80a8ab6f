// Package services contains the planning engines behind study schedules:
// rule-based concept extraction from course text, a deterministic session
// planner, and a feasibility check. Everything here is a pure function of
// its inputs and an explicit clock; the AI drafter is only a port.
package services

import (
	"regexp"
	"sort"
	"strings"

	"github.com/edusense/edusense/internal/studyplan/domain"
)

// Extraction bounds. Headings and definition phrases beyond these caps
// add noise, not coverage.
const (
	maxConcepts      = 20
	maxPhrases       = 15
	maxTitleLength   = 100
	maxSummaryLength = 150
)

// Academic vocabulary graded by difficulty. Single words match whole
// words of the concept text; phrases match as substrings.
var (
	easyKeywords = []string{
		"definition", "introduction", "basic", "simple", "meaning", "what is",
		"example", "describe", "explain", "overview", "summary", "concept",
		"understand", "learn", "identify", "recognize", "fundamental",
	}

	mediumKeywords = []string{
		"analyze", "compare", "contrast", "relationship", "process", "method",
		"technique", "approach", "framework", "model", "theory", "principle",
		"mechanism", "structure", "function", "system", "component", "interaction",
	}

	hardKeywords = []string{
		"theorem", "proof", "derivation", "complex", "advanced", "sophisticated",
		"optimization", "algorithm", "implementation", "architecture", "paradox",
		"anomaly", "exception", "edge case", "critical analysis", "synthesis",
		"hypothesis", "conjecture", "mathematical", "statistical", "abstract",
	}
)

var (
	markdownHeadingRe   = regexp.MustCompile(`(?m)^#+\s+(.+)$`)
	underlinedHeadingRe = regexp.MustCompile(`(?m)^([A-Z][A-Za-z\s\d&-]{3,})\s*\n[-=]{3,}$`)
	sentenceSplitRe     = regexp.MustCompile(`[.!?]\s+`)
	definitionRe        = regexp.MustCompile(`^([A-Z][A-Za-z\s&-]+?)\s+(is|refers to|means|denotes|represents)\s+(.{20,150})`)
	termRe              = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\s+(of|process|method|concept|principle)`)
)

// Headings that name document structure rather than content.
var genericHeadings = map[string]struct{}{
	"introduction":      {},
	"contents":          {},
	"table of contents": {},
	"chapter":           {},
	"section":           {},
}

// ExtractConcepts mines study concepts out of raw course text: section
// headings first, then sentences that define or introduce a term. Each
// concept is graded for difficulty and given a study-time estimate.
// Results come back ordered easy to hard, the natural learning order.
func ExtractConcepts(text string) []domain.Concept {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	concepts := extractFromHeadings(text)
	concepts = append(concepts, extractKeyPhrases(text)...)

	concepts = deduplicateConcepts(concepts)
	if len(concepts) > maxConcepts {
		concepts = concepts[:maxConcepts]
	}

	for i := range concepts {
		concepts[i].Difficulty = classifyDifficulty(concepts[i].Title + " " + concepts[i].Summary)
		concepts[i].EstimatedMinutes = estimateStudyMinutes(concepts[i].Summary, concepts[i].Difficulty)
	}

	rank := map[domain.Difficulty]int{
		domain.DifficultyEasy:   0,
		domain.DifficultyMedium: 1,
		domain.DifficultyHard:   2,
	}
	sort.SliceStable(concepts, func(i, j int) bool {
		return rank[concepts[i].Difficulty] < rank[concepts[j].Difficulty]
	})

	return concepts
}

func extractFromHeadings(text string) []domain.Concept {
	var concepts []domain.Concept

	for _, re := range []*regexp.Regexp{markdownHeadingRe, underlinedHeadingRe} {
		for _, match := range re.FindAllStringSubmatch(text, -1) {
			heading := strings.TrimSpace(match[1])

			if _, generic := genericHeadings[strings.ToLower(heading)]; generic {
				continue
			}
			if len(heading) <= 3 {
				continue
			}

			concepts = append(concepts, domain.Concept{
				Title:   truncate(heading, maxTitleLength),
				Summary: "Key topic: " + heading,
			})
		}
	}

	return concepts
}

func extractKeyPhrases(text string) []domain.Concept {
	sentences := sentenceSplitRe.Split(text, -1)

	var order []string
	summaries := make(map[string]string)

	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) < 10 {
			continue
		}

		// "X is ..." and its synonyms introduce a definition.
		if match := definitionRe.FindStringSubmatch(sentence); match != nil {
			phrase := strings.TrimSpace(match[1])
			if _, seen := summaries[phrase]; !seen && len(phrase) > 3 {
				order = append(order, phrase)
				summaries[phrase] = truncate(strings.TrimSpace(match[3]), maxSummaryLength)
			}
		}

		// Capitalized terms followed by "of", "process", "method" and the
		// like name a concept even without a definition.
		if match := termRe.FindStringSubmatch(sentence); match != nil {
			phrase := strings.TrimSpace(match[1])
			if _, seen := summaries[phrase]; !seen && len(phrase) > 3 && len(phrase) < 50 {
				order = append(order, phrase)
				summaries[phrase] = truncate(sentence, maxSummaryLength)
			}
		}
	}

	if len(order) > maxPhrases {
		order = order[:maxPhrases]
	}

	concepts := make([]domain.Concept, 0, len(order))
	for _, phrase := range order {
		concepts = append(concepts, domain.Concept{
			Title:   phrase,
			Summary: summaries[phrase],
		})
	}

	return concepts
}

// deduplicateConcepts drops concepts whose titles are near-identical
// word sets of an earlier one.
func deduplicateConcepts(concepts []domain.Concept) []domain.Concept {
	var unique []domain.Concept
	var seen []string

	for _, concept := range concepts {
		title := strings.ToLower(concept.Title)

		duplicate := false
		for _, other := range seen {
			if jaccardSimilarity(title, other) > 0.8 {
				duplicate = true
				break
			}
		}

		if !duplicate {
			unique = append(unique, concept)
			seen = append(seen, title)
		}
	}

	return unique
}

func jaccardSimilarity(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for word := range setA {
		if _, ok := setB[word]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection

	return float64(intersection) / float64(union)
}

func wordSet(s string) map[string]struct{} {
	words := strings.Fields(s)
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		set[word] = struct{}{}
	}
	return set
}

// classifyDifficulty grades a concept by its vocabulary. Hard terms
// weigh triple and longer average words push the same way; medium terms
// weigh double; easy terms count once.
func classifyDifficulty(text string) domain.Difficulty {
	lower := strings.ToLower(text)
	words := wordSet(lower)

	hard := keywordHits(lower, words, hardKeywords)
	medium := keywordHits(lower, words, mediumKeywords)
	easy := keywordHits(lower, words, easyKeywords)

	var avgWordLength float64
	if len(words) > 0 {
		total := 0
		for word := range words {
			total += len(word)
		}
		avgWordLength = float64(total) / float64(len(words))
	}

	hardScore := float64(hard)*3 + avgWordLength/5
	mediumScore := float64(medium) * 2
	easyScore := float64(easy)

	switch {
	case hardScore > mediumScore && hardScore > easyScore:
		return domain.DifficultyHard
	case mediumScore > easyScore:
		return domain.DifficultyMedium
	default:
		return domain.DifficultyEasy
	}
}

func keywordHits(text string, words map[string]struct{}, keywords []string) int {
	hits := 0
	for _, keyword := range keywords {
		if strings.Contains(keyword, " ") {
			if strings.Contains(text, keyword) {
				hits++
			}
			continue
		}
		if _, ok := words[keyword]; ok {
			hits++
		}
	}
	return hits
}

// estimateStudyMinutes budgets roughly three minutes per hundred words,
// scaled by difficulty and clamped to a 5-60 minute slot.
func estimateStudyMinutes(summary string, difficulty domain.Difficulty) int {
	wordCount := len(strings.Fields(summary))

	base := float64(wordCount) / 100 * 3
	if base < 5 {
		base = 5
	}

	multiplier := 1.0
	switch difficulty {
	case domain.DifficultyMedium:
		multiplier = 1.5
	case domain.DifficultyHard:
		multiplier = 2.0
	}

	estimated := int(base * multiplier)
	if estimated < 5 {
		estimated = 5
	}
	if estimated > 60 {
		estimated = 60
	}
	return estimated
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
