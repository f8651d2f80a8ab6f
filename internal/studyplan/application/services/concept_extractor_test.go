package services_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusense/edusense/internal/studyplan/application/services"
	"github.com/edusense/edusense/internal/studyplan/domain"
)

func findConcept(concepts []domain.Concept, title string) *domain.Concept {
	for i := range concepts {
		if concepts[i].Title == title {
			return &concepts[i]
		}
	}
	return nil
}

func TestExtractConcepts_EmptyText(t *testing.T) {
	assert.Empty(t, services.ExtractConcepts(""))
	assert.Empty(t, services.ExtractConcepts("   \n\t  "))
}

func TestExtractConcepts_MarkdownHeadings(t *testing.T) {
	text := "# Graph Theory\n\nSome prose.\n\n## Dijkstra Algorithm\n\nMore prose."

	concepts := services.ExtractConcepts(text)

	graph := findConcept(concepts, "Graph Theory")
	require.NotNil(t, graph)
	assert.Equal(t, "Key topic: Graph Theory", graph.Summary)

	dijkstra := findConcept(concepts, "Dijkstra Algorithm")
	require.NotNil(t, dijkstra)
	assert.Equal(t, domain.DifficultyHard, dijkstra.Difficulty)
}

func TestExtractConcepts_UnderlinedHeadings(t *testing.T) {
	text := "Linear Regression\n=================\n\nFitting a line to data points."

	concepts := services.ExtractConcepts(text)

	assert.NotNil(t, findConcept(concepts, "Linear Regression"))
}

func TestExtractConcepts_SkipsGenericAndShortHeadings(t *testing.T) {
	text := "# Introduction\n\n# Contents\n\n# Ab\n\n# Neural Networks\n"

	concepts := services.ExtractConcepts(text)

	assert.Nil(t, findConcept(concepts, "Introduction"))
	assert.Nil(t, findConcept(concepts, "Contents"))
	assert.Nil(t, findConcept(concepts, "Ab"))
	assert.NotNil(t, findConcept(concepts, "Neural Networks"))
}

func TestExtractConcepts_DefinitionSentences(t *testing.T) {
	text := "Recursion is a technique where a function calls itself to solve smaller subproblems. " +
		"The weather was nice today."

	concepts := services.ExtractConcepts(text)

	recursion := findConcept(concepts, "Recursion")
	require.NotNil(t, recursion)
	assert.Contains(t, recursion.Summary, "technique")
	assert.Equal(t, domain.DifficultyMedium, recursion.Difficulty)
}

func TestExtractConcepts_TermPhrases(t *testing.T) {
	text := "We then study the Fourier Transform of periodic signals in depth."

	concepts := services.ExtractConcepts(text)

	assert.NotNil(t, findConcept(concepts, "Fourier Transform"))
}

func TestExtractConcepts_DeduplicatesSimilarTitles(t *testing.T) {
	text := "# Graph Theory Basics\n\nThe intro ends here. " +
		"Graph Theory Basics is the mathematical study of pairwise relations between objects in a network."

	concepts := services.ExtractConcepts(text)

	matches := 0
	for _, concept := range concepts {
		if concept.Title == "Graph Theory Basics" {
			matches++
		}
	}
	assert.Equal(t, 1, matches)

	// The heading wins; the definition arrives second and is dropped.
	kept := findConcept(concepts, "Graph Theory Basics")
	require.NotNil(t, kept)
	assert.Equal(t, "Key topic: Graph Theory Basics", kept.Summary)
}

func TestExtractConcepts_CapsConceptCount(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&sb, "# Unique Heading Number %c%c\n\n", 'A'+i%26, 'a'+i/26)
	}

	concepts := services.ExtractConcepts(sb.String())

	assert.LessOrEqual(t, len(concepts), 20)
}

func TestExtractConcepts_SortsEasyToHard(t *testing.T) {
	text := "# Simple Overview\n\n# Dijkstra Algorithm Proof\n\n# Process Framework Model\n"

	concepts := services.ExtractConcepts(text)
	require.NotEmpty(t, concepts)

	rank := map[domain.Difficulty]int{
		domain.DifficultyEasy:   0,
		domain.DifficultyMedium: 1,
		domain.DifficultyHard:   2,
	}
	for i := 1; i < len(concepts); i++ {
		assert.LessOrEqual(t, rank[concepts[i-1].Difficulty], rank[concepts[i].Difficulty],
			"concepts must be ordered easy to hard")
	}
}

func TestExtractConcepts_EstimatesStudyTime(t *testing.T) {
	text := "# Dijkstra Algorithm\n\n# Graph Theory\n"

	concepts := services.ExtractConcepts(text)

	// Short summaries bottom out at the 5 minute base, scaled by
	// difficulty: hard doubles it, medium takes one and a half.
	dijkstra := findConcept(concepts, "Dijkstra Algorithm")
	require.NotNil(t, dijkstra)
	require.Equal(t, domain.DifficultyHard, dijkstra.Difficulty)
	assert.Equal(t, 10, dijkstra.EstimatedMinutes)

	graph := findConcept(concepts, "Graph Theory")
	require.NotNil(t, graph)
	require.Equal(t, domain.DifficultyMedium, graph.Difficulty)
	assert.Equal(t, 7, graph.EstimatedMinutes)

	for _, concept := range concepts {
		assert.GreaterOrEqual(t, concept.EstimatedMinutes, 5)
		assert.LessOrEqual(t, concept.EstimatedMinutes, 60)
	}
}

func TestExtractConcepts_MultiWordKeywords(t *testing.T) {
	text := "# Edge Case Analysis Overview\n"

	concepts := services.ExtractConcepts(text)

	concept := findConcept(concepts, "Edge Case Analysis Overview")
	require.NotNil(t, concept)
	assert.Equal(t, domain.DifficultyHard, concept.Difficulty)
}
