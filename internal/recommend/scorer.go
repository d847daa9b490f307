package recommend

import (
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	// SelectionSize is the number of courses returned per request.
	SelectionSize = 4

	minTokenLength = 3
	titleWeight    = 3
	topicWeight    = 2
)

// SelectCourses ranks the catalog against sanitized interests and returns the
// top SelectionSize entries. Matching is substring containment, so "law"
// matches "lawyers". Zero-score entries still fill the selection in catalog
// order.
func SelectCourses(courses []Course, interests string) []Course {
	tokens := interestTokens(interests)

	scored := make([]scoredCourse, len(courses))
	for i, c := range courses {
		scored[i] = scoredCourse{course: c, score: score(c, tokens)}
	}

	slices.SortStableFunc(scored, func(a, b scoredCourse) int {
		return b.score - a.score
	})

	n := min(SelectionSize, len(scored))
	selected := make([]Course, n)
	for i := range n {
		selected[i] = scored[i].course
	}
	return selected
}

func interestTokens(interests string) []string {
	var tokens []string
	for _, word := range strings.Fields(strings.ToLower(interests)) {
		if utf8.RuneCountInString(word) < minTokenLength {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

func score(c Course, tokens []string) int {
	title := strings.ToLower(c.Title)
	topic := strings.ToLower(c.Topic)

	total := 0
	for _, t := range tokens {
		if strings.Contains(title, t) {
			total += titleWeight
		}
		if strings.Contains(topic, t) {
			total += topicWeight
		}
	}
	return total
}
