package digest

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// NewsItem is a single feed entry as served to clients.
// Built once per request, never mutated afterwards.
type NewsItem struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
	Snippet     string `json:"snippet,omitempty"`
}

// Digest is the /api/news response body.
type Digest struct {
	GeneratedAt string     `json:"generated_at"`
	Summary     string     `json:"summary"`
	Items       []NewsItem `json:"items"`
}

// FallbackSummary replaces the generated summary when the feed is unreachable.
const FallbackSummary = "Онлайн-источник новостей временно недоступен, показан резервный дайджест."

const emptySummary = "За последние сутки заметных AI-новостей не найдено."

// defaultTopics is shown when every frequent token is stop-worded away.
const defaultTopics = "модели, продукты и внедрение AI"

// Слова, которые не несут смысла в качестве "темы дня".
var stopWords = map[string]bool{
	"ai": true, "artificial": true, "intelligence": true,
	"the": true, "a": true, "an": true, "and": true, "to": true,
	"of": true, "in": true, "for": true, "on": true, "with": true,
	"is": true, "are": true, "at": true, "from": true, "by": true,
	"as": true, "new": true, "says": true,
}

var wordPattern = regexp.MustCompile(`[A-Za-z][A-Za-z\-']+`)

// BuildSummary renders one sentence describing the digest. Pure function:
// no I/O, never fails. Equal-frequency tokens keep first-occurrence order so
// the output is stable for a given item list.
func BuildSummary(items []NewsItem) string {
	if len(items) == 0 {
		return emptySummary
	}

	titles := make([]string, 0, len(items))
	for _, it := range items {
		titles = append(titles, it.Title)
	}
	words := wordPattern.FindAllString(strings.ToLower(strings.Join(titles, " ")), -1)

	frequent := topTokens(words, 6)

	var topics []string
	for _, w := range frequent {
		if stopWords[w] {
			continue
		}
		topics = append(topics, w)
		if len(topics) == 4 {
			break
		}
	}

	joined := defaultTopics
	if len(topics) > 0 {
		joined = strings.Join(topics, ", ")
	}

	return fmt.Sprintf(
		"За последние 24 часа в AI было много активности: собрано %d ключевых новостей. "+
			"Чаще всего встречаются темы: %s. "+
			"Откройте карточки ниже, чтобы быстро перейти к первоисточникам.",
		len(items), joined)
}

// topTokens returns the n most frequent tokens, most frequent first.
// Ties keep the order in which tokens first appeared.
func topTokens(words []string, n int) []string {
	counts := make(map[string]int, len(words))
	order := make([]string, 0, len(words))
	for _, w := range words {
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > n {
		order = order[:n]
	}
	return order
}

// Fallback returns the placeholder digest served when the live fetch fails.
// All three entries share one timestamp; they are cosmetic.
func Fallback(now time.Time) []NewsItem {
	ts := now.UTC().Format(time.RFC3339)
	titles := []string{
		"Open-source AI models continue improving multimodal reasoning",
		"Enterprise adoption of AI copilots expands across industries",
		"Governments discuss new frameworks for safe AI deployment",
	}

	items := make([]NewsItem, 0, len(titles))
	for _, title := range titles {
		items = append(items, NewsItem{
			Title:       title,
			URL:         "https://news.google.com/",
			Source:      "Fallback digest",
			PublishedAt: ts,
		})
	}
	return items
}
