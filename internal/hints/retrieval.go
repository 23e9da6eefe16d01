package hints

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/velvetdesk/agencyops-backend/internal/logger"
	"gopkg.in/yaml.v3"
)

const (
	maxSnippets   = 10
	snippetMaxLen = 150
)

// KeywordCategory pairs a snippet label with the substrings that trigger it.
// Categories are scanned in declaration order so retrieval output is stable.
type KeywordCategory struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

func defaultKeywordCategories() []KeywordCategory {
	return []KeywordCategory{
		{Category: "family", Keywords: []string{"wife", "husband", "girlfriend", "boyfriend", "daughter", "son", "kids", "baby", "mom", "dad", "brother", "sister", "family"}},
		{Category: "work", Keywords: []string{"work", "job", "boss", "office", "shift", "salary", "payday", "fired", "promoted", "retire"}},
		{Category: "pets", Keywords: []string{"dog", "cat", "puppy", "kitten", "pet", "vet", "sick", "died"}},
		{Category: "preferences", Keywords: []string{"love", "favorite", "hate", "prefer", "always", "never", "starbucks", "coffee", "beer", "wine"}},
		{Category: "location", Keywords: []string{"live in", "from", "moved to", "city", "state", "country", "timezone"}},
		{Category: "emotional", Keywords: []string{"stressed", "lonely", "sad", "happy", "excited", "depressed", "anxious", "birthday", "anniversary"}},
	}
}

// LoadKeywordCategories returns the retrieval keyword table, overridden from
// the YAML file at HINTS_KEYWORDS_PATH when set. Agencies tune these lists
// per vertical without a redeploy.
func LoadKeywordCategories(log *logger.Logger) []KeywordCategory {
	path := strings.TrimSpace(os.Getenv("HINTS_KEYWORDS_PATH"))
	if path == "" {
		return defaultKeywordCategories()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Warn("could not read keywords file, using defaults", "path", path, "error", err)
		return defaultKeywordCategories()
	}
	var categories []KeywordCategory
	if err := yaml.Unmarshal(raw, &categories); err != nil || len(categories) == 0 {
		log.Warn("could not parse keywords file, using defaults", "path", path, "error", err)
		return defaultKeywordCategories()
	}
	return categories
}

// retrieveSnippets scans fan messages against the keyword table and collects
// up to 10 category-annotated snippets. The structured fact extractor misses
// long-tail personal detail buried in free text; this is the recall net.
func retrieveSnippets(categories []KeywordCategory, messages []ChatMessage, now time.Time) []string {
	snippets := make([]string, 0, maxSnippets)
	seen := make(map[string]bool)
	for _, cat := range categories {
		for _, msg := range messages {
			if !msg.FromFan || seen[msg.Text] {
				continue
			}
			lower := strings.ToLower(msg.Text)
			matched := false
			for _, kw := range cat.Keywords {
				if strings.Contains(lower, kw) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
			seen[msg.Text] = true
			daysAgo := roundDays(now, msg.TS)
			text := msg.Text
			if len(text) > snippetMaxLen {
				text = text[:snippetMaxLen]
			}
			snippets = append(snippets, fmt.Sprintf("[%s, %dd ago] %s", cat.Category, daysAgo, text))
			if len(snippets) >= maxSnippets {
				return snippets
			}
		}
	}
	return snippets
}

func roundDays(now time.Time, tsMillis int64) int {
	ageMs := now.UnixMilli() - tsMillis
	return int(float64(ageMs)/86400000 + 0.5)
}

func roundHours(now time.Time, tsMillis int64) int {
	ageMs := now.UnixMilli() - tsMillis
	return int(float64(ageMs)/3600000 + 0.5)
}
