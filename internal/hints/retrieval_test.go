package hints

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/velvetdesk/agencyops-backend/internal/logger"
)

func msgAt(text string, fromFan bool, now time.Time, age time.Duration) ChatMessage {
	return ChatMessage{Text: text, FromFan: fromFan, TS: now.Add(-age).UnixMilli()}
}

func TestRetrieveSnippets(t *testing.T) {
	now := time.Now()
	cats := defaultKeywordCategories()
	msgs := []ChatMessage{
		msgAt("my wife is visiting her mom", true, now, 48*time.Hour),
		msgAt("rough day at work today", true, now, 24*time.Hour),
		msgAt("just chilling", true, now, time.Hour),
		msgAt("how was your shift?", false, now, time.Hour),
	}
	got := retrieveSnippets(cats, msgs, now)
	if len(got) != 2 {
		t.Fatalf("snippets = %d, want 2: %v", len(got), got)
	}
	if !strings.HasPrefix(got[0], "[family, 2d ago] my wife") {
		t.Errorf("first snippet = %q", got[0])
	}
	if !strings.HasPrefix(got[1], "[work, 1d ago] rough day") {
		t.Errorf("second snippet = %q", got[1])
	}
}

func TestRetrieveSnippetsIgnoresCreatorMessages(t *testing.T) {
	now := time.Now()
	msgs := []ChatMessage{msgAt("my dog is sick", false, now, time.Hour)}
	if got := retrieveSnippets(defaultKeywordCategories(), msgs, now); len(got) != 0 {
		t.Fatalf("creator messages must not be retrieved: %v", got)
	}
}

func TestRetrieveSnippetsCapAndDedupe(t *testing.T) {
	now := time.Now()
	var msgs []ChatMessage
	for i := 0; i < 20; i++ {
		msgs = append(msgs, msgAt("my dog had a long day at work with my wife near starbucks "+strings.Repeat("a", i), true, now, time.Hour))
	}
	// Duplicate text appears once even if several categories match it.
	msgs = append(msgs, msgs[0])
	got := retrieveSnippets(defaultKeywordCategories(), msgs, now)
	if len(got) != maxSnippets {
		t.Fatalf("snippets = %d, want %d", len(got), maxSnippets)
	}
	seen := map[string]bool{}
	for _, s := range got {
		if seen[s] {
			t.Errorf("duplicate snippet: %q", s)
		}
		seen[s] = true
	}
}

func TestRetrieveSnippetsTruncates(t *testing.T) {
	now := time.Now()
	long := "my cat " + strings.Repeat("z", 300)
	got := retrieveSnippets(defaultKeywordCategories(), []ChatMessage{msgAt(long, true, now, time.Hour)}, now)
	if len(got) != 1 {
		t.Fatalf("snippets = %d, want 1", len(got))
	}
	prefix := "[pets, 0d ago] "
	if len(got[0]) != len(prefix)+snippetMaxLen {
		t.Errorf("snippet length = %d, want %d", len(got[0]), len(prefix)+snippetMaxLen)
	}
}

func TestLoadKeywordCategoriesFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keywords.yaml")
	content := "- category: gaming\n  keywords: [xbox, playstation]\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("HINTS_KEYWORDS_PATH", path)

	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	cats := LoadKeywordCategories(log)
	if len(cats) != 1 || cats[0].Category != "gaming" || len(cats[0].Keywords) != 2 {
		t.Fatalf("categories = %+v", cats)
	}
}

func TestLoadKeywordCategoriesFallback(t *testing.T) {
	t.Setenv("HINTS_KEYWORDS_PATH", "/nonexistent/keywords.yaml")
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	cats := LoadKeywordCategories(log)
	if len(cats) != 6 || cats[0].Category != "family" {
		t.Fatalf("expected default table, got %+v", cats)
	}
}
