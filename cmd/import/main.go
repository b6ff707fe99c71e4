// Package main provides a tool to bulk-import scraped paper data as wiki pages.
//
// Each paper becomes a discoverable page owned by the System user, with its
// tags attached, "System" as the display author, and an initial revision.
// Papers whose titles already exist are skipped.
//
// Usage:
//
//	go run ./cmd/import --file papers_data.json --data-path ~/litewiki
package main

import (
	"context"
	"encoding/json/v2"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/litewiki/litewiki-server/internal/domain"
	"github.com/litewiki/litewiki-server/internal/id"
	"github.com/litewiki/litewiki-server/internal/store"
	"github.com/litewiki/litewiki-server/internal/store/sqlite"
)

const systemUsername = "System"

var (
	filePath = flag.String("file", "papers_data.json", "Path to the papers JSON file")
	dataPath = flag.String("data-path", "", "Wiki data directory (default: ~/litewiki)")
)

// paper is one scraped entry from the papers JSON.
type paper struct {
	Title       string   `json:"title"`
	PageContent string   `json:"pagecontent"`
	Date        string   `json:"date"` // YYYY-MM-DD
	Tags        []string `json:"tags"`
	Page        struct {
		URL string `json:"url"`
	} `json:"page"`
}

// htmlTagPattern matches common HTML tags to detect if a string contains HTML.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote)[\s>/]`)

func main() {
	flag.Parse()

	base := *dataPath
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home directory: %v", err)
		}
		base = home + "/litewiki"
	}
	dbPath := base + "/wiki.db"

	fmt.Printf("Opening database at: %s\n", dbPath)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	st, err := sqlite.Open(dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()

	systemUser, err := ensureSystemUser(ctx, st)
	if err != nil {
		log.Fatalf("Failed to provision System user: %v", err)
	}

	papers, err := loadPapers(*filePath)
	if err != nil {
		log.Fatalf("Failed to load papers: %v", err)
	}
	fmt.Printf("Found %d papers to import.\n", len(papers))

	imported := 0
	skipped := 0

	for i, p := range papers {
		if err := importPaper(ctx, st, systemUser, p); err != nil {
			skipped++
			fmt.Printf("Skipped %q: %v\n", p.Title, err)
		} else {
			imported++
		}

		if (i+1)%50 == 0 {
			fmt.Printf("Progress: %d/%d papers processed\n", i+1, len(papers))
		}
	}

	fmt.Printf("\nImport completed:\n- Imported: %d papers\n- Skipped: %d papers\n", imported, skipped)
}

func loadPapers(path string) ([]paper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var papers []paper
	if err := json.Unmarshal(data, &papers); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return papers, nil
}

// ensureSystemUser returns the System user, creating it on first run.
func ensureSystemUser(ctx context.Context, st store.Store) (*domain.User, error) {
	user, err := st.GetUserByUsername(ctx, systemUsername)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	user = &domain.User{
		ID:        id.MustGenerate("user"),
		Username:  systemUsername,
		Role:      domain.RoleAdmin,
		CreatedAt: time.Now().UTC(),
	}
	if err := st.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func importPaper(ctx context.Context, st store.Store, systemUser *domain.User, p paper) error {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return fmt.Errorf("empty title")
	}

	timestamp, err := time.Parse("2006-01-02", p.Date)
	if err != nil {
		timestamp = time.Now().UTC()
	}

	page := &domain.Page{
		ID:           id.MustGenerate("page"),
		Title:        title,
		Content:      buildContent(p),
		CreatedBy:    systemUser.ID,
		Discoverable: true,
		CreatedAt:    timestamp,
		UpdatedAt:    timestamp,
	}

	tags := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	err = st.CreatePage(ctx, page, tags, []string{systemUsername})
	if errors.Is(err, store.ErrAlreadyExists) {
		return fmt.Errorf("a page with this title already exists")
	}
	return err
}

// buildContent assembles the page body: a title heading, the scraped text
// converted out of HTML when needed, and the source URL as a footer.
func buildContent(p paper) string {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(strings.TrimSpace(p.Title))
	b.WriteString("\n\n")

	if body := strings.TrimSpace(p.PageContent); body != "" {
		b.WriteString(htmlToMarkdown(body))
	}

	if url := strings.TrimSpace(p.Page.URL); url != "" {
		b.WriteString("\n\n---\n*Source: ")
		b.WriteString(url)
		b.WriteString("*")
	}

	return b.String()
}

// htmlToMarkdown converts HTML content to Markdown. Plain text passes
// through unchanged, as does anything the converter rejects.
func htmlToMarkdown(s string) string {
	if !htmlTagPattern.MatchString(strings.ToLower(s)) {
		return s
	}

	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(markdown)
}
