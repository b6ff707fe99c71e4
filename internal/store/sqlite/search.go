package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/litewiki/litewiki-server/internal/domain"
	"github.com/litewiki/litewiki-server/internal/store"
)

// SearchPages performs the filtered substring search over discoverable pages.
//
// queryText, when non-empty, matches case-insensitively as a substring
// against title OR content. The tag list uses OR semantics within itself;
// every supplied filter category combines with AND. Results are ordered by
// updated_at, newest first.
func (s *Store) SearchPages(ctx context.Context, query string, filters store.SearchFilters) ([]*domain.PageSummary, error) {
	var (
		sb     strings.Builder
		where  []string
		params []any
	)

	sb.WriteString(`
		SELECT DISTINCT p.id, p.title, p.content, u.username, p.updated_at
		FROM pages p
		LEFT JOIN users u ON p.created_by = u.id`)

	if len(filters.Tags) > 0 {
		sb.WriteString(`
		JOIN page_tags pt ON p.id = pt.page_id
		JOIN tags t ON pt.tag_id = t.id`)
		placeholders := strings.Repeat("?,", len(filters.Tags)-1) + "?"
		where = append(where, fmt.Sprintf("t.name IN (%s)", placeholders))
		for _, tag := range filters.Tags {
			params = append(params, tag)
		}
	}

	where = append(where, "p.discoverable = 1")

	if filters.AuthorUsername != "" {
		// Matches the page's creating user, not the display-author list.
		where = append(where, "u.username = ?")
		params = append(params, filters.AuthorUsername)
	}

	if filters.DateFrom != nil {
		where = append(where, "p.updated_at >= ?")
		params = append(params, formatTime(*filters.DateFrom))
	}
	if filters.DateTo != nil {
		where = append(where, "p.updated_at <= ?")
		params = append(params, formatTime(*filters.DateTo))
	}

	if query != "" {
		// SQLite LIKE is case-insensitive for ASCII by default.
		where = append(where, `(p.title LIKE ? ESCAPE '\' OR p.content LIKE ? ESCAPE '\')`)
		pattern := "%" + escapeLike(query) + "%"
		params = append(params, pattern, pattern)
	}

	sb.WriteString("\n\t\tWHERE " + strings.Join(where, " AND "))
	sb.WriteString("\n\t\tORDER BY p.updated_at DESC")

	rows, err := s.db.QueryContext(ctx, sb.String(), params...)
	if err != nil {
		return nil, fmt.Errorf("query search: %w", err)
	}
	defer rows.Close()

	return scanPageSummaries(rows, true)
}

// escapeLike escapes LIKE wildcards so user input matches literally.
// Pairs with the ESCAPE '\' clause in the query.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
