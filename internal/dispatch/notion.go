package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/caesar-ai/caesar-go/internal/connectors/notion"
)

// NotionAPI is the subset of the Notion connector the dispatcher calls.
type NotionAPI interface {
	QueryDatabase(ctx context.Context, databaseID string, limit int) ([]notion.PageSummary, error)
	CreatePage(ctx context.Context, parentID, title, content string) (notion.PageSummary, error)
	SearchPages(ctx context.Context, query string) ([]notion.PageSummary, error)
	AppendParagraph(ctx context.Context, blockID, text string) error
}

// RegisterNotionTools binds the notion_* tools to a Notion client.
// defaultDatabaseID is used when a query omits the database id; it may
// be empty.
func RegisterNotionTools(r *Registry, api NotionAPI, defaultDatabaseID string) {
	r.Register(Tool{
		Name:        "notion_query_database",
		Description: "Lists pages in a Notion database. Database id optional when a default is configured.",
		Fields:      []string{"database_id", "limit"},
		Handler: func(ctx context.Context, args Args) (string, error) {
			dbID := args.Get("database_id")
			if dbID == "" {
				dbID = defaultDatabaseID
			}
			if dbID == "" {
				return "", fmt.Errorf("missing %q: no default database configured", "database_id")
			}
			pages, err := api.QueryDatabase(ctx, dbID, args.GetInt("limit", 20))
			if err != nil {
				return "", err
			}
			return formatPageList(pages, "Database is empty."), nil
		},
	})

	r.Register(Tool{
		Name:        "notion_create_page",
		Description: "Creates a Notion page under a parent page, with a title and optional body paragraph.",
		Fields:      []string{"parent_id", "title", "content"},
		Handler: func(ctx context.Context, args Args) (string, error) {
			if err := args.Require([]string{"parent_id", "title", "content"}, "parent_id", "title"); err != nil {
				return "", err
			}
			page, err := api.CreatePage(ctx, args.Get("parent_id"), args.Get("title"), args.Get("content"))
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Created page %q %s", page.Title, page.URL), nil
		},
	})

	r.Register(Tool{
		Name:        "notion_search_pages",
		Description: "Searches Notion pages by title.",
		Fields:      []string{"query"},
		Handler: func(ctx context.Context, args Args) (string, error) {
			if err := args.Require([]string{"query"}, "query"); err != nil {
				return "", err
			}
			pages, err := api.SearchPages(ctx, args.Get("query"))
			if err != nil {
				return "", err
			}
			return formatPageList(pages, fmt.Sprintf("No pages matching %q.", args.Get("query"))), nil
		},
	})

	r.Register(Tool{
		Name:        "notion_append_paragraph",
		Description: "Appends a paragraph of text to a Notion page or block.",
		Fields:      []string{"block_id", "text"},
		Handler: func(ctx context.Context, args Args) (string, error) {
			if err := args.Require([]string{"block_id", "text"}, "block_id", "text"); err != nil {
				return "", err
			}
			if err := api.AppendParagraph(ctx, args.Get("block_id"), args.Get("text")); err != nil {
				return "", err
			}
			return fmt.Sprintf("Appended paragraph to %s.", args.Get("block_id")), nil
		},
	})
}

func formatPageList(pages []notion.PageSummary, empty string) string {
	if len(pages) == 0 {
		return empty
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d page(s):\n", len(pages))
	for _, p := range pages {
		fmt.Fprintf(&sb, "- %s %s\n", p.Title, p.URL)
	}
	return strings.TrimRight(sb.String(), "\n")
}
