// Package notion wraps the Notion API for the tool dispatch layer.
// It exposes the handful of operations the assistant needs (database
// queries, page creation, search, block appends) behind a small client
// so dispatch handlers stay testable.
package notion

import (
	"context"
	"fmt"
	"strings"

	"github.com/jomei/notionapi"
)

// PageSummary is the trimmed page view returned to tool handlers.
type PageSummary struct {
	// ID is the Notion page ID.
	ID string
	// Title is the page title, or "(untitled)" when absent.
	Title string
	// URL is the public notion.so URL for the page.
	URL string
}

// Client wraps the Notion API client.
type Client struct {
	api *notionapi.Client
}

// New constructs a Client from an integration token.
func New(apiKey string) *Client {
	return &Client{api: notionapi.NewClient(notionapi.Token(apiKey))}
}

// QueryDatabase returns up to pageSize entries of a database, following
// cursors until the limit is reached.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, pageSize int) ([]PageSummary, error) {
	if pageSize <= 0 {
		pageSize = 100
	}

	var pages []PageSummary
	req := &notionapi.DatabaseQueryRequest{PageSize: pageSize}
	for {
		resp, err := c.api.Database.Query(ctx, notionapi.DatabaseID(databaseID), req)
		if err != nil {
			return nil, fmt.Errorf("notion: query database %s: %w", databaseID, err)
		}
		for _, page := range resp.Results {
			pages = append(pages, summarize(page))
			if len(pages) >= pageSize {
				return pages, nil
			}
		}
		if !resp.HasMore {
			return pages, nil
		}
		req.StartCursor = resp.NextCursor
	}
}

// CreatePage creates a page under the given parent page with a title and
// a single paragraph of content.
func (c *Client) CreatePage(ctx context.Context, parentPageID, title, content string) (PageSummary, error) {
	req := &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:   notionapi.ParentTypePageID,
			PageID: notionapi.PageID(parentPageID),
		},
		Properties: notionapi.Properties{
			"title": notionapi.TitleProperty{
				Title: []notionapi.RichText{{Text: &notionapi.Text{Content: title}}},
			},
		},
	}
	if content != "" {
		req.Children = []notionapi.Block{paragraphBlock(content)}
	}

	page, err := c.api.Page.Create(ctx, req)
	if err != nil {
		return PageSummary{}, fmt.Errorf("notion: create page %q: %w", title, err)
	}
	return summarize(*page), nil
}

// SearchPages returns pages whose titles match the query.
func (c *Client) SearchPages(ctx context.Context, query string) ([]PageSummary, error) {
	resp, err := c.api.Search.Do(ctx, &notionapi.SearchRequest{
		Query: query,
		Filter: notionapi.SearchFilter{
			Value:    "page",
			Property: "object",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("notion: search %q: %w", query, err)
	}

	var pages []PageSummary
	for _, obj := range resp.Results {
		if page, ok := obj.(*notionapi.Page); ok {
			pages = append(pages, summarize(*page))
		}
	}
	return pages, nil
}

// AppendParagraph appends a paragraph block to a page or block.
func (c *Client) AppendParagraph(ctx context.Context, blockID, text string) error {
	_, err := c.api.Block.AppendChildren(ctx, notionapi.BlockID(blockID), &notionapi.AppendBlockChildrenRequest{
		Children: []notionapi.Block{paragraphBlock(text)},
	})
	if err != nil {
		return fmt.Errorf("notion: append to %s: %w", blockID, err)
	}
	return nil
}

// paragraphBlock builds a plain paragraph block.
func paragraphBlock(text string) notionapi.Block {
	return &notionapi.ParagraphBlock{
		BasicBlock: notionapi.BasicBlock{
			Object: notionapi.ObjectTypeBlock,
			Type:   notionapi.BlockTypeParagraph,
		},
		Paragraph: notionapi.Paragraph{
			RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: text}}},
		},
	}
}

// summarize trims a page to the fields tool handlers report.
func summarize(page notionapi.Page) PageSummary {
	return PageSummary{
		ID:    string(page.ID),
		Title: pageTitle(page),
		URL:   pageURL(page),
	}
}

// pageTitle extracts the title property, checking the implicit "title"
// key first and the conventional "Name" column second.
func pageTitle(page notionapi.Page) string {
	for _, key := range []string{"title", "Name", "Title"} {
		prop, ok := page.Properties[key]
		if !ok {
			continue
		}
		if tp, ok := prop.(*notionapi.TitleProperty); ok {
			if title := richTextPlain(tp.Title); title != "" {
				return title
			}
		}
	}
	return "(untitled)"
}

// pageURL derives the notion.so URL from the page ID.
func pageURL(page notionapi.Page) string {
	return "https://www.notion.so/" + strings.ReplaceAll(string(page.ID), "-", "")
}

// richTextPlain joins the plain text of a rich text array.
func richTextPlain(rts []notionapi.RichText) string {
	var parts []string
	for _, rt := range rts {
		if rt.PlainText != "" {
			parts = append(parts, rt.PlainText)
		} else if rt.Text != nil {
			parts = append(parts, rt.Text.Content)
		}
	}
	return strings.TrimSpace(strings.Join(parts, ""))
}
