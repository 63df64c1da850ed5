package notion

import (
	"testing"

	"github.com/jomei/notionapi"
)

func TestPageTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		props notionapi.Properties
		want  string
	}{
		{
			name: "implicit title key",
			props: notionapi.Properties{
				"title": &notionapi.TitleProperty{
					Title: []notionapi.RichText{{PlainText: "Meeting notes"}},
				},
			},
			want: "Meeting notes",
		},
		{
			name: "Name column",
			props: notionapi.Properties{
				"Name": &notionapi.TitleProperty{
					Title: []notionapi.RichText{{PlainText: "Roadmap"}},
				},
			},
			want: "Roadmap",
		},
		{
			name:  "no title property",
			props: notionapi.Properties{},
			want:  "(untitled)",
		},
		{
			name: "empty title text",
			props: notionapi.Properties{
				"title": &notionapi.TitleProperty{Title: nil},
			},
			want: "(untitled)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			page := notionapi.Page{Properties: tt.props}
			if got := pageTitle(page); got != tt.want {
				t.Errorf("pageTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRichTextPlain(t *testing.T) {
	t.Parallel()

	got := richTextPlain([]notionapi.RichText{
		{PlainText: "Hello "},
		{Text: &notionapi.Text{Content: "world"}},
	})
	if got != "Hello world" {
		t.Errorf("richTextPlain() = %q", got)
	}
}

func TestPageURL(t *testing.T) {
	t.Parallel()

	page := notionapi.Page{ID: "6f1c2f0a-8df1-4e6e-9c40-2f8e7a9c1b11"}
	want := "https://www.notion.so/6f1c2f0a8df14e6e9c402f8e7a9c1b11"
	if got := pageURL(page); got != want {
		t.Errorf("pageURL() = %q, want %q", got, want)
	}
}
