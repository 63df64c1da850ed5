package dispatch

import (
	"context"

	"github.com/caesar-ai/caesar-go/internal/retrieval"
)

// RetrievalAPI is the slice of the retrieval service exposed as a tool.
type RetrievalAPI interface {
	Search(ctx context.Context, query string) ([]retrieval.Result, error)
	BuildContext(results []retrieval.Result) string
}

// RegisterRAGTools binds the rag_* tools to the retrieval service.
func RegisterRAGTools(r *Registry, api RetrievalAPI) {
	r.Register(Tool{
		Name:        "rag_search_documents",
		Description: "Searches the ingested document collection and returns the most relevant passages with their sources.",
		Fields:      []string{"query"},
		Handler: func(ctx context.Context, args Args) (string, error) {
			if err := args.Require([]string{"query"}, "query"); err != nil {
				return "", err
			}
			results, err := api.Search(ctx, args.Get("query"))
			if err != nil {
				return "", err
			}
			if len(results) == 0 {
				return retrieval.NoResultsMessage, nil
			}
			return api.BuildContext(results), nil
		},
	})
}
