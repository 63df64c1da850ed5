package dispatch

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/caesar-ai/caesar-go/internal/connectors/google"
)

// DriveAPI is the subset of the Drive connector the dispatcher calls.
type DriveAPI interface {
	ListFiles(ctx context.Context, limit int64) ([]google.File, error)
	SearchFiles(ctx context.Context, query string) ([]google.File, error)
	UploadFile(ctx context.Context, name string, content io.Reader, folderID string) (google.File, error)
	CreateFolder(ctx context.Context, name, parentID string) (google.File, error)
	ShareFile(ctx context.Context, fileID, email, role string) error
}

// RegisterDriveTools binds the google_drive_* tools to a Drive client.
func RegisterDriveTools(r *Registry, api DriveAPI) {
	r.Register(Tool{
		Name:        "google_drive_list_files",
		Description: "Lists recent Drive files, newest first. Optional limit (default 20).",
		Fields:      []string{"limit"},
		Handler: func(ctx context.Context, args Args) (string, error) {
			files, err := api.ListFiles(ctx, int64(args.GetInt("limit", 20)))
			if err != nil {
				return "", err
			}
			return formatFileList(files, "No files found."), nil
		},
	})

	r.Register(Tool{
		Name:        "google_drive_search_files",
		Description: "Searches Drive files by name.",
		Fields:      []string{"query"},
		Handler: func(ctx context.Context, args Args) (string, error) {
			if err := args.Require([]string{"query"}, "query"); err != nil {
				return "", err
			}
			files, err := api.SearchFiles(ctx, args.Get("query"))
			if err != nil {
				return "", err
			}
			return formatFileList(files, fmt.Sprintf("No files matching %q.", args.Get("query"))), nil
		},
	})

	r.Register(Tool{
		Name:        "google_drive_upload_file",
		Description: "Uploads a text document to Drive. Takes a file name, the text content, and an optional parent folder id.",
		Fields:      []string{"name", "content", "folder_id"},
		Handler: func(ctx context.Context, args Args) (string, error) {
			if err := args.Require([]string{"name", "content", "folder_id"}, "name", "content"); err != nil {
				return "", err
			}
			f, err := api.UploadFile(ctx, args.Get("name"), strings.NewReader(args.Get("content")), args.Get("folder_id"))
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Uploaded %q [id: %s] %s", f.Name, f.ID, f.WebLink), nil
		},
	})

	r.Register(Tool{
		Name:        "google_drive_create_folder",
		Description: "Creates a Drive folder, optionally inside a parent folder.",
		Fields:      []string{"name", "parent_id"},
		Handler: func(ctx context.Context, args Args) (string, error) {
			if err := args.Require([]string{"name", "parent_id"}, "name"); err != nil {
				return "", err
			}
			f, err := api.CreateFolder(ctx, args.Get("name"), args.Get("parent_id"))
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Created folder %q [id: %s]", f.Name, f.ID), nil
		},
	})

	r.Register(Tool{
		Name:        "google_drive_share_file",
		Description: "Shares a Drive file with an email address. Role is reader, commenter, or writer (default reader).",
		Fields:      []string{"file_id", "email", "role"},
		Handler: func(ctx context.Context, args Args) (string, error) {
			if err := args.Require([]string{"file_id", "email", "role"}, "file_id", "email"); err != nil {
				return "", err
			}
			if err := api.ShareFile(ctx, args.Get("file_id"), args.Get("email"), args.Get("role")); err != nil {
				return "", err
			}
			return fmt.Sprintf("Shared file %s with %s.", args.Get("file_id"), args.Get("email")), nil
		},
	})
}

func formatFileList(files []google.File, empty string) string {
	if len(files) == 0 {
		return empty
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d file(s):\n", len(files))
	for _, f := range files {
		fmt.Fprintf(&sb, "- %s (%s) [id: %s]\n", f.Name, f.MimeType, f.ID)
	}
	return strings.TrimRight(sb.String(), "\n")
}
