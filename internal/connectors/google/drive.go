package google

import (
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

const folderMimeType = "application/vnd.google-apps.folder"

// File is a trimmed view of a Drive file for tool output.
type File struct {
	ID       string
	Name     string
	MimeType string
	WebLink  string
	Modified string
}

// DriveClient exposes the Drive operations the assistant can perform.
type DriveClient struct {
	svc *drive.Service
}

// NewDriveClient wraps an already constructed Drive service.
func NewDriveClient(svc *drive.Service) *DriveClient {
	return &DriveClient{svc: svc}
}

// ListFiles returns up to limit recent files, newest first.
func (c *DriveClient) ListFiles(ctx context.Context, limit int64) ([]File, error) {
	if limit <= 0 {
		limit = 20
	}
	resp, err := c.svc.Files.List().
		PageSize(limit).
		OrderBy("modifiedTime desc").
		Q("trashed = false").
		Fields("files(id, name, mimeType, webViewLink, modifiedTime)").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("google: list drive files: %w", err)
	}
	return toFiles(resp.Files), nil
}

// SearchFiles finds non-trashed files whose name contains the query.
func (c *DriveClient) SearchFiles(ctx context.Context, query string) ([]File, error) {
	q := fmt.Sprintf("name contains '%s' and trashed = false", escapeDriveQuery(query))
	resp, err := c.svc.Files.List().
		PageSize(20).
		Q(q).
		Fields("files(id, name, mimeType, webViewLink, modifiedTime)").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("google: search drive files %q: %w", query, err)
	}
	return toFiles(resp.Files), nil
}

// UploadFile uploads content under the given name. An empty folderID
// places the file in the Drive root.
func (c *DriveClient) UploadFile(ctx context.Context, name string, content io.Reader, folderID string) (File, error) {
	meta := &drive.File{Name: name}
	if folderID != "" {
		meta.Parents = []string{folderID}
	}
	created, err := c.svc.Files.Create(meta).
		Media(content, googleapi.ContentType("application/octet-stream")).
		Fields("id, name, mimeType, webViewLink, modifiedTime").
		Context(ctx).Do()
	if err != nil {
		return File{}, fmt.Errorf("google: upload %q: %w", name, err)
	}
	return toFile(created), nil
}

// CreateFolder creates a folder, optionally under parentID.
func (c *DriveClient) CreateFolder(ctx context.Context, name, parentID string) (File, error) {
	meta := &drive.File{Name: name, MimeType: folderMimeType}
	if parentID != "" {
		meta.Parents = []string{parentID}
	}
	created, err := c.svc.Files.Create(meta).
		Fields("id, name, mimeType, webViewLink, modifiedTime").
		Context(ctx).Do()
	if err != nil {
		return File{}, fmt.Errorf("google: create folder %q: %w", name, err)
	}
	return toFile(created), nil
}

// ShareFile grants the email address access to a file. Role is one of
// reader, commenter, writer; empty defaults to reader.
func (c *DriveClient) ShareFile(ctx context.Context, fileID, email, role string) error {
	if role == "" {
		role = "reader"
	}
	perm := &drive.Permission{
		Type:         "user",
		Role:         role,
		EmailAddress: email,
	}
	_, err := c.svc.Permissions.Create(fileID, perm).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("google: share file %s with %s: %w", fileID, email, err)
	}
	return nil
}

func toFiles(in []*drive.File) []File {
	out := make([]File, 0, len(in))
	for _, f := range in {
		out = append(out, toFile(f))
	}
	return out
}

func toFile(f *drive.File) File {
	return File{
		ID:       f.Id,
		Name:     f.Name,
		MimeType: f.MimeType,
		WebLink:  f.WebViewLink,
		Modified: f.ModifiedTime,
	}
}

// escapeDriveQuery escapes characters that would terminate a Drive
// query string literal.
func escapeDriveQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
