package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PathPrefix is the URL path locally stored photos are served under.
const PathPrefix = "/media/"

// Local stores photos in a directory and serves them over HTTP. It stands in
// for the image host when no credentials are configured.
type Local struct {
	dir     string
	baseURL string
}

var _ Uploader = (*Local)(nil)

// NewLocal creates the directory if needed. baseURL is the externally
// reachable server URL, without a trailing slash.
func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating media directory %s: %w", dir, err)
	}
	return &Local{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Upload writes the photo under a random name. The file appears atomically:
// it is written to a temp file and renamed into place.
func (l *Local) Upload(ctx context.Context, r io.Reader, filename string) (*Upload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if !allowedExt(ext) {
		return nil, fmt.Errorf("uploading %s: format %q not allowed", filename, ext)
	}

	name := uuid.NewString() + "." + ext
	full := filepath.Join(l.dir, name)
	tmp := full + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return nil, fmt.Errorf("writing %s: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return nil, fmt.Errorf("syncing %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("closing %s: %w", name, err)
	}
	if err := os.Rename(tmp, full); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("renaming %s: %w", name, err)
	}

	return &Upload{URL: l.baseURL + PathPrefix + name, PublicID: name}, nil
}

// Delete removes a stored photo.
func (l *Local) Delete(_ context.Context, publicID string) error {
	if publicID == "" || publicID != filepath.Base(publicID) {
		return fmt.Errorf("deleting %q: invalid id", publicID)
	}
	err := os.Remove(filepath.Join(l.dir, publicID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting %s: %w", publicID, err)
	}
	return nil
}

// Handler serves stored photos. Mount it under PathPrefix.
func (l *Local) Handler() http.Handler {
	return http.StripPrefix(PathPrefix, http.FileServer(http.Dir(l.dir)))
}

func allowedExt(ext string) bool {
	for _, f := range AllowedFormats {
		if f == ext {
			return true
		}
	}
	return false
}
