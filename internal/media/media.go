// Package media stores item photos with an image host and returns the URL
// they can be retrieved from.
package media

import (
	"context"
	"io"
)

// Folder is the folder photos are grouped under on the image host.
const Folder = "lost-found"

// AllowedFormats are the photo formats the image host accepts.
var AllowedFormats = []string{"jpg", "png", "jpeg"}

// Upload describes a stored photo.
type Upload struct {
	// URL is the absolute retrieval URL. Empty means the host stored
	// nothing retrievable.
	URL string
	// PublicID identifies the photo for Delete.
	PublicID string
}

// Uploader stores photos.
type Uploader interface {
	// Upload stores the photo read from r. filename carries the extension of
	// the detected format.
	Upload(ctx context.Context, r io.Reader, filename string) (*Upload, error)
	// Delete removes a previously uploaded photo. Deleting a photo that no
	// longer exists is not an error.
	Delete(ctx context.Context, publicID string) error
}
