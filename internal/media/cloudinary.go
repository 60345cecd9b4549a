package media

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Cloudinary uploads photos to a Cloudinary account.
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

var _ Uploader = (*Cloudinary)(nil)

// NewCloudinary creates an uploader for the given account credentials.
func NewCloudinary(cloudName, apiKey, apiSecret string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("configuring cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld, folder: Folder}, nil
}

// Upload sends the photo to Cloudinary and returns its HTTPS URL, which is
// empty if Cloudinary did not report one.
func (c *Cloudinary) Upload(ctx context.Context, r io.Reader, filename string) (*Upload, error) {
	resp, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:         c.folder,
		AllowedFormats: AllowedFormats,
	})
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", filename, err)
	}
	if resp.Error.Message != "" {
		return nil, fmt.Errorf("uploading %s: %s", filename, resp.Error.Message)
	}
	return &Upload{URL: resp.SecureURL, PublicID: resp.PublicID}, nil
}

// Delete destroys the photo with the given public id.
func (c *Cloudinary) Delete(ctx context.Context, publicID string) error {
	resp, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("deleting %s: %w", publicID, err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("deleting %s: %s", publicID, resp.Error.Message)
	}
	return nil
}
