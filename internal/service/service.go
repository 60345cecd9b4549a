// Package service implements item submission, listing and found reports on
// top of the item store and the media uploader.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/erazemk/lostfound/internal/imaging"
	"github.com/erazemk/lostfound/internal/media"
	"github.com/erazemk/lostfound/internal/metrics"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// Options tune optional behaviour.
type Options struct {
	// MaxImageDimension downscales larger photos before upload; zero disables.
	MaxImageDimension int
	// PersistFoundReports stores found reports. When false they are only
	// acknowledged and the store is left untouched.
	PersistFoundReports bool
}

// Service holds the dependencies of the request handlers. It owns none of
// them; the caller closes the database.
type Service struct {
	db       *sql.DB
	uploader media.Uploader
	logger   *slog.Logger
	opts     Options
}

// New creates a Service.
func New(db *sql.DB, uploader media.Uploader, logger *slog.Logger, opts Options) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:       db,
		uploader: uploader,
		logger:   logger.With("component", "service"),
		opts:     opts,
	}
}

// Submission is an item report as submitted by a client. Image is nil when
// no photo was attached.
type Submission struct {
	Title        string
	Description  string
	Status       string
	Location     string
	SecretDetail string
	Image        io.Reader
}

// FoundSubmission is a report that someone found a lost item.
type FoundSubmission struct {
	ItemID string
	Phone  string
	Image  io.Reader
}

// Submit validates an item report, uploads its photo and stores the item.
// Nothing is uploaded unless every field is present. If the insert fails the
// photo is deleted again.
func (s *Service) Submit(ctx context.Context, sub Submission) (*model.Item, error) {
	title := strings.TrimSpace(sub.Title)
	description := strings.TrimSpace(sub.Description)
	status := strings.TrimSpace(sub.Status)
	location := strings.TrimSpace(sub.Location)

	if title == "" || description == "" || status == "" || location == "" || sub.Image == nil {
		return nil, s.reject("upload", MsgMissingFields)
	}
	if !model.ValidStatus(status) {
		return nil, s.reject("upload", fmt.Sprintf("Invalid status %q", status))
	}
	if len(sub.SecretDetail) > store.MaxSecretLen {
		return nil, s.reject("upload", fmt.Sprintf("Secret detail must be at most %d bytes", store.MaxSecretLen))
	}

	up, err := s.uploadPhoto(ctx, "upload", sub.Image)
	if err != nil {
		return nil, err
	}

	item, err := store.CreateItem(ctx, s.db, store.NewItem{
		Title:       title,
		Description: description,
		Status:      status,
		ImageURL:    up.URL,
		Location:    location,
		Secret:      sub.SecretDetail,
	})
	if err != nil {
		s.logger.Error("failed to insert item", "error", err)
		s.discard(ctx, up)
		return nil, &PersistenceError{Message: MsgDatabase, Err: err}
	}

	metrics.ItemsCreated.WithLabelValues(item.Status).Inc()
	s.logger.Info("item saved", "id", item.ID, "status", item.Status, "title", item.Title)
	return item, nil
}

// List returns stored items newest first. An empty status returns every
// item. The result is never nil.
func (s *Service) List(ctx context.Context, status string) ([]model.Item, error) {
	if status != "" && !model.ValidStatus(status) {
		return nil, &ValidationError{Message: fmt.Sprintf("Invalid status %q", status)}
	}

	items, err := store.ListItems(ctx, s.db, status)
	if err != nil {
		s.logger.Error("failed to list items", "error", err)
		return nil, &PersistenceError{Message: MsgDatabaseFetch, Err: err}
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

// ReportFound validates a found report and uploads its photo. The report is
// stored only when Options.PersistFoundReports is set; otherwise the
// returned report has no id. The item id is not checked against the store.
func (s *Service) ReportFound(ctx context.Context, sub FoundSubmission) (*model.FoundReport, error) {
	itemID := strings.TrimSpace(sub.ItemID)
	phone := strings.TrimSpace(sub.Phone)

	if itemID == "" || phone == "" || sub.Image == nil {
		return nil, s.reject("found-report", MsgMissingFields)
	}
	id, err := strconv.ParseInt(itemID, 10, 64)
	if err != nil || id <= 0 {
		return nil, s.reject("found-report", fmt.Sprintf("Invalid itemId %q", itemID))
	}

	up, err := s.uploadPhoto(ctx, "found-report", sub.Image)
	if err != nil {
		return nil, err
	}

	report := &model.FoundReport{ItemID: id, Phone: phone, FoundImageURL: up.URL}
	if !s.opts.PersistFoundReports {
		metrics.FoundReports.WithLabelValues("acknowledged").Inc()
		s.logger.Info("found report received", "item", id)
		return report, nil
	}

	stored, err := store.CreateFoundReport(ctx, s.db, *report)
	if err != nil {
		s.logger.Error("failed to insert found report", "item", id, "error", err)
		s.discard(ctx, up)
		return nil, &PersistenceError{Message: MsgDatabase, Err: err}
	}
	metrics.FoundReports.WithLabelValues("stored").Inc()
	s.logger.Info("found report saved", "id", stored.ID, "item", id)
	return stored, nil
}

// VerifySecret reports whether secret matches the private detail recorded
// when the item was submitted.
func (s *Service) VerifySecret(ctx context.Context, itemID int64, secret string) (bool, error) {
	if strings.TrimSpace(secret) == "" {
		return false, s.reject("verify", MsgMissingFields)
	}

	ok, err := store.CheckItemSecret(ctx, s.db, itemID, secret)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		s.logger.Error("failed to check item secret", "item", itemID, "error", err)
		return false, &PersistenceError{Message: MsgDatabaseFetch, Err: err}
	}
	return ok, nil
}

// uploadPhoto checks the photo format and hands it to the uploader.
func (s *Service) uploadPhoto(ctx context.Context, op string, r io.Reader) (*media.Upload, error) {
	img, err := imaging.Process(r, s.opts.MaxImageDimension)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupportedFormat) {
			return nil, s.reject(op, "Image must be JPEG or PNG")
		}
		return nil, s.reject(op, "Could not read image")
	}

	up, err := s.uploader.Upload(ctx, img.Reader(), "photo."+img.Ext)
	if err != nil {
		metrics.MediaUploads.WithLabelValues("error").Inc()
		s.logger.Error("image upload failed", "operation", op, "error", err)
		return nil, &UploadError{Err: err}
	}
	if up == nil || up.URL == "" {
		metrics.MediaUploads.WithLabelValues("no_url").Inc()
		if up != nil && up.PublicID != "" {
			s.discard(ctx, up)
		}
		return nil, s.reject(op, MsgMissingFields)
	}

	metrics.MediaUploads.WithLabelValues("ok").Inc()
	return up, nil
}

// discard deletes a photo whose record could not be stored. The delete runs
// even if the request context is already done.
func (s *Service) discard(ctx context.Context, up *media.Upload) {
	if err := s.uploader.Delete(context.WithoutCancel(ctx), up.PublicID); err != nil {
		metrics.OrphanedUploads.Inc()
		s.logger.Error("failed to delete orphaned image", "url", up.URL, "error", err)
	}
}

func (s *Service) reject(op, msg string) *ValidationError {
	metrics.Rejections.WithLabelValues(op).Inc()
	s.logger.Warn("request rejected", "operation", op, "reason", msg)
	return &ValidationError{Message: msg}
}
