package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/media"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// fakeUploader records uploads and deletes in memory.
type fakeUploader struct {
	mu      sync.Mutex
	fail    error
	noURL   bool
	uploads []string
	deleted []string
}

func (f *fakeUploader) Upload(_ context.Context, r io.Reader, filename string) (*media.Upload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, err
	}
	id := filename + "-" + string(rune('a'+len(f.uploads)))
	f.uploads = append(f.uploads, id)
	if f.noURL {
		return &media.Upload{PublicID: id}, nil
	}
	return &media.Upload{URL: "https://res.example.com/lost-found/" + id, PublicID: id}, nil
}

func (f *fakeUploader) Delete(_ context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, publicID)
	return nil
}

func testJPEG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8)), nil))
	return buf.Bytes()
}

func newTestService(t *testing.T, opts Options) (*Service, *fakeUploader) {
	t.Helper()
	up := &fakeUploader{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(db.NewTestDB(t), up, logger, opts), up
}

func wallet(t *testing.T) Submission {
	return Submission{
		Title:       "Wallet",
		Description: "Black leather",
		Status:      model.StatusLost,
		Location:    "Library",
		Image:       bytes.NewReader(testJPEG(t)),
	}
}

func TestSubmitStoresItem(t *testing.T) {
	svc, up := newTestService(t, Options{})
	ctx := context.Background()

	item, err := svc.Submit(ctx, wallet(t))
	require.NoError(t, err)

	assert.Equal(t, int64(1), item.ID)
	assert.Equal(t, "Wallet", item.Title)
	assert.Equal(t, "Black leather", item.Description)
	assert.Equal(t, model.StatusLost, item.Status)
	assert.Equal(t, "Library", item.Location)
	assert.True(t, strings.HasPrefix(item.ImageURL, "https://"), item.ImageURL)
	assert.Len(t, up.uploads, 1)

	items, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, item.ID, items[0].ID)
}

func TestSubmitMissingFieldsStoresNothing(t *testing.T) {
	blank := map[string]func(*Submission){
		"title":       func(s *Submission) { s.Title = "" },
		"description": func(s *Submission) { s.Description = "  " },
		"status":      func(s *Submission) { s.Status = "" },
		"location":    func(s *Submission) { s.Location = "" },
		"image":       func(s *Submission) { s.Image = nil },
	}

	for field, blankOut := range blank {
		t.Run(field, func(t *testing.T) {
			svc, up := newTestService(t, Options{})
			sub := wallet(t)
			blankOut(&sub)

			_, err := svc.Submit(context.Background(), sub)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, MsgMissingFields, verr.Message)
			assert.Equal(t, http.StatusBadRequest, StatusCode(err))
			assert.Empty(t, up.uploads, "nothing should be uploaded")

			n, err := store.CountItems(context.Background(), svc.db)
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestSubmitRejectsUnknownStatus(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	sub := wallet(t)
	sub.Status = "stolen"

	_, err := svc.Submit(context.Background(), sub)
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
}

func TestSubmitRejectsNonImage(t *testing.T) {
	svc, up := newTestService(t, Options{})
	sub := wallet(t)
	sub.Image = strings.NewReader("GIF89a not allowed")

	_, err := svc.Submit(context.Background(), sub)
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
	assert.Empty(t, up.uploads)
}

func TestSubmitUploadFailure(t *testing.T) {
	svc, up := newTestService(t, Options{})
	up.fail = errors.New("host unreachable")

	_, err := svc.Submit(context.Background(), wallet(t))

	var uerr *UploadError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
	assert.Equal(t, MsgUpload, PublicMessage(err))

	n, _ := store.CountItems(context.Background(), svc.db)
	assert.Zero(t, n)
}

func TestSubmitUploadWithoutURL(t *testing.T) {
	svc, up := newTestService(t, Options{})
	up.noURL = true

	_, err := svc.Submit(context.Background(), wallet(t))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
	assert.Equal(t, MsgMissingFields, PublicMessage(err))
	assert.Equal(t, up.uploads, up.deleted, "a photo without URL is not kept")

	n, _ := store.CountItems(context.Background(), svc.db)
	assert.Zero(t, n)
}

func TestSubmitRejectsLongSecretBeforeUpload(t *testing.T) {
	svc, up := newTestService(t, Options{})
	sub := wallet(t)
	sub.SecretDetail = strings.Repeat("a", store.MaxSecretLen+8)

	_, err := svc.Submit(context.Background(), sub)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
	assert.Empty(t, up.uploads)
	assert.Empty(t, up.deleted)

	sub = wallet(t)
	sub.SecretDetail = strings.Repeat("a", store.MaxSecretLen)
	item, err := svc.Submit(context.Background(), sub)
	require.NoError(t, err)

	ok, err := svc.VerifySecret(context.Background(), item.ID, strings.Repeat("a", store.MaxSecretLen+8))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSubmitInsertFailureDeletesUpload(t *testing.T) {
	svc, up := newTestService(t, Options{})
	require.NoError(t, svc.db.Close())

	_, err := svc.Submit(context.Background(), wallet(t))

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
	assert.Equal(t, MsgDatabase, PublicMessage(err))
	assert.NotContains(t, PublicMessage(err), "closed")

	require.Len(t, up.uploads, 1)
	assert.Equal(t, up.uploads, up.deleted)
}

func TestSubmitIDsIncrease(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()

	var last int64
	for i := 0; i < 5; i++ {
		item, err := svc.Submit(ctx, wallet(t))
		require.NoError(t, err)
		assert.Greater(t, item.ID, last)
		last = item.ID
	}

	items, err := svc.List(ctx, "")
	require.NoError(t, err)
	for i := 1; i < len(items); i++ {
		assert.Greater(t, items[i-1].ID, items[i].ID)
	}
}

func TestSubmitHashesSecretDetail(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()
	sub := wallet(t)
	sub.SecretDetail = "library card in the inner pocket"

	item, err := svc.Submit(ctx, sub)
	require.NoError(t, err)

	ok, err := svc.VerifySecret(ctx, item.ID, "library card in the inner pocket")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.VerifySecret(ctx, item.ID, "bus pass")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.VerifySecret(ctx, 404, "x")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, http.StatusNotFound, StatusCode(err))

	_, err = svc.VerifySecret(ctx, item.ID, "")
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
}

func TestListEmptyAndFiltered(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()

	items, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	found := wallet(t)
	found.Status = model.StatusFound
	_, err = svc.Submit(ctx, wallet(t))
	require.NoError(t, err)
	_, err = svc.Submit(ctx, found)
	require.NoError(t, err)

	lost, err := svc.List(ctx, model.StatusLost)
	require.NoError(t, err)
	require.Len(t, lost, 1)
	assert.Equal(t, model.StatusLost, lost[0].Status)

	_, err = svc.List(ctx, "stolen")
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
}

func TestListStoreFailure(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	require.NoError(t, svc.db.Close())

	_, err := svc.List(context.Background(), "")
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
	assert.Equal(t, MsgDatabaseFetch, PublicMessage(err))
}

func TestReportFoundLeavesStoreUntouched(t *testing.T) {
	svc, up := newTestService(t, Options{})
	ctx := context.Background()

	_, err := svc.Submit(ctx, wallet(t))
	require.NoError(t, err)
	before, _ := store.CountItems(ctx, svc.db)

	report, err := svc.ReportFound(ctx, FoundSubmission{
		ItemID: "1",
		Phone:  "+386 40 123 456",
		Image:  bytes.NewReader(testJPEG(t)),
	})
	require.NoError(t, err)
	assert.Zero(t, report.ID, "acknowledged reports are not stored")
	assert.Equal(t, int64(1), report.ItemID)
	assert.NotEmpty(t, report.FoundImageURL)
	assert.Len(t, up.uploads, 2)

	after, _ := store.CountItems(ctx, svc.db)
	assert.Equal(t, before, after)
	reports, _ := store.CountFoundReports(ctx, svc.db)
	assert.Zero(t, reports)
}

func TestReportFoundPersisted(t *testing.T) {
	svc, _ := newTestService(t, Options{PersistFoundReports: true})
	ctx := context.Background()

	// The item does not need to exist.
	report, err := svc.ReportFound(ctx, FoundSubmission{
		ItemID: "12",
		Phone:  "+386 40 123 456",
		Image:  bytes.NewReader(testJPEG(t)),
	})
	require.NoError(t, err)
	assert.NotZero(t, report.ID)

	stored, err := store.ListFoundReports(ctx, svc.db, 12)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "+386 40 123 456", stored[0].Phone)
}

func TestReportFoundValidation(t *testing.T) {
	svc, up := newTestService(t, Options{})
	ctx := context.Background()

	cases := map[string]FoundSubmission{
		"missing item":  {Phone: "1", Image: bytes.NewReader(testJPEG(t))},
		"missing phone": {ItemID: "1", Image: bytes.NewReader(testJPEG(t))},
		"missing image": {ItemID: "1", Phone: "1"},
		"bad item id":   {ItemID: "wallet", Phone: "1", Image: bytes.NewReader(testJPEG(t))},
		"zero item id":  {ItemID: "0", Phone: "1", Image: bytes.NewReader(testJPEG(t))},
	}
	for name, sub := range cases {
		_, err := svc.ReportFound(ctx, sub)
		assert.Equal(t, http.StatusBadRequest, StatusCode(err), name)
	}
	assert.Empty(t, up.uploads)
}
