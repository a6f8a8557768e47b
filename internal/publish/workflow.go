// Package publish implements the two-phase post submission workflow:
// re-encode the image, upload it as a file object, then create the Post
// record referencing it. The phases are strictly sequential and neither
// is retried; a phase-2 failure leaves the uploaded file orphaned on the
// backend, which is a known gap rather than something this layer hides.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"snapfeed/internal/backend"
	"snapfeed/internal/session"
)

const (
	// uploadName is the fixed object name every image is uploaded under.
	uploadName = "image.jpg"
	// jpegQuality is the fixed re-encode quality.
	jpegQuality = 80
)

var (
	// ErrEmptyImage is returned when submission is attempted with no
	// image bytes. No network call is issued.
	ErrEmptyImage = errors.New("image data is empty")
	// ErrInvalidImage is returned when the image bytes cannot be decoded.
	// No network call is issued.
	ErrInvalidImage = errors.New("image data is not a decodable image")
	// ErrUploadFailed wraps a phase-1 failure; the record was never created.
	ErrUploadFailed = errors.New("image upload failed")
	// ErrRecordCreationFailed wraps a phase-2 failure; the uploaded file
	// is left orphaned on the backend.
	ErrRecordCreationFailed = errors.New("post record creation failed")
)

// Backend is the slice of the backend client the workflow needs.
type Backend interface {
	UploadFile(ctx context.Context, name string, data []byte, contentType string) (*backend.FileRef, error)
	CreatePost(ctx context.Context, draft backend.PostDraft) (*backend.Post, error)
}

// Result is the single-value completion of an asynchronous submission.
type Result struct {
	Post *backend.Post
	Err  error
}

// Workflow orchestrates post submission for the current session's user.
type Workflow struct {
	backend Backend
	current *session.Session
}

// New creates a submission workflow posting as whoever current is logged
// in as.
func New(b Backend, current *session.Session) *Workflow {
	return &Workflow{backend: b, current: current}
}

// Submit publishes a post. imageData is re-encoded as a fixed-quality
// JPEG, uploaded as "image.jpg", and a Post record is created from the
// returned reference, the current user, and the supplied caption and
// location. On success the returned Post is fully materialized with its
// server-assigned identifier and timestamp.
//
// Validation failures (empty or undecodable image, no session) are
// reported before any network call. A single attempt is made per phase;
// the caller decides whether the user retries.
func (w *Workflow) Submit(ctx context.Context, imageData []byte, caption string, location *backend.GeoPoint) (*backend.Post, error) {
	if len(imageData) == 0 {
		return nil, ErrEmptyImage
	}

	author, err := w.current.User()
	if err != nil {
		return nil, err
	}

	encoded, err := reencodeJPEG(imageData)
	if err != nil {
		return nil, err
	}

	// Phase 1: upload the image file.
	ref, err := w.backend.UploadFile(ctx, uploadName, encoded, "image/jpeg")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	// Phase 2: create the record. On failure the file from phase 1 stays
	// behind; no compensating delete is attempted.
	post, err := w.backend.CreatePost(ctx, backend.PostDraft{
		Caption:   caption,
		ImageFile: *ref,
		UserID:    author.ID,
		Location:  location,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecordCreationFailed, err)
	}
	return post, nil
}

// SubmitAsync runs Submit in its own goroutine and delivers the outcome
// exactly once on the returned single-value channel.
func (w *Workflow) SubmitAsync(ctx context.Context, imageData []byte, caption string, location *backend.GeoPoint) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		post, err := w.Submit(ctx, imageData, caption, location)
		ch <- Result{Post: post, Err: err}
	}()
	return ch
}

// reencodeJPEG decodes the source image (JPEG, PNG, or GIF) and encodes
// it back as a JPEG at the fixed quality.
func reencodeJPEG(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
