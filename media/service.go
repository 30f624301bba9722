// Package media implements upload, listing, and transcription of audio and
// video files.
package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/scribely/scribely/errors"
	"github.com/scribely/scribely/logger"
	"github.com/scribely/scribely/storage"
	"github.com/scribely/scribely/store"
	"github.com/scribely/scribely/transcription"
)

// MediaStore is the persistence contract the media workflow consumes.
// FindByID and FindTranscript return nil (without error) when nothing matches.
type MediaStore interface {
	Create(ctx context.Context, media *store.Media) error
	FindByID(ctx context.Context, id, accountID string) (*store.Media, error)
	ListByAccount(ctx context.Context, accountID string) ([]store.Media, error)
	UpdateStatus(ctx context.Context, id, status string) error
	SaveTranscript(ctx context.Context, transcript *store.Transcript) error
	FindTranscript(ctx context.Context, mediaID string) (*store.Transcript, error)
}

// Service orchestrates media uploads and transcription runs.
type Service struct {
	media    MediaStore
	objects  storage.Storage
	provider transcription.Provider
	log      *logger.Logger
}

// NewService creates the media service.
func NewService(media MediaStore, objects storage.Storage, provider transcription.Provider, log *logger.Logger) *Service {
	return &Service{
		media:    media,
		objects:  objects,
		provider: provider,
		log:      log.WithComponent("media"),
	}
}

// Upload stores the file content and records the media. The object path is
// derived from account and media ids, never from the client-supplied filename.
func (s *Service) Upload(ctx context.Context, accountID, filename, contentType string, size int64, content io.Reader) (*store.Media, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, apperrors.MissingField("file")
	}

	id := uuid.NewString()
	objectPath := path.Join(accountID, id+sanitizeExt(filename))

	if err := s.objects.Upload(ctx, objectPath, content); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("store upload: %w", err))
	}

	m := &store.Media{
		ID:          id,
		AccountID:   accountID,
		Filename:    filepath.Base(filename),
		StoragePath: objectPath,
		Size:        size,
		ContentType: contentType,
		Status:      store.MediaStatusPending,
	}
	if err := s.media.Create(ctx, m); err != nil {
		// Keep storage consistent with the record on failure.
		_ = s.objects.Delete(ctx, objectPath)
		return nil, err
	}

	s.log.Info("Media uploaded", map[string]interface{}{
		logger.FieldAccountID: accountID,
		logger.FieldMediaID:   m.ID,
		"size":                size,
	})
	return m, nil
}

// List returns the account's media, newest first.
func (s *Service) List(ctx context.Context, accountID string) ([]store.Media, error) {
	return s.media.ListByAccount(ctx, accountID)
}

// Get returns a single media owned by the account.
func (s *Service) Get(ctx context.Context, id, accountID string) (*store.Media, error) {
	m, err := s.media.FindByID(ctx, id, accountID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperrors.NotFound("media", id)
	}
	return m, nil
}

// Transcribe runs the transcription provider over a media's stored content
// and persists the resulting transcript. A media that already completed is a
// conflict; a failed or pending one may be (re)run.
func (s *Service) Transcribe(ctx context.Context, id, accountID string) (*store.Transcript, error) {
	m, err := s.Get(ctx, id, accountID)
	if err != nil {
		return nil, err
	}
	if m.Status == store.MediaStatusCompleted {
		return nil, apperrors.Conflict("Media has already been transcribed.")
	}
	if m.Status == store.MediaStatusProcessing {
		return nil, apperrors.Conflict("Media is currently being transcribed.")
	}

	if err := s.media.UpdateStatus(ctx, m.ID, store.MediaStatusProcessing); err != nil {
		return nil, err
	}

	transcript, err := s.runTranscription(ctx, m)
	if err == nil {
		if saveErr := s.media.SaveTranscript(ctx, transcript); saveErr != nil {
			err = saveErr
		} else if statusErr := s.media.UpdateStatus(ctx, m.ID, store.MediaStatusCompleted); statusErr != nil {
			err = statusErr
		}
	}
	if err != nil {
		// A record left in processing would block every retry with a
		// conflict, so persistence failures downgrade to failed too.
		if statusErr := s.media.UpdateStatus(ctx, m.ID, store.MediaStatusFailed); statusErr != nil {
			s.log.Error("Failed to mark media as failed", map[string]interface{}{
				logger.FieldMediaID: m.ID,
				logger.FieldError:   statusErr.Error(),
			})
		}
		return nil, err
	}

	s.log.Info("Media transcribed", map[string]interface{}{
		logger.FieldAccountID: accountID,
		logger.FieldMediaID:   m.ID,
		"provider":            s.provider.Name(),
	})
	return transcript, nil
}

// Transcript returns the stored transcript for a media owned by the account.
func (s *Service) Transcript(ctx context.Context, id, accountID string) (*store.Transcript, error) {
	if _, err := s.Get(ctx, id, accountID); err != nil {
		return nil, err
	}
	transcript, err := s.media.FindTranscript(ctx, id)
	if err != nil {
		return nil, err
	}
	if transcript == nil {
		return nil, apperrors.NotFound("transcript", id)
	}
	return transcript, nil
}

func (s *Service) runTranscription(ctx context.Context, m *store.Media) (*store.Transcript, error) {
	content, err := s.objects.Download(ctx, m.StoragePath)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("read stored media: %w", err))
	}
	defer content.Close()

	result, err := s.provider.Transcribe(ctx, transcription.Request{
		Filename: m.Filename,
		Audio:    content,
	})
	if err != nil {
		return nil, apperrors.ExternalServiceError("transcription", err)
	}

	return &store.Transcript{
		MediaID:         m.ID,
		Text:            result.Text,
		Language:        result.Language,
		DurationSeconds: result.Duration,
	}, nil
}

// sanitizeExt keeps the original extension for the stored object when it is
// a plain one, so operators can tell file types apart on disk.
func sanitizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, r := range ext {
		if r != '.' && (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	if len(ext) > 10 {
		return ""
	}
	return ext
}
