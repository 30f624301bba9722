package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/scribely/scribely/database"
	apperrors "github.com/scribely/scribely/errors"
)

// MediaStore is the GORM-backed repository for uploaded media and transcripts.
type MediaStore struct {
	db *database.DB
}

// NewMediaStore creates the media repository.
func NewMediaStore(db *database.DB) *MediaStore {
	return &MediaStore{db: db}
}

// Create inserts a new media record.
func (s *MediaStore) Create(ctx context.Context, media *Media) error {
	if err := s.db.WithContext(ctx).Create(media).Error; err != nil {
		return apperrors.DatabaseError(err)
	}
	return nil
}

// FindByID returns the media with the given id when owned by accountID,
// or nil when absent. Ownership is part of the lookup so one account can
// never observe another account's media, not even as a 403.
func (s *MediaStore) FindByID(ctx context.Context, id, accountID string) (*Media, error) {
	var media Media
	err := s.db.WithContext(ctx).
		Where("id = ? AND account_id = ?", id, accountID).
		First(&media).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.DatabaseError(err)
	}
	return &media, nil
}

// ListByAccount returns all media owned by accountID, newest first.
func (s *MediaStore) ListByAccount(ctx context.Context, accountID string) ([]Media, error) {
	var media []Media
	err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&media).Error
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return media, nil
}

// UpdateStatus moves a media record to a new processing status.
func (s *MediaStore) UpdateStatus(ctx context.Context, id, status string) error {
	err := s.db.WithContext(ctx).
		Model(&Media{}).
		Where("id = ?", id).
		Update("status", status).Error
	if err != nil {
		return apperrors.DatabaseError(err)
	}
	return nil
}

// SaveTranscript stores the transcription result for a media. A re-run after
// a partially persisted attempt replaces the earlier transcript instead of
// tripping the media_id unique index.
func (s *MediaStore) SaveTranscript(ctx context.Context, transcript *Transcript) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "media_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"text", "language", "duration_seconds"}),
		}).
		Create(transcript).Error
	if err != nil {
		return apperrors.DatabaseError(err)
	}
	return nil
}

// FindTranscript returns the transcript for a media, or nil when none exists.
func (s *MediaStore) FindTranscript(ctx context.Context, mediaID string) (*Transcript, error) {
	var transcript Transcript
	err := s.db.WithContext(ctx).Where("media_id = ?", mediaID).First(&transcript).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.DatabaseError(err)
	}
	return &transcript, nil
}
