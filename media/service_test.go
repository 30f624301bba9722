package media

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	apperrors "github.com/scribely/scribely/errors"
	"github.com/scribely/scribely/logger"
	"github.com/scribely/scribely/storage/local"
	"github.com/scribely/scribely/store"
	"github.com/scribely/scribely/transcription"
)

type fakeMediaStore struct {
	mu                sync.Mutex
	items             map[string]*store.Media
	transcripts       map[string]*store.Transcript
	saveTranscriptErr error
}

func newFakeMediaStore() *fakeMediaStore {
	return &fakeMediaStore{
		items:       make(map[string]*store.Media),
		transcripts: make(map[string]*store.Transcript),
	}
}

func (f *fakeMediaStore) Create(_ context.Context, m *store.Media) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *m
	f.items[m.ID] = &copied
	return nil
}

func (f *fakeMediaStore) FindByID(_ context.Context, id, accountID string) (*store.Media, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.items[id]; ok && m.AccountID == accountID {
		copied := *m
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeMediaStore) ListByAccount(_ context.Context, accountID string) ([]store.Media, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.Media
	for _, m := range f.items {
		if m.AccountID == accountID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMediaStore) UpdateStatus(_ context.Context, id, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.items[id]; ok {
		m.Status = status
	}
	return nil
}

func (f *fakeMediaStore) SaveTranscript(_ context.Context, transcript *store.Transcript) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveTranscriptErr != nil {
		return f.saveTranscriptErr
	}
	if transcript.ID == "" {
		transcript.ID = uuid.NewString()
	}
	copied := *transcript
	f.transcripts[transcript.MediaID] = &copied
	return nil
}

func (f *fakeMediaStore) FindTranscript(_ context.Context, mediaID string) (*store.Transcript, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if transcript, ok := f.transcripts[mediaID]; ok {
		copied := *transcript
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeMediaStore) status(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.items[id]; ok {
		return m.Status
	}
	return ""
}

type fixedProvider struct {
	result *transcription.Result
	err    error
}

func (p *fixedProvider) Name() string                     { return "fixed" }
func (p *fixedProvider) IsAvailable(context.Context) bool { return true }
func (p *fixedProvider) Transcribe(context.Context, transcription.Request) (*transcription.Result, error) {
	return p.result, p.err
}

func newTestService(t *testing.T, provider transcription.Provider) (*Service, *fakeMediaStore) {
	t.Helper()
	objects, err := local.NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("local.NewStorage failed: %v", err)
	}
	fake := newFakeMediaStore()
	return NewService(fake, objects, provider, logger.NewDefault("test")), fake
}

func TestUploadAndGet(t *testing.T) {
	svc, _ := newTestService(t, &fixedProvider{})
	ctx := context.Background()

	m, err := svc.Upload(ctx, "account-1", "interview.mp3", "audio/mpeg", 11, strings.NewReader("audio bytes"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if m.Status != store.MediaStatusPending {
		t.Errorf("Status = %q, want %q", m.Status, store.MediaStatusPending)
	}
	if !strings.HasSuffix(m.StoragePath, ".mp3") {
		t.Errorf("StoragePath = %q, want .mp3 suffix", m.StoragePath)
	}
	if strings.Contains(m.StoragePath, "interview") {
		t.Errorf("StoragePath %q derives from the client filename", m.StoragePath)
	}

	got, err := svc.Get(ctx, m.ID, "account-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Filename != "interview.mp3" {
		t.Errorf("Filename = %q, want interview.mp3", got.Filename)
	}

	_, err = svc.Get(ctx, m.ID, "account-2")
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeNotFound {
		t.Errorf("cross-account Get: got %v, want NOT_FOUND", err)
	}
}

func TestUploadRequiresFilename(t *testing.T) {
	svc, _ := newTestService(t, &fixedProvider{})

	_, err := svc.Upload(context.Background(), "account-1", "  ", "", 0, strings.NewReader(""))
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeMissingField {
		t.Errorf("Upload without filename: got %v, want MISSING_FIELD", err)
	}
}

func TestTranscribeLifecycle(t *testing.T) {
	svc, fake := newTestService(t, &fixedProvider{
		result: &transcription.Result{Text: "transcribed", Language: "en", Duration: 3.2},
	})
	ctx := context.Background()

	m, err := svc.Upload(ctx, "account-1", "talk.wav", "audio/wav", 5, strings.NewReader("audio"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	transcript, err := svc.Transcribe(ctx, m.ID, "account-1")
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if transcript.Text != "transcribed" {
		t.Errorf("Text = %q, want transcribed", transcript.Text)
	}
	if fake.status(m.ID) != store.MediaStatusCompleted {
		t.Errorf("status = %q, want %q", fake.status(m.ID), store.MediaStatusCompleted)
	}

	// Repeat runs conflict.
	_, err = svc.Transcribe(ctx, m.ID, "account-1")
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeConflict {
		t.Errorf("repeat Transcribe: got %v, want CONFLICT", err)
	}

	got, err := svc.Transcript(ctx, m.ID, "account-1")
	if err != nil {
		t.Fatalf("Transcript failed: %v", err)
	}
	if got.Text != "transcribed" || got.DurationSeconds != 3.2 {
		t.Errorf("unexpected transcript: %+v", got)
	}
}

func TestTranscribeFailureMarksFailedAndAllowsRetry(t *testing.T) {
	provider := &fixedProvider{err: context.DeadlineExceeded}
	svc, fake := newTestService(t, provider)
	ctx := context.Background()

	m, err := svc.Upload(ctx, "account-1", "talk.wav", "audio/wav", 5, strings.NewReader("audio"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	_, err = svc.Transcribe(ctx, m.ID, "account-1")
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeExternalService {
		t.Fatalf("failed Transcribe: got %v, want EXTERNAL_SERVICE_ERROR", err)
	}
	if fake.status(m.ID) != store.MediaStatusFailed {
		t.Errorf("status = %q, want %q", fake.status(m.ID), store.MediaStatusFailed)
	}

	// A failed run may be retried.
	provider.err = nil
	provider.result = &transcription.Result{Text: "second try"}
	transcript, err := svc.Transcribe(ctx, m.ID, "account-1")
	if err != nil {
		t.Fatalf("retry Transcribe failed: %v", err)
	}
	if transcript.Text != "second try" {
		t.Errorf("Text = %q, want second try", transcript.Text)
	}
}

func TestPersistenceFailureMarksFailedAndAllowsRetry(t *testing.T) {
	svc, fake := newTestService(t, &fixedProvider{
		result: &transcription.Result{Text: "persisted eventually"},
	})
	ctx := context.Background()

	m, err := svc.Upload(ctx, "account-1", "talk.wav", "audio/wav", 5, strings.NewReader("audio"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	// The provider succeeds but the transcript write does not: the media must
	// land in failed, not stay stuck in processing.
	fake.mu.Lock()
	fake.saveTranscriptErr = apperrors.DatabaseError(context.DeadlineExceeded)
	fake.mu.Unlock()

	if _, err := svc.Transcribe(ctx, m.ID, "account-1"); err == nil {
		t.Fatal("Transcribe succeeded despite the transcript write failing")
	}
	if fake.status(m.ID) != store.MediaStatusFailed {
		t.Fatalf("status = %q, want %q", fake.status(m.ID), store.MediaStatusFailed)
	}

	// Once the store recovers, the retry runs to completion.
	fake.mu.Lock()
	fake.saveTranscriptErr = nil
	fake.mu.Unlock()

	transcript, err := svc.Transcribe(ctx, m.ID, "account-1")
	if err != nil {
		t.Fatalf("retry Transcribe failed: %v", err)
	}
	if transcript.Text != "persisted eventually" {
		t.Errorf("Text = %q, want persisted eventually", transcript.Text)
	}
	if fake.status(m.ID) != store.MediaStatusCompleted {
		t.Errorf("status = %q, want %q", fake.status(m.ID), store.MediaStatusCompleted)
	}
}

func TestSanitizeExt(t *testing.T) {
	cases := map[string]string{
		"talk.mp3":      ".mp3",
		"clip.WAV":      ".wav",
		"archive.tar":   ".tar",
		"noext":         "",
		"weird.mp3?":    "",
		"dir/file.ogg":  ".ogg",
		"x.averylongextension": "",
	}
	for input, want := range cases {
		if got := sanitizeExt(input); got != want {
			t.Errorf("sanitizeExt(%q) = %q, want %q", input, got, want)
		}
	}
}
