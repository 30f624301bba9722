package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/scribely/scribely/auth"
	"github.com/scribely/scribely/auth/jwt"
	"github.com/scribely/scribely/auth/password"
	apperrors "github.com/scribely/scribely/errors"
	"github.com/scribely/scribely/logger"
	"github.com/scribely/scribely/media"
	"github.com/scribely/scribely/server/middleware"
	"github.com/scribely/scribely/storage/local"
	"github.com/scribely/scribely/store"
	"github.com/scribely/scribely/transcription"
)

// --- in-memory fakes ---

type memAccounts struct {
	mu      sync.Mutex
	byEmail map[string]*store.Account
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byEmail: make(map[string]*store.Account)}
}

func (m *memAccounts) Create(_ context.Context, account *store.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byEmail[account.Email]; exists {
		return apperrors.AlreadyExists("account")
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	copied := *account
	m.byEmail[account.Email] = &copied
	return nil
}

func (m *memAccounts) FindByEmail(_ context.Context, email string) (*store.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if account, ok := m.byEmail[email]; ok {
		copied := *account
		return &copied, nil
	}
	return nil, nil
}

func (m *memAccounts) FindByID(_ context.Context, id string) (*store.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.byEmail {
		if account.ID == id {
			copied := *account
			return &copied, nil
		}
	}
	return nil, nil
}

type memMedia struct {
	mu          sync.Mutex
	items       map[string]*store.Media
	transcripts map[string]*store.Transcript
}

func newMemMedia() *memMedia {
	return &memMedia{
		items:       make(map[string]*store.Media),
		transcripts: make(map[string]*store.Transcript),
	}
}

func (m *memMedia) Create(_ context.Context, media *store.Media) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *media
	m.items[media.ID] = &copied
	return nil
}

func (m *memMedia) FindByID(_ context.Context, id, accountID string) (*store.Media, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.items[id]; ok && item.AccountID == accountID {
		copied := *item
		return &copied, nil
	}
	return nil, nil
}

func (m *memMedia) ListByAccount(_ context.Context, accountID string) ([]store.Media, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.Media
	for _, item := range m.items {
		if item.AccountID == accountID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (m *memMedia) UpdateStatus(_ context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.items[id]; ok {
		item.Status = status
	}
	return nil
}

func (m *memMedia) SaveTranscript(_ context.Context, transcript *store.Transcript) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if transcript.ID == "" {
		transcript.ID = uuid.NewString()
	}
	copied := *transcript
	m.transcripts[transcript.MediaID] = &copied
	return nil
}

func (m *memMedia) FindTranscript(_ context.Context, mediaID string) (*store.Transcript, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if transcript, ok := m.transcripts[mediaID]; ok {
		copied := *transcript
		return &copied, nil
	}
	return nil, nil
}

type stubProvider struct {
	text string
	err  error
}

func (p *stubProvider) Name() string                            { return "stub" }
func (p *stubProvider) IsAvailable(context.Context) bool        { return true }
func (p *stubProvider) Transcribe(_ context.Context, _ transcription.Request) (*transcription.Result, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &transcription.Result{Text: p.text, Language: "en", Duration: 1.5}, nil
}

// --- test harness ---

func testEngine(t *testing.T, provider transcription.Provider) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewDefault("test")

	tokens, err := jwt.NewService(&jwt.Config{Secret: "api-test-secret"})
	if err != nil {
		t.Fatalf("jwt.NewService failed: %v", err)
	}
	hasher := password.NewBcryptHasher(password.WithCost(4))
	authService := auth.NewService(newMemAccounts(), hasher, tokens, log)

	objects, err := local.NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("local.NewStorage failed: %v", err)
	}
	mediaService := media.NewService(newMemMedia(), objects, provider, log)

	engine := gin.New()
	guard := middleware.Auth(tokens, log)
	RegisterRoutes(engine, NewAuthHandler(authService), NewMediaHandler(mediaService), guard)
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

// --- auth walkthrough ---

func TestAuthWalkthrough(t *testing.T) {
	engine := testEngine(t, &stubProvider{text: "hello"})
	creds := map[string]string{"email": "a@b.com", "password": "hunter2hunter2"}

	// Register.
	rec := doJSON(t, engine, http.MethodPost, "/auth/register", "", creds)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want 201 (body: %s)", rec.Code, rec.Body.String())
	}
	var registered struct {
		Message string `json:"message"`
		User    struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &registered); err != nil {
		t.Fatalf("unmarshal register response: %v", err)
	}
	if registered.Message == "" || registered.User.ID == "" || registered.User.Email != "a@b.com" {
		t.Fatalf("unexpected register response: %s", rec.Body.String())
	}
	if strings.Contains(strings.ToLower(rec.Body.String()), "hash") {
		t.Errorf("register response leaks hash material: %s", rec.Body.String())
	}

	// Duplicate register.
	rec = doJSON(t, engine, http.MethodPost, "/auth/register", "", creds)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register status = %d, want 409", rec.Code)
	}

	// Login.
	rec = doJSON(t, engine, http.MethodPost, "/auth/login", "", creds)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	var logged struct {
		AccessToken string `json:"access_token"`
		User        struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &logged); err != nil {
		t.Fatalf("unmarshal login response: %v", err)
	}
	if logged.AccessToken == "" {
		t.Fatal("login returned an empty access_token")
	}
	if logged.User.ID != registered.User.ID {
		t.Errorf("login user id = %q, want %q", logged.User.ID, registered.User.ID)
	}

	// Wrong password.
	rec = doJSON(t, engine, http.MethodPost, "/auth/login", "",
		map[string]string{"email": "a@b.com", "password": "wrong-password!"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d, want 401", rec.Code)
	}

	// Current user.
	rec = doJSON(t, engine, http.MethodGet, "/auth/me", logged.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	var me struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
		t.Fatalf("unmarshal me response: %v", err)
	}
	if me.ID != registered.User.ID || me.Email != "a@b.com" {
		t.Errorf("unexpected me response: %s", rec.Body.String())
	}

	// Current user without a token.
	rec = doJSON(t, engine, http.MethodGet, "/auth/me", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated me status = %d, want 401", rec.Code)
	}
}

func TestRegisterRejectsMalformedJSON(t *testing.T) {
	engine := testEngine(t, &stubProvider{})

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

// --- media walkthrough ---

func login(t *testing.T, engine *gin.Engine) string {
	t.Helper()
	creds := map[string]string{"email": "media@b.com", "password": "hunter2hunter2"}
	if rec := doJSON(t, engine, http.MethodPost, "/auth/register", "", creds); rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d (body: %s)", rec.Code, rec.Body.String())
	}
	rec := doJSON(t, engine, http.MethodPost, "/auth/login", "", creds)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d (body: %s)", rec.Code, rec.Body.String())
	}
	var logged struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &logged); err != nil {
		t.Fatalf("unmarshal login response: %v", err)
	}
	return logged.AccessToken
}

func uploadFile(t *testing.T, engine *gin.Engine, token, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	fmt.Fprint(part, content)
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/media", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestMediaWalkthrough(t *testing.T) {
	engine := testEngine(t, &stubProvider{text: "the transcript text"})
	token := login(t, engine)

	// Upload.
	rec := uploadFile(t, engine, token, "meeting.wav", "fake audio bytes")
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, want 201 (body: %s)", rec.Code, rec.Body.String())
	}
	var uploaded struct {
		Data struct {
			ID       string `json:"id"`
			Filename string `json:"filename"`
			Status   string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &uploaded); err != nil {
		t.Fatalf("unmarshal upload response: %v", err)
	}
	if uploaded.Data.ID == "" || uploaded.Data.Filename != "meeting.wav" {
		t.Fatalf("unexpected upload response: %s", rec.Body.String())
	}
	if uploaded.Data.Status != store.MediaStatusPending {
		t.Errorf("status = %q, want %q", uploaded.Data.Status, store.MediaStatusPending)
	}

	// List.
	rec = doJSON(t, engine, http.MethodGet, "/media", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}
	var listed struct {
		Data []json.RawMessage `json:"data"`
		Meta map[string]int    `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("unmarshal list response: %v", err)
	}
	if len(listed.Data) != 1 || listed.Meta["count"] != 1 {
		t.Fatalf("unexpected list response: %s", rec.Body.String())
	}

	// Fetch the transcript before transcribing: not found.
	rec = doJSON(t, engine, http.MethodGet, "/media/"+uploaded.Data.ID+"/transcript", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("premature transcript status = %d, want 404", rec.Code)
	}

	// Transcribe.
	rec = doJSON(t, engine, http.MethodPost, "/media/"+uploaded.Data.ID+"/transcribe", token, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("transcribe status = %d, want 201 (body: %s)", rec.Code, rec.Body.String())
	}
	var transcribed struct {
		Data struct {
			Text     string `json:"text"`
			Language string `json:"language"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &transcribed); err != nil {
		t.Fatalf("unmarshal transcribe response: %v", err)
	}
	if transcribed.Data.Text != "the transcript text" {
		t.Errorf("text = %q, want %q", transcribed.Data.Text, "the transcript text")
	}

	// A second run on completed media is a conflict.
	rec = doJSON(t, engine, http.MethodPost, "/media/"+uploaded.Data.ID+"/transcribe", token, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("re-transcribe status = %d, want 409", rec.Code)
	}

	// Fetch transcript.
	rec = doJSON(t, engine, http.MethodGet, "/media/"+uploaded.Data.ID+"/transcript", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("transcript status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	// Media status moved to completed.
	rec = doJSON(t, engine, http.MethodGet, "/media/"+uploaded.Data.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", rec.Code)
	}
	var fetched struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("unmarshal get response: %v", err)
	}
	if fetched.Data.Status != store.MediaStatusCompleted {
		t.Errorf("status = %q, want %q", fetched.Data.Status, store.MediaStatusCompleted)
	}
}

func TestMediaOwnershipIsEnforced(t *testing.T) {
	engine := testEngine(t, &stubProvider{text: "x"})
	token := login(t, engine)

	rec := uploadFile(t, engine, token, "private.wav", "secret audio")
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d (body: %s)", rec.Code, rec.Body.String())
	}
	var uploaded struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &uploaded); err != nil {
		t.Fatalf("unmarshal upload response: %v", err)
	}

	// A second account cannot see the first account's media, not even as 403.
	creds := map[string]string{"email": "other@b.com", "password": "hunter2hunter2"}
	if rec := doJSON(t, engine, http.MethodPost, "/auth/register", "", creds); rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d", rec.Code)
	}
	loginRec := doJSON(t, engine, http.MethodPost, "/auth/login", "", creds)
	var other struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(loginRec.Body.Bytes(), &other); err != nil {
		t.Fatalf("unmarshal login response: %v", err)
	}

	rec = doJSON(t, engine, http.MethodGet, "/media/"+uploaded.Data.ID, other.AccessToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-account get status = %d, want 404", rec.Code)
	}
}

func TestMediaRequiresAuth(t *testing.T) {
	engine := testEngine(t, &stubProvider{})

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/media"},
		{http.MethodGet, "/media"},
		{http.MethodGet, "/media/some-id"},
		{http.MethodPost, "/media/some-id/transcribe"},
		{http.MethodGet, "/media/some-id/transcript"},
	} {
		rec := doJSON(t, engine, route.method, route.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want 401", route.method, route.path, rec.Code)
		}
	}
}

func TestUploadRequiresFileField(t *testing.T) {
	engine := testEngine(t, &stubProvider{})
	token := login(t, engine)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	_ = writer.WriteField("name", "no file here")
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/media", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("upload without file status = %d, want 400", rec.Code)
	}
}

func TestTranscribeFailureMarksMediaFailed(t *testing.T) {
	engine := testEngine(t, &stubProvider{err: fmt.Errorf("sidecar unreachable")})
	token := login(t, engine)

	rec := uploadFile(t, engine, token, "broken.wav", "audio")
	var uploaded struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &uploaded); err != nil {
		t.Fatalf("unmarshal upload response: %v", err)
	}

	rec = doJSON(t, engine, http.MethodPost, "/media/"+uploaded.Data.ID+"/transcribe", token, nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("failed transcribe status = %d, want 502 (body: %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, engine, http.MethodGet, "/media/"+uploaded.Data.ID, token, nil)
	var fetched struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("unmarshal get response: %v", err)
	}
	if fetched.Data.Status != store.MediaStatusFailed {
		t.Errorf("status = %q, want %q", fetched.Data.Status, store.MediaStatusFailed)
	}
}
