package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/filesmanager/shared/config"
	"github.com/itchan-dev/filesmanager/shared/domain"
	internal_errors "github.com/itchan-dev/filesmanager/shared/errors"
	mw "github.com/itchan-dev/filesmanager/shared/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Mocks ---

type MockAuthService struct {
	MockRegister       func(ctx context.Context, email, password string) (domain.User, error)
	MockLogin          func(ctx context.Context, basicCredential string) (string, error)
	MockLogout         func(ctx context.Context, token string) error
	MockResolveSession func(ctx context.Context, token string) (domain.UserId, error)
	MockMe             func(ctx context.Context, userId domain.UserId) (domain.User, error)
}

func (m *MockAuthService) Register(ctx context.Context, email, password string) (domain.User, error) {
	if m.MockRegister != nil {
		return m.MockRegister(ctx, email, password)
	}
	return domain.User{Id: primitive.NewObjectID(), Email: email}, nil
}

func (m *MockAuthService) Login(ctx context.Context, basicCredential string) (string, error) {
	if m.MockLogin != nil {
		return m.MockLogin(ctx, basicCredential)
	}
	return "token", nil
}

func (m *MockAuthService) Logout(ctx context.Context, token string) error {
	if m.MockLogout != nil {
		return m.MockLogout(ctx, token)
	}
	return nil
}

func (m *MockAuthService) ResolveSession(ctx context.Context, token string) (domain.UserId, error) {
	if m.MockResolveSession != nil {
		return m.MockResolveSession(ctx, token)
	}
	return domain.UserId{}, internal_errors.ErrUnauthorized
}

func (m *MockAuthService) Me(ctx context.Context, userId domain.UserId) (domain.User, error) {
	if m.MockMe != nil {
		return m.MockMe(ctx, userId)
	}
	return domain.User{Id: userId}, nil
}

type MockFileService struct {
	MockUpload    func(ctx context.Context, caller *domain.UserId, data domain.UploadData) (*domain.File, error)
	MockGet       func(ctx context.Context, caller *domain.UserId, id domain.FileId) (*domain.File, error)
	MockList      func(ctx context.Context, caller domain.UserId, parentId *domain.FileId, page int) ([]domain.File, error)
	MockPublish   func(ctx context.Context, caller *domain.UserId, id domain.FileId) (*domain.File, error)
	MockUnpublish func(ctx context.Context, caller *domain.UserId, id domain.FileId) (*domain.File, error)
	MockData      func(ctx context.Context, caller *domain.UserId, id domain.FileId, size int) (io.ReadCloser, *domain.File, error)
}

func (m *MockFileService) Upload(ctx context.Context, caller *domain.UserId, data domain.UploadData) (*domain.File, error) {
	if m.MockUpload != nil {
		return m.MockUpload(ctx, caller, data)
	}
	return &domain.File{Id: primitive.NewObjectID(), Name: data.Name, Type: data.Type}, nil
}

func (m *MockFileService) Get(ctx context.Context, caller *domain.UserId, id domain.FileId) (*domain.File, error) {
	if m.MockGet != nil {
		return m.MockGet(ctx, caller, id)
	}
	return nil, internal_errors.ErrNotFound
}

func (m *MockFileService) List(ctx context.Context, caller domain.UserId, parentId *domain.FileId, page int) ([]domain.File, error) {
	if m.MockList != nil {
		return m.MockList(ctx, caller, parentId, page)
	}
	return []domain.File{}, nil
}

func (m *MockFileService) Publish(ctx context.Context, caller *domain.UserId, id domain.FileId) (*domain.File, error) {
	if m.MockPublish != nil {
		return m.MockPublish(ctx, caller, id)
	}
	return nil, internal_errors.ErrNotFound
}

func (m *MockFileService) Unpublish(ctx context.Context, caller *domain.UserId, id domain.FileId) (*domain.File, error) {
	if m.MockUnpublish != nil {
		return m.MockUnpublish(ctx, caller, id)
	}
	return nil, internal_errors.ErrNotFound
}

func (m *MockFileService) Data(ctx context.Context, caller *domain.UserId, id domain.FileId, size int) (io.ReadCloser, *domain.File, error) {
	if m.MockData != nil {
		return m.MockData(ctx, caller, id, size)
	}
	return nil, nil, internal_errors.ErrNotFound
}

type MockAppService struct {
	MockStatus func(ctx context.Context) domain.Status
	MockStats  func(ctx context.Context) (domain.Stats, error)
}

func (m *MockAppService) Status(ctx context.Context) domain.Status {
	if m.MockStatus != nil {
		return m.MockStatus(ctx)
	}
	return domain.Status{Redis: true, DB: true}
}

func (m *MockAppService) Stats(ctx context.Context) (domain.Stats, error) {
	if m.MockStats != nil {
		return m.MockStats(ctx)
	}
	return domain.Stats{}, nil
}

// --- Helpers ---

// testSession is the token every test router accepts, mapped to the returned user id.
const testSession = "session-token"

type testEnv struct {
	auth   *MockAuthService
	file   *MockFileService
	app    *MockAppService
	router chi.Router
	userId domain.UserId
}

// newTestEnv wires handlers behind the same middleware the real router uses.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		auth:   &MockAuthService{},
		file:   &MockFileService{},
		app:    &MockAppService{},
		userId: primitive.NewObjectID(),
	}
	env.auth.MockResolveSession = func(ctx context.Context, token string) (domain.UserId, error) {
		if token == testSession {
			return env.userId, nil
		}
		return domain.UserId{}, internal_errors.ErrUnauthorized
	}

	h := New(env.auth, env.file, env.app, &config.Config{Public: config.Public{MaxBodySize: 1 << 20}})
	authMw := mw.NewAuth(env.auth)

	r := chi.NewRouter()
	r.Get("/status", h.Status)
	r.Get("/stats", h.Stats)
	r.Get("/health", h.Health)
	r.Post("/users", h.Register)
	r.Get("/connect", h.Connect)
	r.Get("/disconnect", h.Disconnect)
	r.Group(func(r chi.Router) {
		r.Use(authMw.NeedAuth())
		r.Get("/users/me", h.Me)
		r.Post("/files", h.Upload)
		r.Get("/files", h.Index)
		r.Put("/files/{id}/publish", h.Publish)
		r.Put("/files/{id}/unpublish", h.Unpublish)
	})
	r.Group(func(r chi.Router) {
		r.Use(authMw.OptionalAuth())
		r.Get("/files/{id}", h.Show)
		r.Get("/files/{id}/data", h.Data)
	})
	env.router = r
	return env
}

func (env *testEnv) do(t *testing.T, method, url string, body []byte, withSession bool) *httptest.ResponseRecorder {
	t.Helper()
	req := createRequest(t, method, url, body)
	if withSession {
		req.Header.Set(mw.TokenHeader, testSession)
	}
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

func createRequest(t *testing.T, method, url string, body []byte) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, url, bytes.NewBuffer(body))
}

func serve(env *testEnv, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}
