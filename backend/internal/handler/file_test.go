package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/itchan-dev/filesmanager/shared/api"
	"github.com/itchan-dev/filesmanager/shared/domain"
	internal_errors "github.com/itchan-dev/filesmanager/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var pngPixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
}

func TestUpload(t *testing.T) {
	t.Run("created with local path", func(t *testing.T) {
		env := newTestEnv(t)
		var got domain.UploadData
		var gotCaller *domain.UserId
		env.file.MockUpload = func(ctx context.Context, caller *domain.UserId, data domain.UploadData) (*domain.File, error) {
			got, gotCaller = data, caller
			return &domain.File{
				Id:        primitive.NewObjectID(),
				UserId:    *caller,
				Name:      data.Name,
				Type:      data.Type,
				LocalPath: "/tmp/files_manager/abc",
			}, nil
		}

		rr := env.do(t, http.MethodPost, "/files", []byte(`{"name":"a.txt","type":"file","data":"aGk="}`), true)
		require.Equal(t, http.StatusCreated, rr.Code)

		var resp api.FileResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "a.txt", resp.Name)
		assert.Equal(t, "file", resp.Type)
		assert.Equal(t, env.userId.Hex(), resp.UserId)
		assert.Equal(t, "/tmp/files_manager/abc", resp.LocalPath)
		assert.Nil(t, resp.ParentId)

		require.NotNil(t, gotCaller)
		assert.Equal(t, env.userId, *gotCaller)
		assert.Equal(t, "aGk=", got.Data)
		assert.Nil(t, got.ParentId)
	})

	t.Run("parent id forms", func(t *testing.T) {
		parent := primitive.NewObjectID()
		tests := []struct {
			name       string
			parentJSON string
			expected   *domain.FileId
		}{
			{"absent", ``, nil},
			{"null", `,"parentId":null`, nil},
			{"zero number", `,"parentId":0`, nil},
			{"zero string", `,"parentId":"0"`, nil},
			{"hex", `,"parentId":"` + parent.Hex() + `"`, &parent},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				env := newTestEnv(t)
				var got *domain.FileId
				env.file.MockUpload = func(ctx context.Context, caller *domain.UserId, data domain.UploadData) (*domain.File, error) {
					got = data.ParentId
					return &domain.File{Id: primitive.NewObjectID(), Name: data.Name, Type: data.Type, ParentId: data.ParentId}, nil
				}
				rr := env.do(t, http.MethodPost, "/files", []byte(`{"name":"dir","type":"folder"`+tt.parentJSON+`}`), true)
				require.Equal(t, http.StatusCreated, rr.Code)
				assert.Equal(t, tt.expected, got)
			})
		}
	})

	t.Run("bad parent id reaches the service as an unknown id", func(t *testing.T) {
		env := newTestEnv(t)
		var got *domain.FileId
		env.file.MockUpload = func(ctx context.Context, caller *domain.UserId, data domain.UploadData) (*domain.File, error) {
			got = data.ParentId
			return nil, internal_errors.ErrParentNotFound
		}
		rr := env.do(t, http.MethodPost, "/files", []byte(`{"name":"dir","type":"folder","parentId":"nope"}`), true)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"error":"Parent not found"}`, rr.Body.String())
		require.NotNil(t, got)
		assert.Equal(t, primitive.NilObjectID, *got)
	})

	t.Run("missing name is reported before a bad parent", func(t *testing.T) {
		env := newTestEnv(t)
		env.file.MockUpload = func(ctx context.Context, caller *domain.UserId, data domain.UploadData) (*domain.File, error) {
			if data.Name == "" {
				return nil, internal_errors.ErrMissingName
			}
			return nil, internal_errors.ErrParentNotFound
		}
		rr := env.do(t, http.MethodPost, "/files", []byte(`{"type":"folder","parentId":"zz"}`), true)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"error":"Missing name"}`, rr.Body.String())
	})

	t.Run("validation errors pass through", func(t *testing.T) {
		env := newTestEnv(t)
		env.file.MockUpload = func(ctx context.Context, caller *domain.UserId, data domain.UploadData) (*domain.File, error) {
			return nil, internal_errors.ErrMissingName
		}
		rr := env.do(t, http.MethodPost, "/files", []byte(`{"type":"file","data":"aGk="}`), true)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"error":"Missing name"}`, rr.Body.String())
	})

	t.Run("no session", func(t *testing.T) {
		env := newTestEnv(t)
		rr := env.do(t, http.MethodPost, "/files", []byte(`{"name":"a","type":"folder"}`), false)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("body too large", func(t *testing.T) {
		env := newTestEnv(t)
		big := `{"name":"a","type":"file","data":"` + strings.Repeat("A", 2<<20) + `"}`
		rr := env.do(t, http.MethodPost, "/files", []byte(big), true)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestShow(t *testing.T) {
	id := primitive.NewObjectID()

	t.Run("anonymous caller", func(t *testing.T) {
		env := newTestEnv(t)
		var gotCaller *domain.UserId
		env.file.MockGet = func(ctx context.Context, caller *domain.UserId, fileId domain.FileId) (*domain.File, error) {
			gotCaller = caller
			return &domain.File{Id: fileId, Name: "pic.png", Type: domain.FileTypeImage, IsPublic: true, LocalPath: "/secret"}, nil
		}
		rr := env.do(t, http.MethodGet, "/files/"+id.Hex(), nil, false)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Nil(t, gotCaller)
		assert.NotContains(t, rr.Body.String(), "localPath")
	})

	t.Run("session caller", func(t *testing.T) {
		env := newTestEnv(t)
		var gotCaller *domain.UserId
		env.file.MockGet = func(ctx context.Context, caller *domain.UserId, fileId domain.FileId) (*domain.File, error) {
			gotCaller = caller
			return &domain.File{Id: fileId, Name: "a", Type: domain.FileTypeFile}, nil
		}
		rr := env.do(t, http.MethodGet, "/files/"+id.Hex(), nil, true)
		require.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, gotCaller)
		assert.Equal(t, env.userId, *gotCaller)
	})

	t.Run("invalid session is anonymous", func(t *testing.T) {
		env := newTestEnv(t)
		req := createRequest(t, http.MethodGet, "/files/"+id.Hex(), nil)
		req.Header.Set("X-Token", "stale")
		env.file.MockGet = func(ctx context.Context, caller *domain.UserId, fileId domain.FileId) (*domain.File, error) {
			if caller != nil {
				return nil, internal_errors.ErrUnauthorized
			}
			return nil, internal_errors.ErrNotFound
		}
		rr := serve(env, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		env := newTestEnv(t)
		rr := env.do(t, http.MethodGet, "/files/xyz", nil, true)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, `{"error":"Not found"}`, rr.Body.String())
	})
}

func TestIndex(t *testing.T) {
	t.Run("root page", func(t *testing.T) {
		env := newTestEnv(t)
		var gotParent *domain.FileId
		var gotPage int
		env.file.MockList = func(ctx context.Context, caller domain.UserId, parentId *domain.FileId, page int) ([]domain.File, error) {
			gotParent, gotPage = parentId, page
			return []domain.File{
				{Id: primitive.NewObjectID(), UserId: caller, Name: "a", Type: domain.FileTypeFolder, LocalPath: "/x"},
			}, nil
		}
		rr := env.do(t, http.MethodGet, "/files?page=2", nil, true)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Nil(t, gotParent)
		assert.Equal(t, 2, gotPage)

		var resp []api.FileResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp, 1)
		assert.Equal(t, "a", resp[0].Name)
		assert.Empty(t, resp[0].LocalPath)
	})

	t.Run("malformed page falls back to first", func(t *testing.T) {
		env := newTestEnv(t)
		gotPage := -1
		env.file.MockList = func(ctx context.Context, caller domain.UserId, parentId *domain.FileId, page int) ([]domain.File, error) {
			gotPage = page
			return []domain.File{}, nil
		}
		rr := env.do(t, http.MethodGet, "/files?page=abc", nil, true)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 0, gotPage)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})

	t.Run("parent filter", func(t *testing.T) {
		env := newTestEnv(t)
		parent := primitive.NewObjectID()
		var gotParent *domain.FileId
		env.file.MockList = func(ctx context.Context, caller domain.UserId, parentId *domain.FileId, page int) ([]domain.File, error) {
			gotParent = parentId
			return []domain.File{}, nil
		}
		rr := env.do(t, http.MethodGet, "/files?parentId="+parent.Hex(), nil, true)
		require.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, gotParent)
		assert.Equal(t, parent, *gotParent)
	})

	t.Run("unknown parent format gives empty list", func(t *testing.T) {
		env := newTestEnv(t)
		var got *domain.FileId
		env.file.MockList = func(ctx context.Context, caller domain.UserId, parentId *domain.FileId, page int) ([]domain.File, error) {
			got = parentId
			return []domain.File{}, nil
		}
		rr := env.do(t, http.MethodGet, "/files?parentId=garbage", nil, true)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
		require.NotNil(t, got)
		assert.Equal(t, primitive.NilObjectID, *got)
	})

	t.Run("no session", func(t *testing.T) {
		env := newTestEnv(t)
		rr := env.do(t, http.MethodGet, "/files", nil, false)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestPublishUnpublish(t *testing.T) {
	id := primitive.NewObjectID()
	tests := []struct {
		name     string
		path     string
		isPublic bool
	}{
		{"publish", "/files/" + id.Hex() + "/publish", true},
		{"unpublish", "/files/" + id.Hex() + "/unpublish", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			set := func(ctx context.Context, caller *domain.UserId, fileId domain.FileId) (*domain.File, error) {
				return &domain.File{Id: fileId, UserId: *caller, Name: "a", Type: domain.FileTypeFile, IsPublic: tt.isPublic}, nil
			}
			env.file.MockPublish = set
			env.file.MockUnpublish = set

			rr := env.do(t, http.MethodPut, tt.path, nil, true)
			require.Equal(t, http.StatusOK, rr.Code)
			var resp api.FileResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.isPublic, resp.IsPublic)
			assert.Equal(t, id.Hex(), resp.Id)
		})
	}

	t.Run("foreign file", func(t *testing.T) {
		env := newTestEnv(t)
		env.file.MockPublish = func(ctx context.Context, caller *domain.UserId, fileId domain.FileId) (*domain.File, error) {
			return nil, internal_errors.ErrNotFound
		}
		rr := env.do(t, http.MethodPut, "/files/"+id.Hex()+"/publish", nil, true)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("no session", func(t *testing.T) {
		env := newTestEnv(t)
		rr := env.do(t, http.MethodPut, "/files/"+id.Hex()+"/unpublish", nil, false)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestData(t *testing.T) {
	id := primitive.NewObjectID()

	dataOf := func(name string, content []byte) func(ctx context.Context, caller *domain.UserId, fileId domain.FileId, size int) (io.ReadCloser, *domain.File, error) {
		return func(ctx context.Context, caller *domain.UserId, fileId domain.FileId, size int) (io.ReadCloser, *domain.File, error) {
			return io.NopCloser(strings.NewReader(string(content))), &domain.File{Id: fileId, Name: domain.FileName(name), Type: domain.FileTypeFile}, nil
		}
	}

	t.Run("content type from extension", func(t *testing.T) {
		env := newTestEnv(t)
		env.file.MockData = dataOf("notes.txt", []byte("Hello webstack!"))
		rr := env.do(t, http.MethodGet, "/files/"+id.Hex()+"/data", nil, false)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/plain"))
		assert.Equal(t, "Hello webstack!", rr.Body.String())
	})

	t.Run("content type sniffed without extension", func(t *testing.T) {
		env := newTestEnv(t)
		env.file.MockData = dataOf("picture", pngPixel)
		rr := env.do(t, http.MethodGet, "/files/"+id.Hex()+"/data", nil, false)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
		assert.Equal(t, pngPixel, rr.Body.Bytes())
	})

	t.Run("variant is sniffed", func(t *testing.T) {
		env := newTestEnv(t)
		var gotSize int
		env.file.MockData = func(ctx context.Context, caller *domain.UserId, fileId domain.FileId, size int) (io.ReadCloser, *domain.File, error) {
			gotSize = size
			return io.NopCloser(strings.NewReader(string(pngPixel))), &domain.File{Id: fileId, Name: "photo.jpg", Type: domain.FileTypeImage}, nil
		}
		rr := env.do(t, http.MethodGet, "/files/"+id.Hex()+"/data?size=250", nil, true)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 250, gotSize)
		assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	})

	t.Run("large body streams fully", func(t *testing.T) {
		env := newTestEnv(t)
		content := []byte(strings.Repeat("x", 10000))
		env.file.MockData = dataOf("big.txt", content)
		rr := env.do(t, http.MethodGet, "/files/"+id.Hex()+"/data", nil, false)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, rr.Body.Bytes(), len(content))
	})

	t.Run("non numeric size", func(t *testing.T) {
		env := newTestEnv(t)
		env.file.MockData = dataOf("a.txt", []byte("a"))
		rr := env.do(t, http.MethodGet, "/files/"+id.Hex()+"/data?size=big", nil, false)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("service errors", func(t *testing.T) {
		tests := []struct {
			name         string
			err          error
			expectedCode int
		}{
			{"folder", internal_errors.ErrFolderHasNoContent, http.StatusBadRequest},
			{"not found", internal_errors.ErrNotFound, http.StatusNotFound},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				env := newTestEnv(t)
				env.file.MockData = func(ctx context.Context, caller *domain.UserId, fileId domain.FileId, size int) (io.ReadCloser, *domain.File, error) {
					return nil, nil, tt.err
				}
				rr := env.do(t, http.MethodGet, "/files/"+id.Hex()+"/data", nil, false)
				assert.Equal(t, tt.expectedCode, rr.Code)
			})
		}
	})
}
