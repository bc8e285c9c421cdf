package service

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"math"
	"strings"

	"github.com/itchan-dev/filesmanager/shared/domain"
	"github.com/itchan-dev/filesmanager/shared/errors"
	"github.com/itchan-dev/filesmanager/shared/logger"
	"github.com/itchan-dev/filesmanager/shared/middleware/metrics"
	"github.com/itchan-dev/filesmanager/shared/utils"
	"github.com/microcosm-cc/bluemonday"
)

type FileService interface {
	Upload(ctx context.Context, caller *domain.UserId, data domain.UploadData) (*domain.File, error)
	Get(ctx context.Context, caller *domain.UserId, id domain.FileId) (*domain.File, error)
	List(ctx context.Context, caller domain.UserId, parentId *domain.FileId, page int) ([]domain.File, error)
	Publish(ctx context.Context, caller *domain.UserId, id domain.FileId) (*domain.File, error)
	Unpublish(ctx context.Context, caller *domain.UserId, id domain.FileId) (*domain.File, error)
	Data(ctx context.Context, caller *domain.UserId, id domain.FileId, size int) (io.ReadCloser, *domain.File, error)
}

type FileStorage interface {
	InsertFile(ctx context.Context, file domain.File) (domain.FileId, error)
	FileById(ctx context.Context, id domain.FileId) (*domain.File, error)
	FilesByParent(ctx context.Context, owner domain.UserId, parentId *domain.FileId, page, pageSize int) ([]domain.File, error)
	SetPublic(ctx context.Context, id domain.FileId, isPublic bool) (*domain.File, error)
}

// maxSkip bounds page*pageSize, nothing lives past two billion records of one folder.
const maxSkip = math.MaxInt32

type JobProducer interface {
	Enqueue(ctx context.Context, job domain.ThumbnailJob) error
}

type File struct {
	storage      FileStorage
	mediaStorage MediaStorage
	jobs         JobProducer
	pageSize     int
	namePolicy   *bluemonday.Policy
}

func NewFile(storage FileStorage, mediaStorage MediaStorage, jobs JobProducer, pageSize int) *File {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &File{
		storage:      storage,
		mediaStorage: mediaStorage,
		jobs:         jobs,
		pageSize:     pageSize,
		namePolicy:   bluemonday.StrictPolicy(),
	}
}

// sanitizeName strips markup from a display name. Entities produced by the
// policy are turned back into plain characters since names are never rendered as html.
func (s *File) sanitizeName(name domain.FileName) domain.FileName {
	return strings.TrimSpace(html.UnescapeString(s.namePolicy.Sanitize(name)))
}

func (s *File) Upload(ctx context.Context, caller *domain.UserId, data domain.UploadData) (*domain.File, error) {
	if caller == nil {
		return nil, errors.ErrUnauthorized
	}

	name := s.sanitizeName(data.Name)
	if name == "" {
		return nil, errors.ErrMissingName
	}
	if data.Type == "" {
		return nil, errors.ErrMissingType
	}
	if !data.Type.IsValid() {
		return nil, errors.ErrInvalidType
	}

	var content []byte
	if data.Type != domain.FileTypeFolder {
		if data.Data == "" {
			return nil, errors.ErrMissingData
		}
		decoded, err := utils.DecodeBase64(data.Data)
		if err != nil {
			return nil, errors.ErrInvalidData
		}
		content = decoded
	}

	if data.ParentId != nil {
		if err := s.checkParent(ctx, *caller, *data.ParentId); err != nil {
			return nil, err
		}
	}

	file := domain.File{
		UserId:   *caller,
		Name:     name,
		Type:     data.Type,
		IsPublic: data.IsPublic,
		ParentId: data.ParentId,
	}

	if file.IsFolder() {
		id, err := s.storage.InsertFile(ctx, file)
		if err != nil {
			return nil, err
		}
		file.Id = id
		metrics.UploadsTotal.WithLabelValues(string(file.Type)).Inc()
		return &file, nil
	}

	localPath, err := s.mediaStorage.Save(bytes.NewReader(content))
	if err != nil {
		logger.Log.Error("failed to store file bytes", "user_id", caller.Hex(), "error", err)
		return nil, fmt.Errorf("%w: %w", errors.ErrStorageWrite, err)
	}
	file.LocalPath = localPath

	id, err := s.storage.InsertFile(ctx, file)
	if err != nil {
		// bytes stay on disk until the media gc reclaims them
		metrics.OrphanedBytesTotal.Inc()
		logger.Log.Error("failed to insert file record, bytes orphaned",
			"user_id", caller.Hex(), "local_path", localPath, "error", err)
		return nil, err
	}
	file.Id = id
	metrics.UploadsTotal.WithLabelValues(string(file.Type)).Inc()

	if file.Type == domain.FileTypeImage {
		job := domain.ThumbnailJob{UserId: file.UserId, FileId: file.Id}
		if err := s.jobs.Enqueue(ctx, job); err != nil {
			metrics.EnqueueFailuresTotal.Inc()
			logger.Log.Error("failed to enqueue thumbnail job", "file_id", file.Id.Hex(), "error", err)
		}
	}

	return &file, nil
}

func (s *File) checkParent(ctx context.Context, caller domain.UserId, parentId domain.FileId) error {
	parent, err := s.storage.FileById(ctx, parentId)
	if err != nil {
		if errors.IsNotFound(err) {
			return errors.ErrParentNotFound
		}
		return err
	}
	if err := Authorize(&caller, parent, WriteAccess); err != nil {
		return errors.ErrParentNotFound
	}
	if !parent.IsFolder() {
		return errors.ErrParentNotAFolder
	}
	return nil
}

// fetch loads a record and hides it as not found when caller may not use it.
func (s *File) fetch(ctx context.Context, caller *domain.UserId, id domain.FileId, mode AccessMode) (*domain.File, error) {
	file, err := s.storage.FileById(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(caller, file, mode); err != nil {
		return nil, errors.ErrNotFound
	}
	return file, nil
}

func (s *File) Get(ctx context.Context, caller *domain.UserId, id domain.FileId) (*domain.File, error) {
	return s.fetch(ctx, caller, id, ReadAccess)
}

func (s *File) List(ctx context.Context, caller domain.UserId, parentId *domain.FileId, page int) ([]domain.File, error) {
	if page < 0 {
		page = 0
	}
	if page > maxSkip/s.pageSize {
		return []domain.File{}, nil
	}
	return s.storage.FilesByParent(ctx, caller, parentId, page, s.pageSize)
}

func (s *File) Publish(ctx context.Context, caller *domain.UserId, id domain.FileId) (*domain.File, error) {
	return s.setPublic(ctx, caller, id, true)
}

func (s *File) Unpublish(ctx context.Context, caller *domain.UserId, id domain.FileId) (*domain.File, error) {
	return s.setPublic(ctx, caller, id, false)
}

func (s *File) setPublic(ctx context.Context, caller *domain.UserId, id domain.FileId, isPublic bool) (*domain.File, error) {
	if caller == nil {
		return nil, errors.ErrUnauthorized
	}
	if _, err := s.fetch(ctx, caller, id, WriteAccess); err != nil {
		return nil, err
	}
	return s.storage.SetPublic(ctx, id, isPublic)
}

// Data opens the stored bytes of a record. A non-zero size selects a thumbnail variant.
// The caller must close the returned reader.
func (s *File) Data(ctx context.Context, caller *domain.UserId, id domain.FileId, size int) (io.ReadCloser, *domain.File, error) {
	file, err := s.fetch(ctx, caller, id, ReadAccess)
	if err != nil {
		return nil, nil, err
	}
	if file.IsFolder() {
		return nil, nil, errors.ErrFolderHasNoContent
	}

	path := file.LocalPath
	if size != 0 {
		if !domain.IsThumbnailWidth(size) {
			return nil, nil, errors.ErrNotFound
		}
		path = file.VariantPath(size)
	}

	rc, err := s.mediaStorage.Read(path)
	if err != nil {
		return nil, nil, err
	}
	return rc, file, nil
}
