package api

import (
	"github.com/itchan-dev/filesmanager/shared/domain"
)

// Request DTOs

// UploadRequest mirrors the json body of POST /files.
// parentId may be a hex id, 0 or "0" (root) or absent.
type UploadRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Data     string `json:"data"`
	ParentId any    `json:"parentId"`
	IsPublic bool   `json:"isPublic"`
}

// Response DTOs

type FileResponse struct {
	Id        string  `json:"id"`
	UserId    string  `json:"userId"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	IsPublic  bool    `json:"isPublic"`
	ParentId  *string `json:"parentId"` // null for root
	LocalPath string  `json:"localPath,omitempty"`
}

// NewFileResponse converts a record; localPath is only set for owner facing responses.
func NewFileResponse(f *domain.File, withLocalPath bool) FileResponse {
	resp := FileResponse{
		Id:       f.Id.Hex(),
		UserId:   f.UserId.Hex(),
		Name:     f.Name,
		Type:     string(f.Type),
		IsPublic: f.IsPublic,
	}
	if f.ParentId != nil {
		parent := f.ParentId.Hex()
		resp.ParentId = &parent
	}
	if withLocalPath {
		resp.LocalPath = f.LocalPath
	}
	return resp
}

func NewFileListResponse(files []domain.File) []FileResponse {
	resp := make([]FileResponse, len(files))
	for i := range files {
		resp[i] = NewFileResponse(&files[i], false)
	}
	return resp
}
