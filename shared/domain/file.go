package domain

import (
	"fmt"
	"time"
)

// File is a folder, a plain file or an image owned by a user.
// ParentId is nil for records placed at the root.
type File struct {
	Id        FileId    `bson:"_id,omitempty"`
	UserId    UserId    `bson:"userId"`
	Name      FileName  `bson:"name"`
	Type      FileType  `bson:"type"`
	IsPublic  bool      `bson:"isPublic"`
	ParentId  *FileId   `bson:"parentId"`
	LocalPath string    `bson:"localPath,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
}

func (f *File) IsFolder() bool {
	return f.Type == FileTypeFolder
}

// VariantPath returns where the thumbnail of the given width is stored.
func (f *File) VariantPath(width int) string {
	return VariantPath(f.LocalPath, width)
}

func VariantPath(sourcePath string, width int) string {
	return fmt.Sprintf("%s_%d", sourcePath, width)
}

// to iterate thru layers: handler -> service -> storage
type UploadData struct {
	Name     FileName
	Type     FileType
	Data     string // base64 payload, empty for folders
	ParentId *FileId
	IsPublic bool
}

type ThumbnailJob struct {
	UserId UserId `json:"userId"`
	FileId FileId `json:"fileId"`
}

// for debug
func (f *File) String() string {
	parent := "root"
	if f.ParentId != nil {
		parent = f.ParentId.Hex()
	}
	return fmt.Sprintf("[id:%s, user:%s, name:%s, type:%s, public:%t, parent:%s]", f.Id.Hex(), f.UserId.Hex(), f.Name, f.Type, f.IsPublic, parent)
}
