package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

type (
	Email    = string
	Password = string
	UserId   = primitive.ObjectID

	FileId   = primitive.ObjectID
	FileName = string
	Token    = string
)

// FileType is the kind of a file record.
type FileType string

const (
	FileTypeFolder FileType = "folder"
	FileTypeFile   FileType = "file"
	FileTypeImage  FileType = "image"
)

func (t FileType) IsValid() bool {
	switch t {
	case FileTypeFolder, FileTypeFile, FileTypeImage:
		return true
	}
	return false
}

// ThumbnailWidths are the widths of the derived image variants, largest first.
var ThumbnailWidths = []int{500, 250, 100}

func IsThumbnailWidth(width int) bool {
	for _, w := range ThumbnailWidths {
		if w == width {
			return true
		}
	}
	return false
}
