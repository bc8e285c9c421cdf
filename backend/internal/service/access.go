package service

import (
	"github.com/itchan-dev/filesmanager/shared/domain"
	"github.com/itchan-dev/filesmanager/shared/errors"
)

type AccessMode int

const (
	ReadAccess AccessMode = iota
	WriteAccess
)

func (m AccessMode) String() string {
	if m == WriteAccess {
		return "write"
	}
	return "read"
}

// Authorize decides whether caller may use file in the given mode.
// A nil caller is anonymous and can only read public records.
func Authorize(caller *domain.UserId, file *domain.File, mode AccessMode) error {
	if file == nil {
		return errors.ErrAccessDenied
	}
	isOwner := caller != nil && *caller == file.UserId
	switch mode {
	case ReadAccess:
		if file.IsPublic || isOwner {
			return nil
		}
	case WriteAccess:
		if isOwner {
			return nil
		}
	}
	return errors.ErrAccessDenied
}
