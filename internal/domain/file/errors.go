package file

import "errors"

var (
	ErrRecordNotFound = errors.New("file not found")
	ErrNotOwner       = errors.New("you do not own this file")
	ErrNameConflict   = errors.New("a file with this name already exists at this path")
	ErrFolderNotEmpty = errors.New("cannot delete folder that contains files; delete all files inside the folder first")
	ErrRecordInvalid  = errors.New("invalid file metadata")
)
