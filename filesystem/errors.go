package filesystem

import "errors"

var (
	ErrNotFound  = errors.New("no such file or directory")
	ErrExists    = errors.New("file exists")
	ErrNotDir    = errors.New("not a directory")
	ErrIsDir     = errors.New("is a directory")
	ErrInvalid   = errors.New("invalid argument")
	ErrBadHandle = errors.New("bad file handle")
)

// Negated errno values reported by [Code]
const (
	CodeOK        = 0
	CodeExists    = -1 // legacy write() result for EXCL on an existing file
	CodeNotFound  = -2 // -ENOENT
	CodeBadHandle = -9
	CodeNotDir    = -20
	CodeIsDir     = -21
	CodeInvalid   = -22
)

// Code maps an error returned by the tree onto the numeric results callers of
// write/read traditionally check for. Unknown errors map to [CodeInvalid].
func Code(err error) int {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, ErrExists):
		return CodeExists
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrBadHandle):
		return CodeBadHandle
	case errors.Is(err, ErrNotDir):
		return CodeNotDir
	case errors.Is(err, ErrIsDir):
		return CodeIsDir
	default:
		return CodeInvalid
	}
}
