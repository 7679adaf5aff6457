package sync

import (
	"io/fs"
	"time"

	"github.com/embedkit/webviewsync/internal/utils"
)

type FileMetadata struct {
	RelPath string
	AbsPath string
	Size    int64
	Mode    fs.FileMode
	ModTime time.Time

	etag string
}

func NewFileMetadata(absPath, relPath string, info fs.FileInfo) *FileMetadata {
	return &FileMetadata{
		RelPath: relPath,
		AbsPath: absPath,
		Size:    info.Size(),
		Mode:    info.Mode(),
		ModTime: info.ModTime(),
	}
}

// ETag returns the MD5 content hash of the file, computed on first use and
// cached for the lifetime of the metadata.
func (f *FileMetadata) ETag() (string, error) {
	if f.etag == "" {
		hash, err := utils.FileHash(f.AbsPath)
		if err != nil {
			return "", err
		}
		f.etag = hash
	}
	return f.etag, nil
}
