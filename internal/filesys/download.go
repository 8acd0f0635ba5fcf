package filesys

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Blob is a typed byte payload handed to a Downloader.
type Blob struct {
	Data []byte
	Type string
}

// MarkdownBlob wraps text as a text/markdown blob.
func MarkdownBlob(text string) Blob {
	return Blob{Data: []byte(text), Type: MarkdownMIME}
}

// Downloader is the fallback write path. It returns where the bytes landed.
type Downloader interface {
	Download(ctx context.Context, b Blob, name string) (string, error)
}

// DirDownloader drops blobs into Dir the way a browser fills ~/Downloads.
type DirDownloader struct {
	Fs  afero.Fs
	Dir string
}

// maxDownloadSuffix bounds the "name (n).ext" search.
const maxDownloadSuffix = 999

func (d *DirDownloader) Download(ctx context.Context, b Blob, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name = downloadName(name, b.Type)
	if err := d.Fs.MkdirAll(d.Dir, 0o755); err != nil {
		return "", err
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; i <= maxDownloadSuffix; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
		}
		path := filepath.Join(d.Dir, candidate)
		f, err := d.Fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		if _, err := f.Write(b.Data); err != nil {
			_ = f.Close()
			return "", err
		}
		if err := f.Close(); err != nil {
			return "", err
		}
		return path, nil
	}
	return "", fmt.Errorf("no free download name for %s in %s", name, d.Dir)
}

// downloadName strips directories and adds .md to extensionless markdown.
func downloadName(name, mediaType string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "download"
	}
	if filepath.Ext(name) == "" && strings.HasPrefix(mediaType, MarkdownMIME) {
		name += ".md"
	}
	return name
}
