package object

import (
	"context"
	"errors"
	"io"
	"net/http"
)

// ErrNotFound is returned by Open when no object exists under the key.
var ErrNotFound = errors.New("object not found")

// Stored describes an object after it has been written.
type Stored struct {
	Key         string
	SizeBytes   int64
	ContentType string
}

// ObjectStore keeps uploaded originals. Keys are namespaced per user.
type ObjectStore interface {
	Save(ctx context.Context, userID string, fileName string, r io.Reader) (Stored, error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}

// Sniff reads up to 512 bytes from r to detect the content type and returns
// a reader that replays them.
func Sniff(r io.Reader) (string, []byte, error) {
	var buf [512]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, err
	}
	head := append([]byte(nil), buf[:n]...)
	return http.DetectContentType(head), head, nil
}
