// Package filestore persists uploaded profile pictures and hands back a
// reference that is stored on the user record.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/filex"
	"github.com/google/uuid"
)

var ErrUnsupportedType = errors.New("unsupported file type")

// Store saves an upload under a generated name. The original file name is
// only used for its extension.
type Store interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
}

var now = time.Now

// randomKey builds "profiles/<y>/<m>/<d>/<uuid><ext>".
func randomKey(filename string) (string, error) {
	ext, ok := filex.ImageExt(filename)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	d := now()
	return fmt.Sprintf("profiles/%d/%d/%d/%v%s", d.Year(), d.Month(), d.Day(), uuid.New(), ext), nil
}
