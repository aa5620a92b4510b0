// Package photos es el contrato que el dominio usa para guardar y leer las
// fotos subidas. Las implementaciones viven en internal/adapters/blob.
package photos

import (
	"context"
	"errors"
	"io"
	"strings"
)

var (
	ErrNotFound = errors.New("blob not found")
	ErrExists   = errors.New("blob already exists")
	ErrBadKey   = errors.New("invalid blob key")
)

// Info describe una foto guardada.
type Info struct {
	Key         string `json:"key"`
	Size        int64  `json:"size_bytes"`
	ContentType string `json:"content_type,omitempty"`
}

// Store guarda bytes por key. Put no pisa: si la key existe devuelve ErrExists.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// RefPrefix marca un ImagePath que apunta a una foto del Store.
const RefPrefix = "blob:"

func Ref(key string) string { return RefPrefix + key }

// KeyFromRef devuelve la key de un ImagePath "blob:<key>".
func KeyFromRef(ref string) (string, bool) {
	if !strings.HasPrefix(ref, RefPrefix) {
		return "", false
	}
	key := strings.TrimPrefix(ref, RefPrefix)
	return key, key != ""
}
