// Package blob implementa ports/photos. El store de gatos persiste solo la
// referencia ("blob:<key>"); los bytes viven en uno de estos drivers.
package blob

import (
	"context"
	"fmt"

	"cat-shelter/internal/ports/photos"
)

// Driver identifica la implementación concreta.
type Driver string

const (
	DriverFilesystem Driver = "fs"     // disco local (default, dev)
	DriverS3         Driver = "s3"     // S3 / MinIO
	DriverMemory     Driver = "memory" // tests
)

// El contrato vive en ports/photos; los alias evitan que cada driver
// importe el port.
var (
	ErrNotFound = photos.ErrNotFound
	ErrExists   = photos.ErrExists
	ErrBadKey   = photos.ErrBadKey
)

type Info = photos.Info

// Store es un photos.Store que además informa su driver.
type Store interface {
	photos.Store
	Driver() Driver
}

// Config del factory. Los campos S3 solo aplican con Driver=s3.
type Config struct {
	Driver Driver
	FSRoot string
	S3     S3Config
}

// Open elige la implementación según cfg.Driver (default fs).
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverFilesystem:
		return NewFilesystem(cfg.FSRoot)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}
