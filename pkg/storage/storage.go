// Package storage defines the interface to talk to the archive backends
package storage

import (
	"context"
	"time"
)

type (
	// Meta contains the metadata stored along with an archived file
	Meta struct {
		ContentType  string
		LastModified time.Time
	}

	// Archive is the interface to implement when building an archive
	// backend. Store moves the file at srcPath into the archive under
	// the given name: after a successful call srcPath no longer exists.
	// The returned string is the location of the archived copy.
	Archive interface {
		Store(ctx context.Context, srcPath, name string, metadata *Meta) (string, error)
	}
)
