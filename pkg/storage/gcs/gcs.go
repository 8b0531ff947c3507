// Package gcs implements a storage.Archive backend saving files in GCS
package gcs

import (
	"context"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/Luzifer/webcam-cache/pkg/storage"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const gcsMetaLastModified = "x-webcam-last-modified"

// Storage implements the storage.Archive interface for GCS storage
type Storage struct {
	bucket string
	client *gcs.Client
	prefix string
}

// New returns a new GCS archive backend for a gs://bucket/prefix URI
func New(ctx context.Context, bucketURI string) (*Storage, error) {
	uri, err := url.Parse(bucketURI)
	if err != nil {
		return nil, errors.Wrap(err, "parse GCS bucket URI")
	}

	if uri.Scheme != "gs" || uri.Host == "" {
		return nil, errors.New("invalid GCS bucket URI")
	}

	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "create GCS client")
	}

	return &Storage{
		bucket: uri.Host,
		client: client,
		prefix: strings.TrimLeft(uri.Path, "/"),
	}, nil
}

// Store implements the storage.Archive Store method
func (s Storage) Store(ctx context.Context, srcPath, name string, metadata *storage.Meta) (string, error) {
	objPath := strings.TrimLeft(path.Join(s.prefix, name), "/")
	objHdl := s.client.Bucket(s.bucket).Object(objPath)

	f, err := os.Open(srcPath) //#nosec:G304 // Safe source of variable
	if err != nil {
		return "", errors.Wrap(err, "open source file")
	}
	defer func() {
		if err := f.Close(); err != nil {
			logrus.WithError(err).Error("closing source file (leaked fd)")
		}
	}()

	w := objHdl.NewWriter(ctx)
	if metadata != nil {
		w.ContentType = metadata.ContentType
		w.Metadata = map[string]string{
			gcsMetaLastModified: metadata.LastModified.Format(time.RFC3339Nano),
		}
	}

	if _, err = io.Copy(w, f); err != nil {
		_ = w.Close()
		return "", errors.Wrap(err, "upload content")
	}

	if err = w.Close(); err != nil {
		return "", errors.Wrap(err, "finish upload")
	}

	if err = os.Remove(srcPath); err != nil {
		return "", errors.Wrap(err, "remove archived source file")
	}

	return "gs://" + path.Join(s.bucket, objPath), nil
}
