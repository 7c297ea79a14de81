package csvsync

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"dict-manager/core/reconcile"
	"dict-manager/core/storage"

	"github.com/minio/minio-go/v7"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Mirror wraps a Codec and copies every directory export to object storage.
// Upload failures are logged and never fail the export. Pull restores the
// local directory from the bucket.
type Mirror struct {
	codec  *Codec
	client storage.Client
	bucket string
	prefix string
	region string
	logger *zap.Logger
}

// NewMirror creates a mirror for the configured bucket and prefix.
func NewMirror(codec *Codec, client storage.Client, cfg storage.Config, logger *zap.Logger) *Mirror {
	return &Mirror{
		codec:  codec,
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		region: cfg.Region,
		logger: logger,
	}
}

// ExportDirectory exports into dir and uploads the written files.
func (m *Mirror) ExportDirectory(ctx context.Context, dir string) error {
	_, err := m.ExportFiles(ctx, dir)
	return err
}

// ExportFiles exports into dir, uploads the written files and returns them.
func (m *Mirror) ExportFiles(ctx context.Context, dir string) ([]string, error) {
	files, err := m.codec.ExportFiles(ctx, dir)
	if err != nil {
		return files, err
	}
	if err := m.Sync(ctx, files); err != nil {
		m.logger.Warn("CSV mirror upload failed", zap.String("bucket", m.bucket), zap.Error(err))
	}
	return files, nil
}

// Pull downloads the mirrored CSV files into dir, overwriting local copies,
// and returns the written paths. Objects that are not part of the CSV layout
// are ignored.
func (m *Mirror) Pull(ctx context.Context, dir string) ([]string, error) {
	if err := m.codec.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	// Cancelling stops the lister when the loop returns early.
	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var written []string
	for obj := range m.client.ListObjects(listCtx, m.bucket, minio.ListObjectsOptions{Prefix: m.listPrefix(), Recursive: true}) {
		if obj.Err != nil {
			return written, fmt.Errorf("failed to list mirror: %w", obj.Err)
		}
		name := path.Base(obj.Key)
		if name != reconcile.GamesFile && name != reconcile.CategoriesFile && !reconcile.IsGameFile(name) {
			continue
		}

		data, err := m.download(ctx, obj.Key)
		if err != nil {
			return written, err
		}
		target := filepath.Join(dir, name)
		if err := afero.WriteFile(m.codec.fs, target, data, 0o644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", target, err)
		}
		written = append(written, target)
	}

	m.logger.Info("Pulled CSV mirror", zap.String("bucket", m.bucket), zap.Int("files", len(written)))
	return written, nil
}

func (m *Mirror) download(ctx context.Context, key string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// ImportDirectory imports from the local directory.
func (m *Mirror) ImportDirectory(ctx context.Context, dir string) error {
	return m.codec.ImportDirectory(ctx, dir)
}

// Sync uploads files under the prefix and removes mirrored CSV objects that
// were not part of this upload.
func (m *Mirror) Sync(ctx context.Context, files []string) error {
	if err := m.ensureBucket(ctx); err != nil {
		return err
	}

	uploaded := make(map[string]struct{}, len(files))
	for _, f := range files {
		data, err := afero.ReadFile(m.codec.fs, f)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", f, err)
		}

		key := m.objectKey(filepath.Base(f))
		_, err = m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
			ContentType: "text/csv",
		})
		if err != nil {
			return fmt.Errorf("failed to upload %s: %w", key, err)
		}
		uploaded[key] = struct{}{}
	}

	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for obj := range m.client.ListObjects(listCtx, m.bucket, minio.ListObjectsOptions{Prefix: m.listPrefix(), Recursive: true}) {
		if obj.Err != nil {
			return fmt.Errorf("failed to list mirror: %w", obj.Err)
		}
		if _, ok := uploaded[obj.Key]; ok || !strings.HasSuffix(obj.Key, ".csv") {
			continue
		}
		if err := m.client.RemoveObject(ctx, m.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to remove stale %s: %w", obj.Key, err)
		}
		m.logger.Debug("Removed stale mirror object", zap.String("key", obj.Key))
	}

	m.logger.Info("Mirrored CSV export", zap.String("bucket", m.bucket), zap.Int("files", len(uploaded)))
	return nil
}

func (m *Mirror) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: m.region}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

func (m *Mirror) listPrefix() string {
	if m.prefix == "" {
		return ""
	}
	return m.prefix + "/"
}

func (m *Mirror) objectKey(name string) string {
	if m.prefix == "" {
		return name
	}
	return path.Join(m.prefix, name)
}
