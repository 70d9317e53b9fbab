package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Numffy/jumping-park-app-sub000/internal/models"
	"github.com/Numffy/jumping-park-app-sub000/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultBlobTimeout = 30 * time.Second

// GridFS stores blobs in a MongoDB GridFS bucket
type GridFS struct {
	db      *mongo.Database
	name    string
	baseURL string
}

// NewGridFS checks the named bucket can be opened in db
func NewGridFS(db *mongo.Database, bucketName, baseURL string) (*GridFS, error) {
	g := &GridFS{db: db, name: bucketName, baseURL: baseURL}
	if _, err := g.open(); err != nil {
		return nil, err
	}
	return g, nil
}

// open returns a fresh bucket handle. Deadlines are per handle, so
// concurrent operations never share one.
func (g *GridFS) open() (*gridfs.Bucket, error) {
	bucket, err := gridfs.NewBucket(g.db, options.GridFSBucket().SetName(g.name))
	if err != nil {
		return nil, fmt.Errorf("failed to open gridfs bucket %s: %w", g.name, err)
	}
	return bucket, nil
}

func deadline(ctx context.Context) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	return time.Now().Add(defaultBlobTimeout)
}

// Put uploads data as a new file named path
func (g *GridFS) Put(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}
	_, span, end := utils.TraceDatabaseOperation(ctx, "gridfs_upload", g.name)
	defer end()

	bucket, err := g.open()
	if err != nil {
		return "", err
	}
	if err := bucket.SetWriteDeadline(deadline(ctx)); err != nil {
		return "", err
	}
	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "content_type", Value: contentType}})
	if _, err := bucket.UploadFromStream(path, bytes.NewReader(data), opts); err != nil {
		utils.RecordErrorInSpan(span, err)
		return "", fmt.Errorf("failed to upload %s: %w", path, err)
	}
	return retrievalURL(g.baseURL, path), nil
}

// Get downloads the newest revision of path
func (g *GridFS) Get(ctx context.Context, path string) ([]byte, error) {
	_, span, end := utils.TraceDatabaseOperation(ctx, "gridfs_download", g.name)
	defer end()

	bucket, err := g.open()
	if err != nil {
		return nil, err
	}
	if err := bucket.SetReadDeadline(deadline(ctx)); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := bucket.DownloadToStreamByName(path, &buf); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, models.ErrNotFound
		}
		utils.RecordErrorInSpan(span, err)
		return nil, fmt.Errorf("failed to download %s: %w", path, err)
	}
	return buf.Bytes(), nil
}
