// Package media stores uploaded property images in MongoDB GridFS.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("media not found")

// File is an open stored image
type File struct {
	io.ReadCloser
	Name        string
	ContentType string
	Size        int64
}

// Store keeps images in a GridFS bucket
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens a MongoDB client for uri and uses database dbName
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return &Store{client: client, db: client.Database(dbName)}, nil
}

// Close disconnects the client
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Upload copies r into a new GridFS file and returns its hex id
func (s *Store) Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	bucket, err := gridfs.NewBucket(s.db)
	if err != nil {
		return "", err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := bucket.SetWriteDeadline(deadline); err != nil {
			return "", err
		}
	}

	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "contentType", Value: contentType}})
	stream, err := bucket.OpenUploadStream(filename, opts)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(stream, r); err != nil {
		_ = stream.Abort()
		return "", fmt.Errorf("failed to store %s: %w", filename, err)
	}
	if err := stream.Close(); err != nil {
		return "", err
	}

	return stream.FileID.(primitive.ObjectID).Hex(), nil
}

// Open returns a reader for the image with the given hex id.
// The caller closes it.
func (s *Store) Open(ctx context.Context, id string) (*File, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	bucket, err := gridfs.NewBucket(s.db)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := bucket.SetReadDeadline(deadline); err != nil {
			return nil, err
		}
	}

	stream, err := bucket.OpenDownloadStream(oid)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	f := stream.GetFile()
	contentType := "application/octet-stream"
	if f.Metadata != nil {
		if v, ok := f.Metadata.Lookup("contentType").StringValueOK(); ok && v != "" {
			contentType = v
		}
	}
	return &File{ReadCloser: stream, Name: f.Name, ContentType: contentType, Size: f.Length}, nil
}
