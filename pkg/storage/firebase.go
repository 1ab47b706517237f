package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	cloudstorage "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// Uploader streams binary media to a hosted service and returns the public
// URL to store on the document.
type Uploader interface {
	Upload(ctx context.Context, r io.Reader, folder, contentType string) (string, error)
}

// FirebaseStorage implements Uploader on top of a Firebase Storage bucket.
type FirebaseStorage struct {
	bucket     *cloudstorage.BucketHandle
	bucketName string
}

// InitFirebaseStorage initializes the Firebase app and returns an uploader
// bound to the configured bucket.
func InitFirebaseStorage(ctx context.Context, credentialsPath, bucketName string) (*FirebaseStorage, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("firebase credentials path not provided")
	}
	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("firebase credentials file not found at %s", credentialsPath)
	}

	opt := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: bucketName}, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase storage client: %w", err)
	}

	bucket, err := client.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("error getting storage bucket: %w", err)
	}

	log.Println("Firebase app and storage bucket initialized successfully!")
	return &FirebaseStorage{bucket: bucket, bucketName: bucketName}, nil
}

// Upload writes the payload to the bucket under a generated name and makes
// the object publicly readable.
func (s *FirebaseStorage) Upload(ctx context.Context, r io.Reader, folder, contentType string) (string, error) {
	name := fmt.Sprintf("%s/%s", folder, uuid.NewString())
	obj := s.bucket.Object(name)

	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object: %w", err)
	}

	if err := obj.ACL().Set(ctx, cloudstorage.AllUsers, cloudstorage.RoleReader); err != nil {
		return "", fmt.Errorf("failed to publish object: %w", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, name), nil
}
