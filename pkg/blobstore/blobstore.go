package blobstore

import "context"

// BlobStore abstracts binary object storage for user uploads.
type BlobStore interface {
	// Upload writes data under key and returns a public reference for it.
	// Writing the same key again replaces the previous object.
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Delete removes the object at key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
