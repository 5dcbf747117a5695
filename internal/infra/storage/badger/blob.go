package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gabapcia/chainkeeper/internal/accountregistry"
)

// ErrBlobNotFound indicates no blob with the given id exists.
var ErrBlobNotFound = errors.New("blob not found")

// blobKey builds the key holding one stored blob.
func blobKey(id string) string {
	return fmt.Sprintf("file_%s", id)
}

// StoreBlob stores opaque content (certificates, key files) under a fresh id
// and returns it. Accounts reference blobs by this id only, which is what
// makes cross-chain mirroring cheap: the bytes are stored once regardless of
// how many chains list the owning address.
func (c *client) StoreBlob(ctx context.Context, data []byte) (string, error) {
	id := uuid.NewString()
	if err := c.setRaw(blobKey(id), data, 0); err != nil {
		return "", err
	}
	return id, nil
}

// FetchBlob loads the blob with the given id, or ErrBlobNotFound.
func (c *client) FetchBlob(ctx context.Context, id string) ([]byte, error) {
	data, found, err := c.getRaw(blobKey(id))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrBlobNotFound
	}
	return data, nil
}

// DeleteBlob removes the blob with the given id. Removing a missing blob is
// a no-op.
func (c *client) DeleteBlob(ctx context.Context, id string) error {
	return c.remove(blobKey(id))
}

// Ensure the client satisfies the BlobStorage interface at compile time.
var _ accountregistry.BlobStorage = (*client)(nil)
