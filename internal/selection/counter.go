package selection

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/simplesurance/hooky/internal/kvstore"
)

// KVCounter is a Counter that is stored in a kvstore.Store.
type KVCounter struct {
	Store kvstore.Store
}

func (c *KVCounter) Increment(ctx context.Context, key string) (int64, error) {
	return c.Store.Incr(ctx, key)
}

func (c *KVCounter) Reset(ctx context.Context, key string, value int64) error {
	return c.Store.Set(ctx, key, []byte(strconv.FormatInt(value, 10)))
}

// DryRunCounter is a Counter that reads a counter from a kvstore.Store but
// never modifies it.
// Increment returns the value the counter would have after an increment,
// Reset does nothing.
type DryRunCounter struct {
	Store kvstore.Store
}

func (c *DryRunCounter) Increment(ctx context.Context, key string) (int64, error) {
	val, err := c.Store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return 1, nil
		}

		return 0, err
	}

	i, err := strconv.ParseInt(string(val), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("counter value %q of %q is not an integer: %w", val, key, err)
	}

	return i + 1, nil
}

func (*DryRunCounter) Reset(context.Context, string, int64) error {
	return nil
}
