package catalog

import (
	"context"
	"errors"
	"log"

	"github.com/StuartGrossman/Consigment-sub002/internal/backend"
	"github.com/StuartGrossman/Consigment-sub002/internal/cache"
	"github.com/StuartGrossman/Consigment-sub002/internal/domain"
	"golang.org/x/sync/singleflight"
)

// Lookup is the backend side of a barcode resolution.
type Lookup interface {
	LookupItem(ctx context.Context, barcode string) (*domain.SellableItem, error)
}

// Client resolves barcodes to sellable items, fronting the backend with a
// redis cache. Concurrent lookups for the same barcode collapse into one
// backend call.
type Client struct {
	backend Lookup
	cache   cache.ItemCache
	sfg     singleflight.Group
}

func NewClient(backend Lookup, itemCache cache.ItemCache) *Client {
	return &Client{
		backend: backend,
		cache:   itemCache,
	}
}

func (c *Client) Lookup(ctx context.Context, barcode string) (*domain.SellableItem, error) {
	v, err, _ := c.sfg.Do(barcode, func() (interface{}, error) {

		if c.cache != nil {
			item, err := c.cache.Get(ctx, barcode)
			if err == nil {
				return item, nil
			}
			if !errors.Is(err, cache.ErrCacheMiss) {
				log.Printf("item cache get error: %v", err) // log cache error but continue
			}
		}

		item, errLookup := c.backend.LookupItem(ctx, barcode)
		if errLookup != nil {
			var unavailable *backend.UnavailableError
			if errors.As(errLookup, &unavailable) && c.cache != nil {
				// A cached copy may be why this barcode was scanned at all;
				// the item just sold or was pulled, so drop it.
				evictStale(c.cache, barcode)
			}
			return nil, errLookup
		}

		if c.cache != nil {
			go func() {
				if errSet := c.cache.Set(context.Background(), barcode, item); errSet != nil {
					log.Printf("item cache set error: %v", errSet)
				}
			}()
		}

		return item, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.SellableItem), nil
}

func evictStale(itemCache cache.ItemCache, barcode string) {
	if err := itemCache.Delete(context.Background(), barcode); err != nil {
		log.Printf("item cache evict error: %v", err)
	}
}
