package cache

import (
	"context"
	"errors"

	"github.com/StuartGrossman/Consigment-sub002/internal/domain"
)

type ItemCache interface {
	Get(ctx context.Context, barcode string) (*domain.SellableItem, error)
	Set(ctx context.Context, barcode string, item *domain.SellableItem) error
	Delete(ctx context.Context, barcode string) error
}

var ErrCacheMiss = errors.New("cache miss")
