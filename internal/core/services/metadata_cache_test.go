package services_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cashbookhq/cashbook-bot/internal/apperrors"
	"github.com/cashbookhq/cashbook-bot/internal/core/domain"
	"github.com/cashbookhq/cashbook-bot/internal/core/services"
)

func TestCacheServesFreshEntry(t *testing.T) {
	var loads atomic.Int32
	gateway := &stubGateway{
		ListSpreadsheetsFn: func(ctx context.Context) ([]domain.SpreadsheetHandle, error) {
			loads.Add(1)
			return []domain.SpreadsheetHandle{{ID: "S1", Title: "Expenses"}}, nil
		},
	}
	cache := services.NewMetadataCache(gateway, 30*time.Minute, time.Second)
	ctx := context.Background()

	first := cache.GetSpreadsheets(ctx, false)
	second := cache.GetSpreadsheets(ctx, false)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), loads.Load())

	cache.GetSpreadsheets(ctx, true)
	assert.Equal(t, int32(2), loads.Load())
}

func TestCacheServesStaleOnFailure(t *testing.T) {
	var failing atomic.Bool
	gateway := &stubGateway{
		DescribeFn: func(ctx context.Context, spreadsheetID string) (*domain.SpreadsheetInfo, error) {
			if failing.Load() {
				return nil, fmt.Errorf("%w: outage", apperrors.ErrGatewayTransient)
			}
			return &domain.SpreadsheetInfo{
				ID:         spreadsheetID,
				Worksheets: []domain.WorksheetInfo{{Title: "October", SheetID: 1}},
			}, nil
		},
	}
	cache := services.NewMetadataCache(gateway, 30*time.Minute, time.Second)
	ctx := context.Background()

	fresh := cache.GetWorksheets(ctx, "S1", false)
	require.Len(t, fresh, 1)
	assert.Equal(t, "October", fresh[0].Title)

	// Forced reload during an outage falls back to the cached value.
	failing.Store(true)
	stale := cache.GetWorksheets(ctx, "S1", true)
	assert.Equal(t, fresh, stale)
}

func TestCachePlaceholderOnColdFailure(t *testing.T) {
	gateway := &stubGateway{
		DescribeFn: func(ctx context.Context, spreadsheetID string) (*domain.SpreadsheetInfo, error) {
			return nil, fmt.Errorf("%w: outage", apperrors.ErrGatewayTransient)
		},
	}
	cache := services.NewMetadataCache(gateway, 30*time.Minute, time.Second)

	got := cache.GetWorksheets(context.Background(), "S1", false)
	require.Len(t, got, 1)
	assert.Equal(t, "Unavailable", got[0].Title)
}

func TestCachePlaceholderOnDeadline(t *testing.T) {
	gateway := &stubGateway{
		ListSpreadsheetsFn: func(ctx context.Context) ([]domain.SpreadsheetHandle, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	cache := services.NewMetadataCache(gateway, 30*time.Minute, 20*time.Millisecond)

	got := cache.GetSpreadsheets(context.Background(), false)
	require.Len(t, got, 1)
	assert.Equal(t, "Taking too long", got[0].Title)
}

func TestCacheInvalidate(t *testing.T) {
	var loads atomic.Int32
	gateway := &stubGateway{
		DescribeFn: func(ctx context.Context, spreadsheetID string) (*domain.SpreadsheetInfo, error) {
			loads.Add(1)
			return &domain.SpreadsheetInfo{ID: spreadsheetID, Worksheets: []domain.WorksheetInfo{{Title: "October"}}}, nil
		},
	}
	cache := services.NewMetadataCache(gateway, 30*time.Minute, time.Second)
	ctx := context.Background()

	cache.GetWorksheets(ctx, "S1", false)
	cache.GetWorksheets(ctx, "S1", false)
	assert.Equal(t, int32(1), loads.Load())

	cache.Invalidate("S1")
	cache.GetWorksheets(ctx, "S1", false)
	assert.Equal(t, int32(2), loads.Load())

	cache.InvalidateAll()
	cache.GetWorksheets(ctx, "S1", false)
	assert.Equal(t, int32(3), loads.Load())
}
