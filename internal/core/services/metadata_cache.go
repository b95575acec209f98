package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/cashbookhq/cashbook-bot/internal/apperrors"
	"github.com/cashbookhq/cashbook-bot/internal/core/domain"
	"github.com/cashbookhq/cashbook-bot/internal/core/ports"
	portssvc "github.com/cashbookhq/cashbook-bot/internal/core/ports/services"
	"github.com/cashbookhq/cashbook-bot/internal/middleware"
)

// Placeholder titles rendered when no data, fresh or stale, is available.
const (
	placeholderSlow        = "Taking too long"
	placeholderUnavailable = "Unavailable"
)

const spreadsheetsKey = "spreadsheets"

type spreadsheetsEntry struct {
	handles   []domain.SpreadsheetHandle
	fetchedAt time.Time
}

type worksheetsEntry struct {
	worksheets []domain.WorksheetInfo
	fetchedAt  time.Time
}

// MetadataCache fronts spreadsheet metadata lookups with a TTL cache. Loads
// are collapsed per key (single-flight) and bounded by the gateway deadline.
// Lookups never fail hard: stale data is served through an outage, and a cold
// outage yields a placeholder entry the chat menu can still render.
type MetadataCache struct {
	gateway  ports.SheetsGateway
	ttl      time.Duration
	deadline time.Duration
	group    singleflight.Group

	mu           sync.RWMutex
	spreadsheets *spreadsheetsEntry
	worksheets   map[string]*worksheetsEntry
}

var _ portssvc.MetadataSvcFacade = (*MetadataCache)(nil)

func NewMetadataCache(gateway ports.SheetsGateway, ttl, deadline time.Duration) *MetadataCache {
	return &MetadataCache{
		gateway:    gateway,
		ttl:        ttl,
		deadline:   deadline,
		worksheets: map[string]*worksheetsEntry{},
	}
}

func (c *MetadataCache) GetSpreadsheets(ctx context.Context, force bool) []domain.SpreadsheetHandle {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !force {
		c.mu.RLock()
		entry := c.spreadsheets
		c.mu.RUnlock()
		if entry != nil && time.Since(entry.fetchedAt) < c.ttl {
			return entry.handles
		}
	}

	result, err, _ := c.group.Do(spreadsheetsKey, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.Background(), c.deadline)
		defer cancel()
		handles, err := c.gateway.ListSpreadsheets(loadCtx)
		if err != nil {
			if loadCtx.Err() != nil {
				return nil, fmt.Errorf("%w: %v", apperrors.ErrDeadline, err)
			}
			return nil, err
		}
		c.mu.Lock()
		c.spreadsheets = &spreadsheetsEntry{handles: handles, fetchedAt: time.Now()}
		c.mu.Unlock()
		return handles, nil
	})
	if err == nil {
		return result.([]domain.SpreadsheetHandle)
	}

	logger.Warn("Spreadsheet list load failed", slog.String("error", err.Error()))
	c.mu.RLock()
	stale := c.spreadsheets
	c.mu.RUnlock()
	if stale != nil {
		return stale.handles
	}
	return []domain.SpreadsheetHandle{{Title: placeholderTitle(err)}}
}

func (c *MetadataCache) GetWorksheets(ctx context.Context, spreadsheetID string, force bool) []domain.WorksheetInfo {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !force {
		c.mu.RLock()
		entry := c.worksheets[spreadsheetID]
		c.mu.RUnlock()
		if entry != nil && time.Since(entry.fetchedAt) < c.ttl {
			return entry.worksheets
		}
	}

	result, err, _ := c.group.Do("worksheets:"+spreadsheetID, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.Background(), c.deadline)
		defer cancel()
		info, err := c.gateway.Describe(loadCtx, spreadsheetID)
		if err != nil {
			if loadCtx.Err() != nil {
				return nil, fmt.Errorf("%w: %v", apperrors.ErrDeadline, err)
			}
			return nil, err
		}
		c.mu.Lock()
		c.worksheets[spreadsheetID] = &worksheetsEntry{worksheets: info.Worksheets, fetchedAt: time.Now()}
		c.mu.Unlock()
		return info.Worksheets, nil
	})
	if err == nil {
		return result.([]domain.WorksheetInfo)
	}

	logger.Warn("Worksheet list load failed", slog.String("spreadsheet_id", spreadsheetID), slog.String("error", err.Error()))
	c.mu.RLock()
	stale := c.worksheets[spreadsheetID]
	c.mu.RUnlock()
	if stale != nil {
		return stale.worksheets
	}
	return []domain.WorksheetInfo{{Title: placeholderTitle(err)}}
}

func (c *MetadataCache) Invalidate(spreadsheetID string) {
	c.mu.Lock()
	delete(c.worksheets, spreadsheetID)
	c.mu.Unlock()
}

func (c *MetadataCache) InvalidateAll() {
	c.mu.Lock()
	c.spreadsheets = nil
	c.worksheets = map[string]*worksheetsEntry{}
	c.mu.Unlock()
}

func placeholderTitle(err error) string {
	if errors.Is(err, apperrors.ErrDeadline) || errors.Is(err, context.DeadlineExceeded) {
		return placeholderSlow
	}
	return placeholderUnavailable
}
