package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/cashbookhq/cashbook-bot/internal/core/domain"
	"github.com/cashbookhq/cashbook-bot/internal/core/ports"
	portssvc "github.com/cashbookhq/cashbook-bot/internal/core/ports/services"
	"github.com/cashbookhq/cashbook-bot/internal/middleware"
	"github.com/cashbookhq/cashbook-bot/internal/utils"
)

// ReportService fans record mutations out to subscribed chats. Subscription
// state lives in the bot config file; delivery failure to one subscriber does
// not affect the others.
type ReportService struct {
	store    ports.BotConfigStore
	notifier ports.Notifier

	mu  sync.Mutex
	cfg domain.BotConfig
}

var _ portssvc.ReportSvcFacade = (*ReportService)(nil)

func NewReportService(store ports.BotConfigStore, notifier ports.Notifier) (*ReportService, error) {
	cfg, err := store.LoadBotConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load bot config: %w", err)
	}
	return &ReportService{store: store, notifier: notifier, cfg: cfg}, nil
}

func (s *ReportService) Publish(ctx context.Context, action domain.RecordAction, record *domain.Record, actor *domain.Identity) {
	logger := middleware.GetLoggerFromCtx(ctx)

	s.mu.Lock()
	subs := make([]domain.ReportSubscription, 0, len(s.cfg.ReportChats))
	for chatID, sub := range s.cfg.ReportChats {
		sub.ChatID = chatID
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	text := reportText(action, record, actor)
	for _, sub := range subs {
		if !sub.Enabled || !sub.Matches(*record) {
			continue
		}
		if err := s.notifier.Send(ctx, sub.ChatID, text); err != nil {
			logger.Warn("Failed to deliver report",
				slog.Int64("chat_id", sub.ChatID),
				slog.String("record_id", record.ID),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (s *ReportService) Subscribe(ctx context.Context, chatID int64, spreadsheetID, sheetName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg.ReportChats == nil {
		s.cfg.ReportChats = map[int64]domain.ReportSubscription{}
	}
	s.cfg.ReportChats[chatID] = domain.ReportSubscription{
		ChatID:        chatID,
		SpreadsheetID: spreadsheetID,
		SheetName:     sheetName,
		Enabled:       true,
	}
	if err := s.store.SaveBotConfig(s.cfg); err != nil {
		return fmt.Errorf("failed to persist report subscription: %w", err)
	}
	return nil
}

func (s *ReportService) Unsubscribe(ctx context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.cfg.ReportChats[chatID]
	if !ok {
		return nil
	}
	sub.Enabled = false
	s.cfg.ReportChats[chatID] = sub
	if err := s.store.SaveBotConfig(s.cfg); err != nil {
		return fmt.Errorf("failed to persist report subscription: %w", err)
	}
	return nil
}

func reportText(action domain.RecordAction, record *domain.Record, actor *domain.Identity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s %s", action, record.ID, utils.DisplayDate(record.Date))
	if record.IsOmission() {
		fmt.Fprintf(&b, " %s: no expenses", record.Supplier)
	} else {
		fmt.Fprintf(&b, " %s / %s / %s: %s", record.Supplier, record.Direction, record.Description, record.Amount.String())
	}
	if actor != nil && actor.DisplayName != "" {
		fmt.Fprintf(&b, " (by %s)", actor.DisplayName)
	}
	return b.String()
}
