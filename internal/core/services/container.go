package services

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cashbookhq/cashbook-bot/internal/core/ports"
	"github.com/cashbookhq/cashbook-bot/internal/core/ports/repositories"
	portssvc "github.com/cashbookhq/cashbook-bot/internal/core/ports/services"
	"github.com/cashbookhq/cashbook-bot/internal/platform/config"
)

// NewServiceContainer wires every service with its dependencies. The returned
// container is what the ops handlers and the chat transport consume.
func NewServiceContainer(
	cfg *config.Config,
	repos repositories.RepositoryProvider,
	gateway ports.SpreadsheetGateway,
	stateStore ports.IdentityStateStore,
	botCfgStore ports.BotConfigStore,
	notifier ports.Notifier,
	logger *slog.Logger,
) (*portssvc.ServiceContainer, error) {
	identity, err := NewIdentityService(stateStore, cfg.SuperAdminID, cfg.AdminIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build identity service: %w", err)
	}

	report, err := NewReportService(botCfgStore, notifier)
	if err != nil {
		return nil, fmt.Errorf("failed to build report service: %w", err)
	}

	mirror := NewMirrorService(gateway, notifier, cfg.MirrorWorkers, logger)
	metadata := NewMetadataCache(gateway,
		time.Duration(cfg.CacheTTLMinutes)*time.Minute,
		time.Duration(cfg.GatewayDeadlineSeconds)*time.Second,
	)

	return &portssvc.ServiceContainer{
		Identity:  identity,
		Record:    NewRecordService(repos.RecordRepo, identity, mirror, report),
		Payment:   NewPaymentService(repos.PaymentRepo, identity, mirror, notifier, cfg.PaymentsSpreadsheetID),
		Mirror:    mirror,
		Reconcile: NewReconcileService(repos.RecordRepo, repos.PaymentRepo, gateway, cfg.PaymentsSpreadsheetID),
		Metadata:  metadata,
		Report:    report,
	}, nil
}
