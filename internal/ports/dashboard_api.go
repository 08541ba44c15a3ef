package ports

import (
	"context"

	"github.com/bnema/exchange-dash/internal/domain"
)

// DashboardAPI is the backend as seen by the resolver. Implementations wrap
// network and HTTP failures in domain.ErrTransport and undecodable payloads
// in domain.ErrShape.
type DashboardAPI interface {
	EnhancedStats(ctx context.Context, viewer domain.Viewer) (domain.EnhancedFragment, error)
	Overview(ctx context.Context, viewer domain.Viewer) (domain.OverviewFragment, error)
	ListExchanges(ctx context.Context) ([]domain.Exchange, error)
	ListTasks(ctx context.Context) ([]domain.Task, error)
	TriggerSync(ctx context.Context, idempotencyKey string) (domain.SyncReceipt, error)
}
