package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ismail26477/crm-main/internal/adapters/collab"
	service "github.com/Ismail26477/crm-main/internal/app"
	"github.com/Ismail26477/crm-main/internal/domain/model"
	"github.com/Ismail26477/crm-main/internal/domain/types"
	"github.com/Ismail26477/crm-main/pkg/logger"
)

const fetchTimeout = 30 * time.Second

// load runs one reload plus the insight fetches against baseURL and
// returns the service holding the result. Partial collaborator failures
// are logged; a reload that produced no leads at all is an error.
func load(ctx context.Context, baseURL string, opts ...service.Option) (*service.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	log := logger.Get().Named("dashctl")
	client := collab.New(baseURL, collab.WithLogger(log.Named("collab")))
	opts = append([]service.Option{service.WithLogger(log), service.WithRealtimeInterval(0)}, opts...)
	svc := service.New(client, opts...)

	if err := svc.Reload(ctx); err != nil {
		if svc.Snapshot().LeadCount == 0 && errors.Is(err, collab.ErrCollaborator) {
			return nil, fmt.Errorf("reload from %s: %w", baseURL, err)
		}
		log.Warn(ctx, "partial reload", logger.Error(err))
	}
	for _, kind := range []model.TriggerKind{model.TriggerScores, model.TriggerTeam} {
		if err := svc.Handle(ctx, model.Trigger{Kind: kind, Source: "dashctl"}); err != nil {
			log.Warn(ctx, "insight unavailable", logger.String("trigger", string(kind)), logger.Error(err))
		}
	}
	return svc, nil
}

func parsePeriod(s string) (types.Granularity, error) {
	g, ok := types.ParseGranularity(s)
	if !ok {
		return "", fmt.Errorf("unknown period %q (daily, weekly, monthly)", s)
	}
	return g, nil
}

func checkWindow(days int) error {
	if days < 1 || days > 365 {
		return fmt.Errorf("window must be in 1..365, got %d", days)
	}
	return nil
}
