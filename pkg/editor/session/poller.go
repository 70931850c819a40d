package session

import (
	"context"
	"time"

	"github.com/askiada/pipeline-editor/internal/ctxlog"
)

// Poller keeps the coordinator cache in sync with the service.
type Poller struct {
	coordinator *Coordinator
	svc         Service
	interval    time.Duration
}

func NewPoller(coordinator *Coordinator, svc Service, interval time.Duration) *Poller {
	return &Poller{coordinator: coordinator, svc: svc, interval: interval}
}

// Run lists the sessions of the project once, listing again whenever the open project changes, then refreshes the open pipeline every interval until ctx is done.
// Failed calls are logged and retried on the next tick.
func (p *Poller) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var loaded string

	for {
		projectID, pipelineID := p.coordinator.Target()

		switch {
		case projectID == "":
		case loaded != projectID:
			sessions, err := p.svc.ListSessions(ctx, projectID)
			if err != nil {
				logger.Warn("unable to list sessions", "project_id", projectID, "error", err)

				break
			}

			loaded = projectID
			p.coordinator.Dispatch(SessionsLoaded{ProjectID: projectID, Sessions: sessions})
		case pipelineID != "":
			s, err := p.svc.GetSession(ctx, projectID, pipelineID)
			if err != nil {
				logger.Warn("unable to refresh session", "pipeline_id", pipelineID, "error", err)

				break
			}

			p.coordinator.Dispatch(SessionUpdated{PipelineID: pipelineID, Session: s})
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
