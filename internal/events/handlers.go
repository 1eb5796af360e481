package events

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/ev-demand-service/internal/domain"
)

// LogDemandCalculated records routine recalculations at info level.
func LogDemandCalculated(logger *slog.Logger) Handler {
	return func(_ context.Context, event domain.Event) error {
		e, ok := event.(domain.DemandCalculated)
		if !ok {
			return nil
		}
		logger.Info("demand analysis calculated",
			"area_id", e.AreaID.String(),
			"priority", string(e.Priority.Level),
			"population", e.Population,
			"station_count", e.StationCount,
			"residents_per_station", e.Priority.ResidentsPerStation,
		)
		return nil
	}
}

// LogHighDemandIdentified raises a warning for areas that reached HIGH priority.
func LogHighDemandIdentified(logger *slog.Logger) Handler {
	return func(_ context.Context, event domain.Event) error {
		e, ok := event.(domain.HighDemandIdentified)
		if !ok {
			return nil
		}
		logger.Warn("high demand area identified",
			"area_id", e.AreaID.String(),
			"urgency_score", e.UrgencyScore,
			"population", e.Population,
			"station_count", e.StationCount,
		)
		return nil
	}
}

// SubscribeLogging attaches the logging handlers for both demand events.
func SubscribeLogging(c *Channel, logger *slog.Logger) {
	c.Subscribe(domain.EventDemandCalculated, LogDemandCalculated(logger))
	c.Subscribe(domain.EventHighDemandIdentified, LogHighDemandIdentified(logger))
}
