package consumer

import (
	"context"
	"encoding/json"

	"go-outpass/internal/events"
	"go-outpass/internal/report"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeGateEntries invalidates the cached report snapshot whenever a gate
// scan completes an outpass, so the next report query re-fetches fresh data.
func ConsumeGateEntries(
	ctx context.Context,
	reader *kafkago.Reader,
	rdb *redis.Client,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.gate_entry")
	log.Info("gate entry consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("gate entry consumer stopped")
				return
			}
			log.Error("fetch gate entry message failed", zap.Error(err))
			continue
		}

		var event events.GateEntryRecordedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode gate_entry_recorded event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := rdb.Del(ctx, report.SnapshotCacheKey).Err(); err != nil {
			log.Error("invalidate report snapshot failed",
				zap.String("outpass_id", event.OutpassID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit gate entry message failed", zap.Error(err))
			continue
		}

		log.Info("report snapshot invalidated from gate entry",
			zap.String("outpass_id", event.OutpassID),
			zap.String("gate_name", event.GateName),
		)
	}
}
