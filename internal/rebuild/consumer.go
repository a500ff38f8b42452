package rebuild

import (
	"context"
	std "errors"
	"time"

	"github.com/ahmeedHassan1/ir-iss-project/pkg/errors"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/kafka"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/logger"
)

// Request is the payload on the rebuild-request topic. Reason is free
// text for the logs.
type Request struct {
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requested_at"`
}

// HandleRequest returns a Kafka MessageHandler that triggers a rebuild
// for every request event. A rebuild already in flight absorbs the
// request; the running rebuild will pick up the same corpus state.
func HandleRequest(rebuilder *Rebuilder) kafka.MessageHandler {
	log := logger.WithComponent("rebuild-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		req, err := kafka.DecodeJSON[Request](value)
		if err != nil {
			log.Error("failed to decode rebuild request",
				"error", err,
				"key", string(key),
			)
			return nil
		}
		log.Info("rebuild requested", "reason", req.Reason)

		if _, err := rebuilder.Rebuild(ctx); err != nil {
			if std.Is(err, errors.ErrRebuildInProgress) {
				log.Info("rebuild request absorbed by running rebuild")
				return nil
			}
			// Do not block the consumer offset on a failed rebuild;
			// the next request retries from scratch.
			log.Error("requested rebuild failed",
				"reason", req.Reason,
				"error", err,
			)
		}
		return nil
	}
}
