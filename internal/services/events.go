package services

import (
	"context"

	"checkout-service/internal/config"
	rabbit "checkout-service/internal/infra/rabbitmq"

	"github.com/sirupsen/logrus"
)

// publishEvent runs after the data is committed, so a broker failure is
// logged and never reported to the caller.
func publishEvent(ctx context.Context, pub rabbit.PublisherInterface, pattern string, evt any) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, pattern, evt); err != nil {
		config.LogError(config.GetLogger(), "services", "publishEvent", "failed to publish event", logrus.Fields{"pattern": pattern}, err)
		return
	}
	config.GetLogger().WithField("pattern", pattern).Debug("event published")
}
