package services

import (
	"context"

	"github.com/robfig/cron/v3"
)

// StartExpirySweeper schedules a minutely pass that takes doctors offline
// once their available-until has passed. The returned cron can be stopped on
// shutdown.
func StartExpirySweeper(svc *AvailabilityService) *cron.Cron {
	scheduler := cron.New()
	scheduler.AddFunc("@every 1m", func() {
		if _, err := svc.ExpireOverdue(context.Background()); err != nil {
			svc.Logger.WithError(err).Error("Availability expiry sweep failed")
		}
	})
	scheduler.Start()
	return scheduler
}
