package cmd

import (
	"context"
	"fmt"

	domainTrip "github.com/slaxmankiran/aitravel-app-sub008/domains/trip"
	"github.com/sirupsen/logrus"
)

// RecoverInterruptedPlans repairs trips left in PLANNING by a crash or
// restart. Generation state lives in memory only, so at boot no generation
// can actually be running: trips with every day persisted are promoted to
// READY, the rest fall back to DRAFT (already generated days are kept and
// reused by the next generation run).
func RecoverInterruptedPlans(ctx context.Context, repo domainTrip.ITripRepository) error {
	trips, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list trips: %w", err)
	}

	recovered := 0
	for _, t := range trips {
		if t.Status != domainTrip.StatusPlanning {
			continue
		}

		days, err := repo.DaysByTrip(ctx, t.ID)
		if err != nil {
			logrus.Errorf("[MIGRATION] Failed to load days for trip %s: %v", t.ID, err)
			continue
		}

		if len(days) >= t.DurationDays() {
			if err := repo.MarkDaysConfirmed(ctx, t.ID); err != nil {
				logrus.Errorf("[MIGRATION] Failed to confirm days for trip %s: %v", t.ID, err)
				continue
			}
			t.Status = domainTrip.StatusReady
			logrus.Infof("[MIGRATION] Trip %s had a full itinerary, promoting to READY", t.ID)
		} else {
			t.Status = domainTrip.StatusDraft
			logrus.Infof("[MIGRATION] Trip %s was mid-generation (%d/%d days), resetting to DRAFT",
				t.ID, len(days), t.DurationDays())
		}

		if err := repo.Update(ctx, t); err != nil {
			logrus.Errorf("[MIGRATION] Failed to update trip %s: %v", t.ID, err)
			continue
		}
		recovered++
	}

	if recovered > 0 {
		logrus.Infof("[MIGRATION] Recovered %d interrupted trips", recovered)
	}
	return nil
}
