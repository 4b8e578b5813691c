// Package scoring maintains per-partner performance records from lead status
// transitions and computes the normalized 0-100 performance percentage.
package scoring

import (
	"math"
	"time"

	"prmhub_backend/internal/leads/domain"
)

const (
	// stallThresholdDays is how long a lead may sit in New before a
	// transition out of it counts as a stall event.
	stallThresholdDays = 7

	firstDayBonus     = 1
	lostPenalty       = -5
	stallPenalty      = -3
	levelStepPoints   = 2

	// Logistic normalization constants. An average of 3 points per lead maps
	// to 50%. These are policy values; existing performance data depends on
	// them, so they must not drift.
	logisticSlope    = 0.4
	logisticMidpoint = 3.0
)

// daysSince is the whole number of days between createdAt and now,
// floored (a transition 6 days and 23 hours in is still day 6).
func daysSince(createdAt, now time.Time) int {
	return int(math.Floor(now.Sub(createdAt).Hours() / 24))
}

// ScoreTransition computes the points earned by a single status transition.
// oldStatus is nil on the lead's initial assignment. The result is additive
// across these rules and is not clamped:
//
//  1. +1 when the lead leaves New on the day it was created.
//  2. -5 when the new status is Lost (suppresses rules 3 and 4).
//  3. +-2 per ladder level moved, downgrades only counted when the old
//     status was itself on the ladder.
//  4. +level(newStatus) on initial assignment (landing directly in
//     Qualified nets +2, New nets 0).
//  5. -3 when the lead leaves New more than 7 days after creation.
func ScoreTransition(leadCreatedAt time.Time, oldStatus *domain.Status, newStatus domain.Status, now time.Time) int {
	days := daysSince(leadCreatedAt, now)
	points := 0

	if days == 0 && oldStatus != nil && *oldStatus == domain.StatusNew {
		points += firstDayBonus
	}

	switch {
	case newStatus == domain.StatusLost:
		points += lostPenalty
	case oldStatus != nil:
		oldLevel := oldStatus.Level()
		newLevel := newStatus.Level()
		if newLevel > oldLevel {
			points += levelStepPoints * (newLevel - oldLevel)
		} else if newLevel < oldLevel && oldLevel != domain.LostLevel {
			points -= levelStepPoints * (oldLevel - newLevel)
		}
	default:
		points += newStatus.Level()
	}

	if oldStatus != nil && *oldStatus == domain.StatusNew && days > stallThresholdDays {
		points += stallPenalty
	}

	return points
}

// normalizeScore maps an average points-per-lead onto 0-100 via the logistic
// curve, rounding half away from zero.
func normalizeScore(avg float64) int {
	pct := 100 / (1 + math.Exp(-logisticSlope*(avg-logisticMidpoint)))
	return int(math.Round(pct))
}
