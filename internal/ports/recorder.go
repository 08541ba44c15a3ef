package ports

import (
	"time"

	"github.com/bnema/exchange-dash/internal/domain"
)

type TierOutcome string

const (
	TierOutcomeSuccess   TierOutcome = "success"
	TierOutcomeTransport TierOutcome = "transport"
	TierOutcomeShape     TierOutcome = "shape"
	TierOutcomeError     TierOutcome = "error"
)

// Recorder receives resolution telemetry.
type Recorder interface {
	TierAttempt(tier domain.Tier, outcome TierOutcome)
	CacheLookup(hit bool)
	Resolution(duration time.Duration, err error)
	TickSkipped()
}

type NopRecorder struct{}

func (NopRecorder) TierAttempt(domain.Tier, TierOutcome) {}
func (NopRecorder) CacheLookup(bool) {}
func (NopRecorder) Resolution(time.Duration, error) {}
func (NopRecorder) TickSkipped() {}
