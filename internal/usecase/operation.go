package usecase

import (
	"context"
	"time"

	"tubetext/internal/domain"
)

// operation is the single in-flight request of an Orchestrator. Fields other
// than translation are fixed at creation; translation is guarded by the
// orchestrator mutex.
type operation struct {
	generation uint64
	mode       domain.Mode
	cancel     context.CancelFunc
	started    time.Time
	segments   []domain.Segment

	translation translationAccumulator
}
