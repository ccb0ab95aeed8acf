package counter

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"messenger/chat-service/internal/repository"
)

// Named sequences. Values only increase; there is no reset.
const (
	SeqConversationID = "conversation_id"
	SeqMessageID      = "message_id"
)

const readAttempts = 3

// Allocator issues unique, strictly increasing IDs from a named
// counter cell. Safe under concurrent callers across processes: the
// increment is atomic at the storage layer, so every successful Next
// observes a value no other caller gets for the same sequence.
type Allocator struct {
	repo   repository.MessengerRepository
	logger *logrus.Logger
}

func NewAllocator(repo repository.MessengerRepository, logger *logrus.Logger) *Allocator {
	return &Allocator{
		repo:   repo,
		logger: logger,
	}
}

// Next increments the sequence and reads the new value. If the read
// fails after a successful increment, only the read is retried:
// re-incrementing would burn a value, which is tolerable, but could
// never make the original read succeed. Gaps in a sequence are fine;
// duplicates never happen.
func (a *Allocator) Next(ctx context.Context, sequence string) (int64, error) {
	if err := a.repo.IncrementCounter(ctx, sequence); err != nil {
		return 0, err
	}

	var lastErr error
	for attempt := 1; attempt <= readAttempts; attempt++ {
		value, err := a.repo.ReadCounter(ctx, sequence)
		if err == nil {
			return value, nil
		}
		lastErr = err

		a.logger.WithError(err).WithFields(logrus.Fields{
			"sequence": sequence,
			"attempt":  attempt,
		}).Warn("Counter read failed after increment, retrying read")

		if attempt < readAttempts {
			select {
			case <-time.After(time.Duration(attempt) * 50 * time.Millisecond):
			case <-ctx.Done():
				return 0, ctx.Err()
			}
		}
	}

	return 0, lastErr
}
