package offline

import (
	"encoding/json"
	"time"

	"prepkit-sync-server/internal/domain"

	"github.com/google/uuid"
)

// queue is the ordered list of not-yet-confirmed server writes. Oldest first;
// eviction at cap drops from the front.
type queue struct {
	ops        []domain.SyncOperation
	cap        int
	maxRetries int
}

func newOperation(kind domain.OperationKind, payload any) (domain.SyncOperation, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return domain.SyncOperation{}, err
	}
	return domain.SyncOperation{
		ID:        uuid.New().String(),
		Kind:      kind,
		Payload:   raw,
		CreatedAt: time.Now(),
	}, nil
}

func (q *queue) push(op domain.SyncOperation) {
	q.ops = append(q.ops, op)
	if q.cap > 0 && len(q.ops) > q.cap {
		// FIFO eviction: keep the most recent cap entries.
		q.ops = q.ops[len(q.ops)-q.cap:]
	}
}

func (q *queue) snapshot() []domain.SyncOperation {
	out := make([]domain.SyncOperation, len(q.ops))
	copy(out, q.ops)
	return out
}

// resolve removes succeeded operations, bumps retry state on failed ones, and
// evicts those that blew their retry budget, returning them as dropped.
func (q *queue) resolve(succeeded, failed []string, at time.Time) []domain.SyncOperation {
	done := make(map[string]bool, len(succeeded))
	for _, id := range succeeded {
		done[id] = true
	}
	retry := make(map[string]bool, len(failed))
	for _, id := range failed {
		retry[id] = true
	}

	var dropped []domain.SyncOperation
	kept := q.ops[:0]
	for _, op := range q.ops {
		switch {
		case done[op.ID]:
			// confirmed by the server, leave the queue
		case retry[op.ID]:
			op.RetryCount++
			t := at
			op.LastAttemptAt = &t
			if op.RetryCount > q.maxRetries {
				dropped = append(dropped, op)
			} else {
				kept = append(kept, op)
			}
		default:
			kept = append(kept, op)
		}
	}
	q.ops = kept
	return dropped
}
