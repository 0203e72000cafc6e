package usage

import (
	"errors"
	"fmt"

	"github.com/Cachi0001/Biz-sub002/pkg/plan"
)

var (
	ErrRecordNotFound         = errors.New("usage record not found")
	ErrUnknownFeature         = errors.New("feature not tracked by plan")
	ErrNoRecounterRegistered  = errors.New("no recounter registered for feature")
	ErrWriteConflict          = errors.New("usage counter write conflict")
	ErrWriteConflictExhausted = errors.New("usage counter write conflict persisted after retries")
)

// LimitExceededError is returned when a create would exceed the plan limit.
// It carries enough detail for an actionable caller-facing message.
type LimitExceededError struct {
	Feature plan.Feature
	Limit   int64
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("usage limit of %d reached for %s this billing period: upgrade your plan to continue", e.Limit, e.Feature)
}

// IsLimitExceededError reports whether err is a limit rejection.
func IsLimitExceededError(err error) bool {
	var e *LimitExceededError
	return errors.As(err, &e)
}
