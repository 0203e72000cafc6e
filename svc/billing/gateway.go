package billing

import (
	"context"

	"github.com/Cachi0001/Biz-sub002/pkg/plan"
)

// PaymentVerification is the gateway's verdict on a payment reference. The
// orchestrator trusts it as-is; amount verification happened on the gateway's
// side before this result was produced.
type PaymentVerification struct {
	Success    bool
	AmountPaid int64 // smallest currency unit
	PlanIntent plan.ID
	Reference  string
}

// PaymentGateway verifies payment references with the external provider.
// Implementations live outside this core; tests use stubs.
type PaymentGateway interface {
	Verify(ctx context.Context, reference string) (*PaymentVerification, error)
}

// Transactor runs a function as one all-or-nothing unit. The production
// implementation is pg.Transactor; PassthroughTransactor serves in-memory
// tests where every store call commits immediately.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PassthroughTransactor executes the function directly with no transaction
// boundary.
type PassthroughTransactor struct{}

func (PassthroughTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
