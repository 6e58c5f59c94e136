package jobs

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// ResetTokenPurger deletes expired password reset tokens.
type ResetTokenPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// ResetTokenSweeper removes reset tokens nobody redeemed. Redemption already
// rejects expired tokens, so the sweep only keeps the collection small.
type ResetTokenSweeper struct {
	Resets ResetTokenPurger
}

// NewResetTokenSweeper creates a new instance of ResetTokenSweeper
func NewResetTokenSweeper(resets ResetTokenPurger) *ResetTokenSweeper {
	return &ResetTokenSweeper{Resets: resets}
}

func (d *ResetTokenSweeper) Run(ctx context.Context) error {
	n, err := d.Resets.PurgeExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to purge reset tokens: %w", err)
	}

	logrus.WithField("deleted", n).Info("Reset token sweep completed")
	return nil
}
