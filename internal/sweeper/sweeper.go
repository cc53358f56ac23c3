// Package sweeper permanently removes messages past their expiry timestamp.
package sweeper

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/sujalbistaa/sonymous/internal/models"
)

// Sweeper deletes expired messages. The clock is injectable so tests can pin
// "now".
type Sweeper struct {
	db  *gorm.DB
	now func() time.Time
}

func New(db *gorm.DB, now func() time.Time) *Sweeper {
	if now == nil {
		now = time.Now
	}
	return &Sweeper{db: db, now: now}
}

// Sweep deletes every message whose expires_at is set and has passed,
// soft-deleted or not, and returns the number of rows removed. Sweeping with
// nothing expired removes zero rows and is not an error.
func (s *Sweeper) Sweep() (int64, error) {
	res := s.db.
		Where("expires_at IS NOT NULL AND expires_at <= ?", s.now()).
		Delete(&models.Message{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// Run sweeps every interval until ctx is cancelled. Failures are logged and
// the loop keeps going; the next tick retries.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			deleted, err := s.Sweep()
			if err != nil {
				log.Printf("Expiry sweep failed: %v", err)
				continue
			}
			log.Printf("Expiry sweep removed %d message(s)", deleted)
		case <-ctx.Done():
			return
		}
	}
}
