package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/loeitech/booker/internal/metrics"
	"github.com/loeitech/booker/internal/repo"
	"github.com/robfig/cron/v3"
)

// Run starts a background sweep that counts open loans past their due date,
// logs the total, and refreshes the loans_overdue gauge. cronExpr is a
// standard 5-field cron expression (e.g. "0 8 * * *" for 08:00 daily). The
// sweep is read-only; it never mutates loan state.
func Run(transactions *repo.TransactionRepo, cronExpr string) {
	sweep := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		n, err := transactions.CountOverdue(ctx, time.Now())
		if err != nil {
			slog.Error("overdue sweep failed", "err", err)
			return
		}
		metrics.SetLoansOverdue(n)
		if n > 0 {
			slog.Warn("overdue loans", "count", n)
		}
	}

	c := cron.New()
	if _, err := c.AddFunc(cronExpr, sweep); err != nil {
		slog.Error("scheduler: invalid cron expression, sweep disabled", "cron", cronExpr, "err", err)
		return
	}

	// Initial sweep so the gauge is populated right after startup.
	sweep()
	c.Start()
}
