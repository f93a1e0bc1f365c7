package news

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
)

// cronParser accepts standard 5-field cron expressions.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// StartAutoRefresh refreshes the feed on the given cron schedule until ctx
// is cancelled. Returns a stop function.
func (f *Fetcher) StartAutoRefresh(ctx context.Context, expr string) (func(), error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("news: bad refresh schedule %q: %w", expr, err)
	}

	c := cron.New(cron.WithParser(cronParser))
	c.Schedule(sched, cron.FuncJob(func() {
		f.Refresh(ctx)
	}))
	c.Start()

	stop := func() { c.Stop() }
	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	return stop, nil
}
