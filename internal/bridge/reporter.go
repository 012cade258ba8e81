package bridge

import (
	"context"
	"time"
)

// RunReporter calls report with a stats snapshot every interval until ctx
// is done. A final report is sent on exit. Blocks; run it in a goroutine.
func (b *Bridge) RunReporter(ctx context.Context, interval time.Duration, report func(Snapshot)) {
	if interval <= 0 {
		b.log.Warnf("Reporter: invalid interval %v, not started", interval)
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	b.log.Infof("Reporter: started, interval %v", interval)

	var last uint64
	for {
		select {
		case <-ctx.Done():
			report(b.stats.Snapshot())
			b.log.Info("Reporter: stopped")
			return
		case <-ticker.C:
			snap := b.stats.Snapshot()
			report(snap)
			if snap.Lines != last {
				b.log.Debugf("Reporter: %d lines (+%d), %d failed", snap.Lines, snap.Lines-last, snap.Failed)
				last = snap.Lines
			}
		}
	}
}
