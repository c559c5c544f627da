package presenter

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/soocke/facebox-go/domain/capture"
	"github.com/soocke/facebox-go/domain/pipeline"
	"github.com/soocke/facebox-go/ui/model"
)

// CaptureEnabledModel reports whether capture is enabled.
type CaptureEnabledModel interface{ Enabled() bool }

// PipelineStatsSource reports controller counters.
type PipelineStatsSource interface{ Stats() pipeline.Stats }

// CaptureStatsSource reports frame source counters.
type CaptureStatsSource interface{ Stats() capture.CaptureStats }

// StatsView displays session durations and pipeline counters.
type StatsView interface {
	SetSession(t model.SessionTimes)
	SetStats(text string)
}

// StatsPresenter advances the session model every tick and refreshes the
// counters at most once per interval.
type StatsPresenter struct {
	sess     *model.SessionModel
	cap      CaptureEnabledModel
	pipe     PipelineStatsSource
	source   CaptureStatsSource
	view     StatsView
	interval time.Duration
	last     time.Time
}

func NewStatsPresenter(sess *model.SessionModel, cap CaptureEnabledModel, pipe PipelineStatsSource, source CaptureStatsSource, view StatsView) *StatsPresenter {
	return &StatsPresenter{sess: sess, cap: cap, pipe: pipe, source: source, view: view, interval: time.Second}
}

func (p *StatsPresenter) Tick(now time.Time) {
	if p == nil || p.sess == nil || p.cap == nil || p.view == nil {
		return
	}
	p.sess.OnTick(p.cap.Enabled(), now)
	p.view.SetSession(p.sess.Times())
	if !p.last.IsZero() && now.Sub(p.last) < p.interval {
		return
	}
	p.last = now
	var ps pipeline.Stats
	var cs capture.CaptureStats
	if p.pipe != nil {
		ps = p.pipe.Stats()
	}
	if p.source != nil {
		cs = p.source.Stats()
	}
	p.view.SetStats(FormatStats(ps, cs))
}

// FormatStats renders counters for the stats line.
func FormatStats(ps pipeline.Stats, cs capture.CaptureStats) string {
	return fmt.Sprintf("frames %s | faces %s ok, %s failed | dropped %s | latency %s",
		humanize.Comma(int64(ps.Received)),
		humanize.Comma(int64(ps.Succeeded)),
		humanize.Comma(int64(ps.Failed)),
		humanize.Comma(int64(cs.Dropped)),
		ps.LastLatency.Round(time.Millisecond),
	)
}
