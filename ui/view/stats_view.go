package view

import (
	"fmt"
	"time"

	"github.com/soocke/facebox-go/ui/model"
	"github.com/soocke/facebox-go/ui/theme"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// StatsView shows run durations and pipeline counters.
type StatsView struct {
	runLbl   *LabelWidget
	totalLbl *LabelWidget
	statsLbl *LabelWidget
}

// NewStatsView creates the labels in parent. Run and total sit side by side
// on row; the counters line spans the row below.
func NewStatsView(parent *FrameWidget, row int) *StatsView {
	muted := theme.MutedLabel()
	s := &StatsView{
		runLbl:   Label(append(muted, Width(14))...),
		totalLbl: Label(append(muted, Width(14))...),
		statsLbl: Label(muted...),
	}
	Grid(s.runLbl, In(parent), Row(row), Column(0), Sticky("w"), Padx("0.2m"))
	Grid(s.totalLbl, In(parent), Row(row), Column(1), Sticky("w"), Padx("0.2m"))
	Grid(s.statsLbl, In(parent), Row(row+1), Column(0), Columnspan(2), Sticky("we"), Padx("0.2m"))
	s.SetSession(model.SessionTimes{})
	s.SetStats("frames 0")
	return s
}

func clock(d time.Duration) string {
	seconds := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// SetSession updates the run and total duration labels.
func (s *StatsView) SetSession(t model.SessionTimes) {
	if s == nil || s.runLbl == nil {
		return
	}
	s.runLbl.Configure(Txt("Run: " + clock(t.Run)))
	s.totalLbl.Configure(Txt("Total: " + clock(t.Total)))
}

// SetStats replaces the counters line.
func (s *StatsView) SetStats(text string) {
	if s == nil || s.statsLbl == nil {
		return
	}
	s.statsLbl.Configure(Txt(text))
}
