package main

import (
	"io"

	"github.com/gosuri/uiprogress"
)

// progressBar renders one bar whose total is learned from the first callback. It owns its
// uiprogress container so the bar never shares stdout with the summary line.
type progressBar struct {
	p   *uiprogress.Progress
	bar *uiprogress.Bar
}

func newProgress(w io.Writer) progressBar {
	p := uiprogress.New()
	p.SetOut(w)
	bar := p.AddBar(1)
	bar.AppendCompleted()
	bar.PrependElapsed()
	return progressBar{p: p, bar: bar}
}

func (pb progressBar) start() { pb.p.Start() }

// stop renders the final state; it must follow start.
func (pb progressBar) stop() { pb.p.Stop() }

func (pb progressBar) update(done, total int) {
	if pb.bar.Total != total {
		pb.bar.Total = total
	}
	_ = pb.bar.Set(done)
}
