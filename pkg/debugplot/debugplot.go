// Package debugplot renders strip charts of the APU's output for
// debugging the mixer: a waveform trace of the captured samples, one
// line per stereo side.
package debugplot

import (
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"gbcore/internal/apu"
)

// Waveform plots samples against time (given the capture rate) and
// writes a PNG chart to w.
func Waveform(w io.Writer, samples []apu.Sample, sampleRate int) error {
	p := plot.New()
	p.Title.Text = "APU output"
	p.X.Label.Text = "seconds"
	p.Y.Label.Text = "amplitude"
	p.Y.Min, p.Y.Max = -1, 1

	left := make(plotter.XYs, len(samples))
	right := make(plotter.XYs, len(samples))
	for i, s := range samples {
		t := float64(i) / float64(sampleRate)
		left[i].X, left[i].Y = t, float64(s.L)
		right[i].X, right[i].Y = t, float64(s.R)
	}

	lineL, err := plotter.NewLine(left)
	if err != nil {
		return err
	}
	lineR, err := plotter.NewLine(right)
	if err != nil {
		return err
	}
	lineR.LineStyle.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}

	p.Add(lineL, lineR)
	p.Legend.Add("left", lineL)
	p.Legend.Add("right", lineR)

	wt, err := p.WriterTo(12*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
