package tabq

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pkg/errors"
)

// Statistics tracks win, loss and draw rates per agent over the course of a
// training run. One sample is a rate over the games since the last sample.
type Statistics struct {
	Names    []string
	Episodes []int
	Wins     map[string][]float32
	Losses   map[string][]float32
	Draws    map[string][]float32
}

func makeStatistics() Statistics {
	return Statistics{
		Names:    make([]string, 0, 2),
		Episodes: make([]int, 0, 64),
		Wins:     make(map[string][]float32),
		Losses:   make(map[string][]float32),
		Draws:    make(map[string][]float32),
	}
}

func (s *Statistics) update(episode int, agents ...*Agent) {
	s.Episodes = append(s.Episodes, episode)
	for _, a := range agents {
		if _, ok := s.Wins[a.name]; !ok {
			s.Names = append(s.Names, a.name)
		}
		total := a.Wins + a.Loss + a.Draw
		if total == 0 {
			total = 1
		}
		s.Wins[a.name] = append(s.Wins[a.name], a.Wins/total)
		s.Losses[a.name] = append(s.Losses[a.name], a.Loss/total)
		s.Draws[a.name] = append(s.Draws[a.name], a.Draw/total)
	}
}

// Dump writes the sampled rates into filename as CSV, one row per sample.
func (s *Statistics) Dump(filename string) error {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)

	header := []string{"episode"}
	for _, name := range s.Names {
		header = append(header, name+"_win", name+"_loss", name+"_draw")
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i, ep := range s.Episodes {
		record := []string{strconv.Itoa(ep)}
		for _, name := range s.Names {
			record = append(record,
				formatRate(s.Wins[name], i),
				formatRate(s.Losses[name], i),
				formatRate(s.Draws[name], i),
			)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatRate(rates []float32, i int) string {
	if i >= len(rates) {
		return ""
	}
	return strconv.FormatFloat(float64(rates[i]), 'f', 3, 32)
}

// Chart renders the win and draw rates as an HTML line chart.
func (s *Statistics) Chart(title string, w io.Writer) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: title,
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)

	var episodes []string
	for _, ep := range s.Episodes {
		episodes = append(episodes, fmt.Sprintf("%d", ep))
	}
	line = line.SetXAxis(episodes)

	for _, name := range s.Names {
		wins := make([]opts.LineData, 0, len(s.Wins[name]))
		for _, v := range s.Wins[name] {
			wins = append(wins, opts.LineData{Value: v})
		}
		line.AddSeries(name+" win rate", wins)

		draws := make([]opts.LineData, 0, len(s.Draws[name]))
		for _, v := range s.Draws[name] {
			draws = append(draws, opts.LineData{Value: v})
		}
		line.AddSeries(name+" draw rate", draws)
	}

	page := components.NewPage()
	page.AddCharts(line)
	return errors.WithStack(page.Render(w))
}
