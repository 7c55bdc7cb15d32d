package export

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/trackposter/internal/poster"
)

// MonthlyTotals sums display-unit distance per calendar month for each year.
func MonthlyTotals(p *poster.Poster) map[int][12]float64 {
	out := map[int][12]float64{}
	for _, t := range p.Tracks {
		m := out[t.Year()]
		m[t.StartTime.Month()-1] += p.Units.Display(t.Length)
		out[t.Year()] = m
	}
	return out
}

// WriteStatsHTML renders a page with distance per month for each year and
// the yearly totals.
func WriteStatsHTML(w io.Writer, p *poster.Poster) error {
	unit := p.Units.Abbrev()
	monthly := MonthlyTotals(p)
	years := make([]int, 0, len(monthly))
	for y := range monthly {
		years = append(years, y)
	}
	slices.Sort(years)

	months := make([]string, 12)
	for i := range months {
		months[i] = time.Month(i + 1).String()[:3]
	}

	perMonth := charts.NewBar()
	perMonth.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: p.Title, Theme: "dark", Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Distance per month", Subtitle: p.Athlete}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: unit}),
	)
	perMonth.SetXAxis(months)
	for _, y := range years {
		data := make([]opts.BarData, 12)
		for i, v := range monthly[y] {
			data[i] = opts.BarData{Value: round1(v)}
		}
		perMonth.AddSeries(strconv.Itoa(y), data)
	}

	labels := make([]string, len(years))
	totals := make([]opts.BarData, len(years))
	for i, y := range years {
		labels[i] = strconv.Itoa(y)
		totals[i] = opts.BarData{Value: round1(p.Units.Display(p.TotalByYear[y]))}
	}
	perYear := charts.NewBar()
	perYear.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "100%", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{
			Title: "Distance per year",
			Subtitle: fmt.Sprintf("%d tracks, %s total, %s median",
				p.Stats.Count, p.Units.Format(p.Stats.Total), p.Units.Format(p.Stats.Median)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	perYear.SetXAxis(labels).
		AddSeries("total", totals,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	page := components.NewPage()
	page.AddCharts(perMonth, perYear)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render stats page: %w", err)
	}
	return nil
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
