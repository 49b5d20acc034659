// Package charts renders the dashboard chart widgets. It is presentation
// glue over the section view models and holds no KPI logic of its own.
package charts

import (
	echarts "github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/alvarogf/pyg-dashboard/dto"
)

// EvolutionLine plots one line per series across the fiscal years.
func EvolutionLine(title string, data dto.ChartData) *echarts.Line {
	line := echarts.NewLine()
	line.SetGlobalOptions(
		echarts.WithTitleOpts(opts.Title{Title: title}),
		echarts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)
	line.SetXAxis(data.Labels)
	for _, s := range data.Series {
		items := make([]opts.LineData, 0, len(s.Values))
		for _, v := range s.Values {
			items = append(items, opts.LineData{Value: v})
		}
		line.AddSeries(s.Name, items)
	}
	return line
}

// GroupedBar plots one bar group per series across the fiscal years.
func GroupedBar(title string, data dto.ChartData) *echarts.Bar {
	bar := echarts.NewBar()
	bar.SetGlobalOptions(
		echarts.WithTitleOpts(opts.Title{Title: title}),
		echarts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(data.Labels)
	for _, s := range data.Series {
		items := make([]opts.BarData, 0, len(s.Values))
		for _, v := range s.Values {
			items = append(items, opts.BarData{Value: v})
		}
		bar.AddSeries(s.Name, items)
	}
	return bar
}

// CategoryBar plots a single series of labeled values.
func CategoryBar(title, seriesName string, items []dto.NamedValue) *echarts.Bar {
	data := dto.ChartData{Series: []dto.Series{{Name: seriesName}}}
	for _, item := range items {
		data.Labels = append(data.Labels, item.Name)
		data.Series[0].Values = append(data.Series[0].Values, item.Value)
	}
	return GroupedBar(title, data)
}

// StructurePie plots the share of each labeled value.
func StructurePie(title string, items []dto.NamedValue) *echarts.Pie {
	pie := echarts.NewPie()
	pie.SetGlobalOptions(
		echarts.WithTitleOpts(opts.Title{Title: title}),
		echarts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	data := make([]opts.PieData, 0, len(items))
	for _, item := range items {
		data = append(data, opts.PieData{Name: item.Name, Value: item.Value})
	}
	pie.AddSeries(title, data)
	return pie
}
