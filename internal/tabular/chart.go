package tabular

import "strconv"

// MaxChartSeries is the number of numeric columns plotted by BarChart.
const MaxChartSeries = 2

// Series is one plotted column. Missing cells are nil.
type Series struct {
	Name   string     `json:"name"`
	Values []*float64 `json:"values"`
}

// Chart is bar chart data keyed by row index.
type Chart struct {
	Labels []string `json:"labels"`
	Series []Series `json:"series"`
}

// Empty reports whether the chart has nothing to plot.
func (c Chart) Empty() bool {
	return len(c.Series) == 0
}

// BarChart builds chart data for the first numeric columns of t, up to
// MaxChartSeries of them. Text columns are skipped.
func BarChart(t *Table) Chart {
	chart := Chart{Labels: make([]string, t.rows)}
	for i := range chart.Labels {
		chart.Labels[i] = strconv.Itoa(i)
	}

	for _, c := range t.columns {
		if len(chart.Series) == MaxChartSeries {
			break
		}
		if c.Type != Numeric {
			continue
		}
		s := Series{Name: c.Name, Values: make([]*float64, len(c.Values))}
		for i, v := range c.Values {
			if f, ok := v.Float(); ok {
				s.Values[i] = &f
			}
		}
		chart.Series = append(chart.Series, s)
	}
	return chart
}
