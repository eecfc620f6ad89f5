package report

import (
	"fmt"

	"github.com/roach88/ecomkpi/internal/tabular"
)

// section is one optional part of the report, rendered only when its
// artifact is present with every required column.
type section struct {
	artifact string
	columns  []string
	heading  string
	render   func(f *tabular.Frame) ([]string, error)
}

// cohortSampleRows is how many cohort rows the report quotes.
const cohortSampleRows = 6

// sections lists the recognized artifacts in report order.
var sections = []section{
	{
		artifact: "01_daily_kpis",
		columns:  []string{"order_date", "orders", "revenue", "aov"},
		heading:  "### Headline metrics",
		render:   renderHeadline,
	},
	{
		artifact: "03_conversion_by_channel",
		columns:  []string{"channel", "conversion_rate"},
		heading:  "### Channel conversion",
		render:   renderConversion,
	},
	{
		artifact: "07_aov_by_channel",
		columns:  []string{"channel", "aov"},
		heading:  "### Channel AOV",
		render:   renderChannelAOV,
	},
	{
		artifact: "06_repeat_purchase_rate",
		columns:  []string{"repeat_purchase_rate", "repeat_customers", "customers_with_delivered_orders"},
		heading:  "### Repeat purchasing",
		render:   renderRepeat,
	},
	{
		artifact: "02_funnel_counts",
		columns:  []string{"step", "sessions"},
		heading:  "## Funnel snapshot (sessions)",
		render:   renderFunnel,
	},
	{
		artifact: "04_cohort_retention",
		columns:  []string{"cohort_month", "months_since", "retention_rate"},
		heading:  "## Cohort retention",
		render:   renderCohort,
	},
	{
		artifact: "05_shipping_speed_impact",
		columns:  []string{"delivery_bucket", "refund_rate"},
		heading:  "## Delivery speed impact",
		render:   renderDelivery,
	},
}

// Artifacts returns the artifact names the report recognizes, in report order.
func Artifacts() []string {
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = s.artifact
	}
	return names
}

func renderHeadline(f *tabular.Frame) ([]string, error) {
	sorted := f.Sorted(tabular.SortKey{Column: "order_date"})
	last := sorted.Len() - 1
	date, err := sorted.String(last, "order_date")
	if err != nil {
		return nil, err
	}
	revenue, err := sorted.Float(last, "revenue")
	if err != nil {
		return nil, err
	}
	orders, err := sorted.Int(last, "orders")
	if err != nil {
		return nil, err
	}
	aov, err := sorted.Float(last, "aov")
	if err != nil {
		return nil, err
	}
	return []string{
		fmt.Sprintf("- Latest date: %s", date),
		fmt.Sprintf("- Revenue (latest day): %.2f", revenue),
		fmt.Sprintf("- Orders (latest day): %d", orders),
		fmt.Sprintf("- AOV (latest day): %.2f", aov),
	}, nil
}

// top returns the label and value of the row with the highest value in column.
func top(f *tabular.Frame, label, column string) (string, float64, error) {
	sorted := f.Sorted(tabular.SortKey{Column: column, Desc: true, Numeric: true})
	name, err := sorted.String(0, label)
	if err != nil {
		return "", 0, err
	}
	v, err := sorted.Float(0, column)
	if err != nil {
		return "", 0, err
	}
	return name, v, nil
}

func renderConversion(f *tabular.Frame) ([]string, error) {
	channel, rate, err := top(f, "channel", "conversion_rate")
	if err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("- Highest converting channel: %s (conversion %.3f)", channel, rate)}, nil
}

func renderChannelAOV(f *tabular.Frame) ([]string, error) {
	channel, aov, err := top(f, "channel", "aov")
	if err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("- Highest AOV channel: %s (AOV %.2f)", channel, aov)}, nil
}

func renderRepeat(f *tabular.Frame) ([]string, error) {
	rate, err := f.Float(0, "repeat_purchase_rate")
	if err != nil {
		return nil, err
	}
	repeat, err := f.Int(0, "repeat_customers")
	if err != nil {
		return nil, err
	}
	total, err := f.Int(0, "customers_with_delivered_orders")
	if err != nil {
		return nil, err
	}
	return []string{
		fmt.Sprintf("- Repeat purchase rate: %.3f", rate),
		fmt.Sprintf("- Repeat customers: %d out of %d", repeat, total),
	}, nil
}

func renderFunnel(f *tabular.Frame) ([]string, error) {
	lines := make([]string, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		step, err := f.String(i, "step")
		if err != nil {
			return nil, err
		}
		n, err := f.Int(i, "sessions")
		if err != nil {
			return nil, err
		}
		lines = append(lines, fmt.Sprintf("- %s: %d", step, n))
	}
	return lines, nil
}

func renderCohort(f *tabular.Frame) ([]string, error) {
	sample := f.Sorted(
		tabular.SortKey{Column: "cohort_month"},
		tabular.SortKey{Column: "months_since", Numeric: true},
	).Head(cohortSampleRows)

	lines := []string{
		"Cohorts are grouped by signup month and tracked by months since signup.",
		"Sample rows:",
	}
	for i := 0; i < sample.Len(); i++ {
		month, err := sample.String(i, "cohort_month")
		if err != nil {
			return nil, err
		}
		since, err := sample.Int(i, "months_since")
		if err != nil {
			return nil, err
		}
		rate, err := sample.Float(i, "retention_rate")
		if err != nil {
			return nil, err
		}
		lines = append(lines, fmt.Sprintf("- Cohort %s, month %d: retention %.3f", month, since, rate))
	}
	return lines, nil
}

func renderDelivery(f *tabular.Frame) ([]string, error) {
	bucket, rate, err := top(f, "delivery_bucket", "refund_rate")
	if err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("- Highest refund-rate bucket: %s (refund_rate %.3f)", bucket, rate)}, nil
}
