package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	service "github.com/Ismail26477/crm-main/internal/app"
	"github.com/Ismail26477/crm-main/internal/domain/types"
)

func summaryCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print headline metrics, rankings and response bands",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkWindow(g.window); err != nil {
				return err
			}
			svc, err := load(cmd.Context(), g.baseURL, service.WithWindowDays(g.window))
			if err != nil {
				return err
			}
			defer func() { _ = svc.Stop(cmd.Context()) }()
			return printSummary(cmd.OutOrStdout(), svc.Snapshot())
		},
	}
}

func printSummary(w io.Writer, snap types.Snapshot) error {
	if err := printHeadline(w, snap); err != nil {
		return err
	}

	sources := make([][]string, 0, len(snap.SourcePerformance))
	for _, s := range snap.SourcePerformance {
		sources = append(sources, []string{s.Name, strconv.Itoa(s.Total), strconv.Itoa(s.Converted), rateCell(s.Rate, s.Class)})
	}
	if err := printTable(w, "Lead sources", []string{"Source", "Leads", "Converted", "Rate"}, sources); err != nil {
		return err
	}

	if len(snap.Team) > 0 {
		rows := make([][]string, 0, len(snap.Team))
		for _, m := range snap.Team {
			rows = append(rows, []string{m.Medal, m.Name, strconv.Itoa(m.ClosedDeals), fmt.Sprintf("%.1f%%", m.ConversionRate)})
		}
		if err := printTable(w, "Team", []string{"", "Member", "Closed", "Rate"}, rows); err != nil {
			return err
		}
	} else {
		rows := make([][]string, 0, len(snap.TopAgents))
		for _, a := range snap.TopAgents {
			rows = append(rows, []string{a.Initials, a.Name, strconv.Itoa(a.Total), strconv.Itoa(a.Converted), fmt.Sprintf("%.1f%%", a.Rate)})
		}
		if err := printTable(w, "Top agents", []string{"", "Agent", "Leads", "Converted", "Rate"}, rows); err != nil {
			return err
		}
	}

	bands := make([][]string, 0, len(snap.ResponseBands))
	for _, b := range snap.ResponseBands {
		bands = append(bands, []string{b.Priority, strconv.Itoa(b.Count), strconv.Itoa(b.Assigned), speedCell(b)})
	}
	return printTable(w, "Response time", []string{"Priority", "Leads", "Assigned", "Avg"}, bands)
}

func printHeadline(w io.Writer, snap types.Snapshot) error {
	h := snap.Headline
	rows := [][]string{
		{"Total leads", strconv.Itoa(h.TotalLeads), h.LeadsChangeLabel},
		{"New today", strconv.Itoa(h.NewLeadsToday), ""},
		{"Active listings", strconv.Itoa(h.ActiveListings), ""},
		{"Closed deals", strconv.Itoa(h.ClosedDeals), strconv.Itoa(h.ThisMonthDeals) + " this month"},
		{"Scheduled viewings", strconv.Itoa(h.ScheduledViewings), strconv.Itoa(h.TodayViewings) + " today"},
	}
	title := fmt.Sprintf("Last %d days (%d leads, %d undated)", snap.WindowDays, snap.LeadCount, snap.UndatedLead)
	return printTable(w, title, []string{"Metric", "Value", ""}, rows)
}

func printTable(w io.Writer, title string, header []string, rows [][]string) error {
	if _, err := fmt.Fprintln(w, TitleStyle.Render(title)); err != nil {
		return err
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, SubtleStyle.Render("  no data"))
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	cells := make([]string, len(header))
	rules := make([]string, len(header))
	for i, h := range header {
		cells[i] = TableHeaderStyle.Render(h)
		rules[i] = strings.Repeat("─", max(len(h), 4))
	}
	if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := fmt.Fprintln(tw, strings.Join(rules, "\t")); err != nil {
		return fmt.Errorf("failed to write separator: %w", err)
	}
	for _, r := range rows {
		if _, err := fmt.Fprintln(tw, strings.Join(r, "\t")); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return tw.Flush()
}

func rateCell(rate float64, class types.RateClass) string {
	s := fmt.Sprintf("%.1f%%", rate)
	switch class {
	case types.RateGood:
		return GoodStyle.Render(s)
	case types.RateAverage:
		return AverageStyle.Render(s)
	default:
		return PoorStyle.Render(s)
	}
}

func speedCell(b types.ResponseBand) string {
	if b.Count == 0 {
		return SubtleStyle.Render("n/a")
	}
	s := strconv.Itoa(b.AvgMinutes) + " min"
	switch b.Class {
	case types.SpeedFast:
		return GoodStyle.Render(s)
	case types.SpeedAverage:
		return AverageStyle.Render(s)
	default:
		return PoorStyle.Render(s)
	}
}
