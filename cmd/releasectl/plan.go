package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yukikurage/release-planner/internal/models"
	"github.com/yukikurage/release-planner/internal/scoring"
	"github.com/yukikurage/release-planner/internal/templates"
)

func scoreCmd(v *viper.Viper) *cobra.Command {
	var e models.Evaluation
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score an idea evaluation",
		RunE: func(cmd *cobra.Command, args []string) error {
			clamped := scoring.Clamp(e)
			result := scoring.Evaluate(clamped)
			if v.GetBool("json") {
				return printJSON(cmd.OutOrStdout(), map[string]any{"evaluation": clamped, "result": result})
			}
			tw := newTable(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"Impact", "Feasibility", "Alignment", "Urgency", "Score", "Tier"})
			tw.AppendRow(table.Row{
				clamped.Impact, clamped.Feasibility, clamped.Alignment, clamped.Urgency,
				fmt.Sprintf("%.1f", result.Display), result.Tier,
			})
			tw.Render()
			return nil
		},
	}
	cmd.Flags().IntVar(&e.Impact, "impact", 5, "impact rating (1-10)")
	cmd.Flags().IntVar(&e.Feasibility, "feasibility", 5, "feasibility rating (1-10)")
	cmd.Flags().IntVar(&e.Alignment, "alignment", 5, "alignment rating (1-10)")
	cmd.Flags().IntVar(&e.Urgency, "urgency", 5, "urgency rating (1-10)")
	return cmd
}

func templatesCmd(v *viper.Viper) *cobra.Command {
	tpl := &cobra.Command{Use: "templates", Short: "Inspect the template catalog"}

	var phase string
	list := &cobra.Command{
		Use:   "list",
		Short: "List action and content templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePhase(phase)
			if err != nil {
				return err
			}
			catalog := templates.Default()
			actions, content := catalog.ActionsFor(p), catalog.ContentFor(p)
			if v.GetBool("json") {
				return printJSON(cmd.OutOrStdout(), map[string]any{"actions": actions, "content": content})
			}
			tw := newTable(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"Kind", "Phase", "Title", "Offset", "Priority / Platform"})
			for _, a := range actions {
				tw.AppendRow(table.Row{"action", a.Phase, a.Title, a.OffsetDays, a.Priority})
			}
			for _, c := range content {
				tw.AppendRow(table.Row{"content", c.Phase, c.Title, c.OffsetDays, c.Platform})
			}
			tw.Render()
			return nil
		},
	}
	list.Flags().StringVar(&phase, "phase", "", "only this phase")
	tpl.AddCommand(list)
	return tpl
}

func scheduleCmd(v *viper.Viper) *cobra.Command {
	var release, today, phase string
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Preview template dates for a release date",
		RunE: func(cmd *cobra.Command, args []string) error {
			releaseDate, ok := models.Date(release).Time()
			if !ok {
				return fmt.Errorf("--release-date must be YYYY-MM-DD, got %q", release)
			}
			now := time.Now()
			if today != "" {
				if now, ok = models.Date(today).Time(); !ok {
					return fmt.Errorf("--today must be YYYY-MM-DD, got %q", today)
				}
			}
			p, err := parsePhase(phase)
			if err != nil {
				return err
			}
			catalog := templates.Default()
			actions := templates.AutoSchedule(releaseDate, now, catalog.ActionsFor(p))
			content := templates.ScheduleContent(releaseDate, now, catalog.ContentFor(p))
			if v.GetBool("json") {
				return printJSON(cmd.OutOrStdout(), map[string]any{"actions": actions, "content": content})
			}
			tw := newTable(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"Kind", "Phase", "Title", "Start", "End"})
			for _, a := range actions {
				tw.AppendRow(table.Row{"action", a.Template.Phase, a.Template.Title, a.Slot.Start, a.Slot.End})
			}
			for _, c := range content {
				tw.AppendRow(table.Row{"content", c.Template.Phase, c.Template.Title, c.Date, ""})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&release, "release-date", "", "release date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&today, "today", "", "override today (YYYY-MM-DD)")
	cmd.Flags().StringVar(&phase, "phase", "", "only this phase")
	_ = cmd.MarkFlagRequired("release-date")
	return cmd
}

func parsePhase(s string) (models.Phase, error) {
	p := models.Phase(s)
	if p != "" && !p.Valid() {
		return "", fmt.Errorf("unknown phase %q (want one of %v)", s, models.Phases)
	}
	return p, nil
}

func newTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	return tw
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
