// Package export writes entity collections as multi-sheet xlsx workbooks
// and reads KPI spreadsheets back in.
package export

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ErrNoRecords is returned, before anything is written, for an empty collection.
var ErrNoRecords = errors.New("no data to export")

// Filename names a download, e.g. publications-2026-10-15.xlsx.
func Filename(kind string, now time.Time) string {
	return fmt.Sprintf("%s-%s.xlsx", kind, now.Format("2006-01-02"))
}

type workbook struct {
	f      *excelize.File
	header int
	used   bool
}

func newWorkbook() (*workbook, error) {
	f := excelize.NewFile()
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E0E7FF"}},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	return &workbook{f: f, header: header}, nil
}

// sheet appends a sheet with a bold header row.
func (wb *workbook) sheet(name string, header []string, rows [][]any) error {
	if !wb.used {
		if err := wb.f.SetSheetName("Sheet1", name); err != nil {
			return err
		}
		wb.used = true
	} else if _, err := wb.f.NewSheet(name); err != nil {
		return err
	}

	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := wb.f.SetSheetRow(name, "A1", &headerRow); err != nil {
		return err
	}
	if err := wb.f.SetRowStyle(name, 1, 1, wb.header); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := row
		if err := wb.f.SetSheetRow(name, cell, &row); err != nil {
			return err
		}
	}

	last, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	return wb.f.SetColWidth(name, "A", last, 18)
}

func (wb *workbook) write(w io.Writer) error {
	if err := wb.f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// close removes the temporary files excelize keeps for the workbook.
func (wb *workbook) close() error {
	return wb.f.Close()
}

// Lookup resolves ids to display names in exported cells.
type Lookup struct {
	Participants map[string]string
	Launches     map[string]string
}

func (l Lookup) participant(id string) string {
	if name, ok := l.Participants[id]; ok && name != "" {
		return name
	}
	return id
}

func (l Lookup) participants(ids []string) string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, l.participant(id))
	}
	return strings.Join(names, ", ")
}

func (l Lookup) launch(id string) string {
	if id == "" {
		return ""
	}
	if name, ok := l.Launches[id]; ok {
		return name
	}
	return id
}

// group counts items per key. Keys listed in order come first, in that
// order; any other keys follow alphabetically.
type group struct {
	key    string
	total  int
	counts map[string]int
	sum    float64
}

func groupBy[T any](items []T, key func(T) string, sub func(T) string, value func(T) float64, order []string) []*group {
	byKey := map[string]*group{}
	for _, it := range items {
		k := key(it)
		if k == "" {
			k = "(none)"
		}
		g, ok := byKey[k]
		if !ok {
			g = &group{key: k, counts: map[string]int{}}
			byKey[k] = g
		}
		g.total++
		if sub != nil {
			g.counts[sub(it)]++
		}
		if value != nil {
			g.sum += value(it)
		}
	}

	out := make([]*group, 0, len(byKey))
	seen := map[string]bool{}
	for _, k := range order {
		if g, ok := byKey[k]; ok {
			out = append(out, g)
			seen[k] = true
		}
	}
	var rest []string
	for k := range byKey {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		out = append(out, byKey[k])
	}
	return out
}

// isoWeek labels a date like 2026-W47; empty for unset dates.
func isoWeek(t time.Time, ok bool) string {
	if !ok {
		return ""
	}
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func percent(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
