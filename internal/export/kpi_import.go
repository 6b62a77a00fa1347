package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/yukikurage/release-planner/internal/models"
)

// ErrNoIndicatorColumn means no header looked like an indicator column.
var ErrNoIndicatorColumn = errors.New("no indicator column found")

type kpiField int

const (
	fieldPerspective kpiField = iota
	fieldIndicator
	fieldObjective
	fieldTarget
	fieldCurrent
	fieldUnit
)

// Header aliases, matched as case-insensitive substrings. Fields are tried
// in this order, so "Valor meta" is a target and "Valor actual" a current.
var kpiAliases = []struct {
	field   kpiField
	aliases []string
}{
	{fieldPerspective, []string{"perspect"}},
	{fieldIndicator, []string{"indicat", "kpi"}},
	{fieldObjective, []string{"objective", "objetivo"}},
	{fieldTarget, []string{"target", "meta", "goal"}},
	{fieldCurrent, []string{"current", "actual", "valor", "value"}},
	{fieldUnit, []string{"unit", "unidad"}},
}

// ImportKPIs reads KPIs from an xlsx workbook (first sheet) or, when the
// file name ends in .csv, a CSV file. The first row is the header. Rows
// without an indicator are skipped. Imported KPIs have no id.
func ImportKPIs(r io.Reader, filename string) ([]models.KPI, error) {
	var rows [][]string
	var err error
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		rows, err = readCSV(r)
	} else {
		rows, err = readFirstSheet(r)
	}
	if err != nil {
		return nil, err
	}
	return parseKPIRows(rows)
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return rows, nil
}

func readFirstSheet(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

func parseKPIRows(rows [][]string) ([]models.KPI, error) {
	if len(rows) == 0 {
		return nil, ErrNoRecords
	}

	columns := matchColumns(rows[0])
	if _, ok := columns[fieldIndicator]; !ok {
		return nil, ErrNoIndicatorColumn
	}

	cell := func(row []string, f kpiField) string {
		i, ok := columns[f]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	kpis := []models.KPI{}
	for _, row := range rows[1:] {
		indicator := cell(row, fieldIndicator)
		if indicator == "" {
			continue
		}
		kpis = append(kpis, models.KPI{
			Perspective:  cell(row, fieldPerspective),
			Indicator:    indicator,
			Objective:    cell(row, fieldObjective),
			TargetValue:  parseNumber(cell(row, fieldTarget)),
			CurrentValue: parseNumber(cell(row, fieldCurrent)),
			Unit:         cell(row, fieldUnit),
		})
	}
	if len(kpis) == 0 {
		return nil, ErrNoRecords
	}
	return kpis, nil
}

// matchColumns assigns each header to the first field whose alias it
// contains. A field keeps the first column that claimed it.
func matchColumns(header []string) map[kpiField]int {
	columns := map[kpiField]int{}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			continue
		}
	fields:
		for _, fa := range kpiAliases {
			if _, taken := columns[fa.field]; taken {
				continue
			}
			for _, alias := range fa.aliases {
				if strings.Contains(h, alias) {
					columns[fa.field] = i
					break fields
				}
			}
		}
	}
	return columns
}

// parseNumber accepts "1,200", "85%" and blanks (zero).
func parseNumber(s string) float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
