package services

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/yukikurage/release-planner/internal/export"
)

// Export kinds
const (
	ExportPublications = "publications"
	ExportTasks        = "tasks"
	ExportLaunches     = "launches"
	ExportKPIs         = "kpis"
	ExportIdeas        = "ideas"
)

// ExportKinds lists every supported export.
var ExportKinds = []string{ExportPublications, ExportTasks, ExportLaunches, ExportKPIs, ExportIdeas}

// ExportService renders workspace collections as xlsx workbooks
type ExportService struct {
	ws  *Workspace
	now func() time.Time
}

func NewExportService(ws *Workspace, effects *Effects) *ExportService {
	return &ExportService{ws: ws, now: effects.withDefaults().Now}
}

// Workbook renders one export kind and returns its suggested filename.
// export.ErrNoRecords is returned unwrapped when the collection is empty.
func (s *ExportService) Workbook(kind string) ([]byte, string, error) {
	lk := export.NewLookup(s.ws.ParticipantList(), s.ws.Launches())
	var buf bytes.Buffer
	var err error
	switch kind {
	case ExportPublications:
		err = export.Publications(&buf, s.ws.Publications(), lk)
	case ExportTasks:
		err = export.Tasks(&buf, s.ws.Tasks(), lk)
	case ExportLaunches:
		err = export.Launches(&buf, s.ws.Launches(), lk)
	case ExportKPIs:
		err = export.KPIs(&buf, s.ws.KPIs())
	case ExportIdeas:
		err = export.Ideas(&buf, s.ws.Ideas())
	default:
		return nil, "", invalid("unknown export %q", kind)
	}
	if err != nil {
		return nil, "", err
	}
	return buf.Bytes(), export.Filename(kind, s.now()), nil
}

// WriteTo renders kind into w. Nothing is written on error.
func (s *ExportService) WriteTo(w io.Writer, kind string) (string, error) {
	data, name, err := s.Workbook(kind)
	if err != nil {
		return "", err
	}
	if _, err := w.Write(data); err != nil {
		return "", fmt.Errorf("failed to write %s export: %w", kind, err)
	}
	return name, nil
}
