package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"

	"github.com/yukikurage/release-planner/internal/export"
)

type ExportServiceTestSuite struct {
	serviceSuite
	exports *ExportService
}

func (s *ExportServiceTestSuite) SetupTest() {
	s.serviceSuite.SetupTest()
	s.exports = NewExportService(s.ws, s.effects)
}

func (s *ExportServiceTestSuite) TestEmptyCollectionWritesNothing() {
	for _, kind := range ExportKinds {
		var buf bytes.Buffer
		_, err := s.exports.WriteTo(&buf, kind)
		s.ErrorIs(err, export.ErrNoRecords, kind)
		s.Zero(buf.Len(), kind)
	}
}

func (s *ExportServiceTestSuite) TestUnknownKind() {
	_, _, err := s.exports.Workbook("songs")
	s.ErrorIs(err, ErrInvalidInput)
}

func (s *ExportServiceTestSuite) TestTasksWorkbook() {
	_, err := NewTaskService(s.ws, nil, s.effects).CreateTask(s.ctx, TaskInput{Activity: "Budget", Perspective: "Financial"})
	s.Require().NoError(err)

	data, name, err := s.exports.Workbook(ExportTasks)
	s.Require().NoError(err)
	s.Equal("tasks-2026-10-15.xlsx", name)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	s.Require().NoError(err)
	defer f.Close()
	s.Equal([]string{"Tasks", "By Perspective", "By Status"}, f.GetSheetList())
}

func TestExportServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExportServiceTestSuite))
}
