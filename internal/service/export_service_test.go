package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/obe-attainment-api/internal/attainment"
	appErrors "github.com/noah-isme/obe-attainment-api/pkg/errors"
	"github.com/noah-isme/obe-attainment-api/pkg/export"
)

type failingRenderer struct{}

func (failingRenderer) Render(export.Dataset) ([]byte, error) { return nil, assert.AnError }

func TestExportServiceCourseCSV(t *testing.T) {
	svc := NewExportService(newAttainmentFixture().service(nil), zap.NewNop(), nil, nil)

	file, err := svc.ExportCourse(context.Background(), "course-1", "", attainment.DefaultPolicy(), export.FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "co_attainment_CS101_all_20240301_080000.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	lines := strings.Split(strings.TrimSpace(string(file.Payload)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "CO Code,Description,Percent,Level,Data Available,Section", lines[0])
	assert.Equal(t, "CO1,Analyse,66.67,2,true,all", lines[1])
	assert.Equal(t, "CO2,Design,0.00,0,false,all", lines[2])
}

func TestExportServiceProgramCSV(t *testing.T) {
	svc := NewExportService(newAttainmentFixture().service(nil), nil, nil, nil)

	file, err := svc.ExportProgram(context.Background(), "prog-1", attainment.DefaultPolicy(), export.FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "po_attainment_BTECH-CS_20240301_080000.csv", file.Filename)
	payload := string(file.Payload)
	assert.Contains(t, payload, "PO1,Knowledge,66.67,2,true,CS101/CO1 L3 66.67\n")
	assert.Contains(t, payload, "PO2,Ethics,0.00,0,false,\n")
}

func TestExportServiceProgramPDF(t *testing.T) {
	svc := NewExportService(newAttainmentFixture().service(nil), nil, nil, nil)

	file, err := svc.ExportProgram(context.Background(), "prog-1", attainment.DefaultPolicy(), export.FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Payload), "%PDF-"))
	assert.True(t, strings.HasSuffix(file.Filename, ".pdf"))
}

func TestExportServiceErrors(t *testing.T) {
	svc := NewExportService(newAttainmentFixture().service(nil), nil, failingRenderer{}, nil)
	ctx := context.Background()

	_, err := svc.ExportCourse(ctx, "course-1", "", attainment.DefaultPolicy(), export.FormatCSV)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))

	_, err = svc.ExportCourse(ctx, "course-1", "", attainment.DefaultPolicy(), export.Format("xlsx"))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.ExportCourse(ctx, "missing", "", attainment.DefaultPolicy(), export.FormatCSV)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "na", sanitizeFilename(""))
	assert.Equal(t, "CS_101-A", sanitizeFilename("CS 101/A"))
}
