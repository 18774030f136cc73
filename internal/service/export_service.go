package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/obe-attainment-api/internal/attainment"
	"github.com/noah-isme/obe-attainment-api/internal/models"
	appErrors "github.com/noah-isme/obe-attainment-api/pkg/errors"
	"github.com/noah-isme/obe-attainment-api/pkg/export"
)

type attainmentReporter interface {
	CalculateAllCourseCOAttainments(ctx context.Context, courseID, sectionID string, policy attainment.Policy) (*models.CourseAttainmentReport, error)
	CalculateAllPOAttainments(ctx context.Context, programID string, policy attainment.Policy) (*models.ProgramAttainmentReport, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportFile is a rendered report ready to be streamed to the client.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders attainment reports to CSV or PDF.
type ExportService struct {
	reports attainmentReporter
	csv     csvRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers default to the
// pkg/export implementations.
func NewExportService(reports attainmentReporter, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdfExporter := export.NewPDFExporter()
		pdfExporter.ColumnWidths = []float64{1, 4, 1, 1, 1, 4}
		pdf = pdfExporter
	}
	return &ExportService{reports: reports, csv: csv, pdf: pdf, logger: logger}
}

var courseExportHeaders = []string{"CO Code", "Description", "Percent", "Level", "Data Available", "Section"}

var programExportHeaders = []string{"PO Code", "Description", "Percent", "Level", "Data Available", "Contributors"}

// ExportCourse renders the CO attainment of a course or section.
func (s *ExportService) ExportCourse(ctx context.Context, courseID, sectionID string, policy attainment.Policy, format export.Format) (*ExportFile, error) {
	report, err := s.reports.CalculateAllCourseCOAttainments(ctx, courseID, sectionID, policy)
	if err != nil {
		return nil, err
	}

	section := report.SectionID
	if section == "" {
		section = "all"
	}
	rows := make([][]string, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		rows = append(rows, []string{
			o.Code,
			o.Description,
			formatPercent(o.Percent),
			strconv.Itoa(o.Level),
			strconv.FormatBool(o.DataAvailable),
			section,
		})
	}

	dataset := export.Dataset{
		Title:    fmt.Sprintf("CO Attainment %s %s", report.CourseOrProgram.Code, report.CourseOrProgram.Name),
		Subtitle: subtitle(policy, report.GeneratedAt),
		Headers:  courseExportHeaders,
		Rows:     rows,
	}
	name := fmt.Sprintf("co_attainment_%s_%s", report.CourseOrProgram.Code, section)
	return s.render(dataset, name, report.GeneratedAt, format)
}

// ExportProgram renders the PO attainment of a program.
func (s *ExportService) ExportProgram(ctx context.Context, programID string, policy attainment.Policy, format export.Format) (*ExportFile, error) {
	report, err := s.reports.CalculateAllPOAttainments(ctx, programID, policy)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		contributors := make([]string, 0, len(o.Contributors))
		for _, c := range o.Contributors {
			contributors = append(contributors, fmt.Sprintf("%s/%s L%d %s", c.CourseCode, c.COCode, c.MappingLevel, formatPercent(c.Percent)))
		}
		rows = append(rows, []string{
			o.Code,
			o.Description,
			formatPercent(o.Percent),
			strconv.Itoa(o.Level),
			strconv.FormatBool(o.DataAvailable),
			strings.Join(contributors, "; "),
		})
	}

	dataset := export.Dataset{
		Title:    fmt.Sprintf("PO Attainment %s %s", report.CourseOrProgram.Code, report.CourseOrProgram.Name),
		Subtitle: subtitle(policy, report.GeneratedAt),
		Headers:  programExportHeaders,
		Rows:     rows,
	}
	name := fmt.Sprintf("po_attainment_%s", report.CourseOrProgram.Code)
	return s.render(dataset, name, report.GeneratedAt, format)
}

func (s *ExportService) render(dataset export.Dataset, name string, generatedAt time.Time, format export.Format) (*ExportFile, error) {
	var (
		payload []byte
		err     error
	)
	switch format {
	case export.FormatCSV:
		payload, err = s.csv.Render(dataset)
	case export.FormatPDF:
		payload, err = s.pdf.Render(dataset)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		s.logger.Error("render attainment export", zap.String("name", name), zap.String("format", string(format)), zap.Error(err))
		return nil, internalError(err, "failed to render export")
	}
	filename := fmt.Sprintf("%s_%s.%s", sanitizeFilename(name), generatedAt.UTC().Format("20060102_150405"), format)
	return &ExportFile{Filename: filename, ContentType: format.ContentType(), Payload: payload}, nil
}

func subtitle(policy attainment.Policy, generatedAt time.Time) string {
	t := policy.LevelThresholds
	return fmt.Sprintf("Target %s%% | Levels %s/%s/%s | Weights internal %s external %s | Generated %s",
		strconv.FormatFloat(policy.TargetPercent, 'f', -1, 64),
		strconv.FormatFloat(t[0], 'f', -1, 64),
		strconv.FormatFloat(t[1], 'f', -1, 64),
		strconv.FormatFloat(t[2], 'f', -1, 64),
		strconv.FormatFloat(policy.TypeWeights.Internal, 'f', -1, 64),
		strconv.FormatFloat(policy.TypeWeights.External, 'f', -1, 64),
		generatedAt.UTC().Format(time.RFC3339))
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "\"", "")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
