package reports

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reportCols = []string{"id", "patient_id", "file_name", "object_key", "type", "file_size", "mime_type", "uploaded_at"}

func reportRow(id, patientID string) *pgxmock.Rows {
	return pgxmock.NewRows(reportCols).AddRow(
		id, patientID, "scan.png", "reports/"+patientID+"/"+id+"-scan.png",
		"xray", int64(2048), "image/png", time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	)
}

func TestCreateReport(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)

	mock.ExpectQuery(`INSERT INTO reports`).
		WithArgs(pgxmock.AnyArg(), "patient-1", "scan.png", pgxmock.AnyArg(), "xray", int64(2048), "image/png").
		WillReturnRows(pgxmock.NewRows([]string{"uploaded_at"}).AddRow(time.Now()))

	report := &Report{
		PatientID: "patient-1",
		FileName:  "scan.png",
		ObjectKey: "reports/patient-1/abc-scan.png",
		Type:      "xray",
		FileSize:  2048,
		MimeType:  "image/png",
	}
	require.NoError(t, repo.Create(context.Background(), report))
	assert.NotEmpty(t, report.ID, "missing id is generated")
	assert.False(t, report.UploadedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetReportByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)

	mock.ExpectQuery(`SELECT .+ FROM reports WHERE id = \$1`).
		WithArgs("r-1").
		WillReturnRows(reportRow("r-1", "patient-1"))

	report, err := repo.GetByID(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Equal(t, "patient-1", report.PatientID)
	assert.Equal(t, "reports/patient-1/r-1-scan.png", report.ObjectKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetReportNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)

	mock.ExpectQuery(`SELECT .+ FROM reports WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows(reportCols))

	_, err = repo.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListReportsForPatient(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)

	rows := pgxmock.NewRows(reportCols).
		AddRow("r-2", "patient-1", "blood.pdf", "reports/patient-1/r-2-blood.pdf", "lab_report", int64(512), "application/pdf", time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)).
		AddRow("r-1", "patient-1", "scan.png", "reports/patient-1/r-1-scan.png", "xray", int64(2048), "image/png", time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	mock.ExpectQuery(`SELECT .+ FROM reports WHERE patient_id = \$1 ORDER BY uploaded_at DESC`).
		WithArgs("patient-1").
		WillReturnRows(rows)

	list, err := repo.ListForPatient(context.Background(), "patient-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "r-2", list[0].ID, "newest first")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteReport(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)

	mock.ExpectExec(`DELETE FROM reports WHERE id = \$1`).
		WithArgs("r-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, repo.Delete(context.Background(), "r-1"))

	mock.ExpectExec(`DELETE FROM reports WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), "ghost"), ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
