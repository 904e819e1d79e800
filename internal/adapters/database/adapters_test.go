package database_test

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaayakalpa/healthfinder/internal/adapters/database"
	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
	"github.com/kaayakalpa/healthfinder/internal/domain/repositories"
	"github.com/kaayakalpa/healthfinder/internal/infrastructure/clients/postgres"
	apperrors "github.com/kaayakalpa/healthfinder/pkg/errors"
)

var (
	diseaseCols = []string{"id", "name", "parent_id", "description", "category", "is_active", "sort_order", "created_at", "updated_at"}
	centerCols  = []string{
		"id", "name", "disease_id", "disease_name", "owner_id",
		"address", "city", "state", "pincode", "latitude", "longitude",
		"contact_phone", "contact_email", "contact_website",
		"description", "treatment_type", "price_range", "photos",
		"business_license_number", "license_url", "is_verified", "verified_by", "verified_at",
		"status", "rejection_reason", "view_count", "report_count", "created_at", "updated_at",
	}
	otpCols    = []string{"id", "phone", "code", "purpose", "user_id", "expires_at", "is_used", "attempts", "ip_address", "created_at"}
	reportCols = []string{"id", "center_id", "reported_by", "reason", "status", "created_at", "updated_at"}
)

func newMockClient(t *testing.T) (*postgres.Client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return postgres.NewClientFromDB(db), mock
}

func TestDiseaseAdapter_GetByID(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := database.NewDiseaseAdapter(client)
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM "diseases" WHERE \("id" = 'd-2'\)`).
		WillReturnRows(sqlmock.NewRows(diseaseCols).
			AddRow("d-2", "Migraine", "d-1", "", "Neurological", true, 2, now, now))

	disease, err := adapter.GetByID(context.Background(), "d-2")
	require.NoError(t, err)
	assert.Equal(t, "Migraine", disease.Name)
	require.NotNil(t, disease.ParentID)
	assert.Equal(t, "d-1", *disease.ParentID)
	assert.Equal(t, 2, disease.Order)
}

func TestDiseaseAdapter_GetByID_NotFound(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := database.NewDiseaseAdapter(client)

	mock.ExpectQuery(`SELECT (.+) FROM "diseases"`).
		WillReturnRows(sqlmock.NewRows(diseaseCols))

	_, err := adapter.GetByID(context.Background(), "missing")
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeNotFound))
}

func TestDiseaseAdapter_GetByName_CaseInsensitive(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := database.NewDiseaseAdapter(client)
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM "diseases" WHERE \(LOWER\("name"\) = 'migraine'\)`).
		WillReturnRows(sqlmock.NewRows(diseaseCols).
			AddRow("d-2", "Migraine", nil, "", "General", true, 0, now, now))

	disease, err := adapter.GetByName(context.Background(), "  MIGRAINE ")
	require.NoError(t, err)
	assert.Nil(t, disease.ParentID)
}

func TestDiseaseAdapter_Create_Conflict(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := database.NewDiseaseAdapter(client)

	mock.ExpectExec(`INSERT INTO "diseases"`).
		WillReturnError(&pq.Error{Code: "23505"})

	err := adapter.Create(context.Background(), &entities.Disease{ID: "d-1", Name: "Migraine"})
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeConflict))
}

func TestDiseaseAdapter_Update_NotFound(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := database.NewDiseaseAdapter(client)

	mock.ExpectExec(`UPDATE "diseases" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := adapter.Update(context.Background(), &entities.Disease{ID: "nope", Name: "X"})
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeNotFound))
}

func TestDiseaseAdapter_List_Filters(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := database.NewDiseaseAdapter(client)
	now := time.Now()

	mock.ExpectQuery(`"name" ILIKE '%mig%'(.+)ORDER BY "name" ASC LIMIT 20`).
		WillReturnRows(sqlmock.NewRows(diseaseCols).
			AddRow("d-2", "Migraine", nil, "", "General", true, 0, now, now))

	diseases, err := adapter.List(context.Background(), repositories.DiseaseFilter{Search: "mig", SortByName: true, Limit: 20})
	require.NoError(t, err)
	assert.Len(t, diseases, 1)

	mock.ExpectQuery(`"parent_id" IS NULL(.+)ORDER BY "sort_order" ASC, "name" ASC`).
		WillReturnRows(sqlmock.NewRows(diseaseCols))

	diseases, err = adapter.List(context.Background(), repositories.DiseaseFilter{RootsOnly: true})
	require.NoError(t, err)
	assert.Empty(t, diseases)
}

func TestDiseaseAdapter_CountChildren(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := database.NewDiseaseAdapter(client)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "diseases" WHERE \("parent_id" = 'd-1'\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := adapter.CountChildren(context.Background(), "d-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func centerRow(id string, now time.Time) []driver.Value {
	return []driver.Value{
		id, "Sanjeevani Clinic", "d-1", "Migraine", "u-1",
		"12 MG Road", "Kochi", "Kerala", "682001", 9.93, nil,
		"+919876543210", "info@sanjeevani.in", "",
		"Panchakarma", "Ayurveda", "500-1500", "{a.jpg,b.jpg}",
		"", "", true, "admin-1", now,
		"approved", "", 4, 0, now, now,
	}
}

func TestCenterAdapter_Search(t *testing.T) {
	client, mock := newMockClient(t)
	mock.MatchExpectationsInOrder(false)
	adapter := database.NewCenterAdapter(client)
	now := time.Now()

	mock.ExpectQuery(`SELECT "id", (.+) FROM "centers" WHERE \(\("status" = 'approved'\) AND \("city" ILIKE '%koch%'\)\) ORDER BY "name" ASC, "id" ASC LIMIT 10 OFFSET 10`).
		WillReturnRows(sqlmock.NewRows(centerCols).AddRow(centerRow("c-1", now)...))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "centers"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	centers, total, err := adapter.Search(context.Background(), repositories.CenterFilter{
		Status: entities.CenterStatusApproved,
		City:   "koch",
		SortBy: "name",
		Limit:  10,
		Offset: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 11, total)
	require.Len(t, centers, 1)

	c := centers[0]
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, c.Photos)
	require.NotNil(t, c.Location.Latitude)
	assert.Equal(t, 9.93, *c.Location.Latitude)
	assert.Nil(t, c.Location.Longitude)
	require.NotNil(t, c.VerifiedBy)
	assert.Equal(t, "admin-1", *c.VerifiedBy)
	assert.Equal(t, entities.CenterStatusApproved, c.Status)
	assert.Equal(t, entities.TreatmentAyurveda, c.TreatmentType)
}

func TestCenterAdapter_IncrementViewCount(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := database.NewCenterAdapter(client)

	mock.ExpectExec(`UPDATE "centers" SET (.+)"view_count" \+ 1(.+)WHERE \("id" = 'c-1'\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "centers" SET (.+)"report_count" \+ 1`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, adapter.IncrementViewCount(context.Background(), "c-1"))

	err := adapter.IncrementReportCount(context.Background(), "gone")
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeNotFound))
}

func TestCenterAdapter_ListByStatus(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := database.NewCenterAdapter(client)
	now := time.Now()

	mock.ExpectQuery(`FROM "centers" WHERE \("status" = 'pending'\) ORDER BY "created_at" DESC`).
		WillReturnRows(sqlmock.NewRows(centerCols).
			AddRow(centerRow("c-1", now)...).
			AddRow(centerRow("c-2", now)...))

	centers, err := adapter.ListByStatus(context.Background(), entities.CenterStatusPending)
	require.NoError(t, err)
	assert.Len(t, centers, 2)
}

func TestUserAdapter_GetByEmail_Lowercases(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := database.NewUserAdapter(client)

	mock.ExpectQuery(`FROM "users" WHERE \("email" = 'asha@example.com'\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := adapter.GetByEmail(context.Background(), " Asha@Example.com ")
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeNotFound))
}

func TestUserAdapter_Create_Conflict(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := database.NewUserAdapter(client)

	mock.ExpectExec(`INSERT INTO "users"`).
		WillReturnError(&pq.Error{Code: "23505"})

	err := adapter.Create(context.Background(), &entities.User{ID: "u-1", Email: "a@b.c"})
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeConflict))
}

func TestOTPAdapter_FindActive(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := database.NewOTPAdapter(client)
	now := time.Now()

	mock.ExpectQuery(`FROM "otps" WHERE (.+)"is_used" IS FALSE(.+)ORDER BY "created_at" DESC LIMIT 1`).
		WillReturnRows(sqlmock.NewRows(otpCols).
			AddRow("o-1", "+919876543210", "123456", "add_center_normal", "u-1", now.Add(5*time.Minute), false, 1, "10.0.0.1", now))

	otp, err := adapter.FindActive(context.Background(), "+919876543210", entities.OTPPurposeAddCenterNormal, now)
	require.NoError(t, err)
	assert.Equal(t, "123456", otp.Code)
	assert.Equal(t, 1, otp.Attempts)
	require.NotNil(t, otp.UserID)
	assert.Equal(t, "u-1", *otp.UserID)
}

func TestOTPAdapter_ExistsSince(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := database.NewOTPAdapter(client)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "otps"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	exists, err := adapter.ExistsSince(context.Background(), "+919876543210", entities.OTPPurposeMobileVerification, time.Now())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestReportAdapter_GetAndUpdate(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := database.NewReportAdapter(client)
	now := time.Now()

	mock.ExpectQuery(`FROM "reports" WHERE \("id" = 'r-1'\)`).
		WillReturnRows(sqlmock.NewRows(reportCols).AddRow("r-1", "c-1", "u-1", "Wrong address", "open", now, now))
	mock.ExpectExec(`UPDATE "reports" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	report, err := adapter.GetByID(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Equal(t, entities.ReportStatusOpen, report.Status)

	require.NoError(t, adapter.UpdateStatus(context.Background(), "r-1", entities.ReportStatusReviewed))
}
