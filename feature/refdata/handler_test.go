package refdata

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"refdata-manager/core/reconcile"
	"refdata-manager/core/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T) (*fiber.App, *Service) {
	t.Helper()
	svc := setupService(t, nil)
	app := fiber.New()
	NewHandler(svc).RegisterRoutes(app)
	return app, svc
}

func uploadRequest(t *testing.T, url string, file []byte, fields map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		fw, err := w.CreateFormFile("file", "upload.xlsx")
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", url, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHandleListSchemas(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/refdata/schemas", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body []map[string]any
	decode(t, resp, &body)
	assert.Len(t, body, 5)
	assert.Equal(t, "auditRule", body[0]["resourceType"])
}

func TestHandleGenerateCode(t *testing.T) {
	app, _ := setupTestApp(t)

	tests := []struct {
		name   string
		url    string
		status int
		code   string
	}{
		{"Primary", "/refdata/codes/docType", 200, "DT-202403-000001"},
		{"Child", "/refdata/codes/reviewItem?parentCode=AR-202403-000002", 200, "AR-202403-000002-RI-0001"},
		{"Missing Parent", "/refdata/codes/reviewItem", 400, ""},
		{"Bad Count", "/refdata/codes/docType?count=x", 400, ""},
		{"Zero Count", "/refdata/codes/docType?count=0", 400, ""},
		{"Oversized Count", "/refdata/codes/docType?count=1001", 400, ""},
		{"Huge Count", "/refdata/codes/docType?count=4611686018427387904", 400, ""},
		{"Unknown", "/refdata/codes/spaceship", 404, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("POST", tt.url, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body map[string]any
			decode(t, resp, &body)
			if tt.code != "" {
				assert.Equal(t, tt.code, body["code"])
			} else {
				assert.NotEmpty(t, body["error"])
			}
		})
	}
}

func TestHandleParseCode(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/refdata/codes/RG-202403-000001-RC-0004", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	decode(t, resp, &body)
	assert.Equal(t, "regulationClause", body["resourceType"])
	assert.Equal(t, "RG-202403-000001", body["parentCode"])
	assert.Equal(t, float64(4), body["seq"])

	resp, err = app.Test(httptest.NewRequest("GET", "/refdata/codes/nonsense", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestHandleImport(t *testing.T) {
	t.Run("Dry Run", func(t *testing.T) {
		app, svc := setupTestApp(t)

		req := uploadRequest(t, "/refdata/import/docType", docTypeWorkbook(t), map[string]string{"mode": "insertOnly", "dryRun": "true"})
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var result reconcile.ImportResult
		decode(t, resp, &result)
		assert.True(t, result.IsDryRun)
		assert.Equal(t, 2, result.Created)

		stored, err := svc.records.List(req.Context(), "docType")
		require.NoError(t, err)
		assert.Empty(t, stored)
	})

	t.Run("Writes", func(t *testing.T) {
		app, svc := setupTestApp(t)

		resp, err := app.Test(uploadRequest(t, "/refdata/import/docType?mode=upsert", docTypeWorkbook(t), nil), -1)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var result reconcile.ImportResult
		decode(t, resp, &result)
		assert.False(t, result.IsDryRun)
		assert.Equal(t, 2, result.Success)
		assert.Equal(t, []reconcile.RowError{}, result.Errors)

		stored, err := svc.records.List(context.Background(), "docType")
		require.NoError(t, err)
		assert.Len(t, stored, 2)
	})

	errorCases := []struct {
		name   string
		url    string
		file   []byte
		fields map[string]string
		status int
	}{
		{"Malformed", "/refdata/import/docType", []byte("not xlsx"), nil, 400},
		{"Missing File", "/refdata/import/docType", nil, nil, 400},
		{"Invalid Mode", "/refdata/import/docType", []byte("x"), map[string]string{"mode": "merge"}, 400},
		{"Unknown Resource", "/refdata/import/spaceship", []byte("x"), nil, 404},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := setupTestApp(t)
			resp, err := app.Test(uploadRequest(t, tt.url, tt.file, tt.fields), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body map[string]any
			decode(t, resp, &body)
			assert.NotEmpty(t, body["error"])
		})
	}

	t.Run("Empty Sheet", func(t *testing.T) {
		app, _ := setupTestApp(t)
		header := buildWorkbook(t, "DocTypes", [][]any{{"Code", "Name"}})
		resp, err := app.Test(uploadRequest(t, "/refdata/import/docType", header, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
	})
}

func TestHandleExportAndTemplate(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/refdata/export/docType", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, storage.XLSXContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "docType.xlsx")

	resp, err = app.Test(httptest.NewRequest("GET", "/refdata/template/regulation", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "regulation-template.xlsx")

	resp, err = app.Test(httptest.NewRequest("GET", "/refdata/template/spaceship", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/refdata/export/docType?upload=true", nil))
	require.NoError(t, err)
	assert.Equal(t, 503, resp.StatusCode, "storage is disabled")
}

func TestHandleObjectsAndIntegrity(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/refdata/objects", nil))
	require.NoError(t, err)
	assert.Equal(t, 503, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/refdata/integrity", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	decode(t, resp, &body)
	assert.Equal(t, true, body["matched"])
}

func TestLoader(t *testing.T) {
	svc := setupService(t, nil)
	feature := NewFeature(svc.db, svc.registry, nil, testStorageConfig(), nil)

	assert.Equal(t, "refdata", feature.Name())
	assert.True(t, feature.IsEnabled())
	assert.NoError(t, feature.Load(fiber.New()))

	disabled := NewFeature(nil, svc.registry, nil, testStorageConfig(), nil)
	assert.False(t, disabled.IsEnabled())
}
