package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Abyblackmouth/XmlCreator40/internal/config"
	"github.com/Abyblackmouth/XmlCreator40/internal/converter"
	"github.com/Abyblackmouth/XmlCreator40/internal/logging"
	"github.com/Abyblackmouth/XmlCreator40/internal/reporterror"
	"github.com/Abyblackmouth/XmlCreator40/internal/testutil"
)

const reportName = "informe1.0_ACME_SA_DE_CV_3.xml"

type fakeConverter struct {
	result converter.Result
	calls  []string
}

func (f *fakeConverter) Convert(inputPath, outputDir string) converter.Result {
	f.calls = append(f.calls, inputPath)
	return f.result
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.InputDir = filepath.Join(root, "input")
	cfg.Paths.OutputDir = filepath.Join(root, "output")
	cfg.Paths.UploadDir = filepath.Join(root, "uploads")
	cfg.Paths.ArchiveDir = filepath.Join(root, "archive")
	cfg.Server.OpenBrowser = false
	cfg.Server.ShutdownEnabled = true
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config, conv Converter) (*Server, *logging.MockLogger) {
	t.Helper()
	logger := logging.NewMockLogger()
	if conv == nil {
		conv = converter.New(converter.WithLogger(logger))
	}
	return New(cfg, logger, conv), logger
}

func uploadRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestIndex(t *testing.T) {
	s, logger := newTestServer(t, testConfig(t), nil)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-store")
	assert.Equal(t, "no-cache", rec.Header().Get("Pragma"))
	assert.Contains(t, rec.Body.String(), `href="/download-template"`)
	assert.Contains(t, rec.Body.String(), `name="file"`)
	assert.True(t, logger.HasEntry("INFO", "Request handled"))
}

func TestUploadAndDownload(t *testing.T) {
	cfg := testConfig(t)
	s, _ := newTestServer(t, cfg, nil)

	workbook, err := os.ReadFile(testutil.ValidWorkbook(t, t.TempDir()))
	require.NoError(t, err)

	rec := serve(s, uploadRequest(t, "file", "mis datos.xlsx", workbook))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), reportName)
	assert.Contains(t, rec.Body.String(), `href="/download/`+reportName+`"`)
	assert.Contains(t, rec.Body.String(), "advertencia", "the defaulted amount is reported")

	uploads, err := os.ReadDir(cfg.Paths.UploadDir)
	require.NoError(t, err)
	require.Len(t, uploads, 1)
	assert.Regexp(t, `^[0-9a-f-]{36}_mis_datos\.xlsx$`, uploads[0].Name())

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/download/"+reportName, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), reportName)
	assert.True(t, strings.HasPrefix(rec.Body.String(), `<?xml version="1.0" encoding="utf-8"?>`))
}

func TestUpload_Rejections(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.MaxUploadMB = 1

	tests := []struct {
		name     string
		req      func(t *testing.T) *http.Request
		wantCode int
		wantText string
	}{
		{
			name:     "no file field",
			req:      func(t *testing.T) *http.Request { return uploadRequest(t, "", "", nil) },
			wantCode: http.StatusBadRequest,
			wantText: "No file was selected",
		},
		{
			name:     "empty file name",
			req:      func(t *testing.T) *http.Request { return uploadRequest(t, "file", "", []byte("x")) },
			wantCode: http.StatusBadRequest,
			wantText: "No file was selected",
		},
		{
			name:     "not multipart",
			req:      func(t *testing.T) *http.Request { return httptest.NewRequest(http.MethodPost, "/", nil) },
			wantCode: http.StatusBadRequest,
			wantText: "No file was selected",
		},
		{
			name:     "wrong extension",
			req:      func(t *testing.T) *http.Request { return uploadRequest(t, "file", "datos.csv", []byte("a,b")) },
			wantCode: http.StatusBadRequest,
			wantText: "Only Excel files (.xlsx) are allowed",
		},
		{
			name: "too large",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "file", "big.xlsx", bytes.Repeat([]byte("x"), 2<<20))
			},
			wantCode: http.StatusRequestEntityTooLarge,
			wantText: "1 MB upload limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := &fakeConverter{}
			s, _ := newTestServer(t, cfg, conv)

			rec := serve(s, tt.req(t))
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantText)
			assert.Empty(t, conv.calls, "nothing is converted")
		})
	}
}

func TestUpload_ConversionFailure(t *testing.T) {
	cfg := testConfig(t)
	conv := &fakeConverter{result: converter.Result{
		Error: &reporterror.MissingSheetsError{Sheets: []string{"operaciones"}},
	}}
	s, _ := newTestServer(t, cfg, conv)

	rec := serve(s, uploadRequest(t, "file", "datos.XLSX", []byte("not really a workbook")))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing required sheets: operaciones")
	require.Len(t, conv.calls, 1)
	assert.Equal(t, cfg.Paths.UploadDir, filepath.Dir(conv.calls[0]))
}

func TestDownload_Rejections(t *testing.T) {
	cfg := testConfig(t)
	s, _ := newTestServer(t, cfg, &fakeConverter{})

	require.NoError(t, os.MkdirAll(cfg.Paths.OutputDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Paths.OutputDir, "notes.txt"), []byte("x"), 0o644))

	tests := []struct {
		target   string
		wantCode int
	}{
		{"/download/missing.xml", http.StatusNotFound},
		{"/download/notes.txt", http.StatusBadRequest},
		{"/download/..%2F..%2Fetc%2Fpasswd", http.StatusBadRequest},
		{"/download/..%5Csecret.xml", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := serve(s, httptest.NewRequest(http.MethodGet, tt.target, nil))
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestIsReportName(t *testing.T) {
	assert.True(t, isReportName(reportName))
	assert.True(t, isReportName("informe1.0_ÑANDÚ_3.XML"))
	assert.False(t, isReportName(""))
	assert.False(t, isReportName("../x.xml"))
	assert.False(t, isReportName(`a\b.xml`))
	assert.False(t, isReportName("summary.csv"))
}

func TestDownloadTemplate(t *testing.T) {
	s, _ := newTestServer(t, testConfig(t), &fakeConverter{})

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/download-template", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "plantilla_UIF.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"encabezado", "persona_moral", "operaciones"}, f.GetSheetList())
}

func TestShutdownEndpoint(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Server.ShutdownEnabled = false
		s, _ := newTestServer(t, cfg, &fakeConverter{})

		rec := serve(s, httptest.NewRequest(http.MethodPost, "/shutdown", nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "error", body["status"])

		select {
		case <-s.stop:
			t.Fatal("stop must not be requested")
		default:
		}
	})

	t.Run("enabled", func(t *testing.T) {
		s, _ := newTestServer(t, testConfig(t), &fakeConverter{})

		for i := 0; i < 2; i++ {
			rec := serve(s, httptest.NewRequest(http.MethodPost, "/shutdown", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		}
		select {
		case <-s.stop:
		default:
			t.Fatal("stop was not requested")
		}
	})
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, testConfig(t), &fakeConverter{})

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

// freePort returns a port that was free a moment ago.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func startServer(t *testing.T, ctx context.Context, cfg *config.Config) (string, <-chan error) {
	t.Helper()
	cfg.Server.OpenBrowser = true
	opened := make(chan string, 1)

	s := New(cfg, logging.NewMockLogger(), &fakeConverter{}, WithBrowserOpener(func(url string) error {
		opened <- url
		return nil
	}))

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case url := <-opened:
		return url, done
	case err := <-done:
		t.Fatalf("server exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}
	return "", nil
}

func waitStopped(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRun_ShutdownOverHTTP(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Port = freePort(t)

	url, done := startServer(t, context.Background(), cfg)

	resp, err := http.Get(url + "health")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(url+"shutdown", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	waitStopped(t, done)
}

func TestRun_ContextCancel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Port = freePort(t)

	ctx, cancel := context.WithCancel(context.Background())
	_, done := startServer(t, ctx, cfg)
	cancel()

	waitStopped(t, done)
}

func TestRun_AddressInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := testConfig(t)
	cfg.Server.Port = ln.Addr().(*net.TCPAddr).Port
	s, _ := newTestServer(t, cfg, &fakeConverter{})

	err = s.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlreadyRunning))
}

func TestRun_CleansOldUploads(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Port = freePort(t)
	cfg.Retention.UploadMaxAgeHours = 1

	old := filepath.Join(cfg.Paths.UploadDir, "old.xlsx")
	require.NoError(t, os.MkdirAll(cfg.Paths.UploadDir, 0o755))
	require.NoError(t, os.WriteFile(old, []byte("x"), 0o644))
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	ctx, cancel := context.WithCancel(context.Background())
	_, done := startServer(t, ctx, cfg)
	cancel()
	waitStopped(t, done)

	_, err := os.Stat(old)
	assert.True(t, os.IsNotExist(err))
}
