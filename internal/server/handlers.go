package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Abyblackmouth/XmlCreator40/internal/logging"
	"github.com/Abyblackmouth/XmlCreator40/internal/xlsxparser"
	"github.com/Abyblackmouth/XmlCreator40/pkg/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	xmlContentType  = "application/xml; charset=utf-8"

	// multipartMemory is the part of an upload kept in memory while parsing.
	multipartMemory = 8 << 20
)

type uploadPage struct {
	Error        string
	MaxUploadMB  int
	ShowTemplate bool
}

type resultPage struct {
	FileName          string
	DownloadURL       string
	Operations        int
	CustodyOperations int
	Warnings          []string
}

// GET /
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "-1")
	s.renderUpload(w, http.StatusOK, "")
}

// POST /
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.MaxUploadBytes()
	tooLarge := fmt.Sprintf("The file exceeds the %d MB upload limit", s.cfg.Server.MaxUploadMB)

	if r.ContentLength > limit {
		s.renderUpload(w, http.StatusRequestEntityTooLarge, tooLarge)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.renderUpload(w, http.StatusRequestEntityTooLarge, tooLarge)
			return
		}
		s.renderUpload(w, http.StatusBadRequest, "No file was selected")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil || header.Filename == "" {
		s.renderUpload(w, http.StatusBadRequest, "No file was selected")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		s.renderUpload(w, http.StatusBadRequest, "Only Excel files (.xlsx) are allowed")
		return
	}

	savedPath, err := s.saveUpload(file, header.Filename)
	if err != nil {
		s.logger.WithError(err).Error("Failed to store upload",
			logging.F(logging.FieldInputFile, header.Filename))
		s.renderUpload(w, http.StatusInternalServerError, "The file could not be stored")
		return
	}

	s.logger.Info("Converting upload",
		logging.F(logging.FieldInputFile, savedPath),
		logging.F(logging.FieldBytes, header.Size))

	result := s.converter.Convert(savedPath, s.cfg.Paths.OutputDir)
	if result.Error != nil {
		s.renderUpload(w, http.StatusUnprocessableEntity, result.Error.Error())
		return
	}

	name := filepath.Base(result.OutputFile)
	page := resultPage{
		FileName:          name,
		DownloadURL:       "/download/" + url.PathEscape(name),
		Operations:        result.Stats.Operations,
		CustodyOperations: result.Stats.CustodyOperations,
	}
	for _, warning := range result.Warnings {
		page.Warnings = append(page.Warnings, warning.Error())
	}
	s.render(w, http.StatusOK, "result", page)
}

func (s *Server) saveUpload(src io.Reader, original string) (string, error) {
	if err := os.MkdirAll(s.cfg.Paths.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	path := filepath.Join(s.cfg.Paths.UploadDir, utils.UploadFileName(original))
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}

// GET /download/{filename}
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}

	if !isReportName(name) {
		s.renderUpload(w, http.StatusBadRequest, "Invalid file name")
		return
	}

	path := filepath.Join(s.cfg.Paths.OutputDir, name)
	f, err := os.Open(path)
	if err != nil {
		s.logger.Warn("Requested report not found", logging.F(logging.FieldOutputFile, name))
		s.renderUpload(w, http.StatusNotFound, "The requested file does not exist")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		s.renderUpload(w, http.StatusNotFound, "The requested file does not exist")
		return
	}

	w.Header().Set("Content-Type", xmlContentType)
	w.Header().Set("Content-Disposition", attachment(name))
	http.ServeContent(w, r, name, info.ModTime(), f)
}

// isReportName accepts a bare ".xml" file name with no path elements.
func isReportName(name string) bool {
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ".xml")
}

// GET /download-template
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := xlsxparser.WriteTemplate(&buf); err != nil {
		s.logger.WithError(err).Error("Failed to build template")
		s.renderUpload(w, http.StatusInternalServerError, "The template is not available")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", attachment(xlsxparser.TemplateFileName))
	http.ServeContent(w, r, xlsxparser.TemplateFileName, time.Time{}, bytes.NewReader(buf.Bytes()))
}

// POST /shutdown
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.Server.ShutdownEnabled {
		writeJSON(w, http.StatusForbidden, map[string]string{
			"status":  "error",
			"message": "shutdown not allowed",
		})
		return
	}

	s.logger.Info("Shutdown requested over HTTP")
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "server shutting down",
	})
	s.requestStop()
}

// GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func (s *Server) renderUpload(w http.ResponseWriter, status int, message string) {
	s.render(w, status, "upload", uploadPage{
		Error:        message,
		MaxUploadMB:  s.cfg.Server.MaxUploadMB,
		ShowTemplate: true,
	})
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.WithError(err).Error("Failed to render page", logging.F("template", name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func attachment(name string) string {
	return fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", name, url.PathEscape(name))
}
