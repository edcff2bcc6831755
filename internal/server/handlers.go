package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ginjaninja78/vendor-price-comparison/internal/analysis"
	"github.com/ginjaninja78/vendor-price-comparison/internal/loader"
	"github.com/ginjaninja78/vendor-price-comparison/internal/report"
	"github.com/ginjaninja78/vendor-price-comparison/internal/types"
	"github.com/ginjaninja78/vendor-price-comparison/internal/validation"
	"github.com/ginjaninja78/vendor-price-comparison/pkg/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// uploadField is the multipart field carrying the quotation files.
const uploadField = "files"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCreate runs an analysis over the uploaded files.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(s.cfg.Server.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes*maxFilesPerUpload)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "expected a multipart upload: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[uploadField]
	if len(headers) > maxFilesPerUpload {
		writeError(w, http.StatusBadRequest, "too many files, at most "+strconv.Itoa(maxFilesPerUpload))
		return
	}

	uploads := make([]validation.Upload, len(headers))
	for i, fh := range headers {
		uploads[i] = validation.Upload{Name: fh.Filename, Size: fh.Size}
	}
	checked := s.validator.ValidateAll(uploads)
	if !checked.IsValid {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":    checked.Err().Error(),
			"problems": checked.Errors,
		})
		return
	}
	dropped := droppedWarnings(checked.Errors)

	files := make([]loader.File, 0, len(checked.Accepted))
	for _, i := range checked.Accepted {
		data, err := readUpload(headers[i])
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		files = append(files, loader.File{Name: headers[i].Filename, Data: data})
	}

	inputs, err := s.loader.Load(r.Context(), files)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	res, err := s.analyzer.Run(inputs)
	if err != nil {
		var runErr *analysis.RunError
		if errors.As(err, &runErr) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":    runErr.Error(),
				"warnings": append(dropped, runErr.Warnings...),
			})
			return
		}
		zap.L().Error("server: analysis failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	res.Warnings = append(dropped, res.Warnings...)
	s.sessions.Put(res)

	w.Header().Set("Location", "/api/analyses/"+res.ID)
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	res, ok := s.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "analysis not found or expired")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	res, ok := s.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "analysis not found or expired")
		return
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, res); err != nil {
		zap.L().Error("server: export failed", zap.String("id", res.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	name := utils.GenerateOutputFileName(s.cfg.Report.FileNameFormat, map[string]string{"id": res.ID})
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Delete(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "analysis not found or expired")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HELPERS
// =============================================================================

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, eris.Wrapf(err, "server: open upload %s", fh.Filename)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, eris.Wrapf(err, "server: read upload %s", fh.Filename)
	}
	return data, nil
}

// droppedWarnings turns file-level validation failures into run warnings.
func droppedWarnings(errs []*validation.ValidationError) []types.Warning {
	var out []types.Warning
	for _, e := range errs {
		if e.Severity != validation.SeverityWarning {
			continue
		}
		out = append(out, types.Warning{
			Kind:    types.WarnVendorRejected,
			Source:  e.File,
			Message: e.Message,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("server: write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
