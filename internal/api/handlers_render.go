package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dgallion1/docrender/internal/doctree"
	"github.com/dgallion1/docrender/internal/parser"
	"github.com/dgallion1/docrender/internal/present"
	"github.com/dgallion1/docrender/internal/render"
)

// handleRender renders a document posted as the request body and responds
// with the presented output. Malformed documents render as empty.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format, pr, ok := s.presenterFor(w, r.URL.Query().Get("format"))
	if !ok {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("body exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "failed to read body", http.StatusBadRequest)
		return
	}

	units := render.Document(s.decodeBody(r.Header.Get("Content-Type"), body))

	var buf bytes.Buffer
	if err := pr.Present(&buf, units); err != nil {
		s.log.Error("present failed", "format", format, "error", err)
		jsonError(w, "failed to present document", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", pr.ContentType())
	w.Write(buf.Bytes())
}

// decodeBody reads the document body as YAML or JSON depending on the
// request content type.
func (s *Server) decodeBody(contentType string, body []byte) doctree.Document {
	mediaType, _, _ := mime.ParseMediaType(contentType)

	var doc doctree.Document
	var err error
	switch mediaType {
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		doc, err = doctree.DecodeYAML(body)
	default:
		doc, err = doctree.DecodeBytes(body)
	}
	if err != nil {
		s.log.Debug("malformed document, rendering empty", "error", err)
		return doctree.Document{}
	}
	return doc
}

// handleImport converts an uploaded file into the document tree without
// rendering it.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	p, err := parser.ForFile(filename, parser.Options{PDFFallbackPdftotext: s.cfg.PDFFallbackPdftotext})
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	doc, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		jsonError(w, "parse failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	var buf bytes.Buffer
	if err := doctree.Encode(&buf, doc); err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(buf.Bytes())
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	inputs := make([]string, 0, len(parser.SupportedExtensions))
	for ext := range parser.SupportedExtensions {
		inputs = append(inputs, ext)
	}
	sort.Strings(inputs)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"input_extensions": inputs,
		"output_formats":   present.Formats(),
		"default_format":   s.cfg.DefaultFormat,
	})
}

// presenterFor resolves the requested output format, falling back to the
// configured default. It writes a 400 response for unknown formats.
func (s *Server) presenterFor(w http.ResponseWriter, requested string) (string, present.Presenter, bool) {
	if strings.TrimSpace(requested) == "" {
		requested = s.cfg.DefaultFormat
	}
	format, err := present.Canonical(requested)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	pr, err := present.ForFormat(format)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	return format, pr, true
}

// readUpload reads the multipart "file" field, enforcing the upload limit
// and the supported extensions. It writes the error response itself.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return "", nil, false
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return "", nil, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return "", nil, false
	}
	return filename, data, true
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
