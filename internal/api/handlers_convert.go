package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docrender/internal/pipeline"
	"github.com/dgallion1/docrender/internal/present"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	format, _, ok := s.presenterFor(w, r.FormValue("format"))
	if !ok {
		return
	}

	job := pipeline.NewJob(filename, format, data)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":     snap.ID,
		"status":     snap.Status,
		"format":     snap.Format,
		"poll_url":   fmt.Sprintf("/api/convert/%s/status", snap.ID),
		"result_url": fmt.Sprintf("/api/convert/%s/result", snap.ID),
	})
}

func (s *Server) handleConvertStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	resp := map[string]any{
		"job_id":  snap.ID,
		"status":  snap.Status,
		"phase":   snap.Phase,
		"format":  snap.Format,
		"summary": snap.Summary,
	}
	if snap.Status == pipeline.StatusCompleted {
		resp["result_url"] = fmt.Sprintf("/api/convert/%s/result", snap.ID)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleConvertResult(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	data, contentType, ok := job.Result()
	if !ok {
		snap := job.Snapshot()
		if snap.Status == pipeline.StatusFailed {
			jsonError(w, "conversion failed: "+strings.Join(snap.Summary.Errors, "; "), http.StatusUnprocessableEntity)
			return
		}
		jsonError(w, fmt.Sprintf("job is %s", snap.Status), http.StatusConflict)
		return
	}

	snap := job.Snapshot()
	name := strings.TrimSuffix(snap.Filename, filepath.Ext(snap.Filename)) + present.Extension(snap.Format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write(data)
}

// handleDeleteJob forgets a job and its output.
func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	if !s.orchestrator.DeleteJob(chi.URLParam(r, "jobID")) {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"deleted": true})
}

// handleListJobs lists known jobs, oldest first, optionally filtered by status.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	status := pipeline.JobStatus(r.URL.Query().Get("status"))

	jobs := []pipeline.JobSnapshot{}
	for _, job := range s.orchestrator.Jobs() {
		snap := job.Snapshot()
		if status != "" && snap.Status != status {
			continue
		}
		jobs = append(jobs, snap)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"jobs": jobs})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	counts := map[pipeline.JobStatus]int{}
	for _, job := range s.orchestrator.Jobs() {
		counts[job.Snapshot().Status]++
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"queue_depth": s.orchestrator.QueueDepth(),
		"jobs":        counts,
		"latency":     s.orchestrator.Stats(),
	})
}
