package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"sync"
	"time"
)

// JobStatus represents the state of a conversion job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusParsing    JobStatus = "parsing"
	StatusRendering  JobStatus = "rendering"
	StatusPresenting JobStatus = "presenting"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Finished reports whether no further transitions will happen.
func (s JobStatus) Finished() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job tracks the state of a single document conversion.
type Job struct {
	mu sync.Mutex

	ID       string `json:"job_id"`
	Filename string `json:"filename"`
	Format   string `json:"format"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Summary Summary `json:"summary"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData    []byte
	result      []byte
	contentType string
	errors      []string
}

// Summary describes what a conversion produced.
type Summary struct {
	Blocks      int      `json:"blocks"`
	Units       int      `json:"units"`
	Lines       int      `json:"lines"`
	OutputBytes int      `json:"output_bytes"`
	ReusedFrom  string   `json:"reused_from,omitempty"`
	Errors      []string `json:"errors"`
}

// NewJob creates a queued job for the given upload.
func NewJob(filename, format string, data []byte) *Job {
	now := time.Now()
	return &Job{
		ID:          newJobID(now),
		Filename:    filename,
		Format:      format,
		Status:      StatusQueued,
		Phase:       "queued",
		ContentHash: ContentHashHex(data),
		CreatedAt:   now,
		UpdatedAt:   now,
		fileData:    data,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Delete removes a job and reports whether it existed.
func (s *JobStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[id]
	delete(s.jobs, id)
	return ok
}

// List returns every job, oldest first. Job IDs sort by creation time.
func (s *JobStore) List() []*Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FindCompleted returns a completed job that converted identical content to
// the same format, or nil.
func (s *JobStore) FindCompleted(contentHash, format string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range s.jobs {
		job.mu.Lock()
		match := job.Status == StatusCompleted && job.ContentHash == contentHash && job.Format == format
		job.mu.Unlock()
		if match {
			return job
		}
	}
	return nil
}

// Cleanup removes finished jobs past their TTL. Jobs still in flight stay.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := job.Status.Finished() && now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Summary.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetCounts records the size of the parsed tree and of its rendering.
func (j *Job) SetCounts(blocks, units, lines int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Summary.Blocks = blocks
	j.Summary.Units = units
	j.Summary.Lines = lines
	j.UpdatedAt = time.Now()
}

// SetResult stores the presented output and completes the job.
func (j *Job) SetResult(data []byte, contentType string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = data
	j.contentType = contentType
	j.Summary.OutputBytes = len(data)
	j.fileData = nil
	j.Status = StatusCompleted
	j.Phase = "done"
	j.UpdatedAt = time.Now()
}

// Reuse completes the job with the output of an earlier identical conversion.
func (j *Job) Reuse(from *Job) {
	data, contentType, _ := from.Result()
	snap := from.Snapshot()
	j.mu.Lock()
	j.Summary.Blocks = snap.Summary.Blocks
	j.Summary.Units = snap.Summary.Units
	j.Summary.Lines = snap.Summary.Lines
	j.Summary.ReusedFrom = from.ID
	j.mu.Unlock()
	j.SetResult(data, contentType)
}

// Result returns the presented output. ok is false until the job completes.
func (j *Job) Result() (data []byte, contentType string, ok bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status != StatusCompleted {
		return nil, "", false
	}
	return j.result, j.contentType, true
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Filename    string    `json:"filename"`
	Format      string    `json:"format"`
	ContentHash string    `json:"content_hash"`
	Summary     Summary   `json:"summary"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	summary := j.Summary
	summary.Errors = append([]string{}, j.errors...)
	return JobSnapshot{
		ID:          j.ID,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		Format:      j.Format,
		ContentHash: j.ContentHash,
		Summary:     summary,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
