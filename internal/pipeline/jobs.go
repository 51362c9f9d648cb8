package pipeline

import (
	"crypto/sha256"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/docforge/internal/chunker"
	"github.com/dgallion1/docforge/internal/parser"
)

// JobStatus represents the state of an import job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusParsing   JobStatus = "parsing"
	StatusChunking  JobStatus = "chunking"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusDuplicate JobStatus = "duplicate"
)

// Done reports whether the status is terminal.
func (s JobStatus) Done() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusDuplicate
}

// Job tracks the state of a single asynchronous import.
type Job struct {
	mu sync.Mutex

	ID       string `json:"job_id"`
	Filename string `json:"filename"`
	Title    string `json:"title"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	DuplicateOf string    `json:"duplicate_of,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	result   *Result
	errors   []string
}

// Progress counts what the import has produced so far.
type Progress struct {
	Pages  int      `json:"pages"`
	Blocks int      `json:"blocks"`
	Chunks int      `json:"chunks"`
	Errors []string `json:"errors"`
}

// Result is the output of a finished import.
type Result struct {
	Import *parser.Import  `json:"import"`
	Text   string          `json:"text"`
	Chunks []chunker.Chunk `json:"chunks"`
}

// NewJob creates a queued job for the given upload.
func NewJob(filename, title string, data []byte) *Job {
	now := time.Now()
	return &Job{
		ID:          generateULID(),
		Filename:    filename,
		Title:       title,
		Status:      StatusQueued,
		Phase:       "queued",
		ContentHash: ContentHashHex(data),
		CreatedAt:   now,
		UpdatedAt:   now,
		fileData:    data,
	}
}

// dedupKey identifies uploads that would produce the same result.
func (j *Job) dedupKey() string {
	return strings.ToLower(filepath.Ext(j.Filename)) + "|" + j.Title + "|" + j.ContentHash
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu     sync.Mutex
	jobs   map[string]*Job
	byHash map[string]string
	ttl    time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs:   make(map[string]*Job),
		byHash: make(map[string]string),
		ttl:    ttl,
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

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Remember indexes a completed job so identical uploads can reuse it.
func (s *JobStore) Remember(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byHash[job.dedupKey()] = job.ID
}

// FindDuplicate returns a completed job for the same upload, if any.
func (s *JobStore) FindDuplicate(job *Job) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byHash[job.dedupKey()]
	if !ok {
		return nil
	}
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
	for key, id := range s.byHash {
		if _, ok := s.jobs[id]; !ok {
			delete(s.byHash, key)
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
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetResult stores the import output and releases the upload bytes.
func (j *Job) SetResult(res *Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = res
	j.fileData = nil
	if res != nil && res.Import != nil {
		j.Progress.Pages = res.Import.Pages
		if res.Import.Document != nil {
			j.Progress.Blocks = len(res.Import.Document.Children)
		}
	}
	if res != nil {
		j.Progress.Chunks = len(res.Chunks)
	}
	j.UpdatedAt = time.Now()
}

// Result returns the import output, nil until the job completes.
func (j *Job) Result() *Result {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// MarkDuplicate completes the job with the result of an earlier identical one.
func (j *Job) MarkDuplicate(of *Job) {
	res := of.Result()
	j.SetResult(res)
	j.mu.Lock()
	j.DuplicateOf = of.ID
	j.mu.Unlock()
	j.SetStatus(StatusDuplicate, "done")
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
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
	Filename    string    `json:"filename"`
	Title       string    `json:"title"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Progress    Progress  `json:"progress"`
	ContentHash string    `json:"content_hash"`
	DuplicateOf string    `json:"duplicate_of,omitempty"`
	Result      *Result   `json:"result,omitempty"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.Progress.Errors...)
	return JobSnapshot{
		ID:          j.ID,
		Filename:    j.Filename,
		Title:       j.Title,
		Status:      j.Status,
		Phase:       j.Phase,
		ContentHash: j.ContentHash,
		DuplicateOf: j.DuplicateOf,
		Progress: Progress{
			Pages:  j.Progress.Pages,
			Blocks: j.Progress.Blocks,
			Chunks: j.Progress.Chunks,
			Errors: errs,
		},
		Result: j.result,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
