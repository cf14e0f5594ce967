package ledgerbook

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ledgerbook/ledgerbook-go/internal/transport"
	"github.com/pkg/errors"
)

// BackupStatus represents the status of a backup or restore job
type BackupStatus string

const (
	BackupStatusPending    BackupStatus = "pending"
	BackupStatusInProgress BackupStatus = "in_progress"
	BackupStatusCompleted  BackupStatus = "completed"
	BackupStatusFailed     BackupStatus = "failed"
	BackupStatusCancelled  BackupStatus = "cancelled"
	BackupStatusTimeout    BackupStatus = "timeout"
)

// Finished reports whether the status is terminal
func (s BackupStatus) Finished() bool {
	switch s {
	case BackupStatusCompleted, BackupStatusFailed, BackupStatusCancelled, BackupStatusTimeout:
		return true
	}
	return false
}

// BackupKind tells a backup from a restore
type BackupKind string

const (
	BackupKindBackup  BackupKind = "backup"
	BackupKindRestore BackupKind = "restore"

	// BackupKindUnknown marks a job attached by ID before the server has
	// said what it is
	BackupKindUnknown BackupKind = ""
)

// backupService implements the BackupService interface
type backupService struct {
	client *Client
	jobs   *BackupJobManager
}

func newBackupService(client *Client) *backupService {
	return &backupService{
		client: client,
		jobs:   NewBackupJobManager(),
	}
}

// List returns the available backups
func (s *backupService) List(ctx context.Context) ([]*Backup, error) {
	var backups []*Backup
	if err := s.client.get(ctx, "/backups/list", nil, &backups); err != nil {
		return nil, errors.Wrap(err, "failed to list backups")
	}
	return backups, nil
}

// Create starts a backup job
func (s *backupService) Create(ctx context.Context, description string) (BackupJob, error) {
	body := map[string]string{
		"description": description,
	}

	var resp jobResponse
	if err := s.client.send(ctx, http.MethodPost, "/backups/create", body, &resp); err != nil {
		return nil, errors.Wrap(err, "failed to start backup")
	}
	return s.track(resp, BackupKindBackup)
}

// Restore starts a restore of the given backup. Every cached query is
// dropped once the job is accepted.
func (s *backupService) Restore(ctx context.Context, backupID int) (BackupJob, error) {
	var resp jobResponse
	path := fmt.Sprintf("/backups/%d/restore", backupID)
	if err := s.client.send(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return nil, errors.Wrapf(err, "failed to restore backup %d", backupID)
	}
	s.client.InvalidateCache()
	return s.track(resp, BackupKindRestore)
}

// Delete removes a backup
func (s *backupService) Delete(ctx context.Context, backupID int) error {
	path := "/backups/" + strconv.Itoa(backupID)
	if err := s.client.send(ctx, http.MethodDelete, path, nil, nil, "/backups/list"); err != nil {
		return errors.Wrapf(err, "failed to delete backup %d", backupID)
	}
	return nil
}

// Download streams the backup archive into w
func (s *backupService) Download(ctx context.Context, backupID int, w io.Writer) (string, error) {
	path := fmt.Sprintf("/backups/%d/download", backupID)
	name, err := s.client.transport.Download(ctx, path, w)
	if err != nil {
		captureException(ctx, err, nil)
		return "", errors.Wrapf(err, "failed to download backup %d", backupID)
	}
	if name == "" {
		name = fmt.Sprintf("backup-%d.zip", backupID)
	}
	return name, nil
}

// Upload stores a backup archive on the server
func (s *backupService) Upload(ctx context.Context, fileName string, data []byte) (*Backup, error) {
	if strings.TrimSpace(fileName) == "" {
		return nil, &ValidationError{Field: "file", Message: "file name is required"}
	}
	if len(data) == 0 {
		return nil, &ValidationError{Field: "file", Message: "file is empty"}
	}

	var backup Backup
	if err := s.client.transport.Upload(ctx, "/backups/upload", "file", fileName, data, &backup); err != nil {
		captureException(ctx, err, nil)
		return nil, errors.Wrap(err, "failed to upload backup")
	}
	s.client.InvalidateCache("/backups/list")
	return &backup, nil
}

// Job returns a handle on a job, tracked or not
func (s *backupService) Job(jobID string) BackupJob {
	if job, ok := s.jobs.GetJob(jobID); ok {
		return job
	}
	job := newBackupJob(s.client, jobID, BackupKindUnknown)
	s.jobs.AddJob(job)
	return job
}

func (s *backupService) track(resp jobResponse, kind BackupKind) (BackupJob, error) {
	if resp.JobID == "" {
		return nil, errors.New("no job id returned")
	}
	job := newBackupJob(s.client, resp.JobID, kind)
	job.observe(&resp)
	s.jobs.AddJob(job)
	s.jobs.CleanupCompleted(time.Hour)
	return job, nil
}

// jobResponse is the server's view of a backup job
type jobResponse struct {
	JobID    string `json:"job_id"`
	Status   string `json:"status"`
	BackupID *int   `json:"backup_id"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	Error    string `json:"error"`
}

// backupJob implements the BackupJob interface
type backupJob struct {
	client    *Client
	id        string
	kind      atomic.Value // BackupKind
	startTime time.Time
	endTime   atomic.Pointer[time.Time]

	status     atomic.Value // BackupStatus
	lastCheck  atomic.Pointer[time.Time]
	checkCount int32
	backupID   atomic.Int64

	cancelMu   sync.Mutex
	cancelFunc context.CancelFunc
	cancelled  atomic.Bool

	lastError error
	errorLock sync.RWMutex
}

func newBackupJob(client *Client, id string, kind BackupKind) *backupJob {
	job := &backupJob{
		client:    client,
		id:        id,
		startTime: time.Now(),
	}
	job.kind.Store(kind)
	job.status.Store(BackupStatusPending)
	return job
}

// ID returns the job ID
func (j *backupJob) ID() string {
	return j.id
}

// Kind tells whether this is a backup or a restore
func (j *backupJob) Kind() BackupKind {
	return j.kind.Load().(BackupKind)
}

// Status returns the current status
func (j *backupJob) Status() BackupStatus {
	return j.status.Load().(BackupStatus)
}

// Wait polls the job until it finishes, backing off from 1s to 5s
func (j *backupJob) Wait(ctx context.Context, timeout time.Duration) error {
	if status := j.Status(); status.Finished() {
		return j.result(status)
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	j.cancelMu.Lock()
	j.cancelFunc = cancel
	j.cancelMu.Unlock()

	const (
		initialInterval = 1 * time.Second
		maxInterval     = 5 * time.Second
		backoffFactor   = 1.5
	)

	currentInterval := initialInterval
	ticker := time.NewTicker(currentInterval)
	defer ticker.Stop()

	for {
		select {
		case <-waitCtx.Done():
			if j.cancelled.Load() {
				j.finish(BackupStatusCancelled)
				return errors.New("backup job was cancelled")
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			j.finish(BackupStatusTimeout)
			return ErrBackupTimeout

		case <-ticker.C:
			done, err := j.checkStatus(waitCtx)
			if err != nil {
				if waitCtx.Err() != nil {
					continue
				}
				j.setError(err)
				if errors.Is(err, ErrBackupFailed) || !IsRetryable(err) {
					j.finish(BackupStatusFailed)
					return err
				}
				continue
			}

			if done {
				return nil
			}

			if atomic.LoadInt32(&j.checkCount)%3 == 0 && currentInterval < maxInterval {
				currentInterval = time.Duration(float64(currentInterval) * backoffFactor)
				if currentInterval > maxInterval {
					currentInterval = maxInterval
				}
				ticker.Reset(currentInterval)
			}
		}
	}
}

// IsComplete checks the job once
func (j *backupJob) IsComplete(ctx context.Context) (bool, error) {
	status := j.Status()

	switch status {
	case BackupStatusCompleted:
		return true, nil
	case BackupStatusFailed, BackupStatusCancelled, BackupStatusTimeout:
		return false, j.result(status)
	case BackupStatusPending, BackupStatusInProgress:
		return j.checkStatus(ctx)
	default:
		return false, fmt.Errorf("unknown status: %s", status)
	}
}

// Cancel stops waiting on the job. The server-side job keeps running.
func (j *backupJob) Cancel(ctx context.Context) error {
	j.cancelled.Store(true)

	j.cancelMu.Lock()
	if j.cancelFunc != nil {
		j.cancelFunc()
	}
	j.cancelMu.Unlock()

	j.finish(BackupStatusCancelled)
	return nil
}

// GetMetrics returns job metrics
func (j *backupJob) GetMetrics() BackupJobMetrics {
	endTime := j.endTime.Load()
	duration := time.Since(j.startTime)
	if endTime != nil {
		duration = endTime.Sub(j.startTime)
	}

	var lastCheck time.Time
	if t := j.lastCheck.Load(); t != nil {
		lastCheck = *t
	}

	var backupID *int
	if id := j.backupID.Load(); id > 0 {
		v := int(id)
		backupID = &v
	}

	return BackupJobMetrics{
		ID:         j.id,
		Kind:       string(j.Kind()),
		Status:     string(j.Status()),
		BackupID:   backupID,
		StartTime:  j.startTime,
		EndTime:    endTime,
		Duration:   duration,
		CheckCount: int(atomic.LoadInt32(&j.checkCount)),
		LastCheck:  lastCheck,
		LastError:  j.getError(),
	}
}

// checkStatus fetches the job from the API and reports whether it finished
// successfully. A server-side failure is returned as ErrBackupFailed.
func (j *backupJob) checkStatus(ctx context.Context) (bool, error) {
	now := time.Now()
	j.lastCheck.Store(&now)
	atomic.AddInt32(&j.checkCount, 1)

	var resp jobResponse
	path := "/backups/jobs/" + j.id
	err := j.client.do(ctx, &transport.Request{Method: http.MethodGet, Path: path}, &resp)
	if err != nil {
		return false, errors.Wrap(err, "failed to check backup status")
	}

	j.observe(&resp)
	status := j.Status()
	if status == BackupStatusFailed {
		return false, j.getError()
	}
	return status == BackupStatusCompleted, nil
}

// observe records what the server reported about the job
func (j *backupJob) observe(resp *jobResponse) {
	if resp.BackupID != nil {
		j.backupID.Store(int64(*resp.BackupID))
	}
	if j.Kind() == BackupKindUnknown {
		switch kind := BackupKind(strings.ToLower(resp.Kind)); kind {
		case BackupKindBackup, BackupKindRestore:
			j.kind.Store(kind)
		}
	}

	switch strings.ToLower(resp.Status) {
	case "completed", "success", "done":
		j.finish(BackupStatusCompleted)
		// Anything that may have been a restore replaced every ledger.
		if j.Kind() == BackupKindBackup {
			j.client.InvalidateCache("/backups/list")
		} else {
			j.client.InvalidateCache()
		}
	case "failed", "error":
		msg := resp.Error
		if msg == "" {
			msg = resp.Message
		}
		if msg == "" {
			j.setError(ErrBackupFailed)
		} else {
			j.setError(errors.Wrap(ErrBackupFailed, msg))
		}
		j.finish(BackupStatusFailed)
	case "in_progress", "running", "started":
		j.status.Store(BackupStatusInProgress)
	}
}

// finish stores a terminal status once
func (j *backupJob) finish(status BackupStatus) {
	if j.Status().Finished() {
		return
	}
	j.status.Store(status)
	now := time.Now()
	j.endTime.Store(&now)
}

// result is the error Wait reports for a finished job
func (j *backupJob) result(status BackupStatus) error {
	switch status {
	case BackupStatusCompleted:
		return nil
	case BackupStatusTimeout:
		return ErrBackupTimeout
	case BackupStatusCancelled:
		return errors.New("backup job was cancelled")
	}
	if err := j.getError(); err != nil {
		return err
	}
	return ErrBackupFailed
}

func (j *backupJob) setError(err error) {
	j.errorLock.Lock()
	defer j.errorLock.Unlock()
	j.lastError = err
}

func (j *backupJob) getError() error {
	j.errorLock.RLock()
	defer j.errorLock.RUnlock()
	return j.lastError
}

// BackupJobMetrics contains metrics about a backup job
type BackupJobMetrics struct {
	ID         string        `json:"id"`
	Kind       string        `json:"kind"`
	Status     string        `json:"status"`
	BackupID   *int          `json:"backupId,omitempty"`
	StartTime  time.Time     `json:"startTime"`
	EndTime    *time.Time    `json:"endTime,omitempty"`
	Duration   time.Duration `json:"duration"`
	CheckCount int           `json:"checkCount"`
	LastCheck  time.Time     `json:"lastCheck"`
	LastError  error         `json:"-"`
}

// BackupJobManager tracks backup and restore jobs
type BackupJobManager struct {
	jobs map[string]*backupJob
	mu   sync.RWMutex
}

// NewBackupJobManager creates a new backup job manager
func NewBackupJobManager() *BackupJobManager {
	return &BackupJobManager{
		jobs: make(map[string]*backupJob),
	}
}

// AddJob adds a job to the manager
func (m *BackupJobManager) AddJob(job *backupJob) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID()] = job
}

// GetJob retrieves a job by ID
func (m *BackupJobManager) GetJob(id string) (*backupJob, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, exists := m.jobs[id]
	return job, exists
}

// ListJobs lists all jobs
func (m *BackupJobManager) ListJobs() []*backupJob {
	m.mu.RLock()
	defer m.mu.RUnlock()

	jobs := make([]*backupJob, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, job)
	}
	return jobs
}

// CleanupCompleted removes finished jobs older than the specified duration
func (m *BackupJobManager) CleanupCompleted(olderThan time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	removed := 0

	for id, job := range m.jobs {
		endTime := job.endTime.Load()
		if job.Status().Finished() && endTime != nil && now.Sub(*endTime) > olderThan {
			delete(m.jobs, id)
			removed++
		}
	}

	return removed
}
