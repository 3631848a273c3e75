package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sbobine/sbobine-api/internal/core"
	"github.com/sbobine/sbobine-api/internal/domain/model"
	apperrors "github.com/sbobine/sbobine-api/internal/errors"
	"github.com/sbobine/sbobine-api/internal/gateway"
	obserrors "github.com/sbobine/sbobine-api/internal/observability/errors"
	"github.com/sbobine/sbobine-api/internal/observability/metrics"
	"github.com/sbobine/sbobine-api/internal/observability/notify"
)

const (
	// DefaultLanguage is used when a submission does not name one.
	DefaultLanguage = "it"

	// SubmitMessage is returned to the caller after a job is accepted.
	SubmitMessage = "Elaborazione avviata. Controlla lo stato del job."

	// MsgAudioMissing, MsgUserMissing and MsgJobNotFound are the user-facing validation messages.
	MsgAudioMissing = "File audio non trovato"
	MsgUserMissing  = "ID utente richiesto"
	MsgJobNotFound  = "Job non trovato"
	msgServerBusy   = "Servizio occupato, riprova tra qualche minuto."

	defaultStageTimeout  = 5 * time.Minute
	defaultJobTimeout    = 30 * time.Minute
	terminalWriteTimeout = 10 * time.Second
	notifyTimeout        = 30 * time.Second

	bytesPerMiB = 1024 * 1024
)

// Failure causes recorded when a job never reaches a worker.
const (
	causeServerBusy     = "server busy"
	causeShuttingDown   = "server shutting down"
	causeJobTimeout     = "timeout"
	stageNameSubmission = "submission"
)

// TaskSubmitter accepts work without blocking. *WorkerPool implements it.
type TaskSubmitter interface {
	TrySubmit(task Task) error
}

// FailureNotifier receives terminal job failures.
type FailureNotifier interface {
	NotifyJobFailure(ctx context.Context, payload notify.JobFailurePayload)
}

// PipelineServiceOptions groups dependencies for PipelineService.
type PipelineServiceOptions struct {
	Store    core.JobStore   // Required: job record storage
	Gateway  core.Gateway    // Required: artifact producer
	Pool     TaskSubmitter   // Required: background executor
	Notifier FailureNotifier // Optional: failure fan-out
	Logger   *slog.Logger
	Metrics  metrics.Sink

	StageTimeout time.Duration
	JobTimeout   time.Duration
	Now          func() time.Time
}

// SubmitRequest is a validated-on-entry audio submission.
type SubmitRequest struct {
	Audio    []byte
	FileName string
	MIMEType string
	Size     int64
	Language string
	UserID   string
}

// SubmitResult is returned once the job is accepted.
type SubmitResult struct {
	JobID         string          `json:"jobId"`
	Status        model.JobStatus `json:"status"`
	Message       string          `json:"message"`
	EstimatedTime int             `json:"estimatedTime"`
}

// Job is an accepted submission travelling from Submit to Run.
type Job struct {
	Record *model.JobRecord
	Input  model.AudioInput
	UserID string
}

// PipelineService accepts audio submissions and drives each job through the
// transcription and study-material stages.
type PipelineService struct {
	store        core.JobStore
	gateway      core.Gateway
	pool         TaskSubmitter
	notifier     FailureNotifier
	logger       *slog.Logger
	metrics      metrics.Sink
	stageTimeout time.Duration
	jobTimeout   time.Duration
	now          func() time.Time
}

// NewPipelineService constructs a PipelineService.
func NewPipelineService(opts PipelineServiceOptions) (*PipelineService, error) {
	if opts.Store == nil {
		return nil, errors.New("JobStore is required")
	}
	if opts.Gateway == nil {
		return nil, errors.New("Gateway is required")
	}
	if opts.Pool == nil {
		return nil, errors.New("TaskSubmitter is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	stageTimeout := opts.StageTimeout
	if stageTimeout <= 0 {
		stageTimeout = defaultStageTimeout
	}
	jobTimeout := opts.JobTimeout
	if jobTimeout <= 0 {
		jobTimeout = defaultJobTimeout
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &PipelineService{
		store:        opts.Store,
		gateway:      opts.Gateway,
		pool:         opts.Pool,
		notifier:     opts.Notifier,
		logger:       logger.With("component", "pipeline"),
		metrics:      metrics.OrNoop(opts.Metrics),
		stageTimeout: stageTimeout,
		jobTimeout:   jobTimeout,
		now:          now,
	}, nil
}

// Submit validates the request, stores the PROCESSING record and hands the job to the pool.
func (s *PipelineService) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if len(req.Audio) == 0 {
		return nil, apperrors.ValidationField("audio", MsgAudioMissing)
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, apperrors.ValidationField("userId", MsgUserMissing)
	}
	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = DefaultLanguage
	}
	size := req.Size
	if size <= 0 {
		size = int64(len(req.Audio))
	}

	rec := model.NewJobRecord(s.now())
	if err := s.store.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	job := Job{
		Record: rec,
		Input: model.AudioInput{
			Data:     req.Audio,
			FileName: req.FileName,
			MIMEType: req.MIMEType,
			Size:     size,
			Language: language,
		},
		UserID: userID,
	}
	err := s.pool.TrySubmit(Task{
		ID:   rec.JobID,
		Run:  func(ctx context.Context) { s.Run(ctx, job) },
		Drop: func(ctx context.Context) { s.Drop(ctx, job) },
	})
	if err != nil {
		cause := causeServerBusy
		if errors.Is(err, ErrPoolClosed) {
			cause = causeShuttingDown
		}
		s.terminate(ctx, job, rec.Fail(cause, s.now()), stageNameSubmission, err)
		metrics.EmitJobLifecycle(s.metrics, metrics.JobMetric{
			Transition: metrics.TransitionSubmitted,
			Result:     metrics.ResultRejected,
			Err:        err,
		})
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, msgServerBusy)
	}

	metrics.EmitJobLifecycle(s.metrics, metrics.JobMetric{
		Transition: metrics.TransitionSubmitted,
		Result:     metrics.ResultSuccess,
	})
	s.logger.InfoContext(ctx, "job submitted",
		"job_id", rec.JobID,
		"user_id", userID,
		"file_name", req.FileName,
		"size", size,
		"language", language,
	)

	return &SubmitResult{
		JobID:         rec.JobID,
		Status:        rec.Status,
		Message:       SubmitMessage,
		EstimatedTime: EstimateMinutes(size),
	}, nil
}

// Get returns the current record of a job.
func (s *PipelineService) Get(ctx context.Context, jobID string) (*model.JobRecord, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, apperrors.NotFound(MsgJobNotFound)
	}
	rec, err := s.store.Get(ctx, jobID)
	if errors.Is(err, model.ErrJobNotFound) {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeNotFound, MsgJobNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", jobID, err)
	}
	return rec, nil
}

// EstimateMinutes returns the processing time estimate: two minutes per MiB, rounded.
func EstimateMinutes(size int64) int {
	return int(math.Round(float64(size) / bytesPerMiB * 2))
}

type stage struct {
	name   string
	status model.JobStatus
	run    func(ctx context.Context, st *runState) error
}

type runState struct {
	job           Job
	transcription *model.Transcription
	summary       *model.Summary
	elaboration   *model.Elaboration
	conceptMap    *model.ConceptMap
	quiz          *model.Quiz
}

func (s *PipelineService) stages() []stage {
	return []stage{
		{name: "transcription", status: model.JobStatusTranscribing, run: func(ctx context.Context, st *runState) (err error) {
			st.transcription, err = s.gateway.Transcribe(ctx, st.job.Input)
			return err
		}},
		{name: "summary", status: model.JobStatusSummarizing, run: func(ctx context.Context, st *runState) (err error) {
			st.summary, err = s.gateway.Summarize(ctx, st.transcription.CleanText, st.job.Input.Language)
			return err
		}},
		{name: "elaboration", status: model.JobStatusElaborating, run: func(ctx context.Context, st *runState) (err error) {
			st.elaboration, err = s.gateway.Elaborate(ctx, st.transcription.CleanText, st.job.Input.Language)
			return err
		}},
		{name: "concept map", status: model.JobStatusGeneratingMap, run: func(ctx context.Context, st *runState) (err error) {
			st.conceptMap, err = s.gateway.ConceptMap(ctx, st.transcription.CleanText, st.job.Input.Language)
			return err
		}},
		{name: "quiz", status: model.JobStatusGeneratingQuiz, run: func(ctx context.Context, st *runState) (err error) {
			st.quiz, err = s.gateway.Quiz(ctx, st.transcription.CleanText, st.job.Input.Language)
			return err
		}},
	}
}

// Run executes every stage of job in order and writes exactly one terminal record.
func (s *PipelineService) Run(ctx context.Context, job Job) {
	start := s.now()
	ctx, cancel := context.WithTimeout(ctx, s.jobTimeout)
	defer cancel()

	rec := job.Record
	current := "pipeline"
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "pipeline panicked",
				"job_id", rec.JobID,
				"stage", current,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			err := fmt.Errorf("panic: %v", r)
			s.terminate(ctx, job, rec.Fail(current+" failed: internal error", s.now()), current, err)
		}
	}()

	st := &runState{job: job}
	for _, stg := range s.stages() {
		current = stg.name
		rec = rec.Advance(stg.status, s.now())
		if err := s.store.Put(ctx, rec); err != nil {
			s.failStage(ctx, job, rec, stg.name, fmt.Errorf("store update: %w", err))
			return
		}

		stageStart := s.now()
		stageCtx, stageCancel := context.WithTimeout(ctx, s.stageTimeout)
		err := stg.run(stageCtx, st)
		stageCancel()
		if err == nil && !st.produced(stg.status) {
			err = errors.New("empty artifact")
		}

		result := metrics.ResultSuccess
		if err != nil {
			result = metrics.ResultError
		}
		metrics.EmitStage(s.metrics, metrics.StageMetric{
			Stage:    stg.name,
			Result:   result,
			Duration: s.now().Sub(stageStart),
			Err:      err,
		})
		if err != nil {
			s.failStage(ctx, job, rec, stg.name, err)
			return
		}
		s.logger.DebugContext(ctx, "stage completed", "job_id", rec.JobID, "stage", stg.name)
	}

	final := rec.Complete(st.result(s.now()), s.now())
	if err := s.putTerminal(ctx, final); err != nil {
		s.logger.ErrorContext(ctx, "failed to store completed job", "job_id", rec.JobID, "error", err)
		s.failStage(ctx, job, rec, "completion", fmt.Errorf("store update: %w", err))
		return
	}

	elapsed := s.now().Sub(start)
	metrics.EmitJobLifecycle(s.metrics, metrics.JobMetric{
		Transition: metrics.TransitionCompleted,
		Result:     metrics.ResultSuccess,
		Duration:   elapsed,
	})
	s.logger.InfoContext(ctx, "job completed", "job_id", rec.JobID, "duration", elapsed)
}

// Drop terminates a job that never reached a worker because the pool shut down.
func (s *PipelineService) Drop(ctx context.Context, job Job) {
	s.terminate(ctx, job, job.Record.Fail(causeShuttingDown, s.now()), stageNameSubmission, context.Canceled)
	metrics.EmitJobLifecycle(s.metrics, metrics.JobMetric{
		Transition: metrics.TransitionDropped,
		Result:     metrics.ResultError,
		Err:        context.Canceled,
	})
}

func (s *PipelineService) failStage(ctx context.Context, job Job, rec *model.JobRecord, stageName string, err error) {
	message := fmt.Sprintf("%s failed: %s", stageName, describeCause(err))
	s.terminate(ctx, job, rec.Fail(message, s.now()), stageName, err)
	metrics.EmitJobLifecycle(s.metrics, metrics.JobMetric{
		Transition: metrics.TransitionFailed,
		Result:     metrics.ResultError,
		Duration:   s.now().Sub(job.Record.CreatedAt),
		Err:        err,
	})
}

// terminate writes an ERROR record and notifies sinks. Writes survive ctx cancellation.
func (s *PipelineService) terminate(ctx context.Context, job Job, failed *model.JobRecord, stageName string, cause error) {
	if err := s.putTerminal(ctx, failed); err != nil {
		s.logger.ErrorContext(ctx, "failed to store job failure",
			"job_id", failed.JobID,
			"stage", stageName,
			"error", err,
		)
	}
	s.logger.WarnContext(ctx, "job failed",
		"job_id", failed.JobID,
		"stage", stageName,
		"progress", failed.Progress,
		"error", cause,
	)

	if s.notifier == nil {
		return
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	s.notifier.NotifyJobFailure(nctx, notify.JobFailurePayload{
		JobID:      failed.JobID,
		UserID:     job.UserID,
		FileName:   job.Input.FileName,
		Stage:      stageName,
		Error:      failed.Error,
		ErrorClass: obserrors.Classify(cause),
		OccurredAt: failed.UpdatedAt,
		Metadata: map[string]string{
			"progress": fmt.Sprint(failed.Progress),
			"language": job.Input.Language,
		},
	})
}

func (s *PipelineService) putTerminal(ctx context.Context, rec *model.JobRecord) error {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), terminalWriteTimeout)
	defer cancel()
	return s.store.Put(wctx, rec)
}

func describeCause(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return causeJobTimeout
	case errors.Is(err, context.Canceled):
		return causeShuttingDown
	}
	if ue, ok := gateway.AsUpstream(err); ok {
		if msg := ue.Kind.PublicMessage(); msg != "" {
			return msg
		}
	}
	return err.Error()
}

func (st *runState) produced(status model.JobStatus) bool {
	switch status {
	case model.JobStatusTranscribing:
		return st.transcription != nil
	case model.JobStatusSummarizing:
		return st.summary != nil
	case model.JobStatusElaborating:
		return st.elaboration != nil
	case model.JobStatusGeneratingMap:
		return st.conceptMap != nil
	case model.JobStatusGeneratingQuiz:
		return st.quiz != nil
	default:
		return true
	}
}

func (st *runState) result(completedAt time.Time) *model.JobResult {
	return &model.JobResult{
		JobID:  st.job.Record.JobID,
		UserID: st.job.UserID,
		AudioFile: model.AudioFile{
			ID:       uuid.NewString(),
			FileName: st.job.Input.FileName,
			FileSize: st.job.Input.Size,
			Duration: st.transcription.Duration,
			Language: st.job.Input.Language,
			Status:   model.AudioFileStatusReady,
		},
		Transcription: st.transcription,
		Summary:       st.summary,
		Elaboration:   st.elaboration,
		ConceptMap:    st.conceptMap,
		Quiz:          st.quiz,
		CompletedAt:   completedAt.UTC(),
	}
}
