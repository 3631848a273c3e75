package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/sbobine/sbobine-api/internal/client"
	"github.com/sbobine/sbobine-api/internal/domain/model"
)

type processOptions struct {
	Server   serverFlags
	File     string
	Language string
	UserID   string
	Watch    bool
	Interval time.Duration
	Attempts int
	Query    string
}

func parseProcessFlags(cmdCtx *commandContext, args []string) (processOptions, error) {
	fs := newFlagSet("process", cmdCtx)
	var opts processOptions
	opts.Server.register(fs)
	fs.StringVar(&opts.File, "file", "", "Audio file to upload (required)")
	fs.StringVar(&opts.Language, "language", "it", "Lecture language")
	fs.StringVar(&opts.UserID, "user", "", "Caller id sent as userId (required)")
	fs.BoolVar(&opts.Watch, "watch", false, "Follow the job over WebSocket instead of polling")
	fs.DurationVar(&opts.Interval, "interval", client.DefaultPollInterval, "Polling interval")
	fs.IntVar(&opts.Attempts, "attempts", client.DefaultPollAttempts, "Maximum polling attempts")
	fs.StringVar(&opts.Query, "query", "", "JMESPath expression applied to the final record")

	if err := fs.Parse(args); err != nil {
		return processOptions{}, err
	}
	opts.File = strings.TrimSpace(opts.File)
	opts.UserID = strings.TrimSpace(opts.UserID)
	if opts.File == "" {
		return processOptions{}, errors.New("--file is required")
	}
	if opts.UserID == "" {
		return processOptions{}, errors.New("--user is required")
	}
	return opts, nil
}

func runProcess(cmdCtx *commandContext, args []string) error {
	opts, err := parseProcessFlags(cmdCtx, args)
	if err != nil {
		return err
	}

	f, err := os.Open(opts.File)
	if err != nil {
		return fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	c := opts.Server.client()
	accepted, err := c.ProcessAudio(cmdCtx.Ctx, audioFromFile(opts.File, f), opts.Language, opts.UserID)
	if err != nil {
		return err
	}
	if err := writef(cmdCtx.Err, "job %s accepted, estimated %d min\n", accepted.JobID, accepted.EstimatedTime); err != nil {
		return err
	}

	onUpdate := progressPrinter(cmdCtx.Err)
	var rec *model.JobRecord
	if opts.Watch {
		rec, err = c.WatchJob(cmdCtx.Ctx, accepted.JobID, onUpdate)
	} else {
		rec, err = c.PollJob(cmdCtx.Ctx, accepted.JobID, client.PollOptions{
			MaxAttempts: opts.Attempts,
			Interval:    opts.Interval,
			OnUpdate:    onUpdate,
		})
	}
	if err != nil {
		return err
	}
	return printRecord(cmdCtx.Out, rec, opts.Query)
}

type statusOptions struct {
	Server serverFlags
	JobID  string
	Query  string
}

func parseStatusFlags(cmdCtx *commandContext, name string, args []string) (statusOptions, error) {
	fs := newFlagSet(name, cmdCtx)
	var opts statusOptions
	opts.Server.register(fs)
	fs.StringVar(&opts.JobID, "job", "", "Job id (required)")
	fs.StringVar(&opts.Query, "query", "", "JMESPath expression applied to the record, e.g. result.quiz.questions[].question")

	if err := fs.Parse(args); err != nil {
		return statusOptions{}, err
	}
	opts.JobID = strings.TrimSpace(opts.JobID)
	if opts.JobID == "" && fs.NArg() > 0 {
		opts.JobID = strings.TrimSpace(fs.Arg(0))
	}
	if opts.JobID == "" {
		return statusOptions{}, errors.New("--job is required")
	}
	if err := validateQuery(opts.Query); err != nil {
		return statusOptions{}, err
	}
	return opts, nil
}

func runStatus(cmdCtx *commandContext, args []string) error {
	opts, err := parseStatusFlags(cmdCtx, "status", args)
	if err != nil {
		return err
	}
	rec, err := opts.Server.client().GetJob(cmdCtx.Ctx, opts.JobID)
	if err != nil {
		return err
	}
	return printRecord(cmdCtx.Out, rec, opts.Query)
}

func runWatch(cmdCtx *commandContext, args []string) error {
	opts, err := parseStatusFlags(cmdCtx, "watch", args)
	if err != nil {
		return err
	}
	rec, err := opts.Server.client().WatchJob(cmdCtx.Ctx, opts.JobID, progressPrinter(cmdCtx.Err))
	if err != nil {
		return err
	}
	return printRecord(cmdCtx.Out, rec, opts.Query)
}

func progressPrinter(w io.Writer) func(*model.JobRecord) {
	return func(rec *model.JobRecord) {
		_ = writef(w, "%-16s %3d%%\n", rec.Status, rec.Progress)
	}
}

func audioFromFile(path string, r io.Reader) client.Audio {
	return client.Audio{
		FileName: filepath.Base(path),
		MIMEType: mime.TypeByExtension(strings.ToLower(filepath.Ext(path))),
		Data:     r,
	}
}

func validateQuery(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	if _, err := jmespath.Compile(expr); err != nil {
		return fmt.Errorf("invalid --query: %w", err)
	}
	return nil
}

// applyQuery evaluates expr against the JSON form of v. An empty expression returns v unchanged.
func applyQuery(v any, expr string) (any, error) {
	if strings.TrimSpace(expr) == "" {
		return v, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal for query: %w", err)
	}
	var generic any
	if err := json.Unmarshal(b, &generic); err != nil {
		return nil, fmt.Errorf("decode for query: %w", err)
	}
	out, err := jmespath.Search(expr, generic)
	if err != nil {
		return nil, fmt.Errorf("evaluate query: %w", err)
	}
	return out, nil
}

func printRecord(w io.Writer, v any, query string) error {
	out, err := applyQuery(v, query)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}
