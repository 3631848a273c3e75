package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/sbobine/sbobine-api/config"
	"github.com/sbobine/sbobine-api/internal/bootstrap"
	"github.com/sbobine/sbobine-api/internal/client"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Out    io.Writer
	Err    io.Writer
}

const (
	defaultServerURL      = "http://localhost:8080"
	serverURLEnv          = "SBOBINE_API_URL"
	defaultRequestTimeout = 10 * time.Minute
)

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stderr); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmdCtx := &commandContext{
		Ctx:    ctx,
		Logger: logger,
		Config: cfg,
		Out:    os.Stdout,
		Err:    os.Stderr,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		stop()
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"process": {
			name:        "process",
			description: "Upload an audio file, then follow the job until it finishes",
			run:         runProcess,
		},
		"status": {
			name:        "status",
			description: "Print a job record, optionally projected with a JMESPath query",
			run:         runStatus,
		},
		"watch": {
			name:        "watch",
			description: "Follow a job over the WebSocket stream",
			run:         runWatch,
		},
		"transcribe": {
			name:        "transcribe",
			description: "Transcribe an audio file synchronously",
			run:         runTranscribe,
		},
		"summarize": {
			name:        "summarize",
			description: "Summarize a transcript file",
			run:         textCommand("summarize"),
		},
		"elaborate": {
			name:        "elaborate",
			description: "Rewrite a transcript file into study notes",
			run:         textCommand("elaborate"),
		},
		"concept-map": {
			name:        "concept-map",
			description: "Build a concept map from a transcript file",
			run:         textCommand("concept-map"),
		},
		"quiz": {
			name:        "quiz",
			description: "Generate a quiz from a transcript file",
			run:         textCommand("quiz"),
		},
		"migrate": {
			name:        "migrate",
			description: "Apply the job store schema (postgres and mysql backends)",
			run:         runMigrations,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: sbobine-cli <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-14s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

// serverFlags are shared by every command that talks to the API.
type serverFlags struct {
	URL     string
	Timeout time.Duration
}

func (s *serverFlags) register(fs *flag.FlagSet) {
	def := strings.TrimSpace(os.Getenv(serverURLEnv))
	if def == "" {
		def = defaultServerURL
	}
	fs.StringVar(&s.URL, "server", def, "API base URL (env "+serverURLEnv+")")
	fs.DurationVar(&s.Timeout, "timeout", defaultRequestTimeout, "Per-request HTTP timeout")
}

func (s serverFlags) client() *client.Client {
	c := client.New(s.URL)
	c.HTTPClient.Timeout = s.Timeout
	return c
}

func newFlagSet(name string, cmdCtx *commandContext) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cmdCtx.Err)
	return fs
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
