package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

type textOptions struct {
	Server   serverFlags
	File     string
	Language string
	Query    string
}

func parseTextFlags(cmdCtx *commandContext, name string, args []string) (textOptions, error) {
	fs := newFlagSet(name, cmdCtx)
	var opts textOptions
	opts.Server.register(fs)
	fs.StringVar(&opts.File, "file", "-", "Transcript text file, - for stdin")
	fs.StringVar(&opts.Language, "language", "it", "Output language")
	fs.StringVar(&opts.Query, "query", "", "JMESPath expression applied to the artifact")

	if err := fs.Parse(args); err != nil {
		return textOptions{}, err
	}
	if err := validateQuery(opts.Query); err != nil {
		return textOptions{}, err
	}
	return opts, nil
}

func readText(path string, stdin io.Reader) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "" || path == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}
	text := strings.TrimSpace(string(b))
	if text == "" {
		return "", errors.New("transcript is empty")
	}
	return text, nil
}

// textCommand builds the handler of a text-to-artifact endpoint.
func textCommand(name string) commandFn {
	return func(cmdCtx *commandContext, args []string) error {
		opts, err := parseTextFlags(cmdCtx, name, args)
		if err != nil {
			return err
		}
		text, err := readText(opts.File, os.Stdin)
		if err != nil {
			return err
		}

		c := opts.Server.client()
		var artifact any
		switch name {
		case "summarize":
			artifact, err = c.Summarize(cmdCtx.Ctx, text, opts.Language)
		case "elaborate":
			artifact, err = c.Elaborate(cmdCtx.Ctx, text, opts.Language)
		case "concept-map":
			artifact, err = c.ConceptMap(cmdCtx.Ctx, text, opts.Language)
		case "quiz":
			artifact, err = c.Quiz(cmdCtx.Ctx, text, opts.Language)
		default:
			return fmt.Errorf("unknown artifact command %q", name)
		}
		if err != nil {
			return err
		}
		return printRecord(cmdCtx.Out, artifact, opts.Query)
	}
}

func runTranscribe(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet("transcribe", cmdCtx)
	var server serverFlags
	server.register(fs)
	file := fs.String("file", "", "Audio file (required)")
	language := fs.String("language", "it", "Lecture language")
	query := fs.String("query", "", "JMESPath expression applied to the transcription")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*file) == "" {
		return errors.New("--file is required")
	}
	if err := validateQuery(*query); err != nil {
		return err
	}

	f, err := os.Open(*file)
	if err != nil {
		return fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	tr, err := server.client().Transcribe(cmdCtx.Ctx, audioFromFile(*file, f), *language)
	if err != nil {
		return err
	}
	return printRecord(cmdCtx.Out, tr, *query)
}
