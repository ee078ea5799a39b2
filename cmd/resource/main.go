package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/tendant/simple-resource/pkg/simpleresource"
	"github.com/tendant/simple-resource/pkg/simpleresource/config"
	"github.com/tendant/simple-resource/pkg/simpleresource/scan"
)

const usage = `Simple Resource CLI

Manage plain, CSV and JSON resources directly against a storage backend.

USAGE:
  resource <command> <family> [name] [options]

COMMANDS:
  list     <family>          List resource names
  get      <family> <name>   Print the decoded content
  create   <family> <name>   Store a new resource
  update   <family> <name>   Replace an existing resource
  delete   <family> <name>   Delete a resource
  verify   <family>          Read every resource and report the ones that fail to decode

FAMILIES:
  plain, csv, json

ENVIRONMENT VARIABLES:
  STORAGE_URL       Storage backend (default: file://./storage/app)
  PG_SCHEMA         PostgreSQL schema for postgres:// storage (default: public)
  S3_*              S3 credentials and options for s3:// storage

  Configuration can be loaded from a .env file in the current directory.
  Command line environment variables override .env file values.

EXAMPLES:
  resource list csv
  resource create csv people.csv --content="name,age
alice,30"
  resource create json doc.json --file=./doc.json
  resource get csv people.csv --json
  STORAGE_URL=s3://bucket/app resource verify json

OPTIONS:
  --content=<text>   Content for create/update
  --file=<path>      Read content for create/update from a file ("-" for stdin)
  --json             Output as JSON
`

func main() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	command := os.Args[1]

	// Check for help
	if command == "help" || command == "--help" || command == "-h" {
		fmt.Println(usage)
		os.Exit(0)
	}

	cfg, err := config.Load(config.WithEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelWarn}))

	ctx := context.Background()
	svc, cleanup, err := cfg.BuildService(ctx, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create service: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	cli := &CLI{svc: svc, out: os.Stdout, in: os.Stdin, logger: logger}
	if err := cli.Run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cleanup()
		os.Exit(exitCode(err))
	}
}

// CLI executes one command against a service
type CLI struct {
	svc    simpleresource.Service
	out    io.Writer
	in     io.Reader
	logger *slog.Logger
}

type options struct {
	content    string
	hasContent bool
	file       string
	useJSON    bool
}

// Run executes args (command, family, optional name, flags)
func (c *CLI) Run(ctx context.Context, args []string) error {
	positional, opts := parseArgs(args)
	if len(positional) < 2 {
		return fmt.Errorf("usage: resource <command> <family> [name]")
	}

	command := positional[0]
	family, err := simpleresource.ParseFamily(positional[1])
	if err != nil {
		return err
	}

	name := ""
	if len(positional) > 2 {
		name = positional[2]
	}

	switch command {
	case "list":
		return c.handleList(ctx, family, opts)
	case "get":
		return c.handleGet(ctx, family, name, opts)
	case "create", "update":
		return c.handleWrite(ctx, command, family, name, opts)
	case "delete":
		result, err := c.svc.Delete(ctx, family, name)
		if err != nil {
			return err
		}
		return c.printMessage(result, opts)
	case "verify":
		return c.handleVerify(ctx, family, opts)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func parseArgs(args []string) ([]string, options) {
	var positional []string
	var opts options

	for _, arg := range args {
		if !strings.HasPrefix(arg, "--") {
			positional = append(positional, arg)
			continue
		}

		key, value := parseFlag(arg)
		switch key {
		case "json":
			opts.useJSON = true
		case "content":
			opts.content = value
			opts.hasContent = true
		case "file":
			opts.file = value
		}
	}

	return positional, opts
}

func parseFlag(arg string) (string, string) {
	arg = strings.TrimPrefix(arg, "--")
	if key, value, ok := strings.Cut(arg, "="); ok {
		return key, value
	}
	return arg, "true"
}

func (c *CLI) readContent(opts options) (string, error) {
	switch {
	case opts.hasContent:
		return opts.content, nil
	case opts.file == "-":
		data, err := io.ReadAll(c.in)
		return string(data), err
	case opts.file != "":
		data, err := os.ReadFile(opts.file)
		return string(data), err
	}
	return "", nil
}

func (c *CLI) handleList(ctx context.Context, family simpleresource.Family, opts options) error {
	result, err := c.svc.List(ctx, family)
	if err != nil {
		return err
	}
	names, _ := result.Content.([]string)

	if opts.useJSON {
		return c.printJSON(names)
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "NAME\tFAMILY\n")
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%s\n", name, family)
	}
	w.Flush()

	fmt.Fprintf(c.out, "\nTotal: %d\n", len(names))
	return nil
}

func (c *CLI) handleGet(ctx context.Context, family simpleresource.Family, name string, opts options) error {
	result, err := c.svc.Read(ctx, family, name)
	if err != nil {
		return err
	}

	if text, ok := result.Content.(string); ok && !opts.useJSON {
		fmt.Fprint(c.out, text)
		if !strings.HasSuffix(text, "\n") {
			fmt.Fprintln(c.out)
		}
		return nil
	}
	return c.printJSON(result.Content)
}

func (c *CLI) handleWrite(ctx context.Context, command string, family simpleresource.Family, name string, opts options) error {
	content, err := c.readContent(opts)
	if err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}

	req := simpleresource.WriteRequest{Name: name, Content: content}
	var result *simpleresource.Result
	if command == "create" {
		result, err = c.svc.Create(ctx, family, req)
	} else {
		result, err = c.svc.Update(ctx, family, req)
	}
	if err != nil {
		return err
	}
	return c.printMessage(result, opts)
}

func (c *CLI) handleVerify(ctx context.Context, family simpleresource.Family, opts options) error {
	result, err := scan.New(c.svc, c.logger).Verify(ctx, family)
	if err != nil {
		return err
	}

	if opts.useJSON {
		return c.printJSON(result)
	}

	fmt.Fprintf(c.out, "=== Verify %s ===\n", family)
	fmt.Fprintf(c.out, "Found:     %d\n", result.TotalFound)
	fmt.Fprintf(c.out, "Valid:     %d\n", result.TotalProcessed)
	fmt.Fprintf(c.out, "Invalid:   %d\n", result.TotalFailed)
	for _, f := range result.Failures {
		fmt.Fprintf(c.out, "  %-30s %s\n", truncate(f.Name, 30), f.Message)
	}
	return nil
}

func (c *CLI) printMessage(result *simpleresource.Result, opts options) error {
	if opts.useJSON {
		return c.printJSON(map[string]string{"message": result.Message})
	}
	fmt.Fprintln(c.out, result.Message)
	return nil
}

func (c *CLI) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, string(data))
	return nil
}

// exitCode maps an error onto a distinct process exit status per status kind
func exitCode(err error) int {
	switch simpleresource.StatusOf(err) {
	case simpleresource.StatusConflict:
		return 3
	case simpleresource.StatusNotFound:
		return 4
	case simpleresource.StatusUnsupportedContent:
		return 5
	case simpleresource.StatusValidationFailed:
		return 2
	default:
		return 1
	}
}

// truncate shortens s to maxLen runes, never splitting a character
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
