package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mcncl/datamorph/internal/config"
	"github.com/mcncl/datamorph/internal/errors"
	"github.com/mcncl/datamorph/internal/exporter"
	"github.com/mcncl/datamorph/internal/generator"
	"github.com/mcncl/datamorph/internal/logging"
	"github.com/mcncl/datamorph/internal/pipeline"
	"github.com/mcncl/datamorph/internal/render"
	"github.com/mcncl/datamorph/internal/storage/sqlite"
)

// CLI defines the command-line interface
var CLI struct {
	Input       string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Output      string `help:"Path to write the output to. If not specified, writes to stdout." short:"o" type:"path"`
	Format      string `help:"Output format: table, csv, tsv or html." short:"f"`
	Config      string `help:"Path to a config file. Defaults to the nearest .datamorph.yml." short:"c" type:"path"`
	Example     bool   `help:"Normalize the built-in example payload instead of reading input."`
	Explain     bool   `help:"Explain fixed (SQL) vs flexible (NoSQL) schemas."`
	DDL         bool   `help:"Print a CREATE TABLE statement for the normalized table." name:"ddl"`
	SQLite      string `help:"Load the normalized table into this SQLite database file." name:"sqlite" type:"path"`
	Table       string `help:"Table name used by --sqlite and --ddl."`
	Save        bool   `help:"Also write the CSV export to the configured filename."`
	MaxLevel    *int   `help:"Deepest object level to flatten (0 keeps nested objects of the records as values)." name:"max-level"`
	NullPolicy  string `help:"How JSON null is counted: merged (with absent keys) or absent (absent keys only)." name:"null-policy"`
	NoColor     bool   `help:"Disable colored output." name:"no-color"`
	Debug       bool   `help:"Enable debug logging." short:"d"`
	Version     bool   `help:"Show version information." short:"v"`
	Interactive bool   `help:"Run in interactive mode, allowing direct JSON input with Ctrl+D to process." short:"I"`
}

// Context holds the runtime context
type Context struct {
	Debug  bool
	Config *config.Config
	Logger *slog.Logger
	Stdout io.Writer
	Stderr io.Writer
}

// Version information
const (
	Version = "0.1.0"
)

// examplePayload is three people with different fields
const examplePayload = `[
  {
    "id": 1,
    "name": "Ana",
    "age": 29,
    "city": "Madrid",
    "contacts": {"email": "ana@example.com"},
    "skills": ["Python", "SQL"]
  },
  {
    "id": 2,
    "name": "Bruno",
    "country": "Germany",
    "is_active": true,
    "contacts": {"phone": "+49-111-222"},
    "projects": [{"name": "ETL", "status": "done"}, {"name": "Dashboard", "status": "wip"}]
  },
  {
    "id": 3,
    "name": "Carla",
    "age": 41,
    "city": "Zurich",
    "department": {"name": "Data", "level": "Senior"},
    "preferences": {"newsletter": false}
  }
]`

func main() {
	// Parse CLI arguments with Kong
	parser := kong.Must(&CLI,
		kong.Name("datamorph"),
		kong.Description("A tool to normalize a JSON array of objects into a table and report its sparsity"),
		kong.UsageOnError(),
	)

	// Check if no arguments provided and set interactive mode by default
	if len(os.Args) == 1 {
		CLI.Interactive = true
	}

	// Parse the command line arguments
	if _, err := parser.Parse(os.Args[1:]); err != nil {
		// If there's an error parsing arguments, the usage will already be shown by kong.UsageOnError()
		os.Exit(1)
	}

	// Show version and exit if requested
	if CLI.Version {
		fmt.Printf("datamorph version %s\n", Version)
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}

	logger, cleanup := logging.SetupLogger(cfg.Logging, os.Stderr)

	err = run(&Context{
		Debug:  CLI.Debug,
		Config: cfg,
		Logger: logger,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	})
	cleanup()
	if err != nil {
		// Use our custom error handling to provide user-friendly error messages
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))

		fmt.Fprintf(os.Stderr, "\nFor help, run: datamorph --help\n")

		os.Exit(1)
	}
}

// loadConfig resolves the config file and applies flag overrides
func loadConfig() (*config.Config, error) {
	path := CLI.Config
	if path == "" {
		path = config.FindConfigFile()
	}

	cfg, err := config.LoadConfigWithCLI(path, config.CLIOverrides{
		Format:     CLI.Format,
		MaxLevel:   CLI.MaxLevel,
		NullPolicy: CLI.NullPolicy,
		Table:      CLI.Table,
		NoColor:    CLI.NoColor,
		Debug:      CLI.Debug,
	})
	if err != nil {
		return nil, errors.NewConfigError(err.Error(), err)
	}
	return cfg, nil
}

// run executes the main program logic
func run(ctx *Context) error {
	if ctx.Config == nil {
		ctx.Config = config.NewConfig()
	}
	if ctx.Logger == nil {
		ctx.Logger = logging.Discard()
	}
	if ctx.Stdout == nil {
		ctx.Stdout = os.Stdout
	}
	if ctx.Stderr == nil {
		ctx.Stderr = os.Stderr
	}
	cfg := ctx.Config
	out := render.New(ctx.Stdout, cfg.Display)
	diag := render.New(ctx.Stderr, cfg.Display)

	// --explain on its own needs no input
	if CLI.Explain && CLI.Input == "" && !CLI.Example && stdinIsTerminal() {
		return out.Explain()
	}

	// 1. Read and normalize the JSON input
	res, err := normalizeInput(pipeline.New(cfg, ctx.Logger))
	if err != nil {
		if errors.IsWarning(err) {
			// Empty array: nothing to show, not a failure
			return diag.Warning(errors.UserFriendlyError(err))
		}
		return err
	}

	// 2. Render or export the table
	outPath := CLI.Output
	var body bytes.Buffer
	if cfg.Export.Format == config.FormatTable {
		r := render.New(&body, cfg.Display)
		if CLI.Output != "" {
			// Files never get escape codes
			r = render.New(&body, config.DisplayConfig{MaxCellWidth: cfg.Display.MaxCellWidth})
		}
		if err := r.Table(res.Display); err != nil {
			return errors.NewOutputError("failed to render table", err)
		}
		body.WriteString("\n")
		if err := r.Report(res.Report); err != nil {
			return errors.NewOutputError("failed to render schema report", err)
		}
	} else {
		exp, err := exporter.New(cfg.Export.Format, exporter.Options{Delimiter: cfg.Delimiter()})
		if err != nil {
			return errors.NewExportError("unsupported format", err)
		}
		if outPath != "" {
			outPath = withExtension(outPath, exp.Extension())
		}
		if err := exp.Export(&body, res.Display); err != nil {
			return errors.NewExportError(fmt.Sprintf("failed to export %s", cfg.Export.Format), err)
		}
		// Keep stdout clean for the data; the report goes to stderr
		fmt.Fprintf(ctx.Stderr, "Rows: %d | Columns: %d\n", len(res.Display.Rows), len(res.Display.Columns))
		if err := diag.Report(res.Report); err != nil {
			return errors.NewOutputError("failed to render schema report", err)
		}
	}

	if err := writeOutput(ctx, outPath, body.Bytes()); err != nil {
		return err
	}

	// 3. Optional extras
	if CLI.Save {
		if err := saveCSV(ctx, res); err != nil {
			return err
		}
	}

	if CLI.DDL {
		ddl, err := generator.NewGenerator().GenerateDDL(res.Report, cfg.SQLite.Table)
		if err != nil {
			return errors.NewExportError("failed to generate DDL", err)
		}
		if _, err := fmt.Fprintf(ctx.Stdout, "\n%s", ddl); err != nil {
			return errors.NewOutputError("failed to write to stdout", err)
		}
	}

	if CLI.SQLite != "" {
		if err := loadSQLite(ctx, res); err != nil {
			return err
		}
	}

	if CLI.Explain {
		fmt.Fprintln(ctx.Stdout)
		return out.Explain()
	}

	return nil
}

// normalizeInput runs the pipeline on the --input file, the example payload
// or stdin
func normalizeInput(p *pipeline.Pipeline) (pipeline.Result, error) {
	if !CLI.Example && CLI.Input != "" {
		return p.NormalizeFile(CLI.Input)
	}

	text, err := readInput()
	if err != nil {
		return pipeline.Result{}, err
	}
	return p.Normalize(text)
}

// readInput reads JSON text from the example payload or stdin
func readInput() (string, error) {
	if CLI.Example {
		return examplePayload, nil
	}

	// Check if stdin has data
	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return "", errors.NewInputError("failed to access stdin", err)
	}

	// Interactive mode or piped input
	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		// Terminal is interactive (not piped)
		if CLI.Interactive {
			return readInteractiveInput()
		}
		// No data provided on stdin and not in interactive mode
		return "", errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	// Read from stdin (piped input)
	jsonData, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", errors.NewInputError("failed to read from stdin", err)
	}

	if len(jsonData) == 0 {
		return "", errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}

	return string(jsonData), nil
}

// writeOutput writes data to path, or to stdout when path is empty
func writeOutput(ctx *Context, path string, data []byte) error {
	if path != "" {
		// Write to file
		err := os.WriteFile(path, data, 0644)
		if err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
		}
		fmt.Fprintf(ctx.Stderr, "Output written to %s\n", path)
		return nil
	}

	// Write to stdout
	if _, err := ctx.Stdout.Write(data); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// saveCSV writes the CSV download under the configured filename
func saveCSV(ctx *Context, res pipeline.Result) error {
	cfg := ctx.Config
	exp, err := exporter.New(config.FormatCSV, exporter.Options{Delimiter: cfg.Delimiter()})
	if err != nil {
		return errors.NewExportError("unsupported format", err)
	}
	data, err := exporter.Bytes(exp, res.Display)
	if err != nil {
		return errors.NewExportError("failed to export csv", err)
	}
	filename := withExtension(cfg.Export.Filename, exp.Extension())
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", filename), err)
	}
	fmt.Fprintf(ctx.Stderr, "CSV (%s) saved to %s\n", exp.ContentType(), filename)
	return nil
}

// withExtension adds ext to path when it has none
func withExtension(path, ext string) string {
	if filepath.Ext(path) == "" {
		return path + ext
	}
	return path
}

// loadSQLite replaces the configured table in the --sqlite database
func loadSQLite(ctx *Context, res pipeline.Result) error {
	bg := context.Background()
	store, err := sqlite.Open(bg, CLI.SQLite)
	if err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to open database '%s'", CLI.SQLite), err)
	}
	defer func() { _ = store.Close() }()

	n, err := store.WriteTable(bg, ctx.Config.SQLite.Table, res.Display, res.Report)
	if err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to load table '%s'", ctx.Config.SQLite.Table), err)
	}
	ctx.Logger.Info("table loaded", "submission", res.ID, "database", CLI.SQLite, "table", ctx.Config.SQLite.Table, "rows", n)
	fmt.Fprintf(ctx.Stderr, "Loaded %d rows into table %q of %s\n", n, generator.Identifier(ctx.Config.SQLite.Table), CLI.SQLite)
	return nil
}

// readInteractiveInput provides an interactive mode for users to paste JSON
// and signal completion with Ctrl+D (EOF)
func readInteractiveInput() (string, error) {
	fmt.Fprintln(os.Stderr, "DataMorph Interactive Mode")
	fmt.Fprintln(os.Stderr, "Paste a JSON array of objects below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	// Read all input until EOF (Ctrl+D)
	reader := bufio.NewReader(os.Stdin)
	var jsonBuilder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		jsonBuilder.WriteString(line)
		if err == io.EOF {
			// End of input
			break
		}
		if err != nil {
			return "", errors.NewInputError("error reading input", err)
		}
	}

	jsonData := jsonBuilder.String()
	if len(jsonData) == 0 {
		return "", errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(os.Stderr, "\nProcessing JSON...")
	return jsonData, nil
}

func stdinIsTerminal() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
