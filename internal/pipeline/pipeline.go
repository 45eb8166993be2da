// Package pipeline runs one submission from raw JSON text to the normalized
// table, its display form and the schema report.
//
// Every call is independent: nothing is cached between submissions, and a
// failure in one submission never affects the next.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"

	"github.com/mcncl/datamorph/internal/analyzer"
	"github.com/mcncl/datamorph/internal/config"
	"github.com/mcncl/datamorph/internal/display"
	"github.com/mcncl/datamorph/internal/errors"
	"github.com/mcncl/datamorph/internal/flattener"
	"github.com/mcncl/datamorph/internal/logging"
	"github.com/mcncl/datamorph/internal/models"
	"github.com/mcncl/datamorph/internal/parser"
	"github.com/mcncl/datamorph/internal/table"
	"github.com/mcncl/datamorph/internal/validator"
)

// Stage names attached to processing errors and log records
const (
	StageParse    = "parse"
	StageValidate = "validate"
	StageFlatten  = "flatten"
	StageBuild    = "build"
	StageAnalyze  = "analyze"
	StageDisplay  = "display"
)

// Result holds everything derived from one submission.
type Result struct {
	ID      string
	Table   models.Table
	Display models.DisplayTable
	Report  models.SchemaReport
}

// Pipeline wires the normalization stages together.
type Pipeline struct {
	config    *config.Config
	logger    *slog.Logger
	flattener *flattener.Flattener
	analyzer  *analyzer.Analyzer
}

// New creates a Pipeline. A nil cfg uses the defaults and a nil logger
// discards output.
func New(cfg *config.Config, logger *slog.Logger) *Pipeline {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Pipeline{
		config:    cfg,
		logger:    logger,
		flattener: flattener.New(cfg.Flatten.Separator, cfg.Flatten.MaxLevel),
		analyzer:  analyzer.NewAnalyzerWithConfig(cfg),
	}
}

// Normalize parses and normalizes jsonText.
//
// Parse and validation failures are returned as-is. Anything that goes wrong
// in a later stage, including a panic, comes back as a processing error
// naming the stage.
func (p *Pipeline) Normalize(jsonText string) (Result, error) {
	res := Result{ID: uuid.NewString()}
	log := p.logger.With("submission", res.ID)
	log.Info("submission received", "bytes", len(jsonText))

	root, err := parser.ParseString(jsonText)
	if err != nil {
		log.Warn("parse failed", "stage", StageParse, "error", err)
		return res, err
	}
	return p.normalize(log, res, root)
}

// NormalizeFile is Normalize for the JSON document stored at path.
func (p *Pipeline) NormalizeFile(path string) (Result, error) {
	res := Result{ID: uuid.NewString()}
	log := p.logger.With("submission", res.ID)
	log.Info("submission received", "file", path)

	root, err := parser.ParseFile(path)
	if err != nil {
		log.Warn("parse failed", "stage", StageParse, "error", err)
		return res, err
	}
	return p.normalize(log, res, root)
}

func (p *Pipeline) normalize(log *slog.Logger, res Result, root models.Value) (Result, error) {
	records, err := validator.Validate(root)
	if err != nil {
		if errors.IsWarning(err) {
			log.Warn("empty submission", "stage", StageValidate)
		} else {
			log.Warn("validation failed", "stage", StageValidate, "error", err)
		}
		return res, err
	}

	var flat []models.FlatRecord
	err = p.run(log, StageFlatten, func() error {
		flat = p.flattener.FlattenAll(records)
		return nil
	})
	if err != nil {
		return Result{ID: res.ID}, err
	}
	if log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("flattened records", "dump", spew.Sdump(flat))
	}

	err = p.run(log, StageBuild, func() error {
		res.Table = table.Build(flat)
		return res.Table.Validate()
	})
	if err != nil {
		return Result{ID: res.ID}, err
	}

	err = p.run(log, StageAnalyze, func() error {
		var aerr error
		res.Report, aerr = p.analyzer.Analyze(res.Table)
		return aerr
	})
	if err != nil {
		return Result{ID: res.ID}, err
	}

	err = p.run(log, StageDisplay, func() error {
		res.Display = display.Normalize(res.Table)
		return nil
	})
	if err != nil {
		return Result{ID: res.ID}, err
	}

	log.Info("submission normalized",
		"rows", len(res.Table.Rows),
		"columns", len(res.Table.Columns),
		"total_missing", res.Report.TotalMissing,
		"sparse", res.Report.Sparse,
	)
	return res, nil
}

// run executes one stage, converting both returned errors and panics into a
// processing error for that stage.
func (p *Pipeline) run(log *slog.Logger, stage string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("stage panicked", "stage", stage, "panic", r)
			err = errors.NewProcessingError(stage, fmt.Sprintf("%s stage failed: %v", stage, r), errors.ErrUnexpected)
		}
	}()

	if ferr := fn(); ferr != nil {
		log.Error("stage failed", "stage", stage, "error", ferr)
		return errors.NewProcessingError(stage, fmt.Sprintf("%s stage failed", stage), fmt.Errorf("%w: %w", errors.ErrUnexpected, ferr))
	}
	log.Debug("stage complete", "stage", stage)
	return nil
}
