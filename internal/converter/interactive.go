package converter

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/ginjaninja78/production-sorter/internal/csvparser"
	"github.com/ginjaninja78/production-sorter/internal/prompt"
	"github.com/ginjaninja78/production-sorter/internal/types"
)

// LoadInteractive asks for a file name until one loads.
//
// A missing file and any other load failure are reported to the operator and
// the question is asked again. End of input returns io.EOF.
func (c *Converter) LoadInteractive(ctx context.Context, p *prompt.Prompter) (string, *csvparser.CSVData, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}

		name, err := p.AskFileName()
		if err != nil {
			return "", nil, err
		}

		path, err := c.files.ResolveInput(name)
		if err == nil {
			var data *csvparser.CSVData
			if data, err = c.Load(path); err == nil {
				return path, data, nil
			}
		}

		c.logger.Debug("load failed", slog.String("input", name), slog.Any("error", err))
		if errors.Is(err, types.ErrFileNotFound) {
			p.NotFound()
		} else {
			p.LoadFailed(err)
		}
	}
}

// Interactive runs the prompt-driven session: ask for a file, convert it,
// report the outcome, and offer another file.
//
// RETURNS:
//   - nil when the operator declines another file or input ends.
//   - The context error if the session was interrupted. The operator is not
//     asked for another file then.
func (c *Converter) Interactive(ctx context.Context, p *prompt.Prompter) error {
	for {
		path, data, err := c.LoadInteractive(ctx, p)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		result := c.Convert(ctx, path, data)
		announce(p, result)

		if err := ctx.Err(); err != nil {
			return err
		}
		if !p.AskAnother() {
			return nil
		}
	}
}

// announce tells the operator what happened to each report.
func announce(p *prompt.Prompter, result Result) {
	if result.Skipped {
		p.Say("No report applies to %s.", result.FilePath)
		return
	}
	if result.Error != nil && len(result.Reports) == 0 {
		p.LoadFailed(result.Error)
		return
	}

	for _, rep := range result.Reports {
		title := rep.Mode.SheetTitle()
		switch {
		case rep.Error != nil:
			p.Say("%s report failed: %v", title, rep.Error)
		case rep.OutputFile == "":
			p.Say("%s report: %d rows (not written)", title, rep.Rows)
		default:
			p.Say("%s report saved to %s (%d rows)", title, rep.OutputFile, rep.Rows)
		}
	}
}
