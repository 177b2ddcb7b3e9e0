// Package api defines the conversion API between pseudocode and encoded
// cheat codes.
package api

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/sarchlab/arconv/config"
	"github.com/sarchlab/arconv/core"
	"github.com/sarchlab/arconv/encoded"
	"github.com/sarchlab/arconv/pseudo"
	"github.com/sarchlab/arconv/verify"
)

// Converter translates whole programs in either direction.
type Converter interface {
	// Encode turns pseudocode into encoded lines.
	Encode(src string) (Result, error)

	// Decode turns encoded lines into pseudocode.
	Decode(src string) (Result, error)
}

// Result is the outcome of a conversion. On failure, Text is empty and the
// last diagnostic is the error.
type Result struct {
	Text        string
	Diagnostics []Diagnostic
	Issues      []verify.Issue
	Program     *core.Program
	Lines       int
}

type converterImpl struct {
	opts   config.Options
	sink   Sink
	logger *slog.Logger
}

// Encode runs the pseudocode front-end and the encoded back-end.
func (c *converterImpl) Encode(src string) (Result, error) {
	return c.convert(src, pseudo.NewParser(), encoded.NewPrinter(c.opts.RenderFillerAsZero))
}

// Decode runs the encoded front-end and the pseudocode back-end.
func (c *converterImpl) Decode(src string) (Result, error) {
	return c.convert(src, encoded.NewParser(), pseudo.NewPrinter())
}

// run carries the diagnostics of a single conversion.
type run struct {
	sink Sink
	res  Result
}

func (r *run) report(sev Severity, line int, msg string) {
	d := Diagnostic{Severity: sev, Message: msg, Line: line}
	r.res.Diagnostics = append(r.res.Diagnostics, d)
	r.sink.Report(d)
}

func (r *run) fail(err error) (Result, error) {
	msg := "Parsing failed: " + err.Error()
	if core.IsInternal(err) {
		msg = "An internal error has occurred, please report it along with the input: " +
			err.Error()
	}
	r.report(SeverityError, core.LineOf(err), msg)

	r.res.Text = ""
	return r.res, err
}

func (c *converterImpl) convert(
	src string,
	front core.LineTranscoder,
	back core.TreeTranscoder,
) (Result, error) {
	r := &run{sink: c.sink}
	r.report(SeverityInfo, 0, "Beginning...")

	prog, err := c.buildTree(r, src, front)
	if err != nil {
		return r.fail(err)
	}
	r.res.Program = prog
	r.report(SeverityInfo, 0, "Finished building tree.")
	core.LogProgram(c.logger, prog)

	r.res.Issues = verify.RunLint(prog, c.opts)

	lines, err := back.TranscodeTree(prog)
	if err != nil {
		return r.fail(err)
	}
	r.res.Text = strings.Join(lines, "\n")

	// Lint findings are only reported once the output exists.
	for _, issue := range r.res.Issues {
		sev := SeverityInfo
		if issue.Type.Warning() {
			sev = SeverityWarning
		}
		r.report(sev, issue.Line, issue.Message)
	}

	r.report(SeverityInfo, 0, "Operation successful!")
	return r.res, nil
}

func (c *converterImpl) buildTree(
	r *run,
	src string,
	front core.LineTranscoder,
) (*core.Program, error) {
	prog := core.NewProgram()
	cursor := core.NewCursor(prog)
	state := core.LineState{}

	lines := strings.Split(src, "\n")
	r.res.Lines = len(lines)

	for i, raw := range lines {
		lineID := i + 1
		line := strings.TrimSuffix(raw, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		step, err := front.TranscodeLine(line, core.Context{
			Line:      lineID,
			Enclosing: cursor.Enclosing(),
			State:     state,
		})
		if err != nil {
			return nil, core.AtLine(lineID, err)
		}

		id, err := cursor.Apply(step.Node, step.Move)
		if err != nil {
			return nil, core.AtLine(lineID, err)
		}

		core.Trace(c.logger, "Line",
			"Line", lineID,
			"Move", step.Move.String(),
			"Node", int(id),
			"Depth", cursor.Depth(),
			"Mode", step.State.Mode.String(),
			"Remaining", step.State.Remaining())

		state = step.State
	}

	if state.Mode == core.ValueBlockLine {
		return nil, core.AtLine(state.Pending.Line, fmt.Errorf(
			"input ends with %d bytes of the value block missing: %w",
			state.Remaining(), core.ErrUnterminatedValueBlock))
	}

	return prog, nil
}
