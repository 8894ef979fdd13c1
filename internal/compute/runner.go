package compute

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/wonny/backtester/internal/contracts"
	"github.com/wonny/backtester/internal/observability"
	"github.com/wonny/backtester/pkg/logger"
)

const maxLoggedStderr = 4096

// Runner spawns an interpreter on a script and reads one JSON document from stdout
// ⭐ SSOT: 외부 프로세스 실행은 여기서만
type Runner struct {
	interpreter string
	timeout     time.Duration
	waitDelay   time.Duration
	logger      *logger.Logger
}

// NewRunner creates a Runner. timeout bounds every invocation.
func NewRunner(interpreter string, timeout time.Duration, log *logger.Logger) *Runner {
	return &Runner{
		interpreter: interpreter,
		timeout:     timeout,
		waitDelay:   2 * time.Second,
		logger:      log.WithComponent("compute"),
	}
}

// Run executes script with positional args and returns its parsed output.
//
// Client cancellation is not propagated: an already-spawned computation runs
// to completion or to the timeout.
func (r *Runner) Run(ctx context.Context, script string, args ...string) (*Document, error) {
	label := filepath.Base(script)
	start := time.Now()

	doc, err := r.run(ctx, label, script, args)

	outcome := "success"
	if err != nil {
		outcome = string(contracts.KindOf(err))
	}
	observability.RecordComputation(label, outcome, time.Since(start).Seconds())

	return doc, err
}

func (r *Runner) run(ctx context.Context, label, script string, args []string) (*Document, error) {
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, r.interpreter, append([]string{script}, args...)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = r.waitDelay

	log := r.logger.WithFields(map[string]interface{}{
		"script": label,
		"args":   args,
	})
	log.Debug("Running computation")

	runErr := cmd.Run()

	if stderr.Len() > 0 {
		log.WithField("stderr", truncate(stderr.String(), maxLoggedStderr)).Debug("Computation stderr")
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		log.Warn("Computation timed out")
		return nil, contracts.TimeoutError(
			fmt.Sprintf("%s timed out after %s", label, r.timeout), runCtx.Err())
	}

	raw := stdout.String()
	doc, parseErr := parseDocument(stdout.Bytes())
	if parseErr == nil {
		msg, hasError, err := doc.errorMessage()
		if err != nil {
			return nil, contracts.MalformedOutputError(
				fmt.Sprintf("%s returned a non-string error field", label), raw, err)
		}
		if hasError {
			log.WithField("computation_error", msg).Warn("Computation reported an error")
			return nil, contracts.ComputationFailedError(msg, raw)
		}
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			log.WithError(runErr).Warn("Computation exited with non-zero status")
			return nil, contracts.ComputationFailedError(
				fmt.Sprintf("%s exited with status %d", label, exitErr.ExitCode()), raw)
		}
		log.WithError(runErr).Error("Failed to start computation")
		return nil, contracts.ComputationFailedError(
			fmt.Sprintf("failed to start %s: %v", label, runErr), "")
	}

	if parseErr != nil {
		log.WithError(parseErr).WithField("stdout", truncate(raw, maxLoggedStderr)).Error("Failed to parse computation output")
		return nil, contracts.MalformedOutputError(
			fmt.Sprintf("failed to parse %s output", label), raw, parseErr)
	}

	return doc, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}
