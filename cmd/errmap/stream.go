package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kevin07696/error-mapping/internal/mapping"
	svc "github.com/kevin07696/error-mapping/internal/services/classification"
	"github.com/kevin07696/error-mapping/pkg/observability"
)

// maxLineSize bounds one NDJSON request line
const maxLineSize = 1 << 20

// streamRequest is one NDJSON input line. Missing or null fields are absent.
type streamRequest struct {
	Code        *string `json:"code"`
	Description *string `json:"description"`
	State       *string `json:"state"`
}

func newStreamCmd(a *app) *cobra.Command {
	var metricsPort int

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Classify NDJSON requests from stdin, one result per line on stdout",
		Long: `stream reads one JSON object per line, {"code": ..., "description": ..., "state": ...},
and writes one result object per line in the same order. Malformed or oversized
lines produce an "error" result and do not stop the stream. SIGHUP reloads the
rules from the configured source; a failed reload keeps the active rules.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			if cmd.Flags().Changed("metrics-port") {
				a.cfg.Metrics.Port = metricsPort
			}

			reg := prometheus.NewRegistry()
			service, src, err := a.newService(ctx, observability.NewClassificationMetrics(reg))
			if err != nil {
				return &exitError{code: exitFailure, err: err}
			}
			defer src.Close()

			if a.cfg.Metrics.Port > 0 {
				health := observability.NewHealthChecker()
				if src.db != nil {
					health.Register("database", src.db.HealthCheck)
				}
				server := observability.StartMetricsServer(
					strconv.Itoa(a.cfg.Metrics.Port),
					observability.NewMetricsHandler(reg, health),
					a.logger,
				)
				defer shutdown(server, a.logger)
			}

			hup := make(chan os.Signal, 1)
			signal.Notify(hup, syscall.SIGHUP)
			defer signal.Stop(hup)

			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				a.watchReloads(ctx, hup, service, src)
			}()
			defer wg.Wait()
			defer cancel()

			n, err := a.stream(ctx, service)
			a.logger.Info("Stream finished", zap.Int("requests", n))
			if err != nil {
				return &exitError{code: exitFailure, err: err}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&metricsPort, "metrics-port", 0, "serve /metrics, /health and /ready on this port (env METRICS_PORT)")
	return cmd
}

func (a *app) stream(ctx context.Context, service *svc.Service) (int, error) {
	in := bufio.NewReaderSize(a.stdin, 64*1024)

	out := bufio.NewWriter(a.stdout)
	defer out.Flush()
	enc := json.NewEncoder(out)

	n, line := 0, 0
	for {
		raw, tooLong, err := readLine(in, maxLineSize)
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("failed to read requests: %w", err)
		}
		line++
		if len(raw) == 0 && !tooLong {
			continue
		}
		n++

		var res result
		if tooLong {
			a.logger.Warn("Skipping oversized request", zap.Int("line", line), zap.Int("limit", maxLineSize))
			res = result{Outcome: svc.OutcomeError, Message: fmt.Sprintf("invalid request: line exceeds %d bytes", maxLineSize)}
		} else if res, err = a.classifyLine(ctx, service, raw, line); err != nil {
			return n - 1, err
		}

		if err := enc.Encode(res); err != nil {
			return n, fmt.Errorf("failed to write result: %w", err)
		}
	}
}

// classifyLine decodes and classifies one request. Only a done ctx is
// returned as an error; anything wrong with the request becomes its result.
func (a *app) classifyLine(ctx context.Context, service *svc.Service, raw []byte, line int) (result, error) {
	var req streamRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		a.logger.Warn("Skipping malformed request", zap.Int("line", line), zap.Error(err))
		return result{Outcome: svc.OutcomeError, Message: fmt.Sprintf("invalid request: %v", err)}, nil
	}

	failure, err := service.Classify(ctx, mapping.Request{
		Code:        req.Code,
		Description: req.Description,
		State:       req.State,
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result{}, ctxErr
	}
	return newResult(failure, err), nil
}

// readLine reads one line without its line ending. A line longer than limit
// is consumed up to its newline and returned empty with tooLong set.
// io.EOF is returned only once the input is exhausted.
func readLine(r *bufio.Reader, limit int) (line []byte, tooLong bool, err error) {
	read := 0
	for {
		chunk, err := r.ReadSlice('\n')
		read += len(chunk)
		if !tooLong {
			line = append(line, chunk...)
			if len(bytes.TrimSuffix(line, []byte("\n"))) > limit {
				line, tooLong = nil, true
			}
		}

		switch {
		case err == nil:
			return trimEOL(line), tooLong, nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF) && read > 0:
			return trimEOL(line), tooLong, nil
		default:
			return nil, false, err
		}
	}
}

func trimEOL(line []byte) []byte {
	line = bytes.TrimSuffix(line, []byte("\n"))
	return bytes.TrimSuffix(line, []byte("\r"))
}

func shutdown(server *http.Server, logger *zap.Logger) {
	if err := observability.ShutdownMetricsServer(server); err != nil {
		logger.Error("Failed to shut down metrics server", zap.Error(err))
	}
}
