package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/turtacn/mcgclock/internal/monitor"
	"github.com/turtacn/mcgclock/internal/orchestrator"
	"github.com/turtacn/mcgclock/internal/report"
	"github.com/turtacn/mcgclock/pkg/consts"
	"github.com/turtacn/mcgclock/pkg/graph"
	"github.com/turtacn/mcgclock/pkg/logger"
	"github.com/turtacn/mcgclock/pkg/protocol"
)

const shutdownTimeout = 2 * time.Second

func newTransitionCmd(opts *options) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "transition",
		Short: "Drive the clock mode to a target and print the path taken",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := consts.ParseClockMode(to)
			if err != nil {
				return wrapExit(ExitCommandError, "--to", err)
			}
			if from != "" {
				start, err := consts.ParseClockMode(from)
				if err != nil {
					return wrapExit(ExitCommandError, "--from", err)
				}
				opts.cfg.Engine.InitialMode = start
			}

			rec := &orchestrator.RecordingApplier{}
			ctl, err := orchestrator.NewController(opts.cfg, rec, nil)
			if err != nil {
				return wrapExit(ExitCommandError, "build controller", err)
			}

			res, err := ctl.Transition(target)
			if err != nil {
				return wrapExit(ExitFailure, fmt.Sprintf("%s=>%s failed at %s", res.From, target, ctl.Current()), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d steps)\n", res.PathString(), res.Steps())
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "starting mode (default: engine.initial_mode)")
	cmd.Flags().StringVar(&to, "to", "", "target mode")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newSweepCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Request every mode from every mode and print the trace",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := opts.cfg.BuildGraph()
			if err != nil {
				return wrapExit(ExitCommandError, "build graph", err)
			}
			out := cmd.OutOrStdout()
			s, err := report.Sweep(out, g, opts.cfg.Engine.StepBound)
			if err != nil {
				return wrapExit(ExitCommandError, "sweep", err)
			}
			fmt.Fprintf(out, "%d pairs, %d failed, longest path %d steps\n", s.Pairs, len(s.Failures), s.LongestPath)
			if !s.OK() {
				return wrapExit(ExitFailure, fmt.Sprintf("%d transition(s) failed", len(s.Failures)), nil)
			}
			return nil
		},
	}
}

func newTableCmd(opts *options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the mode graph as a table, YAML, DOT or Mermaid",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := opts.cfg.BuildGraph()
			if err != nil {
				return wrapExit(ExitCommandError, "build graph", err)
			}
			out := cmd.OutOrStdout()
			switch strings.ToLower(format) {
			case "text":
				writeTable(out, g)
			case "yaml":
				data, err := protocol.MarshalTable(g)
				if err != nil {
					return err
				}
				_, _ = out.Write(data)
			case "dot":
				fmt.Fprint(out, g.DOT())
			case "mermaid":
				fmt.Fprint(out, g.Mermaid(opts.cfg.Engine.InitialMode))
			default:
				return wrapExit(ExitCommandError, "unknown format "+format, nil)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, yaml, dot, mermaid")
	return cmd
}

func writeTable(w io.Writer, g *graph.ModeGraph) {
	modes := consts.OperatingModes()
	fmt.Fprintf(w, "%-6s", "from\\to")
	for _, m := range modes {
		fmt.Fprintf(w, " %5s", m)
	}
	fmt.Fprintln(w)
	for i, row := range g.Rows() {
		fmt.Fprintf(w, "%-7s", modes[i])
		for _, next := range row {
			fmt.Fprintf(w, " %5s", next)
		}
		fmt.Fprintln(w)
	}
}

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configured mode graph converges within the step bound",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := opts.cfg.BuildGraph()
			if err != nil {
				return wrapExit(ExitFailure, "invalid table", err)
			}
			r := g.Check(opts.cfg.Engine.StepBound)
			out := cmd.OutOrStdout()
			for _, v := range r.Violations {
				fmt.Fprintf(out, "violation: %v\n", v)
			}
			if len(r.Violations) > 0 {
				return wrapExit(ExitFailure, fmt.Sprintf("%d violation(s)", len(r.Violations)), nil)
			}
			fmt.Fprintf(out, "ok: %d pairs, longest path %d of %d steps\n", r.Pairs, r.LongestPath, opts.cfg.Engine.StepBound)
			return nil
		},
	}
}

func newServeCmd(opts *options) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Read target modes from stdin, one per line, and drive a long-lived controller",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("metrics-addr") {
				opts.cfg.Observability.MetricsAddr = metricsAddr
			}

			reg := prometheus.NewRegistry()
			metrics := monitor.NewMetrics(reg)
			if addr := opts.cfg.Observability.MetricsAddr; addr != "" {
				srv, err := monitor.Serve(addr, reg)
				if err != nil {
					return wrapExit(ExitCommandError, "metrics endpoint", err)
				}
				defer shutdown(srv)
			}

			ctl, err := orchestrator.NewController(opts.cfg, &orchestrator.RecordingApplier{}, metrics)
			if err != nil {
				return wrapExit(ExitCommandError, "build controller", err)
			}
			logger.Log.Info("Controller ready", "mode", ctl.Current().String())

			return serveLoop(cmd.InOrStdin(), cmd.OutOrStdout(), ctl)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "expose Prometheus metrics on this address")
	return cmd
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Warn("Metrics server shutdown incomplete", "err", err)
	}
}

// serveLoop keeps going after a failed request; only read errors stop it.
func serveLoop(in io.Reader, out io.Writer, ctl *orchestrator.Controller) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		target, err := consts.ParseClockMode(line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		res, err := ctl.Transition(target)
		if err != nil {
			fmt.Fprintf(out, "error: %s: %v\n", res.PathString(), err)
			continue
		}
		fmt.Fprintln(out, res.PathString())
	}
	return scanner.Err()
}

// Personal.AI order the ending
