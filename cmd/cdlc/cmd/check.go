package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/cdlc/foundation/cdl"
	"github.com/msto63/cdlc/foundation/cdl/diag"
	mdwlog "github.com/msto63/cdlc/foundation/core/log"
	"github.com/msto63/cdlc/internal/store"
	"github.com/msto63/cdlc/internal/watch"
)

var (
	checkWatch  bool
	checkRecord bool
)

// errProblems is returned when a checked file has diagnostics
var errProblems = errors.New("problems found")

var checkCmd = &cobra.Command{
	Use:   "check [file...]",
	Short: "Report diagnostics for CDL scripts",
	Long: `Compiles each file and prints syntax errors, dangling references and
duplicate ids as file:line:column messages. Exits non-zero when any file
has a problem.

With --watch the files are checked again whenever they change, until
interrupted.

Examples:
  cdlc check reports/*.cdl
  cdlc check --watch dashboard.cdl
  cdlc check --record report.cdl   # also store the run in the history`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVarP(&checkWatch, "watch", "w", false, "re-check files when they change")
	checkCmd.Flags().BoolVar(&checkRecord, "record", false, "record runs in the history database")
}

func runCheck(cmd *cobra.Command, args []string) error {
	if checkWatch && len(args) == 0 {
		return fmt.Errorf("--watch needs at least one file")
	}

	var runs store.RunStore
	if checkRecord || appConfig.Store.Enabled {
		s, err := openHistory()
		if err != nil {
			return err
		}
		defer s.Close()
		runs = s
	}

	c := &checker{cmd: cmd, runs: runs}

	inputs := args
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}
	problems := 0
	for _, path := range inputs {
		problems += c.check(path)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d file(s), %d problem(s)\n", len(inputs), problems)

	if checkWatch {
		return c.watch(args)
	}
	if problems > 0 {
		return errProblems
	}
	return nil
}

// checker compiles files and prints their diagnostics
type checker struct {
	cmd  *cobra.Command
	runs store.RunStore
}

// check compiles path and returns the number of problems printed
func (c *checker) check(path string) int {
	name, src, err := readSource(c.cmd, []string{path})
	if err != nil {
		printError(c.cmd, "reading input", err)
		return 1
	}

	start := time.Now()
	res, err := cdl.Compile(src, compileOptions(name))
	elapsed := time.Since(start)

	c.record(name, src, res, err, elapsed)

	if err != nil {
		var d *diag.Diagnostic
		if errors.As(err, &d) {
			printDiagnostic(c.cmd.ErrOrStderr(), name, d)
		} else {
			printError(c.cmd, name, err)
		}
		return 1
	}
	for _, d := range res.Diagnostics {
		printDiagnostic(c.cmd.ErrOrStderr(), name, d)
	}
	return len(res.Diagnostics)
}

func (c *checker) record(name, src string, res *cdl.Result, err error, elapsed time.Duration) {
	if c.runs == nil {
		return
	}
	run := store.NewRun(name, src, res, err, elapsed)
	if rerr := c.runs.Record(c.cmd.Context(), run); rerr != nil {
		logger.Warn("failed to record run", mdwlog.Err(rerr))
	}
}

// watch re-checks files on change until SIGINT or SIGTERM
func (c *checker) watch(paths []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(paths, appConfig.Compiler.WatchDebounce.Duration, logger)
	if err != nil {
		return err
	}

	out := c.cmd.OutOrStdout()
	fmt.Fprintf(out, "watching %d file(s), press Ctrl+C to stop\n", len(paths))
	return w.Run(ctx, func(path string) {
		n := c.check(path)
		fmt.Fprintf(out, "[%s] %s: %d problem(s)\n", time.Now().Format("15:04:05"), path, n)
	})
}
