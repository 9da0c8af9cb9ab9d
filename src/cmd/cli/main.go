// Package main provides the command-line interface for forwarding GitHub
// Actions workflow runs to Splunk HEC.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github-workflow-splunk-logger/src/config"
	"github-workflow-splunk-logger/src/forwarder"
	"github-workflow-splunk-logger/src/hec"
	"github-workflow-splunk-logger/src/logger"
	"github-workflow-splunk-logger/src/provider"
	"github-workflow-splunk-logger/src/report"
)

// app carries state shared by the commands.
type app struct {
	v   *viper.Viper
	cfg *config.Config
	out io.Writer
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "github-workflow-splunk-logger",
		Short: "Forward GitHub Actions workflow runs to Splunk HEC",
		Long: `Fetches a GitHub Actions workflow run, its jobs and their logs, and sends
them to a Splunk HTTP Event Collector: one workflow event per run plus one
event per job.

Options can be given as flags, as GitHub Action inputs (INPUT_<NAME>), as
environment variables (SPLUNK_URL, SPLUNK_TOKEN, GITHUB_TOKEN,
GITHUB_REPOSITORY, ...) or in a config file passed with --config.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(cmd.Flags())
		},
	}

	addCommonFlags(root.PersistentFlags())

	root.AddCommand(
		newRunCmd(a),
		newBatchCmd(a),
		newSubmitCmd(a),
		newAgentCmd(a),
		newMCPCmd(a),
	)
	return root
}

func addCommonFlags(fs *pflag.FlagSet) {
	fs.String(config.FlagName(config.KeyConfigFile), "", "Path to a config file (yaml, json or toml)")

	fs.String(config.FlagName(config.KeySplunkURL), "", "Splunk HEC base URL, e.g. https://splunk.example.com:8088")
	fs.String(config.FlagName(config.KeySplunkToken), "", "Splunk HEC token")
	fs.String(config.FlagName(config.KeySplunkEndpoint), hec.DefaultEndpoint, "HEC endpoint path")
	fs.String(config.FlagName(config.KeyIndex), forwarder.DefaultIndex, "Splunk index (empty to use the token default)")
	fs.String(config.FlagName(config.KeySourceType), forwarder.DefaultSourceType, "Base sourcetype; job events use <sourcetype>:job")
	fs.Bool(config.FlagName(config.KeySSLVerify), true, "Verify the collector's TLS certificate")
	fs.Float64(config.FlagName(config.KeyTimeout), 30, "HTTP timeout in seconds")
	fs.Int(config.FlagName(config.KeyMaxRetries), hec.DefaultMaxRetries, "Delivery attempts per event")
	fs.Bool(config.FlagName(config.KeyDebug), false, "Print events instead of sending them")

	fs.String(config.FlagName(config.KeyGitHubToken), "", "GitHub token with actions:read")
	fs.String("repo", "", "Repository as owner/name")
	fs.String(config.FlagName(config.KeyGitHubAPIURL), "", "GitHub API root for GitHub Enterprise")
	fs.Float64(config.FlagName(config.KeyGitHubRPS), 0, "Maximum GitHub API requests per second (0 = unlimited)")

	fs.Bool(config.FlagName(config.KeyIncludeJobSteps), true, "Send one event per job")
	fs.Bool(config.FlagName(config.KeyIncludeJobLogs), true, "Attach job logs to job events")
	fs.Int(config.FlagName(config.KeyMaxLogBytes), 0, "Truncate job logs to this many bytes (0 = no limit)")
	fs.Bool(config.FlagName(config.KeyStrictPRLookup), false, "Fail the run when the pull request lookup fails")

	fs.String(config.FlagName(config.KeyLogFormat), logger.FormatConsole, "Log format: console, actions or json")
	fs.String(config.FlagName(config.KeyPostgresDSN), "", "Postgres DSN for the shared batch queue")
	fs.StringSlice(config.FlagName(config.KeyRedpandaBrokers), nil, "Redpanda broker addresses for submit and agent")
	fs.String(config.FlagName(config.KeyMetricsAddr), "", "Address to serve Prometheus metrics on, e.g. :9090")
}

// loadConfig binds the parsed flags and resolves the configuration.
func (a *app) loadConfig(fs *pflag.FlagSet) error {
	if err := config.BindFlags(a.v, fs); err != nil {
		return err
	}
	if f := fs.Lookup("repo"); f != nil {
		if err := a.v.BindPFlag(config.KeyRepository, f); err != nil {
			return err
		}
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

func (a *app) logger() (logger.Logger, error) {
	log, err := logger.New(a.cfg.LogFormat, a.cfg.Debug)
	if err != nil {
		return nil, &provider.ConfigError{Option: config.KeyLogFormat, Reason: err.Error()}
	}
	return log, nil
}

// interactive reports whether a progress display can be drawn on the output.
// Debug previews and machine-readable log formats keep plain output.
func (a *app) interactive() bool {
	if a.cfg.Debug || !report.IsTerminal(a.out) {
		return false
	}
	format := strings.ToLower(a.cfg.LogFormat)
	return format == "" || format == logger.FormatConsole
}

// checkAll runs the checks in order and returns the first failure.
func checkAll(checks ...func() error) error {
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{v: viper.New(), out: os.Stdout}
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", provider.WrapError(err))
		stop()
		os.Exit(1)
	}
}
