package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/GoCodeAlone/unitmod"
	"github.com/GoCodeAlone/unitmod/feeders"
	"github.com/GoCodeAlone/unitmod/klog"
	"github.com/GoCodeAlone/unitmod/paramfs"
	"github.com/GoCodeAlone/unitmod/paramwatch"
	"github.com/GoCodeAlone/unitmod/units"
)

var (
	errUnknownUnit = errors.New("unknown unit")
	errNoUnits     = errors.New("no units named")
)

// shutdownTimeout bounds unloading and HTTP shutdown after a signal.
const shutdownTimeout = 10 * time.Second

type runOptions struct {
	config    string
	watch     bool
	listen    string
	audit     string
	logFormat string
	envPrefix string
	once      bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run unit... [unit.param=value...]",
		Short: "Load units and keep them running until interrupted",
		Long: `Load the named built-in units in order, then wait for SIGINT or SIGTERM
and unload them in reverse order.

Arguments containing '=' are parameter overrides. With a single unit the
unit prefix may be omitted. Overrides are taken from the --config file, then
the environment (UNITMOD__UNIT__PARAM), then the command line; later sources
win.

Examples:
  unithost run hello_params howmany=5 whom=Dad
  unithost run hello_world scull_basic --listen :8080 --audit "@every 1m"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnits(cmd, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.config, "config", "c", "", "YAML or TOML overrides file")
	f.BoolVarP(&opts.watch, "watch", "w", false, "re-apply the --config file when it changes")
	f.StringVarP(&opts.listen, "listen", "l", "", "serve the parameter API on this address")
	f.StringVar(&opts.audit, "audit", "", "cron schedule for logging every parameter value")
	f.StringVar(&opts.logFormat, "log-format", "console", "log output format: console or json")
	f.StringVar(&opts.envPrefix, "env-prefix", feeders.DefaultEnvPrefix, "environment override prefix")
	f.BoolVar(&opts.once, "once", false, "unload immediately after loading")

	return cmd
}

func splitArgs(args []string) (names, overrides []string) {
	for _, a := range args {
		if strings.Contains(a, "=") {
			overrides = append(overrides, a)
		} else {
			names = append(names, a)
		}
	}
	return names, overrides
}

func newOutput(w io.Writer, format string) (zerolog.Logger, error) {
	switch format {
	case "json":
		return zerolog.New(w).With().Timestamp().Logger(), nil
	case "console":
		return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger(), nil
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", format)
	}
}

func runUnits(cmd *cobra.Command, opts *runOptions, args []string) error {
	names, overrideArgs := splitArgs(args)
	if len(names) == 0 {
		return errNoUnits
	}
	specs := make([]unitmod.UnitSpec, 0, len(names))
	for _, name := range names {
		spec, ok := units.Lookup(name)
		if !ok {
			return fmt.Errorf("%w: %q", errUnknownUnit, name)
		}
		specs = append(specs, spec)
	}

	out, err := newOutput(cmd.ErrOrStderr(), opts.logFormat)
	if err != nil {
		return err
	}
	ring := klog.NewRing(klog.DefaultCapacity, klog.WithOutput(out))
	reg := prometheus.NewRegistry()
	host := unitmod.NewHost(unitmod.WithSink(ring), unitmod.WithMetrics(unitmod.NewMetrics(reg)))

	var sources []feeders.Feeder
	var watcher *paramwatch.Watcher
	if opts.config != "" {
		watcher, err = paramwatch.New(opts.config, host, paramwatch.WithLogger(klog.NewLogger(ring, "paramwatch")))
		if err != nil {
			return err
		}
		sources = append(sources, feederFunc(func(o feeders.Overrides) error {
			o.Merge(watcher.Initial())
			return nil
		}))
	}
	defaultUnit := ""
	if len(names) == 1 {
		defaultUnit = names[0]
	}
	sources = append(sources,
		&feeders.EnvFeeder{Prefix: opts.envPrefix},
		feeders.NewArgsFeeder(defaultUnit, overrideArgs),
	)
	overrides, err := feeders.Load(sources...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown := func() error {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return host.Close(sctx)
	}

	for _, spec := range specs {
		if _, err := host.Load(ctx, spec, overrides.For(spec.Descriptor.Name)); err != nil {
			return errors.Join(err, shutdown())
		}
	}

	if opts.once {
		host.Audit()
		return shutdown()
	}

	if opts.audit != "" {
		c := cron.New()
		if _, err := c.AddFunc(opts.audit, host.Audit); err != nil {
			return errors.Join(fmt.Errorf("audit schedule: %w", err), shutdown())
		}
		c.Start()
		defer c.Stop()
	}

	if watcher != nil && opts.watch {
		if err := watcher.Start(); err != nil {
			return errors.Join(err, shutdown())
		}
		defer watcher.Stop()
	}

	var srv *http.Server
	if opts.listen != "" {
		ln, err := net.Listen("tcp", opts.listen)
		if err != nil {
			return errors.Join(err, shutdown())
		}
		srv = &http.Server{
			Handler: paramfs.New(host,
				paramfs.WithLog(ring),
				paramfs.WithMetrics(reg),
				paramfs.WithLogger(host.Logger()),
			),
			ReadHeaderTimeout: 5 * time.Second,
		}
		host.Logger().Info("Serving parameters", "addr", ln.Addr().String())
		go func() {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				host.Logger().Error("Parameter server stopped", "error", err)
			}
		}()
	}

	<-ctx.Done()
	host.Logger().Info("Shutting down")

	var errs []error
	if srv != nil {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		errs = append(errs, srv.Shutdown(sctx))
		cancel()
	}
	errs = append(errs, shutdown())
	return errors.Join(errs...)
}

type feederFunc func(feeders.Overrides) error

func (f feederFunc) Feed(o feeders.Overrides) error { return f(o) }
