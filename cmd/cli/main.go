package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/sanvivo/price-dashboard/config"
	"github.com/sanvivo/price-dashboard/internal/dashboard"
	"github.com/sanvivo/price-dashboard/internal/gateway"
	"github.com/sanvivo/price-dashboard/internal/groups"
	"github.com/sanvivo/price-dashboard/internal/metrics"
	"github.com/sanvivo/price-dashboard/internal/storage"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *zerolog.Logger
	app     *application
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Sanvivo price dashboard - competitor price monitoring from the terminal",
	Long: `A CLI for the medical-cannabis price dashboard. It reads current and
historical price snapshots from the pricing API, filters them by price changes,
pharmacy and product group, manages locally saved product groups, and exports
the visible table as CSV or XLSX.`,
	PersistentPreRunE:  persistentPreRun,
	PersistentPostRunE: persistentPostRun,
	SilenceUsage:       true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Prices are written as JSON numbers, matching the API.
	decimal.MarshalJSONWithoutQuotes = true

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml or ./config.yaml)")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
	}
}

// application wires the dashboard core for one command invocation
type application struct {
	storage storage.Storage
	store   *groups.Store
	saves   *savingStore
	runtime *dashboard.Runtime
}

// savingStore remembers the outcome of the last save so one-shot commands
// can report a lost change.
type savingStore struct {
	*groups.Store
	err error
}

func (s *savingStore) Save(ctx context.Context, c groups.Collection) error {
	s.err = s.Store.Save(ctx, c)
	return s.err
}

func newApplication(s storage.Storage, gw dashboard.Gateway, designated []string, recorder *metrics.Recorder, logger *zerolog.Logger) *application {
	store := groups.NewStore(s, recorder, logger)
	saves := &savingStore{Store: store}
	return &application{
		storage: s,
		store:   store,
		saves:   saves,
		runtime: dashboard.NewRuntime(
			dashboard.Initial(designated),
			gw,
			saves,
			dashboard.WithMetrics(recorder),
			dashboard.WithLogger(logger),
		),
	}
}

// persistentPreRun runs before each command and initializes dependencies
func persistentPreRun(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}
	if cfg == nil {
		return fmt.Errorf("config required for %s command but not loaded", cmd.Name())
	}

	logger = initLogger()

	s, err := storage.New(storage.StorageType(cfg.Storage.Type), cfg.Storage.BasePath)
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}

	recorder := metrics.NewRecorder()
	gw := gateway.New(cfg.GatewayConfig(), gateway.WithMetrics(recorder), gateway.WithLogger(logger))
	app = newApplication(s, gw, cfg.Filter.DesignatedPharmacies, recorder, logger)
	return nil
}

func persistentPostRun(cmd *cobra.Command, args []string) error {
	if app == nil {
		return nil
	}
	app.runtime.Wait()
	if closer, ok := app.storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// loadGroups loads saved groups without touching the network
func (a *application) loadGroups(ctx context.Context) dashboard.State {
	s, _ := a.runtime.Dispatch(dashboard.GroupsLoaded{Groups: a.store.Load(ctx)})
	return s
}

// dispatch applies an action and turns a refusal into an error
func (a *application) dispatch(action dashboard.Action) (dashboard.State, error) {
	s, effects := a.runtime.Dispatch(action)
	if msg, rejected := dashboard.IsRejected(effects); rejected {
		return s, fmt.Errorf("%s", msg)
	}
	return s, nil
}

// fetch runs a fetch action to completion and reports the dashboard error
func (a *application) fetch(action dashboard.Action) (dashboard.State, error) {
	a.runtime.Dispatch(action)
	a.runtime.Wait()
	s := a.runtime.State()
	if s.Error != "" {
		return s, fmt.Errorf("%s", s.Error)
	}
	return s, nil
}

func initLogger() *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if cfg != nil && cfg.Logging.Level != "" {
		if parsedLevel, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
			level = parsedLevel
		}
	}

	// Logs go to stderr so table and JSON output stay pipeable
	var output io.Writer
	if cfg != nil && cfg.Logging.Format == "json" {
		output = os.Stderr
	} else {
		noColor := false
		if cfg != nil {
			noColor = cfg.Logging.NoColor
		}
		output = zerolog.ConsoleWriter{Out: os.Stderr, NoColor: noColor}
	}

	log := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return &log
}

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
