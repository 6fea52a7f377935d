package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thanhnp/degreechain/internal/config"
	"github.com/thanhnp/degreechain/internal/ledger"
	"github.com/thanhnp/degreechain/internal/storage"
)

// app carries what every subcommand needs once flags are parsed
type app struct {
	v   *viper.Viper
	cfg *config.Config
}

func newRootCmd(a *app) *cobra.Command {
	if a.v == nil {
		a.v = viper.New()
	}

	rootCmd := &cobra.Command{
		Use:   "degreechain",
		Short: "Degree issuance ledger",
		Long: `degreechain records academic degrees in a hash-chained, proof-of-work
sealed ledger and verifies them against it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "config.yaml", "Path to configuration file")
	flags.String("data-file", "", "Ledger state file (or database directory for the pebble store)")
	flags.Int("difficulty", ledger.DefaultDifficulty, "Number of leading zeros required on block hashes")
	flags.String("store", "", "Storage backend: file or pebble")

	_ = a.v.BindPFlag("config", flags.Lookup("config"))
	_ = a.v.BindPFlag("storage.path", flags.Lookup("data-file"))
	_ = a.v.BindPFlag("ledger.difficulty", flags.Lookup("difficulty"))
	_ = a.v.BindPFlag("storage.backend", flags.Lookup("store"))

	rootCmd.AddCommand(
		a.addDegreeCmd(),
		a.addBulkCmd(),
		a.mineCmd(),
		a.verifyCmd(),
		a.studentInfoCmd(),
		a.infoCmd(),
		a.validateCmd(),
		a.displayCmd(),
		a.generateQRCmd(),
		a.serveCmd(),
	)

	return rootCmd
}

// loadConfig reads the YAML file, then lets flags given on the command line
// win over it
func (a *app) loadConfig() error {
	cfg, err := config.Load(a.v.GetString("config"))
	if err != nil {
		return err
	}

	if a.v.IsSet("storage.path") {
		cfg.Storage.Path = a.v.GetString("storage.path")
	}
	if a.v.IsSet("storage.backend") {
		cfg.Storage.Backend = a.v.GetString("storage.backend")
	}
	if a.v.IsSet("ledger.difficulty") {
		cfg.Ledger.Difficulty = a.v.GetInt("ledger.difficulty")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := setupLogger(cfg.Log); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// openLedger opens the configured store and loads the ledger from it. The
// caller closes the ledger. A store that cannot be opened at all is a
// configuration error and aborts the command; only stores that open but
// hold unreadable state fall back to a fresh genesis block.
func (a *app) openLedger(reg prometheus.Registerer) (*ledger.Ledger, error) {
	store, err := storage.Open(a.cfg.Storage.Backend, a.cfg.Storage.Path)
	if err != nil {
		return nil, err
	}

	opts := ledger.Options{
		Difficulty: a.cfg.Ledger.Difficulty,
		Workers:    a.cfg.Ledger.Workers,
		Store:      store,
	}
	if reg != nil {
		opts.Metrics = ledger.NewMetrics(reg)
	}

	l, err := ledger.New(opts)
	if err != nil {
		store.Close()
		return nil, err
	}
	return l, nil
}
