package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	logAdapter "github.com/bft-labs/herald/internal/adapters/log"
	"github.com/bft-labs/herald/internal/cliconfig"
	"github.com/bft-labs/herald/pkg/herald"
)

const helpDescription = `
Send WhatsApp template messages to a CSV lead list.

Highlights:
  - Skips every phone already in the sent ledger, so reruns only reach new leads.
  - Rotates the profile's templates across recipients.
  - Optional URL button parameters built from the OTP, a CSV column or a literal.
  - Configure via $HOME/.herald/config.toml, .env, HERALD_* variables or flags.
`

var exampleUsage = strings.TrimSpace(`
  herald profile add --name main --phone-number-id 1234 --token <token> --templates welcome,promo
  herald send --profile main --leads 100k.csv --workers 4
  herald send --profile main --url-param otp --url-param col:nome --random
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath, envPath string

	root := &cobra.Command{
		Use:           "herald",
		Short:         "Bulk WhatsApp template dispatcher",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.herald/config.toml)")
	root.PersistentFlags().StringVar(&envPath, "env-file", ".env", "path to a .env file loaded before HERALD_* variables")
	root.PersistentFlags().StringVar(&cfg.ProfilesPath, "profiles", cfg.ProfilesPath, "profile store (.json, .yaml or .yml)")
	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	// loadConfig layers file, .env and environment under the flags that
	// were set explicitly.
	loadConfig := func(cmd *cobra.Command) error {
		cfgFile := cfgPath
		if cfgFile == "" {
			cfgFile = cliconfig.DefaultConfigPath()
		}

		changed := map[string]bool{}
		cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

		if cfgFile != "" && cliconfig.FileExists(cfgFile) {
			fc, err := cliconfig.LoadFileConfig(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
				return err
			}
		}
		if err := cliconfig.LoadDotEnv(envPath); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
		if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
			return err
		}
		return cfg.Validate()
	}

	send := &cobra.Command{
		Use:   "send",
		Short: "Dispatch the profile's templates to every lead not yet in the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd); err != nil {
				return err
			}
			log := cliconfig.Logger(cfg.LogLevel)
			log.Info().Interface("config", cfg).Msg("configuration")

			libCfg := herald.Config{
				ProfilesPath:  cfg.ProfilesPath,
				Profile:       cfg.Profile,
				LeadsPath:     cfg.LeadsPath,
				PhoneColumn:   cfg.PhoneColumn,
				MessageColumn: cfg.MessageColumn,
				LedgerDriver:  cfg.LedgerDriver,
				LedgerPath:    cfg.LedgerPath,
				Language:      cfg.Language,
				Workers:       cfg.Workers,
				Shuffle:       cfg.Random,
				RecordSends:   cfg.RecordSends(),
				Preflight:     cfg.Preflight,
				RatePerSecond: cfg.RatePerSecond,
				BaseURL:       cfg.BaseURL,
				APIVersion:    cfg.APIVersion,
				ProxyURL:      cfg.ProxyURL,
				HTTPTimeout:   cfg.HTTPTimeout,
			}
			if cfg.UseURLButton {
				libCfg.Button = &herald.ButtonConfig{Index: cfg.ButtonIndex, Params: cfg.URLParams}
			}
			if cfg.Random {
				log.Warn().Msg("random mode: successful sends will not be recorded")
			}

			d, err := herald.New(libCfg, herald.WithLogger(logAdapter.NewZerologAdapterWithLogger(log)))
			if err != nil {
				return fmt.Errorf("create dispatcher: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			res, err := d.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d sent, %d failed (%d provider, %d transport, %d build), %d skipped (%s)\n",
				res.RunID,
				res.Summary.Succeeded,
				res.Summary.Failed(),
				res.Summary.ProviderFailed,
				res.Summary.TransportFailed,
				res.Summary.BuildFailed,
				res.Skipped,
				res.Summary.Duration.Round(time.Millisecond),
			)
			return nil
		},
	}

	flags := send.Flags()
	registerSendFlags(flags, &cfg)
	if err := flags.MarkHidden("base-url"); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	root.AddCommand(send, profileCommand(&cfg, loadConfig))

	if err := root.Execute(); err != nil {
		log := cliconfig.Logger(cfg.LogLevel)
		if errors.Is(err, herald.ErrConfiguration) {
			log.Error().Err(err).Msg("invalid configuration")
			os.Exit(2)
		}
		log.Error().Err(err).Msg("herald")
		os.Exit(1)
	}
}

func profileCommand(cfg *cliconfig.Config, loadConfig func(*cobra.Command) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage sender profiles",
	}

	var p herald.Profile
	add := &cobra.Command{
		Use:   "add",
		Short: "Add or replace a profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd); err != nil {
				return err
			}
			if len(p.Templates) == 0 {
				return herald.ErrNoTemplates
			}
			if err := herald.SaveProfile(cmd.Context(), cfg.ProfilesPath, p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved profile %q to %s\n", p.Name, cfg.ProfilesPath)
			return nil
		},
	}
	add.Flags().StringVar(&p.Name, "name", "", "profile name")
	add.Flags().StringVar(&p.PhoneNumberID, "phone-number-id", "", "provider phone number id")
	add.Flags().StringVar(&p.AccessToken, "token", "", "provider access token")
	add.Flags().StringSliceVar(&p.Templates, "templates", nil, "template names in rotation order")
	add.Flags().StringVar(&p.Namespace, "namespace", "", "template namespace (optional)")
	for _, name := range []string{"name", "phone-number-id", "token", "templates"} {
		if err := add.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd); err != nil {
				return err
			}
			profiles, err := herald.LoadProfiles(cmd.Context(), cfg.ProfilesPath)
			if err != nil {
				return err
			}
			names := make([]string, 0, len(profiles))
			for name := range profiles {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				pr := profiles[name]
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tphone_number_id=%s\ttemplates=%s\n",
					name, pr.PhoneNumberID, strings.Join(pr.Templates, ","))
			}
			return nil
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

// registerSendFlags binds the send flags to cfg. --url-param is an array
// flag so a literal may contain commas.
func registerSendFlags(flags *pflag.FlagSet, cfg *cliconfig.Config) {
	flags.StringVar(&cfg.Profile, "profile", cfg.Profile, "profile name (optional when only one is stored)")
	flags.StringVar(&cfg.LeadsPath, "leads", cfg.LeadsPath, "CSV lead list")
	flags.StringVar(&cfg.PhoneColumn, "phone-column", cfg.PhoneColumn, "CSV column holding the phone")
	flags.StringVar(&cfg.MessageColumn, "message-column", cfg.MessageColumn, "CSV column holding the body value")
	flags.StringVar(&cfg.LedgerDriver, "ledger-driver", cfg.LedgerDriver, "sent ledger backend (file or sqlite)")
	flags.StringVar(&cfg.LedgerPath, "ledger", cfg.LedgerPath, "sent ledger path (default sent_log.csv, or sent_log.db for sqlite)")
	flags.StringVar(&cfg.Language, "lang", cfg.Language, "template language code")
	flags.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent sends")
	flags.Float64Var(&cfg.RatePerSecond, "rate", cfg.RatePerSecond, "maximum sends per second (0 disables pacing)")
	flags.BoolVar(&cfg.Random, "random", cfg.Random, "shuffle leads and do not record sends")
	flags.BoolVar(&cfg.NoRecord, "no-record", cfg.NoRecord, "do not record successful sends")
	flags.BoolVar(&cfg.Preflight, "preflight", cfg.Preflight, "send the first item once before the bulk phase")
	flags.BoolVar(&cfg.UseURLButton, "use-url-button", cfg.UseURLButton, "add the URL button component")
	flags.IntVar(&cfg.ButtonIndex, "button-index", cfg.ButtonIndex, "URL button index")
	flags.StringArrayVar(&cfg.URLParams, "url-param", cfg.URLParams, "URL button parameter: otp, col:<name> or lit:<value> (repeatable)")
	flags.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "provider base URL")
	flags.StringVar(&cfg.APIVersion, "api-version", cfg.APIVersion, "provider API version")
	flags.BoolVar(&cfg.Tor, "tor", cfg.Tor, "route requests through the local Tor SOCKS proxy")
	flags.StringVar(&cfg.ProxyURL, "proxy", cfg.ProxyURL, "SOCKS5 proxy URL")
	flags.DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "per-request HTTP timeout")
}
