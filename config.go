/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Seednode/scorebox/kv"
	"github.com/Seednode/scorebox/scoreboard"
)

const minSessionTimeout = time.Second

type Config struct {
	bind           string
	data           string
	port           int
	prefix         string
	profile        bool
	sessionTimeout time.Duration
	storage        string
	storageKey     string
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.sessionTimeout < 0 || (c.sessionTimeout > 0 && c.sessionTimeout < minSessionTimeout) {
		return fmt.Errorf("invalid session timeout (must be 0 or at least %s): %s", minSessionTimeout, c.sessionTimeout)
	}
	switch c.storage {
	case kv.BackendMemory, kv.BackendFile, kv.BackendSQLite:
	default:
		return fmt.Errorf("invalid storage backend (must be one of memory, file, sqlite): %q", c.storage)
	}
	if strings.TrimSpace(c.storageKey) == "" {
		return errors.New("--storage-key must not be empty")
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// storagePath resolves --data for the chosen backend: a directory for the
// file backend, a database file for sqlite.
func (c *Config) storagePath() string {
	if c.storage == kv.BackendSQLite && filepath.Ext(c.data) == "" {
		return filepath.Join(c.data, "scorebox.db")
	}
	return c.data
}

func (c *Config) openStore() (kv.Store, error) {
	return kv.Open(c.storage, c.storagePath())
}

// gameKey is the storage slot for one browser game.
func (c *Config) gameKey(gameID string) string {
	return c.storageKey + "/" + gameID
}

func bindEnv(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func normalize(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("SCOREBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "scorebox",
		Short:         "A score sheet for card and board games, served as a small webapp.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			bindEnv(v, cmd.Root().PersistentFlags())
			bindEnv(v, cmd.Flags())
			return cfg.validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	pfs := cmd.PersistentFlags()
	pfs.SetNormalizeFunc(normalize)

	pfs.StringVarP(&cfg.data, "data", "d", "scorebox-data", "directory (file) or database path (sqlite) for saved score sheets (env: SCOREBOX_DATA)")
	pfs.StringVar(&cfg.storage, "storage", kv.BackendFile, "where score sheets are saved: memory, file or sqlite (env: SCOREBOX_STORAGE)")
	pfs.StringVar(&cfg.storageKey, "storage-key", scoreboard.DefaultKey, "name of the storage slot score sheets are saved under (env: SCOREBOX_STORAGE_KEY)")
	pfs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: SCOREBOX_VERBOSE)")
	pfs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: SCOREBOX_VERSION)")

	fs := cmd.Flags()
	fs.SetNormalizeFunc(normalize)

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: SCOREBOX_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: SCOREBOX_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: SCOREBOX_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: SCOREBOX_PROFILE)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle score sheets are unloaded from memory (env: SCOREBOX_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: SCOREBOX_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: SCOREBOX_TLS_KEY)")

	cmd.AddCommand(newPlayCmd(cfg))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("scorebox v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
