package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"roombook/client"
	"roombook/internal/config"
	"roombook/internal/repository"
	"roombook/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configFile string
	baseURL    string
	debug      bool
)

func main() {
	cmd := NewRootCmd()
	err := cmd.Execute()
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the roomctl command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "roomctl",
		Short:        "Command line client for the meeting-room booking service",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.InitLogger("cli")
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default: config.yaml in . or ./config)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Backend base URL, overrides client.base_url")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Log every request and response")

	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newRefreshCmd())
	rootCmd.AddCommand(newRegisterCaptchaCmd())
	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newPasswordCaptchaCmd())
	rootCmd.AddCommand(newUpdatePasswordCmd())
	rootCmd.AddCommand(newInfoCmd())
	rootCmd.AddCommand(newUpdateCaptchaCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newRoomsCmd())
	rootCmd.AddCommand(newBookingsCmd())
	rootCmd.AddCommand(newBookCmd())
	rootCmd.AddCommand(newUnbindCmd())

	return rootCmd
}

// session is a configured client plus whatever it holds open.
type session struct {
	*client.Client
	loc      *time.Location
	redirect *terminalNavigator
	close    func()
}

// openSession loads the config and builds a client around the configured
// credential store.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if baseURL != "" {
		cfg.Client.BaseURL = baseURL
	}
	loc, err := cfg.Client.Location()
	if err != nil {
		return nil, fmt.Errorf("client timezone: %w", err)
	}

	store, closeStore, err := credentialStore(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}

	nav := &terminalNavigator{out: cmd.ErrOrStderr(), done: make(chan struct{}, 1)}
	c, err := client.New(cfg.Client.BaseURL,
		client.WithTimeout(cfg.Client.Timeout),
		client.WithCredentialStore(store),
		client.WithNotifier(client.NotifierFunc(func(msg string) {
			fmt.Fprintln(cmd.ErrOrStderr(), "error:", msg)
		})),
		client.WithNavigator(nav),
		client.WithRedirectDelay(cfg.Client.RedirectDelay),
		client.WithLoginPath(cfg.Client.LoginPath),
		client.WithLocation(loc),
		client.WithDebug(debug || cfg.Client.Debug),
	)
	if err != nil {
		closeStore()
		return nil, err
	}
	logger.Debug("client ready",
		zap.String("base_url", cfg.Client.BaseURL),
		zap.String("credentials", cfg.Credentials.Backend))
	return &session{Client: c, loc: loc, redirect: nav, close: closeStore}, nil
}

func credentialStore(ctx context.Context, cfg *config.Config) (client.CredentialStore, func(), error) {
	switch cfg.Credentials.Backend {
	case config.BackendMemory:
		return client.NewMemoryStore(), func() {}, nil
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("credential redis: %w", err)
		}
		return repository.NewCredentialRepository(rdb, cfg.Credentials.KeyPrefix), func() { rdb.Close() }, nil
	default:
		path := cfg.Credentials.Path
		if path == "" {
			dir, err := os.UserConfigDir()
			if err != nil {
				return nil, nil, fmt.Errorf("locate credentials file: %w", err)
			}
			path = filepath.Join(dir, "roombook", "credentials.json")
		}
		return client.NewFileStore(path), func() {}, nil
	}
}

// terminalNavigator cannot open a page, so it tells the user how to get one.
type terminalNavigator struct {
	out  io.Writer
	done chan struct{}
}

func (n *terminalNavigator) Navigate(path string) {
	fmt.Fprintf(n.out, "session ended (%s), run `roomctl login` to sign in again\n", path)
	select {
	case n.done <- struct{}{}:
	default:
	}
}

// run executes fn against a fresh session. When the session is terminated it
// waits for the scheduled redirect so the hint is printed before exit.
func run(cmd *cobra.Command, fn func(ctx context.Context, s *session) (any, error)) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	ctx := cmd.Context()
	out, err := fn(ctx, s)
	if err != nil {
		if client.IsSessionTerminated(err) {
			select {
			case <-s.redirect.done:
			case <-time.After(5 * time.Second):
			}
		}
		return err
	}
	if out == nil {
		return nil
	}
	return printJSON(cmd.OutOrStdout(), out)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
