package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"instapaperkobo/internal/config"
	"instapaperkobo/internal/crypto"
	"instapaperkobo/internal/instapaper"
	"instapaperkobo/internal/logger"
	"instapaperkobo/internal/store"
)

// session bundles what every API command needs: configuration, logger,
// local state and an authenticated client.
type session struct {
	cfg    *config.Config
	log    *logger.Logger
	store  *store.Store
	client *instapaper.Client
}

func loadConfig(cmd *cobra.Command) (*config.Config, *logger.Logger, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading configuration: %w", err)
	}
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.New(level), nil
}

// openSession loads configuration, opens the state database and builds the
// client. The client is not authenticated yet.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.State.Path), 0o755); err != nil {
		return nil, fmt.Errorf("error creating state directory: %w", err)
	}
	st, err := store.Open(cfg.State.Path, cfg.Kobo.Serial)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, log: log, store: st}
	s.client, err = instapaper.NewClient(cfg.Instapaper.ConsumerKey, cfg.Instapaper.ConsumerSecret,
		instapaper.WithBaseURL(cfg.Instapaper.BaseURL),
		instapaper.WithRequestDelay(cfg.Instapaper.RequestDelay),
		instapaper.WithLogger(log.Named("instapaper")),
		instapaper.WithAuthFailureHandler(s.tokenRejected),
	)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("error creating Instapaper client: %w", err)
	}
	return s, nil
}

// authenticatedSession is openSession followed by authenticate.
func authenticatedSession(cmd *cobra.Command) (*session, error) {
	s, err := openSession(cmd)
	if err != nil {
		return nil, err
	}
	if err := s.authenticate(cmd.Context()); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.log.Warnf("Error closing state database: %v", err)
	}
	s.log.Sync()
}

// authenticate restores the cached token or logs in with the configured
// credentials and caches the new token.
func (s *session) authenticate(ctx context.Context) error {
	token, secret, err := s.store.LoadToken()
	switch {
	case err == nil:
		s.client.SetToken(token, secret)
		s.log.Debugf("Using cached access token")
		return nil
	case errors.Is(err, store.ErrNoToken):
	default:
		s.log.Warnf("Ignoring unreadable cached token: %v", err)
	}
	return s.login(ctx)
}

// tokenRejected drops a cached token the API no longer accepts, so the next
// run logs in again.
func (s *session) tokenRejected(err error) {
	if clearErr := s.store.ClearToken(); clearErr != nil {
		s.log.Errorf("Error clearing rejected access token: %v", clearErr)
	}
	s.log.Errorf("Instapaper rejected the access token (%v); run 'instapaperkobo login' or restart to log in again", err)
}

func (s *session) login(ctx context.Context) error {
	if s.cfg.Instapaper.Password == "" {
		return errors.New("instapaper.password is not set; run 'instapaperkobo encrypt' to produce it")
	}
	password, err := crypto.Decrypt(s.cfg.Instapaper.Password, s.cfg.Kobo.Serial)
	if err != nil {
		return fmt.Errorf("error decrypting Instapaper password, check that it was encrypted with this Kobo serial: %w", err)
	}

	if err := s.client.Login(ctx, s.cfg.Instapaper.Username, password); err != nil {
		return err
	}
	token, secret, _ := s.client.Token()
	if err := s.store.SaveToken(token, secret); err != nil {
		return fmt.Errorf("error caching access token: %w", err)
	}
	s.log.Infof("Logged in to Instapaper as %s", s.cfg.Instapaper.Username)
	return nil
}
