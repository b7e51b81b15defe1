package main

import (
	"time"

	"github.com/innovadoor/sitemeasure/internal/api"
	"github.com/innovadoor/sitemeasure/internal/session"
	"github.com/innovadoor/sitemeasure/internal/store"
)

// openBackend returns the HTTP client when an API URL is configured and the
// local store otherwise. The returned func releases it.
func (a *app) openBackend(dbPath string) (session.Backend, func(), error) {
	if a.cfg.APIURL != "" {
		c := api.NewClient(api.ClientConfig{
			BaseURL: a.cfg.APIURL,
			Token:   a.cfg.APIToken,
			Timeout: time.Duration(a.cfg.HTTPTimeout) * time.Second,
			Logger:  a.logger,
		})
		a.logger.Debug("using remote backend")
		return c, func() {}, nil
	}

	st, err := a.openStore(dbPath)
	if err != nil {
		return nil, nil, err
	}
	return st, func() { _ = st.Close() }, nil
}

func (a *app) openStore(dbPath string) (*store.Store, error) {
	if dbPath == "" {
		dbPath = a.cfg.DBPath
	}
	return store.Open(dbPath, a.logger)
}
