package main

import (
	"errors"
	"net/http"
	"time"

	"meeple-cli/internal/api"
	"meeple-cli/internal/engine"
)

func serveMain(args []string) {
	fs, cli := newFlagSet("meeple-cli serve")
	var listen string
	fs.StringVar(&listen, "listen", "", "Listen address (default from config)")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parse args: %v", err)
	}

	app, cleanup := mustApp(cli)
	defer cleanup()

	addr := listen
	if addr == "" {
		addr = app.cfg.ListenAddr
	}

	handler := api.NewHandler(func() *engine.Runner {
		return app.newRunner(nil)
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Infof("listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server exit: %v", err)
	}
}
