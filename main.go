package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/formdesk/formdesk/app"
	"github.com/formdesk/formdesk/builder"
	"github.com/formdesk/formdesk/config"
	"github.com/formdesk/formdesk/database"
	"github.com/formdesk/formdesk/httpx"
	"github.com/formdesk/formdesk/log"
	"github.com/formdesk/formdesk/routes"
	"github.com/formdesk/formdesk/store"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	forms := store.New(db)
	saver := builder.NewSaver(cfg.SaveDebounce, forms.SaveForm)
	sessions := builder.NewRegistry(forms, saver)
	defer sessions.CloseAll()

	app := app.App{
		BearerServer: httpx.NewBearerServer(db, cfg),
		Config:       cfg,
		Store:        forms,
		Sessions:     sessions,
	}

	handler := routes.Wire(app)

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
