package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sarchlab/pipeviz/log"
	"github.com/sarchlab/pipeviz/playback"
	"github.com/sarchlab/pipeviz/session"
	"github.com/sarchlab/pipeviz/web"
)

func runWeb(ctx context.Context, eng session.Engine, addr, text string,
	logger log.Logger, opts []session.Option) int {
	loop := playback.NewLoop(64)
	hub := web.NewHub(loop, web.WithLogger(logger))
	sess := session.New(eng, loop, hub, opts...)
	hub.Bind(sess)

	go func() { _ = loop.Run(ctx) }()
	go func() { _ = hub.Run(ctx) }()

	if text != "" {
		loop.Post(func() {
			hub.SetSource(text)
			sess.Execute(text, *forwarding)
		})
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Infof("web: listening on %s", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Errorf("web: %v", err)
		return 1
	}
	return 0
}
