// Command server runs the thin HTTP ingestion surface: job creation,
// status, cancellation, and voice-reference registration. Everything
// domain-specific lives in the cpu/gpu Temporal workers (C3–C5).
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rakshabesafe/ppttovideo/internal/app"
	"github.com/rakshabesafe/ppttovideo/internal/httpapi"
	"github.com/rakshabesafe/ppttovideo/internal/orchestration/cancel"
	"github.com/rakshabesafe/ppttovideo/internal/platform/config"
	"github.com/rakshabesafe/ppttovideo/internal/platform/shutdown"
)

func main() {
	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	cancelSvc := cancel.New(a.Jobs, a.Tasks, a.Report, a.Broker, a.Log)

	router := httpapi.NewRouter(httpapi.RouterConfig{
		JobHandler:    httpapi.NewJobHandler(a.Jobs, a.Broker, cancelSvc),
		VoiceHandler:  httpapi.NewVoiceHandler(a.Voices),
		StatusHandler: httpapi.NewStatusHandler(a.Tasks, a.Broker),
	})

	addr := ":" + config.String("PORT", "8080")
	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		a.Log.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Log.Fatal("http server failed", "error", err)
		}
	}()

	<-ctx.Done()
	a.Log.Info("server shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.Log.Warn("server shutdown error", "error", err)
	}
}
