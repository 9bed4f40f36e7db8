package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/nrednav/cuid2"
	"uk.co.dudmesh.tether/internal/auth"
	"uk.co.dudmesh.tether/internal/boot"
	"uk.co.dudmesh.tether/internal/handlers"
	"uk.co.dudmesh.tether/internal/ledgerstore"
	"uk.co.dudmesh.tether/internal/notify"
	"uk.co.dudmesh.tether/internal/phrase"
	"uk.co.dudmesh.tether/internal/service/ledger"
	"uk.co.dudmesh.tether/internal/service/rendezvous"
)

func main() {
	config, err := boot.Load()
	if err != nil {
		log.Fatalf("boot: %+v", err)
	}

	store, err := ledgerstore.Open(config)
	if err != nil {
		log.Fatalf("opening ledger store: %+v", err)
	}
	defer store.Close()

	ledgerService := ledger.New(store, phrase.New())
	rendezvousService := rendezvous.New(ledgerService, config.Sonic.VisitorTimeout, config.Sonic.OperatorTimeout)
	tokens := auth.New(config.Auth.Secret)

	hub := notify.NewHub()
	go hub.Dispatch(ledgerService.Events())

	done := make(chan struct{})
	go store.Run()
	go ledgerService.Run(config.Ledger.SweepInterval, done)
	go rendezvousService.RunSonicSweep(config.Sonic.SweepInterval, done)

	server := echo.New()
	server.Use(middleware.BodyLimit("1M"))
	server.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return cuid2.Generate()
		},
	}))
	server.Use(echoprometheus.NewMiddleware("tether"))
	server.Use(middleware.Recover())

	server.Logger.SetLevel(log.INFO)

	headers := []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization}
	server.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     strings.Split(config.Server.Origins, ","),
		AllowHeaders:     headers,
		AllowCredentials: true,
	}))

	server.POST("/local/user", handlers.CreateUser(ledgerService, tokens))
	server.GET("/tap/:code", handlers.TapLanding(rendezvousService))
	server.POST("/tap/:code", handlers.TapPair(rendezvousService))

	authed := server.Group("", handlers.Authenticated(tokens))
	authed.POST("/pair/code", handlers.StartCodeSession(rendezvousService))
	authed.POST("/pair/code/join", handlers.JoinCodeSession(rendezvousService))
	authed.POST("/sonic/join", handlers.SonicJoin(rendezvousService))
	authed.POST("/sonic/report", handlers.SonicReport(rendezvousService))
	authed.DELETE("/sonic", handlers.SonicLeave(rendezvousService))
	authed.GET("/user/:id/stats", handlers.GetStats(ledgerService))
	authed.GET("/user/:id/encounters", handlers.GetEncounters(ledgerService))
	authed.GET("/user/:id/streak", handlers.GetStreak(ledgerService))
	authed.GET("/user/:id/reveal", handlers.GetRevealed(ledgerService))
	authed.POST("/reveal/direct", handlers.DirectReveal(ledgerService))
	authed.POST("/reveal/request", handlers.RequestReveal(ledgerService))
	authed.POST("/reveal/request/:id/accept", handlers.AcceptRevealRequest(ledgerService))
	authed.POST("/reveal/request/:id/decline", handlers.DeclineRevealRequest(ledgerService))
	authed.POST("/stars/donate", handlers.DonateStar(ledgerService))
	authed.POST("/encounter/:id/tip", handlers.AnnotateTip(ledgerService))
	authed.GET("/events", handlers.StreamEvents(hub))

	go func() {
		metrics := echo.New()
		metrics.GET("/metrics", echoprometheus.NewHandler())
		if err := metrics.Start(":" + config.Server.MetricsPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	go func() {
		if err := server.Start(":" + config.Server.Port); err != nil && err != http.ErrServerClosed {
			server.Logger.Fatal("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	close(done)
	ledgerService.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		server.Logger.Fatal(err)
	}
}
