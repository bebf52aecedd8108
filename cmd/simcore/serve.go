package main

import (
	"fmt"
	"net/http"

	"github.com/a2aproject/a2a-go/a2asrv"
	"github.com/spf13/cobra"

	simcore "github.com/quorumlabs/simcore"
	a2aexec "github.com/quorumlabs/simcore/a2a"
	"github.com/quorumlabs/simcore/logging"
)

var (
	serveAddr string
	serveMock bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve simulations over the A2A protocol",
	Long: `Start a JSON-RPC server that accepts A2A messages and runs each one
as a simulation. Incoming text parts become the query, data parts become
structured context; responses stream back as task status and artifact
update events.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().BoolVar(&serveMock, "mock", false, "Use the offline mock engine (no API calls)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	engine, err := buildEngine(cfg, serveMock)
	if err != nil {
		return err
	}

	logger := logging.NewSlogLogger(logging.ParseLogLevel(cfg.Logging.Level), cfg.Logging.Format, false)
	sim := simcore.New(engine, func(o *simcore.Options) {
		o.Config = cfg
		o.Registry = registryFromSpecs(nil, cfg.DefaultTeamSize)
		o.Logger = logger
	})

	executor := a2aexec.NewAgentExecutor(sim.Orchestrator())
	handler := a2asrv.NewHandler(executor)
	httpHandler := a2asrv.NewJSONRPCHandler(handler)

	mux := http.NewServeMux()
	mux.Handle("/", httpHandler)

	logger.Info("starting simulation server", "address", serveAddr)
	if err := http.ListenAndServe(serveAddr, mux); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}
