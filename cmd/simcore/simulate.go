package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	simcore "github.com/quorumlabs/simcore"
	"github.com/quorumlabs/simcore/core"
	"github.com/quorumlabs/simcore/logging"
	"github.com/quorumlabs/simcore/model"
	"github.com/quorumlabs/simcore/registry"
	"github.com/quorumlabs/simcore/team"
)

var (
	simContext     string
	simModel       string
	simTemperature float64
	simMaxDepth    int
	simAgents      string
	simFormation   string
	simTeamSize    int
	simSequential  bool
	simMock        bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <query>",
	Short: "Run one simulation for a query",
	Long: `Run one simulation for a query and print the aggregated response.

Agent specifications use the form name, name:count or name:count:policy,
separated by commas. Policy is one of may, must or must_not and controls
whether that agent may recursively form a sub-team:

  simulate "Assess the proposal" --agents reviewer:2:may,skeptic:1:must_not

Without --agents the request runs as a single agent with policy may. A
single agent with policy must_not executes directly against the reasoning
engine without any team formation.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&simContext, "context", "", "Additional free-form context for the query")
	simulateCmd.Flags().StringVar(&simModel, "model", "", "Model id override for this request")
	simulateCmd.Flags().Float64Var(&simTemperature, "temperature", -1, "Sampling temperature override (0.0-2.0)")
	simulateCmd.Flags().IntVar(&simMaxDepth, "max-depth", 0, "Maximum recursion depth (defaults from config)")
	simulateCmd.Flags().StringVar(&simAgents, "agents", "", "Agent specs: name, name:count or name:count:policy, comma-separated")
	simulateCmd.Flags().StringVar(&simFormation, "formation", "random", "Team formation for recursion: random, round_robin or homogeneous")
	simulateCmd.Flags().IntVar(&simTeamSize, "team-size", 0, "Members per recursively formed team (defaults from config)")
	simulateCmd.Flags().BoolVar(&simSequential, "sequential", false, "Run agent executions sequentially instead of concurrently")
	simulateCmd.Flags().BoolVar(&simMock, "mock", false, "Use the offline mock engine (no API calls)")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if simTeamSize > 0 {
		cfg.DefaultTeamSize = simTeamSize
	}

	engine, err := buildEngine(cfg, simMock)
	if err != nil {
		return err
	}

	formation, err := team.ParseFormationStrategy(simFormation)
	if err != nil {
		return err
	}

	req, err := buildRequest(args[0])
	if err != nil {
		return err
	}

	sim := simcore.New(engine, func(o *simcore.Options) {
		o.Config = cfg
		o.Registry = registryFromSpecs(req.Agents, cfg.DefaultTeamSize)
		o.TeamFormation = formation
		o.Sequential = simSequential
		o.Logger = logging.NewSlogLogger(logging.ParseLogLevel(cfg.Logging.Level), cfg.Logging.Format, false)
	})

	out, err := sim.ProcessUserRequest(cmd.Context(), req)
	if err != nil {
		return err
	}

	printOutput(out)
	return nil
}

func buildRequest(query string) (*core.UserRequest, error) {
	b := core.NewUserRequestBuilder().Query(query)
	if simContext != "" {
		b.Context(simContext)
	}
	if simModel != "" || simTemperature >= 0 {
		var temp *float64
		if simTemperature >= 0 {
			temp = &simTemperature
		}
		b.Model(simModel, temp)
	}
	if simMaxDepth > 0 {
		b.MaxDepth(simMaxDepth)
	}
	if simAgents != "" {
		b.ParseAgents(simAgents)
	}
	return b.Build()
}

// registryFromSpecs seeds the capability directory with one descriptor per
// named agent spec so persona lookups and recursive team formation have
// identities to draw from. Without named specs it seeds generic members so
// MAY/MUST policies can still form a full team.
func registryFromSpecs(specs []core.AgentSpec, teamSize int) *registry.InMemoryRegistry {
	r := registry.NewInMemoryRegistry()
	named := 0
	for _, spec := range specs {
		if spec.Name == "" {
			continue
		}
		named++
		r.Register(core.AgentDescriptor{
			Name:    spec.Name,
			Persona: &core.Persona{Name: spec.Name, Role: spec.Name},
		})
	}
	for i := named; i < teamSize; i++ {
		name := fmt.Sprintf("member-%d", i+1)
		r.Register(core.AgentDescriptor{Name: name})
	}
	return r
}

func printOutput(out *core.SimulationOutput) {
	fmt.Printf("context:    %s\n", out.ContextID)
	fmt.Printf("state:      %s\n", out.FinalState)
	fmt.Printf("team size:  %d\n", out.TeamSize)
	fmt.Printf("depth:      %d\n", out.RecursionDepth)
	fmt.Printf("took:       %s\n", out.TotalTime)

	var strategies []string
	for _, s := range out.Strategies {
		strategies = append(strategies, s.String())
	}
	fmt.Printf("strategies: %s\n", strings.Join(strategies, ", "))

	fmt.Println()
	fmt.Println(model.MessageText(out.ResponseMessage))
}
