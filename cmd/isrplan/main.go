// Command isrplan is an illustrative REPL over the segmented-mission state
// machine: solve, cut, accept, replan, export, import, reset. It carries no
// planning logic of its own — every command is a thin call into package
// segment or package wire, suited to an external "agentic" collaborator that
// issues the same core operations a human would.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"

	"github.com/ksali98/isr-planner-sub001/cliconfig"
	"github.com/ksali98/isr-planner-sub001/isrcore"
	"github.com/ksali98/isr-planner-sub001/segment"
	"github.com/ksali98/isr-planner-sub001/wire"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	scenarioPath := flag.String("scenario", "", "path to a scenario JSON file (airports/targets/threats/vehicles)")
	flag.Parse()

	cfg, err := cliconfig.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "isrplan: %v\n", err)
		os.Exit(1)
	}
	_ = os.MkdirAll(cfg.CacheDir, 0755)

	if *scenarioPath == "" {
		fmt.Fprintln(os.Stderr, "isrplan: -scenario is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, os.Interrupt)
	go func() {
		<-sigCh
		cancel()
	}()

	sessionID := uuid.New().String()

	repl, err := newREPL(cfg, *scenarioPath, sessionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "isrplan: %v\n", err)
		os.Exit(1)
	}
	if err := repl.run(ctx, cfg.CacheDir); err != nil {
		fmt.Fprintf(os.Stderr, "isrplan: %v\n", err)
		cancel()
		os.Exit(1)
	}
	cancel()
}

// repl holds the session's mutable state: the machine being driven and the
// scenario it was opened against. Each command below is a thin wrapper over
// package segment/wire; the REPL adds no invariant enforcement of its own.
type repl struct {
	sessionID    string
	cfg          cliconfig.Config
	scenarioPath string
	env          *isrcore.Environment
	contracts    []isrcore.VehicleContract
	m            *segment.Machine
}

func newREPL(cfg cliconfig.Config, scenarioPath, sessionID string) (*repl, error) {
	env, contracts, err := loadScenario(scenarioPath)
	if err != nil {
		return nil, err
	}
	return &repl{
		sessionID:    sessionID,
		cfg:          cfg,
		scenarioPath: scenarioPath,
		env:          env,
		contracts:    contracts,
		m:            segment.NewMachine(),
	}, nil
}

func (r *repl) run(ctx context.Context, cacheDir string) error {
	fmt.Printf("isrplan session %s — scenario %s\n", r.sessionID, r.scenarioPath)
	fmt.Println("commands: solve | cut <dist> [threats.json] | accept | replan | export <path> | import <path> | reset | state | exit")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[36misrplan>\033[0m ",
		HistoryFile:     filepath.Join(cacheDir, "history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline init: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err != nil {
			return nil
		}
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]
		if cmd == "exit" || cmd == "quit" {
			return nil
		}
		if err := r.dispatch(ctx, cmd, args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (r *repl) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "solve", "replan":
		return r.cmdSolve(ctx)
	case "cut":
		return r.cmdCut(ctx, args)
	case "accept":
		return r.cmdAccept()
	case "export":
		return r.cmdExport(args)
	case "import":
		return r.cmdImport(args)
	case "reset":
		return r.cmdReset()
	case "state":
		r.cmdState()
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (r *repl) cmdSolve(ctx context.Context) error {
	if err := r.m.Open(ctx, r.env, r.contracts, r.cfg.Policy); err != nil {
		return fmt.Errorf("solve: %w", err)
	}
	r.printSummary()
	return nil
}

func (r *repl) cmdCut(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: cut <dist> [threats.json]")
	}
	d, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("cut: invalid distance %q: %w", args[0], err)
	}
	var nextThreats []isrcore.ThreatDisk
	if len(args) >= 2 {
		nextThreats, err = loadThreats(args[1])
		if err != nil {
			return err
		}
	}
	starts, err := r.m.Cut(ctx, d, nextThreats)
	if err != nil {
		return fmt.Errorf("cut: %w", err)
	}
	if nextThreats != nil {
		r.env.Threats = nextThreats
	}
	if r.env.SyntheticStarts == nil {
		r.env.SyntheticStarts = make(map[isrcore.NodeID]isrcore.SyntheticStart, len(starts))
	}
	for id, s := range starts {
		r.env.SyntheticStarts[id] = s
	}
	fmt.Printf("cut at %.3f: %d synthetic start(s) produced\n", d, len(starts))
	r.printSummary()
	return nil
}

func (r *repl) cmdAccept() error {
	if err := r.m.Accept(); err != nil {
		return fmt.Errorf("accept: %w", err)
	}
	r.printSummary()
	return nil
}

func (r *repl) cmdExport(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: export <path>")
	}
	msn := r.m.Mission()
	data, err := wire.Export(&msn)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := os.WriteFile(args[0], data, 0644); err != nil {
		return fmt.Errorf("export: write %s: %w", args[0], err)
	}
	fmt.Printf("exported %d segment(s) to %s\n", len(msn.Segments), args[0])
	return nil
}

func (r *repl) cmdImport(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: import <path>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("import: read %s: %w", args[0], err)
	}
	msn, err := wire.Import(data)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	// A document is loaded for inspection only: package segment has no
	// operation to resume editing an externally-constructed Mission, since
	// doing so safely would require re-deriving every Machine invariant
	// (frozenSoFar, draft/closed boundary) from data the Machine itself never
	// produced. Use `reset` to start a fresh, Machine-driven mission instead.
	fmt.Printf("imported %d segment(s), total distance %.3f\n", len(msn.Segments), msn.TotalDistance())
	return nil
}

func (r *repl) cmdReset() error {
	env, contracts, err := loadScenario(r.scenarioPath)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	r.env, r.contracts = env, contracts
	r.m = segment.NewMachine()
	fmt.Println("mission reset")
	return nil
}

func (r *repl) cmdState() {
	fmt.Printf("state: %s\n", r.m.State())
}

func (r *repl) printSummary() {
	msn := r.m.Mission()
	cur := msn.Current()
	if cur == nil {
		fmt.Println("(no segment)")
		return
	}
	fmt.Printf("segment %d  state=%s  startDist=%.3f", cur.Index, r.m.State(), cur.StartDist)
	if cur.EndDist != nil {
		fmt.Printf("  endDist=%.3f", *cur.EndDist)
	}
	fmt.Println()

	nameWidth := 0
	for id := range cur.Trajectories {
		if w := runewidth.StringWidth(string(id)); w > nameWidth {
			nameWidth = w
		}
	}
	for id, rec := range cur.Trajectories {
		pad := nameWidth - runewidth.StringWidth(string(id))
		fmt.Printf("  %s%s  delta=%.3f  fuel=%.2f\n", id, strings.Repeat(" ", pad), rec.DeltaDistance, rec.EndState.FuelRemaining)
	}
}
