package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ksali98/isr-planner-sub001/isrcore"
)

// scenarioDoc is the on-disk input format for an isrplan session: the initial
// environment snapshot plus the vehicle contracts to solve it with. This is
// distinct from package wire's mission document — wire round-trips a
// *committed* Mission's segments, while a scenario is the solve *input* an
// operator hands the REPL to start a fresh run.
type scenarioDoc struct {
	Airports []struct {
		ID string  `json:"id"`
		X  float64 `json:"x"`
		Y  float64 `json:"y"`
	} `json:"airports"`
	Targets []struct {
		ID       string  `json:"id"`
		X        float64 `json:"x"`
		Y        float64 `json:"y"`
		Priority int     `json:"priority"`
		Type     string  `json:"type"`
	} `json:"targets"`
	Threats []struct {
		ID     string  `json:"id"`
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Radius float64 `json:"radius"`
	} `json:"threats"`
	Vehicles []struct {
		ID         string  `json:"id"`
		Enabled    bool    `json:"enabled"`
		FuelBudget float64 `json:"fuel_budget"`
		Start      string  `json:"start"`
		End        string  `json:"end"`
	} `json:"vehicles"`
}

// loadScenario reads path and builds the environment/contracts it describes.
func loadScenario(path string) (*isrcore.Environment, []isrcore.VehicleContract, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("isrplan: read scenario %s: %w", path, err)
	}
	var doc scenarioDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("isrplan: parse scenario %s: %w", path, err)
	}

	env := &isrcore.Environment{}
	for _, a := range doc.Airports {
		env.Airports = append(env.Airports, isrcore.Airport{ID: isrcore.NodeID(a.ID), Pos: isrcore.Point{X: a.X, Y: a.Y}})
	}
	for _, t := range doc.Targets {
		env.Targets = append(env.Targets, isrcore.Target{ID: isrcore.NodeID(t.ID), Pos: isrcore.Point{X: t.X, Y: t.Y}, Priority: t.Priority, Type: t.Type})
	}
	for _, th := range doc.Threats {
		env.Threats = append(env.Threats, isrcore.ThreatDisk{ID: th.ID, Center: isrcore.Point{X: th.X, Y: th.Y}, Radius: th.Radius})
	}

	contracts := make([]isrcore.VehicleContract, len(doc.Vehicles))
	for i, v := range doc.Vehicles {
		end := isrcore.NodeID(v.End)
		mode := isrcore.EndReturn
		if end != "" && end != isrcore.NodeID(v.Start) {
			mode = isrcore.EndFixed
		}
		contracts[i] = isrcore.VehicleContract{
			ID:          isrcore.NodeID(v.ID),
			Enabled:     v.Enabled,
			FuelBudget:  v.FuelBudget,
			Start:       isrcore.NodeID(v.Start),
			End:         end,
			EndMode:     mode,
			Eligibility: isrcore.AllEligibility(),
		}
	}

	if err := env.Validate(); err != nil {
		return nil, nil, fmt.Errorf("isrplan: invalid scenario environment: %w", err)
	}
	return env, contracts, nil
}

// loadThreats reads a standalone JSON array of threat disks, for the `cut`
// command's optional next-segment threat update.
func loadThreats(path string) ([]isrcore.ThreatDisk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("isrplan: read threats %s: %w", path, err)
	}
	var raw []struct {
		ID     string  `json:"id"`
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Radius float64 `json:"radius"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("isrplan: parse threats %s: %w", path, err)
	}
	out := make([]isrcore.ThreatDisk, len(raw))
	for i, th := range raw {
		out[i] = isrcore.ThreatDisk{ID: th.ID, Center: isrcore.Point{X: th.X, Y: th.Y}, Radius: th.Radius}
	}
	return out, nil
}
