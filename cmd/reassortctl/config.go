package main

import (
	"encoding/json"
	"fmt"
	"os"

	"reassort/internal/evo"
	reassortapi "reassort/pkg/reassort"
)

// fileRunRequest is a run request read from a JSON config file. Keys follow
// the historical experiment option names (L, mu, s, cost, K, N0, n1r, r,
// gen_num, rep, back, krecord, timestep, untilext, seed).
func loadRunRequestFromConfig(path string) (reassortapi.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return reassortapi.RunRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return reassortapi.RunRequest{}, err
	}

	req := reassortapi.RunRequest{Params: evo.DefaultParams()}
	if v, ok := asString(raw["run_id"]); ok {
		req.RunID = v
	}
	if v, ok := asString(raw["destination"]); ok {
		req.Destination = v
	}
	if v, ok := asInt(raw["L"]); ok {
		req.Params.SegmentLength = v
	}
	if v, ok := asFloat64(raw["mu"]); ok {
		req.Params.MutationRate = v
	}
	if v, ok := asFloat64(raw["s"]); ok {
		req.Params.S = v
	}
	if v, ok := asFloat64(raw["cost"]); ok {
		req.Params.Cost = v
	}
	if v, ok := asInt(raw["K"]); ok {
		req.Params.Capacity = v
	}
	if v, ok := asInt(raw["N0"]); ok {
		req.Params.InitialSize = v
	}
	if v, ok := asFloat64(raw["n1r"]); ok {
		req.Params.SingleRatio = v
	}
	if v, ok := asFloat64(raw["r"]); ok {
		req.Params.Reassortment = v
	}
	if v, ok := asInt(raw["gen_num"]); ok {
		req.Params.Generations = v
	}
	if v, ok := asInt(raw["rep"]); ok {
		req.Params.Replicates = v
	}
	if v, ok := asBool(raw["back"]); ok {
		req.Params.BackMutation = v
	}
	if v, ok := raw["krecord"]; ok {
		mode, err := recordModeFromValue(v)
		if err != nil {
			return reassortapi.RunRequest{}, err
		}
		req.Params.RecordMode = mode
	}
	if v, ok := asBool(raw["timestep"]); ok {
		req.Params.PerGeneration = v
	}
	if v, ok := asBool(raw["untilext"]); ok {
		req.Params.UntilExtinction = v
	}
	if v, ok := asUint64(raw["seed"]); ok {
		req.Params.Seed = v
	}
	return req, nil
}

func loadOrDefaultRunRequest(configPath string) (reassortapi.RunRequest, error) {
	if configPath == "" {
		return reassortapi.RunRequest{Params: evo.DefaultParams()}, nil
	}
	req, err := loadRunRequestFromConfig(configPath)
	if err != nil {
		return reassortapi.RunRequest{}, fmt.Errorf("load config: %w", err)
	}
	return req, nil
}

// recordModeFromValue accepts both the mode names and the historical numeric
// codes (0 mean, 1 full, 2 min).
func recordModeFromValue(v any) (evo.RecordMode, error) {
	if s, ok := asString(v); ok {
		return recordModeFromName(s)
	}
	if n, ok := asInt(v); ok {
		switch n {
		case 0:
			return evo.RecordMean, nil
		case 1:
			return evo.RecordFull, nil
		case 2:
			return evo.RecordMin, nil
		}
		return "", fmt.Errorf("unsupported krecord code: %d", n)
	}
	return "", fmt.Errorf("unsupported krecord value: %v", v)
}

func recordModeFromName(name string) (evo.RecordMode, error) {
	switch name {
	case "mean":
		return evo.RecordMean, nil
	case "full":
		return evo.RecordFull, nil
	case "min":
		return evo.RecordMin, nil
	default:
		return "", fmt.Errorf("unsupported record mode: %s", name)
	}
}

func overrideFromFlags(req *reassortapi.RunRequest, set map[string]bool, flagValue map[string]any) error {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "run-id":
			req.RunID = v.(string)
		case "dest":
			req.Destination = v.(string)
		case "L":
			req.Params.SegmentLength = v.(int)
		case "mu":
			req.Params.MutationRate = v.(float64)
		case "s":
			req.Params.S = v.(float64)
		case "cost":
			req.Params.Cost = v.(float64)
		case "K":
			req.Params.Capacity = v.(int)
		case "N0":
			req.Params.InitialSize = v.(int)
		case "n1r":
			req.Params.SingleRatio = v.(float64)
		case "r":
			req.Params.Reassortment = v.(float64)
		case "gens":
			req.Params.Generations = v.(int)
		case "rep":
			req.Params.Replicates = v.(int)
		case "back":
			req.Params.BackMutation = v.(bool)
		case "krecord":
			mode, err := recordModeFromName(v.(string))
			if err != nil {
				return err
			}
			req.Params.RecordMode = mode
		case "timestep":
			req.Params.PerGeneration = v.(bool)
		case "untilext":
			req.Params.UntilExtinction = v.(bool)
		case "seed":
			req.Params.Seed = v.(uint64)
		}
	}
	return nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asUint64(v any) (uint64, bool) {
	switch x := v.(type) {
	case uint64:
		return x, true
	case int:
		if x < 0 {
			return 0, false
		}
		return uint64(x), true
	case float64:
		if x < 0 {
			return 0, false
		}
		return uint64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}
