// Command recommend runs the matching engine over a JSON file of
// questionnaire inputs:
//
//	go run ./cmd/recommend -in inputs.json [-catalog catalog.yaml] [-rate 0.00075]
//
// The file holds one inputs object or an array of them. Results are written
// to stdout as JSON in the same shape.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"consult-backend/internal/bootstrap"
	"consult-backend/internal/matching"
	"consult-backend/internal/shared/telemetry"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "recommend:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("recommend", flag.ContinueOnError)
	inPath := fs.String("in", "-", "inputs JSON file, - for stdin")
	catalogPath := fs.String("catalog", "", "catalog YAML override")
	rate := fs.Float64("rate", 0.00075, "KRW to USD rate")
	env := fs.String("env", "dev", "logging environment")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := telemetry.Init(*env); err != nil {
		return err
	}
	defer telemetry.Sync()

	if *rate <= 0 {
		return fmt.Errorf("rate must be positive")
	}
	catalog, err := bootstrap.BuildCatalog(*catalogPath)
	if err != nil {
		return err
	}
	engine, err := matching.NewEngine(catalog, nil, matching.FixedRate(*rate))
	if err != nil {
		return err
	}

	var data []byte
	if *inPath == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(*inPath)
	}
	if err != nil {
		return fmt.Errorf("read inputs: %w", err)
	}

	inputs, single, err := decodeInputs(data)
	if err != nil {
		return err
	}
	outputs := make([]matching.RecommendationOutput, 0, len(inputs))
	for i, in := range inputs {
		out, err := engine.Recommend(in)
		if err != nil {
			return fmt.Errorf("inputs[%d]: %w", i, err)
		}
		outputs = append(outputs, out)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if single {
		return enc.Encode(outputs[0])
	}
	return enc.Encode(outputs)
}

func decodeInputs(data []byte) ([]matching.RecommendInputs, bool, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, false, fmt.Errorf("inputs file is empty")
	}
	if trimmed[0] == '[' {
		var many []matching.RecommendInputs
		if err := json.Unmarshal(trimmed, &many); err != nil {
			return nil, false, fmt.Errorf("decode inputs: %w", err)
		}
		return many, false, nil
	}
	var one matching.RecommendInputs
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return nil, false, fmt.Errorf("decode inputs: %w", err)
	}
	return []matching.RecommendInputs{one}, true, nil
}
