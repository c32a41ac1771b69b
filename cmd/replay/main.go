// replay runs a recorded input fixture through a fresh engine and reports
// the sampled trajectory and expectation results.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/wrenlabs/affect-engine/internal/logging"
	"github.com/wrenlabs/affect-engine/internal/replay"
)

func main() {
	app := &cli.App{
		Name:  "replay",
		Usage: "run a fixture through a fresh engine",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "fixture", Value: "fixture.json", Usage: "fixture file path"},
			&cli.BoolFlag{Name: "init", Usage: "write a sample fixture and exit"},
			&cli.BoolFlag{Name: "debug", Usage: "verbose logging"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	path := c.String("fixture")
	if c.Bool("init") {
		if err := replay.WriteSample(path); err != nil {
			return err
		}
		fmt.Printf("wrote sample fixture to %s\n", path)
		return nil
	}

	f, err := replay.LoadFixture(path)
	if err != nil {
		return err
	}
	logger, err := logging.New(c.Bool("debug"))
	if err != nil {
		return err
	}
	defer logger.Sync()

	result, err := replay.Run(f, logger)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	if !result.Passed {
		return fmt.Errorf("fixture expectations failed")
	}
	return nil
}
