// inspect examines a persisted affect vault: current state, recent log
// entries, chain integrity, and summary stats.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/wrenlabs/affect-engine/internal/chainlog"
	"github.com/wrenlabs/affect-engine/internal/engine"
	"github.com/wrenlabs/affect-engine/internal/logging"
	"github.com/wrenlabs/affect-engine/internal/vault"
)

func main() {
	app := &cli.App{
		Name:  "inspect",
		Usage: "examine a persisted affect vault",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "db", Value: "affect.db", Usage: "vault database path"},
			&cli.StringFlag{Name: "key", Value: ".affect_key", Usage: "cipher key file path"},
		},
		Commands: []*cli.Command{
			{Name: "state", Usage: "print the persisted vector record", Action: showState},
			{Name: "log", Usage: "print the recent log entries", Action: showLog,
				Flags: []cli.Flag{&cli.IntFlag{Name: "n", Value: 10, Usage: "entries to show"}}},
			{Name: "verify", Usage: "verify recent chain integrity", Action: verify},
			{Name: "stats", Usage: "print chain-head stats", Action: showStats},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openVault(c *cli.Context) (*vault.Vault, error) {
	return vault.Open(c.String("db"), c.String("key"))
}

func openLog(c *cli.Context) (*vault.Vault, *chainlog.Log, error) {
	v, err := openVault(c)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(false)
	if err != nil {
		v.Close()
		return nil, nil, err
	}
	return v, chainlog.New(v, logger, chainlog.DefaultConfig()), nil
}

func showState(c *cli.Context) error {
	v, err := openVault(c)
	if err != nil {
		return err
	}
	defer v.Close()

	raw, err := v.Get(engine.StateKey)
	if err != nil {
		return fmt.Errorf("no persisted state: %w", err)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return fmt.Errorf("state record is not valid JSON: %w", err)
	}
	fmt.Println(pretty.String())
	return nil
}

func showLog(c *cli.Context) error {
	v, log, err := openLog(c)
	if err != nil {
		return err
	}
	defer v.Close()

	recent := log.Recent()
	n := c.Int("n")
	if n < len(recent) {
		recent = recent[len(recent)-n:]
	}
	for _, e := range recent {
		fmt.Printf("%s  %s  sources=%d  noise=%.4f  hash=%.12s\n",
			e.Key, e.Timestamp.Format("2006-01-02T15:04:05Z"),
			len(e.InputSources), e.NoiseScalar, e.Hash)
	}
	if len(recent) == 0 {
		fmt.Println("no entries in the recent ring")
	}
	return nil
}

func verify(c *cli.Context) error {
	v, log, err := openLog(c)
	if err != nil {
		return err
	}
	defer v.Close()

	if log.VerifyRecentIntegrity() {
		fmt.Printf("chain intact: %d entries, head %.12s\n", log.EntryCount(), log.ChainHeadHash())
		return nil
	}
	return fmt.Errorf("chain integrity violation detected in recent entries")
}

func showStats(c *cli.Context) error {
	v, log, err := openLog(c)
	if err != nil {
		return err
	}
	defer v.Close()

	out, err := json.MarshalIndent(map[string]any{
		"entry_count":     log.EntryCount(),
		"chain_head_hash": log.ChainHeadHash(),
		"recent_entries":  len(log.Recent()),
		"intact":          log.VerifyRecentIntegrity(),
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
