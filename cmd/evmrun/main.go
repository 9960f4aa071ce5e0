// Command evmrun executes a single piece of EVM bytecode and prints its
// result, gas usage and (optionally) a cycle-by-cycle trace: running a
// snippet of code against an in-memory StateDB.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/holiman/uint256"
	"github.com/urfave/cli/v2"

	"github.com/evmlite/evmlite/common"
	"github.com/evmlite/evmlite/core/state"
	"github.com/evmlite/evmlite/core/vm"
	"github.com/evmlite/evmlite/core/vm/runtime"
	"github.com/evmlite/evmlite/internal/config"
	"github.com/evmlite/evmlite/internal/evmlog"
)

var (
	codeFlag = &cli.StringFlag{
		Name:     "code",
		Usage:    "EVM bytecode to run, as a hex string",
		Required: true,
	}
	inputFlag = &cli.StringFlag{
		Name:  "input",
		Usage: "calldata to run the code with, as a hex string",
	}
	gasFlag = &cli.Uint64Flag{
		Name:  "gas",
		Usage: "gas allowance for the top-level frame",
		Value: 10_000_000,
	}
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "path to a TOML run configuration",
	}
	traceFlag = &cli.BoolFlag{
		Name:  "trace",
		Usage: "print a cycle-by-cycle execution trace",
	}
)

var runCommand = &cli.Command{
	Name:   "run",
	Usage:  "run arbitrary EVM code",
	Flags:  []cli.Flag{codeFlag, inputFlag, gasFlag, configFlag, traceFlag},
	Action: runAction,
}

func runAction(ctx *cli.Context) error {
	logger := evmlog.New(nil, slog.LevelInfo)

	cfg := config.Default()
	if p := ctx.String(configFlag.Name); p != "" {
		loaded, err := config.Load(p)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	code := common.FromHex(ctx.String(codeFlag.Name))
	input := common.FromHex(ctx.String(inputFlag.Name))

	gas := ctx.Uint64(gasFlag.Name)
	if gas == 0 {
		gas = cfg.GasLimit
	}

	var tracer vm.Tracer
	var structLogger *vm.StructLogger
	if ctx.Bool(traceFlag.Name) {
		structLogger = vm.NewStructLogger(0)
		tracer = structLogger
	}

	runCfg := &runtime.Config{
		GasLimit:    gas,
		BlockNumber: uint256.NewInt(cfg.Block.Number),
		Time:        cfg.Block.Time,
		Coinbase:    cfg.CoinbaseAddress(),
		Difficulty:  uint256.NewInt(cfg.Block.Difficulty),
		State:       state.New(),
		Tracer:      tracer,
	}

	ret, leftover, err := runtime.Execute(code, input, runCfg)

	if structLogger != nil {
		vm.WriteTrace(os.Stderr, structLogger.Logs)
	}

	logger.Info("execution finished",
		"gasUsed", func() uint64 {
			if gas < leftover {
				return 0
			}
			return gas - leftover
		}(),
		"leftover", leftover,
		"returnLen", len(ret),
	)
	fmt.Printf("0x%x\n", ret)

	if err != nil {
		return fmt.Errorf("execution error: %w", err)
	}
	return nil
}

var app = &cli.App{
	Name:     "evmrun",
	Usage:    "a standalone EVM execution harness",
	Commands: []*cli.Command{runCommand},
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
