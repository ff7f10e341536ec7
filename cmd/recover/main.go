package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/valory-xyz/trader-recovery/chain"
	"github.com/valory-xyz/trader-recovery/cmd/flags"
	"github.com/valory-xyz/trader-recovery/recovery"
	"github.com/valory-xyz/trader-recovery/runner"
	"github.com/valory-xyz/trader-recovery/store"
)

var serviceLogFlag = flags.LogServiceFlagFn("trader-recover")

func main() {
	app := &cli.App{
		Name:  "trader-recover",
		Usage: "Remediate an interrupted on-chain update of the trader service",
		Flags: append([]cli.Flag{
			flags.StoreDirFlag,
			flags.WorkDirFlag,
			flags.RpcUrlFlag,
			flags.ServiceIDFlag,
			serviceLogFlag,
		}, flags.CommonFlags...),
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)

			chainCfg, err := chain.Load()
			if err != nil {
				return err
			}

			orchestrator := recovery.New(recovery.Config{
				Store:              store.New(cCtx.String(flags.StoreDirFlag.Name), logger),
				Runner:             &runner.ExecRunner{Log: logger},
				Chain:              chainCfg,
				Log:                logger,
				WorkDir:            cCtx.String(flags.WorkDirFlag.Name),
				BootstrapRPCURL:    cCtx.String(flags.RpcUrlFlag.Name),
				BootstrapServiceID: cCtx.Uint64(flags.ServiceIDFlag.Name),
			})

			return orchestrator.Run(cCtx.Context)
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
