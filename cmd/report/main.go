package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/urfave/cli/v2"

	"github.com/valory-xyz/trader-recovery/chain"
	"github.com/valory-xyz/trader-recovery/cmd/flags"
	"github.com/valory-xyz/trader-recovery/report"
	"github.com/valory-xyz/trader-recovery/store"
)

var serviceLogFlag = flags.LogServiceFlagFn("trader-report")

func main() {
	app := &cli.App{
		Name:  "trader-report",
		Usage: "Report the on-chain state and balances of the trader service",
		Flags: append([]cli.Flag{
			flags.StoreDirFlag,
			serviceLogFlag,
		}, flags.CommonFlags...),
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)

			chainCfg, err := chain.Load()
			if err != nil {
				return err
			}

			s := store.New(cCtx.String(flags.StoreDirFlag.Name), logger)
			if err := s.Verify(); err != nil {
				return err
			}
			rpcURL, err := s.RPCURL()
			if err != nil {
				return err
			}
			chainCfg.RPCURL = rpcURL
			if err := chainCfg.Validate(); err != nil {
				return err
			}

			logger.Info("Connecting to chain RPC", "address", rpcURL)
			ethClient, err := ethclient.Dial(rpcURL)
			if err != nil {
				logger.Error("Failed to dial RPC", "err", err)
				return err
			}

			reporter := report.New(s, ethClient, ethcommon.HexToAddress(chainCfg.ServiceRegistry), logger)
			rep, err := reporter.Collect(cCtx.Context)
			if err != nil {
				return err
			}

			encoded, _ := json.MarshalIndent(rep, "", "  ")
			fmt.Println(string(encoded))
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
