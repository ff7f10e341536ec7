// Package flags defines the command-line flags shared by the recovery tools.
package flags

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"github.com/valory-xyz/trader-recovery/common"
)

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String("log-service")

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

var StoreDirFlag = &cli.StringFlag{
	Name:  "store-dir",
	Value: ".trader_runner",
	Usage: "directory holding the service keys, RPC endpoint and service id",
}

var WorkDirFlag = &cli.StringFlag{
	Name:  "work-dir",
	Value: ".",
	Usage: "directory to clone the autonomy tool repository into",
}

var RpcUrlFlag = &cli.StringFlag{
	Name:  "rpc-url",
	Value: "https://rpc.gnosischain.com",
	Usage: "Gnosis chain RPC endpoint, written to the store on first run only",
}

var ServiceIDFlag = &cli.Uint64Flag{
	Name:  "service-id",
	Usage: "on-chain service id, written to the store on first run only",
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}

var LogServiceFlagFn = func(service string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "log-service",
		Value: service,
		Usage: "add 'service' tag to logs",
	}
}

var CommonFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
}
