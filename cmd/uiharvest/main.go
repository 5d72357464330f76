package main

import (
	"uiharvest/cmd/uiharvest/commands"
	"uiharvest/lib/cliutil"
	"uiharvest/lib/telemetry"
)

func main() {
	ctx := cliutil.SignalContext()
	telemetry.SetupFromEnv(ctx, "uiharvest")
	telemetry.InitSlog(true)
	telemetry.InstrumentPerfStats(ctx)
	commands.ExecuteContext(ctx)
}
