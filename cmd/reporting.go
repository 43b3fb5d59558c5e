package cmd

import (
	"github.com/masmgr/gitsqlite/internal/output"
)

func writeRunReport(cctx *CommandContext, report *output.RunReport) error {
	if cctx.Output.Quiet && cctx.Output.OutputPath == "" && cctx.Output.Format == output.FormatConsole {
		return nil
	}
	writer := output.NewReportWriter(cctx.Output.Format)
	return writer.Write(report, cctx.Output)
}
