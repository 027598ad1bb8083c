package cmd

import (
	"io"

	"webresource-sync/core/reconcile"

	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"
)

// printSyncReport logs the plan summary and renders the planned changes as a table.
func printSyncReport(l *zap.Logger, w io.Writer, plan *reconcile.ReconcilePlan) {
	s := plan.Summary

	l.Info("Sync plan",
		zap.Int("local_files", s.TotalLocal),
		zap.Int("remote_resources", s.TotalRemote),
		zap.Int("create", s.CreateActions),
		zap.Int("update", s.UpdateActions),
		zap.Int("unchanged", s.Unchanged),
		zap.Int("ignored", s.Ignored),
		zap.Int("orphans", s.Orphans),
	)

	for _, r := range plan.Results {
		if r.RemotePresent && !r.Changed && !r.Ignored {
			l.Info("Skipping, contents are the same", zap.String("file", r.Key))
		}
	}
	for _, key := range plan.Orphans {
		l.Debug("Remote web resource has no local file", zap.String("name", key))
	}

	rows := planRows(plan)
	if len(rows) == 0 {
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Action", "Name", "Id", "Reason"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	for _, row := range rows {
		table.Append(row)
	}
	table.Render()
}

// planRows lists actions in apply order followed by ignored files.
func planRows(plan *reconcile.ReconcilePlan) [][]string {
	rows := make([][]string, 0, len(plan.Actions)+plan.Summary.Ignored)
	for _, a := range plan.Actions {
		rows = append(rows, []string{string(a.Type), a.Key, a.RemoteID, a.Reason})
	}
	for _, r := range plan.Results {
		if r.Ignored {
			rows = append(rows, []string{"ignore", r.Key, r.RemoteID, r.Reason})
		}
	}
	return rows
}
