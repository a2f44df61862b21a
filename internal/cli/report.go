package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewReportCmd создаёт группу команд для отчётов.
func NewReportCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Production reports",
	}

	cmd.AddCommand(
		newReportDailyCmd(clientFn, outputFn),
		newReportOrdersCmd(clientFn, outputFn),
		newReportWorkshopsCmd(clientFn, outputFn),
		newReportNoteCmd(clientFn, outputFn),
	)

	return cmd
}

func newReportDailyCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Steps completed during a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			summary, err := client.DailyReport(date)
			if err != nil {
				return err
			}

			headers := []string{"GROUP", "NAME", "COUNT"}
			rows := make([][]string, 0, len(summary.ByWorkshop)+len(summary.ByProcess))
			for _, c := range summary.ByWorkshop {
				rows = append(rows, []string{"workshop", orDash(c.ID), strconv.Itoa(c.Count)})
			}
			for _, c := range summary.ByProcess {
				rows = append(rows, []string{"process", orDash(c.Name), strconv.Itoa(c.Count)})
			}

			for _, r := range summary.ManualRecords {
				rows = append(rows, []string{"record", r.Kind + ": " + r.Description, orDash(derefAmount(r.Amount))})
			}

			if !out.jsonMode {
				out.Success(fmt.Sprintf("%s: %d steps completed, %d records", summary.Day, summary.Total, len(summary.ManualRecords)))
			}
			out.Print(headers, rows, summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day as YYYY-MM-DD (today if not specified)")

	return cmd
}

func newReportOrdersCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var filter DashboardFilter

	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Open orders with progress and status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			summaries, err := client.OrderDashboard(filter)
			if err != nil {
				return err
			}

			headers := []string{"NUMBER", "CLIENT", "PROGRESS", "REMAINING", "STATUS"}
			rows := make([][]string, len(summaries))
			for i, o := range summaries {
				rows[i] = []string{strconv.Itoa(o.Number), o.ClientName, percent(o.Progress), days(o.RemainingDays), o.Status}
			}

			out.Print(headers, rows, summaries)
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.Client, "client", "", "Client name substring")
	cmd.Flags().StringVar(&filter.From, "from", "", "Created on or after YYYY-MM-DD")
	cmd.Flags().StringVar(&filter.To, "to", "", "Created on or before YYYY-MM-DD")
	cmd.Flags().StringVar(&filter.Status, "status", "", "IN_PROCESS, DELAYED or COMPLETED")

	return cmd
}

func newReportWorkshopsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "workshops",
		Short: "Lots and units currently in each workshop",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			loads, err := client.WorkshopDashboard()
			if err != nil {
				return err
			}

			headers := []string{"WORKSHOP", "LOTS", "UNITS"}
			rows := make([][]string, len(loads))
			for i, l := range loads {
				rows[i] = []string{l.WorkshopID, strconv.Itoa(l.ActiveLots), strconv.Itoa(l.TotalUnits)}
			}

			out.Print(headers, rows, loads)
			return nil
		},
	}
}

func newReportNoteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var req RecordRequest

	cmd := &cobra.Command{
		Use:   "note DESCRIPTION",
		Short: "Add a manual record to the daily log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req.Description = args[0]
			record, err := client.CreateRecord(req)
			if err != nil {
				return err
			}

			if out.jsonMode {
				out.JSON(record)
				return nil
			}
			out.Success(fmt.Sprintf("Record %s saved for %s", record.ID, record.Date))
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Kind, "kind", "GENERAL_NOTE", "PAYMENT, REMINDER or GENERAL_NOTE")
	cmd.Flags().StringVar(&req.Amount, "amount", "", "Amount for payments")
	cmd.Flags().StringVar(&req.Date, "date", "", "Timestamp in RFC 3339 (now if not specified)")
	cmd.Flags().StringVar(&req.User, "user", "", "Author")
	cmd.Flags().StringVar(&req.OrderID, "order-id", "", "Related order ID")
	cmd.Flags().StringVar(&req.WorkshopID, "workshop-id", "", "Related workshop ID")

	return cmd
}

func derefAmount(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
