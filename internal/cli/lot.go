package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// NewLotCmd создаёт группу команд для работы с партиями.
func NewLotCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lot",
		Short: "Manage lots",
	}

	cmd.AddCommand(
		newLotShowCmd(clientFn, outputFn),
		newLotPlanCmd(clientFn, outputFn),
		newLotAdvanceCmd(clientFn, outputFn),
		newLotRefreshCmd(clientFn, outputFn),
		newLotSplitCmd(clientFn, outputFn),
		newLotMoveCmd(clientFn, outputFn),
		newLotWorkshopCmd(clientFn, outputFn),
	)

	return cmd
}

var entryHeaders = []string{"SEQ", "PROCESS", "STATUS", "ENTRY", "EXIT", "PRICE", "NOTES"}

func entryRows(entries []EntryResponse) [][]string {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		price := "-"
		if e.Price != nil {
			price = *e.Price
		}
		rows[i] = []string{
			strconv.FormatInt(e.Seq, 10), e.ProcessName(), orDash(e.Status),
			orDash(e.EntryDate), orDash(e.ExitDate), price, e.Notes,
		}
	}
	return rows
}

func newLotShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show lot with its process history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			lot, err := client.GetLot(args[0])
			if err != nil {
				return err
			}

			if out.jsonMode {
				out.JSON(lot)
				return nil
			}
			out.Details([][2]string{
				{"Code", lot.Code},
				{"Status", lot.Status},
				{"Quantity", strconv.Itoa(lot.Quantity)},
				{"Parent", orDash(lot.ParentID)},
				{"Workshop", orDash(lot.CurrentWorkshopID)},
			}, lot)
			out.Table(entryHeaders, entryRows(lot.History))
			return nil
		},
	}
}

func newLotPlanCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var productID string

	cmd := &cobra.Command{
		Use:   "plan ID",
		Short: "Generate lot history from the product template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			entries, err := client.GeneratePlan(args[0], productID)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Plan has %d steps", len(entries)))
			out.Print(entryHeaders, entryRows(entries), entries)
			return nil
		},
	}

	cmd.Flags().StringVar(&productID, "product-id", "", "Product ID (lot product if not specified)")

	return cmd
}

func newLotAdvanceCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var req AdvanceRequest
	var notes string
	var complete bool

	cmd := &cobra.Command{
		Use:   "advance ID PROCESS",
		Short: "Start or complete a process step",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req.ProcessName = args[1]
			req.Target = "IN_PROGRESS"
			if complete {
				req.Target = "COMPLETED"
			}
			if cmd.Flags().Changed("notes") {
				req.Notes = &notes
			}

			state, err := client.AdvanceProcess(args[0], req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Step %s is %s", req.ProcessName, req.Target))
			printState(out, state)
			return nil
		},
	}

	cmd.Flags().BoolVar(&complete, "complete", false, "Complete the step instead of starting it")
	cmd.Flags().StringVar(&req.At, "at", "", "Timestamp in RFC 3339 (now if not specified)")
	cmd.Flags().StringVar(&req.WorkshopID, "workshop-id", "", "Workshop ID")
	cmd.Flags().StringVar(&req.TransporterID, "transporter-id", "", "Transporter ID")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes")

	return cmd
}

func newLotRefreshCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh ID",
		Short: "Recompute lot state from its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			state, err := client.RefreshLotState(args[0])
			if err != nil {
				return err
			}

			printState(out, state)
			return nil
		},
	}
}

func newLotSplitCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var parts []string

	cmd := &cobra.Command{
		Use:   "split ID",
		Short: "Split a lot into sub-lots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			subs := make([]SubLotRequest, 0, len(parts))
			for _, p := range parts {
				kv := strings.SplitN(p, "=", 2)
				if len(kv) != 2 {
					return fmt.Errorf("invalid sub-lot format %q, expected CODE=QUANTITY", p)
				}
				qty, err := strconv.Atoi(kv[1])
				if err != nil {
					return fmt.Errorf("invalid quantity in sub-lot %q", p)
				}
				subs = append(subs, SubLotRequest{Code: kv[0], Quantity: qty})
			}

			result, err := client.SplitLot(args[0], subs)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Lot %s split into %d sub-lots", result.Parent.Code, len(result.Children)))
			out.Print(lotHeaders, lotRows(result.Children), result)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&parts, "sub", nil, "Sub-lot as CODE=QUANTITY (repeatable)")
	cmd.MarkFlagRequired("sub")

	return cmd
}

func newLotMoveCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var req MoveRequest

	cmd := &cobra.Command{
		Use:   "move ID",
		Short: "Record a manual lot move",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			result, err := client.MoveLot(args[0], req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Lot %s moved", result.Lot.Code))
			out.Print(entryHeaders, entryRows([]EntryResponse{result.Entry}), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.ProcessID, "process-id", "", "Target process ID")
	cmd.Flags().StringVar(&req.WorkshopID, "workshop-id", "", "Target workshop ID")
	cmd.Flags().StringVar(&req.TransporterID, "transporter-id", "", "Transporter ID")
	cmd.Flags().StringVar(&req.EntryDate, "entry", "", "Entry date in RFC 3339 (now if not specified)")
	cmd.Flags().StringVar(&req.ExitDate, "exit", "", "Exit date in RFC 3339")
	cmd.Flags().StringVar(&req.Notes, "notes", "", "Notes")
	cmd.Flags().BoolVar(&req.MarkFinished, "finish", false, "Mark the lot as finished")

	return cmd
}

func newLotWorkshopCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "workshop WORKSHOP_ID",
		Short: "List unfinished lots in a workshop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			lots, err := client.LotsInWorkshop(args[0])
			if err != nil {
				return err
			}

			out.Print(lotHeaders, lotRows(lots), lots)
			return nil
		},
	}
}

func printState(out *Output, state *LotStateResponse) {
	out.Details([][2]string{
		{"Status", state.Status},
		{"Process", orDash(state.CurrentProcessID)},
		{"Workshop", orDash(state.CurrentWorkshopID)},
		{"Transporter", orDash(state.CurrentTransporterID)},
	}, state)
}
