package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// NewOrderCmd создаёт группу команд для работы с заказами.
func NewOrderCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Manage orders",
	}

	cmd.AddCommand(
		newOrderCreateCmd(clientFn, outputFn),
		newOrderShowCmd(clientFn, outputFn),
		newOrderMetricsCmd(clientFn, outputFn),
		newOrderSearchCmd(clientFn, outputFn),
	)

	return cmd
}

func newOrderCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var number int
	var clientID, clientName, contact string
	var items []string
	var noLots bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an order with root lots",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := CreateOrderRequest{
				Number:     number,
				ClientID:   clientID,
				ClientName: clientName,
				Contact:    contact,
			}
			for _, item := range items {
				parsed, err := parseItem(item)
				if err != nil {
					return err
				}
				req.Items = append(req.Items, parsed)
			}
			if noLots {
				f := false
				req.CreateRootLots = &f
			}

			order, err := client.CreateOrder(req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Order %d created: %s", order.Number, order.ID))
			out.Print(lotHeaders, lotRows(order.Lots), order)
			return nil
		},
	}

	cmd.Flags().IntVar(&number, "number", 0, "Order number (required)")
	cmd.Flags().StringVar(&clientID, "client-id", "", "Existing client ID")
	cmd.Flags().StringVar(&clientName, "client", "", "Client name (created if missing)")
	cmd.Flags().StringVar(&contact, "contact", "", "Client contact")
	cmd.Flags().StringSliceVar(&items, "item", nil, "Item as PRODUCT_ID=QUANTITY (repeatable)")
	cmd.Flags().BoolVar(&noLots, "no-lots", false, "Do not create root lots")
	cmd.MarkFlagRequired("number")
	cmd.MarkFlagRequired("item")

	return cmd
}

func newOrderShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show NUMBER",
		Short: "Show order lot tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			number, err := parseNumber(args[0])
			if err != nil {
				return err
			}

			order, err := client.TrackOrder(number)
			if err != nil {
				return err
			}

			out.Print(lotHeaders, lotRows(order.Lots), order)
			return nil
		},
	}
}

func newOrderMetricsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics NUMBER",
		Short: "Show order progress, remaining days and cost",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			number, err := parseNumber(args[0])
			if err != nil {
				return err
			}

			m, err := client.OrderMetrics(number)
			if err != nil {
				return err
			}

			headers := []string{"LOT", "STATUS", "QTY", "PROGRESS", "REMAINING", "ETA", "COST"}
			rows := make([][]string, 0, len(m.Lots)+1)
			for _, lm := range m.Lots {
				rows = append(rows, []string{
					lm.Lot.Code, lm.Lot.Status, strconv.Itoa(lm.Lot.Quantity),
					percent(lm.Progress), days(lm.RemainingDays), orDash(lm.EstimatedCompletion), lm.Cost,
				})
			}
			rows = append(rows, []string{"TOTAL", "", "", percent(m.Progress), days(m.RemainingDays), "", m.Cost})

			out.Print(headers, rows, m)
			return nil
		},
	}
}

func newOrderSearchCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "search CLIENT",
		Short: "Find orders by client name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			orders, err := client.SearchOrders(args[0])
			if err != nil {
				return err
			}

			headers := []string{"NUMBER", "CLIENT", "LOTS", "CREATED"}
			rows := make([][]string, len(orders))
			for i, o := range orders {
				rows[i] = []string{strconv.Itoa(o.Number), o.ClientName, strconv.Itoa(len(o.Lots)), o.CreatedAt}
			}

			out.Print(headers, rows, orders)
			return nil
		},
	}
}

var lotHeaders = []string{"ID", "CODE", "PARENT", "QTY", "STATUS", "STEPS"}

func lotRows(lots []LotResponse) [][]string {
	rows := make([][]string, len(lots))
	for i, l := range lots {
		rows[i] = []string{l.ID, l.Code, orDash(l.ParentID), strconv.Itoa(l.Quantity), l.Status, strconv.Itoa(len(l.History))}
	}
	return rows
}

func parseNumber(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid order number %q", s)
	}
	return n, nil
}

func parseItem(s string) (ItemRequest, error) {
	parts := strings.SplitN(s, "=", 2)
	if len(parts) != 2 {
		return ItemRequest{}, fmt.Errorf("invalid item format %q, expected PRODUCT_ID=QUANTITY", s)
	}
	qty, err := strconv.Atoi(parts[1])
	if err != nil {
		return ItemRequest{}, fmt.Errorf("invalid quantity in item %q", s)
	}
	return ItemRequest{ProductID: parts[0], Quantity: qty}, nil
}

func percent(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 1, 64) + "%"
}

func days(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "d"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
