package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// NewProductCmd создаёт группу команд для работы с продуктами.
func NewProductCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Manage products and their templates",
	}

	cmd.AddCommand(
		newProductCreateCmd(clientFn, outputFn),
		newProductUpdateCmd(clientFn, outputFn),
		newProductShowCmd(clientFn, outputFn),
	)

	return cmd
}

func readSpecFile(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spec file: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("spec file is not valid JSON")
	}
	return json.RawMessage(data), nil
}

func printProduct(out *Output, p *ProductResponse) {
	headers := []string{"ORDER", "STEP", "DAYS", "TRANSPORT", "PRICE"}
	rows := make([][]string, len(p.Template))
	for i, s := range p.Template {
		d, price := "-", "-"
		if s.EstimatedDurationDays != nil {
			d = strconv.FormatFloat(*s.EstimatedDurationDays, 'f', -1, 64)
		}
		if s.Price != nil {
			price = *s.Price
		}
		rows[i] = []string{strconv.Itoa(s.Order), s.Name, d, strconv.FormatBool(s.IsTransport), price}
	}
	out.Print(headers, rows, p)
}

func newProductCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var specFile string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product from spec file",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			spec, err := readSpecFile(specFile)
			if err != nil {
				return err
			}

			product, err := client.CreateProduct(spec)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Product %s created: %s", product.Code, product.ID))
			printProduct(out, product)
			return nil
		},
	}

	cmd.Flags().StringVar(&specFile, "spec-file", "", "Path to product JSON file (required)")
	cmd.MarkFlagRequired("spec-file")

	return cmd
}

func newProductUpdateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var specFile string

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a product and merge its template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			spec, err := readSpecFile(specFile)
			if err != nil {
				return err
			}

			product, err := client.UpdateProduct(args[0], spec)
			if err != nil {
				return err
			}

			out.Success("Product updated")
			printProduct(out, product)
			return nil
		},
	}

	cmd.Flags().StringVar(&specFile, "spec-file", "", "Path to product JSON file (required)")
	cmd.MarkFlagRequired("spec-file")

	return cmd
}

func newProductShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show product template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			product, err := client.GetProduct(args[0])
			if err != nil {
				return err
			}

			printProduct(out, product)
			return nil
		},
	}
}
