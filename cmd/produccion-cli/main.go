// produccion - инструмент командной строки для учёта производства
// через HTTP API.
//
// Использование:
//
//	produccion [--api-url URL] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	order    Заказы и их партии
//	lot      Партии: план, продвижение, подразделение, перемещение
//	product  Продукты и шаблоны процессов
//	report   Отчёты
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/produccion/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "produccion",
		Short:         "Textile production tracking CLI",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultURL := "http://localhost:8080"
	if v := os.Getenv("PRODUCCION_API_URL"); v != "" {
		defaultURL = v
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", defaultURL, "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewOrderCmd(clientFn, outputFn),
		cli.NewLotCmd(clientFn, outputFn),
		cli.NewProductCmd(clientFn, outputFn),
		cli.NewReportCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
