package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rohmanhakim/coffee-indicators/internal/extractor"
	"github.com/rohmanhakim/coffee-indicators/internal/market"
	"github.com/spf13/cobra"
)

var outputFormat string

var indicatorsCmd = &cobra.Command{
	Use:   "indicators",
	Short: "Print today's coffee market indicators.",
	Long: `Print the current coffee market indicators. A cached record is used
when its publication date is today in the configured timezone; otherwise the
source page is fetched and the cache is refreshed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := InitConfigWithError()
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()

		indicators, err := a.indicators.GetIndicators(cmd.Context())
		if err != nil {
			return err
		}
		return writeIndicators(cmd.OutOrStdout(), indicators, outputFormat)
	},
}

func init() {
	indicatorsCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "output format: text or json")
	priceCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "output format: text or json")
}

func writeIndicators(w io.Writer, indicators market.CoffeeMarketIndicators, format string) error {
	if format == "json" {
		return writeJSON(w, indicators)
	}
	if format != "text" {
		return fmt.Errorf("unknown output format %q", format)
	}
	fmt.Fprintf(w, "Publication date:        %s\n", indicators.PublicationDate().String())
	fmt.Fprintf(w, "Internal price (COP):    %s\n", extractor.FormatMoney(indicators.InternalPriceCOP()))
	fmt.Fprintf(w, "Pasilla (COP):           %s\n", extractor.FormatMoney(indicators.PasillaCOP()))
	fmt.Fprintf(w, "NY price (USD):          %s\n", extractor.FormatMoney(indicators.NYPriceUSD()))
	fmt.Fprintf(w, "Exchange rate (COP/USD): %s\n", extractor.FormatMoney(indicators.ExchangeRateCOPUSD()))
	fmt.Fprintf(w, "MeCIC (COP):             %s\n", extractor.FormatMoney(indicators.MecicCOP()))
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
