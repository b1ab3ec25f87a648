package cmd

import (
	"fmt"
	"io"

	"github.com/rohmanhakim/coffee-indicators/internal/extractor"
	"github.com/rohmanhakim/coffee-indicators/internal/market"
	"github.com/spf13/cobra"
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Print the highlighted coffee reference price.",
	Args:  cobra.NoArgs,
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

		price, err := a.price.GetPrice(cmd.Context())
		if err != nil {
			return err
		}
		return writePrice(cmd.OutOrStdout(), price, outputFormat)
	},
}

func writePrice(w io.Writer, price market.CoffeePrice, format string) error {
	if format == "json" {
		return writeJSON(w, price)
	}
	if format != "text" {
		return fmt.Errorf("unknown output format %q", format)
	}
	fmt.Fprintf(w, "%s %s (%s)\n", extractor.FormatMoney(price.Value()), price.Currency(), price.Date().String())
	return nil
}
