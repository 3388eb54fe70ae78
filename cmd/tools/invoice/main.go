// Command invoice renders the invoice PDF of an order exported from the
// commerce backend. Exit code 0 = ok, 1 = bad input, 2 = render error.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-storefront/internal/commerce"
	"github.com/noah-isme/toko-storefront/internal/invoice"
	"github.com/noah-isme/toko-storefront/internal/obs"
)

var errInput = errors.New("invalid input")

func main() {
	logger := obs.NewLoggerTo(os.Stderr, "console", "info")
	os.Exit(run(os.Args[1:], logger))
}

func run(args []string, logger zerolog.Logger) int {
	fs := flag.NewFlagSet("invoice", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		orderPath = fs.String("order", "", "path to the order JSON document")
		outDir    = fs.String("out", ".", "directory the PDF is written to")
		company   = fs.String("company", "Toko Storefront", "seller name printed in the header")
		lines     = fs.String("company-lines", "", "pipe separated address lines under the seller name")
		currency  = fs.String("currency", "INR", "domestic currency")
		country   = fs.String("country", "in", "domestic country code")
	)
	if err := fs.Parse(args); err != nil {
		logger.Error().Err(err).Msg("parse flags")
		return 1
	}
	if *orderPath == "" {
		logger.Error().Msg("-order is required")
		return 1
	}

	order, err := readOrder(*orderPath)
	if err != nil {
		logger.Error().Err(err).Str("path", *orderPath).Msg("read order")
		return 1
	}

	data := invoice.FromOrder(order, invoice.Options{
		DomesticCurrency: strings.ToUpper(*currency),
		DomesticCountry:  strings.ToLower(*country),
	})
	if drift, ok := invoice.Reconcile(data); ok {
		logger.Warn().
			Int64("order_total", drift.OrderTotal).
			Int64("derived_total", drift.DerivedTotal).
			Int64("delta", drift.Delta()).
			Msg("invoice total drift")
	}

	gen := invoice.NewGenerator(invoice.Company{Name: *company, Lines: splitLines(*lines)})
	path, err := gen.SaveFile(*outDir, data)
	if err != nil {
		logger.Error().Err(err).Msg("render invoice")
		return 2
	}
	logger.Info().Str("invoice", data.InvoiceNumber).Str("path", path).Msg("invoice generated")
	return 0
}

// readOrder accepts either a bare order or the {"order": ...} envelope the
// store API returns.
func readOrder(path string) (commerce.Order, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return commerce.Order{}, err
	}
	var envelope struct {
		Order *commerce.Order `json:"order"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return commerce.Order{}, fmt.Errorf("%w: %v", errInput, err)
	}
	order := envelope.Order
	if order == nil {
		order = &commerce.Order{}
		if err := json.Unmarshal(raw, order); err != nil {
			return commerce.Order{}, fmt.Errorf("%w: %v", errInput, err)
		}
	}
	if err := commerce.Validate(*order); err != nil {
		return commerce.Order{}, fmt.Errorf("%w: %v", errInput, err)
	}
	return *order, nil
}

func splitLines(value string) []string {
	var out []string
	for _, part := range strings.Split(value, "|") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
