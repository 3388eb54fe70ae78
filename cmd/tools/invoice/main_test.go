package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const order = `{
	"id":"order_01",
	"display_id":1042,
	"created_at":"2024-03-05T14:30:00Z",
	"currency_code":"inr",
	"subtotal":1000,
	"tax_total":180,
	"total":1180,
	"items":[{"id":"item_1","title":"Cotton Kurta","quantity":1,"unit_price":1000,"total":1000}]
}`

func writeOrder(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "order.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRunWritesInvoice(t *testing.T) {
	for name, body := range map[string]string{
		"bare":     order,
		"envelope": `{"order":` + order + `}`,
	} {
		t.Run(name, func(t *testing.T) {
			out := t.TempDir()
			var logs bytes.Buffer
			code := run([]string{"-order", writeOrder(t, body), "-out", out}, zerolog.New(&logs))
			require.Equal(t, 0, code, logs.String())

			pdf, err := os.ReadFile(filepath.Join(out, "Invoice_INV-1042.pdf"))
			require.NoError(t, err)
			require.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
			require.Contains(t, logs.String(), "invoice generated")
		})
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	var logs bytes.Buffer
	require.Equal(t, 1, run(nil, zerolog.New(&logs)))
	require.Equal(t, 1, run([]string{"-order", writeOrder(t, `{"id":"order_01"}`)}, zerolog.New(&logs)))
	require.Equal(t, 1, run([]string{"-order", writeOrder(t, `not json`)}, zerolog.New(&logs)))
}

func TestRunReportsDrift(t *testing.T) {
	drifted := strings.Replace(order, `"total":1180`, `"total":1500`, 1)
	var logs bytes.Buffer
	code := run([]string{"-order", writeOrder(t, drifted), "-out", t.TempDir()}, zerolog.New(&logs))
	require.Equal(t, 0, code)
	require.Contains(t, logs.String(), "invoice total drift")
}

func TestRunMissingOutDir(t *testing.T) {
	var logs bytes.Buffer
	missing := filepath.Join(t.TempDir(), "nope")
	require.Equal(t, 2, run([]string{"-order", writeOrder(t, order), "-out", missing}, zerolog.New(&logs)))
}
