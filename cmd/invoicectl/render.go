package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render <invoice-id>",
	Short: "Write an invoice PDF to a file or stdout",
	Example: `  invoicectl render 1789201293450240 --owner demo-user --out invoice.pdf
  invoicectl render 1789201293450240 > invoice.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

var statementCmd = &cobra.Command{
	Use:   "statement",
	Short: "Write an account statement PDF for an owner",
	Args:  cobra.NoArgs,
	RunE:  runStatement,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(statementCmd)

	for _, cmd := range []*cobra.Command{renderCmd, statementCmd} {
		cmd.Flags().String("owner", "demo-user", "Owner the invoices belong to")
		cmd.Flags().StringP("out", "o", "", "Output file (default: stdout)")
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	owner, _ := cmd.Flags().GetString("owner")
	out, _ := cmd.Flags().GetString("out")

	var svc invoicedomain.Service
	return withApp(cmd.Context(), func(ctx context.Context) error {
		var buf bytes.Buffer
		res, err := svc.RenderPDF(ctx, owner, args[0], &buf)
		if err != nil {
			return fmt.Errorf("render %s: %w", args[0], err)
		}
		if err := writeOutput(cmd, out, &buf); err != nil {
			return err
		}
		cmd.PrintErrf("rendered %s from %s\n", res.Invoice.InvoiceNumber, res.Source)
		return nil
	}, &svc)
}

func runStatement(cmd *cobra.Command, _ []string) error {
	owner, _ := cmd.Flags().GetString("owner")
	out, _ := cmd.Flags().GetString("out")

	var svc invoicedomain.Service
	return withApp(cmd.Context(), func(ctx context.Context) error {
		var buf bytes.Buffer
		source, err := svc.RenderStatement(ctx, owner, &buf)
		if err != nil {
			return fmt.Errorf("statement for %s: %w", owner, err)
		}
		if err := writeOutput(cmd, out, &buf); err != nil {
			return err
		}
		cmd.PrintErrf("statement for %s rendered from %s\n", owner, source)
		return nil
	}, &svc)
}

// writeOutput only touches the destination once the document is complete.
func writeOutput(cmd *cobra.Command, path string, r io.Reader) error {
	if path == "" {
		_, err := io.Copy(cmd.OutOrStdout(), r)
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
