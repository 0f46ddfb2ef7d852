package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/thanhnp/dealer-hedge/internal/address"
	"github.com/thanhnp/dealer-hedge/internal/config"
	"github.com/thanhnp/dealer-hedge/internal/ledger"
	"github.com/thanhnp/dealer-hedge/internal/models"
	"github.com/thanhnp/dealer-hedge/pkg/units"
)

func newTransfersCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transfers",
		Aliases: []string{"transfer"},
		Short:   "Inspect and modify in-flight transfers",
	}
	cmd.AddCommand(
		newTransfersListCmd(opts),
		newTransfersGetCmd(opts),
		newTransfersInsertCmd(opts),
		newTransfersCompleteCmd(opts),
		newTransfersClearCmd(opts),
		newTransfersTotalsCmd(opts),
	)
	return cmd
}

func newTransfersListCmd(opts *rootOptions) *cobra.Command {
	var (
		pendingOnly bool
		direction   string
		asJSON      bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transfers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var dir models.Direction
			if direction != "" {
				parsed, err := models.ParseDirection(direction)
				if err != nil {
					return err
				}
				dir = parsed
			}
			return opts.withLedger(cmd, func(_ *config.Config, l *ledger.Ledger) error {
				var (
					transfers []models.InFlightTransfer
					err       error
				)
				if pendingOnly {
					transfers, err = l.ListPending(cmd.Context(), dir)
				} else {
					transfers, err = l.ListAll(cmd.Context())
				}
				if err != nil {
					return fmt.Errorf("failed to list transfers: %w", err)
				}
				if !pendingOnly && dir != "" {
					filtered := transfers[:0]
					for _, t := range transfers {
						if t.Direction == dir {
							filtered = append(filtered, t)
						}
					}
					transfers = filtered
				}

				out := cmd.OutOrStdout()
				if asJSON {
					return writeJSON(out, transfers)
				}
				if len(transfers) == 0 {
					fmt.Fprintln(out, "No transfers found.")
					return nil
				}
				printTransfers(out, transfers)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&pendingOnly, "pending", false, "Only list pending transfers")
	cmd.Flags().StringVar(&direction, "direction", "", "Filter by direction (WithdrawToWallet, DepositOnExchange)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func newTransfersGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <address>",
		Short: "Show one transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withLedger(cmd, func(_ *config.Config, l *ledger.Ledger) error {
				t, err := l.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), t)
			})
		},
	}
}

func newTransfersInsertCmd(opts *rootOptions) *cobra.Command {
	var (
		direction string
		sats      int64
		memo      string
	)
	cmd := &cobra.Command{
		Use:   "insert <address>",
		Short: "Record a new pending transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := models.ParseDirection(direction)
			if err != nil {
				return err
			}
			return opts.withLedger(cmd, func(cfg *config.Config, l *ledger.Ledger) error {
				if cfg.Bitcoin.ValidateAddresses {
					params, err := cfg.Bitcoin.Params()
					if err != nil {
						return err
					}
					if err := address.Validate(args[0], params); err != nil {
						return err
					}
				}
				t, err := l.Insert(cmd.Context(), models.InFlightTransfer{
					Direction:          dir,
					Address:            args[0],
					TransferSizeInSats: units.Satoshis(sats),
					Memo:               memo,
				})
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), t)
			})
		},
	}
	cmd.Flags().StringVar(&direction, "direction", "", "WithdrawToWallet or DepositOnExchange")
	cmd.Flags().Int64Var(&sats, "sats", 0, "Transfer size in satoshis")
	cmd.Flags().StringVar(&memo, "memo", "", "Optional annotation")
	_ = cmd.MarkFlagRequired("direction")
	_ = cmd.MarkFlagRequired("sats")
	return cmd
}

func newTransfersCompleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <address>",
		Short: "Mark a pending transfer completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withLedger(cmd, func(_ *config.Config, l *ledger.Ledger) error {
				t, err := l.Complete(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), t)
			})
		},
	}
}

func newTransfersClearCmd(opts *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every transfer from the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear the ledger without --yes")
			}
			return opts.withLedger(cmd, func(_ *config.Config, l *ledger.Ledger) error {
				if err := l.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Ledger cleared.")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the destructive reset")
	return cmd
}

func newTransfersTotalsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "totals",
		Short: "Sum pending transfers per direction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withLedger(cmd, func(_ *config.Config, l *ledger.Ledger) error {
				totals, err := l.PendingTotals(cmd.Context())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "DIRECTION\tSATS\tBTC")
				for _, dir := range []models.Direction{models.DepositOnExchange, models.WithdrawToWallet} {
					fmt.Fprintf(w, "%s\t%d\t%s\n", dir, int64(totals[dir]), totals[dir])
				}
				return w.Flush()
			})
		},
	}
}

func printTransfers(out io.Writer, transfers []models.InFlightTransfer) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ADDRESS\tDIRECTION\tSATS\tSTATUS\tCREATED\tUPDATED\tMEMO")
	for _, t := range transfers {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			t.Address, t.Direction, int64(t.TransferSizeInSats), t.Status,
			t.CreatedTimestamp.Format(time.RFC3339), t.UpdatedTimestamp.Format(time.RFC3339), t.Memo)
	}
	w.Flush()
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
