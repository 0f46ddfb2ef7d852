package main

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/thanhnp/dealer-hedge/internal/models"
	"github.com/thanhnp/dealer-hedge/internal/quote"
)

type quoteFlags struct {
	bid    string
	ask    string
	sats   int64
	cents  int64
	expiry int64
}

func (f *quoteFlags) register(cmd *cobra.Command, amounts bool) {
	cmd.Flags().StringVar(&f.bid, "bid", "", "Bid price in USD per BTC")
	cmd.Flags().StringVar(&f.ask, "ask", "", "Ask price in USD per BTC")
	_ = cmd.MarkFlagRequired("bid")
	_ = cmd.MarkFlagRequired("ask")
	if amounts {
		cmd.Flags().Int64Var(&f.sats, "sats", 0, "Amount in satoshis to convert to cents")
		cmd.Flags().Int64Var(&f.cents, "cents", 0, "Amount in US cents to convert to satoshis")
		cmd.Flags().Int64Var(&f.expiry, "expiry", 0, "Seconds until the quote expires; selects future settlement")
		cmd.MarkFlagsMutuallyExclusive("sats", "cents")
		cmd.MarkFlagsOneRequired("sats", "cents")
	}
}

func (f *quoteFlags) quoter(opts *rootOptions) (*quote.Quoter, error) {
	cfg, err := opts.load()
	if err != nil {
		return nil, err
	}
	fees, err := cfg.Pricing.Fees()
	if err != nil {
		return nil, err
	}
	bid, err := decimal.NewFromString(f.bid)
	if err != nil {
		return nil, fmt.Errorf("invalid --bid: %w", err)
	}
	ask, err := decimal.NewFromString(f.ask)
	if err != nil {
		return nil, fmt.Errorf("invalid --ask: %w", err)
	}
	return quote.New(quote.Prices{Bid: bid, Ask: ask}, fees)
}

func (f *quoteFlags) request(cmd *cobra.Command) (models.QuoteRequest, error) {
	var req models.QuoteRequest
	switch {
	case cmd.Flags().Changed("sats"):
		req.AmountInSats = &f.sats
	case cmd.Flags().Changed("cents"):
		req.AmountInCents = &f.cents
	default:
		return req, errors.New("one of --sats or --cents is required")
	}
	if cmd.Flags().Changed("expiry") {
		req.TimeToExpiryInSeconds = &f.expiry
	}
	return req, nil
}

func newQuoteCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price conversions with the configured fee schedule",
	}
	cmd.AddCommand(
		newQuoteSideCmd(opts, quote.SideBuy),
		newQuoteSideCmd(opts, quote.SideSell),
		newQuoteMidCmd(opts),
	)
	return cmd
}

func newQuoteSideCmd(opts *rootOptions, side quote.Side) *cobra.Command {
	flags := &quoteFlags{}
	cmd := &cobra.Command{
		Use:   string(side),
		Short: fmt.Sprintf("Quote the dealer %sing BTC", side),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := flags.quoter(opts)
			if err != nil {
				return err
			}
			req, err := flags.request(cmd)
			if err != nil {
				return err
			}
			var resp models.QuoteResponse
			if side == quote.SideBuy {
				resp, err = q.QuoteBuy(req)
			} else {
				resp, err = q.QuoteSell(req)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d %s (%s)\n", resp.Amount, resp.Unit, quote.SettlementOf(req))
			return nil
		},
	}
	flags.register(cmd, true)
	return cmd
}

func newQuoteMidCmd(opts *rootOptions) *cobra.Command {
	flags := &quoteFlags{}
	cmd := &cobra.Command{
		Use:   "mid",
		Short: "Show the mid rate in cents per satoshi",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := flags.quoter(opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s cents/sat\n", q.MidRate())
			return nil
		},
	}
	flags.register(cmd, false)
	return cmd
}
