package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/hxuan190/rfq-engine/internal/domain"
	"github.com/hxuan190/rfq-engine/internal/solver"
)

var (
	engineURL string
	keyFlag   string
	rateFlag  string
	ttlFlag   time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "solver",
	Short: "Reference solver for the RFQ engine",
	Long: `solver connects to the engine's websocket, prices every broadcast quote at a
fixed rate and answers with a signed offer.

Examples:
  solver --key <base58 private key> --rate 0.997
  SOLVER_PRIVATE_KEY=<key> solver --url ws://localhost:8080/ws --ttl 30s
  solver keygen`,
	SilenceUsage: true,
	RunE:         runSolver,
}

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a new ed25519 solver key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		key, err := solana.NewRandomPrivateKey()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "private key: %s\npublic key:  %s\n", key.String(), key.PublicKey().String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)

	rootCmd.Flags().StringVar(&engineURL, "url", "ws://localhost:8080/ws", "Engine solver websocket URL")
	rootCmd.Flags().StringVar(&keyFlag, "key", "", "Base58 ed25519 private key (default $SOLVER_PRIVATE_KEY)")
	rootCmd.Flags().StringVar(&rateFlag, "rate", "0.997", "Counter amount as a multiple of the quoted exact amount")
	rootCmd.Flags().DurationVar(&ttlFlag, "ttl", 60*time.Second, "Offer lifetime")
}

func runSolver(cmd *cobra.Command, _ []string) error {
	raw := keyFlag
	if raw == "" {
		raw = os.Getenv("SOLVER_PRIVATE_KEY")
	}
	if raw == "" {
		return errors.New("a private key is required: pass --key or set SOLVER_PRIVATE_KEY")
	}
	key, err := solana.PrivateKeyFromBase58(raw)
	if err != nil {
		return fmt.Errorf("invalid private key: %w", err)
	}
	rate, err := solver.ParseRate(rateFlag)
	if err != nil {
		return err
	}
	if ttlFlag <= 0 {
		return errors.New("--ttl must be positive")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := solver.New(key, rate, ttlFlag)
	color.Cyan("solver %s connecting to %s (rate %s, ttl %s)", s.PublicKey(), engineURL, rate, ttlFlag)

	err = s.Run(ctx, engineURL, func(o *domain.QuoteOffer) {
		side := "amountOut"
		if o.Mode == domain.ExactAmountOut {
			side = "amountIn"
		}
		color.Green("offer quote=%s %s=%s deadline=%s", o.QuoteID, side, o.Amount.Dec(),
			time.UnixMilli(o.Deadline).Format(time.RFC3339))
	})
	if err != nil {
		color.Red("solver stopped: %v", err)
		return err
	}
	color.Yellow("solver stopped")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
