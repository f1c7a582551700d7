// Command testclient drives the button service over gRPC.
//
// Usage:
//
//	testclient [--server addr] [--operator id] scenario <name>
//	testclient [--server addr] [--operator id] press <mode>...
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	grpcapi "operator-button-service/internal/api/grpc"
)

var (
	serverAddr string
	operatorId string
	delay      time.Duration
)

// scenarios are sequences of modes, each one snapshot
var scenarios = map[string][]string{
	"single":   {"btn1", "none"},
	"both":     {"both", "none"},
	"sticky":   {"btn1", "both", "none"},
	"partial":  {"both", "btn1", "none"},
	"handoff":  {"btn1", "btn2", "none"},
	"idle":     {"none", "none"},
	"repeated": {"btn1", "btn1", "btn1", "none"},
}

var rootCmd = &cobra.Command{
	Use:           "testclient",
	Short:         "Stream button snapshots to the operator button service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var scenarioCmd = &cobra.Command{
	Use:   "scenario <name>",
	Short: "Replay a named button scenario",
	Long: `Replay a named button scenario as one gRPC stream.

Scenarios:
  single    btn1, none             one button released
  both      both, none             two buttons released
  sticky    btn1, both, none       two buttons released
  partial   both, btn1, none       two buttons released
  handoff   btn1, btn2, none       one button released
  idle      none, none             no events
  repeated  btn1 x3, none          one session only`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		modes, ok := scenarios[args[0]]
		if !ok {
			names := make([]string, 0, len(scenarios))
			for name := range scenarios {
				names = append(names, name)
			}
			sort.Strings(names)
			return fmt.Errorf("unknown scenario %q (available: %v)", args[0], names)
		}
		return stream(cmd.Context(), modes)
	},
}

var pressCmd = &cobra.Command{
	Use:   "press <mode>...",
	Short: "Send modes (btn1, btn2, both, none) in order",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return stream(cmd.Context(), args)
	},
}

func stream(ctx context.Context, modes []string) error {
	conn, err := grpc.NewClient(serverAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second+time.Duration(len(modes))*delay)
	defer cancel()

	s, err := grpcapi.StreamButtons(ctx, conn)
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	for _, mode := range modes {
		fmt.Printf("-> operator=%s mode=%s\n", operatorId, mode)
		if err := s.Send(grpcapi.ModeMessage(operatorId, mode)); err != nil {
			return fmt.Errorf("failed to send %s: %w", mode, err)
		}
		time.Sleep(delay)
	}

	ack, err := s.CloseAndRecv()
	if err != nil {
		return fmt.Errorf("failed to receive ack: %w", err)
	}
	printAck(ack)
	return nil
}

func printAck(ack *structpb.Struct) {
	fields := ack.GetFields()
	fmt.Printf("<- ack operator=%s received=%d\n",
		fields["operator"].GetStringValue(),
		int(fields["received"].GetNumberValue()))
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverAddr, "server", "s", "localhost:50051", "gRPC server address")
	rootCmd.PersistentFlags().StringVarP(&operatorId, "operator", "o", "0", "operator id")
	rootCmd.PersistentFlags().DurationVar(&delay, "delay", 100*time.Millisecond, "pause between snapshots")

	rootCmd.AddCommand(scenarioCmd)
	rootCmd.AddCommand(pressCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
