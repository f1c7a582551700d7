// Command udpclient impersonates a button device by sending
// "buttons:<on|off>,<on|off>" datagrams.
package main

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	targetAddr string
	interval   time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "udpclient <state>...",
	Short: "Send button states to the operator button service over UDP",
	Long: `Send button states to the operator button service over UDP.

Each state is btn1, btn2, both or none, or a raw pair such as on,off.
The service treats the sender address as the operator.

Examples:
  udpclient btn1 both none
  udpclient --target 10.0.0.2:8888 on,off off,off`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := net.Dial("udp", targetAddr)
		if err != nil {
			return fmt.Errorf("failed to dial %s: %w", targetAddr, err)
		}
		defer conn.Close()

		for i, arg := range args {
			msg, err := message(arg)
			if err != nil {
				return err
			}
			if _, err := conn.Write([]byte(msg)); err != nil {
				return fmt.Errorf("failed to send %q: %w", msg, err)
			}
			fmt.Printf("-> %s\n", msg)
			if i < len(args)-1 {
				time.Sleep(interval)
			}
		}
		return nil
	},
}

func message(state string) (string, error) {
	switch state {
	case "none":
		return "buttons:off,off", nil
	case "btn1":
		return "buttons:on,off", nil
	case "btn2":
		return "buttons:off,on", nil
	case "both":
		return "buttons:on,on", nil
	}
	if strings.Contains(state, ",") {
		return "buttons:" + state, nil
	}
	return "", fmt.Errorf("unknown state %q", state)
}

func init() {
	rootCmd.Flags().StringVarP(&targetAddr, "target", "t", "localhost:8888", "service UDP address")
	rootCmd.Flags().DurationVarP(&interval, "interval", "i", 200*time.Millisecond, "pause between messages")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
