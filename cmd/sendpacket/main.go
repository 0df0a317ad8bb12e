// Command sendpacket crafts and transmits a single test frame, either
// on a live veth interface or through a bmv2 simulated-device socket.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nerpa-project/p4check/internal/bmv2"
	"github.com/nerpa-project/p4check/internal/inject"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// errUsage signals a malformed invocation that already printed the
// usage block; main exits 1 without printing it again.
var errUsage = errors.New("usage error")

// usageError prints the error and the usage block.
func usageError(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err)
	_ = cmd.Usage()
	return errUsage
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sendpacket <0|1>",
		Short: "Send one fixed Ethernet/IP/UDP test frame",
		Long: `Send a single UDP test frame in one of two directions. Selector 0
sends from MAC 00:11:11:00:00:00 to 00:22:22:00:00:00 on veth0;
selector 1 sends the reverse frame on veth2. Any other selector is a
configuration error.

With --bmv2, the frame is delivered as a PacketIn over the behavioral
model's simulated-device socket instead of a live interface; replies
(PacketOut messages) are printed until they stop arriving.`,
		Version: Version,
		Args: func(c *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(c, args); err != nil {
				return usageError(c, err)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          sendPacket,
	}

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return usageError(c, err)
	})

	cmd.Flags().String("bmv2", "", "bmv2 --packet-in socket address (e.g. ipc:///tmp/bmv2.ipc)")
	cmd.Flags().Int32("port", 0, "Switch port for --bmv2 delivery")

	return cmd
}

func sendPacket(cmd *cobra.Command, args []string) error {
	spec, err := inject.ForSelector(args[0])
	if err != nil {
		return err
	}

	addr, _ := cmd.Flags().GetString("bmv2")
	if addr == "" {
		return inject.Send(spec)
	}

	frame, err := spec.Serialize()
	if err != nil {
		return err
	}

	client, err := bmv2.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()
	client.Trace = os.Stdout

	port, _ := cmd.Flags().GetInt32("port")
	_, err = client.SendAndReceive(bmv2.PacketIn(port, bmv2.Frame(frame)))
	return err
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
