// Command penbridge streams smart-pen packets into an EcoNote drawing session.
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"econote-be/internal/discovery"
	"econote-be/pkg/pen"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

const (
	defaultServer   = "http://localhost:3000"
	defaultInterval = 10 * time.Millisecond
	defaultLinger   = 500 * time.Millisecond
	defaultTimeout  = 3 * time.Second
)

var (
	configPath string

	streamServer   string
	streamSession  string
	streamToken    string
	streamFile     string
	streamDiscover bool
	streamInterval time.Duration
	streamLinger   time.Duration

	encodeType     string
	encodeX        float64
	encodeY        float64
	encodePressure int

	discoverTimeout time.Duration
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "penbridge",
		Short:        "Relay smart-pen packets to an EcoNote drawing session",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", DefaultConfigPath(), "config file")

	rootCmd.AddCommand(newStreamCmd())
	rootCmd.AddCommand(newEncodeCmd())
	rootCmd.AddCommand(newDiscoverCmd())
	return rootCmd
}

func newStreamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Send hex packets from a file or stdin and print server events",
		Args:  cobra.NoArgs,
		RunE:  runStreamCmd,
	}
	cmd.Flags().StringVar(&streamServer, "server", defaultServer, "server base URL")
	cmd.Flags().StringVar(&streamSession, "session", "", "drawing session id")
	cmd.Flags().StringVar(&streamToken, "token", "", "bearer token")
	cmd.Flags().StringVar(&streamFile, "file", "", "packet file (default: stdin)")
	cmd.Flags().BoolVar(&streamDiscover, "discover", false, "find the server over mDNS")
	cmd.Flags().DurationVar(&streamInterval, "interval", defaultInterval, "delay between packets")
	cmd.Flags().DurationVar(&streamLinger, "linger", defaultLinger, "how long to wait for events after the last packet")
	return cmd
}

func runStreamCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "server", &streamServer, fileCfg.Server)
	applyStringConfig(cmd, "session", &streamSession, fileCfg.Session)
	applyStringConfig(cmd, "token", &streamToken, fileCfg.Token)
	applyBoolConfig(cmd, "discover", &streamDiscover, fileCfg.Discover)

	if streamSession == "" {
		return errors.New("--session is required")
	}

	if streamDiscover {
		found, err := discovery.Browse(defaultTimeout)
		if len(found) == 0 {
			if err != nil {
				return err
			}
			return errors.New("no EcoNote server found on the network")
		}
		streamServer = found[0].BaseURL()
		fmt.Fprintf(cmd.ErrOrStderr(), "using %s (%s)\n", found[0].Name, found[0].Addr)
	}

	var in io.Reader = cmd.InOrStdin()
	if streamFile != "" {
		f, err := os.Open(streamFile)
		if err != nil {
			return fmt.Errorf("failed to open packet file: %w", err)
		}
		defer f.Close()
		in = f
	}
	packets, err := ReadPackets(in)
	if err != nil {
		return err
	}

	endpoint, err := StreamURL(streamServer, streamSession, streamToken)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return stream(ctx, endpoint, packets, cmd.OutOrStdout())
}

func stream(ctx context.Context, endpoint string, packets [][]byte, out io.Writer) error {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("failed to connect: %w (HTTP %d)", err, resp.StatusCode)
		}
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if mt == websocket.TextMessage {
				fmt.Fprintln(out, string(data))
			}
		}
	}()

	for _, p := range packets {
		if err := conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
			return fmt.Errorf("failed to send packet: %w", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-done:
			return errors.New("server closed the connection")
		case <-time.After(streamInterval):
		}
	}

	select {
	case <-ctx.Done():
	case <-done:
	case <-time.After(streamLinger):
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return nil
}

func newEncodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Print one packet in hex",
		Args:  cobra.NoArgs,
		RunE:  runEncodeCmd,
	}
	cmd.Flags().StringVar(&encodeType, "type", "move", "down, move or up")
	cmd.Flags().Float64Var(&encodeX, "x", 0, "raw x")
	cmd.Flags().Float64Var(&encodeY, "y", 0, "raw y")
	cmd.Flags().IntVar(&encodePressure, "pressure", 512, "raw pressure (0-65535)")
	return cmd
}

func runEncodeCmd(cmd *cobra.Command, _ []string) error {
	t, err := pen.ParsePacketType(encodeType)
	if err != nil {
		return err
	}
	b, err := pen.Encode(t, encodeX, encodeY, encodePressure)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(b))
	return nil
}

func newDiscoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List EcoNote servers on the local network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			found, err := discovery.Browse(discoverTimeout)
			for _, inst := range found {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", inst.Name, inst.Addr, inst.BaseURL())
			}
			if err != nil {
				return err
			}
			if len(found) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "no servers found")
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&discoverTimeout, "timeout", defaultTimeout, "browse duration")
	return cmd
}

func applyStringConfig(cmd *cobra.Command, name string, target *string, value *string) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target *bool, value *bool) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}
