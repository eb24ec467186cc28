package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/net/idna"

	"github.com/mt-inside/tls-connect/pkg/client"
	"github.com/mt-inside/tls-connect/pkg/dial"
	"github.com/mt-inside/tls-connect/pkg/state"
	"github.com/mt-inside/tls-connect/pkg/utils"
)

func init() {
	spew.Config.DisableMethods = true
	spew.Config.DisablePointerMethods = true
}

func main() {

	cmd := &cobra.Command{
		Use:          "tls-connect host [port]",
		Short:        "Resolve, connect, and TLS-handshake with a server, then print what was agreed",
		Args:         cobra.RangeArgs(1, 2),
		RunE:         appMain,
		SilenceUsage: true,
	}

	cmd.Flags().StringP("sni", "s", "", "SNI ServerName (default: host, if it's a name)")
	cmd.Flags().StringSliceP("ca", "C", nil, "Path to TLS server CA file(s) (default: system roots)")
	cmd.Flags().StringP("cert", "c", "", "Path to TLS client certificate file")
	cmd.Flags().StringP("key", "k", "", "Path to TLS client key file")
	cmd.Flags().BoolP("insecure", "K", false, "Don't verify the serving cert chain (or its names)")
	cmd.Flags().Bool("no-verify-name", false, "Don't check the serving cert's names against the SNI ServerName")
	cmd.Flags().Bool("require-ocsp-stapling", false, "Require an OCSP response stapled to the handshake")
	cmd.Flags().StringSlice("alpn", nil, "ALPN protocols to offer, in preference order")
	cmd.Flags().String("tls-min", "", "Minimum TLS version, eg 1.2")
	cmd.Flags().String("tls-max", "", "Maximum TLS version, eg 1.3")
	cmd.Flags().StringP("resolver", "r", state.ResolverSystem, "Name resolver: system, dns, or dnssec")
	cmd.Flags().String("resolv-conf", state.DefaultResolvConf, "resolv.conf for the dns and dnssec resolvers")
	cmd.Flags().Bool("all-errors", false, "On connection failure, report every address's error, not just the last")
	cmd.Flags().DurationP("timeout", "t", 10*time.Second, "Timeout for resolution, and for each read/write during the handshake")
	cmd.Flags().BoolP("print-chain", "p", true, "Print the serving cert chain")
	cmd.Flags().Bool("dump", false, "Dump the raw connection state")
	cmd.Flags().Bool("no-colour", false, "Don't colour output")
	cmd.Flags().CountP("verbose", "v", "Log more; repeat for even more")
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		panic(err)
	}
	viper.SetEnvPrefix("TLS_CONNECT")
	viper.AutomaticEnv()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func getLogger(verbosity int) logr.Logger {
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(zapcore.Level(-verbosity))
	zc.DisableStacktrace = true
	zl, err := zc.Build()
	if err != nil {
		panic(err)
	}
	return zapr.NewLogger(zl)
}

// serverName returns nil if the user didn't give one, so that the host is used.
func serverName(flag string) (*string, error) {
	if flag == "" {
		return nil, nil
	}
	if utils.IsAddressLiteral(flag) {
		return &flag, nil
	}
	// Unicode names go out as A-labels
	sn, err := idna.Lookup.ToASCII(flag)
	if err != nil {
		return nil, fmt.Errorf("SNI %q: %w", flag, err)
	}
	return &sn, nil
}

// sniWarning says what will happen to a --sni that can't be sent as given, or "" if it can.
func sniWarning(flag string) string {
	if flag == "" || utils.ServerNameConformant(flag) {
		return ""
	}
	c := utils.CanonicalServerName(&flag)
	switch {
	case c == nil:
		return fmt.Sprintf("SNI %q is an address literal; no SNI will be sent", flag)
	case *c != flag:
		return fmt.Sprintf("SNI %q isn't RFC 6066 conformant; sending %q", flag, *c)
	}
	return fmt.Sprintf("SNI %q isn't RFC 6066 conformant (ports don't belong in SNI)", flag)
}

func resolverName(cfg *state.Config) string {
	switch cfg.Resolver {
	case state.ResolverDNS, state.ResolverDNSSEC:
		return fmt.Sprintf("%s (nameservers from %s)", cfg.Resolver, cfg.ResolvConf)
	}
	return dial.SystemResolverName
}

func appMain(cmd *cobra.Command, args []string) error {
	s := utils.NewStyler(!viper.GetBool("no-colour"))
	log := getLogger(viper.GetInt("verbose"))

	host := args[0]
	port := ""
	if len(args) > 1 {
		port = args[1]
	}

	cfg, err := state.ConfigFromViper(viper.GetViper())
	if s.CheckErr(os.Stderr, err) {
		return err
	}
	if w := sniWarning(viper.GetString("sni")); w != "" {
		s.PrintWarn(os.Stderr, w)
	}
	sni, err := serverName(viper.GetString("sni"))
	if s.CheckErr(os.Stderr, err) {
		return err
	}

	connector := dial.NewConnector(log.WithName("connector"))
	connector.Aggregate = viper.GetBool("all-errors")
	sess := client.New(log, cfg, client.WithConnector(connector))
	defer sess.Close()

	timeout := viper.GetDuration("timeout")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err = sess.ConnectServerName(ctx, host, port, sni)
	if s.CheckErr(os.Stderr, err) {
		return err
	}

	// Handshake I/O is blocking on the raw socket, so the context can't interrupt it; the socket timeouts can
	if err := dial.SetIOTimeout(sess.Socket(), timeout); err != nil {
		s.PrintWarn(os.Stderr, fmt.Sprintf("can't set socket timeout: %v", err))
	}

	err = sess.Handshake(ctx)
	if s.CheckErr(os.Stderr, err) {
		return err
	}

	target := host
	if port != "" {
		target = net.JoinHostPort(host, port)
	}
	sn, ok := sess.ServerName()
	var snp *string
	if ok {
		snp = &sn
	}
	cs := sess.ConnectionState()
	pD := state.NewProbeData(target, sess.Transport().String(), snp, cfg, cs)
	pD.Resolver = resolverName(cfg)
	pD.Print(os.Stdout, s, cfg, viper.GetBool("print-chain"))

	if viper.GetBool("dump") {
		s.Banner(os.Stdout, "Raw connection state")
		spew.Fdump(os.Stdout, cs)
	}

	fmt.Println()

	return nil
}
