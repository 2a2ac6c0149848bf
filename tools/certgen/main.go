// Package main generates a development Certificate Authority and a server
// certificate for running the FeedlinerX API over HTTPS locally. An existing
// CA in the output directory is reused so clients keep trusting it.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/indranuj17/FeedlinerX/internal/certgen"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("certgen", flag.ContinueOnError)
	dir := fs.String("dir", "certs", "output directory")
	hosts := fs.String("hosts", "localhost,127.0.0.1", "comma-separated server host names and IPs")
	if err := fs.Parse(args); err != nil {
		return err
	}

	caCertPath := filepath.Join(*dir, "ca.crt")
	caKeyPath := filepath.Join(*dir, "ca.key")

	caCert, caKey, err := certgen.LoadCACredentials(caCertPath, caKeyPath)
	if err != nil {
		// 1. Generate CA certificate and key
		certPEM, keyPEM, err := certgen.GenerateCA("FeedlinerX Dev CA")
		if err != nil {
			return err
		}
		if err := certgen.WritePair(*dir, "ca", certPEM, keyPEM); err != nil {
			return err
		}
		if caCert, caKey, err = certgen.ParseCA(certPEM, keyPEM); err != nil {
			return err
		}
		fmt.Fprintf(out, "generated CA in %s\n", caCertPath)
	}

	// 2. Generate server certificate/key signed by CA
	var names []string
	for _, h := range strings.Split(*hosts, ",") {
		if h = strings.TrimSpace(h); h != "" {
			names = append(names, h)
		}
	}
	certPEM, keyPEM, err := certgen.GenerateServerCertificate(names, caCert, caKey)
	if err != nil {
		return err
	}
	if err := certgen.WritePair(*dir, "server", certPEM, keyPEM); err != nil {
		return err
	}

	fmt.Fprintf(out, "server certificate for %s written to %s\n", strings.Join(names, ", "), *dir)
	return nil
}
