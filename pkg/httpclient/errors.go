package httpclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Sentinel errors for transport failure modes.
// Callers should use errors.Is() to check for these.
var (
	// ErrDNS indicates a DNS resolution failure for the server host.
	ErrDNS = errors.New("httpclient: DNS resolution failed")

	// ErrTLS indicates a TLS handshake or certificate verification failure.
	ErrTLS = errors.New("httpclient: TLS handshake failed")

	// ErrConnect indicates the server refused or dropped the connection.
	ErrConnect = errors.New("httpclient: connection failed")
)

// Classify wraps a transport error with the matching sentinel so callers
// can tell configuration problems from transient failures. Context errors
// and unrecognized errors are returned unchanged.
func Classify(err error) error {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Errorf("%w: %w", ErrDNS, err)
	}

	var (
		certErr   *tls.CertificateVerificationError
		unknownCA x509.UnknownAuthorityError
		hostErr   x509.HostnameError
		recordErr tls.RecordHeaderError
	)
	if errors.As(err, &certErr) || errors.As(err, &unknownCA) || errors.As(err, &hostErr) || errors.As(err, &recordErr) {
		return fmt.Errorf("%w: %w", ErrTLS, err)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return fmt.Errorf("%w: %w", ErrConnect, err)
	}
	return err
}

// Permanent reports whether err will not go away by retrying.
func Permanent(err error) bool {
	return errors.Is(err, ErrDNS) || errors.Is(err, ErrTLS) || errors.Is(err, http.ErrSchemeMismatch)
}
