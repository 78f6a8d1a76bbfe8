// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

// PresentError formats an error for user display with masking.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", context, Mask(err.Error()))
}

// Hint classifies a connection failure.
type Hint int

const (
	HintUnknown Hint = iota
	HintTimeout
	HintDNS
	HintRefused
	HintTLS
	HintAuth
	HintMissingSetting
)

// ConnectionHint inspects err and reports the most likely cause.
func ConnectionHint(err error) Hint {
	if err == nil {
		return HintUnknown
	}
	lower := strings.ToLower(err.Error())

	var netErr net.Error
	if strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline exceeded") ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return HintTimeout
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) || strings.Contains(lower, "no such host") {
		return HintDNS
	}
	if errors.Is(err, syscall.ECONNREFUSED) || strings.Contains(lower, "connection refused") {
		return HintRefused
	}
	if strings.Contains(lower, "tls") || strings.Contains(lower, "ssl") || strings.Contains(lower, "certificate") {
		return HintTLS
	}
	if strings.Contains(lower, "password authentication failed") || strings.Contains(lower, "access denied") ||
		strings.Contains(lower, "28p01") {
		return HintAuth
	}
	if strings.Contains(lower, "setting not found") {
		return HintMissingSetting
	}
	return HintUnknown
}

// ShowConnectionError prints a masked, classified connection failure.
func ShowConnectionError(context string, err error) {
	if err == nil {
		return
	}
	switch ConnectionHint(err) {
	case HintTimeout:
		pterm.Printf("⏱️  Connection timeout while %s\n", context)
		pterm.Println("   The database did not answer in time. Check the host and any firewall in between.")
	case HintDNS:
		pterm.Printf("🌐 Cannot resolve database host while %s\n", context)
		pterm.Println("   Check the host name in the connection string and your DNS settings.")
	case HintRefused:
		pterm.Printf("🚫 Connection refused while %s\n", context)
		pterm.Println("   The database is not accepting connections on that address and port.")
	case HintTLS:
		pterm.Printf("🔒 Secure connection failed while %s\n", context)
		pterm.Println("   Check sslmode / tls parameters and the server certificate.")
	case HintAuth:
		pterm.Printf("🔑 Authentication failed while %s\n", context)
		pterm.Println("   The user name or password in the connection string was rejected.")
	case HintMissingSetting:
		pterm.Printf("⚠️  No connection configured while %s\n", context)
		pterm.Println("   Run: sqlbind connect, or set the setting as an environment variable.")
	default:
		pterm.Printf("❌ Cannot connect to the database while %s\n", context)
	}
	pterm.Debug.Println(PresentError("details", err))
	pterm.Println()
}
