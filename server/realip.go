package server

import (
	"errors"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

var privatePrefixes = []netip.Prefix{
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("169.254.0.0/16"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("fc00::/7"),
	netip.MustParsePrefix("fe80::/10"),
}

// IsPrivateIP reports whether address is loopback, link local or in a private range
func IsPrivateIP(address string) (bool, error) {
	addr, err := netip.ParseAddr(address)
	if err != nil {
		return false, errors.New("address is not valid")
	}
	addr = addr.Unmap()
	for _, prefix := range privatePrefixes {
		if prefix.Contains(addr) {
			return true, nil
		}
	}
	return false, nil
}

// RealIP returns the first public address of X-Forwarded-For,
// then X-Real-Ip, then the remote address
func RealIP(r *http.Request) string {
	xRealIP := r.Header.Get("X-Real-Ip")
	xForwardedFor := r.Header.Get("X-Forwarded-For")
	if xRealIP == "" && xForwardedFor == "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host
		}
		return r.RemoteAddr
	}
	for _, address := range strings.Split(xForwardedFor, ",") {
		address = strings.TrimSpace(address)
		if isPrivate, err := IsPrivateIP(address); !isPrivate && err == nil {
			return address
		}
	}
	return xRealIP
}
