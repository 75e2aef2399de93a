package api

import (
	"net"
	"net/http"
	"strings"
)

// getRealIP returns the client address used for rate limiting and logging.
// Forwarded headers are honored only when trustProxy is set and the direct
// peer belongs to one of trustedNetworks.
func getRealIP(r *http.Request, trustProxy bool, trustedNetworks []string) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}
	if !trustProxy {
		return directIP
	}

	if isTrustedProxy(directIP, trustedNetworks) {
		// X-Forwarded-For can contain multiple IPs, take the first one (original client)
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			ip := strings.TrimSpace(strings.Split(xff, ",")[0])
			if ip != "" && net.ParseIP(ip) != nil {
				return ip
			}
		}

		// Check X-Real-IP header (used by nginx)
		if xri := r.Header.Get("X-Real-IP"); xri != "" && net.ParseIP(xri) != nil {
			return xri
		}
	}

	return directIP
}

// isTrustedProxy checks if an IP address is in the list of trusted proxy networks
func isTrustedProxy(ip string, trustedNetworks []string) bool {
	if len(trustedNetworks) == 0 {
		return false
	}

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}

	for _, network := range trustedNetworks {
		if strings.Contains(network, "/") {
			_, ipNet, err := net.ParseCIDR(network)
			if err == nil && ipNet.Contains(parsedIP) {
				return true
			}
		} else if network == ip {
			return true
		}
	}

	return false
}
