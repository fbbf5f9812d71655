package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// ClientIPKey is the gin context key RealIP stores the resolved address under.
const ClientIPKey = "real_ip"

// RealIP resolves the caller address once per request. CF-Connecting-IP wins,
// then the left-most X-Forwarded-For entry, then the socket peer. Forwarding
// headers are only honored when the peer falls inside one of trusted (CIDR
// or bare IP); an empty list trusts every peer.
func RealIP(trusted ...string) gin.HandlerFunc {
	nets := parseTrusted(trusted)
	return func(c *gin.Context) {
		ip := ""
		if peerTrusted(nets, c.RemoteIP()) {
			ip = forwardedIP(c)
		}
		if ip == "" {
			ip = c.RemoteIP()
		}
		c.Set(ClientIPKey, ip)
		c.Next()
	}
}

// ClientIP returns the address RealIP stored, or gin's own guess when the
// middleware is not installed.
func ClientIP(c *gin.Context) string {
	if ip := c.GetString(ClientIPKey); ip != "" {
		return ip
	}
	return c.ClientIP()
}

// AllowPrivateIP bypasses the limiter for loopback and private addresses,
// e.g. health checks from inside the cluster.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(ClientIP(c))
		return parsed != nil && (parsed.IsLoopback() || parsed.IsPrivate())
	}
}

func forwardedIP(c *gin.Context) string {
	if ip := net.ParseIP(strings.TrimSpace(c.GetHeader("CF-Connecting-IP"))); ip != nil {
		return ip.String()
	}
	first, _, _ := strings.Cut(c.GetHeader("X-Forwarded-For"), ",")
	if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
		return ip.String()
	}
	return ""
}

func parseTrusted(list []string) []*net.IPNet {
	var nets []*net.IPNet
	for _, s := range list {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if !strings.Contains(s, "/") {
			if ip := net.ParseIP(s); ip != nil && ip.To4() != nil {
				s += "/32"
			} else {
				s += "/128"
			}
		}
		if _, n, err := net.ParseCIDR(s); err == nil {
			nets = append(nets, n)
		}
	}
	return nets
}

func peerTrusted(nets []*net.IPNet, peer string) bool {
	if len(nets) == 0 {
		return true
	}
	ip := net.ParseIP(peer)
	if ip == nil {
		return false
	}
	for _, n := range nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
