package utils

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/seancfoley/ipaddress-go/ipaddr"
)

// UnknownClient is the key used when no client address can be determined.
const UnknownClient = "unknown"

// ClientKey identifies the caller for rate limiting: the first
// X-Forwarded-For entry when it is an IP address, else the peer address,
// else UnknownClient. Addresses are normalized so one client has one key.
func ClientKey(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0])
		if key := normalizeIP(first); key != "" {
			return key
		}
	}

	if ip := c.RemoteIP(); ip != "" {
		if key := normalizeIP(ip); key != "" {
			return key
		}
		return ip
	}

	return UnknownClient
}

func normalizeIP(s string) string {
	if s == "" {
		return ""
	}
	addr := ipaddr.NewIPAddressString(s).GetAddress()
	if addr == nil || addr.GetNetworkPrefixLen() != nil {
		return ""
	}
	return addr.ToCanonicalString()
}
