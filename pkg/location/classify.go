package location

import (
	"regexp"
	"strings"
)

// Reserved addresses. They look like URLs but only ever trigger routing.
const (
	RootSentinel      = "ftp://root.local"
	ShareSentinel     = "sftp://smb.local"
	ShareCategoryAddr = "cifs://"
	ShareAddNew       = "cifs://add_new"
)

var (
	reservedHosts = map[string]bool{"root.local": true, "smb.local": true}
	knownSchemes  = []string{"ftp://", "ftps://", "sftp://", "smb://"}
	ipv4Pattern   = regexp.MustCompile(`^(?:[0-9]{1,3}\.){3}[0-9]{1,3}$`)
)

// RouteKind is the routing decision derived from an address.
type RouteKind int

const (
	RouteUnknown RouteKind = iota
	RouteReal
	RouteRootPlaceholder
	RouteSharePlaceholder
)

func (k RouteKind) String() string {
	switch k {
	case RouteReal:
		return "real"
	case RouteRootPlaceholder:
		return "root_placeholder"
	case RouteSharePlaceholder:
		return "share_placeholder"
	default:
		return "unknown"
	}
}

// Classify maps an address to its route kind. It is total and has no side
// effects.
func Classify(addr string) RouteKind {
	switch addr {
	case RootSentinel:
		return RouteRootPlaceholder
	case ShareSentinel:
		return RouteSharePlaceholder
	}
	if IsRealAddress(addr) {
		return RouteReal
	}
	return RouteUnknown
}

// IsRealAddress reports whether addr names a genuine remote endpoint.
//
// Rules in order: blank and the two sentinels are never real; a dotted quad
// is real; an address with a known scheme is real only when its host part
// contains a dot and is not a reserved host; any other address is real when
// it contains a dot and no whitespace.
func IsRealAddress(addr string) bool {
	if strings.TrimSpace(addr) == "" {
		return false
	}
	if addr == RootSentinel || addr == ShareSentinel {
		return false
	}
	if ipv4Pattern.MatchString(addr) {
		return true
	}
	for _, scheme := range knownSchemes {
		if !strings.HasPrefix(addr, scheme) {
			continue
		}
		rest := addr[len(scheme):]
		host, _, _ := strings.Cut(rest, "/")
		return strings.Contains(rest, ".") && !reservedHosts[host] && !reservedHosts[rest]
	}
	return strings.Contains(addr, ".") && !strings.ContainsAny(addr, " \t\r\n")
}

// HasShareScheme reports whether addr uses an SMB/CIFS style scheme.
func HasShareScheme(addr string) bool {
	return strings.HasPrefix(addr, "smb://") || strings.HasPrefix(addr, "cifs://")
}
