package keel

import (
	"net/netip"
	"strconv"
	"strings"
)

// Address is the value produced by IPAddr: a host (hostname, IPv4 or
// IPv6 literal) and a numeric port.
type Address struct {
	Host string
	Port int
}

// String re-renders the address in the "HOST:PORT" form it was parsed from.
func (a Address) String() string {
	return a.Host + ":" + strconv.Itoa(a.Port)
}

// IPAddrOption parses "HOST:PORT" strings into Address values.
type IPAddrOption struct {
	BaseOption
}

// IPAddr creates an option accepting "HOST:PORT" strings.
func IPAddr() *IPAddrOption {
	return &IPAddrOption{BaseOption: requiredBase()}
}

// WithDefault sets the address string used when the field is absent or null.
func (o *IPAddrOption) WithDefault(addr string) *IPAddrOption {
	o.setDefault(addr)
	return o
}

// Coerce implements Option.
func (o *IPAddrOption) Coerce(ctx *Context, value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, errValue(CodeFormat, "Must be a string of format 'IP:PORT'")
	}

	i := strings.LastIndex(s, ":")
	if i < 0 {
		return nil, errValue(CodeFormat, "Must be a string of format 'IP:PORT'")
	}
	host, portStr := s[:i], s[i+1:]
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		host = host[1 : len(host)-1]
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return nil, errValue(CodeFormat, "'%s' is not a valid port", portStr)
	}

	// A host that looks like an address literal must parse as one.
	// Anything else is treated as a hostname.
	if looksLikeIP(host) {
		if _, err := netip.ParseAddr(host); err != nil {
			return nil, errValue(CodeFormat,
				"'%s' does not appear to be an IPv4 or IPv6 address", host)
		}
	}

	return Address{Host: host, Port: port}, nil
}

// PostValidate warns when the host is an any-address, which indicates a
// production or proxy setup unsuited to local development serving.
func (o *IPAddrOption) PostValidate(ctx *Context) error {
	addr, ok := ctx.Config.Get(ctx.Key).(Address)
	if !ok {
		return nil
	}
	ip, err := netip.ParseAddr(addr.Host)
	if err != nil || !ip.IsUnspecified() {
		return nil
	}
	ctx.Warn("The use of the IP address '" + addr.Host + "' suggests a production " +
		"environment or the use of a proxy to connect to the dev server. " +
		"However, the dev server is intended for local development purposes " +
		"only. Please use a third party production-ready server instead.")
	return nil
}

func looksLikeIP(host string) bool {
	if strings.Contains(host, ":") {
		return true
	}
	for _, r := range host {
		if r != '.' && (r < '0' || r > '9') {
			return false
		}
	}
	return len(host) > 0
}
