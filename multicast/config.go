package multicast

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// DefaultGroup is the multicast group lyrics are published to.
	DefaultGroup = "239.255.255.250"
	// DefaultPort is the UDP port of DefaultGroup.
	DefaultPort = 31314
	// DefaultTTL lets datagrams cross one router. It is also the minimum.
	DefaultTTL = 2
	// DefaultReadTimeout bounds how long the receive loop blocks before it
	// checks whether the channel was closed.
	DefaultReadTimeout = 500 * time.Millisecond
	// DefaultBufferSize is the receive buffer size. Larger datagrams are
	// truncated and then fail to decode.
	DefaultBufferSize = 2048
	// DefaultMailboxSize is how many envelopes a slave buffers between polls.
	DefaultMailboxSize = 64
)

// Config describes the multicast endpoint. The zero value of each field means
// its default.
type Config struct {
	Group string
	Port  int
	// TTL is raised to DefaultTTL if lower.
	TTL int
	// Interface is the name of the network interface to join the group on and
	// send from. Empty lets the OS choose.
	Interface   string
	ReadTimeout time.Duration
	BufferSize  int
	MailboxSize int
}

// DefaultConfig returns the well-known lyric group.
func DefaultConfig() Config {
	return Config{
		Group:       DefaultGroup,
		Port:        DefaultPort,
		TTL:         DefaultTTL,
		ReadTimeout: DefaultReadTimeout,
		BufferSize:  DefaultBufferSize,
		MailboxSize: DefaultMailboxSize,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Group == "" {
		c.Group = d.Group
	}
	if c.Port == 0 {
		c.Port = d.Port
	}
	if c.TTL < DefaultTTL {
		c.TTL = DefaultTTL
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.BufferSize <= 0 {
		c.BufferSize = d.BufferSize
	}
	if c.MailboxSize <= 0 {
		c.MailboxSize = d.MailboxSize
	}
	return c
}

func (c Config) groupAddr() (*net.UDPAddr, error) {
	ip := net.ParseIP(c.Group).To4()
	if ip == nil || !ip.IsMulticast() {
		return nil, errors.Errorf("%q is not an IPv4 multicast group", c.Group)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return nil, errors.Errorf("invalid port %d", c.Port)
	}
	return &net.UDPAddr{IP: ip, Port: c.Port}, nil
}

// Role decides which half of the protocol a process runs.
type Role string

const (
	// RoleMaster reads the lyric from the player and publishes it.
	RoleMaster Role = "master"
	// RoleSlave subscribes to published lyrics.
	RoleSlave Role = "slave"
)

// ParseRole parses "master" or "slave", ignoring case.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleMaster:
		return RoleMaster, nil
	case RoleSlave:
		return RoleSlave, nil
	}
	return "", fmt.Errorf("unknown role %q, expected %q or %q", s, RoleMaster, RoleSlave)
}

func (r Role) String() string {
	return string(r)
}
