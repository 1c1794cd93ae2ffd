// Package multicast distributes lyric lines from one publisher to any number
// of subscribers over UDP multicast.
//
// Delivery is best effort: datagrams may be lost or reordered between
// publishers, and nothing authenticates a publisher.
package multicast

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/ngrok/lyricsync/internal/proto"
	"github.com/pkg/errors"
	"golang.org/x/net/ipv4"
)

var (
	// ErrNetworkInit indicates the multicast socket could not be set up.
	ErrNetworkInit = errors.New("multicast network setup failed")
	// ErrSendFailure indicates a lyric could not be published.
	ErrSendFailure = errors.New("sending lyric datagram failed")
	// ErrReceiveParse indicates a received datagram was not a lyric message.
	ErrReceiveParse = errors.New("received datagram could not be parsed")
	// ErrWrongRole indicates a master-only operation was attempted on a slave
	// channel or the reverse.
	ErrWrongRole = errors.New("operation not valid for this role")
	// ErrClosed indicates the channel has been closed.
	ErrClosed = errors.New("multicast channel closed")
)

// Channel is a multicast socket joined to the lyric group. A master channel
// publishes; a slave channel queues what it receives for Poll.
type Channel struct {
	cfg   Config
	role  Role
	group *net.UDPAddr
	ifi   *net.Interface

	conn    *ipv4.PacketConn
	mailbox *Mailbox

	closed    atomic.Bool
	closeOnce sync.Once
	// doneC is closed when the receive loop has returned.
	doneC chan struct{}

	l log15.Logger
}

// Option configures a Channel.
type Option func(c *Channel)

// WithLogger configures the logger to use. By default, nothing will be logged.
func WithLogger(l log15.Logger) Option {
	return func(c *Channel) {
		c.l = l
	}
}

// Open joins the multicast group described by cfg and starts receiving. Any
// failure is reported as an error wrapping ErrNetworkInit, and leaves no
// socket open.
//
// The socket is bound to the group port on all interfaces with address reuse,
// so several channels, and other programs speaking the same protocol, can
// share one host. Multicast loopback is enabled so those local channels hear
// each other.
func Open(ctx context.Context, cfg Config, role Role, opts ...Option) (*Channel, error) {
	if role != RoleMaster && role != RoleSlave {
		return nil, errors.Wrapf(ErrNetworkInit, "unknown role %q", role)
	}
	cfg = cfg.withDefaults()
	group, err := cfg.groupAddr()
	if err != nil {
		return nil, errors.Wrap(ErrNetworkInit, err.Error())
	}

	noopLogger := log15.New()
	noopLogger.SetHandler(log15.DiscardHandler())
	c := &Channel{
		cfg:     cfg,
		role:    role,
		group:   group,
		mailbox: NewMailbox(cfg.MailboxSize),
		doneC:   make(chan struct{}),
		l:       noopLogger,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.l = c.l.New("group", group.String(), "role", role)

	if err := c.listen(ctx); err != nil {
		return nil, errors.Wrap(ErrNetworkInit, err.Error())
	}
	c.l.Info("joined multicast group")

	go c.receiveLoop()
	return c, nil
}

func (c *Channel) listen(ctx context.Context) error {
	if c.cfg.Interface != "" {
		ifi, err := net.InterfaceByName(c.cfg.Interface)
		if err != nil {
			return fmt.Errorf("looking up interface %q: %w", c.cfg.Interface, err)
		}
		c.ifi = ifi
	}

	lc := net.ListenConfig{Control: reuseAddr}
	pc, err := lc.ListenPacket(ctx, "udp4", fmt.Sprintf("0.0.0.0:%d", c.cfg.Port))
	if err != nil {
		return fmt.Errorf("binding port %d: %w", c.cfg.Port, err)
	}
	conn := ipv4.NewPacketConn(pc)

	type step struct {
		what string
		fn   func() error
	}
	setup := []step{
		{"setting multicast ttl", func() error { return conn.SetMulticastTTL(c.cfg.TTL) }},
		{"joining group", func() error { return conn.JoinGroup(c.ifi, c.group) }},
		{"enabling multicast loopback", func() error { return conn.SetMulticastLoopback(true) }},
	}
	if c.ifi != nil {
		setup = append(setup, step{"setting multicast interface", func() error { return conn.SetMulticastInterface(c.ifi) }})
	}
	for _, step := range setup {
		if err := step.fn(); err != nil {
			conn.Close()
			return fmt.Errorf("%s: %w", step.what, err)
		}
	}
	c.conn = conn
	return nil
}

// Role is the role the channel was opened with.
func (c *Channel) Role() Role {
	return c.role
}

// Mailbox exposes the slave's queue, mainly for inspection. Use Poll to
// consume it.
func (c *Channel) Mailbox() *Mailbox {
	return c.mailbox
}

func (c *Channel) receiveLoop() {
	defer close(c.doneC)
	buf := make([]byte, c.cfg.BufferSize)
	for {
		if c.closed.Load() {
			return
		}
		// The deadline makes the loop notice Close even if closing the socket
		// did not wake the pending read.
		if err := c.conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout)); err != nil {
			c.l.Debug("could not set read deadline", "err", err)
		}
		n, _, src, err := c.conn.ReadFrom(buf)
		if err != nil {
			if c.closed.Load() || errors.Is(err, net.ErrClosed) {
				c.l.Info("multicast socket closed, no longer receiving")
				return
			}
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				continue
			}
			c.l.Error("error receiving datagram", "err", err)
			// don't spin on a socket that keeps failing
			time.Sleep(c.cfg.ReadTimeout / 10)
			continue
		}
		c.handleDatagram(buf[:n], src)
	}
}

func (c *Channel) handleDatagram(data []byte, src net.Addr) {
	msg, version, err := proto.DecodeDatagram(data)
	if err != nil {
		c.l.Warn("dropping datagram", "from", src, "err", errors.Wrap(ErrReceiveParse, err.Error()))
		return
	}
	if c.role == RoleMaster {
		// a master only listens to keep its socket drained
		return
	}
	env := envelopeFromMessage(msg)
	if !c.mailbox.Push(env) {
		return
	}
	c.l.Debug("received lyric", "from", src, "source", env.Source, "version", version, "len", len(env.Text))
}

// Publish sends env to the group. Only a master may publish.
func (c *Channel) Publish(env Envelope) error {
	if c.role != RoleMaster {
		return ErrWrongRole
	}
	if c.closed.Load() {
		return ErrClosed
	}
	data, err := proto.EncodeDatagram(env.message())
	if err != nil {
		return errors.Wrapf(ErrSendFailure, "encoding: %v", err)
	}
	if _, err := c.conn.WriteTo(data, nil, c.group); err != nil {
		return errors.Wrapf(ErrSendFailure, "%v", err)
	}
	c.l.Debug("published lyric", "len", len(env.Text), "duration", env.DurationMs)
	return nil
}

// Poll returns the oldest received envelope, if any, without blocking. Only a
// slave may poll.
func (c *Channel) Poll() (Envelope, bool, error) {
	if c.role != RoleSlave {
		return Envelope{}, false, ErrWrongRole
	}
	if c.closed.Load() {
		return Envelope{}, false, ErrClosed
	}
	env, ok := c.mailbox.Poll()
	return env, ok, nil
}

// Close leaves the group, closes the socket and waits for the receive loop to
// exit. Nothing is queued after Close begins. Only the first call does
// anything; later and concurrent calls return nil once it has finished.
func (c *Channel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.mailbox.Close()
		if lerr := c.conn.LeaveGroup(c.ifi, c.group); lerr != nil {
			c.l.Warn("error leaving multicast group", "err", lerr)
		}
		err = c.conn.Close()
		<-c.doneC
		c.l.Info("multicast channel closed")
	})
	return err
}

// Done returns a channel which is closed once the receive loop has exited.
func (c *Channel) Done() <-chan struct{} {
	return c.doneC
}
