// Package client is a single-connection MQTT 5.0 client built on the
// packet codec. Commands are serialized by a cancellable command lock and
// share one transmit buffer; a read loop decodes inbound packets from one
// receive buffer and dispatches them.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bromq-dev/mqttc/pkg/packet"
	"github.com/bromq-dev/mqttc/pkg/topic"
)

// Transport is a connected byte stream to the server.
type Transport interface {
	io.ReadWriteCloser
}

// writeDeadliner is implemented by transports that can bound a write.
type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

// Client is an MQTT client bound to one transport.
type Client struct {
	tr      Transport
	cfg     Config
	logger  *slog.Logger
	metrics *Metrics

	// Command lock: holding the slot grants use of tx and nextPacketID.
	sem          chan struct{}
	tx           []byte
	nextPacketID uint16

	authMu sync.Mutex
	auth   credentials

	// Responses from the read loop
	connack  chan *packet.Connack
	pingresp chan struct{}

	clientID  atomic.Value // string
	connected atomic.Bool

	// Lifecycle
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// New creates a client over tr and starts its read loop. A nil cfg uses
// DefaultConfig.
func New(tr Transport, cfg *Config) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := &Client{
		tr:           tr,
		cfg:          cfg.withDefaults(),
		sem:          make(chan struct{}, 1),
		nextPacketID: 1,
		connack:      make(chan *packet.Connack, 1),
		pingresp:     make(chan struct{}, 1),
		done:         make(chan struct{}),
	}
	c.logger = c.cfg.Logger
	c.metrics = c.cfg.Metrics
	c.tx = make([]byte, c.cfg.TxBufferSize)
	c.clientID.Store("")

	go c.readLoop(packet.NewReader(tr, make([]byte, c.cfg.RxBufferSize)))
	return c
}

// ClientID returns the identifier of the current connection, which may
// have been assigned by the server.
func (c *Client) ClientID() string {
	return c.clientID.Load().(string)
}

// Connected reports whether the server has accepted the connection.
func (c *Client) Connected() bool {
	return c.connected.Load()
}

// Done returns a channel that is closed when the connection ends.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns the reason the connection ended, or nil while it is open.
func (c *Client) Err() error {
	select {
	case <-c.done:
		return c.closeErr
	default:
		return nil
	}
}

// SetAuth stores the username and password sent by the next Connect.
// Values longer than CredentialCapacity-1 bytes are truncated.
func (c *Client) SetAuth(username, password string) {
	c.authMu.Lock()
	c.auth.set(username, password)
	c.authMu.Unlock()
}

func (c *Client) credentials() (username, password string) {
	c.authMu.Lock()
	defer c.authMu.Unlock()
	return c.auth.get()
}

// commandContext applies CommandTimeout when ctx has no deadline.
func (c *Client) commandContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); !ok && c.cfg.CommandTimeout > 0 {
		return context.WithTimeout(ctx, c.cfg.CommandTimeout)
	}
	return context.WithCancel(ctx)
}

// lock acquires the command lock, giving up when ctx is done or the
// client closes.
func (c *Client) lock(ctx context.Context) error {
	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return c.closedErr()
	}
	// Both may be ready at once; a closed client always wins.
	select {
	case <-c.done:
		c.unlock()
		return c.closedErr()
	default:
		return nil
	}
}

func (c *Client) unlock() {
	<-c.sem
}

func (c *Client) closedErr() error {
	if errors.Is(c.closeErr, ErrClosed) {
		return c.closeErr
	}
	return fmt.Errorf("%w: %w", ErrClosed, c.closeErr)
}

// send writes one frame. A write failure ends the connection.
func (c *Client) send(ctx context.Context, t packet.Type, frame []byte) error {
	if wd, ok := c.tr.(writeDeadliner); ok {
		if deadline, ok := ctx.Deadline(); ok {
			_ = wd.SetWriteDeadline(deadline)
			defer wd.SetWriteDeadline(time.Time{})
		}
	}
	if _, err := c.tr.Write(frame); err != nil {
		err = fmt.Errorf("client: write %s: %w", t, err)
		c.shutdown(err)
		return err
	}
	c.metrics.sent(t, len(frame))
	return nil
}

func (c *Client) encodeFailed(t packet.Type, err error) error {
	c.metrics.codecError()
	return fmt.Errorf("client: encode %s: %w", t, err)
}

// Connect sends CONNECT and waits for the server's CONNACK. A refusal is
// returned as a *ConnackError.
func (c *Client) Connect(ctx context.Context, clientID string) error {
	ctx, cancel := c.commandContext(ctx)
	defer cancel()
	if err := c.lock(ctx); err != nil {
		return err
	}
	defer c.unlock()

	if c.connected.Load() {
		return ErrAlreadyConnected
	}
	if c.cfg.Credentials != nil {
		username, password, err := c.cfg.Credentials.Credentials(ctx, clientID)
		if err != nil {
			return fmt.Errorf("client: load credentials for %q: %w", clientID, err)
		}
		c.SetAuth(username, password)
	}
	username, password := c.credentials()

	pkt := &packet.Connect{
		ClientID:   clientID,
		KeepAlive:  c.cfg.KeepAlive,
		CleanStart: c.cfg.CleanStart,
		Username:   username,
		Password:   []byte(password),
	}
	if c.cfg.SessionExpiry > 0 {
		pkt.Properties = packet.Properties{packet.Uint32Property(packet.PropSessionExpiry, c.cfg.SessionExpiry)}
	}
	frame, err := pkt.Encode(c.tx)
	if err != nil {
		return c.encodeFailed(packet.TypeConnect, err)
	}

	// Drop a CONNACK left over from an abandoned attempt.
	select {
	case <-c.connack:
	default:
	}
	if err := c.send(ctx, packet.TypeConnect, frame); err != nil {
		return err
	}

	select {
	case ack := <-c.connack:
		if !ack.ReasonCode.IsSuccess() {
			reason, _ := ack.Properties.Text(packet.PropReasonString)
			c.logger.Warn("connection refused",
				"client_id", clientID,
				"reason_code", ack.ReasonCode.String(),
			)
			return &ConnackError{ReasonCode: ack.ReasonCode, Reason: reason}
		}
		if assigned, ok := ack.Properties.Text(packet.PropAssignedClientID); ok {
			clientID = assigned
		}
		c.clientID.Store(clientID)
		c.connected.Store(true)
		select {
		case <-c.done:
			// Lost while the ack was in flight.
			c.connected.Store(false)
			return c.closedErr()
		default:
		}
		c.logger.Info("connected",
			"client_id", clientID,
			"session_present", ack.SessionPresent,
		)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return c.closedErr()
	}
}

// Publish sends a PUBLISH with the given QoS. QoS 1 and 2 messages get a
// packet identifier but are not tracked for acknowledgment.
func (c *Client) Publish(ctx context.Context, topic string, qos packet.QoS, payload []byte) error {
	return c.PublishMessage(ctx, &packet.Publish{Topic: topic, QoS: qos, Payload: payload})
}

// PublishMessage sends msg. For QoS 1 and 2 a zero PacketID is replaced by
// a fresh identifier on the wire; msg itself is not modified.
func (c *Client) PublishMessage(ctx context.Context, msg *packet.Publish) error {
	if err := topic.ValidateName(msg.Topic); err != nil {
		return fmt.Errorf("client: publish %q: %w", msg.Topic, err)
	}

	ctx, cancel := c.commandContext(ctx)
	defer cancel()
	if err := c.lock(ctx); err != nil {
		return err
	}
	defer c.unlock()

	if !c.connected.Load() {
		return ErrNotConnected
	}
	m := *msg
	if m.QoS > packet.QoS0 && m.PacketID == 0 {
		m.PacketID = c.nextID()
	}
	frame, err := m.Encode(c.tx)
	if err != nil {
		return c.encodeFailed(packet.TypePublish, err)
	}
	return c.send(ctx, packet.TypePublish, frame)
}

// nextID returns the next packet identifier. The caller holds the command lock.
func (c *Client) nextID() uint16 {
	id := c.nextPacketID
	c.nextPacketID++
	if c.nextPacketID == 0 {
		c.nextPacketID = 1 // Skip 0
	}
	return id
}

// Ping sends PINGREQ and waits for PINGRESP.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := c.commandContext(ctx)
	defer cancel()
	if err := c.lock(ctx); err != nil {
		return err
	}
	defer c.unlock()

	if !c.connected.Load() {
		return ErrNotConnected
	}
	frame, err := packet.EncodePingreq(c.tx)
	if err != nil {
		return c.encodeFailed(packet.TypePingreq, err)
	}
	select {
	case <-c.pingresp:
	default:
	}
	if err := c.send(ctx, packet.TypePingreq, frame); err != nil {
		return err
	}

	select {
	case <-c.pingresp:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return c.closedErr()
	}
}

// Disconnect sends a normal DISCONNECT and closes the transport.
func (c *Client) Disconnect(ctx context.Context) error {
	ctx, cancel := c.commandContext(ctx)
	defer cancel()
	if err := c.lock(ctx); err != nil {
		return err
	}
	defer c.unlock()

	var err error
	if c.connected.Load() {
		var frame []byte
		if frame, err = (&packet.Disconnect{}).Encode(c.tx); err != nil {
			err = c.encodeFailed(packet.TypeDisconnect, err)
		} else {
			err = c.send(ctx, packet.TypeDisconnect, frame)
		}
	}
	c.shutdown(ErrClosed)
	return err
}

// Close closes the transport without sending DISCONNECT.
func (c *Client) Close() error {
	c.shutdown(ErrClosed)
	return nil
}

// shutdown ends the connection once, recording why.
func (c *Client) shutdown(err error) {
	c.closeOnce.Do(func() {
		c.closeErr = err
		wasConnected := c.connected.Swap(false)
		close(c.done)
		_ = c.tr.Close()

		if wasConnected {
			if errors.Is(err, ErrClosed) {
				c.logger.Info("disconnected", "client_id", c.ClientID())
			} else {
				c.logger.Info("connection lost", "client_id", c.ClientID(), "error", err.Error())
			}
		}
	})
}

// readLoop reads packets from the transport until it fails.
func (c *Client) readLoop(r *packet.Reader) {
	defer func() {
		if v := recover(); v != nil {
			c.logger.Error("panic in read loop",
				"client_id", c.ClientID(),
				"panic", v,
				"stack", string(debug.Stack()),
			)
			c.shutdown(fmt.Errorf("client: panic in read loop: %v", v))
		}
	}()

	for {
		pkt, err := r.ReadPacket()
		if err != nil {
			if isCodecError(err) {
				c.metrics.codecError()
			}
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				err = fmt.Errorf("%w: %w", ErrClosed, err)
			} else {
				err = fmt.Errorf("client: read: %w", err)
			}
			c.shutdown(err)
			return
		}
		c.metrics.received(pkt.Type())

		if err := c.dispatch(pkt); err != nil {
			if isCodecError(err) {
				c.metrics.codecError()
			}
			c.shutdown(err)
			return
		}
	}
}

// dispatch routes one inbound packet. A returned error ends the connection.
func (c *Client) dispatch(pkt *packet.Packet) error {
	switch pkt.Type() {
	case packet.TypeConnack:
		ack, err := packet.DecodeConnack(pkt)
		if err != nil {
			return fmt.Errorf("client: decode CONNACK: %w", err)
		}
		select {
		case c.connack <- ack:
		default:
			c.logger.Debug("unexpected CONNACK", "client_id", c.ClientID())
		}

	case packet.TypePingresp:
		if err := packet.DecodePingresp(pkt); err != nil {
			return fmt.Errorf("client: decode PINGRESP: %w", err)
		}
		select {
		case c.pingresp <- struct{}{}:
		default:
		}

	case packet.TypePublish:
		msg, err := packet.DecodePublish(pkt)
		if err != nil {
			return fmt.Errorf("client: decode PUBLISH: %w", err)
		}
		if c.cfg.OnMessage != nil {
			c.cfg.OnMessage(msg)
		}

	case packet.TypeDisconnect:
		d, err := packet.DecodeDisconnect(pkt)
		if err != nil {
			return fmt.Errorf("client: decode DISCONNECT: %w", err)
		}
		reason, _ := d.Properties.Text(packet.PropReasonString)
		c.logger.Info("server disconnect",
			"client_id", c.ClientID(),
			"reason_code", d.ReasonCode.String(),
			"reason", reason,
		)
		return fmt.Errorf("%w: %s", ErrServerDisconnected, d.ReasonCode)

	default:
		c.logger.Debug("ignoring packet",
			"client_id", c.ClientID(),
			"packet_type", pkt.Type().String(),
		)
	}
	return nil
}
