package console

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"demoreel/internal/logging"
	"demoreel/internal/services"
)

// Client is a transient TCP client for the game console. Each Send or
// SendBatch opens one connection, writes its commands, and closes. There is
// no pooling or reuse.
type Client struct {
	addr        string
	dialTimeout time.Duration
	drainWindow time.Duration
	policy      DelayPolicy
	logger      *slog.Logger
	dial        func(ctx context.Context, addr string, timeout time.Duration) (net.Conn, error)
}

// Option configures the client.
type Option func(*Client)

// WithDialTimeout overrides the per-connection dial timeout.
func WithDialTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.dialTimeout = timeout
		}
	}
}

// WithDelayPolicy overrides the command settle policy.
func WithDelayPolicy(policy DelayPolicy) Option {
	return func(c *Client) {
		c.policy = policy
	}
}

// WithDrainWindow bounds how long responses are drained after a command when
// the command owes no settle delay.
func WithDrainWindow(window time.Duration) Option {
	return func(c *Client) {
		if window > 0 {
			c.drainWindow = window
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.WithComponent(logger, "console")
	}
}

// New constructs a console client for the given host and port.
func New(host string, port int, opts ...Option) *Client {
	if host == "" {
		host = "127.0.0.1"
	}
	client := &Client{
		addr:        net.JoinHostPort(host, strconv.Itoa(port)),
		dialTimeout: 2 * time.Second,
		drainWindow: 200 * time.Millisecond,
		policy:      DefaultDelayPolicy(0),
		logger:      logging.NewNop(),
		dial:        dialTCP,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

func dialTCP(ctx context.Context, addr string, timeout time.Duration) (net.Conn, error) {
	dialer := net.Dialer{Timeout: timeout}
	return dialer.DialContext(ctx, "tcp", addr)
}

// Addr returns the console address the client targets.
func (c *Client) Addr() string {
	return c.addr
}

// Send issues a single command.
func (c *Client) Send(ctx context.Context, cmd string) error {
	return c.SendBatch(ctx, []string{cmd})
}

// SendBatch opens one connection and writes every command in order, waiting
// the policy's settle delay after each one. Response bytes received during
// the delay window are logged at debug and otherwise ignored.
func (c *Client) SendBatch(ctx context.Context, cmds []string) error {
	if len(cmds) == 0 {
		return nil
	}

	conn, err := c.dial(ctx, c.addr, c.dialTimeout)
	if err != nil {
		return services.Wrap(services.ErrConnection, "console", "connect", c.addr, err)
	}
	defer conn.Close()

	for i, cmd := range cmds {
		cmd = strings.TrimSpace(cmd)
		if cmd == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return services.Wrap(services.ErrSequencing, "console", "send", "context cancelled", err)
		}
		if _, err := conn.Write([]byte(cmd + "\n")); err != nil {
			return services.Wrap(services.ErrSequencing, "console", "send",
				fmt.Sprintf("connection closed before all commands were sent (%d of %d written)", i, len(cmds)), err)
		}
		c.logger.Debug("command sent", logging.String("command", cmd))
		c.settle(ctx, conn, c.policy.After(cmd))
	}
	return nil
}

// settle waits out the command's delay while draining whatever response text
// the game emits. Responses are advisory only.
func (c *Client) settle(ctx context.Context, conn net.Conn, delay time.Duration) {
	window := delay
	if window <= 0 {
		window = c.drainWindow
	}
	deadline := time.Now().Add(window)
	_ = conn.SetReadDeadline(deadline)

	buf := make([]byte, 4096)
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return
		}
		n, err := conn.Read(buf)
		if n > 0 {
			c.logger.Debug("console response", logging.String("response", strings.TrimSpace(string(buf[:n]))))
		}
		if err != nil {
			// Timeouts end the drain window; hard errors surface on the
			// next write, if any.
			break
		}
	}

	if remaining := time.Until(deadline); remaining > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(remaining):
		}
	}
	_ = conn.SetReadDeadline(time.Time{})
}

// TestConnection performs a single connect attempt with the dial timeout.
// Used for readiness polling while the game boots.
func (c *Client) TestConnection(ctx context.Context) error {
	conn, err := c.dial(ctx, c.addr, c.dialTimeout)
	if err != nil {
		return services.Wrap(services.ErrConnection, "console", "probe", c.addr, err)
	}
	return conn.Close()
}

// WaitForReady polls TestConnection with a fixed interval until the console
// accepts a connection or the retry budget is exhausted.
func (c *Client) WaitForReady(ctx context.Context, maxRetries int, interval time.Duration) error {
	if maxRetries <= 0 {
		maxRetries = 1
	}
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		lastErr = c.TestConnection(ctx)
		if lastErr == nil {
			c.logger.Debug("console ready", logging.Int("attempt", attempt))
			return nil
		}
		if attempt == maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return services.Wrap(services.ErrConnection, "console", "wait for ready", "context cancelled", ctx.Err())
		case <-time.After(interval):
		}
	}
	return services.Wrap(services.ErrConnection, "console", "wait for ready",
		fmt.Sprintf("console at %s not ready after %d attempts (%s apart)", c.addr, maxRetries, interval), lastErr)
}
