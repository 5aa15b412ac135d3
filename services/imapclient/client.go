package imapclient

import (
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-sasl"

	"github.com/customeros/mailserver/internal/logger"
	"github.com/customeros/mailserver/internal/models"
)

const dialTimeout = 30 * time.Second

// Client wraps a single go-imap connection plus the state-machine position
// described in spec §4.6. It is owned by exactly one poller (spec §5: "The
// IMAP client map is owned by the scheduler; each entry has one owner").
type Client struct {
	log     logger.Logger
	account *models.Account

	mu    sync.Mutex
	state State
	conn  *client.Client
}

func New(log logger.Logger, account *models.Account) *Client {
	return &Client{log: log, account: account, state: StateDisconnected}
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect implements the connect policy of spec §4.6: implicit SSL, or
// plaintext followed by an immediate STARTTLS negotiation, then login.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	addr := fmt.Sprintf("%s:%d", c.account.ImapHost, c.account.ImapPort)
	dialer := &net.Dialer{Timeout: dialTimeout}

	var conn *client.Client
	var err error

	if c.account.ImapUseSSL {
		conn, err = client.DialWithDialerTLS(dialer, addr, &tls.Config{ServerName: c.account.ImapHost})
	} else {
		conn, err = client.DialWithDialer(dialer, addr)
	}
	if err != nil {
		return fmt.Errorf("imap connect %s: %w", addr, err)
	}

	if !c.account.ImapUseSSL && c.account.ImapUseTLS {
		if err := conn.StartTLS(&tls.Config{ServerName: c.account.ImapHost}); err != nil {
			conn.Logout()
			return fmt.Errorf("imap starttls %s: %w", addr, err)
		}
	}
	c.state = StateTLSReady

	conn.Timeout = dialTimeout
	if err := c.login(conn); err != nil {
		conn.Logout()
		c.state = StateDisconnected
		return fmt.Errorf("imap login %s: %w", c.account.Username, err)
	}
	conn.Timeout = 0

	c.conn = conn
	c.state = StateAuthed
	return nil
}

// EnsureConnected reuses the live connection, reconnecting only when the
// existing one has gone stale (spec §4.1: "reuse a single long-lived IMAP
// client per (account id, host) pair").
func (c *Client) EnsureConnected() error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		if err := conn.Noop(); err == nil {
			return nil
		}
		c.Close()
	}
	return c.Connect()
}

// Close performs a best-effort logout on both clean shutdown and teardown
// (spec §4.6: "Teardown: best-effort logout").
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		c.state = StateDisconnected
		return
	}
	if err := c.conn.Logout(); err != nil {
		c.log.Warnf("imap logout %s: %v", c.account.Name, err)
	}
	c.conn = nil
	c.state = StateDisconnected
}

// login prefers plain LOGIN for compatibility, falling back to SASL PLAIN
// authentication when the server advertises LOGINDISABLED — the same
// capability-gated choice the pack's aerion IMAP client makes.
func (c *Client) login(conn *client.Client) error {
	caps, err := conn.Capability()
	if err == nil && caps["LOGINDISABLED"] {
		return conn.Authenticate(sasl.NewPlainClient("", c.account.Username, c.account.Password))
	}
	return conn.Login(c.account.Username, c.account.Password)
}

var gmailAllMailNames = []string{"All Mail", "Alle Nachrichten"}

// isGmailHost reports whether the account's IMAP host is Gmail's, triggering
// the folder-folding special case of spec §4.6.
func (c *Client) isGmailHost() bool {
	return strings.HasSuffix(strings.ToLower(c.account.ImapHost), "gmail.com")
}

// stripDelimiterTokens discards the three hierarchy-delimiter literals a
// LIST response line's last quoted token may equal (spec §4.6).
func stripDelimiterTokens(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "." || n == "/" || n == `\` {
			continue
		}
		out = append(out, n)
	}
	return out
}
