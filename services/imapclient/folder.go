package imapclient

import (
	"fmt"
	"strings"

	imapcore "github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
)

// ListFolders enumerates fetchable folders (spec §4.6 "folder-enumerated"
// state). Gmail accounts are folded to their single All Mail folder; every
// other provider enumerates the full LIST response, discarding the
// hierarchy-delimiter tokens.
func (c *Client) ListFolders() ([]string, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return nil, fmt.Errorf("imap client not connected")
	}

	if c.isGmailHost() {
		folders, err := c.rawListFolders(conn)
		if err != nil {
			return nil, err
		}
		for _, want := range gmailAllMailNames {
			for _, f := range folders {
				if f == want || strings.HasSuffix(f, "/"+want) {
					c.setState(StateFolderEnumerated)
					return []string{f}, nil
				}
			}
		}
		c.setState(StateFolderEnumerated)
		return []string{"INBOX"}, nil
	}

	folders, err := c.rawListFolders(conn)
	if err != nil {
		return nil, err
	}
	folders = stripDelimiterTokens(folders)
	c.setState(StateFolderEnumerated)
	return folders, nil
}

func (c *Client) rawListFolders(conn *client.Client) ([]string, error) {
	mailboxes := make(chan *imapcore.MailboxInfo, 16)
	done := make(chan error, 1)
	go func() { done <- conn.List("", "*", mailboxes) }()

	var names []string
	for m := range mailboxes {
		names = append(names, m.Name)
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("imap list: %w", err)
	}
	return names, nil
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}
