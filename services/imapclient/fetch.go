package imapclient

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	imapcore "github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
)

// FetchFolder implements the "in-folder → search ALL → msg-list → fetch
// RFC822" leg of spec §4.6: select the folder, search ALL, optionally trim
// to the most recent `limit` UIDs, then fetch one UID at a time and stream
// batches of BatchSize to onBatch. Messages are never marked seen.
//
// Per-message fetch errors are logged and the UID skipped; the caller is
// responsible for treating a returned error as "skip this folder, continue
// the cycle" (spec §4.6).
func (c *Client) FetchFolder(folder string, limit int, onBatch func([]RawMessage) error) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("imap client not connected")
	}

	if _, err := conn.Select(folder, true); err != nil {
		return fmt.Errorf("imap select %s: %w", folder, err)
	}
	c.setState(StateInFolder)

	criteria := imapcore.NewSearchCriteria()
	uids, err := conn.UidSearch(criteria)
	if err != nil {
		return fmt.Errorf("imap search %s: %w", folder, err)
	}
	c.setState(StateMsgList)

	sort.Slice(uids, func(i, j int) bool { return uids[i] < uids[j] })
	if limit > 0 && len(uids) > limit {
		uids = uids[len(uids)-limit:]
	}

	var buffer []RawMessage
	for _, uid := range uids {
		octets, err := c.fetchOne(conn, uid)
		if err != nil {
			c.log.Warnf("imap fetch %s uid=%d: %v", folder, uid, err)
			continue
		}

		buffer = append(buffer, RawMessage{Folder: folder, UID: uid, Octets: octets})
		if len(buffer) == BatchSize {
			if err := onBatch(buffer); err != nil {
				return err
			}
			buffer = nil
		}
	}

	if len(buffer) > 0 {
		if err := onBatch(buffer); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) fetchOne(conn *client.Client, uid uint32) ([]byte, error) {
	seqSet := new(imapcore.SeqSet)
	seqSet.AddNum(uid)

	section := &imapcore.BodySectionName{Peek: true}
	items := []imapcore.FetchItem{section.FetchItem()}

	messages := make(chan *imapcore.Message, 1)
	done := make(chan error, 1)
	go func() { done <- conn.UidFetch(seqSet, items, messages) }()

	var octets []byte
	for msg := range messages {
		r := msg.GetBody(section)
		if r == nil {
			continue
		}
		buf := new(bytes.Buffer)
		if _, err := io.Copy(buf, r); err != nil {
			return nil, err
		}
		octets = buf.Bytes()
	}

	if err := <-done; err != nil {
		return nil, err
	}
	if octets == nil {
		return nil, fmt.Errorf("empty RFC822 body for uid %d", uid)
	}
	return octets, nil
}
