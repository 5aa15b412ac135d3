package handlers

import (
	"github.com/customeros/mailserver/internal/logger"
	"github.com/customeros/mailserver/internal/models"
	"github.com/customeros/mailserver/services/imapclient"
)

// testIMAPLogin opens a throwaway IMAP client, attempts to authenticate,
// and tears it down — the IMAP leg of TestConnection. It never touches the
// scheduler's live client map (spec §5: that map has exactly one owner).
func testIMAPLogin(log logger.Logger, account *models.Account) error {
	c := imapclient.New(log, account)
	defer c.Close()
	return c.Connect()
}
