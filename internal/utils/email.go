package utils

import "net/mail"

// IsValidEmailSyntax performs a local RFC 5322 syntax check, replacing the
// mailsherpa dependency the teacher uses for this purpose (unfetchable
// private module — see DESIGN.md).
func IsValidEmailSyntax(address string) bool {
	_, err := mail.ParseAddress(address)
	return err == nil
}

// LooksLikeAddress reports whether s parses as a bare RFC 5322 mailbox,
// used to decide whether Account.AccountName is an address (spec §4.7:
// "From is account.account_name when it looks like an address, else
// username").
func LooksLikeAddress(s string) bool {
	return IsValidEmailSyntax(s)
}
