package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[RefreshCredentialsMessage] = (*RefreshCredentialsCommand)(nil)
	_ gocmd.Commander[UpdateTokensMessage]       = (*UpdateTokensCommand)(nil)
	_ gocmd.Commander[ProcessWebhookMessage]     = (*ProcessWebhookCommand)(nil)
)
