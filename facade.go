package gateways

import (
	"fmt"

	"github.com/goliatone/go-gateways/command"
)

// Commands groups the typed command handlers over one mutating service.
type Commands struct {
	RefreshCredentials *command.RefreshCredentialsCommand
	UpdateTokens       *command.UpdateTokensCommand
	ProcessWebhook     *command.ProcessWebhookCommand
}

// Facade is the composition root consumers dispatch through.
type Facade struct {
	service  command.MutatingService
	commands Commands
}

func NewFacade(service command.MutatingService) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("gateways: mutating service is required")
	}
	return &Facade{
		service: service,
		commands: Commands{
			RefreshCredentials: command.NewRefreshCredentialsCommand(service),
			UpdateTokens:       command.NewUpdateTokensCommand(service),
			ProcessWebhook:     command.NewProcessWebhookCommand(service),
		},
	}, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Service() command.MutatingService {
	if f == nil {
		return nil
	}
	return f.service
}
