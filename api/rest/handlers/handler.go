// Package handlers implements the HTTP surface of spec §6, grounded on the
// teacher's gin-based api/rest/handlers package (request struct per
// endpoint, custom_err.MultiErrors for validation, gin.H for ad-hoc bodies).
package handlers

import (
	"github.com/customeros/mailserver/internal/logger"
	"github.com/customeros/mailserver/internal/repository"
	"github.com/customeros/mailserver/interfaces"
	"github.com/customeros/mailserver/services/search"
)

// Handlers bundles every collaborator the REST surface (and its RPC
// mirror) needs, the way the teacher's EmailsHandler holds *repository.
type Handlers struct {
	log       logger.Logger
	repos     *repository.Repositories
	scheduler interfaces.Scheduler
	sender    interfaces.OutboundSender
	search    *search.Engine
}

func New(log logger.Logger, repos *repository.Repositories, scheduler interfaces.Scheduler, sender interfaces.OutboundSender, searchEngine *search.Engine) *Handlers {
	return &Handlers{log: log, repos: repos, scheduler: scheduler, sender: sender, search: searchEngine}
}

// Repos, Scheduler, Sender and Search expose the collaborators the /llm/mcp
// RPC mirror dispatches onto directly, rather than duplicating their
// construction in server wiring.
func (h *Handlers) Repos() *repository.Repositories  { return h.repos }
func (h *Handlers) Scheduler() interfaces.Scheduler   { return h.scheduler }
func (h *Handlers) Sender() interfaces.OutboundSender { return h.sender }
func (h *Handlers) Search() *search.Engine            { return h.search }
