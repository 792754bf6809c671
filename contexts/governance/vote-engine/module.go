package voteengine

import (
	"log/slog"

	httpadapter "daotools/contexts/governance/vote-engine/adapters/http"
	"daotools/contexts/governance/vote-engine/adapters/memory"
	"daotools/contexts/governance/vote-engine/application/commands"
	"daotools/contexts/governance/vote-engine/application/queries"
	"daotools/contexts/governance/vote-engine/domain/entities"
	"daotools/contexts/governance/vote-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Votes      ports.VoteRepository
	Ballots    ports.BallotRepository
	Membership ports.MembershipRepository
	Locks      ports.VoteLocker
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	voteUseCase := commands.VoteUseCase{
		Votes:      deps.Votes,
		Ballots:    deps.Ballots,
		Membership: deps.Membership,
		Locks:      deps.Locks,
		Outbox:     deps.Outbox,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	resultsUseCase := queries.ResultsUseCase{
		Votes:   deps.Votes,
		Ballots: deps.Ballots,
		Locks:   deps.Locks,
		Outbox:  deps.Outbox,
		Clock:   deps.Clock,
		IDGen:   deps.IDGen,
		Logger:  deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Votes:   voteUseCase,
			Results: resultsUseCase,
			Logger:  deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Vote, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Votes:      store,
		Ballots:    store,
		Membership: store,
		Locks:      store,
		Outbox:     store,
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
