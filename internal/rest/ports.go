package rest

import (
	"context"

	"plansey/internal/model"
	"plansey/internal/service"
)

type Auth interface {
	Register(ctx context.Context, in service.RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (*service.Session, error)
	ParseToken(token string) (service.Identity, error)
}

type Weddings interface {
	Create(ctx context.Context, userID uint, in service.WeddingInput) (*model.Wedding, error)
	Current(ctx context.Context, userID uint) (*model.Wedding, error)
	Get(ctx context.Context, userID, weddingID uint) (*model.Wedding, error)
	Update(ctx context.Context, userID, weddingID uint, in service.WeddingInput) (*model.Wedding, error)
}

type Checklists interface {
	ForUser(ctx context.Context, userID uint) (*service.Checklist, error)
	UpdateStatus(ctx context.Context, userID, weddingID, taskID uint, in service.StatusUpdate) (*model.WeddingTask, error)
}

type Dashboards interface {
	Build(ctx context.Context, userID uint) (*service.Dashboard, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the services the HTTP API is built on.
type Deps struct {
	Auth       Auth
	Weddings   Weddings
	Checklists Checklists
	Dashboards Dashboards
	DB         Pinger
}
