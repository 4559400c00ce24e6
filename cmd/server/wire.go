//go:build wireinject

package main

import (
	"github.com/google/wire"
	"square.ai/skill-gateway/app/domain"
	"square.ai/skill-gateway/app/infrastructure"
	"square.ai/skill-gateway/app/infrastructure/database/repository"
	"square.ai/skill-gateway/app/interfaces/http"
	"square.ai/skill-gateway/app/interfaces/http/routes"
)

func CreateApplication() (*Application, func(), error) {
	wire.Build(
		infrastructure.InfrastructureProvider,
		repository.RepositoryProvider,
		domain.ServiceProvider,
		routes.RouteProvider,
		http.NewHttpServer,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil, nil
}
