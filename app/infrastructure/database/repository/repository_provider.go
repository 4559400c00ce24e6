package repository

import (
	"github.com/google/wire"
	"square.ai/skill-gateway/app/infrastructure/database/repository/resourcerepo"
)

var RepositoryProvider = wire.NewSet(
	resourcerepo.NewResourceGormRepository,
)
