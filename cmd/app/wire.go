//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/karenlo/mapchat/internal/bootstrap"
	"github.com/karenlo/mapchat/internal/domain/assistant"
	"github.com/karenlo/mapchat/internal/infra/config"
	httpiface "github.com/karenlo/mapchat/internal/interface/http"
	"github.com/karenlo/mapchat/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideAssistantConfig,
		provideChatClient,
		provideChatClientInterface,
		provideRand,
		provideConversationStore,
		provideQueryLogRepository,
		assistant.NewInterpreter,
		assistant.NewSynthesizer,
		assistant.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
