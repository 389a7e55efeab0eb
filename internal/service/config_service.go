package service

import (
	"context"
	"errors"
	"strings"

	"ai-chatbot-be/internal/constant"
	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/repository/unitofwork"
	"ai-chatbot-be/pkg/events"
	"ai-chatbot-be/pkg/llm/gateway"
	"ai-chatbot-be/pkg/rag/prompt"

	"github.com/gofiber/fiber/v2"
)

// ModeSwitch is the part of the LLM gateway the config service drives.
type ModeSwitch interface {
	Mode() gateway.Mode
	SetMode(m gateway.Mode)
}

type IConfigService interface {
	GetMode(ctx context.Context) string
	SetMode(ctx context.Context, mode string) (string, error)
	// RestoreMode applies the persisted chat mode, if any.
	RestoreMode(ctx context.Context)
	// ResolveFragments overlays persisted prompt fragments on defaults.
	ResolveFragments(ctx context.Context, defaults prompt.Fragments) prompt.Fragments
	// GetPromptSettings returns the fragments the generation backends run with.
	GetPromptSettings(ctx context.Context) *dto.PromptSettingsResponse
	// HandleModeChanged applies a mode change announced by another instance.
	HandleModeChanged(ctx context.Context, event events.Event) error
}

type configService struct {
	uowFactory     unitofwork.RepositoryFactory
	modes          ModeSwitch
	fragments      prompt.Fragments
	eventPublisher events.Publisher
	instanceID     string
	logger         logger.ILogger
}

func NewConfigService(
	uowFactory unitofwork.RepositoryFactory,
	modes ModeSwitch,
	fragments prompt.Fragments,
	eventPublisher events.Publisher,
	instanceID string,
	log logger.ILogger,
) IConfigService {
	if eventPublisher == nil {
		eventPublisher = events.NopPublisher{}
	}
	return &configService{
		uowFactory:     uowFactory,
		modes:          modes,
		fragments:      fragments,
		eventPublisher: eventPublisher,
		instanceID:     instanceID,
		logger:         log,
	}
}

func (s *configService) GetMode(ctx context.Context) string {
	return string(s.modes.Mode())
}

func (s *configService) GetPromptSettings(ctx context.Context) *dto.PromptSettingsResponse {
	return &dto.PromptSettingsResponse{
		SystemPrompt:         s.fragments.System,
		PreventHallucination: s.fragments.PreventHallucination,
		Citation:             s.fragments.Citation,
		FormatInstruction:    s.fragments.FormatInstruction,
	}
}

func (s *configService) SetMode(ctx context.Context, mode string) (string, error) {
	m, err := gateway.ParseMode(mode)
	if err != nil {
		if errors.Is(err, gateway.ErrInvalidMode) {
			return "", fiber.NewError(fiber.StatusBadRequest, gateway.ErrInvalidMode.Error())
		}
		return "", err
	}

	s.modes.SetMode(m)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	err = uow.AiConfigRepository().Upsert(ctx, &entity.AiConfiguration{
		Key:         constant.AiConfigKeyChatMode,
		Value:       string(m),
		ValueType:   entity.AiConfigValueTypeString,
		Category:    entity.AiConfigCategoryLLM,
		Description: "Active generation backend (local or remote)",
	})
	if err != nil {
		s.logger.Error("CONFIG", "Failed to persist chat mode", map[string]interface{}{
			"mode":  string(m),
			"error": err.Error(),
		})
	}

	evt := events.New(constant.EventChatModeChanged, map[string]interface{}{
		"mode":        string(m),
		"instance_id": s.instanceID,
	})
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("CONFIG", "Failed to publish CHAT_MODE_CHANGED event", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return string(m), nil
}

func (s *configService) RestoreMode(ctx context.Context) {
	value, ok := lookupConfig(ctx, s.uowFactory, constant.AiConfigKeyChatMode, s.logger)
	if !ok {
		return
	}
	m, err := gateway.ParseMode(value)
	if err != nil {
		s.logger.Warn("CONFIG", "Ignoring persisted chat mode", map[string]interface{}{
			"value": value,
		})
		return
	}
	s.modes.SetMode(m)
}

func (s *configService) ResolveFragments(ctx context.Context, defaults prompt.Fragments) prompt.Fragments {
	return ResolvePromptFragments(ctx, s.uowFactory, defaults, s.logger)
}

// ResolvePromptFragments overlays the prompt fragments stored in
// ai_configurations on defaults. Blank or unreadable values keep the default.
func ResolvePromptFragments(ctx context.Context, uowFactory unitofwork.RepositoryFactory, defaults prompt.Fragments, log logger.ILogger) prompt.Fragments {
	out := defaults
	overrides := []struct {
		key    string
		target *string
	}{
		{constant.AiConfigKeySystemPrompt, &out.System},
		{constant.AiConfigKeyPreventHallucination, &out.PreventHallucination},
		{constant.AiConfigKeyCitation, &out.Citation},
		{constant.AiConfigKeyFormatInstruction, &out.FormatInstruction},
	}
	for _, o := range overrides {
		if value, ok := lookupConfig(ctx, uowFactory, o.key, log); ok {
			*o.target = value
		}
	}
	return out
}

func (s *configService) HandleModeChanged(ctx context.Context, event events.Event) error {
	payload := event.Payload()
	if origin, _ := payload["instance_id"].(string); origin != "" && origin == s.instanceID {
		return nil
	}
	mode, _ := payload["mode"].(string)
	m, err := gateway.ParseMode(mode)
	if err != nil {
		// Not retryable; drop it.
		s.logger.Warn("CONFIG", "Ignoring malformed mode event", map[string]interface{}{
			"mode": mode,
		})
		return nil
	}
	s.modes.SetMode(m)
	return nil
}

func lookupConfig(ctx context.Context, uowFactory unitofwork.RepositoryFactory, key string, log logger.ILogger) (string, bool) {
	uow := uowFactory.NewUnitOfWork(ctx)
	cfg, err := uow.AiConfigRepository().FindConfigurationByKey(ctx, key)
	if err != nil {
		log.Warn("CONFIG", "Failed to read configuration", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return "", false
	}
	if cfg == nil || strings.TrimSpace(cfg.Value) == "" {
		return "", false
	}
	return cfg.Value, true
}
