package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"panwatch/internal/domain/models"
	domrepo "panwatch/internal/domain/repository"
	"panwatch/pkg/logger"
)

// settingDescriptions documents the dashboard-editable keys, in display
// order. Unknown keys are accepted but listed last.
var settingOrder = []string{
	"ai_base_url",
	"ai_api_key",
	"ai_model",
	"http_proxy",
	"daily_report_cron",
	"suggestion_ttl_hours",
}

var settingDescriptions = map[string]string{
	"ai_base_url":          "AI chat-completions endpoint",
	"ai_api_key":           "AI API key",
	"ai_model":             "AI model name",
	"http_proxy":           "HTTP proxy address",
	"daily_report_cron":    "Daily report cron expression",
	"suggestion_ttl_hours": "Hours before an agent suggestion expires",
}

// SettingsUseCase manages the dashboard key/value settings. Defaults are
// seeded from the server config on first access; user edits win after that.
type SettingsUseCase struct {
	settings domrepo.SettingStore
	defaults map[string]string
	log      *logger.Logger
}

func NewSettingsUseCase(settings domrepo.SettingStore, defaults map[string]string, log *logger.Logger) *SettingsUseCase {
	return &SettingsUseCase{
		settings: settings,
		defaults: defaults,
		log:      log.Named("settings"),
	}
}

// Seed inserts defaults for all known keys that have no stored value yet.
func (uc *SettingsUseCase) Seed(ctx context.Context) error {
	seed := make([]models.Setting, 0, len(settingOrder))
	for _, key := range settingOrder {
		seed = append(seed, models.Setting{
			Key:         key,
			Value:       uc.defaults[key],
			Description: settingDescriptions[key],
		})
	}
	if err := uc.settings.SeedDefaults(ctx, seed); err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}
	return nil
}

// List returns all settings in display order, seeding missing defaults.
func (uc *SettingsUseCase) List(ctx context.Context) ([]models.Setting, error) {
	if err := uc.Seed(ctx); err != nil {
		return nil, err
	}
	settings, err := uc.settings.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}

	order := make(map[string]int, len(settingOrder))
	for i, key := range settingOrder {
		order[key] = i
	}
	sort.SliceStable(settings, func(i, j int) bool {
		oi, iok := order[settings[i].Key]
		oj, jok := order[settings[j].Key]
		if iok != jok {
			return iok
		}
		if iok && jok {
			return oi < oj
		}
		return settings[i].Key < settings[j].Key
	})
	return settings, nil
}

// Update sets one key. Unknown keys are created so the dashboard can
// carry deployment-specific values.
func (uc *SettingsUseCase) Update(ctx context.Context, key string, req models.SettingUpdateRequest) (*models.Setting, error) {
	setting := &models.Setting{
		Key:         key,
		Value:       req.Value,
		Description: settingDescriptions[key],
	}
	if err := uc.settings.Upsert(ctx, setting); err != nil {
		return nil, fmt.Errorf("update setting: %w", err)
	}
	uc.log.Info("setting updated", logger.String("key", key))
	return uc.get(ctx, key)
}

// Value returns the stored value for key, or the config default when
// nothing is stored.
func (uc *SettingsUseCase) Value(ctx context.Context, key string) (string, error) {
	setting, err := uc.settings.Get(ctx, key)
	if errors.Is(err, domrepo.ErrNotFound) {
		return uc.defaults[key], nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting: %w", err)
	}
	return setting.Value, nil
}

func (uc *SettingsUseCase) get(ctx context.Context, key string) (*models.Setting, error) {
	setting, err := uc.settings.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get setting: %w", err)
	}
	return setting, nil
}
