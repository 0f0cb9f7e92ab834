package settings

import (
	"context"

	"github.com/dmitrijs2005/dsbrowser/internal/models"
)

// Storage keys. They match the names the settings were always saved under.
const (
	KeyServerURL = "serverUrl"
	KeySiteName  = "siteName"
	KeyTokenName = "tokenName"
)

var allKeys = []string{KeyServerURL, KeySiteName, KeyTokenName}

// Service loads, saves and clears models.Settings.
type Service interface {
	Load(ctx context.Context) (models.Settings, error)
	Save(ctx context.Context, s models.Settings) error
	Clear(ctx context.Context) error
}

type service struct {
	store Store
}

// NewService returns a Service on top of store.
func NewService(store Store) Service {
	return &service{store: store}
}

// Load returns the saved settings; missing keys come back empty.
func (s *service) Load(ctx context.Context) (models.Settings, error) {
	values, err := s.store.Get(ctx, allKeys)
	if err != nil {
		return models.Settings{}, err
	}
	return models.Settings{
		ServerURL: values[KeyServerURL],
		SiteName:  values[KeySiteName],
		TokenName: values[KeyTokenName],
	}, nil
}

// Save writes all three fields, empty ones included.
func (s *service) Save(ctx context.Context, st models.Settings) error {
	return s.store.Set(ctx, map[string]string{
		KeyServerURL: st.ServerURL,
		KeySiteName:  st.SiteName,
		KeyTokenName: st.TokenName,
	})
}

func (s *service) Clear(ctx context.Context) error {
	return s.store.Clear(ctx)
}
