package tableau

import (
	"time"

	"github.com/dmitrijs2005/dsbrowser/internal/models"
)

// Request and response bodies of the REST API (JSON flavour).

type siteRef struct {
	ID         string `json:"id,omitempty"`
	ContentURL string `json:"contentUrl"`
}

type signInRequest struct {
	Credentials patCredentials `json:"credentials"`
}

type patCredentials struct {
	TokenName   string  `json:"personalAccessTokenName"`
	TokenSecret string  `json:"personalAccessTokenSecret"`
	Site        siteRef `json:"site"`
}

type signInResponse struct {
	Credentials *struct {
		Token string   `json:"token"`
		Site  *siteRef `json:"site"`
		User  *struct {
			ID string `json:"id"`
		} `json:"user"`
	} `json:"credentials"`
}

type namedRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type dataSourcesResponse struct {
	Pagination *struct {
		PageNumber     string `json:"pageNumber"`
		PageSize       string `json:"pageSize"`
		TotalAvailable string `json:"totalAvailable"`
	} `json:"pagination"`
	DataSources *struct {
		DataSource []dataSourceRecord `json:"datasource"`
	} `json:"datasources"`
}

type dataSourceRecord struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	ContentURL  string    `json:"contentUrl"`
	Description string    `json:"description"`
	CreatedAt   string    `json:"createdAt"`
	IsCertified bool      `json:"isCertified"`
	Project     *namedRef `json:"project"`
	Owner       *namedRef `json:"owner"`
}

// toModel converts a wire record. Empty strings count as absent, and a
// createdAt that is not RFC 3339 is dropped rather than failing the listing.
func (r dataSourceRecord) toModel() models.DataSource {
	ds := models.DataSource{
		ID:          r.ID,
		Name:        r.Name,
		Type:        optional(r.Type),
		ContentURL:  optional(r.ContentURL),
		Description: optional(r.Description),
		IsCertified: r.IsCertified,
	}
	if r.Project != nil {
		ds.ProjectName = optional(r.Project.Name)
	}
	if r.Owner != nil {
		ds.OwnerName = optional(r.Owner.Name)
	}
	if r.CreatedAt != "" {
		if ts, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
			ds.CreatedAt = &ts
		}
	}
	return ds
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
