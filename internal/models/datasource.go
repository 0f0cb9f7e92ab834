// Package models holds the value types shared by the API client, the popup
// controller and the renderers.
package models

import "time"

// DataSource is the normalized view of a remote data source record.
//
// Optional attributes are pointers: nil means the server did not send the
// field, and renderers must check for presence before displaying it.
type DataSource struct {
	ID          string     `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string     `json:"name" yaml:"name"`
	Type        *string    `json:"type,omitempty" yaml:"type,omitempty"`
	ProjectName *string    `json:"projectName,omitempty" yaml:"projectName,omitempty"`
	OwnerName   *string    `json:"ownerName,omitempty" yaml:"ownerName,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	IsCertified bool       `json:"isCertified" yaml:"isCertified"`
	ContentURL  *string    `json:"contentUrl,omitempty" yaml:"contentUrl,omitempty"`
	Description *string    `json:"description,omitempty" yaml:"description,omitempty"`
}

// DisplayName returns the name or a placeholder for unnamed records.
func (d DataSource) DisplayName() string {
	if d.Name == "" {
		return "Unnamed Data Source"
	}
	return d.Name
}
