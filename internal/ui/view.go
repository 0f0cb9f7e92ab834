package ui

import "github.com/dmitrijs2005/dsbrowser/internal/models"

// View is the presentation surface the controller drives. Calls are
// serialized by the controller, including those from the auto-dismiss timer.
type View interface {
	SetForm(f models.Form)
	ShowNotification(n Notification)
	ClearNotification()
	SetConnectEnabled(enabled bool)
	ShowDataSources(sources []models.DataSource)
	HideResults()
}
