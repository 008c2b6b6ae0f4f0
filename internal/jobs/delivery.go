package jobs

import "github.com/labstack/echo/v4"

type Handler interface {
	CreateJob() echo.HandlerFunc
	GetJobByID() echo.HandlerFunc
	ListJobs() echo.HandlerFunc
	DeleteJob() echo.HandlerFunc
	DispatchJob() echo.HandlerFunc
	CancelJob() echo.HandlerFunc
	RetryJob() echo.HandlerFunc
	GetStatus() echo.HandlerFunc
	WatchJob() echo.HandlerFunc
	GetArtifacts() echo.HandlerFunc
	ResetStaleJob() echo.HandlerFunc
}
