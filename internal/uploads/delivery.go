package uploads

import "github.com/labstack/echo/v4"

type Handler interface {
	CreateSession() echo.HandlerFunc
	GetSession() echo.HandlerFunc
	PresignPart() echo.HandlerFunc
	RecordPart() echo.HandlerFunc
	CompleteSession() echo.HandlerFunc
	PauseSession() echo.HandlerFunc
	ResumeSession() echo.HandlerFunc
	CancelSession() echo.HandlerFunc
}
