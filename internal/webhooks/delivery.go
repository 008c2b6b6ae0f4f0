package webhooks

import "github.com/labstack/echo/v4"

type Handler interface {
	HandleEvent() echo.HandlerFunc
}
