package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"uk.co.dudmesh.tether/internal/model"
)

func DonateStar(ledgerService LedgerService) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := &struct {
			To model.UserID `json:"to"`
		}{}
		if err := c.Bind(params); err != nil {
			return err
		}
		donation, err := ledgerService.Donate(actingUser(c), params.To)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, donation)
	}
}
