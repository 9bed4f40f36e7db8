package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"uk.co.dudmesh.tether/internal/model"
)

func DirectReveal(ledgerService LedgerService) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := &struct {
			To model.UserID `json:"to"`
		}{}
		if err := c.Bind(params); err != nil {
			return err
		}
		if err := ledgerService.DirectReveal(actingUser(c), params.To); err != nil {
			return httpError(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func RequestReveal(ledgerService LedgerService) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := &struct {
			Target model.UserID `json:"target"`
		}{}
		if err := c.Bind(params); err != nil {
			return err
		}
		request, err := ledgerService.RequestReveal(actingUser(c), params.Target)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, request)
	}
}

func AcceptRevealRequest(ledgerService LedgerService) echo.HandlerFunc {
	return resolveRevealRequest(ledgerService, true)
}

func DeclineRevealRequest(ledgerService LedgerService) echo.HandlerFunc {
	return resolveRevealRequest(ledgerService, false)
}

func resolveRevealRequest(ledgerService LedgerService, accept bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		request, err := ledgerService.ResolveRevealRequest(c.Param("id"), actingUser(c), accept)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, request)
	}
}

// GetRevealed serves the cached identity fields another user exposed to
// the caller; 404 until they have.
func GetRevealed(ledgerService LedgerService) echo.HandlerFunc {
	return func(c echo.Context) error {
		entry, ok := ledgerService.CanSee(actingUser(c), model.UserID(c.Param("id")))
		if !ok {
			return echo.NewHTTPError(http.StatusNotFound, "not revealed to you")
		}
		return c.JSON(http.StatusOK, entry)
	}
}
