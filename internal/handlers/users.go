package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"uk.co.dudmesh.tether/internal/model"
)

func CreateUser(ledgerService LedgerService, tokens Tokens) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := &model.CreateUserParams{}
		if err := c.Bind(params); err != nil {
			return err
		}
		if params.Handle == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "handle is required")
		}
		user, err := ledgerService.CreateUser(params)
		if err != nil {
			return httpError(err)
		}
		token, err := tokens.Issue(user.ID)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"id":      user.ID,
			"handle":  user.Handle,
			"tapCode": user.TapCode,
			"token":   token,
		})
	}
}

func GetStats(ledgerService LedgerService) echo.HandlerFunc {
	return func(c echo.Context) error {
		stats, err := ledgerService.Stats(model.UserID(c.Param("id")))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, stats)
	}
}

func GetEncounters(ledgerService LedgerService) echo.HandlerFunc {
	return func(c echo.Context) error {
		history, err := ledgerService.EncounterHistory(model.UserID(c.Param("id")))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, history)
	}
}

func GetStreak(ledgerService LedgerService) echo.HandlerFunc {
	return func(c echo.Context) error {
		other := model.UserID(c.Param("id"))
		return c.JSON(http.StatusOK, ledgerService.StreakFor(actingUser(c), other))
	}
}

// AnnotateTip is called by the payment collaborator after a tip
// settles; the amount is annotation only and has no ledger effect.
func AnnotateTip(ledgerService LedgerService) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := &struct {
			Amount int `json:"amount"`
		}{}
		if err := c.Bind(params); err != nil {
			return err
		}
		if params.Amount <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid amount")
		}
		err := ledgerService.AnnotateTip(actingUser(c), model.EncounterID(c.Param("id")), params.Amount)
		if err != nil {
			return httpError(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
