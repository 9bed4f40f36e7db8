package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func StartCodeSession(rendezvousService RendezvousService) echo.HandlerFunc {
	return func(c echo.Context) error {
		session, err := rendezvousService.StartCodeSession(actingUser(c))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, session)
	}
}

func JoinCodeSession(rendezvousService RendezvousService) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := &struct {
			Code string `json:"code"`
		}{}
		if err := c.Bind(params); err != nil {
			return err
		}
		result, err := rendezvousService.JoinCode(params.Code, actingUser(c))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, result)
	}
}

func TapLanding(rendezvousService RendezvousService) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, err := rendezvousService.TapLanding(c.Param("code"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, identity)
	}
}

func TapPair(rendezvousService RendezvousService) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := &struct {
			Name string `json:"name"`
		}{}
		if err := c.Bind(params); err != nil {
			return err
		}
		if params.Name == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "name is required")
		}
		result, err := rendezvousService.TapPair(c.Param("code"), params.Name)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, result)
	}
}

func SonicJoin(rendezvousService RendezvousService) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := &struct {
			Operator bool   `json:"operator"`
			EventID  string `json:"eventId"`
		}{}
		if err := c.Bind(params); err != nil {
			return err
		}
		frequency, err := rendezvousService.SonicJoin(actingUser(c), params.Operator, params.EventID)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"frequency": frequency})
	}
}

func SonicReport(rendezvousService RendezvousService) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := &struct {
			Frequency float64 `json:"frequency"`
		}{}
		if err := c.Bind(params); err != nil {
			return err
		}
		result, err := rendezvousService.SonicReport(actingUser(c), params.Frequency)
		if err != nil {
			return httpError(err)
		}
		if result == nil {
			// nothing matched, or the pairing already fired off the
			// other side's report
			return c.JSON(http.StatusOK, map[string]interface{}{"paired": false})
		}
		return c.JSON(http.StatusOK, result)
	}
}

func SonicLeave(rendezvousService RendezvousService) echo.HandlerFunc {
	return func(c echo.Context) error {
		rendezvousService.SonicLeave(actingUser(c))
		return c.NoContent(http.StatusNoContent)
	}
}
