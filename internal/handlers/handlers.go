package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"uk.co.dudmesh.tether/internal/model"
	"uk.co.dudmesh.tether/internal/service/ledger"
	"uk.co.dudmesh.tether/internal/service/rendezvous"
)

// LedgerService is the slice of the engine the HTTP surface consumes.
type LedgerService interface {
	CreateUser(params *model.CreateUserParams) (*model.User, error)
	Stats(userID model.UserID) (*ledger.UserStats, error)
	EncounterHistory(userID model.UserID) ([]model.EncounterRecord, error)
	AnnotateTip(userID model.UserID, encounterID model.EncounterID, amount int) error
	StreakFor(a, b model.UserID) *model.StreakRecord
	DirectReveal(from, to model.UserID) error
	RequestReveal(requester, target model.UserID) (*model.RevealRequest, error)
	ResolveRevealRequest(requestID string, actor model.UserID, accept bool) (*model.RevealRequest, error)
	CanSee(viewer, subject model.UserID) (model.RevealEntry, bool)
	Donate(from, to model.UserID) (*model.StarDonation, error)
}

type RendezvousService interface {
	StartCodeSession(host model.UserID) (*rendezvous.CodeSession, error)
	JoinCode(code string, joiner model.UserID) (*ledger.PairingResult, error)
	TapLanding(code string) (*rendezvous.TapIdentity, error)
	TapPair(code, visitorName string) (*ledger.PairingResult, error)
	SonicJoin(userID model.UserID, operator bool, eventID string) (float64, error)
	SonicReport(reporter model.UserID, frequency float64) (*ledger.PairingResult, error)
	SonicLeave(userID model.UserID)
}

type Tokens interface {
	Issue(userID model.UserID) (string, error)
	Parse(raw string) (model.UserID, error)
}

const contextUserKey = "actingUser"

// Authenticated resolves the bearer token to the acting user id and
// stores it on the request context.
func Authenticated(tokens Tokens) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			raw := strings.TrimPrefix(header, "Bearer ")
			userID, err := tokens.Parse(raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			c.Set(contextUserKey, userID)
			return next(c)
		}
	}
}

func actingUser(c echo.Context) model.UserID {
	userID, _ := c.Get(contextUserKey).(model.UserID)
	return userID
}

// httpError maps the engine's sentinel errors onto response codes.
func httpError(err error) error {
	switch {
	case errors.Is(err, model.ErrorUserNotFound),
		errors.Is(err, model.ErrorSessionNotFound),
		errors.Is(err, model.ErrorEncounterNotFound),
		errors.Is(err, model.ErrorRequestNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrorInvalidParticipant),
		errors.Is(err, model.ErrorSelfPairing),
		errors.Is(err, model.ErrorProfileIncomplete):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrorDuplicateRequest):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, model.ErrorInsufficientStars):
		return echo.NewHTTPError(http.StatusPaymentRequired, err.Error())
	case errors.Is(err, model.ErrorRelationExpiredOrMissing):
		return echo.NewHTTPError(http.StatusGone, err.Error())
	case errors.Is(err, model.ErrorQueueFull):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return err
	}
}
