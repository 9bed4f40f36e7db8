package model

import "errors"

var ErrorUserNotFound = errors.New("user not found")
var ErrorInvalidParticipant = errors.New("unknown participant")
var ErrorSelfPairing = errors.New("cannot pair with yourself")
var ErrorDuplicateRequest = errors.New("duplicate request")
var ErrorInsufficientStars = errors.New("insufficient star balance")
var ErrorRelationExpiredOrMissing = errors.New("relation expired or missing")
var ErrorProfileIncomplete = errors.New("profile has no real-identity fields")
var ErrorSessionNotFound = errors.New("pairing session not found")
var ErrorQueueFull = errors.New("no free frequency slot")
var ErrorEncounterNotFound = errors.New("encounter not found")
var ErrorRequestNotFound = errors.New("reveal request not found")
