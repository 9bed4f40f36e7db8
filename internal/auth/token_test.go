package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"uk.co.dudmesh.tether/internal/model"
)

func TestTokenRoundTrip(t *testing.T) {
	assert := assert.New(t)

	tokens := New("test-secret")

	signed, err := tokens.Issue(model.UserID("user-123"))
	assert.Nil(err)
	assert.NotEmpty(signed)

	userID, err := tokens.Parse(signed)
	assert.Nil(err)
	assert.Equal(model.UserID("user-123"), userID)
}

func TestTokenRejection(t *testing.T) {
	assert := assert.New(t)

	tokens := New("test-secret")

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.Parse("not.a.token")
		assert.ErrorIs(err, ErrorInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		signed, err := New("other-secret").Issue(model.UserID("user-123"))
		assert.Nil(err)
		_, err = tokens.Parse(signed)
		assert.ErrorIs(err, ErrorInvalidToken)
	})

	t.Run("missing subject", func(t *testing.T) {
		signed, err := tokens.Issue(model.UserID(""))
		assert.Nil(err)
		_, err = tokens.Parse(signed)
		assert.ErrorIs(err, ErrorInvalidToken)
	})
}
