package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validation("duration must be positive")))
	assert.Equal(t, KindNotFound, KindOf(NotFound("parking lot %d not found", 7)))
	assert.Equal(t, KindConflict, KindOf(Conflict("spot is already occupied")))
	assert.Equal(t, KindNoAvailability, KindOf(NoAvailability("no available spots")))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("reserve: %w", NoAvailability("no available spots"))
	assert.Equal(t, KindNoAvailability, KindOf(err))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Validation("bad")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("missing")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(Conflict("dup")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(NoAvailability("full")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}

func TestUserMessageHidesInternal(t *testing.T) {
	internal := Internal(errors.New("pq: connection refused"), "failed to create reservation")
	assert.Equal(t, "internal server error", UserMessage(internal))
	assert.Contains(t, internal.Error(), "connection refused")

	assert.Equal(t, "spot is already occupied", UserMessage(Conflict("spot is already occupied")))
}
