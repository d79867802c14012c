package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSONError(t *testing.T) {
	testCases := []struct {
		name       string
		message    string
		statusCode int
	}{
		{name: "bad_request", message: "Bad request", statusCode: http.StatusBadRequest},
		{name: "not_found", message: "Subscription not found", statusCode: http.StatusNotFound},
		{name: "unprocessable", message: "invalid json body", statusCode: http.StatusUnprocessableEntity},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			WriteJSONError(w, tc.message, tc.statusCode)

			assert.Equal(t, tc.statusCode, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var response map[string]string
			err := json.NewDecoder(w.Body).Decode(&response)
			require.NoError(t, err)
			assert.Equal(t, tc.message, response["detail"])
		})
	}
}

func TestWriteJSONValidationErrors(t *testing.T) {
	w := httptest.NewRecorder()

	WriteJSONValidationErrors(w, []string{"target_url must be a well-formed URL"})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var response map[string][]string
	err := json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)
	assert.Equal(t, []string{"target_url must be a well-formed URL"}, response["detail"])
}
