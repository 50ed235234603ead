package utils

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundFloat(t *testing.T) {
	tests := []struct {
		val       float64
		precision uint
		want      float64
	}{
		{5.756, 2, 5.76},
		{5.754, 2, 5.75},
		{-2.346, 2, -2.35},
		{100, 2, 100},
		{0.1 + 0.2, 2, 0.3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundFloat(tt.val, tt.precision), "val=%v", tt.val)
	}
}

func TestSendJSONResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	SendJSONResponse(rec, map[string]string{"status": "ok"}, 201)

	assert.Equal(t, 201, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestSendJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	SendJSONError(rec, "something broke", 400)

	assert.Equal(t, 400, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "something broke", body["error"])
}
