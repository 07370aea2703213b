package email

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipients_StringOrArray(t *testing.T) {
	t.Parallel()

	var req SendRequest
	require.NoError(t, json.Unmarshal([]byte(`{"to":"one@example.com","subject":"s","body":"b"}`), &req))
	assert.Equal(t, Recipients{"one@example.com"}, req.To)

	require.NoError(t, json.Unmarshal([]byte(`{"to":["a@example.com","b@example.com"],"subject":"s","body":"b"}`), &req))
	assert.Equal(t, Recipients{"a@example.com", "b@example.com"}, req.To)

	err := json.Unmarshal([]byte(`{"to":42}`), &req)
	assert.Error(t, err)
}
