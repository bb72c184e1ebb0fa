package category

import (
	"context"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"drama-platform-client/internal/api"
)

const testBaseURL = "https://api.example.com/api/v1"

func newTestClient() *Client {
	transport := api.New(api.Config{BaseURL: testBaseURL, Timeout: 5 * time.Second}, nil, zap.NewNop())

	// Activate httpmock for this client's HTTP transport
	httpmock.ActivateNonDefault(transport.HTTPClient())

	return New(transport)
}

func TestClient_List(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testBaseURL+"/categories",
		httpmock.NewStringResponder(200, `{"success":true,"data":[
			{"_id":"c1","name":"都市","color":"#ff6b6b","sortOrder":1,"isActive":true,"dramaCount":42},
			{"_id":"c2","name":"古装","color":"#4ecdc4","sortOrder":2,"isActive":true},
			{"_id":"c3","name":"悬疑","color":"#45b7d1","sortOrder":3,"isActive":false}
		]}`))

	client := newTestClient()
	categories, err := client.List(context.Background())

	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, "都市", categories[0].Name)
	assert.Equal(t, 42, categories[0].DramaCount)
	assert.Equal(t, 0, categories[1].DramaCount)
	assert.False(t, categories[2].IsActive)
	assert.Equal(t, "%E6%82%AC%E7%96%91", categories[2].RoutingKey())
}

func TestClient_List_ServerError(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testBaseURL+"/categories",
		httpmock.NewStringResponder(503, "Service Unavailable"))

	client := newTestClient()
	categories, err := client.List(context.Background())

	require.Error(t, err)
	assert.Nil(t, categories)
	assert.ErrorIs(t, err, api.ErrServer)
}

func TestClient_Stats_PassesPayloadThrough(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testBaseURL+"/categories/stats",
		httpmock.NewStringResponder(200, `{"data":{"total":6,"byCategory":[{"name":"都市","count":42}]}}`))

	client := newTestClient()
	stats, err := client.Stats(context.Background())

	require.NoError(t, err)
	assert.JSONEq(t, `6`, string(stats["total"]))
	assert.JSONEq(t, `[{"name":"都市","count":42}]`, string(stats["byCategory"]))
}
