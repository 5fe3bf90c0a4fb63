package infrastructure

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startContainer runs image for the duration of the test and returns its host:port endpoint
func startContainer(t *testing.T, image, port string, cmd []string, waitFor wait.Strategy) string {
	if testing.Short() {
		t.Skip("Skipping container integration test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{port},
			Cmd:          cmd,
			WaitingFor:   waitFor,
			Labels: map[string]string{
				"test":      "jackpot-infrastructure",
				"test-name": t.Name(),
			},
		},
		Started: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	return endpoint
}
