//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/oceanstream/argo-etl-service/internal/domain"
)

// startKafka launches a single-node Kafka container and returns its broker
// address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx,
		"confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"),
	)
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "get broker addresses")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic pre-creates a topic so consumer groups do not race topic
// auto-creation during rebalance.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	require.NoError(t, err)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// syntheticProfiles returns raw profile records with known QC outcomes: the
// clean majority classifies excellent, one spiked cast degrades, and one
// short cast is unusable.
func syntheticProfiles() []domain.RawProfileRecord {
	var records []domain.RawProfileRecord

	for i := 0; i < 8; i++ {
		rec := domain.RawProfileRecord{
			PlatformNumber: "5904297",
			CycleNumber:    i + 1,
			Juld:           27104.25,
			Latitude:       ptr(-31.5),
			Longitude:      ptr(72.1),
		}
		for l := 0; l < 10; l++ {
			pres := 10.0 + 20*float64(l)
			rec.Pres = append(rec.Pres, ptr(pres))
			rec.Temp = append(rec.Temp, ptr(20-0.05*pres))
			rec.Psal = append(rec.Psal, ptr(34.5+0.002*pres))
		}
		records = append(records, rec)
	}

	// Spiked temperature in the middle of the cast.
	*records[3].Temp[5] += 12

	// Truncated cast below the minimum profile length.
	short := records[7]
	short.CycleNumber = 99
	short.Pres = short.Pres[:3]
	short.Temp = short.Temp[:3]
	short.Psal = short.Psal[:3]
	records[7] = short

	return records
}

func ptr(v float64) *float64 { return &v }
