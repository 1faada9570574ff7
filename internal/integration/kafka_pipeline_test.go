//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanstream/argo-etl-service/internal/adapter/kafka"
	"github.com/oceanstream/argo-etl-service/internal/config"
	"github.com/oceanstream/argo-etl-service/internal/domain"
	"github.com/oceanstream/argo-etl-service/internal/observability"
	"github.com/oceanstream/argo-etl-service/internal/pipeline"
	"github.com/oceanstream/argo-etl-service/internal/qc"
)

const (
	testSourceTopic = "test-source"
	testSinkTopic   = "test-sink"
)

// qcMessage holds a deserialized message read from the sink topic.
type qcMessage struct {
	Profile     domain.RawProfileRecord `json:"profile"`
	Report      domain.QCReport         `json:"report"`
	ProcessedAt time.Time               `json:"processed_at"`

	Key     string            `json:"-"`
	Headers map[string]string `json:"-"`
}

// readResult reads a single message from the sink consumer and deserializes it.
func readResult(ctx context.Context, t *testing.T, consumer *kafkago.Reader) qcMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var out qcMessage
	require.NoError(t, json.Unmarshal(msg.Value, &out), "unmarshal sink message")

	out.Key = string(msg.Key)
	out.Headers = headers
	return out
}

func newQCTransformer(t *testing.T) *pipeline.QCTransformer {
	t.Helper()
	engine, err := qc.NewEngine(qc.DefaultThresholds())
	require.NoError(t, err)
	return pipeline.NewTransformer(engine, discardLogger(), observability.NewMetricsForTesting())
}

// TestKafkaReaderWriter verifies the adapter layer: kafka.Reader (Extractor) and
// kafka.Writer (Loader) correctly round-trip a profile through Kafka.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("test-reader-%d", time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}

	// Publish a clean raw profile to the source topic.
	record := syntheticProfiles()[0]
	payload, err := json.Marshal(record)
	require.NoError(t, err)

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte("test-key"),
		Value: payload,
	}))

	// Extract via kafka.Reader.
	// Retry because the consumer group may need time to rebalance before
	// partitions are assigned and messages become available.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	var batch []domain.RawEvent
	for {
		var err error
		batch, err = reader.ExtractBatch(ctx, 1)
		require.NoError(t, err)
		if len(batch) > 0 {
			break
		}
		if ctx.Err() != nil {
			t.Fatal("timed out waiting for message from source topic")
		}
	}
	require.Len(t, batch, 1)
	raw := batch[0]
	assert.Equal(t, []byte("test-key"), raw.Key)
	assert.Equal(t, payload, raw.Value)
	assert.Equal(t, testSourceTopic, raw.Topic)
	require.NotNil(t, raw.Commit, "commit callback should be set")

	// Commit the offset.
	require.NoError(t, raw.Commit(ctx))

	// Run QC on the raw event.
	transformer := newQCTransformer(t)
	result, err := transformer.Transform(ctx, raw)
	require.NoError(t, err)

	// Load via kafka.Writer.
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	require.NoError(t, writer.LoadBatch(ctx, []domain.QCResult{result}))

	// Read from the sink topic and verify headers + value.
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	qm := readResult(ctx, t, consumer)
	assert.Equal(t, "5904297_1", qm.Key)
	assert.Equal(t, "5904297", qm.Headers["platform_number"])
	assert.Equal(t, "excellent", qm.Headers["data_quality"])
	_, err = time.Parse(time.RFC3339, qm.Headers["processed_at"])
	assert.NoError(t, err, "processed_at should be valid RFC3339")

	assert.Equal(t, "5904297_1", qm.Report.ProfileID)
	assert.Equal(t, domain.QualityExcellent, qm.Report.DataQuality)
	assert.Equal(t, 30, qm.Report.TotalMeasurements)
	assert.Equal(t, "5904297", qm.Profile.PlatformNumber)
}

// TestPipelineEndToEnd wires the full pipeline (Reader → Transformer → Writer)
// with real Kafka and verifies every synthetic profile gets the expected verdict.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("test-pipeline-%d", time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}

	// Publish all synthetic profiles to the source topic.
	records := syntheticProfiles()

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	msgs := make([]kafkago.Message, 0, len(records))
	for i, rec := range records {
		payload, err := json.Marshal(rec)
		require.NoError(t, err)
		msgs = append(msgs, kafkago.Message{
			Key:   []byte(fmt.Sprintf("record-%d", i)),
			Value: payload,
		})
	}
	require.NoError(t, producer.WriteMessages(ctx, msgs...))

	// Wire up the pipeline.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	transformer := newQCTransformer(t)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, transformer, writer, discardLogger(), metrics, 50)

	// Run the pipeline in a goroutine.
	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	// Read all QC results from the sink topic.
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	received := make([]qcMessage, 0, len(records))
	for len(received) < len(records) {
		received = append(received, readResult(ctx, t, consumer))
	}

	pipelineCancel()
	require.NoError(t, <-errCh)

	require.Len(t, received, len(records))
	qualityCounts := map[string]int{}
	for _, qm := range received {
		qualityCounts[qm.Headers["data_quality"]]++

		assert.NotEmpty(t, qm.Headers["platform_number"], "missing platform_number header")
		_, err := time.Parse(time.RFC3339, qm.Headers["processed_at"])
		assert.NoError(t, err, "invalid processed_at format")
		assert.NotEmpty(t, qm.Report.ProfileID)
	}

	assert.Equal(t, 6, qualityCounts["excellent"], "excellent count")
	assert.Equal(t, 1, qualityCounts["good"], "good count")
	assert.Equal(t, 1, qualityCounts["unusable"], "unusable count")

	// Spot-check the spiked cast: cycle 4 carries a 12-degree intrusion.
	var foundSpiked bool
	for _, qm := range received {
		if qm.Report.ProfileID != "5904297_4" {
			continue
		}
		foundSpiked = true
		assert.Equal(t, domain.QualityGood, qm.Report.DataQuality)
		assert.Equal(t, 1, qm.Report.SpikeDetections)
		assert.Equal(t, 1, qm.Report.DensityInversions)
		assert.NotEmpty(t, qm.Report.Issues)
		break
	}
	assert.True(t, foundSpiked, "expected to find the spiked cast's report")

	// Spot-check the truncated cast.
	var foundShort bool
	for _, qm := range received {
		if qm.Report.ProfileID != "5904297_99" {
			continue
		}
		foundShort = true
		assert.Equal(t, domain.QualityUnusable, qm.Report.DataQuality)
		assert.Zero(t, qm.Report.GoodDataPercentage)
		break
	}
	assert.True(t, foundShort, "expected to find the truncated cast's report")
}

// TestPipelineTransformError verifies that an invalid message (poison pill) is
// skipped and the pipeline continues processing valid profiles.
func TestPipelineTransformError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("test-poison-%d", time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}

	// Publish: invalid JSON, then a valid profile.
	validPayload, err := json.Marshal(syntheticProfiles()[0])
	require.NoError(t, err)

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("bad"), Value: []byte("not-json{{{")},
		kafkago.Message{Key: []byte("good"), Value: validPayload},
	))

	// Wire up the pipeline.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	transformer := newQCTransformer(t)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, transformer, writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	// Only the valid profile should appear on the sink topic.
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	qm := readResult(ctx, t, consumer)
	assert.Equal(t, "5904297_1", qm.Report.ProfileID)

	// Verify no second message arrives (the poison pill was skipped).
	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err = consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no second message on sink topic")

	pipelineCancel()
	require.NoError(t, <-errCh)
}
