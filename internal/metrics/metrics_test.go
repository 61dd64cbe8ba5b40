package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCipherMetrics_RecordOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCipherMetrics(reg).(*cipherMetrics)

	m.RecordOperation(OperationEncrypt, StatusSuccess)
	m.RecordOperation(OperationEncrypt, StatusSuccess)
	m.RecordOperation(OperationDecrypt, StatusError)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues(OperationEncrypt, StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues(OperationDecrypt, StatusError)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.operations.WithLabelValues(OperationDecrypt, StatusSuccess)))
}

func TestCipherMetrics_HistogramsRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCipherMetrics(reg)

	m.RecordDuration(OperationDecrypt, 120*time.Millisecond, StatusSuccess)
	m.RecordBatchSize(OperationDecrypt, 3)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "cixvault_cipher_operation_duration_seconds")
	assert.Contains(t, names, "cixvault_cipher_batch_size")
}

func TestCipherMetrics_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCipherMetrics(reg)

	assert.Panics(t, func() { NewCipherMetrics(reg) })
}

func TestNop(t *testing.T) {
	m := Nop()
	assert.NotPanics(t, func() {
		m.RecordOperation(OperationEncrypt, StatusSuccess)
		m.RecordDuration(OperationEncrypt, time.Second, StatusSuccess)
		m.RecordBatchSize(OperationEncrypt, 1)
	})
}
