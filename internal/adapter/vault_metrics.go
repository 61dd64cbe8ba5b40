package adapter

import (
	"context"
	"time"

	"github.com/MKhiriev/go-cix-vault/internal/metrics"
)

// vaultAdapterWithMetrics decorates VaultAdapter with metrics instrumentation.
type vaultAdapterWithMetrics struct {
	next    VaultAdapter
	metrics metrics.CipherMetrics
}

// NewVaultAdapterWithMetrics wraps a VaultAdapter with metrics recording.
func NewVaultAdapterWithMetrics(next VaultAdapter, m metrics.CipherMetrics) VaultAdapter {
	return &vaultAdapterWithMetrics{
		next:    next,
		metrics: m,
	}
}

// EncryptBatch records metrics for encrypt calls.
func (v *vaultAdapterWithMetrics) EncryptBatch(ctx context.Context, values []string) ([]string, error) {
	start := time.Now()
	out, err := v.next.EncryptBatch(ctx, values)
	v.record(metrics.OperationEncrypt, len(values), start, err)
	return out, err
}

// DecryptBatch records metrics for decrypt calls.
func (v *vaultAdapterWithMetrics) DecryptBatch(ctx context.Context, values []string) ([]string, error) {
	start := time.Now()
	out, err := v.next.DecryptBatch(ctx, values)
	v.record(metrics.OperationDecrypt, len(values), start, err)
	return out, err
}

func (v *vaultAdapterWithMetrics) record(operation string, size int, start time.Time, err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}

	v.metrics.RecordOperation(operation, status)
	v.metrics.RecordDuration(operation, time.Since(start), status)
	v.metrics.RecordBatchSize(operation, size)
}
