package metrics_test

import (
	"errors"
	"testing"
	"time"

	// Packages
	metrics "github.com/mutablelogic/go-dms/pkg/metrics"
	prometheus "github.com/prometheus/client_golang/prometheus"
	testutil "github.com/prometheus/client_golang/prometheus/testutil"
	assert "github.com/stretchr/testify/assert"
)

func Test_Metrics_001(t *testing.T) {
	assert := assert.New(t)
	m := metrics.New(prometheus.NewRegistry())

	m.RecordRequest("commit", nil, time.Millisecond)
	m.RecordRequest("commit", nil, time.Millisecond)
	m.RecordRequest("commit", errors.New("failed"), time.Millisecond)
	assert.Equal(2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("commit", metrics.StatusOK)))
	assert.Equal(1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("commit", metrics.StatusError)))

	m.RecordUpload(100)
	m.RecordUpload(-1)
	m.RecordDownload(50)
	assert.Equal(100.0, testutil.ToFloat64(m.BytesUploaded))
	assert.Equal(50.0, testutil.ToFloat64(m.BytesDownloaded))

	m.SetDocuments(3, 1)
	m.SetPending(2)
	assert.Equal(3.0, testutil.ToFloat64(m.Documents))
	assert.Equal(1.0, testutil.ToFloat64(m.Trashed))
	assert.Equal(2.0, testutil.ToFloat64(m.PendingUploads))
}

func Test_Metrics_002(t *testing.T) {
	// A nil value records nothing
	var m *metrics.Metrics
	m.RecordRequest("tree", nil, 0)
	m.RecordUpload(1)
	m.RecordDownload(1)
	m.SetDocuments(1, 1)
	m.SetPending(1)
}
