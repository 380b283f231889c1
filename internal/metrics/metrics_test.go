package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordEnrichmentJob(t *testing.T) {
	success := testutil.ToFloat64(EnrichmentJobs.WithLabelValues("tags", "success"))
	failure := testutil.ToFloat64(EnrichmentJobs.WithLabelValues("tags", "failure"))

	RecordEnrichmentJob("tags", nil)
	RecordEnrichmentJob("tags", errors.New("boom"))
	RecordEnrichmentJob("tags", errors.New("boom"))

	assert.Equal(t, success+1, testutil.ToFloat64(EnrichmentJobs.WithLabelValues("tags", "success")))
	assert.Equal(t, failure+2, testutil.ToFloat64(EnrichmentJobs.WithLabelValues("tags", "failure")))
}

func TestRecordUpload(t *testing.T) {
	rejected := testutil.ToFloat64(Uploads.WithLabelValues("rejected"))
	success := testutil.ToFloat64(Uploads.WithLabelValues("success"))

	RecordRejectedUpload()
	RecordUpload(nil)

	assert.Equal(t, rejected+1, testutil.ToFloat64(Uploads.WithLabelValues("rejected")))
	assert.Equal(t, success+1, testutil.ToFloat64(Uploads.WithLabelValues("success")))
}

func TestRecordHTTPRequest(t *testing.T) {
	RecordHTTPRequest("GET", "/photo", 200, 15*time.Millisecond)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(HTTPRequestDuration, "weplash_http_request_duration_seconds"), 1)
}
