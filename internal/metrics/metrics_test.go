package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordRecommendation(t *testing.T) {
	before := testutil.ToFloat64(Recommendations.WithLabelValues("summary", "ok"))

	RecordRecommendation("summary", "ok", time.Now())

	assert.Equal(t, before+1, testutil.ToFloat64(Recommendations.WithLabelValues("summary", "ok")))
	assert.Positive(t, testutil.CollectAndCount(RecommendDuration))
}

func TestObserveIndexBuild(t *testing.T) {
	ObserveIndexBuild("description", time.Now().Add(-time.Second))
	assert.Positive(t, testutil.CollectAndCount(IndexBuildDuration))
}
