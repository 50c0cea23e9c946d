// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler(t *testing.T) {
	VideosProcessedTotal.WithLabelValues("success").Inc()
	FramesSampledTotal.Add(3)

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "pillarcrop_videos_processed_total"))
	assert.True(t, strings.Contains(string(body), "pillarcrop_frames_sampled_total"))
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(VideosProcessedTotal.WithLabelValues("failure"))
	VideosProcessedTotal.WithLabelValues("failure").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(VideosProcessedTotal.WithLabelValues("failure")))

	ActiveJobs.Inc()
	assert.Equal(t, float64(1), testutil.ToFloat64(ActiveJobs))
	ActiveJobs.Dec()
	assert.Equal(t, float64(0), testutil.ToFloat64(ActiveJobs))
}
