// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pillarcrop

import (
	"log"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocal(t *testing.T) *LocalConn {
	t.Helper()
	conn := &LocalConn{TempDir: t.TempDir(), Logger: log.New(os.Stderr, "", 0)}
	require.NoError(t, conn.Init())
	return conn
}

func TestLocalQueue(t *testing.T) {
	conn := newLocal(t)
	q := conn.CropQueueId()

	msg, err := conn.CheckQueue(q, 10)
	require.NoError(t, err)
	assert.Equal(t, "", msg.Body)

	for _, m := range []string{"a.mp4", "b.mp4", "a.mp4.old"} {
		require.NoError(t, conn.AddToQueue(q, m))
	}
	avail, inprogress, err := conn.GetQueueDetails(q)
	require.NoError(t, err)
	assert.Equal(t, "3", avail)
	assert.Equal(t, "0", inprogress)

	msg, err = conn.CheckQueue(q, 10)
	require.NoError(t, err)
	assert.Equal(t, "a.mp4", msg.Body)
	assert.Equal(t, "a.mp4", msg.Handle)

	require.NoError(t, conn.DelFromQueue(q, msg.Handle))
	msg, err = conn.CheckQueue(q, 10)
	require.NoError(t, err)
	assert.Equal(t, "b.mp4", msg.Body)

	// only whole lines match
	assert.Error(t, conn.DelFromQueue(q, "a.mp4"))
	require.NoError(t, conn.DelFromQueue(q, "a.mp4.old"))
	require.NoError(t, conn.DelFromQueue(q, "b.mp4"))

	avail, _, err = conn.GetQueueDetails(q)
	require.NoError(t, err)
	assert.Equal(t, "0", avail)

	m, err := conn.QueueHeartbeat(msg, q, 120)
	require.NoError(t, err)
	assert.Equal(t, "", m.Id)
}

func TestLocalStorage(t *testing.T) {
	conn := newLocal(t)
	bucket := conn.StorageId()

	src := filepath.Join(t.TempDir(), "src")
	require.NoError(t, os.WriteFile(src, []byte("contents"), 0644))

	for _, k := range []string{"videos/a.mp4", "videos/sub/b.mp4", "other/c.mp4"} {
		require.NoError(t, conn.Upload(bucket, k, src))
	}

	names, err := conn.ListObjects(bucket, "videos/")
	require.NoError(t, err)
	sort.Strings(names)
	assert.Equal(t, []string{"videos/a.mp4", "videos/sub/b.mp4"}, names)

	objs, err := conn.ListObjectsWithMeta(bucket, "")
	require.NoError(t, err)
	assert.Len(t, objs, 3)
	for _, o := range objs {
		assert.False(t, o.Date.IsZero())
	}

	dst := filepath.Join(t.TempDir(), "dst")
	require.NoError(t, conn.Download(bucket, "videos/sub/b.mp4", dst))
	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "contents", string(b))

	err = conn.Download(bucket, "videos/missing.mp4", dst)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, conn.DeleteObjects(bucket, []string{"videos/a.mp4", "videos/missing.mp4"}))
	names, err = conn.ListObjects(bucket, "videos/")
	require.NoError(t, err)
	assert.Equal(t, []string{"videos/sub/b.mp4"}, names)

	require.NoError(t, conn.MkPipeline())
}
