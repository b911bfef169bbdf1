package upload_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	// Packages
	schema "github.com/mutablelogic/go-dms/pkg/schema"
	upload "github.com/mutablelogic/go-dms/pkg/upload"
	assert "github.com/stretchr/testify/assert"
)

func Test_Store_001(t *testing.T) {
	assert := assert.New(t)
	store := upload.NewStore()

	id := store.Add("a.txt", 200, nil)
	u, ok := store.Get(id)
	assert.True(ok)
	assert.Equal(schema.UploadUploading, u.Status)
	assert.Equal(0, u.Progress)
	assert.False(u.Started.IsZero())

	// Progress is monotonic
	store.Progress(id, 100, 200)
	u, _ = store.Get(id)
	assert.Equal(50, u.Progress)
	store.Progress(id, 20, 200)
	u, _ = store.Get(id)
	assert.Equal(50, u.Progress)
	assert.Equal(int64(100), u.Written)

	// Clamped to 100
	store.Progress(id, 400, 200)
	u, _ = store.Get(id)
	assert.Equal(100, u.Progress)

	// Complete is final
	doc := &schema.Document{ID: "doc"}
	store.Complete(id, doc)
	store.Fail(id, errors.New("late"))
	assert.False(store.Cancel(id))
	u, _ = store.Get(id)
	assert.Equal(schema.UploadComplete, u.Status)
	assert.Equal(100, u.Progress)
	assert.Empty(u.Error)
	assert.Equal(doc, u.Document)
	assert.False(u.Finished.IsZero())

	_, ok = store.Get("missing")
	assert.False(ok)
}

func Test_Store_002(t *testing.T) {
	assert := assert.New(t)
	store := upload.NewStore()

	a := store.Add("a.txt", 10, nil)
	b := store.Add("b.txt", 10, nil)
	var aborted bool
	c := store.Add("c.txt", 10, func() { aborted = true })

	store.Fail(a, errors.New("boom"))
	assert.True(store.Cancel(c))
	assert.True(aborted)

	list := store.List()
	if assert.Len(list, 3) {
		assert.Equal([]string{"a.txt", "b.txt", "c.txt"}, []string{list[0].Name, list[1].Name, list[2].Name})
		assert.Equal(schema.UploadFailed, list[0].Status)
		assert.Equal("boom", list[0].Error)
		assert.Equal(schema.UploadUploading, list[1].Status)
		assert.Equal(schema.UploadCancelled, list[2].Status)
	}

	// Clear drops finished uploads only
	assert.Equal(2, store.Clear())
	list = store.List()
	if assert.Len(list, 1) {
		assert.Equal(b, list[0].ID)
	}

	store.Remove(b)
	assert.Empty(store.List())
	assert.Equal(0, store.Clear())
}

func Test_Store_Subscribe(t *testing.T) {
	assert := assert.New(t)
	store := upload.NewStore()

	var snapshots [][]upload.Upload
	unsubscribe := store.Subscribe(func(list []upload.Upload) {
		// Listeners may read the store
		assert.Len(store.List(), len(list))
		snapshots = append(snapshots, list)
	})

	id := store.Add("a.txt", 4, nil)
	store.Progress(id, 2, 4)
	store.Progress(id, 1, 4) // ignored
	store.Complete(id, nil)
	store.Complete(id, nil) // ignored
	if assert.Len(snapshots, 3) {
		assert.Equal(0, snapshots[0][0].Progress)
		assert.Equal(50, snapshots[1][0].Progress)
		assert.Equal(schema.UploadComplete, snapshots[2][0].Status)
	}

	unsubscribe()
	store.Remove(id)
	assert.Len(snapshots, 3)
}

func Test_Store_Concurrent(t *testing.T) {
	assert := assert.New(t)
	store := upload.NewStore()
	id := store.Add("a.txt", 1000, nil)

	var mu sync.Mutex
	last := 0
	monotonic := true
	store.Subscribe(func(list []upload.Upload) {
		mu.Lock()
		defer mu.Unlock()
		if list[0].Progress < last {
			monotonic = false
		}
		last = list[0].Progress
	})

	var wg sync.WaitGroup
	for i := 1; i <= 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Progress(id, int64(i*10), 1000)
		}()
	}
	wg.Wait()
	assert.True(monotonic)
	u, _ := store.Get(id)
	assert.Equal(100, u.Progress)
}

func Test_Store_CancelContext(t *testing.T) {
	store := upload.NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	id := store.Add("a.txt", 10, cancel)
	assert.True(t, store.Cancel(id))
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
