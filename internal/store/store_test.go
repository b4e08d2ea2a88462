//go:build !integration

package store_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-showcase-client/internal/domain/model"
	"ai-showcase-client/internal/store"
)

func job(id string, st model.ServiceType) model.AIJob {
	return model.AIJob{
		ID:          model.ID(id),
		ServiceType: st,
		Status:      model.AIJobStatusCompleted,
		CreatedAt:   time.Now(),
	}
}

func ids(jobs []model.AIJob) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = string(j.ID)
	}
	return out
}

func TestNew_Defaults(t *testing.T) {
	s := store.New()
	st := s.Snapshot()

	assert.False(t, st.ProcessingStatus.IsProcessing)
	assert.Empty(t, st.RecentJobs)
	assert.Empty(t, st.ChatMessages)
	assert.Equal(t, "generate", st.CurrentService)
	assert.Nil(t, st.LastGeneratedImage)
	assert.Zero(t, st.Version)
}

func TestAddJob_CapAndOrder(t *testing.T) {
	for _, total := range []int{0, 1, 5, 20, 21, 57} {
		t.Run(fmt.Sprintf("%d adds", total), func(t *testing.T) {
			s := store.New()
			for i := 0; i < total; i++ {
				s.AddJob(job(fmt.Sprint(i), model.ServiceClassify))
			}
			jobs := s.RecentJobs()
			want := total
			if want > 20 {
				want = 20
			}
			require.Len(t, jobs, want)
			for i, j := range jobs {
				assert.Equal(t, fmt.Sprint(total-1-i), string(j.ID), "index %d", i)
			}
		})
	}
}

func TestAddJob_TwentyFirstEvictsOldest(t *testing.T) {
	s := store.New()
	// oldest is a failed segment job; eviction ignores status and type
	oldest := job("first", model.ServiceSegment)
	oldest.Status = model.AIJobStatusFailed
	s.AddJob(oldest)
	for i := 1; i < 20; i++ {
		s.AddJob(job(fmt.Sprint(i), model.ServiceGenerate))
	}
	require.Equal(t, "first", ids(s.RecentJobs())[19])

	s.AddJob(job("new", model.ServiceDetect))

	got := ids(s.RecentJobs())
	require.Len(t, got, 20)
	assert.Equal(t, "new", got[0])
	assert.NotContains(t, got, "first")
	assert.Equal(t, "1", got[19])
}

func TestAddJob_DuplicateIDsKept(t *testing.T) {
	s := store.New()
	s.AddJob(job("7", model.ServiceGenerate))
	s.AddJob(job("7", model.ServiceGenerate))

	assert.Equal(t, []string{"7", "7"}, ids(s.RecentJobs()))
}

func TestWithJobCap(t *testing.T) {
	s := store.New(store.WithJobCap(3))
	for i := 0; i < 5; i++ {
		s.AddJob(job(fmt.Sprint(i), model.ServiceGenerate))
	}
	assert.Equal(t, []string{"4", "3", "2"}, ids(s.RecentJobs()))
}

func TestUpdateJob(t *testing.T) {
	t.Run("merges into matching job", func(t *testing.T) {
		s := store.New()
		s.AddJob(job("a", model.ServiceGenerate))
		s.AddJob(job("b", model.ServiceGenerate))

		failed := model.AIJobStatusFailed
		s.UpdateJob("a", model.AIJobPatch{Status: &failed, Result: model.GenerateResult{URL: "http://x/a.jpg"}})

		j, ok := s.Job("a")
		require.True(t, ok)
		assert.Equal(t, model.AIJobStatusFailed, j.Status)
		assert.Equal(t, model.GenerateResult{URL: "http://x/a.jpg"}, j.Result)
		assert.Equal(t, model.ServiceGenerate, j.ServiceType)

		b, _ := s.Job("b")
		assert.Equal(t, model.AIJobStatusCompleted, b.Status)
	})

	t.Run("unknown id leaves list unchanged and publishes nothing", func(t *testing.T) {
		s := store.New()
		s.AddJob(job("a", model.ServiceDetect))
		before := s.Snapshot()

		published := 0
		unsub := s.Subscribe(func(store.State) { published++ })
		defer unsub()

		failed := model.AIJobStatusFailed
		s.UpdateJob("missing", model.AIJobPatch{Status: &failed})

		assert.Equal(t, before, s.Snapshot())
		assert.Zero(t, published)
	})
}

func TestSetRecentJobs_Idempotent(t *testing.T) {
	s := store.New()
	list := []model.AIJob{job("3", model.ServiceGenerate), job("2", model.ServiceClassify), job("1", model.ServiceDetect)}

	s.SetRecentJobs(list)
	first := s.Snapshot()
	s.SetRecentJobs(list)
	second := s.Snapshot()

	first.Version, second.Version = 0, 0
	assert.Equal(t, first, second)
	assert.Len(t, second.RecentJobs, 3)
}

func TestSetRecentJobs_ReplacesOptimisticEntries(t *testing.T) {
	s := store.New()
	s.AddJob(job("local-only", model.ServiceGenerate))

	s.SetRecentJobs([]model.AIJob{job("server-1", model.ServiceGenerate)})

	assert.Equal(t, []string{"server-1"}, ids(s.RecentJobs()))
}

func TestProcessingStatus_StaleFieldsIgnoredByProgress(t *testing.T) {
	s := store.New()
	s.SetProcessingStatus(model.ProcessingStatus{
		IsProcessing:  true,
		Message:       "Generating image...",
		CurrentStep:   1,
		TotalSteps:    50,
		EstimatedTime: model.MillisOf(30 * time.Second),
	})
	step, total, ok := s.ProcessingStatus().Progress()
	require.True(t, ok)
	assert.Equal(t, 1, step)
	assert.Equal(t, 50, total)

	// stale fields, if any, must not surface once idle
	s.SetProcessingStatus(model.ProcessingStatus{IsProcessing: false, CurrentStep: 7, TotalSteps: 50})
	_, _, ok = s.ProcessingStatus().Progress()
	assert.False(t, ok)
}

func TestChat_AppendOnlyNoCap(t *testing.T) {
	s := store.New()
	for i := 0; i < 1000; i++ {
		s.AddChatMessage(model.NewChatMessage(model.ID(fmt.Sprint(i)), model.ChatRoleUser, "m", time.Now()))
	}
	msgs := s.ChatMessages()
	require.Len(t, msgs, 1000)
	assert.Equal(t, model.ID("0"), msgs[0].ID)
	assert.Equal(t, model.ID("999"), msgs[999].ID)

	s.SetChatMessages(nil)
	assert.Empty(t, s.ChatMessages())
}

func TestLastGeneratedImage(t *testing.T) {
	s := store.New()
	url := "http://x/1.jpg"
	s.SetLastGeneratedImage(&url)
	url = "mutated"

	got := s.LastGeneratedImage()
	require.NotNil(t, got)
	assert.Equal(t, "http://x/1.jpg", *got)

	s.SetLastGeneratedImage(nil)
	assert.Nil(t, s.LastGeneratedImage())
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	s := store.New()
	s.AddJob(model.AIJob{
		ID:          "d",
		ServiceType: model.ServiceDetect,
		Result:      model.DetectResult{Objects: []model.DetectedObject{{Name: "car"}}},
	})

	st := s.Snapshot()
	st.RecentJobs[0].Result.(model.DetectResult).Objects[0].Name = "changed"

	j, _ := s.Job("d")
	assert.Equal(t, "car", j.Result.(model.DetectResult).Objects[0].Name)
}

func TestSubscribe(t *testing.T) {
	s := store.New()
	var got []store.State
	unsub := s.Subscribe(func(st store.State) { got = append(got, st) })

	s.SetCurrentService("detect")
	s.AddJob(job("1", model.ServiceDetect))
	unsub()
	s.AddJob(job("2", model.ServiceDetect))

	require.Len(t, got, 2)
	assert.Equal(t, "detect", got[0].CurrentService)
	assert.Equal(t, uint64(1), got[0].Version)
	assert.Len(t, got[1].RecentJobs, 1)
	assert.Equal(t, uint64(2), got[1].Version)
}

func TestMutationHook(t *testing.T) {
	var ops []string
	s := store.New(store.WithMutationHook(func(op string, _ store.State) { ops = append(ops, op) }))
	s.AddJob(job("1", model.ServiceGenerate))
	s.SetProcessingStatus(model.Idle())

	assert.Equal(t, []string{"add_job", "set_processing_status"}, ops)
}

func TestConcurrentAddJob(t *testing.T) {
	s := store.New()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.AddJob(job(fmt.Sprint(i), model.ServiceClassify))
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.RecentJobs(), 20)
	assert.Equal(t, uint64(100), s.Snapshot().Version)
}
