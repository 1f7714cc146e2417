package benchmark

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/sporthub-api/internal/cooldown"
	"github.com/sporthub-api/internal/mocks"
	"github.com/sporthub-api/internal/models"
	"github.com/sporthub-api/internal/thread"
	"github.com/sporthub-api/internal/validation"
)

const articleID = "550e8400-e29b-41d4-a716-446655440000"

func recordID(i int) string {
	return fmt.Sprintf("550e8400-e29b-41d4-a716-%012d", i)
}

func comments(n, repliesEach int) []*models.Comment {
	out := make([]*models.Comment, n)
	for i := range out {
		c := &models.Comment{
			Entry:      models.Entry{ID: "c" + strconv.Itoa(i), Content: "comment", CreatedAt: time.Now()},
			ReplyCount: repliesEach,
		}
		for j := 0; j < repliesEach && j < 3; j++ {
			c.Replies = append(c.Replies, &models.Reply{Entry: models.Entry{ID: fmt.Sprintf("r%d-%d", i, j)}})
		}
		out[i] = c
	}
	return out
}

// BenchmarkListTopLevel benchmarks paging through a large thread
func BenchmarkListTopLevel(b *testing.B) {
	repo := mocks.NewMockCommentRepository(nil, nil)
	base := time.Now()
	for i := 0; i < 1000; i++ {
		repo.Comments[recordID(i)] = &models.CommentRecord{
			ID:        recordID(i),
			ArticleID: articleID,
			UserID:    recordID(0),
			Content:   "Comment " + strconv.Itoa(i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		ctx := context.Background()
		for page := 1; page <= 100; page++ {
			repo.ListTopLevel(ctx, articleID, "", 11, (page-1)*10)
		}
	}

	b.ReportMetric(float64(1000*b.N)/b.Elapsed().Seconds(), "rows/sec")
}

// BenchmarkStoreAppend benchmarks appending pages with duplicate skipping
func BenchmarkStoreAppend(b *testing.B) {
	pages := make([][]*models.Comment, 50)
	all := comments(500, 5)
	for i := range pages {
		pages[i] = all[i*10 : (i+1)*10]
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		store := thread.NewStore()
		store.Initialize(pages[0])
		for _, p := range pages[1:] {
			store.AppendTopLevel(p)
		}
	}
}

// BenchmarkStoreToggleLike benchmarks like toggles deep in the tree
func BenchmarkStoreToggleLike(b *testing.B) {
	store := thread.NewStore()
	store.Initialize(comments(200, 3))

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		store.ToggleLike("r199-2")
	}
}

// BenchmarkCleanComment benchmarks the full content validation pipeline
func BenchmarkCleanComment(b *testing.B) {
	v := validation.NewValidator(0)
	content := "  <b>What</b> a match! " + strings.Repeat("goal ", 400) + " "

	b.ResetTimer()
	b.ReportAllocs()
	b.SetBytes(int64(len(content)))

	for i := 0; i < b.N; i++ {
		v.CleanComment(content)
	}
}

// BenchmarkCooldownParallel benchmarks concurrent acquires over many viewers
func BenchmarkCooldownParallel(b *testing.B) {
	limiter := cooldown.NewMemoryLimiter(10 * time.Second)
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			key := recordID(i % 1024)
			if limiter.Acquire(ctx, key) == nil {
				limiter.Release(ctx, key)
			}
			i++
		}
	})
}
