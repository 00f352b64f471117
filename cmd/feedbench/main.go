package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/anon-forum/config"
	"github.com/d60-Lab/anon-forum/internal/model"
	"github.com/d60-Lab/anon-forum/internal/repository"
	"github.com/d60-Lab/anon-forum/internal/service"
	"github.com/d60-Lab/anon-forum/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return def
}

func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	if err := database.AutoMigrate(db); err != nil {
		panic(err)
	}

	N := envInt("N", 1000)            // posts to create
	REPLIES := envInt("REPLIES", 3)   // replies per post
	REPEAT := envInt("REPEAT", 50)    // feed reads
	USERS := envInt("USERS", 50)

	forum := service.NewForumService(repository.NewPostRepository(db), repository.NewReplyRepository(db))
	ctx := context.Background()

	// 批量写入用户，跳过 bcrypt
	run := uuid.NewString()[:8]
	users := make([]model.User, USERS)
	for i := range users {
		users[i] = model.User{Username: fmt.Sprintf("bench_%s_%d", run, i), PasswordHash: "x"}
	}
	if err := db.CreateInBatches(&users, 500).Error; err != nil {
		panic(err)
	}

	writes := make([]time.Duration, 0, N*(REPLIES+1))
	t0 := time.Now()
	for i := 0; i < N; i++ {
		st := time.Now()
		p := must(forum.CreatePost(ctx, users[i%USERS].ID, fmt.Sprintf("post %d", i)))
		writes = append(writes, time.Since(st))
		for j := 0; j < REPLIES; j++ {
			st = time.Now()
			_ = must(forum.CreateReply(ctx, users[(i+j+1)%USERS].ID, p.ID, "re"))
			writes = append(writes, time.Since(st))
		}
	}
	writeDur := time.Since(t0)

	reads := make([]time.Duration, 0, REPEAT)
	var feedLen int
	for i := 0; i < REPEAT; i++ {
		st := time.Now()
		feed := must(forum.ListFeed(ctx))
		reads = append(reads, time.Since(st))
		feedLen = len(feed)
	}

	total := must(repository.NewPostRepository(db).Count(ctx))
	fmt.Printf("N=%d REPLIES=%d USERS=%d REPEAT=%d feed_size=%d posts_in_db=%d\n", N, REPLIES, USERS, REPEAT, feedLen, total)
	fmt.Printf("Writes total: %v, ops=%d, p50=%v p95=%v p99=%v\n",
		writeDur, len(writes), pct(writes, 0.50), pct(writes, 0.95), pct(writes, 0.99))
	fmt.Printf("ListFeed: p50=%v p95=%v p99=%v\n", pct(reads, 0.50), pct(reads, 0.95), pct(reads, 0.99))
}
