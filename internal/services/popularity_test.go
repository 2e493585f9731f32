package services

import (
	"errors"
	"testing"

	"dovelink/internal/models"

	"gorm.io/gorm"
)

func TestRecordView(t *testing.T) {
	gdb := setupTestDB(t)
	pop := NewPopularity(gdb, DefaultWeights)

	host := createUser(t, gdb, "student")
	issue := createIssue(t, gdb, host, nil, "热水问题")

	views, popularity, err := pop.RecordView(issue.ID)
	if err != nil {
		t.Fatalf("RecordView: %v", err)
	}
	if views != 1 {
		t.Errorf("views = %d, want 1", views)
	}
	if popularity != 1 {
		t.Errorf("popularity = %v, want 1 (views*1)", popularity)
	}

	// 再浏览两次
	pop.RecordView(issue.ID)
	views, popularity, err = pop.RecordView(issue.ID)
	if err != nil {
		t.Fatalf("RecordView: %v", err)
	}
	if views != 3 || popularity != 3 {
		t.Errorf("views=%d popularity=%v, want 3/3", views, popularity)
	}
}

func TestRecordViewMissingIssue(t *testing.T) {
	gdb := setupTestDB(t)
	pop := NewPopularity(gdb, DefaultWeights)

	_, _, err := pop.RecordView(9999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestToggleLike(t *testing.T) {
	gdb := setupTestDB(t)
	pop := NewPopularity(gdb, DefaultWeights)

	host := createUser(t, gdb, "student")
	liker := createUser(t, gdb, "liker")
	issue := createIssue(t, gdb, host, nil, "空调问题")

	liked, likes, popularity, err := pop.ToggleLike(liker.ID, issue.ID)
	if err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	if !liked || likes != 1 {
		t.Errorf("liked=%v likes=%d, want true/1", liked, likes)
	}
	if popularity != 2 {
		t.Errorf("popularity = %v, want 2 (likes*2)", popularity)
	}

	// 再次点击 → 取消，回到原状态
	liked, likes, popularity, err = pop.ToggleLike(liker.ID, issue.ID)
	if err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	if liked || likes != 0 || popularity != 0 {
		t.Errorf("second toggle: liked=%v likes=%d popularity=%v, want false/0/0", liked, likes, popularity)
	}

	var count int64
	gdb.Model(&models.IssueLike{}).Where("issue_id = ?", issue.ID).Count(&count)
	if count != 0 {
		t.Errorf("like rows = %d, want 0", count)
	}
}

// 热度不变式：popularity == likes*W_like + views*W_view
func TestPopularityInvariant(t *testing.T) {
	gdb := setupTestDB(t)
	pop := NewPopularity(gdb, DefaultWeights)

	host := createUser(t, gdb, "student")
	u1 := createUser(t, gdb, "u1")
	u2 := createUser(t, gdb, "u2")
	issue := createIssue(t, gdb, host, nil, "选课问题")

	pop.RecordView(issue.ID)
	pop.RecordView(issue.ID)
	pop.ToggleLike(u1.ID, issue.ID)
	pop.ToggleLike(u2.ID, issue.ID)
	pop.RecordView(issue.ID)

	var got models.Issue
	if err := gdb.First(&got, issue.ID).Error; err != nil {
		t.Fatalf("reload issue: %v", err)
	}
	want := float64(got.Likes)*DefaultWeights.Like + float64(got.Views)*DefaultWeights.View
	if got.Popularity != want {
		t.Errorf("popularity = %v, want %v (likes=%d views=%d)", got.Popularity, want, got.Likes, got.Views)
	}
	if got.Likes != 2 || got.Views != 3 {
		t.Errorf("likes=%d views=%d, want 2/3", got.Likes, got.Views)
	}
}

func TestPopularityCustomWeights(t *testing.T) {
	gdb := setupTestDB(t)
	pop := NewPopularity(gdb, PopularityWeights{Like: 5, View: 0.5})

	host := createUser(t, gdb, "student")
	liker := createUser(t, gdb, "liker")
	issue := createIssue(t, gdb, host, nil, "食堂问题")

	pop.RecordView(issue.ID)
	_, _, popularity, err := pop.ToggleLike(liker.ID, issue.ID)
	if err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	if popularity != 5.5 {
		t.Errorf("popularity = %v, want 5.5", popularity)
	}
}

// 两次取消点赞读到同一行时，只有真正删到行的一方减计数
func TestToggleLikeLostDeleteKeepsCount(t *testing.T) {
	gdb := setupTestDB(t)
	pop := NewPopularity(gdb, DefaultWeights)

	host := createUser(t, gdb, "student")
	u1 := createUser(t, gdb, "u1")
	u2 := createUser(t, gdb, "u2")
	issue := createIssue(t, gdb, host, nil, "并发取消点赞")

	pop.ToggleLike(u1.ID, issue.ID)
	pop.ToggleLike(u2.ID, issue.ID) // likes = 2

	// 在 DELETE 执行前抢先删除 u2 的点赞行并减计数，模拟先提交的另一次取消
	raced := false
	err := gdb.Callback().Delete().Before("gorm:delete").Register("race:unlike", func(db *gorm.DB) {
		if raced {
			return
		}
		if _, ok := db.Statement.Dest.(*models.IssueLike); !ok {
			return
		}
		raced = true
		sess := db.Session(&gorm.Session{NewDB: true})
		sess.Exec("DELETE FROM issue_likes WHERE user_id = ? AND issue_id = ?", u2.ID, issue.ID)
		sess.Exec("UPDATE issues SET likes = likes - 1 WHERE id = ?", issue.ID)
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	liked, likes, _, err := pop.ToggleLike(u2.ID, issue.ID)
	if err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	if liked {
		t.Error("toggle should report unliked")
	}
	if likes != 1 {
		t.Errorf("likes = %d, want 1 (u1's like remains)", likes)
	}

	var rows int64
	gdb.Model(&models.IssueLike{}).Where("issue_id = ?", issue.ID).Count(&rows)
	if int64(likes) != rows {
		t.Errorf("likes = %d but like rows = %d", likes, rows)
	}
}

func TestToggleLikeMissingIssue(t *testing.T) {
	gdb := setupTestDB(t)
	pop := NewPopularity(gdb, DefaultWeights)
	user := createUser(t, gdb, "u")

	_, _, _, err := pop.ToggleLike(user.ID, 9999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
