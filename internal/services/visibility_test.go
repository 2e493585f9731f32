package services

import (
	"testing"

	"dovelink/internal/models"

	"gorm.io/gorm"
)

func TestVisibleIssuesByTopic(t *testing.T) {
	gdb := setupTestDB(t)
	dir := NewDirectory(gdb)
	vis := NewVisibility(gdb, dir)

	study := createTopic(t, gdb, "学业")
	life := createTopic(t, gdb, "生活")
	host := createUser(t, gdb, "student")
	studyIssue := createIssue(t, gdb, host, study, "数学课太难")
	createIssue(t, gdb, host, life, "宿舍没热水")

	superRole := createRole(t, gdb, models.RoleSuperAdmin, "")
	studyRole := createRole(t, gdb, "学业_admin", "学业")
	lifeRole := createRole(t, gdb, "生活_admin", "生活")

	superAdmin := createUser(t, gdb, "super")
	grantRole(t, gdb, superAdmin, superRole)
	studyAdmin := createUser(t, gdb, "study")
	grantRole(t, gdb, studyAdmin, studyRole)
	lifeAdmin := createUser(t, gdb, "life")
	grantRole(t, gdb, lifeAdmin, lifeRole)

	// 学业管理员只看到学业问题
	issues, err := vis.VisibleIssues(studyAdmin.ID)
	if err != nil {
		t.Fatalf("VisibleIssues: %v", err)
	}
	if len(issues) != 1 || issues[0].ID != studyIssue.ID {
		t.Errorf("study admin should see exactly the study issue, got %d issues", len(issues))
	}

	// 生活管理员看不到学业问题
	issues, err = vis.VisibleIssues(lifeAdmin.ID)
	if err != nil {
		t.Fatalf("VisibleIssues: %v", err)
	}
	for _, is := range issues {
		if is.ID == studyIssue.ID {
			t.Error("life admin must not see the study issue")
		}
	}

	// super_admin 看到全部公开问题
	issues, err = vis.VisibleIssues(superAdmin.ID)
	if err != nil {
		t.Fatalf("VisibleIssues: %v", err)
	}
	if len(issues) != 2 {
		t.Errorf("super admin should see 2 issues, got %d", len(issues))
	}
}

// 内容管理员可见集始终是 super_admin 可见集的子集
func TestTopicVisibilitySubsetOfSuper(t *testing.T) {
	gdb := setupTestDB(t)
	dir := NewDirectory(gdb)
	vis := NewVisibility(gdb, dir)

	study := createTopic(t, gdb, "学业")
	host := createUser(t, gdb, "student")
	createIssue(t, gdb, host, study, "问题一")
	hidden := createIssue(t, gdb, host, study, "问题二")
	gdb.Model(hidden).Update("is_public", false)

	superAdmin := createUser(t, gdb, "super")
	grantRole(t, gdb, superAdmin, createRole(t, gdb, models.RoleSuperAdmin, ""))
	studyAdmin := createUser(t, gdb, "study")
	grantRole(t, gdb, studyAdmin, createRole(t, gdb, "学业_admin", "学业"))

	superIssues, _ := vis.VisibleIssues(superAdmin.ID)
	topicIssues, _ := vis.VisibleIssues(studyAdmin.ID)

	superSet := make(map[uint]bool)
	for _, is := range superIssues {
		superSet[is.ID] = true
	}
	for _, is := range topicIssues {
		if !superSet[is.ID] {
			t.Errorf("issue %d visible to topic admin but not to super admin", is.ID)
		}
		if is.ID == hidden.ID {
			t.Error("non-public issue must be invisible")
		}
	}
}

func TestVisibleIssuesNoRoles(t *testing.T) {
	gdb := setupTestDB(t)
	vis := NewVisibility(gdb, NewDirectory(gdb))

	study := createTopic(t, gdb, "学业")
	host := createUser(t, gdb, "student")
	createIssue(t, gdb, host, study, "问题")

	issues, err := vis.VisibleIssues(host.ID)
	if err != nil {
		t.Fatalf("VisibleIssues: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("user without roles should see nothing via admin filter, got %d", len(issues))
	}
}

func TestCanReply(t *testing.T) {
	gdb := setupTestDB(t)
	dir := NewDirectory(gdb)
	vis := NewVisibility(gdb, dir)

	study := createTopic(t, gdb, "学业")
	host := createUser(t, gdb, "student")
	issue := createIssue(t, gdb, host, study, "数学课太难")
	noTopic := createIssue(t, gdb, host, nil, "无分类问题")

	superAdmin := createUser(t, gdb, "super")
	grantRole(t, gdb, superAdmin, createRole(t, gdb, models.RoleSuperAdmin, ""))
	studyAdmin := createUser(t, gdb, "study")
	grantRole(t, gdb, studyAdmin, createRole(t, gdb, "学业_admin", "学业"))
	lifeAdmin := createUser(t, gdb, "life")
	grantRole(t, gdb, lifeAdmin, createRole(t, gdb, "生活_admin", "生活"))

	cases := []struct {
		name    string
		actorID uint
		issue   *models.Issue
		want    bool
	}{
		{"super on topic issue", superAdmin.ID, issue, true},
		{"super on topicless issue", superAdmin.ID, noTopic, true},
		{"matching topic admin", studyAdmin.ID, issue, true},
		{"other topic admin", lifeAdmin.ID, issue, false},
		{"topic admin on topicless issue", studyAdmin.ID, noTopic, false},
		{"plain user", host.ID, issue, false},
	}
	for _, tc := range cases {
		got, err := vis.CanReply(tc.actorID, tc.issue)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("%s: CanReply = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCanDelete(t *testing.T) {
	gdb := setupTestDB(t)
	vis := NewVisibility(gdb, NewDirectory(gdb))

	study := createTopic(t, gdb, "学业")
	host := createUser(t, gdb, "student")
	issue := createIssue(t, gdb, host, study, "数学课太难")

	// 发布者本人
	hostLoaded := loadUserWithRoles(t, gdb, host.ID)
	if !vis.CanDelete(hostLoaded, issue) {
		t.Error("host must be able to delete own issue")
	}

	// 其他主题的管理员也可以删除（删除权限不做主题限定）
	lifeAdmin := createUser(t, gdb, "life")
	grantRole(t, gdb, lifeAdmin, createRole(t, gdb, "生活_admin", "生活"))
	if !vis.CanDelete(loadUserWithRoles(t, gdb, lifeAdmin.ID), issue) {
		t.Error("any admin must be able to delete")
	}

	// 普通用户不行
	other := createUser(t, gdb, "other")
	if vis.CanDelete(loadUserWithRoles(t, gdb, other.ID), issue) {
		t.Error("plain user must not delete others' issues")
	}
}

func loadUserWithRoles(t *testing.T, gdb *gorm.DB, id uint) *models.User {
	t.Helper()
	var user models.User
	if err := gdb.Preload("Roles").First(&user, id).Error; err != nil {
		t.Fatalf("load user %d: %v", id, err)
	}
	return &user
}
