package utils

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateTitle(t *testing.T) {
	cases := []struct {
		name  string
		title string
		ok    bool
	}{
		{"中文标题", "宿舍没有热水", true},
		{"混合标点", "食堂的菜太贵了！（急）", true},
		{"英文标题", "Library WiFi is down", true},
		{"空标题", "   ", false},
		{"超长标题", strings.Repeat("长", 51), false},
		{"非法字符", "标题<script>", false},
		{"emoji", "标题😀", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateTitle(tc.title)
			if tc.ok && err != nil {
				t.Errorf("ValidateTitle(%q) = %v, want ok", tc.title, err)
			}
			if !tc.ok && err == nil {
				t.Errorf("ValidateTitle(%q) passed, want error", tc.title)
			}
		})
	}
}

func TestValidateTitleTrimsAndReturnsField(t *testing.T) {
	got, err := ValidateTitle("  宿舍问题  ")
	if err != nil {
		t.Fatalf("ValidateTitle: %v", err)
	}
	if got != "宿舍问题" {
		t.Errorf("got %q, want trimmed", got)
	}

	_, err = ValidateTitle("")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if verr.Field != "title" {
		t.Errorf("field = %q, want title", verr.Field)
	}
}

func TestValidateDescription(t *testing.T) {
	if _, err := ValidateDescription("宿舍热水供应时间太短，希望延长。"); err != nil {
		t.Errorf("valid description rejected: %v", err)
	}
	if _, err := ValidateDescription(strings.Repeat("长", 1001)); err == nil {
		t.Error("over-length description should fail")
	}
	if _, err := ValidateDescription("正常内容 <script>alert(1)</script>"); err == nil {
		t.Error("script tag should be rejected")
	}
	if _, err := ValidateDescription("填写 <input> 即可"); err == nil {
		t.Error("input tag should be rejected")
	}
	var verr *ValidationError
	_, err := ValidateDescription("")
	if !errors.As(err, &verr) || verr.Field != "description" {
		t.Errorf("empty description error = %v", err)
	}
}

func TestValidateContentSanitizes(t *testing.T) {
	got, err := ValidateContent("同感，<b>支持</b>")
	if err != nil {
		t.Fatalf("ValidateContent: %v", err)
	}
	if strings.Contains(got, "<b>") {
		t.Errorf("html not sanitized: %q", got)
	}
}

func TestValidateTopicName(t *testing.T) {
	if _, err := ValidateTopicName("学业"); err != nil {
		t.Errorf("valid topic rejected: %v", err)
	}
	if _, err := ValidateTopicName(""); err == nil {
		t.Error("empty topic should fail")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-密码")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret-密码" {
		t.Error("hash must not equal plaintext")
	}
	if !CheckPasswordHash("s3cret-密码", hash) {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Error("wrong password accepted")
	}
}
