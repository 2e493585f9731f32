package utils

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ValidationError 带字段名的输入校验错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

var (
	// 字母、数字、中文、空格和常见标点
	titleCharset = regexp.MustCompile(`^[\w\p{Han}\s\-_,.!?()（）\[\]【】，。！？、：:;；]+$`)

	dangerousTags = []string{"<script", "<iframe", "<object", "<embed", "<form", "<input", "<button"}

	strictPolicy = bluemonday.StrictPolicy()
)

// ValidateTitle 校验问题标题：非空、≤50 字符、字符白名单
func ValidateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", &ValidationError{Field: "title", Message: "标题不能为空"}
	}
	if len([]rune(title)) > 50 {
		return "", &ValidationError{Field: "title", Message: "标题不能超过50个字符"}
	}
	if !titleCharset.MatchString(title) {
		return "", &ValidationError{Field: "title", Message: "标题只能包含字母、数字、中文、空格和常见标点符号"}
	}
	return strictPolicy.Sanitize(title), nil
}

// ValidateTopicName 校验主题名称：非空、≤50 字符、字符白名单
func ValidateTopicName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &ValidationError{Field: "topic", Message: "分类名称不能为空"}
	}
	if len([]rune(name)) > 50 {
		return "", &ValidationError{Field: "topic", Message: "分类名称不能超过50个字符"}
	}
	if !titleCharset.MatchString(name) {
		return "", &ValidationError{Field: "topic", Message: "分类名称只能包含字母、数字、中文、空格和常见标点符号"}
	}
	return strictPolicy.Sanitize(name), nil
}

// ValidateDescription 校验问题描述：非空、≤1000 字符、无危险标签
func ValidateDescription(description string) (string, error) {
	return validateLongText(description, "description", "描述")
}

// ValidateContent 校验评论/回复内容：非空、≤1000 字符、无危险标签
func ValidateContent(content string) (string, error) {
	return validateLongText(content, "content", "内容")
}

func validateLongText(text, field, label string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &ValidationError{Field: field, Message: label + "不能为空"}
	}
	if len([]rune(text)) > 1000 {
		return "", &ValidationError{Field: field, Message: label + "不能超过1000个字符"}
	}
	lower := strings.ToLower(text)
	for _, tag := range dangerousTags {
		if strings.Contains(lower, tag) {
			return "", &ValidationError{Field: field, Message: label + "中不能包含危险的HTML标签"}
		}
	}
	return strictPolicy.Sanitize(text), nil
}
