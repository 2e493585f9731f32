package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

// Categories 问题分类全集
var Categories = []string{"学业", "生活", "管理", "情感", "其他"}

// ClassifyResult 分类结果
type ClassifyResult struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// ChatRequest OpenAI 兼容接口请求体
type ChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse OpenAI 兼容接口响应体
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Classifier 问题智能分类：调用 OpenAI 兼容接口，失败时退回关键词匹配。
// 分类失败从不阻断主流程，总能给出一个类别。
type Classifier struct {
	baseURL string
	token   string
	model   string
	client  *http.Client
}

// NewClassifier 从环境变量读取 LLM 配置；未配置 token 时只用关键词匹配
func NewClassifier() *Classifier {
	return &Classifier{
		baseURL: os.Getenv("LLM_BASE_URL"),
		token:   os.Getenv("LLM_TOKEN"),
		model:   os.Getenv("LLM_MODEL"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

const classifyPrompt = "你是校园反馈系统的分类助手。将问题分类到：学业、生活、管理、情感、其他 之一。" +
	"返回严格的 JSON：{\"category\": \"学业\", \"confidence\": 0.95, \"reason\": \"简短理由\"}"

// Classify 对标题+描述进行分类
func (c *Classifier) Classify(title, description string) ClassifyResult {
	if c.token == "" || c.baseURL == "" {
		return c.fallback(title, description, "未配置 AI 服务，使用关键词匹配")
	}

	result, err := c.callAPI(title, description)
	if err != nil {
		log.Printf("AI 分类失败，退回关键词匹配: %v", err)
		return c.fallback(title, description, "AI分类失败，使用关键词匹配")
	}
	if !validCategory(result.Category) {
		return c.fallback(title, description, "AI返回了无效分类，使用关键词匹配")
	}
	return *result
}

func (c *Classifier) callAPI(title, description string) (*ClassifyResult, error) {
	userMsg := "问题标题：" + title
	if description != "" {
		userMsg += "\n问题描述：" + description
	}

	reqBody := ChatRequest{
		Model: c.model,
		Messages: []ChatMessage{
			{Role: "system", Content: classifyPrompt},
			{Role: "user", Content: userMsg},
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("LLM API status %d", resp.StatusCode)
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, err
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("empty choices")
	}

	var result ClassifyResult
	if err := json.Unmarshal([]byte(chatResp.Choices[0].Message.Content), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func validCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// 关键词回退表
var fallbackKeywords = map[string][]string{
	"学业": {"课程", "作业", "考试", "教学", "教师", "老师", "成绩", "图书馆", "实验室", "教材", "学习", "复习", "考研", "讲座", "选课", "学分"},
	"生活": {"宿舍", "食堂", "饭", "菜", "餐", "热水", "洗澡", "洗衣", "空调", "网络", "wifi", "水电", "维修", "卫生", "校医", "体育", "健身", "门禁", "路灯", "交通"},
	"管理": {"学生证", "证明", "办理", "流程", "学生会", "奖学金", "补助", "收费", "缴费", "就业", "招聘", "实习", "政策", "规定", "制度", "校园卡", "充值", "报销", "申请"},
	"情感": {"焦虑", "压力", "抑郁", "烦恼", "困扰", "迷茫", "孤独", "难过", "伤心", "失恋", "恋爱", "感情", "心理", "情绪", "人际关系", "倾诉", "安慰", "困惑"},
	"其他": {"系统", "功能", "建议", "改进", "优化", "平台", "界面", "操作", "bug", "故障"},
}

// fallback 关键词计数分类，全部落空时归入"其他"
func (c *Classifier) fallback(title, description, reason string) ClassifyResult {
	text := strings.ToLower(title + " " + description)

	best := "其他"
	bestCount := 0
	for _, category := range Categories {
		count := 0
		for _, kw := range fallbackKeywords[category] {
			if strings.Contains(text, kw) {
				count++
			}
		}
		if count > bestCount {
			bestCount = count
			best = category
		}
	}

	return ClassifyResult{Category: best, Confidence: 0.3, Reason: reason}
}
