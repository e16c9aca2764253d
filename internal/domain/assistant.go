package domain

// ============================================================
// AI Sales Insight
// ============================================================

// SalesInsight is the narrative summary produced by the LLM.
type SalesInsight struct {
	Summary        string `json:"summary"`
	Trend          string `json:"trend"`
	Recommendation string `json:"recommendation"`
}

// InsightRequest is what the insight generator receives.
type InsightRequest struct {
	Window       Window
	Transactions []Transaction
}

// InsightResponse is the raw generator output plus token accounting.
type InsightResponse struct {
	Insight    SalesInsight
	Model      string
	TokensUsed TokenUsage
}

// TokenUsage reports LLM token consumption.
type TokenUsage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// InsightSource tells the caller where an insight came from.
type InsightSource string

const (
	InsightSourceModel         InsightSource = "model"
	InsightSourceCache         InsightSource = "cache"
	InsightSourceNoCredentials InsightSource = "fallback_no_credentials"
	InsightSourceError         InsightSource = "fallback_error"
)

// InsightResult is returned by POST /v1/insights.
type InsightResult struct {
	ID               string        `json:"id"`
	Window           Window        `json:"window"`
	Source           InsightSource `json:"source"`
	TransactionCount int           `json:"transactionCount"`
	Insight          SalesInsight  `json:"insight"`
	TokensUsed       *TokenUsage   `json:"tokensUsed,omitempty"`
	LatencyMs        int64         `json:"latencyMs"`
	GeneratedAt      string        `json:"generatedAt"`
}

// Fallback insights, in the dashboard's locale.
var (
	InsightNoCredentials = SalesInsight{
		Summary:        "ไม่พบ API Key ของ Gemini กรุณาตั้งค่าเพื่อใช้งาน AI",
		Trend:          "-",
		Recommendation: "-",
	}
	InsightUnavailable = SalesInsight{
		Summary:        "เกิดข้อผิดพลาดในการวิเคราะห์ข้อมูล",
		Trend:          "ไม่สามารถระบุได้",
		Recommendation: "กรุณาลองใหม่อีกครั้ง",
	}
)
