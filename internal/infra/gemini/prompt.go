package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/boddenberg/merchant-insight-bfa-go/internal/domain"
)

// compactTx is the per-row payload sent to the model. Short keys keep the
// prompt small for large transaction sets.
type compactTx struct {
	Date     string  `json:"d"`
	Product  string  `json:"p"`
	Category string  `json:"c"`
	Price    float64 `json:"price"`
	Cost     float64 `json:"cost"`
	Qty      int     `json:"qty"`
	Platform string  `json:"pl"`
}

const promptTemplate = `คุณคือผู้ช่วยวิเคราะห์ธุรกิจสำหรับแม่ค้าออนไลน์ (Business Analyst)
นี่คือข้อมูลรายการขาย (JSON) ที่มีต้นทุนและราคาขาย: %s

กรุณาวิเคราะห์และตอบกลับในรูปแบบ JSON ตาม Schema นี้เท่านั้น:
1. summary: สรุปภาพรวมยอดขายและกำไร (Profit) สั้นๆ ว่าช่วงนี้กำไรดีไหม
2. trend: แนวโน้มสินค้าที่ทำกำไรได้ดีที่สุด (High Profit Margin) หรือช่องทางที่กำไรดี
3. recommendation: คำแนะนำในการลดต้นทุน หรือการดันสินค้าที่กำไรเยอะ 1 ข้อ

ตอบเป็นภาษาไทยที่เข้าใจง่าย เป็นกันเอง เหมือนเพื่อนคู่คิด`

// insightSchema constrains the model's reply to a SalesInsight.
var insightSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "summary": {"type": "string"},
    "trend": {"type": "string"},
    "recommendation": {"type": "string"}
  },
  "required": ["summary", "trend", "recommendation"]
}`)

func buildPrompt(txs []domain.Transaction) (string, error) {
	rows := make([]compactTx, len(txs))
	for i, t := range txs {
		rows[i] = compactTx{
			Date:     t.Date,
			Product:  t.ProductName,
			Category: t.Category,
			Price:    t.Price,
			Cost:     t.Cost,
			Qty:      t.Quantity,
			Platform: string(t.Platform),
		}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("encode transactions: %w", err)
	}
	return fmt.Sprintf(promptTemplate, data), nil
}

// parseInsight decodes the model reply. Markdown code fences around the JSON
// are tolerated.
func parseInsight(content string) (domain.SalesInsight, error) {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}

	var insight domain.SalesInsight
	if err := json.Unmarshal([]byte(s), &insight); err != nil {
		return domain.SalesInsight{}, fmt.Errorf("decode insight: %w", err)
	}
	if insight.Summary == "" {
		return domain.SalesInsight{}, fmt.Errorf("decode insight: empty summary")
	}
	return insight, nil
}
