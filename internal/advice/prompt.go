package advice

import (
	"fmt"
	"strconv"
	"strings"

	"Glupulse_Advisor/internal/health"
)

/* =================================================================================
							PROMPT ENGINEERING
=================================================================================*/

// SystemPrompt is the persona sent as the system message.
const SystemPrompt = `คุณเป็นนักโภชนาการผู้เชี่ยวชาญ`

// Generation settings for the advice request.
const (
	Temperature = 0.7
	MaxTokens   = 1000
)

// MaxItems is the number of entries kept per advice list.
const MaxItems = 3

// BlogCategories is the closed set of content categories the model is asked
// to choose from.
var BlogCategories = []string{
	"ความรู้",
	"โภชนาการ",
	"โรค",
	"ออกกำลังกาย",
	"แรงบันดาลใจ",
	"ข่าวสาร",
}

// Issue phrases, in the order they are reported.
const (
	issueHighGlucose  = "ระดับน้ำตาลในเลือดสูง"
	issueHighHbA1c    = "HbA1c สูง"
	issueHighPressure = "ความดันโลหิตสูง"
	issueUnderweight  = "น้ำหนักต่ำกว่าเกณฑ์"
	issueObese        = "น้ำหนักเกิน (อ้วน)"
	issueNone         = "ไม่มีความเสี่ยงที่ชัดเจน"
)

// userPromptTemplate is filled with fmt.Sprintf in BuildPrompt. The literal
// braces of the JSON schema are safe since they are not verbs.
const userPromptTemplate = `
คุณเป็นนักโภชนาการผู้เชี่ยวชาญ กำลังวิเคราะห์สุขภาพของผู้ใช้จากข้อมูลต่อไปนี้:
- เพศ: %s
- อายุ: %s
- BMI: %s
- น้ำตาลในเลือด: %s mg/dl
- HbA1c: %s
- ความดันโลหิต: %s/%s
- คะแนนสุขภาพ: %d/10
- เป็น/ไม่เป็นเบาหวาน: %s
- ความเสี่ยงเบาหวาน: %s (%d%%)
- ความผิดปกติที่พบ: %s
- อารมณ์ช่วงนี้: %s

กรุณาตอบกลับเป็น **JSON อย่างเดียวเท่านั้น** ห้ามใส่เครื่องหมาย ` + "```" + ` หรือคำบรรยายอื่นนอกโครงสร้างดังนี้:
{
  "summary": "สรุปสุขภาพโดยรวมอย่างกระชับแต่มีความลึกมากขึ้น ไม่ต้องทวนตัวเลข แต่ให้ระบุภาพรวมสุขภาพว่าอยู่ในเกณฑ์ดีหรือควรระวัง พร้อมคำแนะนำภาพรวม เช่น 'สุขภาพโดยรวมถือว่าอยู่ในเกณฑ์ปานกลาง มีบางส่วนที่ควรเฝ้าระวัง โดยเฉพาะระดับน้ำตาลและความดัน ควรใส่ใจการดูแลอาหารและการออกกำลังกายให้สม่ำเสมอ'",
  "healthAdvice": {
    "food": [{ "title": "...", "description": "..." }],
    "exercise": [{ "title": "...", "description": "..." }],
    "blog": [{ "category": "..." }]
  }
}
healthAdvice คำอธิบายต้องกระชับ ไม่เกิน 2-3 บรรทัด ห้ามเกิน 3 รายการต่อหมวด ห้ามขาด 3 เท่านั้น ห้ามซ้ำ ห้ามมี key อื่น
blog ต้องเลือกจาก category ต่อไปนี้เท่านั้น และเลือกมาให้เหมาะสมกับผู้ใช้ตอนนี้มากที่สุด 3 ประเภท ซ้ำได้:
%s
`

// IssueSummary lists the abnormal readings in in, or a fixed phrase when
// nothing is out of range.
func IssueSummary(in health.UserInput) string {
	var issues []string
	if in.BloodGlucose >= 140 {
		issues = append(issues, issueHighGlucose)
	}
	if in.HbA1c >= 5.7 {
		issues = append(issues, issueHighHbA1c)
	}
	if health.HasHighBloodPressure(in) {
		issues = append(issues, issueHighPressure)
	}
	if in.BMI < 18.5 {
		issues = append(issues, issueUnderweight)
	} else if in.BMI > 30 {
		issues = append(issues, issueObese)
	}

	if len(issues) == 0 {
		return issueNone
	}
	return strings.Join(issues, ", ")
}

// BuildPrompt renders the user message for one assessment.
func BuildPrompt(in health.UserInput, a health.Assessment) string {
	return fmt.Sprintf(userPromptTemplate,
		in.Gender,
		formatNumber(in.Age),
		formatNumber(in.BMI),
		formatNumber(in.BloodGlucose),
		formatNumber(in.HbA1c),
		formatNumber(in.SystolicBP),
		formatNumber(in.DiastolicBP),
		a.Score,
		in.DiabetesType,
		a.Risk,
		a.RiskPercent,
		IssueSummary(in),
		in.MoodStatus,
		formatCategories(),
	)
}

// KnownBlogCategory reports whether c is one of BlogCategories.
func KnownBlogCategory(c string) bool {
	for _, known := range BlogCategories {
		if c == known {
			return true
		}
	}
	return false
}

func formatCategories() string {
	parts := make([]string, len(BlogCategories))
	for i, c := range BlogCategories {
		parts[i] = fmt.Sprintf("%d.%s", i+1, c)
	}
	return strings.Join(parts, " ")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
