package ai

const chartSystemInstruction = `You are a professional stock technical analysis engine.

Rules:
- Analyze the chart immediately and provide the most accurate technical reading.
- Use professional terminology (support, resistance, RSI, MA, candle patterns).
- If the image is not a price chart, set isValidChart to false and stop.
- All display text (reasoning, summary) must be written in Arabic.
- Output must conform to the response schema.`

const chartQuestionPreamble = "The user asks about this chart: "

// analysisSchema mirrors models.AnalysisResult.
func analysisSchema() *schema {
	return &schema{
		Type: "OBJECT",
		Properties: map[string]*schema{
			"isValidChart": {Type: "BOOLEAN", Description: "false when the image is not a price chart"},
			"symbol":       {Type: "STRING"},
			"recommendation": {
				Type: "STRING",
				Enum: []string{"BUY", "SELL", "HOLD"},
			},
			"confidence": {Type: "NUMBER", Description: "0 to 1"},
			"reasoning": {
				Type:  "ARRAY",
				Items: &schema{Type: "STRING"},
			},
			"supportLevels": {
				Type:  "ARRAY",
				Items: &schema{Type: "STRING"},
			},
			"resistanceLevels": {
				Type:  "ARRAY",
				Items: &schema{Type: "STRING"},
			},
			"indicators": {
				Type: "OBJECT",
				Properties: map[string]*schema{
					"rsi":            {Type: "STRING"},
					"macd":           {Type: "STRING"},
					"movingAverages": {Type: "STRING"},
				},
			},
			"summary": {Type: "STRING"},
			"suggestedDuration": {
				Type: "STRING",
				Enum: []string{"5s", "15s", "1m"},
			},
		},
		Required: []string{"isValidChart", "recommendation", "confidence", "reasoning", "summary"},
	}
}

// dialectInstructions maps a dialect to the voice persona system instruction.
var dialectInstructions = map[string]string{
	"sudanese": "أنت مازن، خبير تداول سوداني. رد بلهجة سودانية واثقة ومهنية سريعة.",
	"saudi":    "أنت مازن، محلل فني سعودي. رد بلهجة سعودية بيضاء سريعة.",
	"syrian":   "أنت مازن، خبير أسهم سوري. رد بلهجة شامية مهذبة سريعة.",
	"algerian": "أنت مازن، خبير تداول جزائري. رد بلهجة جزائرية واضحة وسريعة.",
	"tunisian": "أنت مازن، محلل مالي تونسي. رد بلهجة تونسية ودودة وسريعة.",
}

// Dialects lists the supported voice personas.
func Dialects() []string {
	return []string{"sudanese", "saudi", "syrian", "algerian", "tunisian"}
}

// ValidDialect reports whether d names a supported persona.
func ValidDialect(d string) bool {
	_, ok := dialectInstructions[d]
	return ok
}
