package diagnosis

// TotalQuestions is the length of the guided intake.
const TotalQuestions = 4

type Question struct {
	Number      int      `json:"number"`
	Prompt      string   `json:"prompt"`
	Hint        string   `json:"hint"`
	Options     []string `json:"options"`
	CustomLabel string   `json:"customLabel"`
	CustomHint  string   `json:"customHint"`
	Examples    []string `json:"examples"`
}

var questions = [TotalQuestions]Question{
	{
		Number:      1,
		Prompt:      "您哪里感到不适？（请用手语表示身体部位）",
		Hint:        "例如：头部、胸部、腹部、四肢等",
		Options:     []string{"头", "手", "心脏", "脖子"},
		CustomLabel: "不适部位",
		CustomHint:  "请描述您感到不适的具体身体部位，例如：左侧太阳穴、右下腹部、背部中央等",
		Examples:    []string{"左侧头部太阳穴", "右下腹部", "背部中央", "右手腕关节"},
	},
	{
		Number:      2,
		Prompt:      "这种不适持续多久了？",
		Hint:        "例如：几小时、几天等",
		Options:     []string{"几小时", "几天"},
		CustomLabel: "持续时间",
		CustomHint:  "请描述症状持续的时间，例如：间断性发作3小时、持续疼痛2天、每周发作一次等",
		Examples:    []string{"间断性发作3小时", "持续疼痛2天", "每周发作一次", "一个月前开始"},
	},
	{
		Number:      3,
		Prompt:      "请描述疼痛的程度（1-10分）",
		Hint:        "1分表示轻微不适，10分表示剧烈疼痛",
		Options:     []string{"1-3分 轻微", "4-6分 中度", "7-8分 严重", "9-10分 剧烈"},
		CustomLabel: "疼痛程度",
		CustomHint:  "请用1-10分描述疼痛程度，并附加描述，例如：7分，伴有刺痛感",
		Examples:    []string{"7分，伴有刺痛感", "4分，持续性钝痛", "9分，难以忍受的剧痛"},
	},
	{
		Number:      4,
		Prompt:      "还有其他伴随症状吗？",
		Hint:        "例如：发热、恶心、头晕等",
		Options:     []string{"感冒", "发烧", "恶心", "呕吐"},
		CustomLabel: "伴随症状",
		CustomHint:  "请描述其他伴随症状，例如：发热38.5℃、恶心呕吐、头晕目眩等",
		Examples:    []string{"发热38.5℃", "恶心呕吐", "头晕目眩", "食欲不振"},
	},
}

// QuestionAt returns question n (1-based).
func QuestionAt(n int) (Question, bool) {
	if n < 1 || n > TotalQuestions {
		return Question{}, false
	}
	return questions[n-1], true
}

// Questions returns the whole intake in order.
func Questions() []Question {
	out := make([]Question, TotalQuestions)
	copy(out, questions[:])
	return out
}

func (q Question) hasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}
