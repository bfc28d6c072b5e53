// Package dictionary serves the sign vocabulary catalog and tracks which
// words a user has learned or mastered.
package dictionary

// Difficulty levels in ascending order.
const (
	Beginner     = "初级"
	Intermediate = "中级"
	Advanced     = "高级"
)

const (
	CategoryAll        = "all"
	CategorySymptom    = "symptom"
	CategoryBody       = "body"
	CategoryTime       = "time"
	CategoryNumber     = "number"
	CategoryAction     = "action"
	CategoryTreatment  = "treatment"
	CategoryEmergency  = "emergency"
	CategoryMedication = "medication"
)

// Word is one entry of the sign catalog. Image and Icon are asset references
// for the front-end; Icon is the fallback when the image fails to load.
type Word struct {
	ID          int    `json:"id"`
	Chinese     string `json:"chinese"`
	Pinyin      string `json:"pinyin"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
	Icon        string `json:"icon"`
	Image       string `json:"image"`
}

// the recognition model's labels, in label order
var catalog = []Word{
	{ID: 1, Chinese: "感冒", Pinyin: "gǎnmào", Category: CategorySymptom, Description: "上呼吸道感染引起的常见疾病", Difficulty: Beginner, Icon: "fas fa-thermometer-half", Image: "img/cold.png"},
	{ID: 2, Chinese: "天", Pinyin: "tiān", Category: CategoryTime, Description: "时间单位，24小时为一天", Difficulty: Beginner, Icon: "fas fa-calendar-day", Image: "img/day.png"},
	{ID: 3, Chinese: "发热", Pinyin: "fārè", Category: CategorySymptom, Description: "体温升高，身体发热的症状", Difficulty: Beginner, Icon: "fas fa-thermometer-full", Image: "img/fever.png"},
	{ID: 4, Chinese: "五", Pinyin: "wǔ", Category: CategoryNumber, Description: "数字五", Difficulty: Beginner, Icon: "fas fa-hashtag", Image: "img/five.png"},
	{ID: 5, Chinese: "四", Pinyin: "sì", Category: CategoryNumber, Description: "数字四", Difficulty: Beginner, Icon: "fas fa-hashtag", Image: "img/four.png"},
	{ID: 6, Chinese: "手", Pinyin: "shǒu", Category: CategoryBody, Description: "人体上肢的一部分", Difficulty: Beginner, Icon: "fas fa-hand-paper", Image: "img/hand.png"},
	{ID: 7, Chinese: "头", Pinyin: "tóu", Category: CategoryBody, Description: "人体最上部的器官", Difficulty: Beginner, Icon: "fas fa-head-side-virus", Image: "img/head.png"},
	{ID: 8, Chinese: "心脏", Pinyin: "xīnzàng", Category: CategoryBody, Description: "人体重要的循环器官", Difficulty: Intermediate, Icon: "fas fa-heartbeat", Image: "img/heart.jpg"},
	{ID: 9, Chinese: "小时", Pinyin: "xiǎoshí", Category: CategoryTime, Description: "时间单位，60分钟为一小时", Difficulty: Beginner, Icon: "fas fa-clock", Image: "img/hour.png"},
	{ID: 10, Chinese: "分钟", Pinyin: "fēnzhōng", Category: CategoryTime, Description: "时间单位，60秒为一分钟", Difficulty: Beginner, Icon: "fas fa-hourglass-half", Image: "img/minute.png"},
	{ID: 11, Chinese: "恶心", Pinyin: "ěxīn", Category: CategorySymptom, Description: "想要呕吐的感觉", Difficulty: Intermediate, Icon: "fas fa-dizzy", Image: "img/nausea.png"},
	{ID: 12, Chinese: "脖子", Pinyin: "bózi", Category: CategoryBody, Description: "连接头部和躯干的部分", Difficulty: Beginner, Icon: "fas fa-user-md", Image: "img/neck.png"},
	{ID: 13, Chinese: "九", Pinyin: "jiǔ", Category: CategoryNumber, Description: "数字九", Difficulty: Beginner, Icon: "fas fa-hashtag", Image: "img/nine.png"},
	{ID: 14, Chinese: "一", Pinyin: "yī", Category: CategoryNumber, Description: "数字一", Difficulty: Beginner, Icon: "fas fa-hashtag", Image: "img/one.png"},
	{ID: 15, Chinese: "七", Pinyin: "qī", Category: CategoryNumber, Description: "数字七", Difficulty: Beginner, Icon: "fas fa-hashtag", Image: "img/seven.png"},
	{ID: 16, Chinese: "六", Pinyin: "liù", Category: CategoryNumber, Description: "数字六", Difficulty: Beginner, Icon: "fas fa-hashtag", Image: "img/six.png"},
	{ID: 17, Chinese: "十", Pinyin: "shí", Category: CategoryNumber, Description: "数字十", Difficulty: Beginner, Icon: "fas fa-hashtag", Image: "img/ten.png"},
	{ID: 18, Chinese: "三", Pinyin: "sān", Category: CategoryNumber, Description: "数字三", Difficulty: Beginner, Icon: "fas fa-hashtag", Image: "img/three.png"},
	{ID: 19, Chinese: "二", Pinyin: "èr", Category: CategoryNumber, Description: "数字二", Difficulty: Beginner, Icon: "fas fa-hashtag", Image: "img/two.png"},
}

var categoryNames = map[string]string{
	CategorySymptom:    "症状描述",
	CategoryBody:       "身体部位",
	CategoryTime:       "时间单位",
	CategoryNumber:     "数字",
	CategoryAction:     "医疗动作",
	CategoryTreatment:  "治疗相关",
	CategoryEmergency:  "紧急情况",
	CategoryMedication: "药物相关",
}

// Category display order on the dictionary page.
var categoryOrder = []string{
	CategorySymptom, CategoryBody, CategoryTime, CategoryNumber,
	CategoryAction, CategoryTreatment, CategoryEmergency, CategoryMedication,
}

// CategoryName returns the display name of category, 其他 when unknown.
func CategoryName(category string) string {
	if name, ok := categoryNames[category]; ok {
		return name
	}
	return "其他"
}

// Words returns a copy of the catalog in label order.
func Words() []Word {
	out := make([]Word, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a word by id.
func Lookup(id int) (Word, bool) {
	for _, w := range catalog {
		if w.ID == id {
			return w, true
		}
	}
	return Word{}, false
}

// CategoryCount is a category with its display name and catalog size.
type CategoryCount struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Count    int    `json:"count"`
}

// Categories counts catalog words per category. Categories with no words
// are included with a zero count.
func Categories() []CategoryCount {
	counts := make(map[string]int)
	for _, w := range catalog {
		counts[w.Category]++
	}
	out := make([]CategoryCount, 0, len(categoryOrder))
	for _, c := range categoryOrder {
		out = append(out, CategoryCount{Category: c, Name: CategoryName(c), Count: counts[c]})
	}
	return out
}

func difficultyRank(d string) int {
	switch d {
	case Beginner:
		return 1
	case Intermediate:
		return 2
	case Advanced:
		return 3
	default:
		return 99
	}
}
