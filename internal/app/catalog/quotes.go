package catalog

// Quote is one motivational line shown on the dashboard.
type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
	Tag    string `json:"tag"`
}

var quotes = []Quote{
	{"Small wins compound into big change.", "Unknown", "small wins"},
	{"Neurons that fire together wire together.", "Hebbian principle", "neuroplasticity"},
	{"Focus is the art of saying no.", "Unknown", "focus"},
	{"Discipline equals freedom.", "Jocko Willink", "discipline"},
	{"Your attention is your most valuable asset.", "Unknown", "focus"},
	{"Mood follows action. Start small.", "Andrew Huberman (paraphrased)", "small wins"},
	{"What you repeatedly do shapes who you become.", "Aristotle (paraphrased)", "identity"},
	{"One day itself is a lifetime.", "Heraclitus", "presence"},
	{"Make the hard thing easy by starting tiny.", "Unknown", "behavior change"},
	{"Detox the feed; reclaim your mind.", "Unknown", "social media detox"},
	{"Consistency beats intensity.", "Unknown", "consistency"},
	{"Energy flows where attention goes.", "Tony Robbins", "focus"},
	{"Win the morning, win the day.", "Unknown", "morning"},
	{"Move your body, calm your mind.", "Unknown", "mind-body"},
}

// quotePools groups tags by adherence tier.
var quotePools = map[string][]string{
	"low":  {"small wins", "behavior change", "morning", "mind-body"},
	"mid":  {"focus", "consistency", "identity", "presence"},
	"high": {"discipline", "focus", "identity", "consistency"},
}

// QuoteForDay deterministically selects today's quote from the adherence
// tier's pool, seeded by the date key so the quote is stable all day.
func QuoteForDay(dateKey string, adherence float64) Quote {
	tier := "low"
	switch {
	case adherence >= 0.8:
		tier = "high"
	case adherence >= 0.5:
		tier = "mid"
	}
	tags := map[string]bool{}
	for _, t := range quotePools[tier] {
		tags[t] = true
	}
	var pool []Quote
	for _, q := range quotes {
		if tags[q.Tag] {
			pool = append(pool, q)
		}
	}
	if len(pool) == 0 {
		pool = quotes
	}
	var sum int
	for i := 0; i < len(dateKey); i++ {
		sum += int(dateKey[i])
	}
	return pool[sum%len(pool)]
}
