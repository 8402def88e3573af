// Package catalog holds the static task catalog and the day-seeded task
// generator. Titles are canonicalized before any comparison so synonym
// spellings ("Clean a small area" vs "Clean area") count as one task.
package catalog

// Friction tiers. Higher friction earns more calm points and is gated
// behind an adherence threshold.
type Friction string

const (
	FrictionLow  Friction = "low"
	FrictionMed  Friction = "med"
	FrictionHigh Friction = "high"
)

// Points per friction tier.
var frictionPoints = map[Friction]int{
	FrictionLow:  5,
	FrictionMed:  7,
	FrictionHigh: 10,
}

// Domains is the 8-category taxonomy.
const (
	DomainMorning  = "morning"
	DomainMind     = "mind"
	DomainPhysical = "physical"
	DomainFocus    = "focus"
	DomainDetox    = "detox"
	DomainSocial   = "social"
	DomainCreative = "creative"
	DomainIdentity = "identity"
)

// DomainLabels maps domains to their display categories.
var DomainLabels = map[string]string{
	DomainMorning:  "🌅 Morning",
	DomainMind:     "🧠 Mind",
	DomainPhysical: "💪 Physical",
	DomainFocus:    "🎯 Focus",
	DomainDetox:    "🎧 Detox",
	DomainSocial:   "🌿 Social",
	DomainCreative: "🎨 Creative",
	DomainIdentity: "🎁 Identity",
}

// Meta describes one canonical task.
type Meta struct {
	Friction Friction
	Domain   string
}

// Pool is the full set of canonical titles eligible for daily generation.
var Pool = []string{
	"10 min sunlight", "Make bed", "Drink water first thing", "No phones first 30 min", "Cold face splash", "Cold shower",
	"Breathwork 5 min", "Meditation 5 min", "Meditation 10 min", "Gratitude list", "Journal 5 sentences", `Ask "What avoiding?"`,
	"10-15 min walk", "5 min stretching", "30 push-ups", "Dance to 1 song", "Clean area", "Prioritize top task", "25-min Pomodoro", "25-min Pomodoro x2", "25-min Pomodoro x3",
	"Remove phone 1 hour", "Read 10 pages", "Study without music", "Turn off notifications", "Delete 5 apps", "Remove SM from home", "2-hour no-phone", "No scrolling after 9pm",
	"Draw/write 10 min", "Learn new 15 min", "Cook meal", "Nature observation", "Sit still 3 min", "Write fear + response", "Write win of day", "Affirmation practice", "Help someone", "Review streak",
}

// aliases maps legacy / variant spellings to the canonical title.
var aliases = map[string]string{
	"Drink water first":          "Drink water first thing",
	"Clean a small area":         "Clean area",
	"Clean small area":           "Clean area",
	"5 min stretching/yoga":      "5 min stretching",
	"5 min yoga":                 "5 min stretching",
	"Draw/write/music 10 min":    "Draw/write 10 min",
	"Learn something new 15 min": "Learn new 15 min",
	"Learn new thing 15 min":     "Learn new 15 min",
	"Study without music 15 min": "Study without music",
	"Call friend/family 10 min":  "Call friend/family",
	"Speak to 1 person IRL":      "Speak to person IRL",
	"Sit still 3 min silence":    "Sit still 3 min",
	`Ask "What am I avoiding?"`:  `Ask "What avoiding?"`,
	"Write 1 fear + response":    "Write fear + response",
	"Write win of the day":       "Write win of day",
	"Write a win of the day":     "Write win of day",
	"Review full week":           "Journal week review",
	"Delete 5 useless apps":      "Delete 5 apps",
	"2-hour no-phone block":      "2-hour no-phone",
	"No-phone block 2 hours":     "2-hour no-phone",
	"Cold shower/splash":         "Cold shower",
	"Nature observation 5 min":   "Nature observation",
	"Gratitude list (3 lines)":   "Gratitude list",
	"Prioritize top 1 task":      "Prioritize top task",
	"25-min Pomodoro work":       "25-min Pomodoro",
	"Remove SM from home screen": "Remove SM from home",
	"Cook a meal":                "Cook meal",
}

// metadata keyed by canonical title.
var metadata = map[string]Meta{
	"10 min sunlight":         {FrictionLow, DomainMorning},
	"Make bed":                {FrictionLow, DomainMorning},
	"Drink water first thing": {FrictionLow, DomainMorning},
	"No phones first 30 min":  {FrictionLow, DomainMorning},
	"Cold face splash":        {FrictionLow, DomainMorning},
	"Cold shower":             {FrictionMed, DomainMorning},
	"All morning tasks":       {FrictionHigh, DomainMorning},

	"Breathwork 5 min":      {FrictionLow, DomainMind},
	"Breathwork 10 min":     {FrictionMed, DomainMind},
	"Meditation 5 min":      {FrictionLow, DomainMind},
	"Meditation 10 min":     {FrictionMed, DomainMind},
	"Meditation 15 min":     {FrictionHigh, DomainMind},
	"Gratitude list":        {FrictionLow, DomainMind},
	"Journal 5 sentences":   {FrictionLow, DomainMind},
	`Ask "What avoiding?"`:  {FrictionLow, DomainMind},
	"Write fear + response": {FrictionMed, DomainMind},
	"Sit still 3 min":       {FrictionLow, DomainMind},

	"10-15 min walk":    {FrictionLow, DomainPhysical},
	"30 push-ups":       {FrictionMed, DomainPhysical},
	"5 min stretching":  {FrictionLow, DomainPhysical},
	"Dance to 1 song":   {FrictionLow, DomainPhysical},
	"Clean area":        {FrictionLow, DomainPhysical},
	"Full body workout": {FrictionHigh, DomainPhysical},

	"25-min Pomodoro":     {FrictionMed, DomainFocus},
	"25-min Pomodoro x2":  {FrictionHigh, DomainFocus},
	"25-min Pomodoro x3":  {FrictionHigh, DomainFocus},
	"Prioritize top task": {FrictionLow, DomainFocus},
	"Remove phone 1 hour": {FrictionMed, DomainFocus},
	"Read 10 pages":       {FrictionMed, DomainFocus},
	"Study without music": {FrictionMed, DomainFocus},

	"Delete 5 apps":          {FrictionMed, DomainDetox},
	"Turn off notifications": {FrictionLow, DomainDetox},
	"Remove SM from home":    {FrictionLow, DomainDetox},
	"2-hour no-phone":        {FrictionHigh, DomainDetox},
	"No scrolling after 9pm": {FrictionLow, DomainDetox},

	"Call friend/family":  {FrictionMed, DomainSocial},
	"Speak to person IRL": {FrictionMed, DomainSocial},
	"Compliment someone":  {FrictionLow, DomainSocial},
	"Device-free meal":    {FrictionLow, DomainSocial},

	"Draw/write 10 min":  {FrictionLow, DomainCreative},
	"Learn new 15 min":   {FrictionMed, DomainCreative},
	"Cook meal":          {FrictionMed, DomainCreative},
	"Nature observation": {FrictionLow, DomainCreative},

	"Review streak":        {FrictionLow, DomainIdentity},
	"Write win of day":     {FrictionLow, DomainIdentity},
	"Help someone":         {FrictionLow, DomainIdentity},
	"Affirmation practice": {FrictionLow, DomainIdentity},

	// Milestone extras
	"Journal week review":        {FrictionMed, DomainIdentity},
	"Celebrate 7-day streak":     {FrictionMed, DomainIdentity},
	"Set week 2 intentions":      {FrictionMed, DomainIdentity},
	"Celebrate 2 weeks":          {FrictionMed, DomainIdentity},
	"Set week 3 goals":           {FrictionMed, DomainIdentity},
	"Celebrate 3 weeks!":         {FrictionMed, DomainIdentity},
	"Set week 4 goals":           {FrictionMed, DomainIdentity},
	"Celebrate 4 weeks!":         {FrictionMed, DomainIdentity},
	"Review all achievements":    {FrictionMed, DomainIdentity},
	"Journal journey reflection": {FrictionMed, DomainIdentity},
	"Write full journey story":   {FrictionMed, DomainIdentity},
	"Celebrate with loved ones":  {FrictionMed, DomainIdentity},
	"Plan next 30 days":          {FrictionMed, DomainIdentity},
}

// MilestoneExtras are reflection/celebration tasks appended on milestone
// days. They never count toward the day's target quota.
var MilestoneExtras = map[int][]string{
	7:  {"Review full week", "Celebrate 7-day streak", "Set week 2 intentions"},
	14: {"Journal week review", "Celebrate 2 weeks", "Set week 3 goals"},
	21: {"Journal week review", "Celebrate 3 weeks!", "Set week 4 goals"},
	28: {"Journal week review", "Celebrate 4 weeks!"},
	29: {"Review all achievements", "Journal journey reflection"},
	30: {"Write full journey story", "Celebrate with loved ones", "Plan next 30 days"},
}

// explanations give the one-line rationale shown beside a task.
var explanations = map[string]string{
	"10 min sunlight":         "Boosts serotonin → improves baseline dopamine",
	"Make bed":                "Identity-shaping + early win",
	"Cold face splash":        "Lowers stress response",
	"Cold shower":             "Lowers stress response",
	"Drink water first thing": "Physical reset",
	"No phones first 30 min":  "Discipline foundation",
	"Breathwork 5 min":        "Regulate stress & impulsivity",
	"10-15 min walk":          "Resets dopamine baseline & improves mood",
	"30 push-ups":             "Urgency release",
	"5 min stretching":        "Grounding",
	"Dance to 1 song":         "Increases serotonin naturally",
	"Clean area":              "Visible progress feeling",
	"25-min Pomodoro":         "Builds focus muscle",
	"25-min Pomodoro x2":      "Builds focus muscle intensely",
	"25-min Pomodoro x3":      "Maximum focus training",
	"Prioritize top task":     "Removes overwhelm",
	"Remove phone 1 hour":     "Reduces temptation",
	"Read 10 pages":           "Builds cognitive stamina",
	"Study without music":     "Increases mental discomfort tolerance",
	"Meditation 5 min":        "Strengthens prefrontal cortex",
	"Meditation 10 min":       "Strengthens prefrontal cortex",
	"Gratitude list":          "Increases baseline pleasure",
	"Journal 5 sentences":     "Emotional clarity",
	`Ask "What avoiding?"`:    "Catch avoidance patterns before they control you",
	"Write fear + response":   "Stress processing",
	"Sit still 3 min":         "Discomfort tolerance building",
	"Call friend/family":      "Natural dopamine source",
	"Speak to person IRL":     "Social skill realignment",
	"Compliment someone":      "Prosocial reward",
	"Device-free meal":        "Presence & awareness",
	"Delete 5 apps":           "Reduce triggers",
	"Turn off notifications":  "Stop dopamine hits",
	"Remove SM from home":     "Friction",
	"2-hour no-phone":         "Discipline",
	"No scrolling after 9pm":  "Sleep & regulation",
	"Draw/write 10 min":       "Real dopamine",
	"Learn new 15 min":        "Growth reward",
	"Cook meal":               "Sensory grounding",
	"Nature observation":      "Parasympathetic activation",
	"Review streak":           "Self-belief",
	"Write win of day":        "Memory encoding",
	"Help someone":            "Purpose",
	"Affirmation practice":    "Neural rewiring",
	"Journal week review":     "Weekly integration",
}

// ─── Lookups ────────────────────────────────────────────────────────────────

// Canonical resolves a title to its canonical representative.
// Applied at every comparison boundary (recency, anchors, metadata).
func Canonical(title string) string {
	if c, ok := aliases[title]; ok {
		return c
	}
	return title
}

// MetaOf returns the metadata for a title, resolving aliases first.
// Unknown titles fall back to medium friction in the focus domain.
func MetaOf(title string) Meta {
	if m, ok := metadata[Canonical(title)]; ok {
		return m
	}
	return Meta{FrictionMed, DomainFocus}
}

// Points returns the calm points awarded for completing a task.
func Points(title string) int {
	return frictionPoints[MetaOf(title).Friction]
}

// CategoryOf returns the display category for a title.
func CategoryOf(title string) string {
	return DomainLabels[MetaOf(title).Domain]
}

// DomainOf returns the taxonomy domain for a title.
func DomainOf(title string) string {
	return MetaOf(title).Domain
}

// IsHighFriction reports whether a task sits in the high-friction tier.
func IsHighFriction(title string) bool {
	return MetaOf(title).Friction == FrictionHigh
}

// Explanation returns the one-line rationale for a task, "" if none.
func Explanation(title string) string {
	return explanations[Canonical(title)]
}
