package catalog

import (
	"sort"

	"github.com/resetdopa/engine/internal/domain"
)

// maxDomainSpread is how many distinct domains the first selection pass
// aims for before filling remaining slots freely.
const maxDomainSpread = 5

// highFrictionAdherence gates high-friction tasks: only offered once the
// rolling adherence reaches this level, and never during week 1.
const highFrictionAdherence = 0.80

// Generate produces the task list for a program day.
//
// Days 1-7 seed the list with the user's 5 anchor tasks. Days 8+ ramp the
// target count with the program day, lowered when adherence slips. Titles
// assigned on either of the two prior days are excluded, as are
// high-friction tasks below the adherence gate. Candidate ordering is a
// deterministic hash of title and day, so the same day always reproduces
// the same list.
func Generate(day int, anchors []string, adherence float64, recent []string) []domain.TaskPick {
	target := targetFor(day, adherence)
	allowHigh := adherence >= highFrictionAdherence && day > 7

	excluded := make(map[string]bool, len(recent))
	for _, title := range recent {
		excluded[Canonical(title)] = true
	}

	ordered := poolByDaySeed(day)

	var chosen []domain.TaskPick
	usedTitles := map[string]bool{}
	usedDomains := map[string]bool{}

	pick := func(title string) {
		canonical := Canonical(title)
		meta := MetaOf(canonical)
		chosen = append(chosen, domain.TaskPick{
			Title:    canonical,
			Points:   frictionPoints[meta.Friction],
			Category: DomainLabels[meta.Domain],
		})
		usedTitles[canonical] = true
		usedDomains[meta.Domain] = true
	}

	// Anchors lead the list during week 1. Recency does not apply to them.
	if day <= 7 {
		for i, title := range anchors {
			if i >= 5 {
				break
			}
			if canonical := Canonical(title); !usedTitles[canonical] {
				pick(canonical)
			}
		}
	}

	domainQuota := target - len(chosen)
	if domainQuota > maxDomainSpread {
		domainQuota = maxDomainSpread
	}

	// First pass: one task per unseen domain.
	for _, title := range ordered {
		if len(chosen) >= target {
			break
		}
		canonical := Canonical(title)
		meta := MetaOf(canonical)
		if usedTitles[canonical] || excluded[canonical] {
			continue
		}
		if !allowHigh && meta.Friction == FrictionHigh {
			continue
		}
		if len(usedDomains) < domainQuota && usedDomains[meta.Domain] {
			continue
		}
		pick(canonical)
	}

	// Second pass: fill remaining slots in seed order.
	for _, title := range ordered {
		if len(chosen) >= target {
			break
		}
		canonical := Canonical(title)
		if usedTitles[canonical] || excluded[canonical] {
			continue
		}
		if !allowHigh && IsHighFriction(canonical) {
			continue
		}
		pick(canonical)
	}

	// Milestone extras ride along without counting toward the target.
	for _, extra := range MilestoneExtras[day] {
		if canonical := Canonical(extra); !usedTitles[canonical] {
			pick(canonical)
		}
	}

	return chosen
}

// targetFor ramps the task count: 8 through day 14's start of week 2,
// then 9, then 10, minus 2 (floor 6) when adherence drops below half.
func targetFor(day int, adherence float64) int {
	target := 10
	switch {
	case day <= 7:
		target = 8
	case day <= 14:
		target = 9
	}
	if adherence < 0.5 && target-2 >= 6 {
		target -= 2
	}
	return target
}

// poolByDaySeed returns the pool sorted by a stable per-day hash.
func poolByDaySeed(day int) []string {
	ordered := make([]string, len(Pool))
	copy(ordered, Pool)
	seed := make(map[string]int, len(ordered))
	for _, title := range ordered {
		seed[title] = hashScore(title, day)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return seed[ordered[i]] < seed[ordered[j]]
	})
	return ordered
}

// hashScore is a 31-multiplier string hash of "title|day" folded to 32
// bits, reduced modulo 100000. Deterministic by construction.
func hashScore(title string, day int) int {
	s := title + "|" + itoa(day)
	var h int32
	for i := 0; i < len(s); i++ {
		h = h*31 + int32(s[i])
	}
	v := int(h)
	if v < 0 {
		v = -v
	}
	return v % 100000
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [12]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// ─── Week 1 Rotation & Maintenance ──────────────────────────────────────────

// RotationDomains is the fixed per-day domain rotation for days 1-7. One
// extra task from each day's domain is appended exactly once per user.
var RotationDomains = [7]string{
	DomainPhysical, DomainMind, DomainFocus, DomainSocial, DomainCreative, DomainMorning, DomainFocus,
}

// RotationExtra selects the rotation task for a week-1 day, skipping any
// title already used. Returns false when the day's domain is exhausted.
func RotationExtra(day int, used map[string]bool) (string, bool) {
	if day < 1 || day > 7 {
		return "", false
	}
	want := RotationDomains[day-1]
	for _, c := range RecommendationCatalog {
		if c.Domain != want {
			continue
		}
		if canonical := Canonical(c.Title); !used[canonical] {
			return canonical, true
		}
	}
	return "", false
}

// maintenanceRotations are light task sets cycled after day 30 to keep
// maintenance mode fresh.
var maintenanceRotations = [][]string{
	{"10-min walk", "5-min breathing", "Plan tomorrow 3-min", "Text a friend"},
	{"Light stretch 5-min", "2-min tidy", "Identity check-in", "Gratitude x3"},
	{"Detox 30-min (screen-free)", "Sip water often", "Calm breath 4 cycles", "Note 1 win"},
}

// MaintenanceRotation returns the rotating pick list for a post-program day.
func MaintenanceRotation(day int) []string {
	rotation := maintenanceRotations[(day-domain.ProgramLengthDays-1)%len(maintenanceRotations)]
	out := make([]string, len(rotation))
	copy(out, rotation)
	return out
}

// FallbackPicks is the minimal pick list used when a day has nothing
// assigned and no prior day to borrow from.
func FallbackPicks() []string {
	return []string{"5 min breathing", "Stretch 2 min", "2-min tidy"}
}
