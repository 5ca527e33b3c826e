package planner

import (
	"fmt"
	"strings"

	domainPlanner "github.com/slaxmankiran/aitravel-app-sub008/domains/planner"
	domainTrip "github.com/slaxmankiran/aitravel-app-sub008/domains/trip"
	"github.com/slaxmankiran/aitravel-app-sub008/pkg/timeutils"
)

// feasibilitySystemPrompt is identical for every request so providers that
// support prompt caching can reuse it.
const feasibilitySystemPrompt = `You are a travel feasibility analyst.
Judge whether the described trip can realistically be planned and enjoyed as specified.

ANALYSIS RULES:
- verdict: "yes" if the trip is clearly plannable, "no" if it is impossible or unsafe,
  "maybe" if it could work but has serious issues (season, distances, closures, budget).
- score: your confidence in the trip being plannable, 0-100. A "yes" with score 80+
  means you would stake your reputation on it.
- summary: 1-2 sentences for the traveler, plain language.
- concerns: short bullet strings for anything the traveler should double-check.
  Empty array if none.

Judge the DESTINATION as given; do not substitute a different one.
Return ONLY a JSON object with fields: verdict, score, summary, concerns.`

const daySystemPrompt = `You are a travel itinerary designer.
Design one full day of a trip, realistic for the destination and season.

RULES:
- 4 to 7 activities covering morning to evening, in chronological order.
- time: "HH:MM" 24h local time. category: one of food, sight, transit, lodging, other.
- Include lat/lng coordinates for fixed places when you are confident; omit (0) otherwise.
- notes: one practical sentence (reservations, tickets, what to bring). May be empty.
- Do not repeat activities from previous days of the same trip.
- summary: one sentence naming the day's theme.

Return ONLY a JSON object with fields: day_number, summary, activities.`

func tripBrief(t domainTrip.Trip) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Destination: %s\n", t.Destination)
	fmt.Fprintf(&b, "Dates: %s to %s (%d days)\n",
		t.StartDate.Format(timeutils.DateLayout), t.EndDate.Format(timeutils.DateLayout), t.DurationDays())
	fmt.Fprintf(&b, "Travelers: %d\n", t.Travelers)
	if t.Budget != "" {
		fmt.Fprintf(&b, "Budget: %s\n", t.Budget)
	}
	if len(t.Interests) > 0 {
		fmt.Fprintf(&b, "Interests: %s\n", strings.Join(t.Interests, ", "))
	}
	return b.String()
}

func feasibilityUserPrompt(t domainTrip.Trip) string {
	return fmt.Sprintf("Evaluate this trip:\n\n%s\nToday's planning context: the traveler has not booked anything yet.", tripBrief(t))
}

func dayUserPrompt(t domainTrip.Trip, dayNumber int, previous []domainTrip.ItineraryDay) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Trip:\n%s\n", tripBrief(t))

	date, err := timeutils.TripDayDate(t.StartDate, dayNumber)
	if err == nil {
		fmt.Fprintf(&b, "Design day %d of %d (%s, a %s).\n", dayNumber, t.DurationDays(),
			date.Format(timeutils.DateLayout), date.Weekday())
	} else {
		fmt.Fprintf(&b, "Design day %d of %d.\n", dayNumber, t.DurationDays())
	}

	if len(previous) > 0 {
		b.WriteString("\nAlready planned days (do not repeat their activities):\n")
		for _, d := range previous {
			fmt.Fprintf(&b, "- Day %d: %s\n", d.DayNumber, d.Summary)
			for _, a := range d.Activities {
				fmt.Fprintf(&b, "    %s %s\n", a.Time, a.Title)
			}
		}
	}
	return b.String()
}

// Wire shapes shared by both providers.

type activityJSON struct {
	Time     string  `json:"time"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Notes    string  `json:"notes"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

type dayPlanJSON struct {
	DayNumber  int            `json:"day_number"`
	Summary    string         `json:"summary"`
	Activities []activityJSON `json:"activities"`
}

func (d dayPlanJSON) toDayPlan(dayNumber int) domainPlanner.DayPlan {
	plan := domainPlanner.DayPlan{
		// The model occasionally echoes the wrong number; ours wins.
		DayNumber:  dayNumber,
		Summary:    strings.TrimSpace(d.Summary),
		Activities: make([]domainTrip.Activity, 0, len(d.Activities)),
	}
	for _, a := range d.Activities {
		plan.Activities = append(plan.Activities, domainTrip.Activity{
			Time:     strings.TrimSpace(a.Time),
			Title:    strings.TrimSpace(a.Title),
			Category: strings.ToLower(strings.TrimSpace(a.Category)),
			Notes:    strings.TrimSpace(a.Notes),
			Lat:      a.Lat,
			Lng:      a.Lng,
		})
	}
	return plan
}

func normalizeReport(r *domainPlanner.FeasibilityReport) {
	r.Verdict = strings.ToLower(strings.TrimSpace(r.Verdict))
	switch r.Verdict {
	case "yes", "no", "maybe":
	default:
		r.Verdict = "maybe"
	}
	if r.Score < 0 {
		r.Score = 0
	}
	if r.Score > 100 {
		r.Score = 100
	}
	r.Summary = strings.TrimSpace(r.Summary)
}
