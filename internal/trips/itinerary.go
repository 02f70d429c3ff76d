package trips

import (
	"fmt"
	"strings"

	"wanderly/internal/shared/apperrors"
)

// NormalizeItinerary checks that there is exactly one plan per day and fills
// in missing day indexes. Plans are returned in day order.
func NormalizeItinerary(days int, plans []DayPlan) ([]DayPlan, error) {
	if len(plans) != days {
		return nil, apperrors.ErrInvalidItinerary.
			WithMessage("Trip lasts %d days but %d day plans were given", days, len(plans)).
			WithDetails(map[string]interface{}{"days": days, "day_plans": len(plans)})
	}

	out := make([]DayPlan, len(plans))
	for i, p := range plans {
		day := i + 1
		if p.DayIndex == 0 {
			p.DayIndex = day
		}
		if p.DayIndex != day {
			return nil, invalidDay(day, fmt.Sprintf("day_index %d is out of order", p.DayIndex))
		}
		if strings.TrimSpace(p.Details) == "" {
			return nil, invalidDay(day, "details are required")
		}
		for _, m := range p.Meals {
			switch m.Type {
			case MealBreakfast, MealLunch, MealDinner:
			default:
				return nil, invalidDay(day, fmt.Sprintf("unknown meal type %q", m.Type))
			}
			if strings.TrimSpace(m.Details) == "" {
				return nil, invalidDay(day, fmt.Sprintf("%s details are required", m.Type))
			}
		}
		out[i] = p
	}
	return out, nil
}

func invalidDay(day int, reason string) error {
	return apperrors.ErrInvalidItinerary.
		WithMessage("Day %d: %s", day, reason).
		WithDetails(map[string]interface{}{"day": day, "reason": reason})
}

// ValidateSeatClasses rejects unknown or repeated classes
func ValidateSeatClasses(classes []string) error {
	seen := make(map[string]bool, len(classes))
	for _, c := range classes {
		if _, ok := SeatClassPrefixes[c]; !ok || seen[c] {
			return apperrors.ErrInvalidSeatClass.WithDetails(map[string]interface{}{"seat_class": c})
		}
		seen[c] = true
	}
	return nil
}
