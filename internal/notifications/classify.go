// Package notifications implements the prep-reminder scheduler: the
// advance_prep/morning/day_of classification, scheduled-time math, and
// the periodic tickers that keep reminders flowing after generation.
package notifications

import (
	"fmt"
	"time"

	"github.com/imkitchen/imkitchen/internal/events"
)

const defaultMealTime = "18:00"

// DetermineReminderType classifies advance_prep_hours into one of the
// three reminder windows.
func DetermineReminderType(prepHours int) events.ReminderType {
	switch {
	case prepHours >= 24:
		return events.ReminderAdvancePrep
	case prepHours >= 4:
		return events.ReminderMorning
	default:
		return events.ReminderDayOf
	}
}

// CalculateReminderTime computes scheduled_time for a meal_date/meal_time
// pair and a prep_hours window, clamping anything in the past to
// now+1 minute.
func CalculateReminderTime(now time.Time, mealDate string, mealTime string, prepHours int) (time.Time, error) {
	date, err := time.ParseInLocation("2006-01-02", mealDate, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("notifications: invalid meal_date %q: %w", mealDate, err)
	}
	if mealTime == "" {
		mealTime = defaultMealTime
	}
	clock, err := time.Parse("15:04", mealTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("notifications: invalid meal_time %q: %w", mealTime, err)
	}
	mealDateTime := time.Date(date.Year(), date.Month(), date.Day(), clock.Hour(), clock.Minute(), 0, 0, now.Location())

	var reminderTime time.Time
	switch DetermineReminderType(prepHours) {
	case events.ReminderAdvancePrep:
		dayBefore := date.AddDate(0, 0, -1)
		reminderTime = time.Date(dayBefore.Year(), dayBefore.Month(), dayBefore.Day(), 9, 0, 0, 0, now.Location())
	case events.ReminderMorning:
		reminderTime = mealDateTime.Add(-time.Duration(prepHours) * time.Hour)
	default:
		reminderTime = mealDateTime.Add(-1 * time.Hour)
	}

	if reminderTime.Before(now) {
		return now.Add(time.Minute), nil
	}
	return reminderTime, nil
}

// defaultCourseTime gives the day-of ticker's fallback meal time per
// course: appetizer 08:00, main_course 12:00, dessert 18:00.
func defaultCourseTime(course events.CourseType) string {
	switch course {
	case events.CourseAppetizer:
		return "08:00"
	case events.CourseMainCourse:
		return "12:00"
	default:
		return "18:00"
	}
}

// GenerateAssignmentReminderBody builds the free-text reminder body.
// Advance-prep bodies name the prep task and the meal's weekday
// ("Marinate the chicken for Thursday dinner: Tandoori Chicken") since
// they fire at 09:00 the day before the meal; prepTask may be empty.
func GenerateAssignmentReminderBody(recipeTitle, prepTask, mealDate string, prepHours int) string {
	switch DetermineReminderType(prepHours) {
	case events.ReminderAdvancePrep:
		task := prepTask
		if task == "" {
			task = "Start advance prep"
		}
		if day, err := time.Parse("2006-01-02", mealDate); err == nil {
			return fmt.Sprintf("%s for %s dinner: %s", task, day.Weekday(), recipeTitle)
		}
		return fmt.Sprintf("%s for tomorrow's dinner: %s", task, recipeTitle)
	case events.ReminderMorning:
		return fmt.Sprintf("Start prep in %d hours: %s", prepHours, recipeTitle)
	default:
		return fmt.Sprintf("Start cooking in 1 hour: %s", recipeTitle)
	}
}
