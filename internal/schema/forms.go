package schema

import "daily-checkin/internal/entry"

var PainSchema = Schema{
	Type: entry.Pain,
	Fields: []Field{
		{"painLocations", MultiSelect{
			Options: []string{
				"lower_back_centered", "lower_back_one_side", "glute_area",
				"hamstring", "calf_or_foot", "numbness_or_tingling",
			},
			Min:        1,
			MinMessage: "Select at least one area of pain",
		}},
		{"painIntensity", Scale{Min: 0, Max: 10}},
		{"painTypes", MultiSelect{
			Options: []string{
				"sharp_stabbing", "dull_aching", "burning",
				"tingling_or_numbness", "radiating_down_leg",
			},
			Min:        1,
			MinMessage: "Select at least one pain type",
		}},
		{"painWorsenedBy.reasons", MultiSelect{
			Options: []string{
				"sitting_too_long", "poor_sleep", "lifting_bending", "stress_anxiety",
				"movement_or_exercise", "nothing_specific", OtherTag,
			},
			OtherPath:    "painWorsenedBy.otherReason",
			OtherMessage: "Please specify the other reason",
		}},
		{"painWorsenedBy.otherReason", Note{}},
		{"painRelievedBy.methods", MultiSelect{
			Options: []string{
				"gentle_movement", "walking", "stretching", "breathing_relaxing",
				"heat_cold_therapy", "medication", OtherTag,
			},
			OtherPath:    "painRelievedBy.otherMethod",
			OtherMessage: "Please specify the other method",
		}},
		{"painRelievedBy.otherMethod", Note{}},
		{"emotionalState.mood", Choice{
			Options: []string{"hopeful", "accepting", "frustrated", "anxious", "helpless"},
		}},
		{"emotionalState.note", Note{}},
		{"smallWin", Note{}},
	},
}

var SleepSchema = Schema{
	Type: entry.Sleep,
	Fields: []Field{
		{"sleepQuality", Choice{
			Options: []string{"terrible", "very_poor", "poor", "fair", "good", "excellent"},
		}},
		{"disruptions", MultiSelect{
			Options: []string{
				"back_pain", "hip_discomfort", "uncomfortable_position", "racing_thoughts",
				"bathroom_trips", "noise_or_light", OtherTag,
			},
			Min:          1,
			MinMessage:   "Please select at least one option",
			OtherPath:    "otherDisruption",
			OtherMessage: "Please specify the other disruption",
		}},
		{"otherDisruption", Note{}},
		{"helpers", MultiSelect{
			Options: []string{
				"side_sleeping", "heat_pad", "sleeping_pills", "breathwork", "no_screens",
				"herbal_tea", "white_noise", "stretching", OtherTag,
			},
			Min:          1,
			MinMessage:   "Please select at least one option",
			OtherPath:    "otherHelper",
			OtherMessage: "Please specify the other helper",
		}},
		{"otherHelper", Note{}},
		{"wakeFeeling", Choice{Options: []string{"energized", "calm", "neutral", "groggy", "tired"}}},
		{"sleepDuration", Choice{Options: []string{"<4", "4–6", "6–7", "7–8", ">8"}}},
		{"wakeFrequency", Choice{Options: []string{"0", "1–2", "3–4", ">4", "countless"}}},
		{"mentalState", Choice{
			Options: []string{"calm", "slightly_stressed", "anxious", "alert", "unknown"},
		}},
	},
}

// Stress triggers, locations and helpers are free tags chosen in the UI.
var StressSchema = Schema{
	Type: entry.Stress,
	Fields: []Field{
		{"stressLevel", Choice{
			Options: []string{"0", "2", "4", "6", "8", "10"},
			Message: "Please select your stress level",
		}},
		{"stressTriggers", MultiSelect{
			Min:          1,
			MinMessage:   "Please select at least one stress trigger",
			OtherPath:    "otherTrigger",
			OtherMessage: "Please specify the other trigger",
		}},
		{"otherTrigger", Note{}},
		{"stressLocation", MultiSelect{}},
		{"stressHelpers", MultiSelect{
			OtherPath:    "otherHelper",
			OtherMessage: "Please specify the other helper",
		}},
		{"otherHelper", Note{}},
		{"painImpact", Choice{
			Options: []string{"worse", "tense", "not_sure", "no_impact", "helped_distract"},
			Message: "Please select how stress affected pain",
		}},
		{"reflectionFeeling", Choice{
			Options: []string{"aware", "better", "no_change", "overwhelmed", "worse"},
			Message: "Please share how you're feeling now",
		}},
	},
}

// SleepingPositionExempt marks a night where no position change was needed.
const SleepingPositionExempt = "no_need_to"

var HabitSchema = Schema{
	Type: entry.Habit,
	Fields: []Field{
		{"mobilityRoutine", Flag{}},
		{"mobilityNote", Note{}},
		{"strengthRoutine", Flag{}},
		{"strengthNote", Note{}},
		{"preBedRoutine", Flag{}},
		{"preBedNote", Note{}},
		{"sleepingPosition", TriState{Exempt: SleepingPositionExempt}},
		{"sleepingNote", Note{}},
		{"breathingPractice", Flag{}},
		{"breathingNote", Note{}},
		{"aerobicExercise", Flag{}},
		{"aerobicNote", Note{}},
	},
}
