package personalization

import (
	"fmt"

	"github.com/example/learnpath/pkg/models"
)

var adaptedContent = map[LearningStyle]map[Difficulty]string{
	StyleVisual: {
		DifficultyEasy:   "Simple diagrams and infographics",
		DifficultyMedium: "Detailed flowcharts and mind maps",
		DifficultyHard:   "Complex data visualizations and interactive graphics",
	},
	StyleAuditory: {
		DifficultyEasy:   "Basic audio lectures with simple concepts",
		DifficultyMedium: "In-depth podcast-style lessons",
		DifficultyHard:   "Advanced audio discussions with expert interviews",
	},
	StyleKinesthetic: {
		DifficultyEasy:   "Simple hands-on exercises",
		DifficultyMedium: "Interactive simulations",
		DifficultyHard:   "Complex real-world projects",
	},
	StyleReadingWriting: {
		DifficultyEasy:   "Short articles with key concepts",
		DifficultyMedium: "Comprehensive study guides",
		DifficultyHard:   "Academic papers and in-depth analysis",
	},
}

var resourceTemplates = map[LearningStyle][]string{
	StyleVisual: {
		"Infographic summary of %s",
		"Video walkthrough of %s",
		"Mind map for %s",
	},
	StyleAuditory: {
		"Podcast episode on %s",
		"Recorded lecture: %s",
		"Discussion group about %s",
	},
	StyleKinesthetic: {
		"Hands-on lab for %s",
		"Interactive simulation: %s",
		"Mini project using %s",
	},
	StyleReadingWriting: {
		"Study guide for %s",
		"Article collection on %s",
		"Note-taking worksheet for %s",
	},
}

func normalize(style LearningStyle, difficulty Difficulty) (LearningStyle, Difficulty) {
	if _, ok := adaptedContent[style]; !ok {
		style = StyleVisual
	}
	if _, ok := adaptedContent[style][difficulty]; !ok {
		difficulty = DifficultyMedium
	}
	return style, difficulty
}

// AdaptedContent returns the content description for a style and level.
// Unknown styles fall back to visual, unknown levels to medium.
func AdaptedContent(style LearningStyle, difficulty Difficulty) string {
	style, difficulty = normalize(style, difficulty)
	return adaptedContent[style][difficulty]
}

// SuggestResources lists study resources for a course matching the style and level
func SuggestResources(style LearningStyle, difficulty Difficulty, course models.Course) []string {
	style, difficulty = normalize(style, difficulty)
	templates := resourceTemplates[style]
	out := make([]string, 0, len(templates))
	for _, tmpl := range templates {
		out = append(out, fmt.Sprintf(tmpl, course.Title)+" ("+string(difficulty)+" level)")
	}
	return out
}
