package personalization

import "github.com/example/learnpath/pkg/models"

func testCatalog() []models.Course {
	return []models.Course{
		{ID: 1, Title: "Python programming", Description: "Learn Python programming basics", Content: "variables loops functions python"},
		{ID: 2, Title: "Advanced Python", Description: "Python decorators generators", Content: "python advanced programming"},
		{ID: 3, Title: "Watercolor painting", Description: "Painting with watercolors", Content: "brushes paper color"},
		{ID: 4, Title: "Oil painting", Description: "Painting with oils", Content: "canvas color brushes"},
	}
}
