package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/learnpath/internal/database"
	"github.com/example/learnpath/internal/excel"
	"github.com/example/learnpath/internal/metrics"
	"github.com/example/learnpath/internal/quiz"
	"github.com/example/learnpath/internal/service"
	"github.com/example/learnpath/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

const seedPassword = "password123"

var importCfg = excel.DefaultImportConfig()

var importCmd = &cobra.Command{
	Use:   "import-courses [file]",
	Short: "Import courses from an .xlsx or .csv file",
	Long: `Reads title, description and content columns and creates the courses.
Courses whose title already exists (ignoring case) are updated.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Add sample courses, users, progress and quiz results",
	RunE:  runSeed,
}

var checkUserCmd = &cobra.Command{
	Use:   "check-user [username]",
	Short: "Print a stored user",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheckUser,
}

var remindCmd = &cobra.Command{
	Use:   "remind [username]",
	Short: "Send a study reminder to a user now",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemind,
}

var dbcheckCmd = &cobra.Command{
	Use:   "dbcheck",
	Short: "Check the database connection and list tables",
	RunE:  runDBCheck,
}

func init() {
	importCmd.Flags().StringVar(&importCfg.SheetName, "sheet", "", "sheet name (default: first sheet)")
	importCmd.Flags().StringVar(&importCfg.TitleColumn, "title-col", importCfg.TitleColumn, "title column")
	importCmd.Flags().StringVar(&importCfg.DescriptionColumn, "description-col", importCfg.DescriptionColumn, "description column")
	importCmd.Flags().StringVar(&importCfg.ContentColumn, "content-col", importCfg.ContentColumn, "content column")
	importCmd.Flags().IntVar(&importCfg.StartRow, "start-row", importCfg.StartRow, "first data row (1-based)")
}

func runImport(cmd *cobra.Command, args []string) error {
	importCfg.FilePath = filepath.Clean(args[0])

	result, err := excel.ImportCourses(cmd.Context(), importCfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Processed: %d, created: %d, updated: %d\n", result.TotalProcessed, result.Created, result.Updated)
	if len(result.Errors) > 0 {
		fmt.Fprintf(out, "Errors (%d):\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  %s\n", e)
		}
	}
	return nil
}

type sampleCourse struct {
	title, description, content string
	quiz                        models.Quiz
}

var sampleCourses = []sampleCourse{
	{
		title:       "Introduction to Python",
		description: "Learn the basics of Python programming language.",
		content:     "Variables, functions, loops and the standard library.",
		quiz: models.Quiz{Title: "Python Basics Quiz", Questions: models.Questions{
			{ID: "q1", Prompt: "Which keyword defines a function?", Type: models.MultipleChoice, Options: []string{"def", "func", "fn"}, Answer: "def"},
			{ID: "q2", Prompt: "What does len([1, 2, 3]) return?", Type: models.TextInput, Answer: "3"},
		}},
	},
	{
		title:       "Web Development with Flask",
		description: "Build web applications using the Flask framework.",
		content:     "Routes, templates, forms and deploying web applications.",
		quiz: models.Quiz{Title: "Flask Fundamentals Quiz", Questions: models.Questions{
			{ID: "q1", Prompt: "Which decorator maps a URL to a view?", Type: models.MultipleChoice, Options: []string{"@app.route", "@app.url", "@app.view"}, Answer: "@app.route"},
			{ID: "q2", Prompt: "Which function renders a template?", Type: models.TextInput, Answer: "render_template"},
		}},
	},
	{
		title:       "Data Science Fundamentals",
		description: "Explore the basics of data science and machine learning.",
		content:     "Data cleaning, visualization, supervised and unsupervised learning.",
		quiz: models.Quiz{Title: "Data Science Concepts Quiz", Questions: models.Questions{
			{ID: "q1", Prompt: "Is clustering supervised?", Type: models.MultipleChoice, Options: []string{"yes", "no"}, Answer: "no"},
			{ID: "q2", Prompt: "Name the table-like structure in pandas", Type: models.TextInput, Answer: "dataframe"},
		}},
	},
}

var sampleUsers = []string{"alice", "bob", "charlie"}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	courseRepo := database.NewCourseRepository()
	quizRepo := database.NewQuizRepository()
	progressRepo := database.NewProgressRepository()
	userRepo := database.NewUserRepository()
	auth := service.NewAuthService(cfg.JWTSecret)

	var quizzes []models.Quiz
	for _, sc := range sampleCourses {
		course, err := ensureCourse(ctx, courseRepo, sc)
		if err != nil {
			return err
		}
		q, err := ensureQuiz(ctx, quizRepo, course.ID, sc.quiz)
		if err != nil {
			return err
		}
		quizzes = append(quizzes, *q)
	}

	for _, name := range sampleUsers {
		_, err := auth.Register(ctx, service.RegisterUserData{
			Username: name,
			Email:    name + "@example.com",
			Password: seedPassword,
		})
		if err != nil && !errors.Is(err, service.ErrUsernameTaken) && !errors.Is(err, service.ErrEmailTaken) {
			return fmt.Errorf("failed to create user %s: %w", name, err)
		}
	}

	users, err := userRepo.GetAll(ctx)
	if err != nil {
		return err
	}
	courses, err := courseRepo.GetAll(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		for _, c := range courses {
			if _, err := progressRepo.Upsert(ctx, u.ID, c.ID, rnd.Float64()*models.MaxProgress); err != nil {
				return err
			}
		}
		for _, q := range quizzes {
			result := &models.QuizResult{UserID: u.ID, QuizID: q.ID, Score: rnd.Float64() * 100}
			if err := quizRepo.SaveResult(ctx, result); err != nil {
				return err
			}
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Sample data added: %d courses, %d users (password %q)\n", len(courses), len(users), seedPassword)
	return nil
}

func ensureCourse(ctx context.Context, repo *database.CourseRepository, sc sampleCourse) (*models.Course, error) {
	course, err := repo.GetByTitle(ctx, sc.title)
	if err == nil {
		return course, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}
	course = &models.Course{Title: sc.title, Description: sc.description, Content: sc.content}
	if err := repo.Create(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func ensureQuiz(ctx context.Context, repo *database.QuizRepository, courseID int64, sample models.Quiz) (*models.Quiz, error) {
	existing, err := repo.GetByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if strings.EqualFold(existing[i].Title, sample.Title) {
			return &existing[i], nil
		}
	}

	q := sample
	q.CourseID = courseID
	if err := quiz.Validate(&q); err != nil {
		return nil, err
	}
	if err := repo.Create(ctx, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func runCheckUser(cmd *cobra.Command, args []string) error {
	u, err := database.NewUserRepository().GetByUsername(cmd.Context(), args[0])
	if errors.Is(err, database.ErrNotFound) {
		fmt.Fprintf(cmd.OutOrStdout(), "User %s not found\n", args[0])
		return nil
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "User found: %s\n", u.Username)
	fmt.Fprintf(out, "  id:         %d\n", u.ID)
	fmt.Fprintf(out, "  email:      %s\n", u.Email)
	fmt.Fprintf(out, "  role:       %s\n", u.Role)
	if u.LearningStyle != nil {
		fmt.Fprintf(out, "  style:      %s\n", *u.LearningStyle)
	}
	if u.LastLogin != nil {
		fmt.Fprintf(out, "  last login: %s\n", u.LastLogin.Format(time.RFC3339))
	}
	fmt.Fprintf(out, "  study time: %d min\n", u.TotalStudyTime)
	return nil
}

func runRemind(cmd *cobra.Command, args []string) error {
	u, err := database.NewUserRepository().GetByUsername(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	sched := newScheduler(metrics.New(prometheus.NewRegistry()))
	if err := sched.RunManualCheck(cmd.Context(), u.ID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Reminder check done for %s\n", u.Username)
	return nil
}

func runDBCheck(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	if err := database.Ping(ctx); err != nil {
		return err
	}
	tables, err := database.ListTables(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Database connection successful (%s)\n", cfg.DBDriver)
	fmt.Fprintf(cmd.OutOrStdout(), "Tables: %s\n", strings.Join(tables, ", "))
	return nil
}
