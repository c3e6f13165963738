package service

import (
	"testing"

	"stemquest/internal/models"
)

func submission() *models.QuizSubmission {
	return &models.QuizSubmission{
		QuizID:         "math-001",
		QuizTitle:      "Fractions Basics",
		Subject:        "math",
		Topic:          "fractions",
		TotalQuestions: 4,
		BasePoints:     20,
		Answers: []models.AnswerRecord{
			{QuestionID: "q1", Selected: 0, Correct: true},
			{QuestionID: "q2", Selected: 2, Correct: true},
			{QuestionID: "q3", Selected: 1, Correct: false},
			{QuestionID: "q4", Selected: 3, Correct: true},
		},
	}
}

func TestCompleteQuiz(t *testing.T) {
	env := newTestEnv(t)

	outcome, err := env.quizSvc.CompleteQuiz(submission())
	if err != nil {
		t.Fatalf("CompleteQuiz failed: %v", err)
	}

	if outcome.Result.Score != 75 {
		t.Errorf("Expected score 75, got %d", outcome.Result.Score)
	}
	if outcome.Result.CorrectAnswers != 3 {
		t.Errorf("Expected 3 correct answers, got %d", outcome.Result.CorrectAnswers)
	}

	// first-quiz awards 10 bonus points on top of the 20 base
	if outcome.Progress.TotalPoints != 30 {
		t.Errorf("Expected 30 total points, got %d", outcome.Progress.TotalPoints)
	}
	if outcome.Progress.CompletedQuizzes != 1 {
		t.Errorf("Expected 1 completed quiz, got %d", outcome.Progress.CompletedQuizzes)
	}
	if len(outcome.Progress.CompletedQuizIDs) != 1 || outcome.Progress.CompletedQuizIDs[0] != "math-001" {
		t.Errorf("Expected quiz id recorded, got %v", outcome.Progress.CompletedQuizIDs)
	}

	// Wrong answer at q3, then one correct: streak ends at 1
	if outcome.Progress.CurrentStreak != 1 {
		t.Errorf("Expected streak 1, got %d", outcome.Progress.CurrentStreak)
	}

	if len(outcome.Achievements) != 1 || outcome.Achievements[0].ID != "first-quiz" {
		t.Errorf("Expected first-quiz earned, got %v", outcome.Achievements)
	}

	count, err := env.results.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 logged result, got %d", count)
	}

	activities, err := env.activities.List(0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	types := make(map[string]int)
	for _, a := range activities {
		types[a.Type]++
	}
	if types[models.ActivityQuizCompleted] != 1 {
		t.Errorf("Expected a quiz_completed activity, got %v", types)
	}
	if types[models.ActivityAchievementEarned] != 1 {
		t.Errorf("Expected an achievement_earned activity, got %v", types)
	}
}

func TestCompleteQuizPerfectScore(t *testing.T) {
	env := newTestEnv(t)

	sub := submission()
	sub.Answers[2].Correct = true

	outcome, err := env.quizSvc.CompleteQuiz(sub)
	if err != nil {
		t.Fatalf("CompleteQuiz failed: %v", err)
	}

	if outcome.Result.Score != 100 {
		t.Errorf("Expected score 100, got %d", outcome.Result.Score)
	}
	if outcome.Result.PointsEarned != 20+PerfectScoreBonus {
		t.Errorf("Expected perfect bonus applied, got %d points", outcome.Result.PointsEarned)
	}

	earned := make(map[string]bool)
	for _, a := range outcome.Achievements {
		earned[a.ID] = true
	}
	if !earned["perfect-score"] {
		t.Errorf("Expected perfect-score earned, got %v", outcome.Achievements)
	}
	if !earned["first-quiz"] {
		t.Errorf("Expected first-quiz earned, got %v", outcome.Achievements)
	}
}

func TestCompleteQuizLevelUp(t *testing.T) {
	env := newTestEnv(t)

	sub := submission()
	sub.BasePoints = 95

	outcome, err := env.quizSvc.CompleteQuiz(sub)
	if err != nil {
		t.Fatalf("CompleteQuiz failed: %v", err)
	}

	// 95 base + 10 from first-quiz crosses the 100 point boundary
	if outcome.Progress.Level != 2 {
		t.Errorf("Expected level 2, got %d", outcome.Progress.Level)
	}
	if !outcome.LeveledUp {
		t.Error("Expected a level up")
	}

	activities, err := env.activities.List(0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	found := false
	for _, a := range activities {
		if a.Type == models.ActivityLevelUp {
			found = true
			if a.Level == nil || *a.Level != 2 {
				t.Errorf("Expected level 2 in activity, got %v", a.Level)
			}
		}
	}
	if !found {
		t.Error("Expected a level_up activity")
	}
}

func TestCompleteQuizTopicUnlock(t *testing.T) {
	env := newTestEnv(t)

	sub := submission()
	sub.TopicCompleted = true

	outcome, err := env.quizSvc.CompleteQuiz(sub)
	if err != nil {
		t.Fatalf("CompleteQuiz failed: %v", err)
	}

	if len(outcome.Progress.CompletedTopics) != 1 || outcome.Progress.CompletedTopics[0] != "fractions" {
		t.Errorf("Expected topic recorded, got %v", outcome.Progress.CompletedTopics)
	}

	// Completing the same topic again must not duplicate it
	if _, err := env.quizSvc.CompleteQuiz(sub); err != nil {
		t.Fatalf("Second CompleteQuiz failed: %v", err)
	}
	progress, err := env.progress.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(progress.CompletedTopics) != 1 {
		t.Errorf("Expected topic recorded once, got %v", progress.CompletedTopics)
	}
}

func TestCompleteQuizInvalidSubmission(t *testing.T) {
	env := newTestEnv(t)

	sub := submission()
	sub.QuizID = ""

	if _, err := env.quizSvc.CompleteQuiz(sub); err == nil {
		t.Fatal("Expected an invalid submission to fail")
	}

	// Nothing may have been written
	count, err := env.results.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected no logged results, got %d", count)
	}
	progress, err := env.progress.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if progress != nil {
		t.Errorf("Expected no progress, got %+v", progress)
	}
}

func TestStreakResetOnWrongAnswer(t *testing.T) {
	env := newTestEnv(t)

	sub := submission()
	sub.Answers = []models.AnswerRecord{
		{QuestionID: "q1", Correct: true},
		{QuestionID: "q2", Correct: true},
	}
	sub.TotalQuestions = 2
	if _, err := env.quizSvc.CompleteQuiz(sub); err != nil {
		t.Fatalf("CompleteQuiz failed: %v", err)
	}

	sub2 := submission()
	sub2.QuizID = "math-002"
	sub2.Answers = []models.AnswerRecord{
		{QuestionID: "q1", Correct: true},
		{QuestionID: "q2", Correct: false},
	}
	sub2.TotalQuestions = 2

	outcome, err := env.quizSvc.CompleteQuiz(sub2)
	if err != nil {
		t.Fatalf("Second CompleteQuiz failed: %v", err)
	}
	if outcome.Progress.CurrentStreak != 0 {
		t.Errorf("Expected streak reset to 0, got %d", outcome.Progress.CurrentStreak)
	}
}
